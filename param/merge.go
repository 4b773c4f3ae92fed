package param

import (
	"strconv"
	"strings"
)

// BindMetadata overlays discovered procedure metadata on the caller's parameters and
// returns the merged copy. call is not modified.
//
// Entries are matched by name (exact first, then case-insensitively with vendor prefixes
// such as '@' stripped). When the caller used positional names, or the database reports an
// unnamed parameter, the entry at the same position is used instead.
//
// An unset direction or type takes the discovered value. A declared type always wins. A
// declared direction is kept, except that a discovered INOUT widens a declared IN or OUT,
// since the database both reads and writes that slot.
//
// Discovered entries the caller did not declare are never added; their names are
// returned so the caller can report them.
func BindMetadata(call, discovered *Model) (*Model, []string) {
	merged := call.Copy()
	if discovered == nil || discovered.Len() == 0 {
		return merged, nil
	}

	used := make([]bool, discovered.Len())
	for _, e := range merged.entries {
		d, ok := matchDiscovered(e, discovered)
		if !ok {
			continue
		}
		used[d.Position] = true

		if !e.Type.Known() {
			e.Type = d.Type
		}
		switch {
		case e.Direction == DirectionUnset:
			e.Direction = d.Direction
		case d.Direction == DirectionInOut && (e.Direction == DirectionIn || e.Direction == DirectionOut):
			e.Direction = DirectionInOut
		}
	}

	var undeclared []string
	for i, e := range discovered.entries {
		if !used[i] {
			name := e.Name
			if isUnnamed(name) {
				name = "#" + strconv.Itoa(i)
			}
			undeclared = append(undeclared, name)
		}
	}
	return merged, undeclared
}

func matchDiscovered(e *Entry, discovered *Model) (*Entry, bool) {
	if i, ok := discovered.index[e.Name]; ok && e.Name != "" {
		return discovered.entries[i], true
	}

	want := canonicalName(e.Name)
	if want != "" && !isPositionalName(want) {
		for _, d := range discovered.entries {
			if canonicalName(d.Name) == want {
				return d, true
			}
		}
	}

	if e.Position < len(discovered.entries) {
		d := discovered.entries[e.Position]
		if isUnnamed(d.Name) || want == "" || isPositionalName(want) {
			return d, true
		}
	}
	return nil, false
}

func canonicalName(name string) string {
	return strings.ToLower(strings.TrimLeft(name, "@:&"))
}

func isPositionalName(name string) bool {
	if name == "" {
		return true
	}
	_, err := strconv.Atoi(name)
	return err == nil
}

// isUnnamed reports whether a discovered name is missing or a generated "#n" placeholder.
func isUnnamed(name string) bool {
	return name == "" || strings.HasPrefix(name, "#")
}
