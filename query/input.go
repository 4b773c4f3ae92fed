package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Konsultn-Engineering/namedb/param"
)

// Reference is one occurrence of a named parameter in the original SQL. Start and End
// are byte offsets of the whole reference, prefix included.
type Reference struct {
	Name  string
	Start int
	End   int
}

// ProcessedInput is a compiled SQL template.
type ProcessedInput struct {
	OriginalSQL string
	ParsedSQL   string
	Parameters  []Reference

	// Values holds the positional values once the template is bound to a call.
	// Cached templates never carry values.
	Values []any

	// offsets of every '?' placeholder in ParsedSQL, named or caller-written
	markers []int
}

// Names returns the parameter name of every occurrence, in order.
func (p *ProcessedInput) Names() []string {
	names := make([]string, len(p.Parameters))
	for i, r := range p.Parameters {
		names[i] = r.Name
	}
	return names
}

// Positional reports whether the SQL uses caller-written '?' placeholders instead of
// named parameters.
func (p *ProcessedInput) Positional() bool {
	return len(p.Parameters) == 0 && len(p.markers) > 0
}

// PlaceholderCount is the number of positional placeholders in ParsedSQL.
func (p *ProcessedInput) PlaceholderCount() int {
	return len(p.markers)
}

// Clone returns a deep copy.
func (p *ProcessedInput) Clone() *ProcessedInput {
	c := &ProcessedInput{
		OriginalSQL: p.OriginalSQL,
		ParsedSQL:   p.ParsedSQL,
		Parameters:  append([]Reference(nil), p.Parameters...),
		markers:     append([]int(nil), p.markers...),
	}
	if p.Values != nil {
		c.Values = append([]any(nil), p.Values...)
	}
	return c
}

func (p *ProcessedInput) stripped() *ProcessedInput {
	c := p.Clone()
	c.Values = nil
	return c
}

// Render rewrites every '?' placeholder with placeholder(n), n starting at 1.
// A nil placeholder returns ParsedSQL unchanged.
func (p *ProcessedInput) Render(placeholder func(n int) string) string {
	if placeholder == nil || len(p.markers) == 0 {
		return p.ParsedSQL
	}
	var b strings.Builder
	b.Grow(len(p.ParsedSQL) + 2*len(p.markers))
	last := 0
	for k, off := range p.markers {
		b.WriteString(p.ParsedSQL[last:off])
		b.WriteString(placeholder(k + 1))
		last = off + 1
	}
	b.WriteString(p.ParsedSQL[last:])
	return b.String()
}

// Expand builds the positional model bound to the statement: one entry per placeholder.
// The first occurrence of a name keeps it, later ones are named "name#k". The values are
// also stored in p.Values.
//
// For positional SQL the model is taken as is and must have one entry per placeholder.
func (p *ProcessedInput) Expand(model *param.Model) (*param.Model, error) {
	if p.Positional() || len(p.Parameters) == 0 {
		if model.Len() != len(p.markers) {
			return nil, fmt.Errorf("%w: %d placeholders, %d parameters",
				param.ErrValueCount, len(p.markers), model.Len())
		}
		out := param.New()
		if model != nil {
			out = model.Copy()
		}
		p.Values = out.Values()
		return out, nil
	}

	out := param.New()
	seen := make(map[string]int, len(p.Parameters))
	for _, ref := range p.Parameters {
		e, ok := lookup(model, ref.Name)
		if !ok {
			return nil, fmt.Errorf("%w: %q referenced at offset %d", param.ErrUnknownParameter, ref.Name, ref.Start)
		}
		seen[ref.Name]++
		name := e.Name
		if k := seen[ref.Name]; k > 1 {
			name = e.Name + "#" + strconv.Itoa(k)
		}
		out.Set(name, e.Value, param.WithType(e.Type), param.WithDirection(e.Direction))
	}
	p.Values = out.Values()
	return out, nil
}

// Fold maps values read back for the expanded model onto the positions of model. When a
// name occurs several times the first occurrence wins. Entries of model that the SQL
// never references get nil.
func (p *ProcessedInput) Fold(model *param.Model, expanded []any) []any {
	out := make([]any, model.Len())
	if p.Positional() || len(p.Parameters) == 0 {
		copy(out, expanded)
		return out
	}
	filled := make([]bool, len(out))
	for i, ref := range p.Parameters {
		if i >= len(expanded) {
			break
		}
		e, ok := lookup(model, ref.Name)
		if !ok || filled[e.Position] {
			continue
		}
		out[e.Position] = expanded[i]
		filled[e.Position] = true
	}
	return out
}

// lookup finds a compiled (lower-cased) name in a caller model, exact match first.
func lookup(model *param.Model, name string) (param.Entry, bool) {
	if model == nil {
		return param.Entry{}, false
	}
	if e, ok := model.Get(name); ok {
		return e, true
	}
	for _, e := range model.Entries() {
		if strings.EqualFold(e.Name, name) {
			return e, true
		}
	}
	return param.Entry{}, false
}
