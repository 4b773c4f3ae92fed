// Package param holds the ordered, name-addressable parameter collection that flows
// through compile, bind and read-back.
package param

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownParameter is returned when a name is not present in a model.
	ErrUnknownParameter = errors.New("unknown parameter")
	// ErrValueCount is returned when an update array does not line up with the model.
	ErrValueCount = errors.New("value count does not match parameter count")
)

// Entry is one bound parameter. Position is 0-based and defines binding order.
type Entry struct {
	Name      string
	Value     any
	Type      SQLType
	Direction Direction
	Position  int
}

// Attr customizes an entry while it is set.
type Attr func(*Entry)

// WithType declares the SQL type of an entry.
func WithType(t SQLType) Attr {
	return func(e *Entry) { e.Type = t }
}

// WithDirection declares the direction of an entry.
func WithDirection(d Direction) Attr {
	return func(e *Entry) { e.Direction = d }
}

// Model is an ordered parameter collection. Positions are always dense 0..n-1 and
// names are unique and case-sensitive.
//
// A Model is not safe for concurrent mutation; it belongs to a single request.
type Model struct {
	entries []*Entry
	index   map[string]int
}

// New returns an empty model.
func New() *Model {
	return &Model{index: make(map[string]int)}
}

// FromMap builds a model from a map. Map iteration order is random, so the names are
// sorted by the supplied order slice when given; otherwise the caller must not rely on
// positions.
func FromMap(values map[string]any, order ...string) *Model {
	m := New()
	for _, name := range order {
		if v, ok := values[name]; ok {
			m.Set(name, v)
		}
	}
	for name, v := range values {
		if !m.Has(name) {
			m.Set(name, v)
		}
	}
	return m
}

// Copy returns a deep copy of m. Entries of the copy are independent from m.
func (m *Model) Copy() *Model {
	c := &Model{
		entries: make([]*Entry, len(m.entries)),
		index:   make(map[string]int, len(m.index)),
	}
	for i, e := range m.entries {
		ec := *e
		c.entries[i] = &ec
		c.index[e.Name] = i
	}
	return c
}

// Set inserts or updates a parameter. The first Set of a new name appends it at the next
// position; later calls keep the position and overwrite the value and any given attributes.
func (m *Model) Set(name string, value any, attrs ...Attr) *Model {
	if i, ok := m.index[name]; ok {
		e := m.entries[i]
		e.Value = value
		for _, a := range attrs {
			a(e)
		}
		return m
	}

	e := &Entry{Name: name, Value: value}
	for _, a := range attrs {
		a(e)
	}
	// attributes never move an entry
	e.Position = len(m.entries)
	m.entries = append(m.entries, e)
	m.index[name] = e.Position
	return m
}

// SetType changes the declared SQL type of an existing entry.
func (m *Model) SetType(name string, t SQLType) error {
	e, err := m.entry(name)
	if err != nil {
		return err
	}
	e.Type = t
	return nil
}

// SetDirection changes the declared direction of an existing entry.
func (m *Model) SetDirection(name string, d Direction) error {
	e, err := m.entry(name)
	if err != nil {
		return err
	}
	e.Direction = d
	return nil
}

// SetValue overwrites the value of an existing entry without touching its metadata.
func (m *Model) SetValue(name string, value any) error {
	e, err := m.entry(name)
	if err != nil {
		return err
	}
	e.Value = value
	return nil
}

func (m *Model) entry(name string) (*Entry, error) {
	i, ok := m.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownParameter, name)
	}
	return m.entries[i], nil
}

// Get returns a copy of the named entry.
func (m *Model) Get(name string) (Entry, bool) {
	i, ok := m.index[name]
	if !ok {
		return Entry{}, false
	}
	return *m.entries[i], true
}

// Value returns the value of the named entry, or nil when absent.
func (m *Model) Value(name string) any {
	if i, ok := m.index[name]; ok {
		return m.entries[i].Value
	}
	return nil
}

// At returns a copy of the entry at pos.
func (m *Model) At(pos int) (Entry, bool) {
	if pos < 0 || pos >= len(m.entries) {
		return Entry{}, false
	}
	return *m.entries[pos], true
}

// Has reports whether name is present.
func (m *Model) Has(name string) bool {
	_, ok := m.index[name]
	return ok
}

// Len returns the number of entries.
func (m *Model) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Names returns entry names in position order.
func (m *Model) Names() []string {
	names := make([]string, len(m.entries))
	for i, e := range m.entries {
		names[i] = e.Name
	}
	return names
}

// Values returns entry values in position order.
func (m *Model) Values() []any {
	values := make([]any, len(m.entries))
	for i, e := range m.entries {
		values[i] = e.Value
	}
	return values
}

// Entries returns copies of all entries in position order.
func (m *Model) Entries() []Entry {
	out := make([]Entry, len(m.entries))
	for i, e := range m.entries {
		out[i] = *e
	}
	return out
}

// Map returns name -> value.
func (m *Model) Map() map[string]any {
	out := make(map[string]any, len(m.entries))
	for _, e := range m.entries {
		out[e.Name] = e.Value
	}
	return out
}

// HasOutput reports whether any entry expects a value back from the database.
func (m *Model) HasOutput() bool {
	for _, e := range m.entries {
		if e.Direction.IsOutput() {
			return true
		}
	}
	return false
}

// Update overwrites values array-wise, values[i] going to position i. With onlyOut set,
// entries that are not OUT, INOUT or RETURN keep their value.
func (m *Model) Update(values []any, onlyOut bool) error {
	if len(values) != len(m.entries) {
		return fmt.Errorf("%w: got %d values for %d parameters", ErrValueCount, len(values), len(m.entries))
	}
	for i, e := range m.entries {
		if onlyOut && !e.Direction.IsOutput() {
			continue
		}
		e.Value = values[i]
	}
	return nil
}

// Rename changes the name of an entry and keeps its position.
func (m *Model) Rename(oldName, newName string) error {
	if oldName == newName {
		return nil
	}
	e, err := m.entry(oldName)
	if err != nil {
		return err
	}
	if m.Has(newName) {
		return fmt.Errorf("cannot rename %q: %q already exists", oldName, newName)
	}
	delete(m.index, oldName)
	e.Name = newName
	m.index[newName] = e.Position
	return nil
}

// Move puts the named entry at pos and shifts the entries in between, keeping
// positions dense.
func (m *Model) Move(name string, pos int) error {
	e, err := m.entry(name)
	if err != nil {
		return err
	}
	if pos < 0 || pos >= len(m.entries) {
		return fmt.Errorf("position %d out of range [0,%d)", pos, len(m.entries))
	}

	from := e.Position
	if from == pos {
		return nil
	}
	m.entries = append(m.entries[:from], m.entries[from+1:]...)
	m.entries = append(m.entries[:pos], append([]*Entry{e}, m.entries[pos:]...)...)
	m.reindex()
	return nil
}

func (m *Model) reindex() {
	for i, e := range m.entries {
		e.Position = i
		m.index[e.Name] = i
	}
}
