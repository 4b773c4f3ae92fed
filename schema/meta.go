package schema

import (
	"fmt"
	"reflect"
	"strings"
)

// EntityMeta is the mapping metadata of one struct type.
type EntityMeta struct {
	Type      reflect.Type
	Name      string
	Fields    []*FieldMeta
	FieldMap  map[string]*FieldMeta // Go field name -> FieldMeta
	ColumnMap map[string]*FieldMeta // lower-cased column name -> FieldMeta
}

// FieldMeta describes one mapped field.
type FieldMeta struct {
	Name   string
	DBName string
	Type   reflect.Type
	Index  []int
	Tag    *ParsedTag
}

// Column looks a field up by column name, ignoring case.
func (m *EntityMeta) Column(name string) (*FieldMeta, bool) {
	fm, ok := m.ColumnMap[strings.ToLower(name)]
	return fm, ok
}

// buildMeta performs the reflection walk over t once. Embedded structs are flattened,
// an outer field shadowing an embedded one with the same column.
func (c *Context) buildMeta(t reflect.Type) (*EntityMeta, error) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("invalid model type: %s (expected struct)", t.Kind())
	}

	meta := &EntityMeta{
		Type:      t,
		Name:      t.Name(),
		FieldMap:  make(map[string]*FieldMeta, t.NumField()),
		ColumnMap: make(map[string]*FieldMeta, t.NumField()),
	}
	if err := c.collect(meta, t, nil); err != nil {
		return nil, err
	}
	return meta, nil
}

func (c *Context) collect(meta *EntityMeta, t reflect.Type, parent []int) error {
	var embedded []reflect.StructField

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type.Kind() == reflect.Struct && f.Tag.Get(c.tagName) == "" {
			embedded = append(embedded, f)
			continue
		}
		if !f.IsExported() {
			continue
		}

		tag, err := parseTag(f.Tag.Get(c.tagName))
		if err != nil {
			return fmt.Errorf("field %s: %w", f.Name, err)
		}
		if tag.Skip {
			continue
		}

		column := tag.ColumnName
		if column == "" {
			column = c.namingStrategy.ColumnName(f.Name)
		}
		fm := &FieldMeta{
			Name:   f.Name,
			DBName: column,
			Type:   f.Type,
			Index:  append(append([]int(nil), parent...), f.Index...),
			Tag:    tag,
		}
		key := strings.ToLower(column)
		if _, dup := meta.ColumnMap[key]; dup {
			continue
		}
		meta.Fields = append(meta.Fields, fm)
		if _, ok := meta.FieldMap[f.Name]; !ok {
			meta.FieldMap[f.Name] = fm
		}
		meta.ColumnMap[key] = fm
	}

	for _, f := range embedded {
		index := append(append([]int(nil), parent...), f.Index...)
		if err := c.collect(meta, f.Type, index); err != nil {
			return err
		}
	}
	return nil
}
