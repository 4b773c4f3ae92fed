// Package procedure discovers and caches stored procedure parameter metadata.
package procedure

import (
	"database/sql"
	"strings"
)

// Key identifies a stored procedure. A null part is a wildcard when the key is used to
// search.
type Key struct {
	Catalog sql.NullString
	Schema  sql.NullString
	Name    sql.NullString
}

// NewKey builds a key; empty strings become null parts.
func NewKey(catalog, schema, name string) Key {
	return Key{
		Catalog: nullable(catalog),
		Schema:  nullable(schema),
		Name:    nullable(name),
	}
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Matches reports whether k, used as a search key, selects the stored key. The relation
// is asymmetric on purpose: a null part of k matches anything, while a null part of
// stored only matches a null part of k. Non-null parts compare case-insensitively.
func (k Key) Matches(stored Key) bool {
	return matchPart(k.Catalog, stored.Catalog) &&
		matchPart(k.Schema, stored.Schema) &&
		matchPart(k.Name, stored.Name)
}

func matchPart(search, stored sql.NullString) bool {
	if !search.Valid {
		return true
	}
	return stored.Valid && strings.EqualFold(search.String, stored.String)
}

// Compare orders keys case-insensitively, null parts first.
func (k Key) Compare(o Key) int {
	if c := comparePart(k.Catalog, o.Catalog); c != 0 {
		return c
	}
	if c := comparePart(k.Schema, o.Schema); c != 0 {
		return c
	}
	return comparePart(k.Name, o.Name)
}

func comparePart(a, b sql.NullString) int {
	switch {
	case !a.Valid && !b.Valid:
		return 0
	case !a.Valid:
		return -1
	case !b.Valid:
		return 1
	}
	return strings.Compare(strings.ToLower(a.String), strings.ToLower(b.String))
}

// String renders the key as catalog.schema.name with "*" for null parts.
func (k Key) String() string {
	part := func(s sql.NullString) string {
		if !s.Valid {
			return "*"
		}
		return s.String
	}
	return part(k.Catalog) + "." + part(k.Schema) + "." + part(k.Name)
}

// id is the case-folded identity used to store a fully discovered key.
func (k Key) id() string {
	return strings.ToLower(k.String())
}
