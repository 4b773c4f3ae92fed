package procedure

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Konsultn-Engineering/namedb/dialect"
	"github.com/Konsultn-Engineering/namedb/param"
)

type fakeCatalog struct {
	user    string
	procs   []Procedure
	columns map[string][]Column

	procedureCalls int
	filters        [][3]string
	fail           error
}

func (f *fakeCatalog) ProductName(context.Context) (string, error) { return "Fake", nil }

func (f *fakeCatalog) UserName(context.Context) (string, error) { return f.user, nil }

func (f *fakeCatalog) Procedures(_ context.Context, catalog, schema, name string) ([]Procedure, error) {
	f.procedureCalls++
	f.filters = append(f.filters, [3]string{catalog, schema, name})
	if f.fail != nil {
		return nil, f.fail
	}
	var out []Procedure
	for _, p := range f.procs {
		if (schema == "" || strings.EqualFold(schema, p.Schema)) &&
			(name == "" || strings.EqualFold(name, strings.Split(p.Name, ";")[0])) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeCatalog) ProcedureColumns(_ context.Context, p Procedure) ([]Column, error) {
	return f.columns[p.Name], nil
}

func newFake() *fakeCatalog {
	return &fakeCatalog{
		user: "app",
		procs: []Procedure{
			{Catalog: "DB", Schema: "APP", Name: "GET_TOTAL"},
			{Catalog: "DB", Schema: "APP", Name: "PING"},
		},
		columns: map[string][]Column{
			"GET_TOTAL": {
				{Kind: ColumnReturn, TypeName: "numeric(10,2)"},
				{Name: "CUSTOMER", Kind: ColumnIn, Type: param.TypeBigInt},
				{Name: "LABEL", Kind: ColumnInOut, TypeName: "varchar"},
				{Name: "COUNT", Kind: ColumnOut, TypeName: "int"},
				{Kind: ColumnIn, TypeName: "int"}, // unnamed, skipped
			},
		},
	}
}

func TestResolveDiscoversOnMissThenCaches(t *testing.T) {
	cat := newFake()
	r := NewResolver(cat, dialect.NewGenericDialect())
	ctx := context.Background()

	m, err := r.Resolve(ctx, "", "app", "get_total", true)
	require.NoError(t, err)
	assert.Equal(t, 1, cat.procedureCalls)
	assert.Equal(t, [3]string{"", "APP", "GET_TOTAL"}, cat.filters[0], "names normalized before discovery")

	require.Equal(t, 4, m.Len())
	ret, _ := m.At(0)
	assert.Equal(t, "", ret.Name)
	assert.Equal(t, param.DirectionReturn, ret.Direction)
	assert.Equal(t, param.TypeDecimal, ret.Type)

	customer, _ := m.Get("CUSTOMER")
	assert.Equal(t, param.TypeBigInt, customer.Type)
	label, _ := m.Get("LABEL")
	assert.Equal(t, param.DirectionInOut, label.Direction)
	assert.Equal(t, param.TypeVarchar, label.Type)
	count, _ := m.Get("COUNT")
	assert.Equal(t, param.DirectionOut, count.Direction)

	_, err = r.Resolve(ctx, "", "app", "GET_TOTAL", true)
	require.NoError(t, err)
	assert.Equal(t, 1, cat.procedureCalls, "served from cache")

	_, err = r.Resolve(ctx, "", "app", "get_total", false)
	require.NoError(t, err)
	assert.Equal(t, 2, cat.procedureCalls, "useCache=false rediscovers")
}

func TestResolveReturnsCopies(t *testing.T) {
	r := NewResolver(newFake(), nil)
	ctx := context.Background()

	m, err := r.Resolve(ctx, "", "", "get_total", true)
	require.NoError(t, err)
	m.Set("CUSTOMER", 42)

	again, err := r.Resolve(ctx, "", "", "get_total", true)
	require.NoError(t, err)
	assert.Nil(t, again.Value("CUSTOMER"))
}

func TestResolveNotFound(t *testing.T) {
	r := NewResolver(newFake(), dialect.NewGenericDialect())

	_, err := r.Resolve(context.Background(), "", "app", "missing", true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProcedureNotFound)

	var le *LookupError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "*.APP.MISSING", le.Key.String())
}

func TestResolveAmbiguous(t *testing.T) {
	cat := newFake()
	cat.procs = append(cat.procs, Procedure{Catalog: "DB", Schema: "OTHER", Name: "PING"})
	r := NewResolver(cat, dialect.NewGenericDialect())
	ctx := context.Background()

	_, err := r.Resolve(ctx, "", "", "ping", true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAmbiguousProcedure)

	var le *LookupError
	require.ErrorAs(t, err, &le)
	require.Len(t, le.Matches, 2)
	assert.Equal(t, "APP", le.Matches[0].Schema.String)

	calls := cat.procedureCalls
	_, err = r.Resolve(ctx, "", "", "ping", true)
	assert.ErrorIs(t, err, ErrAmbiguousProcedure)
	assert.Equal(t, calls, cat.procedureCalls, "ambiguity is not retried")
}

func TestResolveDialectNormalization(t *testing.T) {
	cat := &fakeCatalog{
		procs:   []Procedure{{Catalog: "db", Schema: "dbo", Name: "usp_orders;1"}},
		columns: map[string][]Column{"usp_orders;1": {{Name: "@id", Kind: ColumnIn, TypeName: "int"}}},
	}
	r := NewResolver(cat, dialect.NewSQLServerDialect())

	m, err := r.Resolve(context.Background(), "", "dbo", "usp_orders", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"@id"}, m.Names())
	assert.Equal(t, "usp_orders", r.Cache().Keys()[0].Name.String, "version marker trimmed")

	pg := &fakeCatalog{}
	_, err = NewResolver(pg, dialect.NewPostgresDialect()).Resolve(context.Background(), "", "", "Get_User", true)
	assert.ErrorIs(t, err, ErrProcedureNotFound)
	assert.Equal(t, [3]string{"", "public", "get_user"}, pg.filters[0])
}

func TestResolveDiscoveryError(t *testing.T) {
	cat := newFake()
	cat.fail = errors.New("connection reset")
	r := NewResolver(cat, nil)

	_, err := r.Resolve(context.Background(), "", "", "ping", true)
	assert.ErrorIs(t, err, cat.fail)
	assert.Zero(t, r.Cache().Len())
}

func TestColumnKindDirection(t *testing.T) {
	tests := []struct {
		kind ColumnKind
		want param.Direction
	}{
		{kind: ColumnIn, want: param.DirectionIn},
		{kind: ColumnInOut, want: param.DirectionInOut},
		{kind: ColumnOut, want: param.DirectionOut},
		{kind: ColumnReturn, want: param.DirectionReturn},
		{kind: ColumnResult, want: param.DirectionReturn},
		{kind: ColumnUnknown, want: param.DirectionUnset},
		{kind: ColumnKind(42), want: param.DirectionUnset},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.Direction())
	}
}

func TestCacheStoreAndLookup(t *testing.T) {
	c := NewCache()
	c.Store([]Entry{
		{Key: NewKey("db", "app", "p"), Params: param.New().Set("a", nil)},
		{Key: NewKey("db", "app", "q"), Params: param.New()},
	})
	assert.Equal(t, 2, c.Len())

	m, err := c.Lookup(NewKey("", "", "P"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, m.Names())

	_, err = c.Lookup(NewKey("", "", ""))
	assert.ErrorIs(t, err, ErrAmbiguousProcedure)

	c.Clear()
	_, err = c.Lookup(NewKey("", "", "p"))
	assert.ErrorIs(t, err, ErrProcedureNotFound)
}

func TestCacheKeepsOverloadsApart(t *testing.T) {
	c := NewCache()
	c.Store([]Entry{
		{Key: NewKey("db", "public", "area"), SpecificName: "area_16401", Params: param.New().Set("r", nil)},
		{Key: NewKey("db", "public", "area"), SpecificName: "area_16402", Params: param.New().Set("w", nil).Set("h", nil)},
	})
	assert.Equal(t, 2, c.Len())

	_, err := c.Lookup(NewKey("", "public", "area"))
	var lerr *LookupError
	require.ErrorAs(t, err, &lerr)
	assert.ErrorIs(t, err, ErrAmbiguousProcedure)
	assert.Equal(t, []string{"area_16401", "area_16402"}, lerr.SpecificNames)
	assert.Contains(t, err.Error(), "(area_16402)")

	// a refresh with a single overload replaces both
	c.Store([]Entry{
		{Key: NewKey("db", "public", "area"), SpecificName: "area_16402", Params: param.New().Set("w", nil).Set("h", nil)},
	})
	m, err := c.Lookup(NewKey("", "public", "area"))
	require.NoError(t, err)
	assert.Equal(t, []string{"w", "h"}, m.Names())
}

func TestResolveOverloadsAreAmbiguous(t *testing.T) {
	fake := &fakeCatalog{
		procs: []Procedure{
			{Catalog: "db", Schema: "public", Name: "area", SpecificName: "area_1"},
			{Catalog: "db", Schema: "public", Name: "area", SpecificName: "area_2"},
		},
		columns: map[string][]Column{"area": {{Name: "r", Kind: ColumnIn, TypeName: "numeric"}}},
	}
	r := NewResolver(fake, dialect.NewPostgresDialect())

	_, err := r.Resolve(context.Background(), "", "public", "area", true)
	assert.ErrorIs(t, err, ErrAmbiguousProcedure)
	assert.Equal(t, 2, r.Cache().Len())
}
