package schema

import (
	"database/sql"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Konsultn-Engineering/namedb/database"
	"github.com/Konsultn-Engineering/namedb/param"
	"github.com/Konsultn-Engineering/namedb/result"
)

type Audit struct {
	CreatedAt time.Time
	CreatedBy string `db:"created_by"`
}

type Customer struct {
	Audit
	ID       int64     `db:"id"`
	FullName string    `db:"column:name"`
	Score    float64   `db:"score;type:double"`
	Active   bool      `db:"active"`
	Token    uuid.UUID `db:"token"`
	Nickname *string
	Notes    sql.NullString `db:"notes"`
	Secret   string         `db:"-"`
	internal int
}

type Adjustment struct {
	Account string  `db:"account;type:varchar;in"`
	Total   float64 `db:"total;type:decimal;inout"`
	Status  int     `db:"status;dir:out"`
}

func newContext(t *testing.T, opts ...Option) *Context {
	t.Helper()
	c, err := New(opts...)
	require.NoError(t, err)
	return c
}

func TestIntrospect(t *testing.T) {
	c := newContext(t)

	meta, err := c.Introspect(reflect.TypeOf(&Customer{}))
	require.NoError(t, err)

	var columns []string
	for _, f := range meta.Fields {
		columns = append(columns, f.DBName)
	}
	assert.Equal(t, []string{"id", "name", "score", "active", "token", "nickname", "notes", "created_at", "created_by"}, columns)

	fm, ok := meta.Column("CREATED_AT")
	require.True(t, ok)
	assert.Equal(t, []int{0, 0}, fm.Index, "embedded fields are flattened")

	_, ok = meta.FieldMap["Secret"]
	assert.False(t, ok)

	_, err = c.Introspect(reflect.TypeOf(42))
	assert.Error(t, err)
}

func TestIntrospectCachesMetadata(t *testing.T) {
	c := newContext(t, WithCacheSize(1))

	_, err := c.Introspect(reflect.TypeOf(Customer{}))
	require.NoError(t, err)
	_, err = c.Introspect(reflect.TypeOf(&Customer{}))
	require.NoError(t, err)

	stats := c.CacheStats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)

	_, err = c.Introspect(reflect.TypeOf(Adjustment{}))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), c.CacheStats().Evictions)
}

func TestParseTag(t *testing.T) {
	tests := []struct {
		name    string
		tag     string
		want    ParsedTag
		wantErr bool
	}{
		{name: "empty", tag: "", want: ParsedTag{}},
		{name: "skip", tag: "-", want: ParsedTag{Skip: true}},
		{name: "bare column", tag: "user_id", want: ParsedTag{ColumnName: "user_id"}},
		{name: "explicit column", tag: "column:uid", want: ParsedTag{ColumnName: "uid"}},
		{name: "type and direction", tag: "total; type:numeric(10,2); inout", want: ParsedTag{ColumnName: "total", Type: param.TypeDecimal, Direction: param.DirectionInOut}},
		{name: "dir key", tag: "dir:return", want: ParsedTag{Direction: param.DirectionReturn}},
		{name: "unknown option ignored", tag: "id;primary", want: ParsedTag{ColumnName: "id"}},
		{name: "unknown type", tag: "x;type:hyperloglog", wantErr: true},
		{name: "unknown direction", tag: "x;dir:sideways", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTag(tt.tag)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestNamingStrategies(t *testing.T) {
	tests := []struct {
		in     string
		snake  string
		camel  string
		pascal string
	}{
		{"ID", "id", "id", "Id"},
		{"UserID", "user_id", "userId", "UserId"},
		{"HTTPServer", "http_server", "httpServer", "HttpServer"},
		{"Address2", "address2", "address2", "Address2"},
		{"already_snake", "already_snake", "alreadySnake", "AlreadySnake"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.snake, NewNamingStrategy(ColumnSnakeCase).ColumnName(tt.in))
			assert.Equal(t, tt.camel, NewNamingStrategy(ColumnCamelCase).ColumnName(tt.in))
			assert.Equal(t, tt.pascal, NewNamingStrategy(ColumnPascalCase).ColumnName(tt.in))
		})
	}
}

func TestConvert(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	ts := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	name := "ann"

	tests := []struct {
		name    string
		value   any
		target  any
		want    any
		wantErr bool
	}{
		{name: "nil to int", value: nil, target: int(0), want: 0},
		{name: "nil to pointer", value: nil, target: (*string)(nil), want: (*string)(nil)},
		{name: "int64 to int", value: int64(7), target: int(0), want: 7},
		{name: "int32 widened", value: int32(7), target: int64(0), want: int64(7)},
		{name: "int overflow", value: int64(300), target: int8(0), wantErr: true},
		{name: "negative to uint", value: int64(-1), target: uint(0), wantErr: true},
		{name: "float32 widened", value: float32(1.5), target: float64(0), want: 1.5},
		{name: "int to float", value: int64(2), target: float64(0), want: 2.0},
		{name: "float64 narrowed", value: 1.5, target: float32(0), wantErr: true},
		{name: "int to bool", value: int64(1), target: false, want: true},
		{name: "two to bool", value: int64(2), target: false, wantErr: true},
		{name: "bytes to string", value: []byte("abc"), target: "", want: "abc"},
		{name: "string to bytes", value: "abc", target: []byte(nil), want: []byte("abc")},
		{name: "string to time", value: "2024-03-01 12:30:00", target: time.Time{}, want: ts},
		{name: "string to uuid", value: id.String(), target: uuid.UUID{}, want: id},
		{name: "raw bytes to uuid", value: id[:], target: uuid.UUID{}, want: id},
		{name: "bad uuid", value: "nope", target: uuid.UUID{}, wantErr: true},
		{name: "string to pointer", value: "ann", target: (*string)(nil), want: &name},
		{name: "pointer source", value: &name, target: "", want: "ann"},
		{name: "null wrapper unwrapped", value: sql.NullInt64{Int64: 5, Valid: true}, target: int(0), want: 5},
		{name: "invalid null wrapper", value: sql.NullInt64{}, target: int(0), want: 0},
		{name: "scanner target", value: "x", target: sql.NullString{}, want: sql.NullString{String: "x", Valid: true}},
		{name: "string to int refused", value: "7", target: int(0), wantErr: true},
		{name: "int to string refused", value: int64(65), target: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Convert(tt.value, reflect.TypeOf(tt.target))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrIncompatible)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Interface())
		})
	}
}

func TestMaterializeIntoStructs(t *testing.T) {
	c := newContext(t)
	id := uuid.New()

	rows := database.NewMemoryRows(
		[]string{"ID", "NAME", "score", "active", "token", "nickname", "notes", "created_at", "unmapped"},
		[][]any{
			{int64(1), []byte("Ann"), float32(2.5), int64(1), id.String(), "annie", "vip", "2024-03-01T12:30:00Z", 1},
			{int64(2), "Bob", nil, int64(0), nil, nil, nil, nil, 2},
		})
	rs, err := result.Materialize(rows)
	require.NoError(t, err)

	list, err := result.ToBeanList[Customer](rs, c)
	require.NoError(t, err)
	require.Len(t, list, 2)

	ann := list[0]
	assert.Equal(t, int64(1), ann.ID)
	assert.Equal(t, "Ann", ann.FullName)
	assert.Equal(t, 2.5, ann.Score)
	assert.True(t, ann.Active)
	assert.Equal(t, id, ann.Token)
	require.NotNil(t, ann.Nickname)
	assert.Equal(t, "annie", *ann.Nickname)
	assert.Equal(t, sql.NullString{String: "vip", Valid: true}, ann.Notes)
	assert.Equal(t, 2024, ann.CreatedAt.Year())

	bob := list[1]
	assert.Zero(t, bob.Score, "null becomes the zero value")
	assert.Nil(t, bob.Nickname)
	assert.False(t, bob.Notes.Valid)
}

func TestSetReportsBindingError(t *testing.T) {
	c := newContext(t)
	rs := result.RowSet{
		result.NewRow([]string{"columns"}, nil),
		result.NewRow([]string{"id"}, []any{"not a number"}),
	}

	_, err := result.ToBean[Customer](rs, c)
	require.Error(t, err)
	assert.ErrorIs(t, err, result.ErrBinding)
	assert.ErrorIs(t, err, ErrIncompatible)

	var be *result.BindingError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "ID", be.Field)
	assert.Equal(t, "string", be.Source)
	assert.Equal(t, "int64", be.Target)
}

func TestParams(t *testing.T) {
	c := newContext(t)

	m, err := c.Params(&Adjustment{Account: "acc-1", Total: 10.5})
	require.NoError(t, err)

	assert.Equal(t, []string{"account", "total", "status"}, m.Names())
	assert.Equal(t, []any{"acc-1", 10.5, 0}, m.Values())

	total, _ := m.Get("total")
	assert.Equal(t, param.TypeDecimal, total.Type)
	assert.Equal(t, param.DirectionInOut, total.Direction)

	status, _ := m.Get("status")
	assert.Equal(t, param.DirectionOut, status.Direction)

	_, err = c.Params(42)
	assert.Error(t, err)
	_, err = c.Params((*Adjustment)(nil))
	assert.Error(t, err)
}

func TestGet(t *testing.T) {
	c := newContext(t)
	props, err := c.Properties(reflect.TypeOf(Customer{}))
	require.NoError(t, err)

	cust := Customer{ID: 9, Audit: Audit{CreatedBy: "ops"}}
	v := reflect.ValueOf(&cust)
	for _, p := range props {
		switch p.Name {
		case "ID":
			got, err := c.Get(v, p)
			require.NoError(t, err)
			assert.Equal(t, int64(9), got)
		case "CreatedBy":
			got, err := c.Get(v, p)
			require.NoError(t, err)
			assert.Equal(t, "ops", got)
		}
	}
}
