package param

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelSetAppendsAndUpserts(t *testing.T) {
	m := New()
	m.Set("a", 1).Set("b", "x", WithType(TypeVarchar)).Set("a", 2, WithDirection(DirectionInOut))

	require.Equal(t, 2, m.Len())
	assert.Equal(t, []string{"a", "b"}, m.Names())
	assert.Equal(t, []any{2, "x"}, m.Values())

	a, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, 0, a.Position)
	assert.Equal(t, DirectionInOut, a.Direction)

	b, ok := m.At(1)
	require.True(t, ok)
	assert.Equal(t, "b", b.Name)
	assert.Equal(t, TypeVarchar, b.Type)

	_, ok = m.Get("A")
	assert.False(t, ok, "names are case-sensitive")
}

func TestModelCopyIsIndependent(t *testing.T) {
	m := New().Set("a", 1).Set("b", 2)
	c := m.Copy()

	c.Set("a", 100)
	c.Set("c", 3)
	require.NoError(t, c.Rename("b", "bee"))

	assert.Equal(t, []any{1, 2}, m.Values())
	assert.Equal(t, []string{"a", "b"}, m.Names())
	assert.Equal(t, []string{"a", "bee", "c"}, c.Names())
}

func TestModelUpdate(t *testing.T) {
	tests := []struct {
		name    string
		onlyOut bool
		values  []any
		want    []any
		wantErr bool
	}{
		{name: "all", values: []any{10, 20, 30}, want: []any{10, 20, 30}},
		{name: "only out", onlyOut: true, values: []any{10, 20, 30}, want: []any{1, 20, 30}},
		{name: "length mismatch", values: []any{1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New().
				Set("in", 1, WithDirection(DirectionIn)).
				Set("out", 2, WithDirection(DirectionOut)).
				Set("ret", 3, WithDirection(DirectionReturn))

			err := m.Update(tt.values, tt.onlyOut)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValueCount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Values())
		})
	}
}

func TestModelRenameKeepsPosition(t *testing.T) {
	m := New().Set("a", 1).Set("b", 2).Set("c", 3)

	require.NoError(t, m.Rename("b", "z"))
	z, ok := m.Get("z")
	require.True(t, ok)
	assert.Equal(t, 1, z.Position)
	assert.False(t, m.Has("b"))

	assert.Error(t, m.Rename("a", "c"))
	assert.ErrorIs(t, m.Rename("missing", "x"), ErrUnknownParameter)
}

func TestModelMoveKeepsPositionsDense(t *testing.T) {
	m := New().Set("a", 1).Set("b", 2).Set("c", 3).Set("d", 4)

	require.NoError(t, m.Move("d", 0))
	assert.Equal(t, []string{"d", "a", "b", "c"}, m.Names())

	require.NoError(t, m.Move("d", 3))
	assert.Equal(t, []string{"a", "b", "c", "d"}, m.Names())

	for i, e := range m.Entries() {
		assert.Equal(t, i, e.Position)
	}
	assert.Error(t, m.Move("a", 4))
}

func TestFromMapHonorsOrder(t *testing.T) {
	m := FromMap(map[string]any{"x": 1, "y": 2, "z": 3}, "z", "x")

	require.Equal(t, 3, m.Len())
	assert.Equal(t, "z", m.Names()[0])
	assert.Equal(t, "x", m.Names()[1])
	assert.Equal(t, 2, m.Value("y"))
}

func TestDirectionPredicates(t *testing.T) {
	assert.True(t, DirectionUnset.IsInput())
	assert.True(t, DirectionInOut.IsInput())
	assert.True(t, DirectionInOut.IsOutput())
	assert.True(t, DirectionReturn.IsOutput())
	assert.False(t, DirectionOut.IsInput())
	assert.False(t, Direction(9).Valid())
	assert.Equal(t, "INOUT", DirectionInOut.String())
	assert.Equal(t, DirectionInOut, ParseDirection("INOUT"))
}

func TestSQLTypeBounds(t *testing.T) {
	assert.False(t, TypeUnspecified.Known())
	assert.True(t, TypeInteger.Known())
	assert.False(t, SQLType(-1).Valid())
	assert.False(t, typeLimit.Valid())
	assert.Equal(t, "VARCHAR", TypeVarchar.String())
}
