package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParams(t *testing.T) {
	tests := []struct {
		name    string
		flags   []string
		want    map[string]any
		order   []string
		wantErr bool
	}{
		{
			name:  "typed values",
			flags: []string{"id=42", "ratio=0.5", "active=true", "note=null", "name=ada"},
			want:  map[string]any{"id": int64(42), "ratio": 0.5, "active": true, "note": nil, "name": "ada"},
			order: []string{"id", "ratio", "active", "note", "name"},
		},
		{
			name:  "quoted keeps string",
			flags: []string{`code="42"`, "flag=1"},
			want:  map[string]any{"code": "42", "flag": int64(1)},
			order: []string{"code", "flag"},
		},
		{
			name:  "value with equals",
			flags: []string{"expr=a=b"},
			want:  map[string]any{"expr": "a=b"},
			order: []string{"expr"},
		},
		{name: "missing equals", flags: []string{"id"}, wantErr: true},
		{name: "empty name", flags: []string{"=1"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := parseParams(tt.flags)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.order, m.Names())
			assert.Equal(t, tt.want, m.Map())
		})
	}
}
