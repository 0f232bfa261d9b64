package entity

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRecord(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "object", content: `{"total": "1", "qty": 2}`},
		{name: "trailing whitespace", content: "{\"total\": \"1\"}\n\n"},
		{name: "second object", content: `{"total": "1"}{"total": "2"}`, wantErr: "trailing data"},
		{name: "trailing garbage", content: `{"total": "1"} oops`, wantErr: "trailing data"},
		{name: "array", content: `[1, 2]`, wantErr: "decode record"},
		{name: "null", content: `null`, wantErr: "not a json object"},
		{name: "truncated", content: `{"total": `, wantErr: "decode record"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "r.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			r, err := LoadRecord(path)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "1", r["total"])
		})
	}
}

func TestLoadRecord_KeepsNumberText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"qty": 2.50}`), 0o644))

	r, err := LoadRecord(path)

	require.NoError(t, err)
	assert.Equal(t, json.Number("2.50"), r["qty"])
	assert.Equal(t, "2.50", Stringify(r["qty"]))
}
