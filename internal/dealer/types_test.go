package dealer

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDUnmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want ID
	}{
		{`{"id": "c1"}`, "c1"},
		{`{"id": 42}`, "42"},
		{`{"id": null}`, ""},
	}
	for _, tt := range tests {
		var got struct {
			ID ID `json:"id"`
		}
		require.NoError(t, json.Unmarshal([]byte(tt.in), &got), tt.in)
		assert.Equal(t, tt.want, got.ID, tt.in)
	}
}
