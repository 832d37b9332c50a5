package dbstructure

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeAny(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestValidateOperations(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "empty list", input: `[]`},
		{name: "add with value", input: `[{"op":"add","path":"/tables/users","value":{"name":"users"}}]`},
		{name: "remove without value", input: `[{"op":"remove","path":"/relationships/fk"}]`},
		{name: "replace with null value", input: `[{"op":"replace","path":"/tables/users/columns/id/default","value":null}]`},
		{name: "move with from", input: `[{"op":"move","from":"/tables/a","path":"/tables/b"}]`},
		{name: "extra keys are ignored", input: `[{"op":"remove","path":"/tables/a","reason":"unused"}]`},
		{name: "not an array", input: `{"op":"add"}`, wantErr: true},
		{name: "unknown op", input: `[{"op":"upsert","path":"/tables/a","value":1}]`, wantErr: true},
		{name: "add without value", input: `[{"op":"add","path":"/tables/a"}]`, wantErr: true},
		{name: "move without from", input: `[{"op":"move","path":"/tables/a"}]`, wantErr: true},
		{name: "path outside schema", input: `[{"op":"remove","path":"/users"}]`, wantErr: true},
		{name: "missing path", input: `[{"op":"remove"}]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOperations(decodeAny(t, tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateOperationList(t *testing.T) {
	assert.NoError(t, ValidateOperationList(nil))
	assert.NoError(t, ValidateOperationList([]Operation{op(OperationRemove, "/tables/users", "")}))
	assert.Error(t, ValidateOperationList([]Operation{{Op: OperationAdd, Path: "/tables/users"}}))
}
