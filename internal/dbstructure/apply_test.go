package dbstructure

import (
	"encoding/json"
	"testing"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply_AddTable(t *testing.T) {
	current := fixtureSchema()

	got, err := Apply(current, []Operation{
		op(OperationAdd, "/tables/comments", `{"name":"comments","columns":{"id":{"name":"id","type":"uuid","primary":true,"notNull":true,"unique":false}}}`),
	})
	require.NoError(t, err)

	require.Contains(t, got.Tables, "comments")
	assert.Equal(t, "uuid", got.Tables["comments"].Columns["id"].Type)
	assert.NotNil(t, got.Tables["comments"].Indexes)
	assert.Len(t, current.Tables, 2, "input schema must not be modified")
}

func TestApply_AddColumnToExistingTable(t *testing.T) {
	got, err := Apply(fixtureSchema(), []Operation{
		op(OperationAdd, "/tables/users/columns/name", `{"name":"name","type":"varchar(255)","notNull":true,"primary":false,"unique":false}`),
	})
	require.NoError(t, err)
	assert.True(t, got.Tables["users"].Columns["name"].NotNull)
}

func TestApply_NoOperationsReturnsCurrent(t *testing.T) {
	current := fixtureSchema()
	got, err := Apply(current, nil)
	require.NoError(t, err)
	assert.Equal(t, current, got)
}

func TestApply_ReplaceMissingPathBecomesAdd(t *testing.T) {
	got, err := Apply(fixtureSchema(), []Operation{
		op(OperationReplace, "/tables/posts/comment", `"Blog posts"`),
	})
	require.NoError(t, err)
	assert.Equal(t, "Blog posts", got.Tables["posts"].Comment)
}

func TestApply_RemoveMissingPathIsDropped(t *testing.T) {
	got, err := Apply(fixtureSchema(), []Operation{
		op(OperationRemove, "/tables/ghosts", ""),
	})
	require.NoError(t, err)
	assert.Len(t, got.Tables, 2)
}

func TestApply_RemoveSeesEarlierAdd(t *testing.T) {
	got, err := Apply(fixtureSchema(), []Operation{
		op(OperationAdd, "/tables/tmp", `{"name":"tmp","columns":{}}`),
		op(OperationRemove, "/tables/tmp", ""),
	})
	require.NoError(t, err)
	assert.NotContains(t, got.Tables, "tmp")
}

func TestApply_AddColumnToTableAddedEarlier(t *testing.T) {
	got, err := Apply(Empty(), []Operation{
		op(OperationAdd, "/tables/tags", `{"name":"tags"}`),
		op(OperationAdd, "/tables/tags/columns/id", `{"name":"id","type":"uuid","notNull":true}`),
		op(OperationAdd, "/tables/tags/indexes/tags_id_idx", `{"name":"tags_id_idx","unique":true,"columns":["id"]}`),
	})
	require.NoError(t, err)

	require.Contains(t, got.Tables, "tags")
	assert.True(t, got.Tables["tags"].Columns["id"].NotNull)
	assert.True(t, got.Tables["tags"].Indexes["tags_id_idx"].Unique)
	assert.NotNil(t, got.Tables["tags"].Constraints)
}

func TestApply_RemoveUnderMissingParentIsDropped(t *testing.T) {
	got, err := Apply(fixtureSchema(), []Operation{
		op(OperationRemove, "/tables/ghosts/columns/id", ""),
	})
	require.NoError(t, err)
	assert.Len(t, got.Tables, 2)
}

func TestApply_ReplaceUnderNewTable(t *testing.T) {
	got, err := Apply(Empty(), []Operation{
		op(OperationAdd, "/tables/tags", `{"name":"tags"}`),
		op(OperationReplace, "/tables/tags/columns/label", `{"name":"label","type":"text"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, "text", got.Tables["tags"].Columns["label"].Type)
}

func TestApply_RemoveRelationshipThenColumn(t *testing.T) {
	got, err := Apply(fixtureSchema(), []Operation{
		op(OperationRemove, "/relationships/posts_user_id_fk", ""),
		op(OperationRemove, "/tables/posts/columns/user_id", ""),
	})
	require.NoError(t, err)
	assert.Empty(t, got.Relationships)
	assert.NotContains(t, got.Tables["posts"].Columns, "user_id")
}

func TestApply_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		ops     []Operation
		wantErr string
	}{
		{
			name:    "column name does not match key",
			ops:     []Operation{op(OperationAdd, "/tables/users/columns/name", `{"name":"full_name","type":"text"}`)},
			wantErr: "does not match key",
		},
		{
			name:    "unknown field",
			ops:     []Operation{op(OperationAdd, "/tables/users/colour", `"red"`)},
			wantErr: "unknown field",
		},
		{
			name:    "dangling relationship",
			ops:     []Operation{op(OperationRemove, "/tables/posts/columns/user_id", "")},
			wantErr: "unknown column",
		},
		{
			name:    "failed test operation",
			ops:     []Operation{op(OperationTest, "/tables/users/name", `"people"`)},
			wantErr: "operation 0",
		},
		{
			name:    "add under missing table creates an unnamed table",
			ops:     []Operation{op(OperationAdd, "/tables/ghosts/columns/id", `{"name":"id","type":"uuid"}`)},
			wantErr: "does not match key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Apply(fixtureSchema(), tt.ops)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestReversePatch_RestoresPrevious(t *testing.T) {
	before := fixtureSchema()
	after, err := Apply(before, []Operation{
		op(OperationAdd, "/tables/tags", `{"name":"tags","columns":{"id":{"name":"id","type":"bigint"}}}`),
		op(OperationReplace, "/tables/users/comment", `"Accounts"`),
	})
	require.NoError(t, err)

	reverse, err := ReversePatch(before, after)
	require.NoError(t, err)

	afterJSON, err := json.Marshal(after)
	require.NoError(t, err)
	restoredJSON, err := jsonpatch.MergePatch(afterJSON, reverse)
	require.NoError(t, err)

	restored, err := Decode(restoredJSON)
	require.NoError(t, err)
	assert.Equal(t, before.normalized(), restored)
}
