package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecord(t *testing.T) {
	t.Run("stamps event time and keeps nil actor", func(t *testing.T) {
		id := uint64(3)
		record, err := NewRecord(nil, ActionDelete, "products", &id, map[string]any{KeyDeleted: map[string]any{"id": 3}})
		require.NoError(t, err)

		assert.Nil(t, record.ActorID)
		assert.Equal(t, ActionDelete, record.Action)
		assert.Equal(t, "products", record.AffectedTable)
		assert.Equal(t, uint64(3), *record.AffectedID)
		assert.False(t, record.EventTime.IsZero())
		assert.Equal(t, record.EventTime, record.CreatedAt)
	})

	t.Run("defaults changes to empty object", func(t *testing.T) {
		record, err := NewRecord(nil, ActionCreate, "users", nil, nil)
		require.NoError(t, err)
		assert.NotNil(t, record.Changes)
		assert.Empty(t, record.Changes)
	})

	t.Run("rejects unknown action", func(t *testing.T) {
		_, err := NewRecord(nil, Action("purge"), "users", nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid audit action")
	})

	t.Run("rejects empty table", func(t *testing.T) {
		_, err := NewRecord(nil, ActionCreate, "", nil, nil)
		require.Error(t, err)
	})
}

func TestRecord_GetChangesReturnsCopy(t *testing.T) {
	record, err := NewRecord(nil, ActionCreate, "products", nil, map[string]any{KeyNew: "x"})
	require.NoError(t, err)

	changes := record.GetChanges()
	changes[KeyNew] = "mutated"
	assert.Equal(t, "x", record.Changes[KeyNew])
}

func TestAction_IsValid(t *testing.T) {
	for _, a := range AllActions() {
		assert.True(t, a.IsValid(), a)
	}
	assert.False(t, Action("crear").IsValid())
}
