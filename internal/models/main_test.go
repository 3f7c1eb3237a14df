package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskTypeValid(t *testing.T) {
	for _, tt := range TaskTypes {
		assert.True(t, tt.Valid(), tt)
	}
	assert.False(t, TaskType("chores").Valid())
	assert.False(t, TaskType("").Valid())
}

func TestUserSessionDropsPassword(t *testing.T) {
	u := User{Name: "Ann", Email: "a@x.io", Password: "pw1234"}
	s := u.Session()
	assert.Equal(t, SessionUser{Name: "Ann", Email: "a@x.io"}, s)

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "pw1234")
}

func TestTodoWireNames(t *testing.T) {
	var todo Todo
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"1","title":"x","completed":true,"userId":"u"}`), &todo))
	assert.Equal(t, "1", todo.EntityID())
	assert.True(t, todo.IsDone())
	assert.Equal(t, "u", todo.UserID)

	done := false
	data, err := json.Marshal(UpdateTodo{IsCompleted: &done})
	require.NoError(t, err)
	assert.JSONEq(t, `{"isCompleted":false}`, string(data))
}

func TestTaskUpdatedAtOptional(t *testing.T) {
	var task Task
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"1","title":"x","type":"work","endDate":"2025-01-10","createdAt":"2025-01-01T00:00:00Z"}`), &task))
	assert.Nil(t, task.UpdatedAt)
	assert.False(t, task.IsDone())

	data, err := json.Marshal(task)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "updatedAt")

	require.NoError(t, json.Unmarshal([]byte(`{"_id":"1","updatedAt":"2025-01-02T00:00:00Z"}`), &task))
	require.NotNil(t, task.UpdatedAt)
	assert.Equal(t, 2, task.UpdatedAt.Day())
}
