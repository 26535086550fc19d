package chatmodel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatContext_Basics(t *testing.T) {
	t.Parallel()
	c := NewChatContext("cid", 123)
	require.NotNil(t, c)
	assert.Equal(t, "cid", c.GetChatID())
	assert.Equal(t, 123, c.AppData())

	// Metadata
	val, ok := c.GetMetadata("not-found")
	assert.Nil(t, val)
	assert.False(t, ok)
	c.SetMetadata("foo", 1)
	v, ok := c.GetMetadata("foo")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestNewChatContext_DefaultID(t *testing.T) {
	t.Parallel()
	c := NewChatContext("", nil)
	require.NotNil(t, c)
	assert.NotEmpty(t, c.GetChatID())
}

func TestContextPlumbing(t *testing.T) {
	t.Parallel()
	c := NewChatContext("y", nil)
	ctx := context.Background()
	ctx = WithChatContext(ctx, c)
	got := GetChatContext(ctx)
	assert.Equal(t, c, got)

	id, err := GetChatID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "y", id)

	// SetChatID replaces the chat context
	newctx, err := SetChatID(ctx, "bar")
	require.NoError(t, err)
	id, err = GetChatID(newctx)
	require.NoError(t, err)
	assert.Equal(t, "bar", id)

	// Empty chat ID generates one
	genctx, err := SetChatID(context.Background(), "")
	require.NoError(t, err)
	id, err = GetChatID(genctx)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestGetChatID_Error(t *testing.T) {
	t.Parallel()
	_, err := GetChatID(context.Background())
	require.Error(t, err)
	assert.Equal(t, "invalid chat context", err.Error())
	assert.Nil(t, GetChatContext(context.Background()))
}

func TestNewChatID_Unique(t *testing.T) {
	id1 := NewChatID()
	id2 := NewChatID()
	assert.NotEqual(t, id1, id2)
}
