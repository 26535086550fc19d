package main

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_SystemPrompt(t *testing.T) {
	sysprompt, inputs := systemPrompt()
	assert.Equal(t, []string{"date"}, sysprompt.GetInputVariables())

	pv, err := sysprompt.FormatPrompt(inputs)
	require.NoError(t, err)
	rendered := pv.String()
	assert.Contains(t, rendered, "You are a helpful assistant")
	assert.Contains(t, rendered, "Today is")
	assert.Contains(t, rendered, strconv.Itoa(time.Now().Year()))
}

func Test_Commands(t *testing.T) {
	assert.Equal(t, "demo", demoCmd.Use)
	assert.Equal(t, `run "question"`, runCmd.Use)
	assert.Equal(t, "chat", chatCmd.Use)
	assert.Equal(t, "serve", serveCmd.Use)
}

func Test_RenderMarkdown(t *testing.T) {
	out := renderMarkdown("# Title\n\nSome *text*.")
	assert.Contains(t, out, "Title")
}
