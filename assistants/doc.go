// Package assistants provides the agent run loop: system prompt, tool calls, and typed output parsing.
package assistants
