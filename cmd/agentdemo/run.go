package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentdemo/assistants"
	"github.com/effective-security/agentdemo/chatmodel"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run \"question\"",
	Short: "Ask the agent a single question and print the answer",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.Join(args, " ")

		var callback assistants.Callback
		if verbose {
			callback = assistants.NewPrinterCallback(os.Stderr)
		}

		agent, err := buildAssistant(nil, callback)
		if err != nil {
			return err
		}

		ctx, err := chatmodel.SetChatID(context.Background(), "")
		if err != nil {
			return errors.WithMessage(err, "failed to create chat context")
		}

		var out chatmodel.OutputResult
		_, err = agent.Run(ctx, &assistants.CallInput{Input: question}, &out)
		if err != nil {
			return err
		}

		fmt.Fprintln(os.Stdout, renderMarkdown(out.GetContent()))
		return nil
	},
}

// renderMarkdown renders the answer for the terminal, falling back to the
// raw text when the renderer is unavailable.
func renderMarkdown(text string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return text
	}
	rendered, err := renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(rendered, "\n")
}
