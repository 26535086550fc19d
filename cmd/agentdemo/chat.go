package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentdemo/assistants"
	"github.com/effective-security/agentdemo/chatmodel"
	"github.com/effective-security/agentdemo/store"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat with the agent",
	Long: `Starts a REPL backed by an in-memory chat history. Commands:
  /reset  clear the conversation history
  /tools  list the registered tools
  /quit   exit`,
	RunE: func(cmd *cobra.Command, args []string) error {
		memstore := store.NewMemoryStore()

		var callback assistants.Callback
		if verbose {
			callback = assistants.NewPrinterCallback(os.Stderr)
		}

		agent, err := buildAssistant(memstore, callback)
		if err != nil {
			return err
		}

		ctx, err := chatmodel.SetChatID(context.Background(), "")
		if err != nil {
			return errors.WithMessage(err, "failed to create chat context")
		}

		userColor := color.New(color.FgGreen, color.Bold)
		agentColor := color.New(color.FgCyan, color.Bold)
		errColor := color.New(color.FgRed)

		fmt.Fprintf(os.Stdout, "Chatting with %s. Type /quit to exit.\n", agent.Name())

		scanner := bufio.NewScanner(os.Stdin)
		for {
			_, _ = userColor.Fprint(os.Stdout, "\nyou> ")
			if !scanner.Scan() {
				break
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			switch line {
			case "/quit", "/exit":
				return nil
			case "/reset":
				if err := memstore.Reset(ctx); err != nil {
					_, _ = errColor.Fprintf(os.Stdout, "failed to reset: %s\n", err.Error())
				} else {
					fmt.Fprintln(os.Stdout, "history cleared")
				}
				continue
			case "/tools":
				for _, tool := range agent.GetTools() {
					fmt.Fprintf(os.Stdout, "- %s: %s\n", tool.Name(), tool.Description())
				}
				continue
			}

			var out chatmodel.OutputResult
			_, err := agent.Run(ctx, &assistants.CallInput{Input: line}, &out)
			if err != nil {
				_, _ = errColor.Fprintf(os.Stdout, "error: %s\n", err.Error())
				continue
			}

			_, _ = agentColor.Fprint(os.Stdout, "agent> ")
			fmt.Fprintln(os.Stdout, renderMarkdown(out.GetContent()))
		}

		return scanner.Err()
	},
}
