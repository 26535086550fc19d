package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/effective-security/agentdemo/store"
	"github.com/effective-security/agentdemo/webui"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web chat UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		memstore := store.NewMemoryStore()

		agent, err := buildAssistant(memstore, nil)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		server := webui.NewServer(agent, memstore, serveAddr)
		return server.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", webui.DefaultAddr, "listen address")
}
