// Command agentdemo runs a demo LLM agent with REST-API tools: one-shot
// questions, an interactive chat, a web UI, and a no-LLM tool demo.
package main

import (
	"fmt"
	"os"

	"github.com/effective-security/xlog"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/agentdemo", "cmd")

var (
	cfgPath   string
	modelName string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "agentdemo",
	Short: "Demo LLM agent with REST-API tools",
	Long: `agentdemo is a demonstration agent toolkit. It exposes currency
conversion, weather, jokes, random facts, Wikipedia summaries, web search,
a calculator, and system info as LLM tools, and provides one-shot, chat,
and web launchers for an agent built on them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// optional, keys may come from the environment directly
		_ = godotenv.Load()

		xlog.SetFormatter(xlog.NewStringFormatter(os.Stderr))
		if verbose {
			xlog.SetGlobalLogLevel(xlog.DEBUG)
		} else {
			xlog.SetGlobalLogLevel(xlog.WARNING)
		}
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "cfg", "", "path to the LLM provider config file")
	rootCmd.PersistentFlags().StringVar(&modelName, "model", "", "preferred model name")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(serveCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
		os.Exit(1)
	}
}
