package main

import (
	"context"
	"fmt"
	"os"

	"github.com/effective-security/agentdemo/tools/calculator"
	"github.com/effective-security/agentdemo/tools/currency"
	"github.com/effective-security/agentdemo/tools/facts"
	"github.com/effective-security/agentdemo/tools/jokes"
	"github.com/effective-security/agentdemo/tools/sysinfo"
	"github.com/effective-security/agentdemo/tools/weather"
	"github.com/effective-security/agentdemo/tools/wikipedia"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run every tool once without an LLM and print the results",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		title := color.New(color.FgCyan, color.Bold)
		fail := color.New(color.FgRed)

		section := func(name string) {
			_, _ = title.Fprintf(os.Stdout, "\n=== %s ===\n", name)
		}
		report := func(res fmt.Stringer, err error) {
			if err != nil {
				_, _ = fail.Fprintf(os.Stdout, "error: %s\n", err.Error())
				return
			}
			fmt.Fprintln(os.Stdout, res.String())
		}

		section("Currency Conversion")
		if tool, err := currency.New(); err != nil {
			_, _ = fail.Fprintf(os.Stdout, "disabled: %s\n", err.Error())
		} else {
			res, err := tool.Run(ctx, &currency.ConvertRequest{Amount: 1000, FromCurrency: "USD", ToCurrency: "EUR"})
			report(res, err)
		}

		section("Weather")
		if tool, err := weather.New(); err != nil {
			_, _ = fail.Fprintf(os.Stdout, "disabled: %s\n", err.Error())
		} else {
			res, err := tool.Run(ctx, &weather.WeatherRequest{Location: "London", Celsius: true})
			report(res, err)
		}

		section("Joke")
		if tool, err := jokes.New(); err != nil {
			_, _ = fail.Fprintf(os.Stdout, "disabled: %s\n", err.Error())
		} else {
			res, err := tool.Run(ctx, &jokes.JokeRequest{})
			report(res, err)
		}

		section("Random Fact")
		if tool, err := facts.New(); err != nil {
			_, _ = fail.Fprintf(os.Stdout, "disabled: %s\n", err.Error())
		} else {
			res, err := tool.Run(ctx, &facts.FactRequest{})
			report(res, err)
		}

		section("Wikipedia")
		if tool, err := wikipedia.New(); err != nil {
			_, _ = fail.Fprintf(os.Stdout, "disabled: %s\n", err.Error())
		} else {
			res, err := tool.Run(ctx, &wikipedia.SummaryRequest{Query: "Go (programming language)"})
			report(res, err)
		}

		section("Calculator")
		if tool, err := calculator.New(); err != nil {
			_, _ = fail.Fprintf(os.Stdout, "disabled: %s\n", err.Error())
		} else {
			res, err := tool.Run(ctx, &calculator.CalculateRequest{Expression: "(1000 * 0.85) + 150"})
			report(res, err)
		}

		section("System Info")
		if tool, err := sysinfo.New(); err != nil {
			_, _ = fail.Fprintf(os.Stdout, "disabled: %s\n", err.Error())
		} else {
			res, err := tool.Run(ctx, &sysinfo.InfoRequest{})
			report(res, err)
		}

		return nil
	},
}
