package cmd

import "github.com/spf13/cobra"

// Mainify adapts a Cobra command handler that returns an error into the
// Run signature Cobra expects, routing any returned error through Fatal so
// every subcommand gets consistent chain-printed diagnostics and exit
// codes without repeating that boilerplate itself.
func Mainify(entry func(*cobra.Command, []string) error) func(*cobra.Command, []string) {
	return func(command *cobra.Command, arguments []string) {
		if err := entry(command, arguments); err != nil {
			Fatal(err)
		}
	}
}
