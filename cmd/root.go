package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/duythanhle/live-beats/server"
)

var rootCmd = &cobra.Command{
	Use:   "livebeats",
	Short: "Live Beats is a shared listening room service.",
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
