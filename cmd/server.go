package cmd

import (
	"github.com/spf13/cobra"

	"github.com/duythanhle/live-beats/server"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the Live Beats server",
	Long:  `Start the Live Beats HTTP server: library API, playback control and the websocket event feed.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
