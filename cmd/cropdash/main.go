// Command cropdash serves the farm environment dashboards.
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	rootCmd := &cobra.Command{
		Use:           "cropdash",
		Short:         "Chart data service for the farm environment dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(newServeCmd(logger), newRenderCmd())

	if err := rootCmd.Execute(); err != nil {
		logger.Error().Err(err).Msg("cropdash failed")
		os.Exit(1)
	}
}
