// Package main provides the breezy command: the dashboard API server and a
// one-shot forecast printer.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/breezy/breezy/internal/config"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const serviceName = "breezy-api"

var (
	configFile string
	envFiles   []string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "breezy",
		Short:         "Breezy weather dashboard",
		Long:          "Serve the Breezy weather dashboard API or print a forecast window once",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadDotEnv(envFiles...)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (YAML)")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "dotenv files to load (default .env)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(forecastCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "breezy %s (built %s)\n", Version, BuildTime)
		},
	}
}
