// Command adk runs the declarative tool and agent execution engine:
// an HTTP server plus one-shot tool and agent invocation from the
// command line.
package main

import (
	"fmt"
	"os"

	"github.com/effective-security/xlog"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	version = "dev"

	cfgDir string
	debug  bool
)

func main() {
	// best effort; a missing .env file is fine
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "adk",
		Short: "Declarative tool and agent execution engine",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			xlog.SetFormatter(xlog.NewStringFormatter(os.Stderr))
			if debug {
				xlog.SetGlobalLogLevel(xlog.DEBUG)
			} else {
				xlog.SetGlobalLogLevel(xlog.INFO)
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&cfgDir, "config-dir", "config", "directory with tools/ and agents/ specifications")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(
		serveCmd(),
		runCmd(),
		listCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}
}
