package commands

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tamasfe/mosaic/pkg/util/cli"
)

var verbose bool
var silent bool
var noColors bool

var version string = "not versioned"

// logger is the structured logger of the libraries,
// it only prints anything in verbose mode.
var logger = zap.NewNop()

var rootCmd = &cobra.Command{
	Use:           "mosaic",
	Short:         "Mosaic assembles documents from modular templates",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cli.Verbose = verbose
		cli.Silent = silent

		color.NoColor = noColors || !isatty.IsTerminal(os.Stdout.Fd())

		if verbose && !silent {
			l, err := zap.NewDevelopment()
			if err != nil {
				cli.Warningf("Failed to create logger: %v\n", err)
				return
			}
			logger = l
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

var versionCmd = &cobra.Command{
	Use:           "version",
	Short:         "Version of Mosaic",
	Aliases:       []string{"v"},
	SilenceErrors: true,
	SilenceUsage:  true,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print verbose messages")
	rootCmd.PersistentFlags().BoolVarP(&silent, "silent", "s", false, "only print error messages, overwrites verbose")
	rootCmd.PersistentFlags().BoolVarP(&noColors, "no-colors", "", false, "disable colors in the output messages")

	rootCmd.AddCommand(versionCmd)
}

// Execute executes the commands.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		cli.Failureln(err)
		os.Exit(1)
	}
}
