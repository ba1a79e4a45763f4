package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/tamasfe/mosaic/cmd/mosaic/config"
	"github.com/tamasfe/mosaic/cmd/mosaic/generate"
	"github.com/tamasfe/mosaic/pkg/util/cli"
)

func init() {
	genOpts := &config.GenerateOptions{}

	var success bool

	generateCmd := &cobra.Command{
		Use:          "generate [flags] [project file] [module files...]",
		Short:        "Generate documents",
		Aliases:      []string{"gen"},
		SilenceUsage: true,
		Args:         cobra.MinimumNArgs(1),
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if success {
				cli.Successln("All done!")
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if genOpts.OutPath == "" || genOpts.OutPath == "-" {
				cli.Silent = true
			}

			opts, err := generate.LoadOptions(genOpts.ConfigPath, &genOpts.Overrides)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			err = generate.Generate(ctx, genOpts, opts, args, logger)
			if err != nil {
				return fmt.Errorf("generation failed: %w", err)
			}
			success = true
			return nil
		},
	}
	generateCmd.Flags().StringVarP(&genOpts.ConfigPath, "config", "c", "", "path to the configuration file or - for stdin")
	generateCmd.Flags().StringVarP(&genOpts.OutPath, "out", "o", "", "the output directory or - for stdout")
	generateCmd.Flags().StringVarP(&genOpts.AllowedRoot, "root", "", "", "refuse to write outside of this directory")
	generateCmd.Flags().BoolVarP(&genOpts.Yes, "yes", "y", false, "answer to all prompts with the default answers")
	generateCmd.Flags().StringVarP(&genOpts.Minimal, "minimal", "m", "", "path to a configurations file, only the variants they use are generated")
	generateCmd.Flags().StringVarP(&genOpts.ManifestPath, "manifest", "", "", "write a manifest of the configurations and their documents, relative to the output directory")
	generateCmd.Flags().BoolVarP(&genOpts.Watch, "watch", "w", false, "regenerate the documents when the sources change")
	generateCmd.Flags().IntVarP(&genOpts.Overrides.Workers, "workers", "j", 0, "number of variants generated at once, overrides the config")
	generateCmd.Flags().StringVarP(&genOpts.Overrides.FilePattern, "pattern", "p", "", "file name pattern, overrides the config")
	generateCmd.Flags().BoolVarP(&genOpts.Overrides.ShowVariants, "show-variants", "", false, "don't hide the names of variant documents")
	generateCmd.Flags().BoolVarP(&genOpts.Overrides.Timestamp, "timestamp", "", false, "add timestamp to the generated documents")

	rootCmd.AddCommand(generateCmd)
}
