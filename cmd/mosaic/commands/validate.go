package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tamasfe/mosaic/cmd/mosaic/config"
	"github.com/tamasfe/mosaic/cmd/mosaic/generate"
	"github.com/tamasfe/mosaic/pkg/generator"
	"github.com/tamasfe/mosaic/pkg/util/cli"
	"github.com/tamasfe/mosaic/pkg/validate"
)

func init() {
	var configPath string

	validateCmd := &cobra.Command{
		Use:          "validate [flags] [project file] [module files...]",
		Short:        "Check the modules of a project",
		Aliases:      []string{"check"},
		SilenceUsage: true,
		Args:         cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := generate.LoadOptions(configPath, nil)
			if err != nil {
				return err
			}

			project, err := generate.Load(context.Background(), opts, args)
			if err != nil {
				return err
			}

			genOpts, err := config.GeneratorOptions(opts, logger)
			if err != nil {
				return err
			}

			issues := generator.New(genOpts).Validate(project)
			for _, issue := range issues {
				if issue.Severity == validate.SeverityError {
					cli.Failureln(issue.String())
				} else {
					cli.Warningln(issue.String())
				}
			}

			if blocking := validate.Blocking(issues); len(blocking) > 0 {
				return fmt.Errorf("%v blocking issues found", len(blocking))
			}

			cli.Successf("%v modules are valid.\n", len(project.Modules))
			return nil
		},
	}
	validateCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to the configuration file or - for stdin")

	rootCmd.AddCommand(validateCmd)
}
