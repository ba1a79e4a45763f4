package commands

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tamasfe/mosaic/cmd/mosaic/config"
	"github.com/tamasfe/mosaic/cmd/mosaic/generate"
	"github.com/tamasfe/mosaic/internal/docgen"
	"github.com/tamasfe/mosaic/pkg/generator"
	"github.com/tamasfe/mosaic/pkg/module"
	"github.com/tamasfe/mosaic/pkg/util"
	"github.com/tamasfe/mosaic/pkg/util/cli"
	"github.com/tamasfe/mosaic/pkg/variant"
)

func init() {
	getCmd := &cobra.Command{
		Use:          "get [target]",
		Short:        "Get available values",
		SilenceUsage: false,
	}

	getOpts := &config.GetOptions{}

	getConfigCmd := &cobra.Command{
		Use:          "configuration",
		Short:        "Provides an example configuration",
		Aliases:      []string{"c", "conf", "config"},
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if getOpts.OutPath == "" || getOpts.OutPath == "-" {
				cli.Silent = true
			}

			if getOpts.NoComments {
				util.DisableYAMLMarshalComments = true
			}

			configComment := "# Generated config file for Mosaic, a modular template assembler.\n\n"

			conf := config.DefaultMosaicOptions()

			if getOpts.All {
				conf.Transformers = make([]*config.Transformer, 0)
				for _, t := range config.Transformers {
					conf.Transformers = append(conf.Transformers, &config.Transformer{
						Name:    t.Name(),
						Options: t.DefaultOptions(),
					})
				}

				conf.Parsers = make(map[string]interface{})
				for _, p := range config.Parsers {
					conf.Parsers[p.Name()] = p.DefaultOptions()
				}
			}

			b, err := marshalYAML(conf)
			if err != nil {
				return err
			}

			return writeOutput(getOpts, configComment+string(b))
		},
	}

	getConfigCmd.Flags().BoolVarP(&getOpts.NoComments, "no-comments", "", false, "Disables all comments")
	getConfigCmd.Flags().StringVarP(&getOpts.OutPath, "out", "o", "", "the output file")
	getConfigCmd.Flags().BoolVarP(&getOpts.All, "all", "a", false, "include all possible values")
	getConfigCmd.Flags().BoolVarP(&getOpts.Force, "force", "f", true, "force overwriting files")

	getDocsCmd := &cobra.Command{
		Use:          "docs",
		Short:        "Provides the reference of parsers and transformers in markdown",
		Aliases:      []string{"d", "doc"},
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if getOpts.OutPath == "" || getOpts.OutPath == "-" {
				cli.Silent = true
			}

			parsers := make([]docgen.Component, 0, len(config.Parsers))
			for _, p := range config.Parsers {
				parsers = append(parsers, p)
			}

			transformers := make([]docgen.Component, 0, len(config.Transformers))
			for _, t := range config.Transformers {
				transformers = append(transformers, t)
			}

			md := docgen.Section("Parsers", parsers) + docgen.Section("Project transformers", transformers)

			return writeOutput(getOpts, md)
		},
	}
	getDocsCmd.Flags().StringVarP(&getOpts.OutPath, "out", "o", "", "the output file")
	getDocsCmd.Flags().BoolVarP(&getOpts.Force, "force", "f", true, "force overwriting files")

	getParsersCmd := &cobra.Command{
		Use:          "parsers",
		Short:        "List all parsers",
		Aliases:      []string{"p", "parser", "parse"},
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			printParsers()
		},
	}

	getTransformersCmd := &cobra.Command{
		Use:          "transformers",
		Short:        "List all transformers",
		Aliases:      []string{"t", "trans", "transform"},
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			printTransformers()
		},
	}

	getAllCmd := &cobra.Command{
		Use:          "all",
		Short:        "List all components",
		Aliases:      []string{"a"},
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			printParsers()
			fmt.Println()
			printTransformers()
		},
	}

	getVariantsCmd := &cobra.Command{
		Use:          "variants [project file] [module files...]",
		Short:        "List the variants of a project",
		Aliases:      []string{"var", "variant"},
		SilenceUsage: true,
		Args:         cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			project, gen, err := loadProject(getOpts, args)
			if err != nil {
				return err
			}

			assignments := variant.Full(project.Modules)

			if getOpts.Dump {
				spew.Fdump(os.Stdout, assignments)
				return nil
			}

			cli.Infof("Variant enablers: %v\n", strings.Join(variant.Names(project.Modules), ", "))

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 4, ' ', 0)
			for _, a := range assignments {
				code := a.Code()
				name, err := gen.FileName(project, code)
				if err != nil {
					return err
				}
				if code == "" {
					code = "base"
				}
				fmt.Fprintf(w, "\t%v\t%v\t%v\n", code, a.String(), name)
			}
			return w.Flush()
		},
	}
	getVariantsCmd.Flags().BoolVarP(&getOpts.Dump, "dump", "d", false, "dump the assignments for debugging")

	getModulesCmd := &cobra.Command{
		Use:          "modules [project file] [module files...]",
		Short:        "List the modules of a project",
		Aliases:      []string{"m", "mod", "module"},
		SilenceUsage: true,
		Args:         cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			project, _, err := loadProject(getOpts, args)
			if err != nil {
				return err
			}

			if getOpts.Dump {
				spew.Fdump(os.Stdout, project.Modules)
				return nil
			}

			cli.Infof("Modules of %v:\n", project.Name)
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 4, ' ', 0)
			for _, m := range project.Modules {
				enablers := make([]string, 0, len(m.Enablers))
				for _, e := range m.Enablers {
					if e.Named() {
						enablers = append(enablers, fmt.Sprintf("%v=%v", e.Name, e.Value))
					}
				}
				fmt.Fprintf(w, "\t%v\t%v\t%v\t%v\n", m.ID, m.Label(), m.Version, strings.Join(enablers, ", "))
			}
			return w.Flush()
		},
	}
	getModulesCmd.Flags().BoolVarP(&getOpts.Dump, "dump", "d", false, "dump the modules for debugging")

	getFunctionsCmd := &cobra.Command{
		Use:          "functions [project file] [module files...]",
		Short:        "Show the call sequences of a project",
		Aliases:      []string{"f", "fn", "function"},
		SilenceUsage: true,
		Args:         cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			project, gen, err := loadProject(getOpts, args)
			if err != nil {
				return err
			}

			_, tree := gen.Outline(project, module.Assignment{})
			fmt.Print(tree)
			return nil
		},
	}

	getKeywordsCmd := &cobra.Command{
		Use:          "keywords [project file] [module files...]",
		Short:        "List the hooks available in a project",
		Aliases:      []string{"k", "hooks"},
		SilenceUsage: true,
		Args:         cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			project, gen, err := loadProject(getOpts, args)
			if err != nil {
				return err
			}

			keywords, _ := gen.Outline(project, module.Assignment{})
			sort.Strings(keywords)
			for _, k := range keywords {
				fmt.Println(k)
			}
			return nil
		},
	}

	for _, c := range []*cobra.Command{getVariantsCmd, getModulesCmd, getFunctionsCmd, getKeywordsCmd} {
		c.Flags().StringVarP(&getOpts.ConfigPath, "config", "c", "", "path to the configuration file")
	}

	getCmd.AddCommand(getAllCmd)
	getCmd.AddCommand(getTransformersCmd)
	getCmd.AddCommand(getParsersCmd)
	getCmd.AddCommand(getConfigCmd)
	getCmd.AddCommand(getDocsCmd)
	getCmd.AddCommand(getVariantsCmd)
	getCmd.AddCommand(getModulesCmd)
	getCmd.AddCommand(getFunctionsCmd)
	getCmd.AddCommand(getKeywordsCmd)

	rootCmd.AddCommand(getCmd)
}

func loadProject(getOpts *config.GetOptions, args []string) (*module.Project, *generator.Generator, error) {
	opts, err := generate.LoadOptions(getOpts.ConfigPath, nil)
	if err != nil {
		return nil, nil, err
	}

	project, err := generate.Load(context.Background(), opts, args)
	if err != nil {
		return nil, nil, err
	}

	genOpts, err := config.GeneratorOptions(opts, logger)
	if err != nil {
		return nil, nil, err
	}

	return project, generator.New(genOpts), nil
}

func writeOutput(getOpts *config.GetOptions, content string) error {
	if getOpts.OutPath == "" || getOpts.OutPath == "-" {
		fmt.Println(content)
		return nil
	}

	if !getOpts.Force {
		_, err := os.Stat(getOpts.OutPath)
		if err == nil {
			return fmt.Errorf("file already exists, use \"-f\" to force overwrite")
		}
	}

	err := os.MkdirAll(filepath.Dir(getOpts.OutPath), os.ModePerm)
	if err != nil {
		return err
	}

	info, err := os.Stat(getOpts.OutPath)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	if info != nil && info.IsDir() {
		return fmt.Errorf("output path should be a file, not a directory")
	}

	return os.WriteFile(getOpts.OutPath, []byte(content), 0o644)
}

func printParsers() {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 4, ' ', 0)

	cli.Infof("Available parsers:\n")
	for _, p := range config.Parsers {
		fmt.Fprintf(w, "\t%v\t%v\n", p.Name(), p.Description())
	}
	w.Flush()
}

func printTransformers() {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 4, ' ', 0)

	cli.Infof("Available transformers:\n")
	for _, p := range config.Transformers {
		fmt.Fprintf(w, "\t%v\t%v\n", p.Name(), p.Description())
	}
	w.Flush()
}

// marshalYAML formats the output YAML properly.
func marshalYAML(v interface{}) ([]byte, error) {
	buf := &bytes.Buffer{}

	e := yaml.NewEncoder(buf)

	e.SetIndent(2)

	err := e.Encode(v)
	if err != nil {
		return nil, err
	}

	return []byte(strings.ReplaceAll(buf.String(), "\n\n\n", "\n\n")), nil
}
