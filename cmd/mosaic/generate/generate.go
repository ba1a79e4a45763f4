package generate

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/tamasfe/mosaic/cmd/mosaic/config"
	"github.com/tamasfe/mosaic/internal/watch"
	"github.com/tamasfe/mosaic/pkg/generator"
	"github.com/tamasfe/mosaic/pkg/module"
	"github.com/tamasfe/mosaic/pkg/parser"
	"github.com/tamasfe/mosaic/pkg/transformer"
	"github.com/tamasfe/mosaic/pkg/util/cli"
)

// LoadOptions reads the config file over the default options,
// "-" reads it from the standard input.
func LoadOptions(path string, overrides *config.MosaicOptions) (*config.MosaicOptions, error) {
	opts := config.DefaultMosaicOptions()

	if path != "" {
		var bt []byte

		if path == "-" {
			b, err := io.ReadAll(os.Stdin)
			if err != nil {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
			bt = b

			cli.Verboseln("Using config from stdin.")
		} else {
			b, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			bt = b

			cli.Verboseln("Using config from \"" + path + "\".")
		}

		err := yaml.Unmarshal(bt, opts)
		if err != nil {
			return nil, fmt.Errorf("invalid config file: %w", err)
		}
	}

	config.NormalizeNames(opts)

	if err := config.Merge(opts, overrides); err != nil {
		return nil, err
	}

	if err := config.ValidateMosaicOptions(opts); err != nil {
		return nil, err
	}

	return opts, nil
}

// Load parses the project and runs the configured transformers on it.
func Load(ctx context.Context, options *config.MosaicOptions, inPaths []string) (*module.Project, error) {
	p, err := parseProject(ctx, options, inPaths)
	if err != nil {
		return nil, err
	}

	steps := make([]transformer.Step, 0, len(options.Transformers))
	for _, t := range options.Transformers {
		steps = append(steps, transformer.Step{
			Transformer: config.FindTransformer(t.Name),
			Options:     t.Options,
		})
	}

	return transformer.Apply(ctx, p, steps...)
}

func parseProject(ctx context.Context, options *config.MosaicOptions, inPaths []string) (*module.Project, error) {
	if len(inPaths) == 0 {
		return nil, fmt.Errorf("no input specified")
	}

	parsers := getParsers(options)

	if len(inPaths) == 1 && inPaths[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read from standard input %w", err)
		}

		errStrings := make([]string, 0, len(parsers))

		for _, p := range parsers {
			project, err := p.Parse(ctx, options.Parsers[p.Name()], data)
			if err != nil {
				errStrings = append(errStrings, fmt.Sprintf("%v: %v", p.Name(), err.Error()))
				continue
			}

			cli.Verbosef("Project was successfully parsed by the %v parser.\n", p.Name())

			return project, nil
		}

		return nil, fmt.Errorf("no parsers could parse the data, parsers tried:\n%v", strings.Join(errStrings, "\n\n"))
	}

	errStrings := make([]string, 0, len(parsers))

	for _, p := range parsers {
		project, err := p.ParseResources(ctx, options.Parsers[p.Name()], inPaths...)
		if err != nil {
			errStrings = append(errStrings, fmt.Sprintf("%v: %v", p.Name(), err.Error()))
			continue
		}

		cli.Verbosef("Project was successfully parsed by the %v parser.\n", p.Name())
		return project, nil
	}

	return nil, fmt.Errorf("no parsers could parse the input files, parsers tried:\n%v", strings.Join(errStrings, "\n\n"))
}

func getParsers(options *config.MosaicOptions) []parser.Parser {
	if len(options.Parsers) == 0 {
		return config.Parsers
	}

	parsers := make([]parser.Parser, 0, len(options.Parsers))
	for _, p := range config.Parsers {
		if _, ok := options.Parsers[p.Name()]; ok {
			parsers = append(parsers, p)
		}
	}

	return parsers
}

// Generate generates the documents according to options,
// and keeps regenerating them on changes in watch mode.
func Generate(ctx context.Context, cliOpts *config.GenerateOptions, options *config.MosaicOptions, inPaths []string, logger *zap.Logger) error {
	if cliOpts.Watch {
		if cliOpts.OutPath == "" || cliOpts.OutPath == "-" {
			return fmt.Errorf("watching needs an output directory")
		}
		if len(inPaths) == 1 && inPaths[0] == "-" {
			return fmt.Errorf("watching needs project files")
		}
	}

	project, err := generateOnce(ctx, cliOpts, options, inPaths, nil, logger)
	if err != nil {
		return err
	}

	if !cliOpts.Watch {
		return nil
	}

	sources := append([]string(nil), project.Sources...)
	if cliOpts.ConfigPath != "" && cliOpts.ConfigPath != "-" {
		sources = append(sources, cliOpts.ConfigPath)
	}
	if cliOpts.Minimal != "" {
		sources = append(sources, cliOpts.Minimal)
	}

	w, err := watch.New(sources, watch.DefaultDebounce, logger)
	if err != nil {
		return err
	}
	defer w.Close()

	// Nobody answers prompts while watching.
	cliOpts.Yes = true

	cli.Infof("Watching %v files for changes.\n", len(sources))

	return w.Run(ctx, func(ctx context.Context) error {
		if cliOpts.ConfigPath != "" {
			reloaded, err := LoadOptions(cliOpts.ConfigPath, &cliOpts.Overrides)
			if err != nil {
				cli.Failuref("%v\n", err)
				return err
			}
			options = reloaded
		}

		_, err := generateOnce(ctx, cliOpts, options, inPaths, w, logger)
		if err != nil {
			cli.Failuref("Generation failed: %v\n", err)
		}
		return err
	})
}

func generateOnce(
	ctx context.Context,
	cliOpts *config.GenerateOptions,
	options *config.MosaicOptions,
	inPaths []string,
	index generator.Index,
	logger *zap.Logger,
) (*module.Project, error) {
	project, err := Load(ctx, options, inPaths)
	if err != nil {
		return nil, err
	}

	genOpts, err := config.GeneratorOptions(options, logger)
	if err != nil {
		return nil, err
	}

	gen := generator.New(genOpts)

	for _, issue := range gen.Validate(project) {
		cli.Warningln(issue.String())
	}

	var artifacts []*generator.Artifact

	if cliOpts.Minimal != "" {
		configs, err := parser.LoadConfigurations(cliOpts.Minimal)
		if err != nil {
			return nil, err
		}

		artifacts, err = gen.GenerateMinimal(ctx, project, configs)
		if err != nil {
			return nil, err
		}
	} else {
		artifacts, err = gen.GenerateAll(ctx, project)
		if err != nil {
			return nil, err
		}
	}

	failed := report(artifacts)

	if cliOpts.OutPath == "" || cliOpts.OutPath == "-" {
		for _, a := range artifacts {
			if a.Err == nil {
				fmt.Print(a.Text)
			}
		}
	} else if err := write(cliOpts, artifacts, index, logger); err != nil {
		return nil, err
	}

	if failed > 0 {
		return nil, fmt.Errorf("%v of %v documents failed", failed, len(artifacts))
	}

	return project, nil
}

func report(artifacts []*generator.Artifact) int {
	failed := 0

	for _, a := range artifacts {
		if a.Err != nil {
			failed++
			cli.Failuref("%v\n", a.Err)
			continue
		}

		for _, d := range a.Diagnostics {
			cli.Warningf("%v: %v\n", a.FileName, d)
		}

		cli.Verbosef("Generated %v.\n", a.FileName)
	}

	return failed
}

func write(cliOpts *config.GenerateOptions, artifacts []*generator.Artifact, index generator.Index, logger *zap.Logger) error {
	create := cliOpts.Yes

	if _, err := os.Stat(cliOpts.OutPath); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat target directory: %w", err)
		}

		if !cliOpts.Yes {
			prompt := &survey.Confirm{
				Message: fmt.Sprintf(`the directory "%v" doesn't exist, create it?`, cliOpts.OutPath),
			}
			err = survey.AskOne(prompt, &create)
			if err != nil {
				return err
			}
			if !create {
				return fmt.Errorf("aborted")
			}
		}
	}

	w := &generator.Writer{
		Dir:         cliOpts.OutPath,
		AllowedRoot: cliOpts.AllowedRoot,
		CreateDir:   create,
		Index:       index,
		Logger:      logger,
	}

	if !cliOpts.Yes {
		w.Overwrite = confirmOverwrite
		w.Resolve = resolveKeep
	}

	written, err := w.Write(artifacts)
	for _, path := range written {
		absName, absErr := filepath.Abs(path)
		if absErr != nil {
			absName = path
		}
		cli.Successf("%v written.\n", absName)
	}
	if err != nil {
		return err
	}

	if cliOpts.ManifestPath != "" {
		b, err := generator.Manifest(artifacts)
		if err != nil {
			return err
		}

		path := cliOpts.ManifestPath
		if !filepath.IsAbs(path) {
			path = filepath.Join(cliOpts.OutPath, path)
		}

		if err := os.WriteFile(path, b, 0o644); err != nil {
			return fmt.Errorf("failed to write manifest: %w", err)
		}
		cli.Successf("%v written.\n", path)
	}

	return nil
}

func confirmOverwrite(path string) (bool, error) {
	cont := false
	prompt := &survey.Confirm{
		Message: fmt.Sprintf(`the file "%v" already exists, continue?`, path),
		Default: true,
	}
	err := survey.AskOne(prompt, &cont)
	return cont, err
}

func resolveKeep(file, tag string, newTags []string) (generator.KeepDecision, error) {
	const (
		ignore = "drop it"
		backup = "back it up"
	)

	options := []string{ignore, backup}
	for _, t := range newTags {
		options = append(options, "move it to "+t)
	}

	answer := ignore
	prompt := &survey.Select{
		Message: fmt.Sprintf(`the kept block "%v" of "%v" is no longer generated, what should happen to it?`, tag, file),
		Options: options,
		Default: backup,
	}
	if err := survey.AskOne(prompt, &answer); err != nil {
		return generator.KeepDecision{}, err
	}

	switch {
	case answer == ignore:
		return generator.KeepDecision{Action: generator.KeepIgnore}, nil
	case answer == backup:
		return generator.KeepDecision{Action: generator.KeepBackup}, nil
	default:
		return generator.KeepDecision{
			Action: generator.KeepRetag,
			Tag:    strings.TrimPrefix(answer, "move it to "),
		}, nil
	}
}
