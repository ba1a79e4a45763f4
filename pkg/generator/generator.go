// Package generator drives the generation of documents from a project.
package generator

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tamasfe/mosaic/pkg/common"
	"github.com/tamasfe/mosaic/pkg/errs"
	"github.com/tamasfe/mosaic/pkg/module"
	"github.com/tamasfe/mosaic/pkg/validate"
	"github.com/tamasfe/mosaic/pkg/variant"
)

// DefaultFilePattern is the default artifact file name pattern.
const DefaultFilePattern = "{{ .Name }}{{ with .Variant }}-v{{ . }}{{ end }}.{{ .Extension }}"

// DefaultExtension is the default artifact file extension.
const DefaultExtension = "shader"

// Options control the generation.
type Options struct {
	// Dialect of the generated documents, the default is used if nil.
	Dialect *common.Dialect

	// Workers is the maximum number of variants generated at once,
	// the number of CPUs if not positive.
	Workers int

	// ShowVariants names variant documents without the hidden prefix.
	ShowVariants bool

	// HideEnablerProperties leaves the enablers out of the properties block.
	HideEnablerProperties bool

	// Comments adds a header comment to the documents.
	Comments bool

	// Timestamp adds the generation time to the header comment.
	Timestamp bool

	// FilePattern is a text/template with sprig functions for the file names.
	FilePattern string

	// Extension of the generated files.
	Extension string

	// MissingProperties is the severity of properties missing
	// from the properties template.
	MissingProperties validate.Severity

	Logger *zap.Logger
}

// Generator generates the documents of projects.
type Generator struct {
	options Options
	dialect *common.Dialect
	logger  *zap.Logger
	now     func() time.Time
}

// New returns a generator with the given options.
func New(opts Options) *Generator {
	if opts.Dialect == nil {
		opts.Dialect = common.DefaultDialect()
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.FilePattern == "" {
		opts.FilePattern = DefaultFilePattern
	}
	if opts.Extension == "" {
		opts.Extension = DefaultExtension
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Generator{
		options: opts,
		dialect: opts.Dialect,
		logger:  opts.Logger,
		now:     time.Now,
	}
}

// Artifact is a generated document.
type Artifact struct {
	// FileName is the name of the file the document is written to.
	FileName string

	// DocumentName is the name written in the document header.
	DocumentName string

	Assignment module.Assignment

	// Configurations are the configurations the document was generated for,
	// only set in minimal mode.
	Configurations []string

	Text string

	// Diagnostics are the problems that didn't stop the generation.
	Diagnostics []string

	// Err is set if the document couldn't be generated.
	Err error
}

// Validate returns every issue of the project.
func (g *Generator) Validate(p *module.Project) []validate.Issue {
	issues := validate.Audit(p.Modules)
	return append(issues, validate.MissingProperties(p, g.options.MissingProperties)...)
}

type job struct {
	assignment     module.Assignment
	configurations []string
	minimal        bool
}

// GenerateAll generates a document for every combination of the
// variant enablers.
//
// Artifacts are returned in enumeration order. A document that fails
// has its Err set, the others are not affected.
func (g *Generator) GenerateAll(ctx context.Context, p *module.Project) ([]*Artifact, error) {
	n, err := g.prepare(p)
	if err != nil {
		return nil, err
	}

	assignments := variant.Full(p.Modules)
	g.logger.Info("generating all variants",
		zap.String("project", p.Name),
		zap.Int("variants", len(assignments)),
	)

	jobs := make([]job, 0, len(assignments))
	for _, a := range assignments {
		jobs = append(jobs, job{assignment: a})
	}

	return g.run(ctx, p, n, jobs)
}

// GenerateMinimal generates one document for each distinct set of enabler
// values used by the configurations.
func (g *Generator) GenerateMinimal(ctx context.Context, p *module.Project, configs []module.Configuration) ([]*Artifact, error) {
	n, err := g.prepare(p)
	if err != nil {
		return nil, err
	}

	buckets := variant.Minimal(p.Modules, configs)
	g.logger.Info("generating minimal variants",
		zap.String("project", p.Name),
		zap.Int("configurations", len(configs)),
		zap.Int("variants", len(buckets)),
	)

	jobs := make([]job, 0, len(buckets))
	for _, b := range buckets {
		jobs = append(jobs, job{
			assignment:     b.Assignment,
			configurations: b.Configurations,
			minimal:        true,
		})
	}

	return g.run(ctx, p, n, jobs)
}

func (g *Generator) prepare(p *module.Project) (*namer, error) {
	if p == nil {
		return nil, &errs.ConfigurationError{Reason: "no project given"}
	}

	if blocking := validate.Blocking(g.Validate(p)); len(blocking) > 0 {
		return nil, &errs.ValidationError{Issues: validate.Strings(blocking)}
	}

	if strings.TrimSpace(p.Template) == "" {
		return nil, &errs.ConfigurationError{Path: p.Name, Reason: "the root template is missing"}
	}

	n, err := newNamer(g.options.FilePattern, g.options.Extension)
	if err != nil {
		return nil, &errs.ConfigurationError{Reason: err.Error()}
	}

	return n, nil
}

func (g *Generator) run(ctx context.Context, p *module.Project, n *namer, jobs []job) ([]*Artifact, error) {
	artifacts := make([]*Artifact, len(jobs))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.options.Workers)

	for i := range jobs {
		if egCtx.Err() != nil {
			break
		}

		i := i
		j := jobs[i]

		eg.Go(func() error {
			artifacts[i] = g.generate(egCtx, p, n, j)
			return nil
		})
	}

	_ = eg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return artifacts, nil
}

func (g *Generator) generate(ctx context.Context, p *module.Project, n *namer, j job) (a *Artifact) {
	a = &Artifact{
		Assignment:     j.assignment,
		Configurations: j.configurations,
	}

	code := j.assignment.Code()

	defer func() {
		if r := recover(); r != nil {
			a.Err = &errs.GenerationError{Variant: code, Err: fmt.Errorf("%v", r)}
		}
		if a.Err != nil {
			g.logger.Error("variant failed", zap.String("variant", code), zap.Error(a.Err))
		}
	}()

	if err := ctx.Err(); err != nil {
		a.Err = &errs.GenerationError{Variant: code, Err: err}
		return a
	}

	fileName, err := n.FileName(p, code)
	if err != nil {
		a.Err = &errs.GenerationError{Variant: code, Err: err}
		return a
	}
	a.FileName = fileName

	if j.minimal {
		a.DocumentName = MinimalDocumentName(p.Path, code)
	} else {
		a.DocumentName = DocumentName(p.Path, code, !g.options.ShowVariants)
	}

	gc := g.NewContext(p, j.assignment, a.DocumentName)
	gc.Minimal = j.minimal
	a.Text = gc.Run()
	a.Diagnostics = gc.Diagnostics()

	g.logger.Debug("variant generated",
		zap.String("variant", code),
		zap.String("file", a.FileName),
		zap.Int("diagnostics", len(a.Diagnostics)),
	)

	return a
}
