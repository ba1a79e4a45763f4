package transformer

import (
	"context"
	"fmt"

	"github.com/mohae/deepcopy"

	"github.com/tamasfe/mosaic/pkg/module"
)

// Transformer transforms a project
// after parsing and before generation.
type Transformer interface {
	// The name of the transformer.
	Name() string

	// A short description of the transformer.
	Description() string

	// DefaultOptions Returns the default options of the transformer, or nil if it has none.
	DefaultOptions() interface{}

	// Transform transforms the project based on options.
	Transform(ctx context.Context, options interface{}, project *module.Project) error
}

// Step is a transformer with its options.
type Step struct {
	Transformer Transformer
	Options     interface{}
}

// Apply runs the steps in order on a copy of the project,
// the given project is left untouched.
func Apply(ctx context.Context, p *module.Project, steps ...Step) (*module.Project, error) {
	out := deepcopy.Copy(p).(*module.Project)

	for _, s := range steps {
		if err := s.Transformer.Transform(ctx, s.Options, out); err != nil {
			return nil, fmt.Errorf("transformer %v failed: %w", s.Transformer.Name(), err)
		}
	}

	return out, nil
}
