package validation

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/graph"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/mode"
)

// Target is what validators and preprocessors operate on: a built graph
// together with its description and detected mode
type Target struct {
	Mode        mode.Mode
	Description *graph.Description
	Graph       *graph.Graph
}

// Validator checks one structural rule. Modes scopes the rule; an empty
// list means universal.
type Validator interface {
	Name() string
	Modes() []mode.Mode
	Priority() int
	Validate(ctx context.Context, t *Target) error
}

// Preprocessor rewrites the target in place before execution (wiring
// queue names and the like). Same scoping rules as Validator.
type Preprocessor interface {
	Name() string
	Modes() []mode.Mode
	Priority() int
	Apply(ctx context.Context, t *Target) error
}

// Pipeline holds registered validators and preprocessors and runs the
// applicable ones in priority order (lower runs first; ties keep
// registration order).
type Pipeline struct {
	mu            sync.RWMutex
	validators    []Validator
	preprocessors []Preprocessor
}

// NewPipeline creates a pipeline preloaded with the standard rules
func NewPipeline() *Pipeline {
	p := &Pipeline{}
	p.RegisterValidator(NodeReadiness{})
	p.RegisterValidator(ProductionRules{})
	p.RegisterValidator(APIRules{})
	p.RegisterValidator(SingleNodeRules{})
	p.RegisterPreprocessor(QueueNamer{})
	return p
}

// RegisterValidator adds a validator to the pipeline
func (p *Pipeline) RegisterValidator(v Validator) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.validators = append(p.validators, v)
}

// RegisterPreprocessor adds a preprocessor to the pipeline
func (p *Pipeline) RegisterPreprocessor(pp Preprocessor) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.preprocessors = append(p.preprocessors, pp)
}

// Validate runs every applicable validator; the first failure stops the
// pipeline and names the rule
func (p *Pipeline) Validate(ctx context.Context, t *Target) error {
	p.mu.RLock()
	validators := make([]Validator, len(p.validators))
	copy(validators, p.validators)
	p.mu.RUnlock()

	sort.SliceStable(validators, func(i, j int) bool {
		return validators[i].Priority() < validators[j].Priority()
	})

	for _, v := range validators {
		if !applies(v.Modes(), t.Mode) {
			continue
		}
		if err := v.Validate(ctx, t); err != nil {
			return fmt.Errorf("validation %s: %w", v.Name(), err)
		}
	}
	return nil
}

// Preprocess runs every applicable preprocessor in priority order
func (p *Pipeline) Preprocess(ctx context.Context, t *Target) error {
	p.mu.RLock()
	preprocessors := make([]Preprocessor, len(p.preprocessors))
	copy(preprocessors, p.preprocessors)
	p.mu.RUnlock()

	sort.SliceStable(preprocessors, func(i, j int) bool {
		return preprocessors[i].Priority() < preprocessors[j].Priority()
	})

	for _, pp := range preprocessors {
		if !applies(pp.Modes(), t.Mode) {
			continue
		}
		if err := pp.Apply(ctx, t); err != nil {
			return fmt.Errorf("preprocess %s: %w", pp.Name(), err)
		}
	}
	return nil
}

func applies(modes []mode.Mode, m mode.Mode) bool {
	if len(modes) == 0 {
		return true
	}
	for _, candidate := range modes {
		if candidate == m {
			return true
		}
	}
	return false
}
