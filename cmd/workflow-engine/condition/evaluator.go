package condition

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
)

// Evaluator evaluates conditions using CEL (Common Expression Language).
// Compiled programs are cached per expression.
type Evaluator struct {
	cache map[string]cel.Program
	mu    sync.RWMutex
}

// NewEvaluator creates a new condition evaluator with caching
func NewEvaluator() *Evaluator {
	return &Evaluator{
		cache: make(map[string]cel.Program),
	}
}

// Evaluate evaluates a CEL expression against the payload data map and
// returns the boolean result
func (e *Evaluator) Evaluate(expression string, data map[string]interface{}) (bool, error) {
	if expression == "" {
		return false, fmt.Errorf("empty condition expression")
	}

	e.mu.RLock()
	prg, exists := e.cache[expression]
	e.mu.RUnlock()

	if !exists {
		var err error
		prg, err = e.compile(expression)
		if err != nil {
			return false, err
		}

		e.mu.Lock()
		e.cache[expression] = prg
		e.mu.Unlock()
	}

	if data == nil {
		data = make(map[string]interface{})
	}
	out, _, err := prg.Eval(map[string]interface{}{
		"data": data,
	})
	if err != nil {
		return false, fmt.Errorf("CEL evaluation error: %w", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("CEL expression did not return boolean, got %T", out.Value())
	}

	return result, nil
}

// compile compiles a CEL expression
func (e *Evaluator) compile(expression string) (cel.Program, error) {
	env, err := cel.NewEnv(
		cel.Variable("data", cel.DynType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL env: %w", err)
	}

	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("CEL compilation error: %w", issues.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL program: %w", err)
	}

	return prg, nil
}

// ClearCache clears the compiled expression cache
func (e *Evaluator) ClearCache() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache = make(map[string]cel.Program)
}

// CacheSize returns the number of cached expressions
func (e *Evaluator) CacheSize() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.cache)
}
