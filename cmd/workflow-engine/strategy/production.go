package strategy

import (
	"context"
	"fmt"

	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/events"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/graph"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/node"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/runner"
)

// Production runs one loop per producer and blocks until every loop has
// drained or been shut down
type Production struct {
	deps    Deps
	runners []*runner.LoopRunner
}

// NewProduction creates the production strategy
func NewProduction(deps Deps) Strategy {
	return &Production{deps: deps}
}

// Prepare builds a loop runner per producer
func (s *Production) Prepare(ctx context.Context) error {
	producers := graph.NewAnalyzer(s.deps.Graph).Producers()
	if len(producers) == 0 {
		return fmt.Errorf("workflow %s has no producers", s.deps.WorkflowID)
	}

	s.runners = make([]*runner.LoopRunner, 0, len(producers))
	for _, p := range producers {
		s.runners = append(s.runners, runner.NewLoopRunner(runner.Opts{
			Producer: p,
			Walker:   s.deps.Walker,
			Backoff:  s.deps.Backoff,
			Logger:   s.deps.Logger,
		}))
	}
	return nil
}

// Execute starts every loop and waits for all of them to finish. The
// trigger is ignored; producers drive themselves.
func (s *Production) Execute(ctx context.Context, trigger *node.Output) (*node.Output, error) {
	publish(s.deps, events.WorkflowStarted, "")

	for _, r := range s.runners {
		if err := r.Start(ctx); err != nil {
			publish(s.deps, events.WorkflowFailed, err.Error())
			return nil, err
		}
	}

	for _, r := range s.runners {
		if err := r.Wait(ctx); err != nil {
			publish(s.deps, events.WorkflowFailed, err.Error())
			return nil, err
		}
	}

	publish(s.deps, events.WorkflowCompleted, "")
	return nil, nil
}

// Shutdown stops every loop; force interrupts blocking work
func (s *Production) Shutdown(ctx context.Context, force bool) error {
	for _, r := range s.runners {
		if force {
			r.ForceShutdown()
		} else {
			r.Shutdown()
		}
	}
	for _, r := range s.runners {
		select {
		case <-r.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
