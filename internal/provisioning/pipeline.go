package provisioning

import (
	"fmt"
	"time"
)

// Pipeline executes phases sequentially, stopping at the first failure.
type Pipeline struct {
	Phases []Phase
}

// NewPipeline builds a pipeline over the given phases in order.
func NewPipeline(phases ...Phase) *Pipeline {
	return &Pipeline{Phases: phases}
}

// Run provisions every phase in order. On failure the error names the
// phase and wraps the cause; remote changes made by completed phases stay
// in place, so re-running the pipeline is the recovery path.
func (p *Pipeline) Run(ctx *Context) error {
	start := time.Now()
	for i, phase := range p.Phases {
		phaseStart := time.Now()
		ctx.Log.Info("phase starting", "phase", phase.Name(), "step", fmt.Sprintf("%d/%d", i+1, len(p.Phases)))

		if err := phase.Provision(ctx); err != nil {
			return fmt.Errorf("%s phase failed: %w", phase.Name(), err)
		}

		ctx.Log.Info("phase completed", "phase", phase.Name(), "duration", time.Since(phaseStart).Round(time.Millisecond))
	}
	ctx.Log.Info("provisioning completed", "phases", len(p.Phases), "duration", time.Since(start).Round(time.Millisecond))
	return nil
}
