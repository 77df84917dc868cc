package estimation

import (
	"context"
	"runtime"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/lvslam/okvis/timing"
)

// Residual binds one error term to its parameter blocks and output
// buffers for a batch evaluation. Outputs of distinct residuals must not
// alias; parameter blocks may be shared since evaluation only reads
// them.
type Residual struct {
	Term             ErrorTerm
	Parameters       [][]float64
	Residuals        []float64
	Jacobians        []*mat.Dense
	JacobiansMinimal []*mat.Dense
}

// Evaluator evaluates batches of error terms across a bounded worker
// pool. The surrounding solver owns parameter synchronization between
// iterations; the evaluator only fans the (read-only, side-effect-free)
// evaluations out.
type Evaluator struct {
	logger   golog.Logger
	registry *timing.Registry
	workers  int
}

// NewEvaluator returns an evaluator running at most workers evaluations
// concurrently; workers <= 0 means one per CPU. A nil registry uses the
// process-wide default.
func NewEvaluator(logger golog.Logger, registry *timing.Registry, workers int) *Evaluator {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if registry == nil {
		registry = timing.Default()
	}
	return &Evaluator{logger: logger, registry: registry, workers: workers}
}

// EvaluateAll evaluates every residual in the batch, stopping early if
// ctx is canceled or a term reports an unusable parameter
// configuration.
func (ev *Evaluator) EvaluateAll(ctx context.Context, batch []Residual) error {
	defer ev.registry.Timer("estimation.EvaluateAll").Stop()

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(ev.workers)
	for i := range batch {
		r := &batch[i]
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if ok := r.Term.EvaluateWithMinimalJacobians(
				r.Parameters, r.Residuals, r.Jacobians, r.JacobiansMinimal,
			); !ok {
				return errors.Errorf("%s evaluation failed", r.Term.TypeInfo())
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}
	ev.logger.Debugw("evaluated residual batch", "residuals", len(batch), "workers", ev.workers)
	return nil
}
