package sim

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	filter "github.com/jakegem/ACE"
	"github.com/jakegem/ACE/estimate"
	"github.com/jakegem/ACE/kalman"
	"github.com/jakegem/ACE/matrix"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Sigma is the width of the uncertainty envelope reported by Result.
const Sigma = 3.0

// Result stores the estimates produced by Run.
type Result struct {
	// Prior contains the estimates after every predict step
	Prior []*estimate.Base
	// Posterior contains the estimates after every update step.
	// It equals the prior estimate when the measurement was skipped.
	Posterior []*estimate.Base
	// Skipped contains the steps whose measurement was rejected with kalman.ErrSingularInnovation
	Skipped []int
}

// Run filters the measurements zs with f. For every measurement it predicts,
// records the priori estimate and updates the filter.
// Measurements whose innovation covariance can not be inverted are logged and skipped;
// any other update error aborts the run.
func Run(f filter.Filter, zs []mat.Vector, log *slog.Logger) (*Result, error) {
	if f == nil {
		return nil, fmt.Errorf("invalid filter supplied")
	}

	if log == nil {
		log = slog.Default()
	}

	res := &Result{
		Prior:     make([]*estimate.Base, 0, len(zs)),
		Posterior: make([]*estimate.Base, 0, len(zs)),
	}

	for i, z := range zs {
		f.Predict()

		prior, err := estimate.NewBaseWithCov(f.State(), f.Cov())
		if err != nil {
			return nil, err
		}
		res.Prior = append(res.Prior, prior)

		vars := matrix.Diag(prior.Cov())
		log.Debug("predict", "step", i, "sigma", math.Sqrt(vars[0]), "variance", vars)

		if err := f.Update(z); err != nil {
			if !errors.Is(err, kalman.ErrSingularInnovation) {
				return nil, fmt.Errorf("update failed at step %d: %w", i, err)
			}
			log.Warn("measurement skipped", "step", i, "error", err)
			res.Skipped = append(res.Skipped, i)
		}

		post, err := estimate.NewBaseWithCov(f.State(), f.Cov())
		if err != nil {
			return nil, err
		}
		res.Posterior = append(res.Posterior, post)
	}

	log.Info("filter run finished", "steps", len(zs), "skipped", len(res.Skipped))

	return res, nil
}

// Len returns the number of filter steps.
func (r *Result) Len() int { return len(r.Prior) }

// PriorSeries returns the i-th state component of every priori estimate.
func (r *Result) PriorSeries(i int) []float64 { return series(r.Prior, i) }

// PosteriorSeries returns the i-th state component of every posteriori estimate.
func (r *Result) PosteriorSeries(i int) []float64 { return series(r.Posterior, i) }

// Bounds returns the Sigma envelope of the i-th state component of the priori estimates.
func (r *Result) Bounds(i int) (lower, upper []float64) {
	lower = make([]float64, len(r.Prior))
	upper = make([]float64, len(r.Prior))

	for k, e := range r.Prior {
		l, u := e.Bounds(Sigma)
		lower[k], upper[k] = l[i], u[i]
	}

	return lower, upper
}

// Errors summarizes the posteriori estimation error of the i-th state component against truth.
// It returns the mean and standard deviation of the error and its root mean square.
func (r *Result) Errors(i int, truth []float64) (mean, std, rmse float64, err error) {
	est := r.PosteriorSeries(i)
	if len(est) == 0 || len(est) != len(truth) {
		return 0, 0, 0, fmt.Errorf("invalid truth length: %d, expected %d", len(truth), len(est))
	}

	diff := make([]float64, len(est))
	floats.SubTo(diff, est, truth)

	mean, std = stat.MeanStdDev(diff, nil)
	rmse = floats.Distance(est, truth, 2) / math.Sqrt(float64(len(est)))

	return mean, std, rmse, nil
}

func series(es []*estimate.Base, i int) []float64 {
	s := make([]float64, len(es))
	for k, e := range es {
		s[k] = e.Val().AtVec(i)
	}

	return s
}
