package sim

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// CSVHeader is the header row written by WriteCSV.
var CSVHeader = []string{"step", "time", "measurement", "truth", "prior", "lower", "upper", "posterior"}

// WriteCSV writes one row per filter step to w: the first measurement component,
// the true position, the first state component of the priori and posteriori estimates
// and the priori Sigma envelope. dt scales the step index into time.
// truth may be nil, in which case the truth column is left empty.
func WriteCSV(w io.Writer, res *Result, truth []float64, meas []mat.Vector, dt float64) error {
	if res == nil {
		return fmt.Errorf("invalid result supplied")
	}

	n := res.Len()
	if len(meas) != n || (truth != nil && len(truth) != n) {
		return fmt.Errorf("invalid data dimensions: %d measurements, %d truths, %d estimates", len(meas), len(truth), n)
	}

	prior := res.PriorSeries(0)
	post := res.PosteriorSeries(0)
	lower, upper := res.Bounds(0)

	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}

	for i := 0; i < n; i++ {
		tr := ""
		if truth != nil {
			tr = formatFloat(truth[i])
		}

		row := []string{
			strconv.Itoa(i),
			formatFloat(float64(i) * dt),
			formatFloat(meas[i].AtVec(0)),
			tr,
			formatFloat(prior[i]),
			formatFloat(lower[i]),
			formatFloat(upper[i]),
			formatFloat(post[i]),
		}

		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()

	return cw.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
