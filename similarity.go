package mesh

import (
	"math"

	"github.com/sirupsen/logrus"
	"github.com/stevegt/mesh/num"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// similarity returns the similarity of x and y under metric m.
func similarity(m SimilarityMetric, x, y []float64) float64 {
	switch m {
	case InnerProduct:
		return floats.Dot(x, y)
	case HarmonicMean:
		return 2 * floats.Dot(x, y) / (floats.Sum(x) + floats.Sum(y))
	case Tanimoto:
		xy := floats.Dot(x, y)
		return xy / (floats.Dot(x, x) + floats.Dot(y, y) - xy)
	case Dice:
		return 2 * floats.Dot(x, y) / (floats.Dot(x, x) + floats.Dot(y, y))
	case PearsonCorrelation:
		return stat.Correlation(x, y, nil)
	}
	// cosine, zero unless the vectors point the same way
	xy := floats.Dot(x, y)
	denom := floats.Norm(x, 2) * floats.Norm(y, 2)
	if xy > 0 && denom > 0 {
		return xy / denom
	}
	return 0
}

// SimilarityResult is the output of SimilarityMatrix.
type SimilarityResult struct {
	// Matrix holds at (i, j) the similarity between the output for
	// item i and the target of item j, both taken at the last event.
	Matrix *num.Matrix
	// Mean and SD summarize the diagonal.
	Mean float64
	SD   float64
	// Reached counts the items whose output is at least as similar to
	// their own target as to any other.
	Reached int
}

// SimilarityMatrix runs every item of the active set and compares each
// item's final output with the final target of every item.
func (n *Network) SimilarityMatrix() (res SimilarityResult, err error) {
	err = n.ready()
	if err != nil {
		return
	}
	items := n.Active.Items.Elements()
	d := len(items)
	res.Matrix = num.NewMatrix(d, d)
	for i, it := range items {
		if n.interrupted() {
			n.log.WithField("network", n.name).Warn("similarity matrix interrupted")
			return
		}
		_, events := n.runItem(it, []EventResult{})
		last := events[len(events)-1]
		if last.Target == nil {
			continue
		}
		for j, other := range items {
			tv := other.Events[len(other.Events)-1].Target
			if tv == nil {
				continue
			}
			res.Matrix.Set(i, j, similarity(n.Similarity, last.Output.Data(), tv.Data()))
		}
	}

	res.Reached = d
	for i := 0; i < d; i++ {
		row := res.Matrix.Row(i)
		if floats.Max(row) > row[i] {
			res.Reached--
		}
		res.Mean += row[i]
	}
	res.Mean /= float64(d)
	for i := 0; i < d; i++ {
		x := res.Matrix.At(i, i) - res.Mean
		res.SD += x * x
	}
	res.SD = math.Sqrt(res.SD / float64(d))

	n.log.WithFields(logrus.Fields{
		"network": n.name,
		"metric":  n.Similarity,
		"mean":    res.Mean,
		"sd":      res.SD,
		"reached": res.Reached,
	}).Info("computed similarity matrix")
	return
}
