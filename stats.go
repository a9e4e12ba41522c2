package mesh

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WeightStats summarizes the weights of the connections that are not
// frozen.
type WeightStats struct {
	Count int
	// Cost is the sum of squared weights.
	Cost    float64
	Mean    float64
	MeanAbs float64
	// MeanDist is the mean absolute distance from the mean.
	MeanDist float64
	// Variance is the unbiased sample variance.
	Variance float64
	Min      float64
	Max      float64
}

// WeightStats computes statistics over every weight that is not
// frozen.
func (n *Network) WeightStats() (ws WeightStats) {
	var w []float64
	for _, c := range n.conns.Elements() {
		if !c.Frozen {
			w = append(w, c.Weights.Raw()...)
		}
	}
	ws.Count = len(w)
	if ws.Count == 0 {
		return
	}
	ws.Cost = floats.Dot(w, w)
	ws.Mean = stat.Mean(w, nil)
	ws.Min = floats.Min(w)
	ws.Max = floats.Max(w)
	for _, x := range w {
		ws.MeanAbs += math.Abs(x)
		ws.MeanDist += math.Abs(x - ws.Mean)
	}
	ws.MeanAbs /= float64(ws.Count)
	ws.MeanDist /= float64(ws.Count)
	if ws.Count > 1 {
		ws.Variance = stat.Variance(w, nil)
	}
	return
}
