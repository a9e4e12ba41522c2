package mesh

import (
	"math"
	"math/rand"

	"github.com/stevegt/mesh/num"
)

// randomize fills m using the network's randomization algorithm and
// random source.
func (n *Network) randomize(m *num.Matrix) {
	p := &n.Params
	switch n.Random {
	case Gaussian:
		randomizeGaussian(n.rng, m, p.RandomMu, p.RandomSigma)
	case Range:
		randomizeRange(n.rng, m, p.RandomMin, p.RandomMax)
	case NguyenWidrow:
		randomizeRange(n.rng, m, p.RandomMin, p.RandomMax)
		rows, cols := m.Dims()
		en := math.Sqrt(m.SumSquares())
		if en == 0 {
			return
		}
		beta := 0.7 * math.Pow(float64(cols), 1/float64(rows))
		raw := m.Raw()
		for i := range raw {
			raw[i] = beta * raw[i] / en
		}
	case FanIn:
		randomizeRange(n.rng, m, -1, 1)
		_, cols := m.Dims()
		h := float64(cols)
		raw := m.Raw()
		for i := range raw {
			raw[i] = p.RandomMin/h + raw[i]*((p.RandomMax-p.RandomMin)/h)
		}
	case Binary:
		raw := m.Raw()
		for i := range raw {
			if n.rng.Float64() < 0.5 {
				raw[i] = -1
			} else {
				raw[i] = 1
			}
		}
	}
}

func randomizeGaussian(rng *rand.Rand, m *num.Matrix, mu, sigma float64) {
	raw := m.Raw()
	for i := range raw {
		raw[i] = rng.NormFloat64()*sigma + mu
	}
}

func randomizeRange(rng *rand.Rand, m *num.Matrix, min, max float64) {
	raw := m.Raw()
	for i := range raw {
		raw[i] = min + rng.Float64()*(max-min)
	}
}

// Reseed restarts the network's random source from Params.RandomSeed.
func (n *Network) Reseed() {
	n.rng = rand.New(rand.NewSource(n.Params.RandomSeed))
}

// Randomize reseeds and then randomizes the weights of every
// connection that is not frozen, in creation order.
func (n *Network) Randomize() {
	n.Reseed()
	for _, c := range n.conns.Elements() {
		if c.Frozen {
			continue
		}
		n.randomize(c.Weights)
	}
}
