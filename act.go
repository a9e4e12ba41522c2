package mesh

import (
	"math"

	"github.com/stevegt/mesh/num"
)

// ActFunc is an activation function and its derivative. Activate turns
// the net inputs in y into activations in place; Deriv returns f'(x)
// expressed in terms of the activation y = f(x).
type ActFunc interface {
	Name() string
	Activate(g *Group, y []float64)
	Deriv(g *Group, y float64) float64
}

// logistic activation function
func logistic(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// logistic derivative plus flat-spot correction
func logisticD1(g *Group, y float64) float64 {
	return y*(1-y) + g.LogisticFSC
}

// bipolar sigmoid activation function
func bipolarSigmoid(x float64) float64 {
	return -1.0 + 2.0/(1.0+math.Exp(-x))
}

// bipolar sigmoid derivative
func bipolarSigmoidD1(g *Group, y float64) float64 {
	return 0.5 * (1 + y) * (1 - y)
}

// tanh derivative
func tanhD1(g *Group, y float64) float64 {
	return 1 - y*y
}

// linear activation function
func linear(x float64) float64 {
	return x
}

// linear derivative
func linearD1(g *Group, y float64) float64 {
	return 1
}

// softplus activation function
func softplus(x float64) float64 {
	return math.Log1p(math.Exp(x))
}

// softplus derivative: logistic(x) == 1 - e^-y
func softplusD1(g *Group, y float64) float64 {
	return -math.Expm1(-y)
}

// relu activation function
func relu(x float64) float64 {
	if x < 0 {
		return 0
	}
	return x
}

// relu derivative
func reluD1(g *Group, y float64) float64 {
	if y > 0 {
		return 1
	}
	return 0
}

// binary relu activation function, clipped at 1
func binaryRelu(x float64) float64 {
	return math.Min(relu(x), 1)
}

// elementwise is an activation function applied to each unit
// independently. Functions that depend on group parameters get the
// group as well.
type elementwise struct {
	name string
	f    func(g *Group, x float64) float64
	d    func(g *Group, y float64) float64
}

func (a *elementwise) Name() string {
	return a.name
}

func (a *elementwise) Activate(g *Group, y []float64) {
	lt := g.lookup
	num.For(len(y), 16, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			if lt != nil {
				y[i] = lt.At(y[i])
			} else {
				y[i] = a.f(g, y[i])
			}
		}
	})
}

func (a *elementwise) Deriv(g *Group, y float64) float64 {
	return a.d(g, y)
}

// plain wraps a function that does not depend on group parameters.
func plain(f func(float64) float64) func(*Group, float64) float64 {
	return func(g *Group, x float64) float64 { return f(x) }
}

// softmax normalizes the exponentiated net inputs of the whole group.
// Its derivative is taken to be 1; it is meant to be paired with
// cross entropy or divergence error.
type softmax struct{}

func (softmax) Name() string { return "softmax" }

func (softmax) Activate(g *Group, y []float64) {
	top := math.Inf(-1)
	for _, x := range y {
		top = math.Max(top, x)
	}
	sum := 0.0
	for i, x := range y {
		y[i] = math.Exp(x - top)
		sum += y[i]
	}
	for i := range y {
		y[i] /= sum
	}
}

func (softmax) Deriv(g *Group, y float64) float64 { return 1 }

// actFuncs returns the activation function for the given name.
func actFuncs(name string) (act ActFunc, err error) {
	switch name {
	case "logistic", "binary_sigmoid", "sigmoid":
		act = &elementwise{"logistic", plain(logistic), logisticD1}
	case "bipolar_sigmoid":
		act = &elementwise{"bipolar_sigmoid", plain(bipolarSigmoid), bipolarSigmoidD1}
	case "softmax":
		act = softmax{}
	case "tanh":
		act = &elementwise{"tanh", plain(math.Tanh), tanhD1}
	case "linear":
		act = &elementwise{"linear", plain(linear), linearD1}
	case "softplus":
		act = &elementwise{"softplus", plain(softplus), softplusD1}
	case "relu":
		act = &elementwise{"relu", plain(relu), reluD1}
	case "binary_relu":
		act = &elementwise{"binary_relu", plain(binaryRelu), reluD1}
	case "leaky_relu":
		act = &elementwise{
			"leaky_relu",
			func(g *Group, x float64) float64 {
				if x > 0 {
					return x
				}
				return g.ReluAlpha * x
			},
			func(g *Group, y float64) float64 {
				if y > 0 {
					return 1
				}
				return g.ReluAlpha
			},
		}
	case "elu":
		act = &elementwise{
			"elu",
			func(g *Group, x float64) float64 {
				if x >= 0 {
					return x
				}
				return g.ReluAlpha * math.Expm1(x)
			},
			func(g *Group, y float64) float64 {
				if y >= 0 {
					return 1
				}
				return y + g.ReluAlpha
			},
		}
	default:
		err = configErrorf("unknown activation function: %s", name)
	}
	return
}

const (
	lookupBound = 16.0
	lookupStep  = 1.0 / 1024
)

// LookupTable holds an activation function sampled on a fixed grid
// over [-lookupBound, lookupBound]. At returns the sample nearest to x,
// so grid points evaluate exactly as the function itself does.
type LookupTable struct {
	values []float64
}

func lookupX(i int) float64 {
	return -lookupBound + float64(i)*lookupStep
}

func newLookupTable(f func(x float64) float64) (lt *LookupTable) {
	n := int(2*lookupBound/lookupStep) + 1
	lt = &LookupTable{values: make([]float64, n)}
	for i := range lt.values {
		lt.values[i] = f(lookupX(i))
	}
	return
}

// At returns the tabulated value nearest to x. Inputs beyond the grid
// clamp to its ends.
func (lt *LookupTable) At(x float64) float64 {
	if math.IsNaN(x) {
		return x
	}
	if x <= -lookupBound {
		return lt.values[0]
	}
	if x >= lookupBound {
		return lt.values[len(lt.values)-1]
	}
	i := int(math.Round((x + lookupBound) / lookupStep))
	return lt.values[i]
}
