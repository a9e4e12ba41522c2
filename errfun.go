package mesh

import (
	"math"
)

// Limits used to keep logarithmic error measures finite.
const (
	largeValue = 1e10
	smallValue = 1e-10
)

// ErrFunc is an error function over an output activation vector y and
// a target vector d. Deriv writes dE/dy into out. tr and zr are the
// target radius and zero-error radius.
type ErrFunc interface {
	Name() string
	Error(y, d []float64, tr, zr float64) float64
	Deriv(y, d, out []float64, tr, zr float64)
}

// adjustTarget moves the target d towards the activation y. If y lies
// within the zero-error radius of d, the target becomes y itself.
// Otherwise the target is moved towards y by the target radius, or
// onto y if that would overshoot.
func adjustTarget(y, d, tr, zr float64) float64 {
	if y-d < zr && y-d > -zr {
		return y
	}
	if y-d > tr {
		return d + tr
	}
	if y-d < -tr {
		return d - tr
	}
	return y
}

// sumOfSquares is E = 1/2 sum_i (y_i - d_i)^2.
type sumOfSquares struct{}

func (sumOfSquares) Name() string { return "sum_of_squares" }

func (sumOfSquares) Error(y, d []float64, tr, zr float64) (se float64) {
	for i := range y {
		t := adjustTarget(y[i], d[i], tr, zr)
		se += (y[i] - t) * (y[i] - t)
	}
	return 0.5 * se
}

func (sumOfSquares) Deriv(y, d, out []float64, tr, zr float64) {
	for i := range y {
		out[i] = y[i] - adjustTarget(y[i], d[i], tr, zr)
	}
}

// crossEntropy is E = sum_i d_i log(d_i/y_i) + (1-d_i) log((1-d_i)/(1-y_i)).
type crossEntropy struct{}

func (crossEntropy) Name() string { return "cross_entropy" }

func (crossEntropy) Error(y, d []float64, tr, zr float64) (ce float64) {
	for i := range y {
		yi := y[i]
		t := adjustTarget(yi, d[i], tr, zr)
		switch {
		case t == 0:
			if yi == 1 {
				ce += largeValue
			} else {
				ce += -math.Log(1 - yi)
			}
		case t == 1:
			if yi == 0 {
				ce += largeValue
			} else {
				ce += -math.Log(yi)
			}
		default:
			if yi <= 0 || yi >= 1 {
				ce += largeValue
			} else {
				ce += math.Log(t/yi)*t + math.Log((1-t)/(1-yi))*(1-t)
			}
		}
	}
	return
}

func (crossEntropy) Deriv(y, d, out []float64, tr, zr float64) {
	for i := range y {
		yi := y[i]
		t := adjustTarget(yi, d[i], tr, zr)
		switch {
		case t == 0:
			if 1-yi <= smallValue {
				out[i] = largeValue
			} else {
				out[i] = 1 / (1 - yi)
			}
		case t == 1:
			if yi <= smallValue {
				out[i] = -largeValue
			} else {
				out[i] = -1 / yi
			}
		default:
			if yi*(1-yi) <= smallValue {
				out[i] = (yi - t) * largeValue
			} else {
				out[i] = (yi - t) / (yi * (1 - yi))
			}
		}
	}
}

// divergence is E = sum_i d_i log(d_i/y_i).
type divergence struct{}

func (divergence) Name() string { return "divergence" }

func (divergence) Error(y, d []float64, tr, zr float64) (de float64) {
	for i := range y {
		yi := y[i]
		t := adjustTarget(yi, d[i], tr, zr)
		switch {
		case t == 0:
		case yi <= smallValue:
			de += t * math.Log(t*largeValue)
		default:
			de += math.Log(t/yi) * t
		}
	}
	return
}

func (divergence) Deriv(y, d, out []float64, tr, zr float64) {
	for i := range y {
		yi := y[i]
		t := adjustTarget(yi, d[i], tr, zr)
		switch {
		case t == 0:
			out[i] = 0
		case yi <= smallValue:
			out[i] = -t * largeValue
		default:
			out[i] = -t / yi
		}
	}
}

// errFuncs returns the error function for the given name.
func errFuncs(name string) (ef ErrFunc, err error) {
	switch name {
	case "sum_of_squares", "sse":
		ef = sumOfSquares{}
	case "cross_entropy":
		ef = crossEntropy{}
	case "divergence":
		ef = divergence{}
	default:
		err = configErrorf("unknown error function: %s", name)
	}
	return
}
