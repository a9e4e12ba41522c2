package mesh

import "math"

// Params holds a network's numeric hyperparameters.
type Params struct {
	RandomSeed int64
	// RandomMu and RandomSigma parameterize gaussian randomization.
	RandomMu    float64
	RandomSigma float64
	// RandomMin and RandomMax bound range randomization.
	RandomMin float64
	RandomMax float64

	LearningRate float64
	Momentum     float64
	WeightDecay  float64
	// The learning rate is multiplied by LRScaleFactor every
	// LRScaleAfter*MaxEpochs epochs, and likewise for momentum and
	// weight decay. A zero ScaleAfter disables scaling.
	LRScaleFactor float64
	LRScaleAfter  float64
	MNScaleFactor float64
	MNScaleAfter  float64
	WDScaleFactor float64
	WDScaleAfter  float64

	TargetRadius    float64
	ZeroErrorRadius float64
	ErrorThreshold  float64

	MaxEpochs   int
	ReportAfter int
	// BatchSize is the number of items per weight update. Zero means
	// the whole active set.
	BatchSize int

	RPInitUpdate float64
	RPEtaPlus    float64
	RPEtaMinus   float64

	DBDRateIncrement float64
	DBDRateDecrement float64

	// BackTicks is the number of earlier time steps an unfolded
	// network keeps.
	BackTicks int
	// InitContextUnits is the value context and recurrent state start
	// from.
	InitContextUnits float64
	// ResetContexts resets context groups before each item.
	ResetContexts bool
	// ActLookup replaces activation functions with lookup tables.
	ActLookup bool
}

// DefaultParams returns the parameters a new network starts with.
func DefaultParams() Params {
	return Params{
		RandomSigma:      0.5,
		RandomMin:        -1,
		RandomMax:        1,
		LearningRate:     0.05,
		Momentum:         0.4,
		ErrorThreshold:   0.05,
		MaxEpochs:        1000,
		ReportAfter:      100,
		RPInitUpdate:     0.0125,
		RPEtaPlus:        1.2,
		RPEtaMinus:       0.5,
		DBDRateIncrement: 0.1,
		DBDRateDecrement: 0.9,
		InitContextUnits: 0.5,
		ResetContexts:    true,
	}
}

// SetIntParam sets an integer parameter by name.
func (n *Network) SetIntParam(name string, v int) (err error) {
	p := &n.Params
	switch name {
	case "random_seed":
		p.RandomSeed = int64(v)
	case "max_epochs":
		if v < 1 {
			return configErrorf("max_epochs must be positive: %d", v)
		}
		p.MaxEpochs = v
	case "report_after":
		if v < 0 {
			return configErrorf("report_after must not be negative: %d", v)
		}
		p.ReportAfter = v
	case "batch_size":
		if v < 0 {
			return configErrorf("batch_size must not be negative: %d", v)
		}
		p.BatchSize = v
	case "back_ticks":
		if v < 0 {
			return configErrorf("back_ticks must not be negative: %d", v)
		}
		if n.Kind != RNN {
			return configErrorf("back_ticks applies to %s networks only", RNN)
		}
		p.BackTicks = v
		n.Initialized = false
	case "reset_contexts":
		p.ResetContexts = v != 0
	case "act_lookup":
		p.ActLookup = v != 0
		n.Initialized = false
	default:
		return configErrorf("unknown integer parameter: %s", name)
	}
	return
}

// SetFloatParam sets a real-valued parameter by name.
func (n *Network) SetFloatParam(name string, v float64) (err error) {
	p := &n.Params
	switch name {
	case "random_mu":
		p.RandomMu = v
	case "random_sigma":
		p.RandomSigma = v
	case "random_min":
		p.RandomMin = v
	case "random_max":
		p.RandomMax = v
	case "learning_rate":
		p.LearningRate = v
	case "momentum":
		p.Momentum = v
	case "weight_decay":
		p.WeightDecay = v
	case "lr_scale_factor":
		p.LRScaleFactor = v
	case "mn_scale_factor":
		p.MNScaleFactor = v
	case "wd_scale_factor":
		p.WDScaleFactor = v
	case "lr_scale_after":
		p.LRScaleAfter = v
	case "mn_scale_after":
		p.MNScaleAfter = v
	case "wd_scale_after":
		p.WDScaleAfter = v
	case "target_radius":
		p.TargetRadius = v
	case "zero_error_radius":
		p.ZeroErrorRadius = v
	case "error_threshold":
		p.ErrorThreshold = v
	case "rp_init_update":
		p.RPInitUpdate = v
	case "rp_eta_plus":
		p.RPEtaPlus = v
	case "rp_eta_minus":
		p.RPEtaMinus = v
	case "dbd_rate_increment":
		p.DBDRateIncrement = v
	case "dbd_rate_decrement":
		p.DBDRateDecrement = v
	case "init_context_units":
		p.InitContextUnits = v
	default:
		return configErrorf("unknown real parameter: %s", name)
	}
	return
}

var intParams = map[string]bool{
	"random_seed":    true,
	"max_epochs":     true,
	"report_after":   true,
	"batch_size":     true,
	"back_ticks":     true,
	"reset_contexts": true,
	"act_lookup":     true,
}

// SetParam sets any parameter by name. Integer parameters reject
// values with a fractional part.
func (n *Network) SetParam(name string, v float64) (err error) {
	if !intParams[name] {
		return n.SetFloatParam(name, v)
	}
	if v != math.Trunc(v) || math.IsInf(v, 0) {
		return configErrorf("%s must be an integer: %v", name, v)
	}
	return n.SetIntParam(name, int(v))
}
