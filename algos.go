package mesh

import (
	"strings"
)

// lookupName returns the index of s in names, trying aliases as well.
func lookupName(what string, names []string, aliases map[string]int, s string) (i int, err error) {
	key := strings.ToLower(s)
	for i, name := range names {
		if name == key {
			return i, nil
		}
	}
	if i, ok := aliases[key]; ok {
		return i, nil
	}
	return -1, configErrorf("unknown %s: %s", what, s)
}

// Kind is the architecture of a network.
type Kind int

const (
	// FFN is a feed forward network.
	FFN Kind = iota
	// SRN is a simple recurrent (Elman) network.
	SRN
	// RNN is a recurrent network trained through time.
	RNN
)

var kindNames = []string{"ffn", "srn", "rnn"}

func (k Kind) String() string {
	return kindNames[k]
}

// ParseKind returns the network kind for the given name.
func ParseKind(s string) (k Kind, err error) {
	i, err := lookupName("network kind", kindNames, nil, s)
	return Kind(i), err
}

// RandomAlgo selects how weights are initialized.
type RandomAlgo int

const (
	Gaussian RandomAlgo = iota
	Range
	NguyenWidrow
	FanIn
	Binary
)

var randomNames = []string{"gaussian", "range", "nguyen_widrow", "fan_in", "binary"}

func (a RandomAlgo) String() string {
	return randomNames[a]
}

// ParseRandomAlgo returns the randomization algorithm for the given
// name.
func ParseRandomAlgo(s string) (a RandomAlgo, err error) {
	i, err := lookupName("random algorithm", randomNames, nil, s)
	return RandomAlgo(i), err
}

// LearnAlgo selects how gradients are computed.
type LearnAlgo int

const (
	// BP is backpropagation.
	BP LearnAlgo = iota
	// BPTT is backpropagation through time.
	BPTT
)

var learnNames = []string{"bp", "bptt"}

func (a LearnAlgo) String() string {
	return learnNames[a]
}

// ParseLearnAlgo returns the learning algorithm for the given name.
func ParseLearnAlgo(s string) (a LearnAlgo, err error) {
	i, err := lookupName("learning algorithm", learnNames, nil, s)
	return LearnAlgo(i), err
}

// UpdateAlgo selects how gradients turn into weight changes.
type UpdateAlgo int

const (
	Steepest UpdateAlgo = iota
	Bounded
	RpropPlus
	RpropMinus
	IRpropPlus
	IRpropMinus
	Quickprop
	DBD
)

var updateNames = []string{"steepest", "bounded", "rprop+", "rprop-", "irprop+", "irprop-", "qprop", "dbd"}

var updateAliases = map[string]int{
	"rprop_plus":   int(RpropPlus),
	"rprop_minus":  int(RpropMinus),
	"irprop_plus":  int(IRpropPlus),
	"irprop_minus": int(IRpropMinus),
	"quickprop":    int(Quickprop),
}

func (a UpdateAlgo) String() string {
	return updateNames[a]
}

// ParseUpdateAlgo returns the update algorithm for the given name.
func ParseUpdateAlgo(s string) (a UpdateAlgo, err error) {
	i, err := lookupName("update algorithm", updateNames, updateAliases, s)
	return UpdateAlgo(i), err
}

// isRprop reports whether a is one of the Rprop variants.
func (a UpdateAlgo) isRprop() bool {
	return a >= RpropPlus && a <= IRpropMinus
}

// TrainOrder selects the order items are presented in.
type TrainOrder int

const (
	Ordered TrainOrder = iota
	Permuted
	Randomized
)

var orderNames = []string{"ordered", "permuted", "randomized"}

func (o TrainOrder) String() string {
	return orderNames[o]
}

// ParseTrainOrder returns the training order for the given name.
func ParseTrainOrder(s string) (o TrainOrder, err error) {
	i, err := lookupName("training order", orderNames, nil, s)
	return TrainOrder(i), err
}

// SimilarityMetric compares an output vector with a target vector.
type SimilarityMetric int

const (
	Cosine SimilarityMetric = iota
	InnerProduct
	HarmonicMean
	Tanimoto
	Dice
	PearsonCorrelation
)

var similarityNames = []string{"cosine", "inner_product", "harmonic_mean", "tanimoto", "dice", "pearson_correlation"}

func (m SimilarityMetric) String() string {
	return similarityNames[m]
}

// ParseSimilarityMetric returns the similarity metric for the given
// name.
func ParseSimilarityMetric(s string) (m SimilarityMetric, err error) {
	i, err := lookupName("similarity metric", similarityNames, nil, s)
	return SimilarityMetric(i), err
}

// SetRandomAlgorithm selects the weight randomization algorithm.
func (n *Network) SetRandomAlgorithm(name string) (err error) {
	a, err := ParseRandomAlgo(name)
	if err != nil {
		return
	}
	n.Random = a
	return
}

// SetLearningAlgorithm selects the learning algorithm. bptt requires
// an RNN and bp requires any other kind.
func (n *Network) SetLearningAlgorithm(name string) (err error) {
	a, err := ParseLearnAlgo(name)
	if err != nil {
		return
	}
	if (a == BPTT) != (n.Kind == RNN) {
		return configErrorf("learning algorithm %s does not apply to %s networks", a, n.Kind)
	}
	n.Learn = a
	return
}

// SetUpdateAlgorithm selects the weight update algorithm. Changing it
// requires the network to be initialized again, since dynamic
// parameters depend on it.
func (n *Network) SetUpdateAlgorithm(name string) (err error) {
	a, err := ParseUpdateAlgo(name)
	if err != nil {
		return
	}
	if a != n.Update {
		n.Initialized = false
	}
	n.Update = a
	return
}

// SetTrainingOrder selects the order items are presented in.
func (n *Network) SetTrainingOrder(name string) (err error) {
	o, err := ParseTrainOrder(name)
	if err != nil {
		return
	}
	n.Order = o
	return
}

// SetSimilarityMetric selects the metric used by SimilarityMatrix.
func (n *Network) SetSimilarityMetric(name string) (err error) {
	m, err := ParseSimilarityMetric(name)
	if err != nil {
		return
	}
	n.Similarity = m
	return
}
