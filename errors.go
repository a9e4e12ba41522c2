package mesh

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error categories. Every failed operation returns an error wrapping
// exactly one of these; use the Is* helpers to classify.
var (
	// ErrConfig marks an invalid or unknown name, or a structurally
	// invalid request. The network is left unchanged.
	ErrConfig = errors.New("configuration error")
	// ErrData marks a malformed file or a size mismatch between a file
	// and the network.
	ErrData = errors.New("data error")
	// ErrResource marks a missing file or other unavailable resource.
	ErrResource = errors.New("resource error")
)

// ErrMaxEpochs is returned by Train when the error threshold was not
// reached within the maximum number of epochs. The trained weights are
// kept.
var ErrMaxEpochs = errors.New("maximum epochs reached")

func configErrorf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrConfig, format, args...)
}

func dataErrorf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrData, format, args...)
}

func resourceErrorf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(ErrResource, "%s: %v", fmt.Sprintf(format, args...), err)
}

// IsConfig reports whether err is a configuration error.
func IsConfig(err error) bool {
	return errors.Is(err, ErrConfig)
}

// IsData reports whether err is a data error.
func IsData(err error) bool {
	return errors.Is(err, ErrData)
}

// IsResource reports whether err is a resource error.
func IsResource(err error) bool {
	return errors.Is(err, ErrResource)
}

// IsMaxEpochs reports whether err says training stopped at the epoch
// limit.
func IsMaxEpochs(err error) bool {
	return errors.Is(err, ErrMaxEpochs)
}
