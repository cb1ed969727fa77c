package frechet

import (
	"errors"
	"strings"

	"github.com/gasparian/curve-ann-go/dataset"
)

var (
	// ErrUnknownMetric returned by ParseMetric
	ErrUnknownMetric = errors.New("unknown metric, expected discrete or continuous")
)

// Metric selects the flavour of the Fréchet distance
type Metric int

const (
	Discrete Metric = iota
	Continuous
)

// ParseMetric accepts case insensitive metric names
func ParseMetric(name string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "discrete", "":
		return Discrete, nil
	case "continuous":
		return Continuous, nil
	}
	return Discrete, ErrUnknownMetric
}

func (m Metric) String() string {
	if m == Continuous {
		return "continuous"
	}
	return "discrete"
}

// Distance dispatches to the selected distance
func (m Metric) Distance(p, q []dataset.Point2d) (float64, error) {
	if m == Continuous {
		return ContinuousDistance(p, q)
	}
	return DiscreteDistance(p, q)
}
