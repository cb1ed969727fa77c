package cluster

import (
	"fmt"

	"github.com/gasparian/curve-ann-go/dataset"
	"github.com/gasparian/curve-ann-go/lsh"
)

// NewVectorIndex builds the index used by the vector reverse assignment,
// nil for the classic one
func NewVectorIndex(method AssignMethod, items []dataset.Item, lshConfig lsh.Config, cubeConfig lsh.CubeConfig) (RangeSearcher[[]float64], error) {
	switch method {
	case Classic:
		return nil, nil
	case LSH:
		index, err := lsh.NewLSH(lshConfig, items)
		if err != nil {
			return nil, err
		}
		return index, nil
	case Hypercube:
		index, err := lsh.NewHypercube(cubeConfig, items)
		if err != nil {
			return nil, err
		}
		return index, nil
	}
	return nil, fmt.Errorf("%s over vectors: %w", method, ErrIncompatibleMethods)
}

// NewCurveIndex builds the index used by the curve reverse assignment,
// nil for the classic one
func NewCurveIndex(method AssignMethod, curves []dataset.Curve, config lsh.CurveConfig) (RangeSearcher[dataset.Curve], error) {
	switch method {
	case Classic:
		return nil, nil
	case LSHFrechet:
		index, err := lsh.NewCurveLSH(config, curves)
		if err != nil {
			return nil, err
		}
		return index, nil
	}
	return nil, fmt.Errorf("%s over curves: %w", method, ErrIncompatibleMethods)
}
