// Package cluster implements k-means style clustering of vectors and curves:
// initialize++ seeding, Lloyd or reverse (range search) assignment,
// mean vector or mean curve update and silhouette evaluation.
package cluster

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gasparian/curve-ann-go/common"
	"go.uber.org/zap"
)

// AssignMethod selects how elements are assigned to the centers
type AssignMethod string

// UpdateMethod selects how centers are recomputed
type UpdateMethod string

const (
	Classic    AssignMethod = "Classic"
	LSH        AssignMethod = "LSH"
	Hypercube  AssignMethod = "Hypercube"
	LSHFrechet AssignMethod = "LSH_Frechet"

	MeanVector  UpdateMethod = "Mean Vector"
	MeanFrechet UpdateMethod = "Mean Frechet"
)

var (
	ErrUnknownMethod       = errors.New("unknown clustering method")
	ErrIncompatibleMethods = errors.New("assignment and update methods can't be combined")
	ErrBadClustersNumber   = errors.New("number of clusters must be in [1, dataset size]")
)

// ParseAssignMethod matches the method name ignoring case
func ParseAssignMethod(name string) (AssignMethod, error) {
	for _, m := range []AssignMethod{Classic, LSH, Hypercube, LSHFrechet} {
		if strings.EqualFold(strings.TrimSpace(name), string(m)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("assignment %q: %w", name, ErrUnknownMethod)
}

// ParseUpdateMethod matches the method name ignoring case
func ParseUpdateMethod(name string) (UpdateMethod, error) {
	for _, m := range []UpdateMethod{MeanVector, MeanFrechet} {
		if strings.EqualFold(strings.TrimSpace(name), string(m)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("update %q: %w", name, ErrUnknownMethod)
}

// CheckMethods rejects combinations working over different element types:
// vector indexes go with mean vectors, the curve index with mean curves
func CheckMethods(assign AssignMethod, update UpdateMethod) error {
	switch {
	case (assign == LSH || assign == Hypercube) && update != MeanVector:
		return fmt.Errorf("%s with %s: %w", assign, update, ErrIncompatibleMethods)
	case assign == LSHFrechet && update != MeanFrechet:
		return fmt.Errorf("%s with %s: %w", assign, update, ErrIncompatibleMethods)
	}
	return nil
}

// Config of the clustering run
type Config struct {
	// K is the number of clusters
	K int
	// MaxIter caps assignment-update iterations
	MaxIter int
	// Tolerance stops iterating once no center moves farther
	Tolerance float64
	// Budget limits elements evaluated by a single range search, 0 means no limit
	Budget int
	Seed   int64
	Logger *zap.SugaredLogger
}

// Defaults returns config with the default iteration limits
func Defaults() Config {
	return Config{
		MaxIter:   50,
		Tolerance: 1e-3,
	}
}

func (c *Config) fillDefaults() {
	def := Defaults()
	if c.MaxIter <= 0 {
		c.MaxIter = def.MaxIter
	}
	if c.Tolerance <= 0 {
		c.Tolerance = def.Tolerance
	}
}

// Result of the clustering run
type Result[T any] struct {
	Centers []T
	// Assignment holds cluster of every element
	Assignment []int
	Iterations int
	Converged  bool
}

// Clusters groups element indices by cluster
func (r *Result[T]) Clusters() [][]int {
	return Members(r.Assignment, len(r.Centers))
}

// Run seeds the centers with initialize++ and alternates assignment and update
// until the assignment stops changing, the largest center shift drops below
// the tolerance or MaxIter is reached. With nil index the classic Lloyd
// assignment is used, otherwise the reverse assignment over the index
func Run[T any](config Config, space Space[T], index RangeSearcher[T]) (*Result[T], error) {
	config.fillDefaults()
	n := space.Len()
	if n == 0 {
		return nil, common.ErrEmptyDataset
	}
	if config.K < 1 || config.K > n {
		return nil, fmt.Errorf("k=%d, n=%d: %w", config.K, n, ErrBadClustersNumber)
	}
	logger := common.LoggerOrNop(config.Logger)
	rnd := common.NewRand(config.Seed)

	centers := make([]T, 0, config.K)
	for _, idx := range InitializePP(rnd, space, config.K) {
		centers = append(centers, space.At(idx))
	}
	assignment := make([]int, n)
	last := make([]int, n)
	for i := range last {
		last[i] = unassigned
	}
	state := NewAssignmentState()
	res := &Result[T]{}
	for res.Iterations < config.MaxIter {
		if index == nil {
			Lloyd(space, centers, assignment, nil)
		} else {
			ReverseAssign(space, centers, index, config.Budget, state, assignment, logger)
		}
		var shift float64
		centers, shift = Update(space, centers, assignment, logger)
		res.Iterations++
		changed := 0
		for i := range assignment {
			if assignment[i] != last[i] {
				changed++
			}
		}
		logger.Debugf("clustering iteration %d: %d reassigned, max center shift %.6f", res.Iterations, changed, shift)
		if changed == 0 || shift < config.Tolerance {
			res.Converged = true
			break
		}
		copy(last, assignment)
	}
	res.Centers = centers
	res.Assignment = assignment
	logger.Infof("clustering finished after %d iterations, converged: %v", res.Iterations, res.Converged)
	return res, nil
}
