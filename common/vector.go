package common

import (
	"gonum.org/v1/gonum/blas/blas64"
)

// Tol used for float comparisons across the module
const Tol = 1e-6

// NewVec creates new blas vector
func NewVec(data []float64) blas64.Vector {
	if data == nil {
		data = make([]float64, 0)
	}
	return blas64.Vector{
		N:    len(data),
		Inc:  1,
		Data: data,
	}
}

// Dot calculates inner product of two equally sized vectors
func Dot(a, b []float64) float64 {
	if len(a) == 0 {
		return 0
	}
	return blas64.Dot(NewVec(a), NewVec(b))
}

// L2 calculates l2-distance between two vectors
func L2(a, b []float64) float64 {
	if len(a) == 0 {
		return 0
	}
	res := NewVec(make([]float64, len(b)))
	blas64.Copy(NewVec(b), res)
	blas64.Axpy(-1.0, NewVec(a), res)
	return blas64.Nrm2(res)
}
