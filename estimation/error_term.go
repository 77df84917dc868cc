// Package estimation implements the cost functions a manifold-aware
// nonlinear least-squares solver consumes: the whitened reprojection
// error with analytic Jacobians, the pose and homogeneous-point
// parameterizations relating the over-parameterized storage to the
// minimal tangent space, and a bounded-parallel batch evaluator.
package estimation

import "gonum.org/v1/gonum/mat"

// ErrorTerm is the cost-function contract. A term declares a fixed
// residual dimension and a fixed set of parameter blocks; the solver
// calls one of the two evaluation entry points once per iteration with
// the raw parameter values.
//
// A nil entry in a Jacobian slice (or a nil slice) means "not
// requested"; implementations must skip that derivative without side
// effects. Evaluation never mutates the parameter blocks or the term
// itself, so terms may be evaluated concurrently as long as the output
// buffers are disjoint.
type ErrorTerm interface {
	// ResidualDim is the dimension of the residual vector.
	ResidualDim() int

	// ParameterBlocks is the number of parameter blocks.
	ParameterBlocks() int

	// ParameterBlockDim is the dimension of one parameter block's raw
	// storage.
	ParameterBlockDim(blockIndex int) int

	// TypeInfo identifies the concrete error kind for diagnostics.
	TypeInfo() string

	// Evaluate computes the residual and, for each non-nil destination,
	// the Jacobian with respect to the corresponding raw parameter
	// block (ResidualDim x ParameterBlockDim(i)). It reports false only
	// on an unusable parameter configuration; numerical degeneracy of a
	// single term is not a failure.
	Evaluate(parameters [][]float64, residuals []float64, jacobians []*mat.Dense) bool

	// EvaluateWithMinimalJacobians additionally computes the Jacobians
	// expressed in each block's minimal tangent space
	// (ResidualDim x TangentSize). Either destination slice may be nil.
	EvaluateWithMinimalJacobians(
		parameters [][]float64,
		residuals []float64,
		jacobians, jacobiansMinimal []*mat.Dense,
	) bool
}
