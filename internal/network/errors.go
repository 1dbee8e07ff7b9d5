package network

import "errors"

var (
	// ErrUnknownDynamics indicates a dynamics name missing from the registry.
	ErrUnknownDynamics = errors.New("network: unknown dynamics")

	ErrInvalidNode = errors.New("network: invalid node")
	ErrInvalidArc  = errors.New("network: invalid arc")

	// ErrInvalidGenerator indicates out-of-range generator arguments.
	ErrInvalidGenerator = errors.New("network: invalid generator arguments")

	// ErrEigenFailed indicates the eigen-decomposition did not converge.
	ErrEigenFailed = errors.New("network: eigen decomposition failed")
)
