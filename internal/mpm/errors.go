package mpm

import (
	"errors"
	"fmt"
)

// Domain errors for model construction and stepping.
var (
	// ErrInvalidMaterial indicates a non-positive density or Young modulus.
	ErrInvalidMaterial = errors.New("mpm: material density and young modulus must be positive")

	// ErrInvalidMesh indicates an empty or inverted mesh definition.
	ErrInvalidMesh = errors.New("mpm: invalid mesh definition")

	// ErrMeshGenerated indicates GenerateMesh was called on a populated mesh.
	ErrMeshGenerated = errors.New("mpm: mesh already generated")

	// ErrInvalidModel indicates an invalid particle density or total time.
	ErrInvalidModel = errors.New("mpm: invalid model parameters")

	// ErrParticleOutOfDomain indicates a particle left [XStart, XEnd].
	ErrParticleOutOfDomain = errors.New("mpm: particle outside mesh domain")

	// ErrZeroNodeMass indicates a node velocity was requested with no mass mapped.
	ErrZeroNodeMass = errors.New("mpm: node has zero mass")

	// ErrNonFinite indicates a particle quantity became NaN or Inf.
	ErrNonFinite = errors.New("mpm: non-finite particle state")

	// ErrAlreadySolved indicates Solve was called twice on the same model.
	ErrAlreadySolved = errors.New("mpm: model already solved")
)

// StepError wraps an error with the step that produced it.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
