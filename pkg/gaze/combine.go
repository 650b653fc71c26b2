package gaze

import "fmt"

// Combination strategy names accepted by Config.Combine.
const (
	CombinePerEye    = "per_eye"
	CombineAgreement = "agreement"
)

// Combiner turns the two per-eye labels of a tracked frame into the labels
// pushed into the smoothing window.
type Combiner interface {
	Combine(right, left Direction) []Direction
}

// PerEye pushes both eye labels, right eye first. Each tracked frame
// therefore counts twice in the majority vote.
type PerEye struct{}

// Combine implements Combiner.
func (PerEye) Combine(right, left Direction) []Direction {
	return []Direction{right, left}
}

// Agreement pushes one label per frame: the shared label when both eyes
// agree, Unknown otherwise.
type Agreement struct{}

// Combine implements Combiner.
func (Agreement) Combine(right, left Direction) []Direction {
	if right == left {
		return []Direction{right}
	}
	return []Direction{Unknown}
}

// NewCombiner resolves a strategy name.
func NewCombiner(name string) (Combiner, error) {
	switch name {
	case "", CombinePerEye:
		return PerEye{}, nil
	case CombineAgreement:
		return Agreement{}, nil
	}
	return nil, fmt.Errorf("%w: unknown combine strategy %q", ErrInvalidConfig, name)
}
