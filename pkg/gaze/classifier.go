package gaze

// Classifier labels one eye per frame against a calibration baseline.
type Classifier struct {
	Tolerance           float64 // vertical tests
	HorizontalTolerance float64 // inner/outer corner tests
}

// NewClassifier creates a classifier from the engine config.
func NewClassifier(cfg Config) Classifier {
	return Classifier{
		Tolerance:           cfg.Tolerance,
		HorizontalTolerance: cfg.HorizontalTolerance,
	}
}

// Classify returns the gaze label of one eye. Tests run in priority order
// and the first match wins:
//
//	right eye: inner shrinks -> LEFT, outer shrinks -> RIGHT
//	left eye:  outer shrinks -> LEFT, inner shrinks -> RIGHT
//	eyelid and top shrink -> DOWN
//	eyelid and bottom grow -> UP
//	otherwise CENTER
func (c Classifier) Classify(eye Eye, cur FeatureVector, base Baseline) Direction {
	f := cur.Eye(eye)
	b := base.Eye(eye)

	// Horizontal tests. The corner that marks LEFT differs per eye.
	towardLeft, towardRight := f.Inner, f.Outer
	baseLeft, baseRight := b.Inner, b.Outer
	if eye == LeftEye {
		towardLeft, towardRight = f.Outer, f.Inner
		baseLeft, baseRight = b.Outer, b.Inner
	}
	if Compare(towardLeft, baseLeft, c.HorizontalTolerance) < 0 {
		return Left
	}
	if Compare(towardRight, baseRight, c.HorizontalTolerance) < 0 {
		return Right
	}

	eyelid := Compare(f.Eyelid, b.Eyelid, c.Tolerance)
	if eyelid < 0 && Compare(f.Top, b.Top, c.Tolerance) < 0 {
		return Down
	}
	if eyelid > 0 && Compare(f.Bottom, b.Bottom, c.Tolerance) > 0 {
		return Up
	}
	return Center
}
