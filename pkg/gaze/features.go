package gaze

import "math"

// Face mesh landmark indices (MediaPipe face mesh with refined iris).
// The landmark source must supply at least MinLandmarks points.
const (
	MeshTop    = 10
	MeshBottom = 152

	LeftTop    = 386
	LeftBottom = 374
	LeftInner  = 362
	LeftOuter  = 263
	LeftIris   = 473

	RightTop    = 159
	RightBottom = 145
	RightInner  = 133
	RightOuter  = 33
	RightIris   = 468

	MinLandmarks = 478
)

// DefaultMinReferenceDistance is the smallest face span accepted before a
// detection is treated as degenerate.
const DefaultMinReferenceDistance = 1e-6

// Point3D is a landmark position in normalized image space.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Distance returns the Euclidean distance between two points.
func (p Point3D) Distance(q Point3D) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	dz := p.Z - q.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Landmarks is one face mesh as produced by the landmark source.
// A nil *Landmarks means no face was detected.
type Landmarks struct {
	Points []Point3D `json:"points"`
}

// Eye selects one side of the face. Sides are named from the subject's
// point of view, matching the face mesh convention.
type Eye int

const (
	RightEye Eye = iota
	LeftEye
)

func (e Eye) String() string {
	if e == LeftEye {
		return "left"
	}
	return "right"
}

// Feature names one of the ten ratios in a FeatureVector.
type Feature int

const (
	RightEyelid Feature = iota
	RightInnerDist
	RightOuterDist
	RightTopDist
	RightBottomDist
	LeftEyelid
	LeftInnerDist
	LeftOuterDist
	LeftTopDist
	LeftBottomDist

	NumFeatures
)

var featureNames = [NumFeatures]string{
	"right_eyelid", "right_inner", "right_outer", "right_top", "right_bottom",
	"left_eyelid", "left_inner", "left_outer", "left_top", "left_bottom",
}

func (f Feature) String() string {
	if f < 0 || f >= NumFeatures {
		return "invalid"
	}
	return featureNames[f]
}

// FeatureVector holds the ten landmark distance ratios of one frame, each
// normalized by the face span.
type FeatureVector [NumFeatures]float64

// Map returns the vector keyed by feature name.
func (v FeatureVector) Map() map[string]float64 {
	m := make(map[string]float64, NumFeatures)
	for f := Feature(0); f < NumFeatures; f++ {
		m[f.String()] = v[f]
	}
	return m
}

// EyeFeatures is the five-ratio slice of a FeatureVector for one eye.
type EyeFeatures struct {
	Eyelid float64 // top lid to bottom lid
	Inner  float64 // inner corner to iris center
	Outer  float64 // outer corner to iris center
	Top    float64 // top lid to iris center
	Bottom float64 // bottom lid to iris center
}

// Eye returns the features of one side.
func (v FeatureVector) Eye(e Eye) EyeFeatures {
	base := RightEyelid
	if e == LeftEye {
		base = LeftEyelid
	}
	return EyeFeatures{
		Eyelid: v[base],
		Inner:  v[base+1],
		Outer:  v[base+2],
		Top:    v[base+3],
		Bottom: v[base+4],
	}
}

type eyeIndices struct {
	top, bottom, inner, outer, iris int
}

var (
	rightEyeIndices = eyeIndices{RightTop, RightBottom, RightInner, RightOuter, RightIris}
	leftEyeIndices  = eyeIndices{LeftTop, LeftBottom, LeftInner, LeftOuter, LeftIris}
)

// Extract computes the feature vector of a face mesh.
// It reports false for a missing face, a mesh with too few points, or a
// face span shorter than minReference (which would make the ratios unbounded).
func Extract(lm *Landmarks, minReference float64) (FeatureVector, bool) {
	var v FeatureVector
	if lm == nil || len(lm.Points) < MinLandmarks {
		return v, false
	}
	pts := lm.Points

	reference := pts[MeshTop].Distance(pts[MeshBottom])
	if !(reference > minReference) || math.IsInf(reference, 0) {
		return v, false
	}

	fill := func(base Feature, idx eyeIndices) {
		v[base] = pts[idx.top].Distance(pts[idx.bottom]) / reference
		v[base+1] = pts[idx.inner].Distance(pts[idx.iris]) / reference
		v[base+2] = pts[idx.outer].Distance(pts[idx.iris]) / reference
		v[base+3] = pts[idx.top].Distance(pts[idx.iris]) / reference
		v[base+4] = pts[idx.bottom].Distance(pts[idx.iris]) / reference
	}
	fill(RightEyelid, rightEyeIndices)
	fill(LeftEyelid, leftEyeIndices)

	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return FeatureVector{}, false
		}
	}
	return v, true
}
