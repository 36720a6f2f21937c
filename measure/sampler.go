package measure

import (
	"image"

	"github.com/UmeshNayak1/DimensiMeasure/mimage"
)

// DefaultMaxValidDepth is the far plane cutoff in meters.
const DefaultMaxValidDepth = 10.0

// DepthSampler reduces the depth map region under a bounding box to a single
// scalar depth in meters. Only samples inside the open interval
// (0, MaxValidDepth) contribute; zero and negative values are invalid markers
// and values at or beyond the cutoff are far plane artifacts.
type DepthSampler struct {
	// MaxValidDepth is the far plane cutoff in meters. Zero means DefaultMaxValidDepth.
	MaxValidDepth float64
	// CorrectionFactor multiplies the sampled median to align the depth model
	// with ground truth for a specific camera pairing. Zero means no correction.
	CorrectionFactor float64
}

// Sample returns the corrected median depth over the bbox region. A return of 0
// means no valid depth exists there and the object should be skipped.
func (s DepthSampler) Sample(dm *mimage.DepthMap, bbox image.Rectangle) float64 {
	maxDepth := s.MaxValidDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxValidDepth
	}
	correction := s.CorrectionFactor
	if correction == 0 {
		correction = 1.0
	}
	med := dm.MedianInRect(bbox, 0, maxDepth)
	if med <= 0 {
		return 0
	}
	depth := med * correction
	if depth <= 0 {
		return 0
	}
	return depth
}
