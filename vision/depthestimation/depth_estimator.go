// Package depthestimation turns a color frame into a per pixel depth map using a
// monocular depth model.
package depthestimation

import (
	"context"
	"image"

	"github.com/UmeshNayak1/DimensiMeasure/mimage"
)

// DepthEstimator returns the estimated depth map, in meters, for an input image.
// The returned map may have a different resolution than the input image.
type DepthEstimator func(context.Context, image.Image) (*mimage.DepthMap, error)
