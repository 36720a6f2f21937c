package mimage

import (
	"image"
	"image/color"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	xdraw "golang.org/x/image/draw"
)

// millimetersPerMeter converts between the gray16 transport encoding of depth
// and the meters the pipeline computes in.
const millimetersPerMeter = 1000.0

// DepthMap is a dense grid of depth values in meters, aligned 1:1 with the
// working resolution the depth estimator ran at. A value of 0 marks a pixel
// with no usable depth.
type DepthMap struct {
	width  int
	height int

	data []float64
}

// NewEmptyDepthMap returns an unset depth map with the given dimensions.
func NewEmptyDepthMap(width, height int) *DepthMap {
	return &DepthMap{
		width:  width,
		height: height,
		data:   make([]float64, width*height),
	}
}

// NewDepthMapFromGray16 converts a 16-bit grayscale image holding depth in
// millimeters, the form depth maps travel over the wire in, to a DepthMap in
// meters.
func NewDepthMapFromGray16(img *image.Gray16) *DepthMap {
	bounds := img.Bounds()
	dm := NewEmptyDepthMap(bounds.Dx(), bounds.Dy())
	for y := 0; y < dm.height; y++ {
		for x := 0; x < dm.width; x++ {
			dm.data[y*dm.width+x] = float64(img.Gray16At(bounds.Min.X+x, bounds.Min.Y+y).Y) / millimetersPerMeter
		}
	}
	return dm
}

// ConvertImageToDepthMap interprets a decoded image as a depth map, erroring
// when the underlying encoding cannot carry depth.
func ConvertImageToDepthMap(img image.Image) (*DepthMap, error) {
	switch ii := img.(type) {
	case *image.Gray16:
		return NewDepthMapFromGray16(ii), nil
	default:
		return nil, errors.Errorf("don't know how to make DepthMap from %T", img)
	}
}

func (dm *DepthMap) Width() int {
	return dm.width
}

func (dm *DepthMap) Height() int {
	return dm.height
}

// Bounds returns the pixel rectangle the depth map covers.
func (dm *DepthMap) Bounds() image.Rectangle {
	return image.Rect(0, 0, dm.width, dm.height)
}

func (dm *DepthMap) Get(p image.Point) float64 {
	return dm.data[p.Y*dm.width+p.X]
}

func (dm *DepthMap) GetDepth(x, y int) float64 {
	return dm.data[y*dm.width+x]
}

func (dm *DepthMap) Set(x, y int, val float64) {
	dm.data[y*dm.width+x] = val
}

// MedianInRect returns the median of the depth values inside the given region
// that fall within the open interval (min, max). Values at or below min are
// invalid sensor output and values at or above max are far-plane artifacts,
// so neither contributes. Returns 0 when the region is degenerate or no value
// survives the filter.
func (dm *DepthMap) MedianInRect(rect image.Rectangle, min, max float64) float64 {
	crop := rect.Intersect(dm.Bounds())
	if crop.Empty() {
		return 0
	}
	valid := make([]float64, 0, crop.Dx()*crop.Dy())
	for y := crop.Min.Y; y < crop.Max.Y; y++ {
		for x := crop.Min.X; x < crop.Max.X; x++ {
			d := dm.data[y*dm.width+x]
			if d > min && d < max {
				valid = append(valid, d)
			}
		}
	}
	if len(valid) == 0 {
		return 0
	}
	median, err := stats.Median(valid)
	if err != nil {
		return 0
	}
	return median
}

// ToGray16Picture renders the depth map as a 16-bit grayscale image in
// millimeters, the inverse of NewDepthMapFromGray16.
func (dm *DepthMap) ToGray16Picture() *image.Gray16 {
	img := image.NewGray16(dm.Bounds())
	for y := 0; y < dm.height; y++ {
		for x := 0; x < dm.width; x++ {
			mm := dm.data[y*dm.width+x] * millimetersPerMeter
			if mm < 0 {
				mm = 0
			}
			if mm > 65535 {
				mm = 65535
			}
			img.SetGray16(x, y, color.Gray16{Y: uint16(mm)})
		}
	}
	return img
}

// Resize returns a new depth map interpolated to the given dimensions. Used
// to align an estimator's native output resolution with the pipeline working
// resolution.
func (dm *DepthMap) Resize(width, height int) *DepthMap {
	if width == dm.width && height == dm.height {
		return dm
	}
	src := dm.ToGray16Picture()
	dst := image.NewGray16(image.Rect(0, 0, width, height))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return NewDepthMapFromGray16(dst)
}
