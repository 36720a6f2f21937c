package depthestimation

import (
	"context"
	"image"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"

	"github.com/UmeshNayak1/DimensiMeasure/mimage"
	"github.com/UmeshNayak1/DimensiMeasure/ml"
	"github.com/UmeshNayak1/DimensiMeasure/mlmodel"
)

// NewMLModelEstimator builds a DepthEstimator from an inference service whose model
// returns a single depth tensor with values in meters.
func NewMLModelEstimator(ctx context.Context, mlm mlmodel.Service) (DepthEstimator, error) {
	md, err := mlm.Metadata(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "could not find metadata")
	}
	if len(md.Inputs) == 0 {
		return nil, errors.New("model metadata does not describe an input tensor")
	}

	var inHeight, inWidth uint
	inType := md.Inputs[0].DataType
	shape := md.Inputs[0].Shape
	if len(shape) < 4 {
		return nil, errors.Errorf("invalid input tensor shape %v", shape)
	}
	if getIndex(shape, 3) == 1 {
		inHeight, inWidth = uint(shape[2]), uint(shape[3])
	} else {
		inHeight, inWidth = uint(shape[1]), uint(shape[2])
	}

	return func(ctx context.Context, img image.Image) (*mimage.DepthMap, error) {
		resized := resize.Resize(inWidth, inHeight, img, resize.Bilinear)
		inMap := ml.Tensors{}
		switch inType {
		case "uint8":
			inMap["image"] = ml.ImageToUInt8Tensor(resized)
		case "float32":
			inMap["image"] = ml.ImageToFloat32Tensor(resized)
		default:
			return nil, errors.New("invalid input type. try uint8 or float32")
		}
		outMap, err := mlm.Infer(ctx, inMap)
		if err != nil {
			return nil, err
		}
		t, err := ml.GetTensorByName(outMap, "depth")
		if err != nil {
			return nil, err
		}
		data, err := ml.ToFloat64Slice(t.Data())
		if err != nil {
			return nil, err
		}
		h, w, err := gridDims(t.Shape())
		if err != nil {
			return nil, err
		}
		if h*w != len(data) {
			return nil, errors.Errorf("depth tensor shape %v does not match its %d values", t.Shape(), len(data))
		}
		dm := mimage.NewEmptyDepthMap(w, h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				dm.Set(x, y, data[y*w+x])
			}
		}
		return dm, nil
	}, nil
}

// gridDims extracts height and width from a depth tensor shape, tolerating batch
// and channel dimensions of one, e.g. (1, h, w, 1), (1, h, w) or (h, w).
func gridDims(shape []int) (int, int, error) {
	dims := make([]int, 0, len(shape))
	for _, s := range shape {
		if s != 1 {
			dims = append(dims, s)
		}
	}
	if len(dims) != 2 {
		return 0, 0, errors.Errorf("cannot read a depth grid from tensor shape %v", shape)
	}
	return dims[0], dims[1], nil
}

func getIndex(s []int, num int) int {
	for i, v := range s {
		if v == num {
			return i
		}
	}
	return -1
}
