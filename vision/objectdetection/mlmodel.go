package objectdetection

import (
	"bufio"
	"context"
	"image"
	"os"
	"strconv"
	"strings"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"github.com/UmeshNayak1/DimensiMeasure/ml"
	"github.com/UmeshNayak1/DimensiMeasure/mlmodel"
	"github.com/UmeshNayak1/DimensiMeasure/utils"
)

// NewMLModelDetector builds a Detector from an inference service whose model returns
// location, category and score tensors. Box coordinates are expected normalized to
// [0, 1] and are mapped back onto the dimensions of the input image. An explicit
// label list takes precedence over a label file named in the model metadata.
func NewMLModelDetector(ctx context.Context, mlm mlmodel.Service, labels []string) (Detector, error) {
	md, err := mlm.Metadata(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "could not find metadata")
	}
	if len(md.Inputs) == 0 {
		return nil, errors.New("model metadata does not describe an input tensor")
	}

	var inHeight, inWidth uint
	inType := md.Inputs[0].DataType
	if labels == nil {
		labels, err = getLabelsFromMetadata(md)
		if err != nil {
			labels = nil
		}
	}
	boxOrder := getBoxOrderFromMetadata(md)

	shape := md.Inputs[0].Shape
	if len(shape) < 4 {
		return nil, errors.Errorf("invalid input tensor shape %v", shape)
	}
	if getIndex(shape, 3) == 1 {
		inHeight, inWidth = uint(shape[2]), uint(shape[3])
	} else {
		inHeight, inWidth = uint(shape[1]), uint(shape[2])
	}

	return func(ctx context.Context, img image.Image) ([]Detection, error) {
		origW, origH := img.Bounds().Dx(), img.Bounds().Dy()
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

		locations, err := unpackTensor(outMap, "location")
		if err != nil {
			return nil, err
		}
		categories, err := unpackTensor(outMap, "category")
		if err != nil {
			return nil, err
		}
		scores, err := unpackTensor(outMap, "score")
		if err != nil {
			return nil, err
		}

		detections := make([]Detection, 0, len(scores))
		for i := 0; i < len(scores); i++ {
			if 4*i+3 >= len(locations) || i >= len(categories) {
				break
			}
			xmin, xmax, ymin, ymax := utils.Clamp(locations[4*i+int(boxOrder[0])], 0, 1)*float64(origW),
				utils.Clamp(locations[4*i+int(boxOrder[1])], 0, 1)*float64(origW),
				utils.Clamp(locations[4*i+int(boxOrder[2])], 0, 1)*float64(origH),
				utils.Clamp(locations[4*i+int(boxOrder[3])], 0, 1)*float64(origH)
			rect := image.Rect(int(xmin), int(ymin), int(xmax), int(ymax))
			labelNum := int(categories[i])

			label := strconv.Itoa(labelNum)
			if labelNum >= 0 && labelNum < len(labels) {
				label = labels[labelNum]
			}
			detections = append(detections, NewDetection(rect, scores[i], label))
		}
		return detections, nil
	}, nil
}

// unpackTensor finds the named output tensor and forces its backing data into a []float64.
func unpackTensor(outMap ml.Tensors, name string) ([]float64, error) {
	t, err := ml.GetTensorByName(outMap, name)
	if err != nil {
		return nil, err
	}
	return ml.ToFloat64Slice(t.Data())
}

// getIndex just returns the index of an int in an array of ints
// Will return -1 if it's not there.
func getIndex(s []int, num int) int {
	for i, v := range s {
		if v == num {
			return i
		}
	}
	return -1
}

// getLabelsFromMetadata reads the label file named in the category output metadata.
func getLabelsFromMetadata(md mlmodel.MLMetadata) ([]string, error) {
	for _, o := range md.Outputs {
		if strings.Contains(o.Name, "category") || strings.Contains(o.Name, "probability") {
			if labelPath, ok := o.Extra["labels"].(string); ok {
				//nolint:gosec
				f, err := os.Open(labelPath)
				if err != nil {
					return nil, err
				}
				defer goutils.UncheckedErrorFunc(f.Close)
				labels := []string{}
				scanner := bufio.NewScanner(f)
				for scanner.Scan() {
					labels = append(labels, scanner.Text())
				}
				return labels, nil
			}
		}
	}
	return nil, errors.New("could not find labels")
}

// getBoxOrderFromMetadata maps xmin, xmax, ymin, ymax onto positions within one
// location quadruple. The default matches models that emit ymin, xmin, ymax, xmax.
func getBoxOrderFromMetadata(md mlmodel.MLMetadata) []uint32 {
	for _, o := range md.Outputs {
		if strings.Contains(o.Name, "location") {
			if order, ok := o.Extra["boxOrder"].([]uint32); ok && len(order) >= 4 {
				return order
			}
		}
	}
	return []uint32{1, 3, 0, 2}
}
