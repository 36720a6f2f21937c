// Package mimage provides the image utilities behind the measurement pipeline:
// decoding request payloads, encoding annotated output, resizing to the model
// working resolution, and the depth map representation.
package mimage

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/lmittmann/ppm"
	"github.com/pkg/errors"
	"github.com/xfmoulet/qoi"
	"go.opencensus.io/trace"
	goutils "go.viam.com/utils"

	"github.com/UmeshNayak1/DimensiMeasure/utils"
)

const dataURIBase64Marker = ";base64,"

// DecodeImage takes an image buffer and decodes it, using the mimeType
// and the dimensions, to return the image.
func DecodeImage(ctx context.Context, imgBytes []byte, mimeType string) (image.Image, error) {
	_, span := trace.StartSpan(ctx, "mimage::DecodeImage::"+mimeType)
	defer span.End()

	switch mimeType {
	case utils.MimeTypeJPEG:
		return jpeg.Decode(bytes.NewReader(imgBytes))
	case utils.MimeTypePNG:
		return png.Decode(bytes.NewReader(imgBytes))
	case utils.MimeTypeQOI:
		return qoi.Decode(bytes.NewReader(imgBytes))
	default:
		// fall back on the registered formats, which covers ppm as well
		img, _, err := image.Decode(bytes.NewReader(imgBytes))
		if err != nil {
			return nil, errors.Wrapf(err, "could not decode bytes as %q", mimeType)
		}
		return img, nil
	}
}

// EncodeImage takes an image and mimeType as input arguments, and encodes and returns
// the bytes.
func EncodeImage(ctx context.Context, img image.Image, mimeType string) ([]byte, error) {
	_, span := trace.StartSpan(ctx, "mimage::EncodeImage::"+mimeType)
	defer span.End()

	var buf bytes.Buffer
	switch mimeType {
	case utils.MimeTypeJPEG:
		if err := jpeg.Encode(&buf, img, nil); err != nil {
			return nil, err
		}
	case utils.MimeTypePNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
	case utils.MimeTypePPM:
		if err := ppm.Encode(&buf, img); err != nil {
			return nil, err
		}
	case utils.MimeTypeQOI:
		if err := qoi.Encode(&buf, img); err != nil {
			return nil, err
		}
	default:
		return nil, errors.Errorf("do not know how to encode %q", mimeType)
	}
	return buf.Bytes(), nil
}

// NewImageFromFile returns an image read in from the given file path.
func NewImageFromFile(fn string) (image.Image, error) {
	//nolint:gosec
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer goutils.UncheckedErrorFunc(f.Close)

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot decode image from %q", fn)
	}
	return img, nil
}

// WriteImageToFile writes the given image to a file at the supplied path,
// choosing the encoding from the file extension.
func WriteImageToFile(ctx context.Context, path string, img image.Image) error {
	var mimeType string
	switch filepath.Ext(path) {
	case ".jpg", ".jpeg":
		mimeType = utils.MimeTypeJPEG
	case ".png":
		mimeType = utils.MimeTypePNG
	case ".ppm":
		mimeType = utils.MimeTypePPM
	case ".qoi":
		mimeType = utils.MimeTypeQOI
	default:
		return errors.Errorf("do not know how to encode files like %q", path)
	}
	buf, err := EncodeImage(ctx, img, mimeType)
	if err != nil {
		return err
	}
	//nolint:gosec
	return os.WriteFile(path, buf, 0o640)
}

// DecodeInput decodes the image payload of a measurement request. The payload
// may be a base64 data URI, a path to a readable image file, or raw base64
// image bytes.
func DecodeInput(ctx context.Context, payload string) (image.Image, error) {
	ctx, span := trace.StartSpan(ctx, "mimage::DecodeInput")
	defer span.End()

	if payload == "" {
		return nil, errors.New("empty image payload")
	}
	if strings.HasPrefix(payload, "data:") {
		return decodeDataURI(ctx, payload)
	}
	if _, err := os.Stat(payload); err == nil {
		return NewImageFromFile(payload)
	}
	imgBytes, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, errors.Wrap(err, "image payload is neither a data URI, a readable path, nor base64 data")
	}
	img, _, err := image.Decode(bytes.NewReader(imgBytes))
	if err != nil {
		return nil, errors.Wrap(err, "cannot decode base64 image payload")
	}
	return img, nil
}

func decodeDataURI(ctx context.Context, uri string) (image.Image, error) {
	idx := strings.Index(uri, dataURIBase64Marker)
	if idx < 0 {
		return nil, errors.New("image data URI is not base64 encoded")
	}
	mimeType := strings.TrimPrefix(uri[:idx], "data:")
	imgBytes, err := base64.StdEncoding.DecodeString(uri[idx+len(dataURIBase64Marker):])
	if err != nil {
		return nil, errors.Wrap(err, "cannot decode image data URI")
	}
	return DecodeImage(ctx, imgBytes, mimeType)
}

// EncodeToDataURI encodes an image as a JPEG base64 data URI, the form the
// annotated result image is transported in.
func EncodeToDataURI(ctx context.Context, img image.Image) (string, error) {
	imgBytes, err := EncodeImage(ctx, img, utils.MimeTypeJPEG)
	if err != nil {
		return "", err
	}
	return "data:" + utils.MimeTypeJPEG + dataURIBase64Marker +
		base64.StdEncoding.EncodeToString(imgBytes), nil
}

// CloneImage copies an image into a fresh RGBA buffer.
func CloneImage(img image.Image) *image.RGBA {
	dst := image.NewRGBA(img.Bounds())
	draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Src)
	return dst
}
