package assets

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"strings"

	"github.com/nfnt/resize"
	"github.com/oliamb/cutter"
)

// Transformer produces transformed image bytes from a source image. It is
// an external collaborator of the pipeline; ImageTransformer is the default
// wiring.
type Transformer interface {
	Transform(src []byte, ext string, params TransformParams) ([]byte, error)
}

// ImageTransformer resizes and crops raster images (jpeg, png, gif).
type ImageTransformer struct{}

// NewImageTransformer returns the default transformer.
func NewImageTransformer() *ImageTransformer { return &ImageTransformer{} }

// Transform applies params to the source image and re-encodes it in its
// original format.
func (t *ImageTransformer) Transform(src []byte, ext string, params TransformParams) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	out, err := applyTransform(img, params)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	switch format {
	case "jpeg":
		quality := params.Quality
		if quality <= 0 {
			quality = 85
		}
		err = jpeg.Encode(&buf, out, &jpeg.Options{Quality: quality})
	case "png":
		err = png.Encode(&buf, out)
	case "gif":
		err = gif.Encode(&buf, out, nil)
	default:
		return nil, fmt.Errorf("unsupported image format %q (%s)", format, strings.TrimPrefix(ext, "."))
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

func applyTransform(img image.Image, params TransformParams) (image.Image, error) {
	switch params.Fit {
	case FitCrop:
		w, h := params.Width, params.Height
		if w == 0 {
			w = img.Bounds().Dx()
		}
		if h == 0 {
			h = img.Bounds().Dy()
		}
		cropped, err := cutter.Crop(img, cutter.Config{
			Width:  w,
			Height: h,
			Mode:   cutter.Centered,
		})
		if err != nil {
			return nil, fmt.Errorf("crop: %w", err)
		}
		return cropped, nil

	case FitFill:
		// Scale to cover the target box, then center-crop to exact size.
		if params.Width == 0 || params.Height == 0 {
			return nil, fmt.Errorf("fill mode requires both width and height")
		}
		b := img.Bounds()
		scaleW := float64(params.Width) / float64(b.Dx())
		scaleH := float64(params.Height) / float64(b.Dy())
		scale := scaleW
		if scaleH > scale {
			scale = scaleH
		}
		scaled := resize.Resize(uint(float64(b.Dx())*scale+0.5), 0, img, resize.Lanczos3)
		cropped, err := cutter.Crop(scaled, cutter.Config{
			Width:  params.Width,
			Height: params.Height,
			Mode:   cutter.Centered,
		})
		if err != nil {
			return nil, fmt.Errorf("fill crop: %w", err)
		}
		return cropped, nil

	default: // FitResize
		return resize.Resize(uint(params.Width), uint(params.Height), img, resize.Lanczos3), nil
	}
}
