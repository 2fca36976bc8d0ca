package assets

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// FitMode selects how an image is fitted into the requested dimensions.
type FitMode string

const (
	FitResize FitMode = "resize" // scale preserving aspect ratio (0 = derive)
	FitCrop   FitMode = "crop"   // center-crop without scaling
	FitFill   FitMode = "fill"   // scale to cover, then center-crop exactly
)

// TransformParams are the recognized image transform query parameters.
type TransformParams struct {
	Width   int
	Height  int
	Fit     FitMode
	Quality int // jpeg only, 0 = default
}

// ParseTransformParams reads transform parameters from a raw query string.
// ok is false when the query carries no transform parameters at all, in
// which case the reference is a plain asset link.
func ParseTransformParams(rawQuery string) (params TransformParams, ok bool, err error) {
	if rawQuery == "" {
		return params, false, nil
	}
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return params, false, fmt.Errorf("parse transform query: %w", err)
	}

	params.Fit = FitResize
	for key := range values {
		v := values.Get(key)
		switch key {
		case "w":
			if params.Width, err = positiveInt(key, v); err != nil {
				return params, false, err
			}
			ok = true
		case "h":
			if params.Height, err = positiveInt(key, v); err != nil {
				return params, false, err
			}
			ok = true
		case "fit":
			switch FitMode(v) {
			case FitResize, FitCrop, FitFill:
				params.Fit = FitMode(v)
			default:
				return params, false, fmt.Errorf("unknown fit mode %q", v)
			}
			ok = true
		case "q":
			if params.Quality, err = positiveInt(key, v); err != nil {
				return params, false, err
			}
			ok = true
		}
	}
	if ok && params.Width == 0 && params.Height == 0 {
		return params, false, fmt.Errorf("transform requires w or h")
	}
	return params, ok, nil
}

// Canonical returns the normalized parameter string used for cache keying.
// Identical parameter sets always canonicalize identically regardless of
// query-string ordering.
func (p TransformParams) Canonical() string {
	parts := make([]string, 0, 4)
	if p.Width > 0 {
		parts = append(parts, "w="+strconv.Itoa(p.Width))
	}
	if p.Height > 0 {
		parts = append(parts, "h="+strconv.Itoa(p.Height))
	}
	parts = append(parts, "fit="+string(p.Fit))
	if p.Quality > 0 {
		parts = append(parts, "q="+strconv.Itoa(p.Quality))
	}
	return strings.Join(parts, "&")
}

func positiveInt(key, v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("parameter %s must be a positive integer, got %q", key, v)
	}
	return n, nil
}
