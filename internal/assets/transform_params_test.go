package assets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTransformParams(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    TransformParams
		wantOK  bool
		wantErr bool
	}{
		{name: "empty query", query: "", wantOK: false},
		{name: "unrelated params", query: "version=2", wantOK: false},
		{
			name:   "width only",
			query:  "w=400",
			want:   TransformParams{Width: 400, Fit: FitResize},
			wantOK: true,
		},
		{
			name:   "full set",
			query:  "w=400&h=300&fit=fill&q=70",
			want:   TransformParams{Width: 400, Height: 300, Fit: FitFill, Quality: 70},
			wantOK: true,
		},
		{
			name:   "crop mode",
			query:  "h=200&fit=crop",
			want:   TransformParams{Height: 200, Fit: FitCrop},
			wantOK: true,
		},
		{name: "unknown fit mode", query: "w=100&fit=stretch", wantErr: true},
		{name: "negative width", query: "w=-5", wantErr: true},
		{name: "non-numeric height", query: "h=abc", wantErr: true},
		{name: "fit without dimensions", query: "fit=crop", wantErr: true},
		{name: "quality without dimensions", query: "q=80", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := ParseTransformParams(tt.query)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestTransformParams_CanonicalOrderIndependent(t *testing.T) {
	a, ok, err := ParseTransformParams("w=400&h=300&q=70&fit=fill")
	require.NoError(t, err)
	require.True(t, ok)

	b, ok, err := ParseTransformParams("q=70&fit=fill&h=300&w=400")
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, "w=400&h=300&fit=fill&q=70", a.Canonical())
	assert.Equal(t, a.Canonical(), b.Canonical())
}

func TestTransformParams_CanonicalOmitsUnset(t *testing.T) {
	p := TransformParams{Width: 400, Fit: FitResize}
	assert.Equal(t, "w=400&fit=resize", p.Canonical())
}
