package storage

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDataURI(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("\x89PNG fake"))

	img, err := DecodeDataURI("data:image/png;base64," + payload)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, []byte("\x89PNG fake"), img.Data)
	assert.Equal(t, "png", img.Extension())
}

func TestDecodeDataURIRejects(t *testing.T) {
	ok := base64.StdEncoding.EncodeToString([]byte("x"))
	cases := map[string]struct {
		uri  string
		want error
	}{
		"no scheme":     {uri: "image/png;base64," + ok, want: ErrInvalidDataURI},
		"not base64":    {uri: "data:image/png," + ok, want: ErrInvalidDataURI},
		"bad payload":   {uri: "data:image/png;base64,@@@", want: ErrInvalidDataURI},
		"empty payload": {uri: "data:image/png;base64,", want: ErrInvalidDataURI},
		"not an image":  {uri: "data:text/plain;base64," + ok, want: ErrUnsupportedType},
		"too large": {
			uri:  "data:image/png;base64," + strings.Repeat("A", (MaxImageBytes/3+2)*4),
			want: ErrImageTooLarge,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeDataURI(tc.uri)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestImageExtension(t *testing.T) {
	assert.Equal(t, "jpg", Image{ContentType: "image/jpeg"}.Extension())
	assert.Equal(t, "svg", Image{ContentType: "image/svg+xml"}.Extension())
	assert.Equal(t, "bin", Image{ContentType: "image"}.Extension())
}
