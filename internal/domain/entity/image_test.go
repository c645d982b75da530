package entity

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

func TestNewSelectedImage_SniffsMime(t *testing.T) {
	img := NewSelectedImage(append(pngHeader, 0, 0, 0), "cell.png", "")
	require.Equal(t, "image/png", img.MimeType)
	require.NoError(t, img.Validate(0))
}

func TestNewSelectedImage_CopiesData(t *testing.T) {
	data := []byte("\xff\xd8\xff\xe0jpeg")
	img := NewSelectedImage(data, "cell.jpg", "image/jpeg; charset=binary")
	data[0] = 0

	require.Equal(t, byte(0xff), img.Data[0])
	require.Equal(t, "image/jpeg", img.MimeType)
}

func TestSelectedImage_Validate(t *testing.T) {
	cases := []struct {
		name string
		img  *SelectedImage
		max  int
	}{
		{"empty", &SelectedImage{FileName: "a.png", MimeType: "image/png"}, 0},
		{"not an image", &SelectedImage{Data: []byte("hello"), FileName: "a.txt", MimeType: "text/plain"}, 0},
		{"too big", &SelectedImage{Data: bytes.Repeat([]byte{1}, 6_000_000), FileName: "big.jpg", MimeType: "image/jpeg"}, 0},
		{"over custom limit", &SelectedImage{Data: []byte("12345"), FileName: "a.jpg", MimeType: "image/jpeg"}, 4},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.ErrorIs(t, tc.img.Validate(tc.max), ErrInvalidInput)
		})
	}
}

func TestSelectedImage_ValidateAtLimit(t *testing.T) {
	img := &SelectedImage{Data: bytes.Repeat([]byte{1}, DefaultMaxImageBytes), MimeType: "image/jpeg"}
	require.NoError(t, img.Validate(0))
}
