package preprocess

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// receiptLike draws dark text-ish bars on a light background.
func receiptLike(w, h int) *image.NRGBA {
	img := imaging.New(w, h, color.NRGBA{R: 235, G: 232, B: 225, A: 255})
	for y := 10; y < h-10; y += 20 {
		for x := 10; x < w-10; x++ {
			if (x/6)%2 == 0 {
				img.Set(x, y, color.Black)
				img.Set(x, y+1, color.Black)
			}
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestVariantsOrder(t *testing.T) {
	variants := Variants(receiptLike(200, 120), DefaultOptions(), nil)

	names := make([]string, 0, len(variants))
	for _, v := range variants {
		names = append(names, v.Name)
		require.NotNil(t, v.Image)
	}
	assert.Equal(t, []string{VariantOriginal, VariantContrast, VariantSharpen, VariantAdaptive, VariantMorph}, names)
}

func TestVariantsUpscaleSmallImages(t *testing.T) {
	opts := DefaultOptions()
	variants := Variants(receiptLike(200, 120), opts, nil)

	assert.Equal(t, 200, variants[0].Image.Bounds().Dx(), "original untouched")
	assert.Equal(t, opts.TargetWidth, variants[1].Image.Bounds().Dx())
}

func TestFromBytes(t *testing.T) {
	t.Run("valid png", func(t *testing.T) {
		variants := FromBytes(encodePNG(t, receiptLike(64, 64)), DefaultOptions(), nil)
		assert.Len(t, variants, 5)
	})

	t.Run("garbage yields no variants", func(t *testing.T) {
		assert.Empty(t, FromBytes([]byte("definitely not an image"), DefaultOptions(), nil))
	})
}

func TestAdaptiveThresholdIsBinary(t *testing.T) {
	out := AdaptiveThreshold(receiptLike(80, 60), 6, 10)

	for i := 0; i < len(out.Pix); i += 4 {
		v := out.Pix[i]
		require.True(t, v == 0 || v == 255, "pixel %d has value %d", i/4, v)
	}
	assert.Equal(t, uint8(0), out.NRGBAAt(12, 10).R, "text stays black")
	assert.Equal(t, uint8(255), out.NRGBAAt(40, 5).R, "paper turns white")
}

func TestCleanRemovesSpeckle(t *testing.T) {
	img := imaging.New(9, 9, color.White)
	img.Set(4, 4, color.Black)
	for x := 0; x < 9; x++ {
		for y := 0; y < 3; y++ {
			img.Set(x, y, color.Black)
		}
	}

	out := Clean(img, 1)
	assert.Equal(t, uint8(255), out.NRGBAAt(4, 4).R, "isolated dot removed")
	assert.Equal(t, uint8(0), out.NRGBAAt(4, 1).R, "solid stroke kept")
}
