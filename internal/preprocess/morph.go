package preprocess

import (
	"image"
)

// Clean removes isolated dark speckle from a binarized image with a
// morphological closing of the white background: a max filter followed by a
// min filter of the same radius.
func Clean(img *image.NRGBA, radius int) *image.NRGBA {
	if radius <= 0 {
		return img
	}
	return rankFilter(rankFilter(img, radius, maxOf), radius, minOf)
}

func maxOf(a, b uint8) bool { return a > b }
func minOf(a, b uint8) bool { return a < b }

// rankFilter replaces each pixel by the extreme value of its square
// neighbourhood, as chosen by better. Only the red channel is read; the
// input is expected to be grayscale.
func rankFilter(src *image.NRGBA, radius int, better func(a, b uint8) bool) *image.NRGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := src.Pix[y*src.Stride+x*4]
			for dy := -radius; dy <= radius; dy++ {
				yy := y + dy
				if yy < 0 || yy >= h {
					continue
				}
				for dx := -radius; dx <= radius; dx++ {
					xx := x + dx
					if xx < 0 || xx >= w {
						continue
					}
					if n := src.Pix[yy*src.Stride+xx*4]; better(n, v) {
						v = n
					}
				}
			}
			i := y*dst.Stride + x*4
			dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2], dst.Pix[i+3] = v, v, v, 255
		}
	}
	return dst
}
