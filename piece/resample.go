package piece

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// Downsample scales src to a size x size tile with a Catmull-Rom (bicubic)
// kernel.
func Downsample(src image.Image, size int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}
