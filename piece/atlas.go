package piece

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"math/rand"

	"github.com/pthm-cable/grassgen/fin"
)

// GreenReference is the green value written where a pixel is fully
// transparent. Shaders alpha-test against it blended by the source alpha.
const GreenReference = 229

// Stage names the steps of Atlas as reported to Generator.OnStage.
type Stage string

const (
	StageSimulate Stage = "simulate"
	StageCompose  Stage = "compose"
	StageRepack   Stage = "repack"
)

// Atlas renders count fresh pieces, places them side by side in one
// size*count x size image and repacks alpha into green.
func (g *Generator) Atlas(ctx context.Context, size, count int, rng *rand.Rand) (*image.NRGBA, []Result, error) {
	g.stage(StageSimulate)
	pieces, err := g.Pieces(ctx, size, count, rng)
	if err != nil {
		return nil, nil, err
	}

	g.stage(StageCompose)
	imgs := make([]*image.NRGBA, len(pieces))
	for i, p := range pieces {
		imgs[i] = p.Image
	}
	atlas := Compose(imgs, size, g.Opts.OpaqueBackground)

	g.stage(StageRepack)
	RepackGreen(atlas)
	return atlas, pieces, nil
}

func (g *Generator) stage(s Stage) {
	if g.OnStage != nil {
		g.OnStage(s)
	}
}

// Compose concatenates square tiles horizontally. With opaque set the strip
// is cleared to opaque black and tiles are blended over it; otherwise tiles
// are copied verbatim.
func Compose(tiles []*image.NRGBA, size int, opaque bool) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, size*len(tiles), size))
	if opaque {
		draw.Draw(dst, dst.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
		for i, t := range tiles {
			r := image.Rect(size*i, 0, size*(i+1), size)
			draw.Draw(dst, r, t, t.Bounds().Min, draw.Over)
		}
		return dst
	}
	for i, t := range tiles {
		copyTile(dst, t, size*i, size)
	}
	return dst
}

// copyTile copies the top-left size x size block of t into dst at column x.
// Rows are copied as raw bytes; going through color.Color would round-trip
// through premultiplied alpha and perturb translucent pixels.
func copyTile(dst, t *image.NRGBA, x, size int) {
	b := t.Bounds()
	w := min(size, b.Dx()) * 4
	for y := 0; y < min(size, b.Dy()); y++ {
		src := t.Pix[y*t.Stride : y*t.Stride+w]
		copy(dst.Pix[dst.PixOffset(x, y):], src)
	}
}

func repack(g, a uint8) uint8 {
	return uint8(fin.Lerp(float64(a)/255, GreenReference, float64(g)))
}

// RepackGreen overwrites every pixel's green channel with
// lerp(alpha, GreenReference, green), working directly on the packed
// R,G,B,A bytes row by row so row padding (Stride) is honoured.
func RepackGreen(img *image.NRGBA) {
	b := img.Bounds()
	w := b.Dx() * 4
	for y := 0; y < b.Dy(); y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w]
		for i := 0; i < len(row); i += 4 {
			row[i+1] = repack(row[i+1], row[i+3])
		}
	}
}

// RepackGreenPixels is the per-pixel reference for RepackGreen.
func RepackGreenPixels(img *image.NRGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			c.G = repack(c.G, c.A)
			img.SetNRGBA(x, y, c)
		}
	}
}
