package media

import (
	"image"
	"math"

	"golang.org/x/image/draw"

	"github.com/arawak/cameraroll/internal/photos"
)

// TargetDimensions returns the output size for src scaled into target. Fill
// covers the target, fit stays inside it. Images are never enlarged.
func TargetDimensions(src, target image.Point, mode photos.ContentMode) image.Point {
	if src.X <= 0 || src.Y <= 0 || target.X <= 0 || target.Y <= 0 {
		return src
	}
	sx := float64(target.X) / float64(src.X)
	sy := float64(target.Y) / float64(src.Y)
	scale := math.Min(sx, sy)
	if mode == photos.ContentModeAspectFill {
		scale = math.Max(sx, sy)
	}
	if scale >= 1 {
		return src
	}
	return image.Pt(
		max(1, int(math.Round(float64(src.X)*scale))),
		max(1, int(math.Round(float64(src.Y)*scale))),
	)
}

// Scale resizes src for a preview request.
func Scale(src image.Image, target image.Point, mode photos.ContentMode, delivery photos.DeliveryMode) image.Image {
	size := src.Bounds().Size()
	out := TargetDimensions(size, target, mode)
	if out == size {
		return src
	}
	var interp draw.Interpolator = draw.ApproxBiLinear
	switch delivery {
	case photos.DeliveryModeHighQuality:
		interp = draw.CatmullRom
	case photos.DeliveryModeFast:
		interp = draw.NearestNeighbor
	}
	dst := image.NewRGBA(image.Rect(0, 0, out.X, out.Y))
	interp.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}
