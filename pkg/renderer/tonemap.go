package renderer

import (
	"github.com/rfeld/go-pathtracer/pkg/vmath"
)

// tonemapFilmic is the ACES-style filmic fit applied per channel.
func tonemapFilmic(x float32) float32 {
	x *= 0.6
	return vmath.Clamp((x*x*2.51+x*0.03)/(x*x*2.43+x*0.59+0.14), 0, 1)
}

// Tonemap applies the exposure pre-gain and the optional filmic curve to a
// linear image, returning a new image. Output stays linear; sRGB encoding
// belongs to the image sink.
func Tonemap(image []vmath.Vec4, exposure float32, filmic bool) []vmath.Vec4 {
	scale := vmath.Pow(2, exposure)
	out := make([]vmath.Vec4, len(image))
	for idx, pixel := range image {
		c := pixel.XYZ().Multiply(scale)
		if filmic {
			c = vmath.Vec3{
				X: tonemapFilmic(c.X),
				Y: tonemapFilmic(c.Y),
				Z: tonemapFilmic(c.Z),
			}
		}
		out[idx] = vmath.Vec4{X: c.X, Y: c.Y, Z: c.Z, W: pixel.W}
	}
	return out
}
