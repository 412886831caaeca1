package scene

import (
	"github.com/rfeld/go-pathtracer/pkg/vmath"
)

// Texture is a 2D image in either linear float or sRGB byte pixels, sampled
// bilinearly with wrap-repeat addressing by default.
type Texture struct {
	Width, Height int
	Linear        bool
	PixelsF       []vmath.Vec4
	PixelsB       [][4]byte
	Nearest       bool
	Clamp         bool
}

// srgbToLinear converts a single sRGB channel to linear radiance.
func srgbToLinear(srgb float32) float32 {
	if srgb <= 0.04045 {
		return srgb / 12.92
	}
	return vmath.Pow((srgb+0.055)/1.055, 2.4)
}

// LinearToSRGB converts a single linear channel to sRGB for display.
func LinearToSRGB(lin float32) float32 {
	if lin <= 0.0031308 {
		return lin * 12.92
	}
	return 1.055*vmath.Pow(lin, 1/2.4) - 0.055
}

// Lookup fetches the texel at (i, j), converting byte pixels to float and,
// when asLinear is set, sRGB-encoded pixels to linear.
func (t *Texture) Lookup(i, j int, asLinear bool) vmath.Vec4 {
	var color vmath.Vec4
	if len(t.PixelsF) > 0 {
		color = t.PixelsF[j*t.Width+i]
	} else {
		b := t.PixelsB[j*t.Width+i]
		color = vmath.Vec4{
			X: float32(b[0]) / 255,
			Y: float32(b[1]) / 255,
			Z: float32(b[2]) / 255,
			W: float32(b[3]) / 255,
		}
	}
	if asLinear && !t.Linear {
		return vmath.Vec4{
			X: srgbToLinear(color.X),
			Y: srgbToLinear(color.Y),
			Z: srgbToLinear(color.Z),
			W: color.W,
		}
	}
	return color
}

// EvalTexture samples the texture at uv with the texture's addressing and
// filtering modes. An invalid texture id evaluates to white so that texture
// slots can modulate material parameters unconditionally.
func EvalTexture(s *Scene, texID int, uv vmath.Vec2, asLinear bool) vmath.Vec4 {
	if texID == InvalidID {
		return vmath.Vec4{X: 1, Y: 1, Z: 1, W: 1}
	}
	t := &s.Textures[texID]
	if t.Width == 0 || t.Height == 0 {
		return vmath.Vec4{X: 1, Y: 1, Z: 1, W: 1}
	}

	// wrap or clamp into [0,1)
	var st vmath.Vec2
	if t.Clamp {
		st = vmath.Vec2{
			X: vmath.Clamp(uv.X, 0, 1) * float32(t.Width),
			Y: vmath.Clamp(uv.Y, 0, 1) * float32(t.Height),
		}
	} else {
		wx := uv.X - vmath.Floor(uv.X)
		wy := uv.Y - vmath.Floor(uv.Y)
		st = vmath.Vec2{X: wx * float32(t.Width), Y: wy * float32(t.Height)}
	}

	i := vmath.ClampInt(int(st.X), 0, t.Width-1)
	j := vmath.ClampInt(int(st.Y), 0, t.Height-1)
	if t.Nearest {
		return t.Lookup(i, j, asLinear)
	}

	var ii, jj int
	if t.Clamp {
		ii = min(i+1, t.Width-1)
		jj = min(j+1, t.Height-1)
	} else {
		ii = (i + 1) % t.Width
		jj = (j + 1) % t.Height
	}
	u := st.X - float32(i)
	v := st.Y - float32(j)

	// bilinear blend of the four surrounding texels
	return t.Lookup(i, j, asLinear).Multiply((1 - u) * (1 - v)).
		Add(t.Lookup(i, jj, asLinear).Multiply((1 - u) * v)).
		Add(t.Lookup(ii, j, asLinear).Multiply(u * (1 - v))).
		Add(t.Lookup(ii, jj, asLinear).Multiply(u * v))
}
