// Package lights precomputes the sampling data for every emissive element
// of a scene - area lights backed by triangle or quad meshes and emissive
// environments - and answers the two questions direct lighting needs:
// sample a direction towards a light from a shading point, and reconstruct
// the solid-angle density of an arbitrary direction.
package lights

import (
	"github.com/rfeld/go-pathtracer/pkg/bvh"
	"github.com/rfeld/go-pathtracer/pkg/scene"
	"github.com/rfeld/go-pathtracer/pkg/vmath"
)

// maxPDFWalk bounds the number of surface intersections accumulated while
// reconstructing a mesh light's density along a ray. The bound is a
// heuristic; transmissive or thin-sheet meshes with more layered hits than
// this undercount slightly.
const maxPDFWalk = 100

// Light is one emissive element: either an instance or an environment, with
// a discrete CDF over its elements (mesh elements by area, environment
// texels by their largest channel times sin(theta)).
type Light struct {
	Instance    int
	Environment int
	ElementsCDF []float32
}

// Lights is the sampling data for all emitters of a scene.
type Lights struct {
	Lights []Light
}

// MakeLights enumerates the scene's emissive instances and environments and
// builds their element CDFs. Zero-area elements contribute zero-width CDF
// slots and are never picked.
func MakeLights(scn *scene.Scene) *Lights {
	lights := &Lights{}

	for handle := range scn.Instances {
		inst := &scn.Instances[handle]
		mat := &scn.Materials[inst.Material]
		if mat.Emission.IsZero() {
			continue
		}
		shape := &scn.Shapes[inst.Shape]
		if len(shape.Triangles) == 0 && len(shape.Quads) == 0 {
			continue
		}

		light := Light{Instance: handle, Environment: scene.InvalidID}
		if len(shape.Triangles) > 0 {
			light.ElementsCDF = make([]float32, len(shape.Triangles))
			for idx, t := range shape.Triangles {
				light.ElementsCDF[idx] = scene.TriangleArea(
					shape.Positions[t[0]], shape.Positions[t[1]], shape.Positions[t[2]])
				if idx != 0 {
					light.ElementsCDF[idx] += light.ElementsCDF[idx-1]
				}
			}
		}
		if len(shape.Quads) > 0 {
			light.ElementsCDF = make([]float32, len(shape.Quads))
			for idx, q := range shape.Quads {
				light.ElementsCDF[idx] = scene.QuadArea(
					shape.Positions[q[0]], shape.Positions[q[1]],
					shape.Positions[q[2]], shape.Positions[q[3]])
				if idx != 0 {
					light.ElementsCDF[idx] += light.ElementsCDF[idx-1]
				}
			}
		}
		lights.Lights = append(lights.Lights, light)
	}

	for handle := range scn.Environments {
		env := &scn.Environments[handle]
		if env.Emission.IsZero() {
			continue
		}
		light := Light{Instance: scene.InvalidID, Environment: handle}
		if env.EmissionTex != scene.InvalidID {
			texture := &scn.Textures[env.EmissionTex]
			light.ElementsCDF = make([]float32, texture.Width*texture.Height)
			for idx := range light.ElementsCDF {
				i, j := idx%texture.Width, idx/texture.Width
				theta := (float32(j) + 0.5) * vmath.Pi / float32(texture.Height)
				value := texture.Lookup(i, j, true)
				light.ElementsCDF[idx] = value.XYZ().MaxComponent() * vmath.Sin(theta)
				if idx != 0 {
					light.ElementsCDF[idx] += light.ElementsCDF[idx-1]
				}
			}
		}
		lights.Lights = append(lights.Lights, light)
	}

	return lights
}

// Sample picks a light uniformly, an element by its CDF and a point on the
// element, returning the unit direction from the shading position. Textured
// environments sample their texel CDF; textureless ones the whole sphere.
func Sample(scn *scene.Scene, lights *Lights, position vmath.Vec3, rl, rel float32, ruv vmath.Vec2) vmath.Vec3 {
	if len(lights.Lights) == 0 {
		return vmath.Vec3{}
	}
	light := &lights.Lights[vmath.SampleUniform(len(lights.Lights), rl)]

	if light.Instance != scene.InvalidID {
		inst := &scn.Instances[light.Instance]
		shape := &scn.Shapes[inst.Shape]
		element := vmath.SampleDiscrete(light.ElementsCDF, rel)
		uv := ruv
		if len(shape.Triangles) > 0 {
			uv = vmath.SampleTriangle(ruv)
		}
		lposition := scene.EvalPosition(scn, light.Instance, element, uv)
		return lposition.Subtract(position).Normalize()
	}

	if light.Environment != scene.InvalidID {
		env := &scn.Environments[light.Environment]
		if env.EmissionTex != scene.InvalidID {
			texture := &scn.Textures[env.EmissionTex]
			idx := vmath.SampleDiscrete(light.ElementsCDF, rel)
			uv := vmath.Vec2{
				X: (float32(idx%texture.Width) + 0.5) / float32(texture.Width),
				Y: (float32(idx/texture.Width) + 0.5) / float32(texture.Height),
			}
			return env.Frame.TransformDirection(vmath.Vec3{
				X: vmath.Cos(uv.X*2*vmath.Pi) * vmath.Sin(uv.Y*vmath.Pi),
				Y: vmath.Cos(uv.Y * vmath.Pi),
				Z: vmath.Sin(uv.X*2*vmath.Pi) * vmath.Sin(uv.Y*vmath.Pi),
			})
		}
		return vmath.SampleSphere(ruv)
	}

	return vmath.Vec3{}
}

// PDF reconstructs the solid-angle density of Sample producing the given
// direction from position: the uniform-over-lights weight times the sum of
// per-light densities. Mesh lights walk every intersection along the ray,
// whichever way the element faces, up to maxPDFWalk.
func PDF(scn *scene.Scene, tree *bvh.Tree, lights *Lights, position, direction vmath.Vec3) float32 {
	if len(lights.Lights) == 0 {
		return 0
	}

	pdf := float32(0)
	for li := range lights.Lights {
		light := &lights.Lights[li]
		if light.Instance != scene.InvalidID {
			// sum over every element intersection the direction can reach
			lpdf := float32(0)
			nextPosition := position
			for bounce := 0; bounce < maxPDFWalk; bounce++ {
				isec := bvh.IntersectInstance(tree, scn, light.Instance,
					vmath.NewRay(nextPosition, direction), false)
				if !isec.Hit {
					break
				}
				lposition := scene.EvalPosition(scn, light.Instance, isec.Element, isec.UV)
				lnormal := scene.EvalElementNormal(scn, light.Instance, isec.Element)
				area := light.ElementsCDF[len(light.ElementsCDF)-1]
				lpdf += lposition.Subtract(position).LengthSquared() /
					(vmath.Abs(lnormal.Dot(direction)) * area)
				nextPosition = lposition.Add(direction.Multiply(1e-3))
			}
			pdf += lpdf
		} else if light.Environment != scene.InvalidID {
			env := &scn.Environments[light.Environment]
			if env.EmissionTex != scene.InvalidID {
				texture := &scn.Textures[env.EmissionTex]
				wl := env.Frame.Inverse(false).TransformDirection(direction)
				texcoord := vmath.Vec2{
					X: vmath.Atan2(wl.Z, wl.X) / (2 * vmath.Pi),
					Y: vmath.Acos(vmath.Clamp(wl.Y, -1, 1)) / vmath.Pi,
				}
				if texcoord.X < 0 {
					texcoord.X += 1
				}
				i := vmath.ClampInt(int(texcoord.X*float32(texture.Width)), 0, texture.Width-1)
				j := vmath.ClampInt(int(texcoord.Y*float32(texture.Height)), 0, texture.Height-1)
				prob := vmath.SampleDiscretePDF(light.ElementsCDF, j*texture.Width+i)
				angle := (2 * vmath.Pi / float32(texture.Width)) *
					(vmath.Pi / float32(texture.Height)) *
					vmath.Sin(vmath.Pi*(float32(j)+0.5)/float32(texture.Height))
				pdf += prob / angle
			} else {
				pdf += 1 / (4 * vmath.Pi)
			}
		}
	}

	pdf *= vmath.SampleUniformPDF(len(lights.Lights))
	return pdf
}
