package renderer

import (
	"context"

	"github.com/rfeld/go-pathtracer/pkg/bvh"
	"github.com/rfeld/go-pathtracer/pkg/integrator"
	"github.com/rfeld/go-pathtracer/pkg/lights"
	"github.com/rfeld/go-pathtracer/pkg/log"
	"github.com/rfeld/go-pathtracer/pkg/scene"
	"github.com/rfeld/go-pathtracer/pkg/vmath"
)

var logger = log.New("renderer")

// Samples accumulates one sample for every pixel. Single-sample renders tap
// the pixel centre for a clean preview; otherwise film coordinates are
// jittered. Non-finite shader results are dropped so a pathological sample
// never corrupts the accumulator.
func Samples(state *State, scn *scene.Scene, tree *bvh.Tree, lts *lights.Lights, params integrator.Params) {
	if state.Samples >= params.Samples {
		return
	}
	camera := &scn.Cameras[params.Camera]
	shader, err := integrator.GetShader(params)
	if err != nil {
		// validated at setup; an unknown shader cannot reach here
		return
	}
	state.Samples++

	samplePixel := func(idx int) {
		i, j := idx%state.Width, idx/state.Width
		rng := &state.RNGs[idx]
		var u, v float32
		if params.Samples == 1 {
			u = (float32(i) + 0.5) / float32(state.Width)
			v = (float32(j) + 0.5) / float32(state.Height)
		} else {
			u = (float32(i) + rng.Rand1f()) / float32(state.Width)
			v = (float32(j) + rng.Rand1f()) / float32(state.Height)
		}
		ray := scene.EvalCamera(camera, vmath.Vec2{X: u, Y: v}, rng.Rand2f())
		radiance := shader(scn, tree, lts, ray, rng, params)
		if !radiance.IsFinite() {
			radiance = vmath.Vec4{}
		}
		state.Image[idx] = state.Image[idx].Add(radiance)
		state.Hits[idx]++
	}

	parallelFor(state.Width*state.Height, params.NoParallel, samplePixel)
}

// Render drives sample accumulation to the configured count, checking for
// cooperative cancellation between samples. The state stays consistent for
// the samples it holds when cancelled.
func Render(ctx context.Context, state *State, scn *scene.Scene, tree *bvh.Tree, lts *lights.Lights, params integrator.Params) error {
	if err := Validate(scn, params); err != nil {
		return err
	}
	for state.Samples < params.Samples {
		if err := ctx.Err(); err != nil {
			logger.Noticef("render cancelled at %d/%d samples", state.Samples, params.Samples)
			return err
		}
		Samples(state, scn, tree, lts, params)
		logger.Debugf("sample %d/%d done", state.Samples, params.Samples)
	}
	return nil
}

// GetRender reads out the linear radiance image: the accumulator divided by
// the sample count.
func GetRender(state *State) []vmath.Vec4 {
	image := make([]vmath.Vec4, len(state.Image))
	if state.Samples == 0 {
		return image
	}
	scale := 1 / float32(state.Samples)
	for idx := range state.Image {
		image[idx] = state.Image[idx].Multiply(scale)
	}
	return image
}
