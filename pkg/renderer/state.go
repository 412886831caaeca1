// Package renderer drives the render: it validates configuration, sizes the
// accumulation state from the camera, schedules one sample per pixel per
// pass over a parallel-for primitive and reads the accumulators back out as
// a linear image, optionally tone mapped.
package renderer

import (
	"fmt"

	"github.com/rfeld/go-pathtracer/pkg/integrator"
	"github.com/rfeld/go-pathtracer/pkg/scene"
	"github.com/rfeld/go-pathtracer/pkg/vmath"
)

// State is the per-render accumulation state: a linear RGBA accumulator, a
// primary-hit counter and one RNG per pixel. Cells are only ever touched by
// the worker owning the pixel, so no locks are needed.
type State struct {
	Width   int
	Height  int
	Samples int
	Image   []vmath.Vec4
	Hits    []int
	RNGs    []vmath.RNG
}

// stateSeed seeds the master generator that spreads per-pixel streams.
const stateSeed = 1301081

// MakeState sizes the state from the camera aspect: the resolution sets the
// longest image side. Every pixel gets an independently seeded RNG stream.
func MakeState(scn *scene.Scene, params integrator.Params) *State {
	camera := &scn.Cameras[params.Camera]
	state := &State{}
	if camera.Aspect >= 1 {
		state.Width = params.Resolution
		state.Height = int(vmath.Round(float32(params.Resolution) / camera.Aspect))
	} else {
		state.Height = params.Resolution
		state.Width = int(vmath.Round(float32(params.Resolution) * camera.Aspect))
	}
	state.Samples = 0
	state.Image = make([]vmath.Vec4, state.Width*state.Height)
	state.Hits = make([]int, state.Width*state.Height)
	state.RNGs = make([]vmath.RNG, state.Width*state.Height)
	seeder := vmath.NewRNG(stateSeed, 1)
	for i := range state.RNGs {
		state.RNGs[i] = vmath.NewRNG(961748941, uint64(seeder.Rand1i(1<<31)/2+1))
	}
	return state
}

// Validate checks the configuration against the scene before any parallel
// work starts. Config errors never surface inside the render loop.
func Validate(scn *scene.Scene, params integrator.Params) error {
	if params.Camera < 0 || params.Camera >= len(scn.Cameras) {
		return fmt.Errorf("camera %d out of range [0, %d)", params.Camera, len(scn.Cameras))
	}
	if _, err := integrator.GetShader(params); err != nil {
		return err
	}
	if params.Resolution <= 0 {
		return fmt.Errorf("resolution must be positive, got %d", params.Resolution)
	}
	if params.Samples < 0 {
		return fmt.Errorf("samples must be non-negative, got %d", params.Samples)
	}
	if params.Bounces < 0 {
		return fmt.Errorf("bounces must be non-negative, got %d", params.Bounces)
	}
	return nil
}
