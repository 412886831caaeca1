package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"os/signal"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/rfeld/go-pathtracer/pkg/bvh"
	"github.com/rfeld/go-pathtracer/pkg/integrator"
	"github.com/rfeld/go-pathtracer/pkg/lights"
	"github.com/rfeld/go-pathtracer/pkg/log"
	"github.com/rfeld/go-pathtracer/pkg/renderer"
	"github.com/rfeld/go-pathtracer/pkg/scene"
	"github.com/rfeld/go-pathtracer/pkg/subdiv"
	"github.com/rfeld/go-pathtracer/pkg/vmath"
)

var logger = log.New("pathtracer")

func main() {
	app := cli.NewApp()
	app.Name = "pathtracer"
	app.Usage = "physically based offline renderer"
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render a built-in scene to a PNG",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "scene", Value: "cornell", Usage: "built-in scene: 'cornell' or 'env'"},
				cli.StringFlag{Name: "shader", Value: "pathtrace", Usage: "one of volpathtrace, pathtrace, naive, eyelight, normal, texcoord, color"},
				cli.IntFlag{Name: "camera", Value: 0, Usage: "camera index"},
				cli.IntFlag{Name: "resolution", Value: 720, Usage: "longest image side in pixels"},
				cli.IntFlag{Name: "samples", Value: 256, Usage: "samples per pixel"},
				cli.IntFlag{Name: "bounces", Value: 4, Usage: "maximum path depth"},
				cli.BoolFlag{Name: "noparallel", Usage: "render on a single core"},
				cli.Float64Flag{Name: "exposure", Value: 0, Usage: "tone-mapping pre-gain in stops"},
				cli.BoolFlag{Name: "filmic", Usage: "apply the filmic tone curve"},
				cli.StringFlag{Name: "out", Value: "render.png", Usage: "output image path"},
				cli.BoolFlag{Name: "verbose", Usage: "enable debug logging"},
			},
			Action: renderAction,
		},
	}
	if err := app.Run(os.Args); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}

func renderAction(c *cli.Context) error {
	if c.Bool("verbose") {
		log.Configure(os.Stdout, log.Debug)
	}

	var scn *scene.Scene
	switch c.String("scene") {
	case "cornell":
		scn = scene.MakeCornellBox()
	case "env":
		scn = scene.MakeEnvScene(vmath.Vec3{X: 1, Y: 1, Z: 1})
	default:
		return fmt.Errorf("unknown scene %q", c.String("scene"))
	}

	params := integrator.DefaultParams()
	params.Camera = c.Int("camera")
	params.Resolution = c.Int("resolution")
	params.Shader = c.String("shader")
	params.Samples = c.Int("samples")
	params.Bounces = c.Int("bounces")
	params.NoParallel = c.Bool("noparallel")
	params.Exposure = float32(c.Float64("exposure"))
	params.Filmic = c.Bool("filmic")

	if err := renderer.Validate(scn, params); err != nil {
		return err
	}

	logger.Noticef("tesselating %d subdivision surfaces", len(scn.Subdivs))
	subdiv.TesselateSurfaces(scn)

	logger.Notice("building scene BVH")
	buildStart := time.Now()
	tree := bvh.MakeSceneBVH(scn, true, params.NoParallel)
	lts := lights.MakeLights(scn)
	buildTime := time.Since(buildStart)

	state := renderer.MakeState(scn, params)
	logger.Noticef("rendering %dx%d at %d spp with %s",
		state.Width, state.Height, params.Samples, params.Shader)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	renderStart := time.Now()
	if err := renderer.Render(ctx, state, scn, &tree, lts, params); err != nil {
		return err
	}
	renderTime := time.Since(renderStart)

	out := renderer.Tonemap(renderer.GetRender(state), params.Exposure, params.Filmic)
	if err := savePNG(c.String("out"), out, state.Width, state.Height); err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Setting", "Value"})
	table.Append([]string{"Resolution", fmt.Sprintf("%dx%d", state.Width, state.Height)})
	table.Append([]string{"Samples", fmt.Sprintf("%d", state.Samples)})
	table.Append([]string{"Shader", params.Shader})
	table.Append([]string{"Lights", fmt.Sprintf("%d", len(lts.Lights))})
	table.Append([]string{"Build time", buildTime.Round(time.Millisecond).String()})
	table.Append([]string{"Render time", renderTime.Round(time.Millisecond).String()})
	table.Append([]string{"Output", c.String("out")})
	table.Render()

	return nil
}

// savePNG writes a linear image as an 8-bit sRGB PNG.
func savePNG(path string, pixels []vmath.Vec4, width, height int) error {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for j := 0; j < height; j++ {
		for i := 0; i < width; i++ {
			p := pixels[j*width+i]
			img.SetRGBA(i, j, color.RGBA{
				R: uint8(vmath.Clamp(scene.LinearToSRGB(p.X), 0, 1) * 255),
				G: uint8(vmath.Clamp(scene.LinearToSRGB(p.Y), 0, 1) * 255),
				B: uint8(vmath.Clamp(scene.LinearToSRGB(p.Z), 0, 1) * 255),
				A: uint8(vmath.Clamp(p.W, 0, 1) * 255),
			})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return nil
}
