package main

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/df07/go-photon-mapper/internal/log"
	"github.com/df07/go-photon-mapper/pkg/integrator"
	"github.com/df07/go-photon-mapper/pkg/photonmap"
	"github.com/df07/go-photon-mapper/pkg/scene"
)

var logger = log.New("cli")

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "photon-mapper"
	app.Usage = "trace photon maps and inspect them"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "trace",
			Usage: "trace photons through a built-in scene and write the maps",
			Description: `
Emit photons from the lights of a built-in scene, follow them through the
scene geometry and deposit them into surface, caustic and volume photon
maps. The balanced maps are written next to each other using the --out
path as the base name.`,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "scene, s",
					Value: "cornell",
					Usage: "scene to trace: cornell or spheres",
				},
				cli.IntFlag{
					Name:  "photons, n",
					Value: 100000,
					Usage: "number of photons to emit",
				},
				cli.IntFlag{
					Name:  "max-depth",
					Value: 16,
					Usage: "maximum bounces per photon path",
				},
				cli.IntFlag{
					Name:  "workers, w",
					Value: 4,
					Usage: "parallel emission workers",
				},
				cli.IntFlag{
					Name:  "seed",
					Value: 1,
					Usage: "random seed for the emission pass",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "photons.pmap",
					Usage: "output file for the surface map",
				},
			},
			Action: traceScene,
		},
		{
			Name:      "info",
			Usage:     "print statistics about a photon map file",
			ArgsUsage: "photons.pmap",
			Action:    mapInfo,
		},
		{
			Name:      "dump-obj",
			Usage:     "dump a photon map as a wavefront obj point cloud",
			ArgsUsage: "photons.pmap cloud.obj",
			Action:    dumpOBJ,
		},
	}
	return app
}

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}

func buildScene(name string) (*scene.Scene, error) {
	switch name {
	case "cornell":
		return scene.NewCornellScene(), nil
	case "spheres":
		return scene.NewSpheresScene(), nil
	}
	return nil, fmt.Errorf("unknown scene %q, expected cornell or spheres", name)
}

func traceScene(ctx *cli.Context) error {
	setupLogging(ctx)

	sc, err := buildScene(ctx.String("scene"))
	if err != nil {
		return err
	}

	start := time.Now()
	maps := integrator.NewPhotonTracer(sc, integrator.PhotonTracerConfig{
		PhotonCount: ctx.Int("photons"),
		MaxDepth:    ctx.Int("max-depth"),
		Workers:     ctx.Int("workers"),
		Seed:        uint32(ctx.Int("seed")),
	}).Trace()
	logger.Noticef("traced %d photons in %v", maps.Emitted, time.Since(start))

	out := ctx.String("out")
	if err := maps.Global.SaveFile(out); err != nil {
		return err
	}
	logger.Noticef("surface map: %s", out)

	if maps.Caustic.Count() > 0 {
		path := derivedMapPath(out, "caustic")
		if err := maps.Caustic.SaveFile(path); err != nil {
			return err
		}
		logger.Noticef("caustic map: %s", path)
	}
	if maps.Volume != nil && maps.Volume.Count() > 0 {
		path := derivedMapPath(out, "volume")
		if err := maps.Volume.SaveFile(path); err != nil {
			return err
		}
		logger.Noticef("volume map: %s", path)
	}

	return nil
}

// derivedMapPath turns photons.pmap into photons.caustic.pmap
func derivedMapPath(out, kind string) string {
	base := strings.TrimSuffix(out, ".pmap")
	return base + "." + kind + ".pmap"
}

func mapInfo(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return fmt.Errorf("missing photon map file")
	}

	m, err := photonmap.LoadFile(ctx.Args().First())
	if err != nil {
		return err
	}

	fmt.Print(mapStats(m))
	return nil
}

// mapStats builds a tabular summary of a photon map
func mapStats(m *photonmap.Map) string {
	bounds := m.Bounds()

	var power float64
	for i := 1; i <= m.Count(); i++ {
		power += m.PhotonAt(i).ResolvedPower().Luminance()
	}
	power *= m.Scale()

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Field", "Value"})
	table.Append([]string{"Photons", fmt.Sprintf("%d", m.Count())})
	table.Append([]string{"Capacity", fmt.Sprintf("%d", m.Capacity())})
	table.Append([]string{"Balanced", fmt.Sprintf("%t", m.Balanced())})
	table.Append([]string{"Scale", fmt.Sprintf("%g", m.Scale())})
	table.Append([]string{"Bounds min", fmt.Sprintf("%.3f %.3f %.3f", bounds.Min.X, bounds.Min.Y, bounds.Min.Z)})
	table.Append([]string{"Bounds max", fmt.Sprintf("%.3f %.3f %.3f", bounds.Max.X, bounds.Max.Y, bounds.Max.Z)})
	table.Append([]string{"Total flux", fmt.Sprintf("%g", power)})
	table.Render()
	return buf.String()
}

func dumpOBJ(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 2 {
		return fmt.Errorf("usage: dump-obj <photons.pmap> <cloud.obj>")
	}

	m, err := photonmap.LoadFile(ctx.Args().Get(0))
	if err != nil {
		return err
	}

	if err := m.DumpOBJ(ctx.Args().Get(1)); err != nil {
		return err
	}
	logger.Noticef("wrote %d points to %s", m.Count(), ctx.Args().Get(1))
	return nil
}
