// Command layercomp runs a scene script, brings its compositing state up
// to date and prints the resulting graphics layer tree. It can also write
// a debug raster of the tree.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"layercomp/pkg/compositing"
	"layercomp/pkg/config"
	"layercomp/pkg/geom"
	"layercomp/pkg/graphics"
	"layercomp/pkg/logging"
	"layercomp/pkg/render"
	"layercomp/pkg/scene"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("layercomp", flag.ContinueOnError)
	fs.SetOutput(stderr)
	width := fs.Int("w", 800, "viewport width in pixels")
	height := fs.Int("h", 600, "viewport height in pixels")
	configPath := fs.String("config", "", "TOML settings file")
	initConfig := fs.String("init-config", "", "write the default settings to this file and exit")
	logLevel := fs.String("log", "", "log level (debug, info, warn, error); overrides the settings file")
	output := fs.String("o", "", "write a PNG raster of the layer tree to this file")
	dump := fs.String("dump", "names", "comma-separated dump fields: names, regions, reasons, scrollParents")
	labels := fs.Bool("labels", true, "draw layer names in the raster")
	regions := fs.Bool("regions", true, "draw touch and non-fast-scrollable regions in the raster")
	paintLayers := fs.Bool("layers", false, "also print the paint layer tree of each frame")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: layercomp [flags] <scene.js>\n\nFlags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *initConfig != "" {
		if err := config.Save(*initConfig, config.DefaultSettings()); err != nil {
			return err
		}
		fmt.Fprintf(stderr, "Wrote default settings to %s\n", *initConfig)
		return nil
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return flag.ErrHelp
	}

	settings := config.DefaultSettings()
	if *configPath != "" {
		var err error
		if settings, err = config.Load(*configPath); err != nil {
			return err
		}
	}
	level := settings.LogLevel
	if *logLevel != "" {
		level = *logLevel
	}
	logging.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: logging.ParseLevel(level)})))
	defer logging.SetLogger(nil)

	flags, err := parseDumpFlags(*dump)
	if err != nil {
		return err
	}

	viewport := geom.Size{W: float64(*width), H: float64(*height)}
	s := scene.New(compositing.NewServices(settings, graphics.DefaultFactory{}), viewport, stdout)
	if err := s.RunFile(fs.Arg(0)); err != nil {
		return err
	}
	s.Update()

	page := s.Page()
	fmt.Fprint(stdout, page.MainFrame().Compositor().LayerTreeAsText(flags))
	if reasons := s.Coordinator().MainThreadScrollingReasonsAsText(); reasons != "" {
		fmt.Fprintf(stdout, "main thread scrolling: %s\n", reasons)
	}
	if *paintLayers {
		for _, f := range page.Frames() {
			fmt.Fprintf(stdout, "frame %s:\n%s", f.Name, f.Tree().DumpTree())
		}
	}

	if *output != "" {
		r := render.NewRenderer(*width, *height, render.Options{Labels: *labels, Regions: *regions})
		r.Render(page.MainFrame().Compositor().RootGraphicsLayer())
		if err := r.SavePNG(*output); err != nil {
			return err
		}
		fmt.Fprintf(stderr, "Saved to %s\n", *output)
	}
	return nil
}

func parseDumpFlags(s string) (graphics.TextFlags, error) {
	var flags graphics.TextFlags
	for _, name := range strings.Split(s, ",") {
		switch strings.TrimSpace(name) {
		case "":
		case "names":
			flags |= graphics.TextIncludeNames
		case "regions":
			flags |= graphics.TextIncludeRegions
		case "reasons":
			flags |= graphics.TextIncludeCompositingReasons
		case "scrollParents":
			flags |= graphics.TextIncludeScrollParents
		default:
			return 0, fmt.Errorf("unknown dump field %q", name)
		}
	}
	return flags, nil
}
