// Command layerview shows the composited layer tree of a scene script in a
// window, next to its text dump.
package main

import (
	"fmt"
	"image"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"layercomp/pkg/compositing"
	"layercomp/pkg/config"
	"layercomp/pkg/geom"
	"layercomp/pkg/graphics"
	"layercomp/pkg/render"
	"layercomp/pkg/scene"
)

const viewWidth, viewHeight = 800, 600

// snapshot is everything the window shows for one run of a scene.
type snapshot struct {
	image   image.Image
	dump    string
	status  string
	reasons string
}

func load(path string, settings config.Settings, opts render.Options) (*snapshot, error) {
	s := scene.New(compositing.NewServices(settings, graphics.DefaultFactory{}), geom.Size{W: viewWidth, H: viewHeight}, os.Stdout)
	if err := s.RunFile(path); err != nil {
		return nil, err
	}
	s.Update()

	compositor := s.Page().MainFrame().Compositor()
	r := render.NewRenderer(viewWidth, viewHeight, opts)
	r.Render(compositor.RootGraphicsLayer())

	stats := compositor.LastUpdate()
	snap := &snapshot{
		image:   r.Image(),
		dump:    compositor.LayerTreeAsText(graphics.TextIncludeNames | graphics.TextIncludeRegions | graphics.TextIncludeCompositingReasons),
		status:  fmt.Sprintf("%s: %d composited, %d squashed", path, stats.Composited, stats.Squashed),
		reasons: s.Coordinator().MainThreadScrollingReasonsAsText(),
	}
	if snap.reasons == "" {
		snap.reasons = "threaded scrolling"
	}
	return snap, nil
}

func main() {
	settings := config.DefaultSettings()
	if len(os.Args) > 2 {
		var err error
		if settings, err = config.Load(os.Args[2]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	a := app.New()
	w := a.NewWindow("layerview")
	w.Resize(fyne.NewSize(1280, 720))

	canvasImg := canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, viewWidth, viewHeight)))
	canvasImg.FillMode = canvas.ImageFillOriginal

	dump := widget.NewLabel("")
	dump.TextStyle = fyne.TextStyle{Monospace: true}
	status := widget.NewLabel("Enter a scene path and press Enter")
	reasons := widget.NewLabel("")

	labels := widget.NewCheck("Labels", nil)
	labels.SetChecked(true)
	regions := widget.NewCheck("Regions", nil)
	regions.SetChecked(true)

	pathEntry := widget.NewEntry()
	pathEntry.SetPlaceHolder("scene.js")
	pathEntry.OnSubmitted = func(path string) {
		status.SetText("Loading " + path + "...")
		opts := render.Options{Labels: labels.Checked, Regions: regions.Checked}
		go func() {
			snap, err := load(path, settings, opts)
			fyne.Do(func() {
				if err != nil {
					status.SetText("Error: " + err.Error())
					return
				}
				canvasImg.Image = snap.image
				canvasImg.Refresh()
				dump.SetText(snap.dump)
				status.SetText(snap.status)
				reasons.SetText(snap.reasons)
				w.SetTitle("layerview: " + path)
			})
		}()
	}
	reload := widget.NewButton("Reload", func() { pathEntry.OnSubmitted(pathEntry.Text) })
	labels.OnChanged = func(bool) { pathEntry.OnSubmitted(pathEntry.Text) }
	regions.OnChanged = func(bool) { pathEntry.OnSubmitted(pathEntry.Text) }

	topBar := container.NewBorder(nil, nil, nil, container.NewHBox(labels, regions, reload), pathEntry)
	bottomBar := container.NewBorder(nil, nil, nil, reasons, status)
	split := container.NewHSplit(container.NewScroll(canvasImg), container.NewScroll(dump))
	split.Offset = 0.65
	w.SetContent(container.NewBorder(topBar, bottomBar, nil, nil, split))

	if len(os.Args) > 1 {
		pathEntry.SetText(os.Args[1])
		pathEntry.OnSubmitted(os.Args[1])
	}

	w.Canvas().Focus(pathEntry)
	w.ShowAndRun()
}
