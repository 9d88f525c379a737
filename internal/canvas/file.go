package canvas

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-pdf/fpdf"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/theirongolddev/fireplot/internal/chart"
)

// Format is the file type a File canvas writes.
type Format string

// Supported output formats.
const (
	FormatPNG  Format = "png"
	FormatPDF  Format = "pdf"
	FormatJSON Format = "json"
)

// FormatFromPath infers the output format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG, nil
	case ".pdf":
		return FormatPDF, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported output extension %q (want .png, .pdf or .json)", filepath.Ext(path))
}

// Default image size in pixels.
const (
	DefaultImageWidth  = 1200
	DefaultImageHeight = 600
)

// File writes each chart to a file. Destroying the instance removes the file.
type File struct {
	visibility

	id     string
	path   string
	format Format
	width  int
	height int

	mu      sync.Mutex
	current *fileInstance
}

// NewFile returns a canvas that writes to path. width and height are pixel
// sizes for image output; zero selects the defaults.
func NewFile(id, path string, width, height int) (*File, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	if width <= 0 {
		width = DefaultImageWidth
	}
	if height <= 0 {
		height = DefaultImageHeight
	}
	return &File{id: id, path: path, format: format, width: width, height: height}, nil
}

// ID returns the canvas identifier.
func (f *File) ID() string { return f.id }

// Path returns the output file path.
func (f *File) Path() string { return f.path }

// Draw renders cfg and writes it to the canvas path.
func (f *File) Draw(cfg chart.Config) (Instance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current != nil {
		return nil, ErrCanvasInUse
	}

	var data []byte
	var err error
	switch f.format {
	case FormatPNG:
		data, err = RenderPNG(cfg, f.width, f.height)
	case FormatPDF:
		data, err = RenderPDF(cfg, f.width, f.height)
	case FormatJSON:
		data, err = cfg.JSON()
	default:
		err = fmt.Errorf("unknown format %q", f.format)
	}
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("creating output dir: %w", err)
		}
	}
	if err := os.WriteFile(f.path, data, 0o644); err != nil { //nolint:gosec // chart output is meant to be shared
		return nil, fmt.Errorf("writing %s: %w", f.path, err)
	}

	inst := &fileInstance{canvas: f}
	f.current = inst
	return inst, nil
}

type fileInstance struct {
	once
	canvas *File
}

func (i *fileInstance) Destroy() error {
	_, err := i.do(func() error {
		i.canvas.mu.Lock()
		defer i.canvas.mu.Unlock()
		if i.canvas.current == i {
			i.canvas.current = nil
		}
		if err := os.Remove(i.canvas.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", i.canvas.path, err)
		}
		return nil
	})
	return err
}

var cssColors = map[string]string{
	"blue":   "0000FF",
	"green":  "008000",
	"orange": "FFA500",
	"red":    "FF0000",
	"purple": "800080",
}

func strokeColor(name string) drawing.Color {
	if hex, ok := cssColors[name]; ok {
		return drawing.ColorFromHex(hex)
	}
	if strings.HasPrefix(name, "#") {
		return drawing.ColorFromHex(strings.TrimPrefix(name, "#"))
	}
	return drawing.ColorFromHex("3AA99F")
}

// RenderPNG draws cfg as a PNG image.
func RenderPNG(cfg chart.Config, width, height int) ([]byte, error) {
	if len(cfg.Data.Datasets) == 0 {
		return nil, fmt.Errorf("chart has no datasets")
	}
	// Series may be empty (take-home length is not checked); those draw
	// as an empty 0..1 axis.
	lo, hi, ok := cfg.Extent()
	if !ok {
		lo, hi = 0, 1
	}
	lo = math.Min(lo, 0)
	if hi <= lo {
		hi = lo + 1
	}
	hi += (hi - lo) * 0.05

	labels := cfg.Data.Labels
	series := make([]gochart.Series, 0, len(cfg.Data.Datasets))
	for _, ds := range cfg.Data.Datasets {
		if len(ds.Data) == 0 {
			continue
		}
		xs := make([]float64, len(ds.Data))
		for i := range ds.Data {
			xs[i] = float64(i)
		}
		ys := ds.Data
		// go-chart needs two points to draw a line.
		if len(ys) == 1 {
			xs = []float64{0, 1}
			ys = []float64{ys[0], ys[0]}
		}
		series = append(series, gochart.ContinuousSeries{
			Name:    ds.Label,
			XValues: xs,
			YValues: ys,
			Style: gochart.Style{
				StrokeColor: strokeColor(ds.BorderColor),
				StrokeWidth: 2,
			},
		})
	}

	// go-chart refuses to render without a visible series, so an all-empty
	// chart gets a transparent baseline spanning the labels.
	if len(series) == 0 {
		series = append(series, gochart.ContinuousSeries{
			Name:    cfg.Data.Datasets[0].Label,
			XValues: []float64{0, math.Max(float64(len(labels)-1), 1)},
			YValues: []float64{0, 0},
			Style:   gochart.Style{StrokeColor: drawing.ColorTransparent, StrokeWidth: 1},
		})
	}

	graph := gochart.Chart{
		Width:      width,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		XAxis: gochart.XAxis{
			Name: cfg.Options.Scales.X.Title.Text,
			ValueFormatter: func(v interface{}) string {
				f, ok := v.(float64)
				if !ok {
					return ""
				}
				i := int(math.Round(f))
				if math.Abs(f-float64(i)) > 1e-9 || i < 0 || i >= len(labels) {
					return ""
				}
				return labels[i]
			},
		},
		YAxis: gochart.YAxis{
			Name:  cfg.Options.Scales.Y.Title.Text,
			Range: &gochart.ContinuousRange{Min: lo, Max: hi},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return cfg.FormatTick(f)
				}
				return ""
			},
		},
		Series: series,
	}
	if cfg.Options.Plugins.Legend.Display {
		graph.Elements = []gochart.Renderable{gochart.Legend(&graph)}
	}

	var buf bytes.Buffer
	if err := graph.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("rendering png: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderPDF embeds the PNG rendering of cfg in a single landscape page.
func RenderPDF(cfg chart.Config, width, height int) ([]byte, error) {
	img, err := RenderPNG(cfg, width, height)
	if err != nil {
		return nil, err
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(pdfTitle(cfg), true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, pdfTitle(cfg), "", 1, "L", false, 0, "")

	opt := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("chart", opt, bytes.NewReader(img))
	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	pdf.ImageOptions("chart", left, pdf.GetY()+2, pageW-left-right, 0, false, opt, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func pdfTitle(cfg chart.Config) string {
	names := make([]string, 0, len(cfg.Data.Datasets))
	for _, ds := range cfg.Data.Datasets {
		names = append(names, ds.Label)
	}
	return strings.Join(names, " / ")
}
