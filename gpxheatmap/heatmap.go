package gpxheatmap

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"strconv"
)

// DefaultOutput is the map document written when no path is given.
const DefaultOutput = "heatmap-map.html"

// MapData is everything a Renderer draws: one polyline per track, the
// pooled heat samples and the initial viewport.
type MapData struct {
	Tracks []Track
	Heat   []WeightedPoint
	Bounds BoundingBox
}

// Renderer turns MapData into a document.
type Renderer interface {
	Render(w io.Writer, data MapData) error
}

// TileLayer is a selectable base map.
type TileLayer struct {
	Name        string `mapstructure:"name" validate:"required"`
	URL         string `mapstructure:"url" validate:"required"`
	Attribution string `mapstructure:"attribution"`
	MaxZoom     int    `mapstructure:"max_zoom" validate:"gte=0"`
}

// GradientStop maps a heat intensity to a colour.
type GradientStop struct {
	Stop  float64 `mapstructure:"stop" validate:"gte=0,lte=1"`
	Color string  `mapstructure:"color" validate:"required"`
}

// HeatStyle configures the density layer.
type HeatStyle struct {
	Radius   int            `mapstructure:"radius" validate:"gt=0"`
	Blur     int            `mapstructure:"blur" validate:"gte=0"`
	Gradient []GradientStop `mapstructure:"gradient" validate:"dive"`
}

// TrackStyle configures the per-track polylines.
type TrackStyle struct {
	Color        string  `mapstructure:"color" validate:"required"`
	Weight       float64 `mapstructure:"weight" validate:"gt=0"`
	Opacity      float64 `mapstructure:"opacity" validate:"gte=0,lte=1"`
	SmoothFactor float64 `mapstructure:"smooth_factor" validate:"gte=0"`
}

// RenderOptions configures a LeafletRenderer.
type RenderOptions struct {
	Title string
	Tiles []TileLayer
	Heat  HeatStyle
	Track TrackStyle
}

// DefaultTileLayers returns the base maps offered when none are configured.
func DefaultTileLayers() []TileLayer {
	return []TileLayer{
		{
			Name:        "OpenStreetMap",
			URL:         "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
			Attribution: "&copy; OpenStreetMap contributors",
			MaxZoom:     19,
		},
		{
			Name:        "Stamen Toner",
			URL:         "https://tiles.stadiamaps.com/tiles/stamen_toner/{z}/{x}/{y}{r}.png",
			Attribution: "&copy; Stadia Maps &copy; Stamen Design &copy; OpenStreetMap contributors",
			MaxZoom:     20,
		},
		{
			Name:        "Stamen Terrain",
			URL:         "https://tiles.stadiamaps.com/tiles/stamen_terrain/{z}/{x}/{y}{r}.png",
			Attribution: "&copy; Stadia Maps &copy; Stamen Design &copy; OpenStreetMap contributors",
			MaxZoom:     18,
		},
	}
}

// DefaultGradient is the blue to red ramp of the heat layer.
func DefaultGradient() []GradientStop {
	return []GradientStop{
		{Stop: 0.05, Color: "blue"},
		{Stop: 0.4, Color: "lime"},
		{Stop: 0.7, Color: "yellow"},
		{Stop: 1, Color: "red"},
	}
}

// DefaultRenderOptions returns the page settings used for unset options.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		Title: "GPX Heatmap",
		Tiles: DefaultTileLayers(),
		Heat:  HeatStyle{Radius: 8, Blur: 10, Gradient: DefaultGradient()},
		Track: TrackStyle{Color: "red", Weight: 2, Opacity: 0.1, SmoothFactor: 4},
	}
}

// LeafletRenderer writes a single HTML page using Leaflet and leaflet.heat.
// Track and heat data are inlined so the page needs nothing but the CDN.
type LeafletRenderer struct {
	Options RenderOptions
}

// NewLeafletRenderer returns a renderer with unset options filled from the defaults.
func NewLeafletRenderer(opts RenderOptions) *LeafletRenderer {
	return &LeafletRenderer{Options: withDefaults(opts)}
}

// withDefaults fills the options a page cannot do without.
func withDefaults(opts RenderOptions) RenderOptions {
	def := DefaultRenderOptions()
	if opts.Title == "" {
		opts.Title = def.Title
	}
	if len(opts.Tiles) == 0 {
		opts.Tiles = def.Tiles
	}
	if len(opts.Heat.Gradient) == 0 {
		opts.Heat.Gradient = def.Heat.Gradient
	}
	if opts.Heat.Radius == 0 {
		opts.Heat.Radius = def.Heat.Radius
	}
	if opts.Track.Color == "" {
		opts.Track = def.Track
	}
	return opts
}

type tileView struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Attribution string `json:"attribution"`
	MaxZoom     int    `json:"maxZoom,omitempty"`
}

type trackView struct {
	Name   string       `json:"name"`
	Points [][2]float64 `json:"points"`
}

type heatView struct {
	Radius   int               `json:"radius"`
	Blur     int               `json:"blur"`
	Gradient map[string]string `json:"gradient"`
}

type trackStyleView struct {
	Color        string  `json:"color"`
	Weight       float64 `json:"weight"`
	Opacity      float64 `json:"opacity"`
	SmoothFactor float64 `json:"smoothFactor"`
}

type leafletView struct {
	Title      string
	Tiles      []tileView
	Tracks     []trackView
	Heat       [][3]float64
	HeatStyle  heatView
	TrackStyle trackStyleView
	Bounds     [2][2]float64
}

func (r *LeafletRenderer) view(data MapData) leafletView {
	o := withDefaults(r.Options)
	v := leafletView{
		Title:  o.Title,
		Tiles:  make([]tileView, 0, len(o.Tiles)),
		Tracks: make([]trackView, 0, len(data.Tracks)),
		Heat:   make([][3]float64, len(data.Heat)),
		HeatStyle: heatView{
			Radius:   o.Heat.Radius,
			Blur:     o.Heat.Blur,
			Gradient: make(map[string]string, len(o.Heat.Gradient)),
		},
		TrackStyle: trackStyleView{
			Color:        o.Track.Color,
			Weight:       o.Track.Weight,
			Opacity:      o.Track.Opacity,
			SmoothFactor: o.Track.SmoothFactor,
		},
		Bounds: [2][2]float64{
			{data.Bounds.South, data.Bounds.West},
			{data.Bounds.North, data.Bounds.East},
		},
	}
	for _, t := range o.Tiles {
		v.Tiles = append(v.Tiles, tileView{Name: t.Name, URL: t.URL, Attribution: t.Attribution, MaxZoom: t.MaxZoom})
	}
	for _, g := range o.Heat.Gradient {
		v.HeatStyle.Gradient[strconv.FormatFloat(g.Stop, 'f', -1, 64)] = g.Color
	}
	for _, t := range data.Tracks {
		tv := trackView{Name: t.Name, Points: make([][2]float64, len(t.Points))}
		for i, p := range t.Points {
			tv.Points[i] = [2]float64{p.Lat, p.Lon}
		}
		v.Tracks = append(v.Tracks, tv)
	}
	for i, p := range data.Heat {
		v.Heat[i] = [3]float64{p.Lat, p.Lon, p.Weight}
	}
	return v
}

// Render writes the page to w.
func (r *LeafletRenderer) Render(w io.Writer, data MapData) error {
	if len(data.Heat) == 0 {
		return ErrNoPoints
	}
	if err := leafletPage.Execute(w, r.view(data)); err != nil {
		return fmt.Errorf("render map: %w", err)
	}
	return nil
}

// WriteMap renders data into the file at outputPath.
func WriteMap(outputPath string, r Renderer, data MapData) error {
	if len(data.Heat) == 0 {
		return ErrNoPoints
	}
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("could not create map file: %w", err)
	}
	if err := r.Render(file, data); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("could not write map file: %w", err)
	}
	return nil
}

var leafletPage = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>{{.Title}}</title>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css" />
    <script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
    <script src="https://unpkg.com/leaflet.heat@0.2.0/dist/leaflet-heat.js"></script>
    <style>
        html, body, #map { height: 100%; margin: 0; padding: 0; }
    </style>
</head>
<body>
    <div id="map"></div>
    <script>
        const tiles = {{.Tiles}};
        const tracks = {{.Tracks}};
        const heat = {{.Heat}};
        const heatStyle = {{.HeatStyle}};
        const trackStyle = {{.TrackStyle}};
        const bounds = {{.Bounds}};

        const map = L.map('map');

        const baseLayers = {};
        tiles.forEach(function (t, i) {
            const layer = L.tileLayer(t.url, {attribution: t.attribution, maxZoom: t.maxZoom || 18});
            if (i === 0) {
                layer.addTo(map);
            }
            baseLayers[t.name] = layer;
        });

        const trackLayer = L.featureGroup();
        tracks.forEach(function (t) {
            L.polyline(t.points, trackStyle).bindTooltip(t.name).addTo(trackLayer);
        });
        trackLayer.addTo(map);

        const heatLayer = L.layerGroup([L.heatLayer(heat, heatStyle)]).addTo(map);

        L.control.layers(baseLayers, {'Tracks': trackLayer, 'Heat Map': heatLayer}).addTo(map);
        map.fitBounds(bounds);
    </script>
</body>
</html>
`))
