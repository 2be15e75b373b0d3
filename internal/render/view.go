// Package render turns a View State into a map view: a viewport, one marker per mappable
// facility and the popup content for each marker. Render is a pure function; the HTML and
// GeoJSON encoders only serialise its output.
package render

import (
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"

	"resourcefinda/internal/models"
	"resourcefinda/internal/state"
)

const (
	// OverviewLimit is the number of characters of an overview shown in a popup.
	OverviewLimit = 100
	// Ellipsis marks a truncated overview.
	Ellipsis = "..."

	DefaultTileURL     = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"
	DefaultAttribution = `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`
	DefaultMaxZoom     = 13

	populatedZoom = 3
	emptyZoom     = 1
)

type Options struct {
	TileURL     string
	Attribution string
	MaxZoom     int
}

func (o Options) withDefaults() Options {
	if o.TileURL == "" {
		o.TileURL = DefaultTileURL
	}
	if o.Attribution == "" {
		o.Attribution = DefaultAttribution
	}
	if o.MaxZoom == 0 {
		o.MaxZoom = DefaultMaxZoom
	}
	return o
}

type Viewport struct {
	Center models.Coordinates `json:"center"`
	Zoom   int                `json:"zoom"`
}

type Popup struct {
	Title    string   `json:"title"`
	Overview string   `json:"overview"`
	Address  string   `json:"address"`
	Tags     []string `json:"tags"`
}

type Marker struct {
	ID       int                `json:"id"`
	Position models.Coordinates `json:"position"`
	Popup    Popup              `json:"popup"`
}

type View struct {
	Viewport    Viewport `json:"viewport"`
	MaxZoom     int      `json:"max_zoom"`
	Markers     []Marker `json:"markers"`
	TileURL     string   `json:"tile_url"`
	Attribution string   `json:"attribution"`
	Query       string   `json:"query"`
	Total       int      `json:"total"`
	// Skipped counts records without coordinates. It is diagnostic only.
	Skipped int `json:"skipped"`
}

// Render computes the view for vs.
func Render(vs state.ViewState, opts Options) View {
	opts = opts.withDefaults()
	markers := Markers(vs.Records)
	return View{
		Viewport:    ComputeViewport(vs.Records),
		MaxZoom:     opts.MaxZoom,
		Markers:     markers,
		TileURL:     opts.TileURL,
		Attribution: opts.Attribution,
		Query:       vs.Query,
		Total:       len(vs.Records),
		Skipped:     len(vs.Records) - len(markers),
	}
}

// ComputeViewport centres the map on the first mappable record in input order. With no
// mappable record the map shows the whole world from the origin.
func ComputeViewport(records []models.Facility) Viewport {
	first, ok := lo.Find(records, models.Facility.Mappable)
	if !ok {
		return Viewport{Center: models.Coordinates{}, Zoom: emptyZoom}
	}
	center, _ := first.Position()
	return Viewport{Center: center, Zoom: populatedZoom}
}

// Markers returns one marker per mappable record, in input order.
func Markers(records []models.Facility) []Marker {
	return lo.FilterMap(records, func(f models.Facility, _ int) (Marker, bool) {
		pos, ok := f.Position()
		if !ok {
			return Marker{}, false
		}
		return Marker{ID: f.ID, Position: pos, Popup: NewPopup(f)}, true
	})
}

func NewPopup(f models.Facility) Popup {
	return Popup{
		Title:    Title(f.Name, f.Abbreviation),
		Overview: TruncateOverview(f.Overview),
		Address:  f.Address,
		Tags:     SplitSectors(f.Sectors),
	}
}

// Title appends the abbreviation in parentheses when there is one.
func Title(name, abbreviation string) string {
	abbreviation = strings.TrimSpace(abbreviation)
	if abbreviation == "" {
		return name
	}
	return name + " (" + abbreviation + ")"
}

// TruncateOverview keeps the first OverviewLimit characters of s and appends Ellipsis when
// anything was cut. Characters are runes, so multi-byte text is never split.
func TruncateOverview(s string) string {
	if utf8.RuneCountInString(s) <= OverviewLimit {
		return s
	}
	return string([]rune(s)[:OverviewLimit]) + Ellipsis
}

// SplitSectors splits a ;-delimited sector list into ordered, unique, non-empty labels.
func SplitSectors(s string) []string {
	labels := lo.Map(strings.Split(s, ";"), func(l string, _ int) string {
		return strings.TrimSpace(l)
	})
	return lo.Uniq(lo.Compact(labels))
}
