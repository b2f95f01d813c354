// ABOUTME: Level icon renderer
// ABOUTME: Draws a rising row of threshold-coloured bars for a volume level
package icon

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
)

const (
	// Defaults match a 32x32 tray icon with seven bars
	DefaultWidth  = 32
	DefaultHeight = 32
	DefaultBars   = 7

	barSpacing   = 1
	minBarHeight = 4

	lowShare = 0.5
	midShare = 0.8
)

// Tier classifies a bar by its position in the row
type Tier int

const (
	TierLow Tier = iota
	TierMid
	TierHigh
)

// String returns the tier name
func (t Tier) String() string {
	switch t {
	case TierLow:
		return "low"
	case TierMid:
		return "mid"
	case TierHigh:
		return "high"
	default:
		return "unknown"
	}
}

// Layout fixes the raster size and bar count
type Layout struct {
	Width  int
	Height int
	Bars   int
}

// DefaultLayout returns the 32x32, 7 bar layout
func DefaultLayout() Layout {
	return Layout{Width: DefaultWidth, Height: DefaultHeight, Bars: DefaultBars}
}

// Validate reports whether every bar gets at least one pixel of width and
// the height leaves room for the minimum bar
func (l Layout) Validate() error {
	var errs []error
	if l.Bars < 1 {
		errs = append(errs, fmt.Errorf("icon: bars %d must be at least 1", l.Bars))
	} else if l.Width < 2*l.Bars+1 {
		errs = append(errs, fmt.Errorf("icon: width %d too small for %d bars (need %d)", l.Width, l.Bars, 2*l.Bars+1))
	}
	if l.Height < 2*minBarHeight {
		errs = append(errs, fmt.Errorf("icon: height %d must be at least %d", l.Height, 2*minBarHeight))
	}
	return errors.Join(errs...)
}

// BarWidth is the width of each bar with 1px spacing around every bar
func (l Layout) BarWidth() int {
	return (l.Width - (l.Bars + 1)) / l.Bars
}

// BarRect returns the bottom-aligned rectangle of bar i. Heights grow
// linearly with the index.
func (l Layout) BarRect(i int) image.Rectangle {
	w := l.BarWidth()
	x := barSpacing + i*(w+barSpacing)
	h := minBarHeight + int(float64(l.Height-2*minBarHeight)*(float64(i+1)/float64(l.Bars)))
	y := l.Height - h
	return image.Rect(x, y, x+w, l.Height)
}

// Palette holds the bar colours
type Palette struct {
	Low   color.RGBA
	Mid   color.RGBA
	High  color.RGBA
	Unlit color.RGBA
}

// DefaultPalette is green / yellow / red over a dim grey
func DefaultPalette() Palette {
	return Palette{
		Low:   color.RGBA{R: 0, G: 255, B: 0, A: 255},
		Mid:   color.RGBA{R: 255, G: 255, B: 0, A: 255},
		High:  color.RGBA{R: 255, G: 0, B: 0, A: 255},
		Unlit: color.RGBA{R: 91, G: 91, B: 91, A: 255},
	}
}

// Color returns the lit colour of a tier
func (p Palette) Color(t Tier) color.RGBA {
	switch t {
	case TierMid:
		return p.Mid
	case TierHigh:
		return p.High
	default:
		return p.Low
	}
}

// LitBars returns ceil(volume/100 * bars) clamped to [0, bars].
// Any positive volume lights at least one bar.
func LitBars(volume float64, bars int) int {
	if math.IsNaN(volume) || volume <= 0 || bars <= 0 {
		return 0
	}
	lit := int(math.Ceil(volume / 100 * float64(bars)))
	if lit > bars {
		return bars
	}
	return lit
}

// BarTier classifies bar i: first half low, up to 80% mid, the rest high
func BarTier(i, bars int) Tier {
	switch {
	case float64(i) < float64(bars)*lowShare:
		return TierLow
	case float64(i) < float64(bars)*midShare:
		return TierMid
	default:
		return TierHigh
	}
}

// Renderer draws level icons for a fixed layout and palette
type Renderer struct {
	Layout  Layout
	Palette Palette
}

// NewRenderer creates a renderer with the default palette
func NewRenderer(layout Layout) (*Renderer, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	return &Renderer{Layout: layout, Palette: DefaultPalette()}, nil
}

// Render draws the icon for volume. The same volume always yields the same pixels.
func (r *Renderer) Render(volume float64) *image.RGBA {
	l := r.Layout
	img := image.NewRGBA(image.Rect(0, 0, l.Width, l.Height))
	lit := LitBars(volume, l.Bars)

	for i := 0; i < l.Bars; i++ {
		c := r.Palette.Unlit
		if i < lit {
			c = r.Palette.Color(BarTier(i, l.Bars))
		}
		draw.Draw(img, l.BarRect(i), image.NewUniform(c), image.Point{}, draw.Src)
	}

	return img
}

// Render draws the icon for volume with the default palette. The layout
// must be valid.
func Render(volume float64, layout Layout) *image.RGBA {
	r := Renderer{Layout: layout, Palette: DefaultPalette()}
	return r.Render(volume)
}
