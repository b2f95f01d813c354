// ABOUTME: Level icon package
// ABOUTME: Documents bar geometry and colour thresholds
// Package icon renders the tray volume icon.
//
// The icon is a small RGBA raster holding a fixed number of vertical bars,
// bottom-aligned, each taller than the one before it. The number of lit bars
// is ceil(volume/100 * bars), so any non-zero level shows at least one bar.
// Lit bars are coloured by position: the first half green, up to 80% yellow,
// the remainder red. Unlit bars are dim grey.
//
// Example:
//
//	r, _ := icon.NewRenderer(icon.DefaultLayout())
//	img := r.Render(42)
//	data, _ := icon.EncodeForOS(img, runtime.GOOS)
package icon
