package theme

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/clinicdesk/clinicweek/internal/calendar"
)

// Palette holds precomputed colors derived from a Theme.
type Palette struct {
	Bg          lipgloss.Color
	BgHighlight lipgloss.Color
	BgSelection lipgloss.Color
	Fg          lipgloss.Color
	FgMuted     lipgloss.Color
	Accent      lipgloss.Color
	Today       lipgloss.Color
	Error       lipgloss.Color

	TextOnAccent lipgloss.Color

	status   map[calendar.Status]BlockColors
	blocking BlockColors
}

// BlockColors are the fill, alternate fill and text colors of a block.
type BlockColors struct {
	Bg    lipgloss.Color
	BgAlt lipgloss.Color // adjacent blocks in the same column
	Fg    lipgloss.Color
}

// NewPalette derives a Palette from the provided Theme.
func NewPalette(t *Theme) *Palette {
	if t == nil {
		t, _ = Load(DefaultName)
	}

	isLight := isLightTheme(t.Bg)

	p := &Palette{
		Bg:           lipgloss.Color(t.Bg),
		BgHighlight:  lipgloss.Color(t.BgHighlight),
		BgSelection:  lipgloss.Color(t.BgSelection),
		Fg:           lipgloss.Color(t.Fg),
		FgMuted:      lipgloss.Color(t.FgMuted),
		Accent:       lipgloss.Color(t.Accent),
		Today:        lipgloss.Color(t.Today),
		Error:        lipgloss.Color(t.Canceled),
		TextOnAccent: lipgloss.Color(chooseTextColor(t.Accent, t.Bg, t.Fg)),
		status:       make(map[calendar.Status]BlockColors),
	}

	p.status[calendar.StatusActive] = blockColors(blockBg(t.Active, t.Bg, isLight), t, isLight)
	p.status[calendar.StatusPassed] = blockColors(blockMutedBg(t.Passed, t.Bg, isLight), t, isLight)
	p.status[calendar.StatusCanceled] = blockColors(blockMutedBg(t.Canceled, t.Bg, isLight), t, isLight)
	p.status[calendar.StatusEvent] = blockColors(blockBg(t.Event, t.Bg, isLight), t, isLight)
	p.blocking = blockColors(blockBg(t.Blocking, t.Bg, isLight), t, isLight)

	return p
}

func blockColors(bgHex string, t *Theme, isLight bool) BlockColors {
	return BlockColors{
		Bg:    lipgloss.Color(bgHex),
		BgAlt: lipgloss.Color(alternateShade(bgHex, isLight)),
		Fg:    lipgloss.Color(chooseTextColor(bgHex, t.Fg, t.Bg)),
	}
}

// Block returns the colors for a block. Events carrying their own color use
// it instead of the theme's event color; the default event color counts as
// none.
func (p *Palette) Block(b calendar.Block) BlockColors {
	if b.Status != calendar.StatusEvent || b.Item == nil {
		return p.status[b.Status]
	}
	if validHex(b.Item.Color) && !strings.EqualFold(b.Item.Color, calendar.DefaultEventColor) {
		isLight := isLightTheme(string(p.Bg))
		bg := blockBg(b.Item.Color, string(p.Bg), isLight)
		return BlockColors{
			Bg:    lipgloss.Color(bg),
			BgAlt: lipgloss.Color(alternateShade(bg, isLight)),
			Fg:    lipgloss.Color(chooseTextColor(bg, string(p.Fg), string(p.Bg))),
		}
	}
	if b.Item.BlocksAppointments {
		return p.blocking
	}
	return p.status[b.Status]
}

func validHex(hex string) bool {
	if len(hex) != 7 || hex[0] != '#' {
		return false
	}
	for i := 1; i < 7; i++ {
		c := hex[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return true
}

func isLightTheme(bg string) bool {
	return relativeLuminance(bg) > 0.55
}

func blockBg(accent, bg string, isLight bool) string {
	if isLight {
		return blendColors(accent, bg, 0.75)
	}
	return darkenColor(accent)
}

func blockMutedBg(accent, bg string, isLight bool) string {
	if isLight {
		return blendColors(accent, bg, 0.88)
	}
	return muteColor(accent)
}

// darkenColor creates a darker version of a hex color for backgrounds,
// with a minimum floor so blocks stay visible on dark themes.
func darkenColor(hex string) string {
	return scaleColor(hex, 0.50, 40)
}

// muteColor creates a more heavily muted version of a hex color for passed
// and canceled appointments.
func muteColor(hex string) string {
	return scaleColor(hex, 0.30, 30)
}

func scaleColor(hex string, factor float64, floor int) string {
	if len(hex) != 7 || hex[0] != '#' {
		return hex
	}

	var r, g, b int
	parseHex(hex[1:3], &r)
	parseHex(hex[3:5], &g)
	parseHex(hex[5:7], &b)

	r = max(int(float64(r)*factor), floor)
	g = max(int(float64(g)*factor), floor)
	b = max(int(float64(b)*factor), floor)

	return formatHexColor(r, g, b)
}

// alternateShade creates a subtle alternate shade for adjacent blocks.
func alternateShade(hex string, isLight bool) string {
	if len(hex) != 7 || hex[0] != '#' {
		return hex
	}

	if isLight {
		return blendColors(hex, "#000000", 0.10)
	}
	return blendColors(hex, "#ffffff", 0.30)
}

// parseHex parses a 2-character hex string into an integer.
func parseHex(s string, v *int) {
	var val int
	for i := 0; i < len(s); i++ {
		val *= 16
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			val += int(c - '0')
		case c >= 'a' && c <= 'f':
			val += int(c - 'a' + 10)
		case c >= 'A' && c <= 'F':
			val += int(c - 'A' + 10)
		}
	}
	*v = val
}

// formatHexColor formats RGB values as a hex color string.
func formatHexColor(r, g, b int) string {
	const hex = "0123456789abcdef"
	result := make([]byte, 7)
	result[0] = '#'
	result[1] = hex[r>>4]
	result[2] = hex[r&0xf]
	result[3] = hex[g>>4]
	result[4] = hex[g&0xf]
	result[5] = hex[b>>4]
	result[6] = hex[b&0xf]
	return string(result)
}

func chooseTextColor(bg, lightText, darkText string) string {
	lightContrast := contrastRatio(bg, lightText)
	darkContrast := contrastRatio(bg, darkText)
	if lightContrast >= darkContrast {
		return lightText
	}
	return darkText
}

func contrastRatio(a, b string) float64 {
	l1 := relativeLuminance(a)
	l2 := relativeLuminance(b)
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05)
}

func relativeLuminance(hex string) float64 {
	if len(hex) != 7 || hex[0] != '#' {
		return 0
	}
	var r, g, b int
	parseHex(hex[1:3], &r)
	parseHex(hex[3:5], &g)
	parseHex(hex[5:7], &b)
	return 0.2126*srgbToLinear(r) + 0.7152*srgbToLinear(g) + 0.0722*srgbToLinear(b)
}

func srgbToLinear(c int) float64 {
	v := float64(c) / 255.0
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

func blendColors(a, b string, ratio float64) string {
	if len(a) != 7 || a[0] != '#' || len(b) != 7 || b[0] != '#' {
		return a
	}
	ratio = min(max(ratio, 0), 1)

	var ar, ag, ab int
	var br, bg, bb int
	parseHex(a[1:3], &ar)
	parseHex(a[3:5], &ag)
	parseHex(a[5:7], &ab)
	parseHex(b[1:3], &br)
	parseHex(b[3:5], &bg)
	parseHex(b[5:7], &bb)

	r := int(float64(ar)*(1-ratio) + float64(br)*ratio)
	g := int(float64(ag)*(1-ratio) + float64(bg)*ratio)
	bv := int(float64(ab)*(1-ratio) + float64(bb)*ratio)

	return formatHexColor(r, g, bv)
}
