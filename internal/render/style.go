package render

// ResolvedStyle holds concrete CSS values resolved from the branding
// enumerations. Layout functions consume these instead of re-reading the
// raw config.
type ResolvedStyle struct {
	FontSize      string // e.g. "14px"
	LineHeight    string // e.g. "1.4"
	LetterSpacing string // e.g. "0px"
	Spacing       string // e.g. "10px", block gap used by multi-column layouts
	CornerRadius  string // e.g. "8px", shared with CTA buttons
	IconStyle     string // "outline" or "solid"
	Accent        string // hex color
	LogoSize      int    // pixels
}

// DefaultAccent is the accent color applied when branding carries none.
const DefaultAccent = "#2B68C1"

// DefaultLogoSize is the logo edge length in pixels applied when branding
// carries none.
const DefaultLogoSize = 80

var fontSizes = map[string]string{
	"small":  "12px",
	"medium": "14px",
	"large":  "16px",
}

var lineHeights = map[string]string{
	"tight":   "1.2",
	"normal":  "1.4",
	"relaxed": "1.6",
}

var letterSpacings = map[string]string{
	"tight":  "-0.5px",
	"normal": "0px",
	"loose":  "1px",
}

var spacings = map[string]string{
	"compact":  "6px",
	"normal":   "10px",
	"spacious": "14px",
}

var cornerRadii = map[string]string{
	"none":   "0px",
	"small":  "4px",
	"medium": "8px",
	"large":  "20px",
}

// ResolveStyle maps the branding enumerations to concrete CSS values.
// Unknown or empty values fall back to the documented defaults; this never
// fails.
func ResolveStyle(b Branding) ResolvedStyle {
	s := ResolvedStyle{
		FontSize:      lookup(fontSizes, b.FontSize, "14px"),
		LineHeight:    lookup(lineHeights, b.LineHeight, "1.4"),
		LetterSpacing: lookup(letterSpacings, b.LetterSpacing, "0px"),
		Spacing:       lookup(spacings, b.Spacing, "10px"),
		CornerRadius:  lookup(cornerRadii, b.CornerRadius, "8px"),
		IconStyle:     "outline",
		Accent:        DefaultAccent,
		LogoSize:      DefaultLogoSize,
	}
	if b.IconStyle == "solid" {
		s.IconStyle = "solid"
	}
	if b.Accent != "" {
		// Accent lands inside style attributes; escape it like any other
		// user-supplied value.
		s.Accent = escape(b.Accent)
	}
	if b.LogoSize > 0 {
		s.LogoSize = b.LogoSize
	}
	return s
}

// CornerRadiusValue resolves a per-button corner radius token against the
// shared map, defaulting to medium.
func CornerRadiusValue(token string) string {
	return lookup(cornerRadii, token, "8px")
}

func lookup(m map[string]string, key, fallback string) string {
	if v, ok := m[key]; ok {
		return v
	}
	return fallback
}
