package render

import (
	"fmt"
	"strings"
)

// MaxCTAButtons caps how many call-to-action buttons a signature renders.
const MaxCTAButtons = 3

// Button is a normalized, render-ready call-to-action entry.
type Button struct {
	Label string // escaped
	URL   string // escaped destination
	Href  string // escaped tracking redirect or destination
	Style string // inline CSS recipe
}

// Button style variants. Each template picks the variant matching its look;
// the recipes are fixed.
const (
	ButtonDefault   = "default"
	ButtonMinimal   = "minimal"
	ButtonCorporate = "corporate"
	ButtonBadge     = "badge"
	ButtonText      = "text"
	ButtonExecutive = "executive"
)

// buttonStyle returns the inline CSS recipe for a variant, parameterized by
// accent color and resolved corner radius. Unknown variants get the default
// recipe.
func buttonStyle(variant, accent, radius string) string {
	switch variant {
	case ButtonMinimal:
		return fmt.Sprintf("background: %s; color: #ffffff; padding: 10px 18px; text-decoration: none; border-radius: %s; font-size: 13px; font-weight: 600; display: inline-block; box-shadow: 0 1px 3px rgba(0,0,0,0.12);", accent, radius)
	case ButtonCorporate:
		return fmt.Sprintf("background: %s; color: #ffffff; padding: 10px 20px; text-decoration: none; border-radius: %s; font-size: 13px; font-weight: 600; display: inline-block;", accent, radius)
	case ButtonBadge:
		return fmt.Sprintf("background: %s; color: #ffffff; padding: 10px 18px; text-decoration: none; border-radius: %s; font-size: 13px; font-weight: 600; display: inline-block; box-shadow: 0 2px 4px rgba(0,0,0,0.1);", accent, radius)
	case ButtonText:
		return fmt.Sprintf("color: %s; text-decoration: underline; font-weight: 600;", accent)
	case ButtonExecutive:
		return fmt.Sprintf("background: %s; color: #ffffff; padding: 12px 24px; text-decoration: none; border-radius: %s; font-size: 14px; font-weight: 600; display: inline-block; box-shadow: 0 3px 6px rgba(0,0,0,0.15); font-family: Arial, sans-serif;", accent, radius)
	default:
		return fmt.Sprintf("background: %s; color: #ffffff; padding: 8px 16px; text-decoration: none; border-radius: %s; font-size: 12px; font-weight: 600; display: inline-block;", accent, radius)
	}
}

// renderable reports whether a CTA entry has enough content to become a
// button. Half-filled entries (URL without a label, or the reverse) are
// skipped everywhere: rendering, and tracking-slot selection.
func renderable(e CTAButton) bool {
	return strings.TrimSpace(e.Label) != "" && strings.TrimSpace(e.URL) != ""
}

// FirstCTADestination returns the destination URL of the first entry that
// renders as a button. The custom tracking slot must target this same
// entry; selecting by raw index would let the redirect substituted into
// the first rendered button carry a skipped entry's destination.
func FirstCTADestination(cta CTAField) (string, bool) {
	for _, e := range cta.Entries {
		if renderable(e) {
			return strings.TrimSpace(e.URL), true
		}
	}
	return "", false
}

// ComposeCTA normalizes the CTA field into at most MaxCTAButtons render-ready
// buttons, in index order, with the given style variant. Entries missing a
// label or URL are dropped. The first button's href is substituted with the
// "custom" tracking redirect when one is assigned.
func ComposeCTA(cta CTAField, style ResolvedStyle, variant string, tracking map[string]string) []Button {
	var buttons []Button
	for _, e := range cta.Entries {
		if !renderable(e) {
			continue
		}
		radius := CornerRadiusValue(e.CornerRadius)
		href := e.URL
		if len(buttons) == 0 {
			href = trackedHref(tracking, CategoryCustom, e.URL)
		}
		buttons = append(buttons, Button{
			Label: escape(e.Label),
			URL:   escape(e.URL),
			Href:  escape(href),
			Style: buttonStyle(variant, style.Accent, radius),
		})
		if len(buttons) == MaxCTAButtons {
			break
		}
	}
	return buttons
}

// RenderButtons concatenates all buttons with a small fixed gap.
func RenderButtons(buttons []Button) string {
	if len(buttons) == 0 {
		return ""
	}
	var b strings.Builder
	for i, btn := range buttons {
		if i > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, `<a href="%s" style="%s margin-right: 10px;">%s</a>`, btn.Href, btn.Style, btn.Label)
	}
	return b.String()
}

// RenderFirstButton renders only the first button. Templates designed around
// a single prominent call to action use this and ignore the rest.
func RenderFirstButton(buttons []Button) string {
	if len(buttons) == 0 {
		return ""
	}
	btn := buttons[0]
	return fmt.Sprintf(`<a href="%s" style="%s">%s</a>`, btn.Href, btn.Style, btn.Label)
}
