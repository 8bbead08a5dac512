package render

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultTemplateKey is the fallback layout used when an unknown template
// key is requested.
const DefaultTemplateKey = "minimal-line"

// Fragments carries the prepared, already-escaped pieces every layout
// function consumes. Sub-fragments (contact, social) are computed once per
// render and shared across whichever layout runs.
type Fragments struct {
	Name          string // escaped, never empty markup-wise but may be ""
	Pronouns      string // escaped
	Title         string // escaped
	CompanyName   string // escaped
	CompanySlogan string // escaped, newlines converted to <br>
	Disclaimer    string // escaped, newlines converted to <br>
	Logo          string // complete <img> tag or ""
	LogoURL       string // escaped source URL for layouts with custom logo markup
	Contact       string // contact block fragment
	Social        string // social links fragment

	style    ResolvedStyle
	contact  Contact
	cta      CTAField
	tracking map[string]string
}

// CTA renders all composed buttons using the given style variant.
func (f *Fragments) CTA(variant string) string {
	return RenderButtons(ComposeCTA(f.cta, f.style, variant, f.tracking))
}

// CTAFirst renders only the first composed button using the given style
// variant. Layouts built around a single prominent button use this.
func (f *Fragments) CTAFirst(variant string) string {
	return RenderFirstButton(ComposeCTA(f.cta, f.style, variant, f.tracking))
}

// A layoutFunc turns resolved style and prepared fragments into a complete
// signature HTML snippet. Layouts only use inline styles and table/div
// constructs that survive restrictive email clients.
type layoutFunc func(s ResolvedStyle, f *Fragments) string

// templates is the registry of selectable layouts, built once at package
// load. The catalog seed must stay in sync with these keys; see
// catalog.ValidateRegistry.
var templates = map[string]layoutFunc{
	"minimal-line":           renderMinimalLine,
	"corporate-block":        renderCorporateBlock,
	"badge":                  renderBadge,
	"simple-text":            renderSimpleText,
	"professional-headshot":  renderProfessionalHeadshot,
	"executive":              renderExecutive,
	"professional-left-logo": renderProfessionalLeftLogo,
}

// RegisteredTemplates returns all registry keys in sorted order.
func RegisteredTemplates() []string {
	keys := make([]string, 0, len(templates))
	for k := range templates {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsRegistered reports whether a template key has a layout function.
func IsRegistered(key string) bool {
	_, ok := templates[key]
	return ok
}

// nameLine renders the bold name with optional pronouns in a muted span.
func nameLine(f *Fragments, nameSize, pronounSize string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<div style="font-weight: 700; font-size: %s; color: #1f2937;">%s`, nameSize, f.Name)
	if f.Pronouns != "" {
		fmt.Fprintf(&b, ` <span style="font-weight: 400; color: #6b7280; font-size: %s;">(%s)</span>`, pronounSize, f.Pronouns)
	}
	b.WriteString(`</div>`)
	return b.String()
}

// renderMinimalLine is the default layout: a left accent bar with stacked
// content.
func renderMinimalLine(s ResolvedStyle, f *Fragments) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<table cellpadding="0" cellspacing="0" style="font-family: Arial, sans-serif; font-size: %s; line-height: %s; letter-spacing: %s; border-collapse: collapse; max-width: 400px;"><tr><td style="border-left: 3px solid %s; padding-left: 15px; vertical-align: top;">`,
		s.FontSize, s.LineHeight, s.LetterSpacing, s.Accent)

	if f.Logo != "" {
		fmt.Fprintf(&b, `<div style="margin-bottom: 12px;">%s</div>`, f.Logo)
	}
	b.WriteString(nameLine(f, "16px", "14px"))
	if f.Title != "" {
		fmt.Fprintf(&b, `<div style="color: %s; font-weight: 600; margin-bottom: 2px;">%s</div>`, s.Accent, f.Title)
	}
	if f.CompanyName != "" {
		fmt.Fprintf(&b, `<div style="color: #6b7280; margin-bottom: 12px; font-size: 14px;">%s`, f.CompanyName)
		if f.CompanySlogan != "" {
			fmt.Fprintf(&b, ` <span style="color: #9ca3af;">%s</span>`, f.CompanySlogan)
		}
		b.WriteString(`</div>`)
	}
	if f.Contact != "" {
		fmt.Fprintf(&b, `<div style="font-size: 13px; color: #6b7280; line-height: 1.5;">%s</div>`, f.Contact)
	}
	if f.Social != "" {
		fmt.Fprintf(&b, `<div style="margin-top: 12px; font-size: 12px;">%s</div>`, f.Social)
	}
	if cta := f.CTAFirst(ButtonMinimal); cta != "" {
		fmt.Fprintf(&b, `<div style="margin-top: 15px;">%s</div>`, cta)
	}
	if f.Disclaimer != "" {
		fmt.Fprintf(&b, `<div style="font-size: 10px; color: #9ca3af; margin-top: 12px; line-height: 1.3; border-top: 1px solid #e5e7eb; padding-top: 8px;">%s</div>`, f.Disclaimer)
	}

	b.WriteString(`</td></tr></table>`)
	return b.String()
}

// renderCorporateBlock wraps the content in an accent-colored card band.
// Supports the full multi-button CTA row.
func renderCorporateBlock(s ResolvedStyle, f *Fragments) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<table cellpadding="0" cellspacing="0" style="font-family: Arial, sans-serif; font-size: %s; line-height: %s; letter-spacing: %s; border-collapse: collapse; max-width: 500px;"><tr><td style="background: %s; padding: 1px;"><table cellpadding="0" cellspacing="0" style="width: 100%%; border-collapse: collapse;"><tr><td style="background: #ffffff; padding: 20px;">`,
		s.FontSize, s.LineHeight, s.LetterSpacing, s.Accent)

	if f.Logo != "" {
		fmt.Fprintf(&b, `<div style="margin-bottom: 15px;">%s</div>`, f.Logo)
	}
	fmt.Fprintf(&b, `<div style="font-weight: 700; color: %s; font-size: 18px; margin-bottom: 2px;">%s`, s.Accent, f.Name)
	if f.Pronouns != "" {
		fmt.Fprintf(&b, ` <span style="color: #6b7280; font-weight: 400; font-size: 14px;">(%s)</span>`, f.Pronouns)
	}
	b.WriteString(`</div>`)
	if f.Title != "" {
		fmt.Fprintf(&b, `<div style="color: #1f2937; font-weight: 600; margin-bottom: 2px;">%s</div>`, f.Title)
	}
	if f.CompanyName != "" {
		fmt.Fprintf(&b, `<div style="color: #6b7280; margin-bottom: 12px; font-size: 14px;">%s`, f.CompanyName)
		if f.CompanySlogan != "" {
			fmt.Fprintf(&b, `<br><span style="color: #9ca3af; font-size: 12px;">%s</span>`, f.CompanySlogan)
		}
		b.WriteString(`</div>`)
	}
	if f.Contact != "" {
		fmt.Fprintf(&b, `<div style="border-top: 2px solid %s; padding-top: 12px; margin-top: 12px; font-size: 13px; color: #4b5563;">%s</div>`, s.Accent, f.Contact)
	}
	if f.Social != "" {
		fmt.Fprintf(&b, `<div style="margin-top: 12px; padding-top: 12px; border-top: 1px solid #e5e7eb; font-size: 12px;">%s</div>`, f.Social)
	}
	if cta := f.CTA(ButtonCorporate); cta != "" {
		fmt.Fprintf(&b, `<div style="margin-top: 15px;">%s</div>`, cta)
	}
	if f.Disclaimer != "" {
		fmt.Fprintf(&b, `<div style="font-size: 10px; color: #9ca3af; margin-top: 12px; border-top: 1px solid #e5e7eb; padding-top: 8px;">%s</div>`, f.Disclaimer)
	}

	b.WriteString(`</td></tr></table></td></tr></table>`)
	return b.String()
}

// renderBadge is a rounded card with a translucent accent wash.
func renderBadge(s ResolvedStyle, f *Fragments) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<table cellpadding="0" cellspacing="0" style="font-family: Arial, sans-serif; font-size: %s; line-height: %s; background: %s1A; border-radius: 12px; border: 1px solid %s33; max-width: 480px;"><tr>`,
		s.FontSize, s.LineHeight, s.Accent, s.Accent)

	if f.Logo != "" {
		fmt.Fprintf(&b, `<td style="padding: 20px 0 20px 20px; vertical-align: top;">%s</td>`, f.Logo)
	}
	b.WriteString(`<td style="padding: 20px; vertical-align: top;">`)
	b.WriteString(nameLine(f, "18px", "14px"))
	if f.Title != "" {
		fmt.Fprintf(&b, `<div style="color: %s; font-weight: 600; margin-bottom: 2px;">%s</div>`, s.Accent, f.Title)
	}
	if f.CompanyName != "" {
		fmt.Fprintf(&b, `<div style="color: #6b7280; margin-bottom: 12px;">%s`, f.CompanyName)
		if f.CompanySlogan != "" {
			fmt.Fprintf(&b, ` <span style="color: #9ca3af;">%s</span>`, f.CompanySlogan)
		}
		b.WriteString(`</div>`)
	}
	if f.Contact != "" {
		fmt.Fprintf(&b, `<div style="font-size: 12px; color: #6b7280;">%s</div>`, f.Contact)
	}
	if f.Social != "" {
		fmt.Fprintf(&b, `<div style="margin-top: 10px; font-size: 12px;">%s</div>`, f.Social)
	}
	if cta := f.CTAFirst(ButtonBadge); cta != "" {
		fmt.Fprintf(&b, `<div style="margin-top: 12px;">%s</div>`, cta)
	}
	if f.Disclaimer != "" {
		fmt.Fprintf(&b, `<div style="font-size: 10px; color: #9ca3af; margin-top: 15px;">%s</div>`, f.Disclaimer)
	}

	b.WriteString(`</td></tr></table>`)
	return b.String()
}

// renderSimpleText is the no-frills layout: labeled text lines, no logo, a
// plain underlined text link for the CTA.
func renderSimpleText(s ResolvedStyle, f *Fragments) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<div style="font-family: Arial, sans-serif; font-size: %s; line-height: %s; letter-spacing: %s; color: #1f2937;">`,
		s.FontSize, s.LineHeight, s.LetterSpacing)

	fmt.Fprintf(&b, `<div style="font-weight: 700; margin-bottom: 2px;">%s`, f.Name)
	if f.Pronouns != "" {
		fmt.Fprintf(&b, ` (%s)`, f.Pronouns)
	}
	b.WriteString(`</div>`)

	switch {
	case f.Title != "" && f.CompanyName != "":
		fmt.Fprintf(&b, `<div style="margin-bottom: 2px;">%s | %s</div>`, f.Title, f.CompanyName)
	case f.Title != "":
		fmt.Fprintf(&b, `<div style="margin-bottom: 2px;">%s</div>`, f.Title)
	case f.CompanyName != "":
		fmt.Fprintf(&b, `<div style="margin-bottom: 2px;">%s</div>`, f.CompanyName)
	}
	if f.CompanySlogan != "" {
		fmt.Fprintf(&b, `<div style="margin-bottom: 2px; color: #6b7280;">%s</div>`, f.CompanySlogan)
	}

	c := f.contact
	t := f.tracking
	if v := strings.TrimSpace(c.Phone); v != "" {
		fmt.Fprintf(&b, `<div>Phone: <a href="%s" style="color: %s; text-decoration: none;">%s</a></div>`,
			escape(trackedHref(t, CategoryPhone, telHref(v))), s.Accent, escape(v))
	}
	if v := strings.TrimSpace(c.Email); v != "" {
		fmt.Fprintf(&b, `<div>Email: <a href="%s" style="color: %s; text-decoration: none;">%s</a></div>`,
			escape(trackedHref(t, CategoryEmail, "mailto:"+v)), s.Accent, escape(v))
	}
	if v := strings.TrimSpace(c.Website); v != "" {
		fmt.Fprintf(&b, `<div>Website: <a href="%s" style="color: %s; text-decoration: none;">%s</a></div>`,
			escape(trackedHref(t, CategoryWebsite, v)), s.Accent, escape(v))
	}
	if v := strings.TrimSpace(c.Calendly); v != "" {
		fmt.Fprintf(&b, `<div>Schedule: <a href="%s" style="color: %s; text-decoration: none;">Book a Meeting</a></div>`,
			escape(trackedHref(t, CategoryCalendly, v)), s.Accent)
	}

	if f.Social != "" {
		fmt.Fprintf(&b, `<div style="margin-top: 8px;">%s</div>`, f.Social)
	}
	if cta := f.CTAFirst(ButtonText); cta != "" {
		fmt.Fprintf(&b, `<div style="margin-top: 10px;">%s</div>`, cta)
	}
	if f.Disclaimer != "" {
		fmt.Fprintf(&b, `<div style="font-size: 10px; color: #6b7280; margin-top: 8px; border-top: 1px solid #e5e7eb; padding-top: 6px;">%s</div>`, f.Disclaimer)
	}

	b.WriteString(`</div>`)
	return b.String()
}

// renderProfessionalHeadshot is a two-column layout with a round headshot on
// the left. The logo URL doubles as the headshot source.
func renderProfessionalHeadshot(s ResolvedStyle, f *Fragments) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<table cellpadding="0" cellspacing="0" style="font-family: Arial, sans-serif; font-size: %s; line-height: %s; border-collapse: collapse; max-width: 500px;"><tr>`,
		s.FontSize, s.LineHeight)

	if f.LogoURL != "" {
		fmt.Fprintf(&b, `<td style="vertical-align: top; padding-right: 20px;"><img src="%s" width="%d" height="%d" style="border-radius: 50%%; object-fit: cover; border: 2px solid #e5e7eb; display: block;" alt="%s"></td>`,
			f.LogoURL, s.LogoSize, s.LogoSize, f.Name)
	}
	b.WriteString(`<td style="vertical-align: top;">`)
	b.WriteString(nameLine(f, "18px", "14px"))
	if f.Title != "" {
		fmt.Fprintf(&b, `<div style="color: %s; font-weight: 600; margin-bottom: 2px; font-size: 15px;">%s</div>`, s.Accent, f.Title)
	}
	if f.CompanyName != "" {
		fmt.Fprintf(&b, `<div style="color: #6b7280; margin-bottom: 12px; font-size: 14px;">%s`, f.CompanyName)
		if f.CompanySlogan != "" {
			fmt.Fprintf(&b, ` <span style="color: #9ca3af;">%s</span>`, f.CompanySlogan)
		}
		b.WriteString(`</div>`)
	}
	if f.Contact != "" {
		fmt.Fprintf(&b, `<div style="font-size: 13px; color: #6b7280; line-height: 1.6;">%s</div>`, f.Contact)
	}
	if f.Social != "" {
		fmt.Fprintf(&b, `<div style="margin-top: 12px; font-size: 12px;">%s</div>`, f.Social)
	}
	if cta := f.CTAFirst(ButtonBadge); cta != "" {
		fmt.Fprintf(&b, `<div style="margin-top: 15px;">%s</div>`, cta)
	}
	if f.Disclaimer != "" {
		fmt.Fprintf(&b, `<div style="font-size: 10px; color: #9ca3af; margin-top: 12px; line-height: 1.3; border-top: 1px solid #e5e7eb; padding-top: 8px;">%s</div>`, f.Disclaimer)
	}

	b.WriteString(`</td></tr></table>`)
	return b.String()
}

// renderExecutive is the serif-styled layout with an italic title and a
// quoted slogan.
func renderExecutive(s ResolvedStyle, f *Fragments) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<table cellpadding="0" cellspacing="0" style="font-family: Georgia, 'Times New Roman', serif; font-size: %s; border-collapse: collapse; max-width: 450px;"><tr><td style="vertical-align: top; border-left: 2px solid %s; padding-left: 20px;">`,
		s.FontSize, s.Accent)

	if f.Logo != "" {
		fmt.Fprintf(&b, `<div style="margin-bottom: 15px;">%s</div>`, f.Logo)
	}
	fmt.Fprintf(&b, `<div style="font-weight: 700; color: #1f2937; font-size: 20px; margin-bottom: 6px;">%s`, f.Name)
	if f.Pronouns != "" {
		fmt.Fprintf(&b, ` <span style="color: #6b7280; font-weight: 400; font-size: 16px;">(%s)</span>`, f.Pronouns)
	}
	b.WriteString(`</div>`)
	if f.Title != "" {
		fmt.Fprintf(&b, `<div style="color: %s; font-weight: 600; margin-bottom: 4px; font-size: 16px; font-style: italic;">%s</div>`, s.Accent, f.Title)
	}
	if f.CompanyName != "" {
		fmt.Fprintf(&b, `<div style="color: #1f2937; margin-bottom: 15px; font-size: 15px; font-weight: 600;">%s`, f.CompanyName)
		if f.CompanySlogan != "" {
			fmt.Fprintf(&b, `<br><span style="font-size: 13px; color: #6b7280; font-weight: 400; font-style: italic;">&quot;%s&quot;</span>`, f.CompanySlogan)
		}
		b.WriteString(`</div>`)
	}
	if f.Contact != "" {
		fmt.Fprintf(&b, `<div style="font-size: 13px; color: #6b7280; line-height: 1.6; border-top: 1px solid #e5e7eb; padding-top: 12px;">%s</div>`, f.Contact)
	}
	if f.Social != "" {
		fmt.Fprintf(&b, `<div style="margin-top: 15px; font-size: 12px; padding-top: 10px; border-top: 1px solid #f3f4f6;">%s</div>`, f.Social)
	}
	if cta := f.CTAFirst(ButtonExecutive); cta != "" {
		fmt.Fprintf(&b, `<div style="margin-top: 18px;">%s</div>`, cta)
	}
	if f.Disclaimer != "" {
		fmt.Fprintf(&b, `<div style="font-size: 9px; color: #9ca3af; margin-top: 15px; line-height: 1.3; border-top: 1px solid #e5e7eb; padding-top: 10px; font-family: Arial, sans-serif;">%s</div>`, f.Disclaimer)
	}

	b.WriteString(`</td></tr></table>`)
	return b.String()
}

// companyInitials derives a one-or-two letter placeholder from the company
// name for the logo slot.
func companyInitials(name string) string {
	words := strings.Fields(name)
	if len(words) == 0 {
		return ""
	}
	initials := strings.ToUpper(firstRune(words[0]))
	if len(words) > 1 {
		initials += strings.ToUpper(firstRune(words[1]))
	}
	return initials
}

func firstRune(s string) string {
	for _, r := range s {
		return string(r)
	}
	return ""
}

// renderProfessionalLeftLogo is the two-column layout with the logo (or an
// initials placeholder) on the left of a vertical divider rule.
func renderProfessionalLeftLogo(s ResolvedStyle, f *Fragments) string {
	logoColumnWidth := s.LogoSize + 10

	var b strings.Builder
	fmt.Fprintf(&b, `<table cellpadding="0" cellspacing="0" style="font-family: Arial, sans-serif; color: #333333; line-height: %s; letter-spacing: %s; font-size: %s; max-width: 600px;"><tr><td><table cellpadding="0" cellspacing="0" style="width: 100%%;"><tr>`,
		s.LineHeight, s.LetterSpacing, s.FontSize)

	fmt.Fprintf(&b, `<td style="width: %dpx; padding-right: %s; border-right: 2px solid #1a1a1a; vertical-align: top;">`, logoColumnWidth, s.Spacing)
	if f.LogoURL != "" {
		fmt.Fprintf(&b, `<img src="%s" alt="Logo" width="%d" height="%d" style="display: block; border-radius: %s; object-fit: contain;">`,
			f.LogoURL, s.LogoSize, s.LogoSize, s.CornerRadius)
	} else if initials := companyInitials(f.CompanyName); initials != "" {
		fmt.Fprintf(&b, `<table cellpadding="0" cellspacing="0" style="width: %dpx; height: %dpx; background: %s; border-radius: %s;"><tr><td style="text-align: center; vertical-align: middle; color: #ffffff; font-weight: 800; font-size: 24px;">%s</td></tr></table>`,
			s.LogoSize, s.LogoSize, s.Accent, s.CornerRadius, initials)
	}
	b.WriteString(`</td>`)

	fmt.Fprintf(&b, `<td style="padding-left: %s; vertical-align: top;">`, s.Spacing)
	b.WriteString(nameLine(f, "16px", "13px"))
	if f.Title != "" || f.CompanyName != "" {
		b.WriteString(`<div style="font-size: 13px; color: #6b7280; margin-top: 2px;">`)
		if f.Title != "" {
			b.WriteString(f.Title)
		}
		if f.Title != "" && f.CompanyName != "" {
			b.WriteString(` | `)
		}
		if f.CompanyName != "" {
			fmt.Fprintf(&b, `<span style="color: %s; font-weight: 600;">%s</span>`, s.Accent, f.CompanyName)
		}
		b.WriteString(`</div>`)
	}
	if f.CompanySlogan != "" {
		fmt.Fprintf(&b, `<div style="font-size: 12px; color: #9ca3af; margin-top: 2px;">%s</div>`, f.CompanySlogan)
	}
	if f.Contact != "" {
		fmt.Fprintf(&b, `<div style="font-size: 13px; margin-top: 8px;">%s</div>`, f.Contact)
	}
	if cta := f.CTAFirst(ButtonDefault); cta != "" {
		fmt.Fprintf(&b, `<div style="margin-top: 10px;">%s</div>`, cta)
	}
	if f.Social != "" {
		fmt.Fprintf(&b, `<div style="margin-top: 10px; font-size: 12px;">%s</div>`, f.Social)
	}
	b.WriteString(`</td></tr></table></td></tr>`)

	if f.Disclaimer != "" {
		fmt.Fprintf(&b, `<tr><td style="padding-top: 12px; font-size: 10px; color: #9ca3af; border-top: 1px solid #e5e7eb;">%s</td></tr>`, f.Disclaimer)
	}

	b.WriteString(`</table>`)
	return b.String()
}
