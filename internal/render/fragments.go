package render

import (
	"fmt"
	"html"
	"net/url"
	"strings"
)

// Tracking map categories shared with the tracking link assigner. The
// renderer consumes a map keyed by these values; it never creates one.
const (
	CategoryEmail     = "email"
	CategoryPhone     = "phone"
	CategoryWebsite   = "website"
	CategoryCalendly  = "calendly"
	CategoryLinkedIn  = "linkedin"
	CategoryX         = "x"
	CategoryGitHub    = "github"
	CategoryFacebook  = "facebook"
	CategoryInstagram = "instagram"
	CategoryYouTube   = "youtube"
	CategoryCustom    = "custom"
)

// escape HTML-entity-escapes user-supplied text before it is inlined.
func escape(s string) string {
	return html.EscapeString(s)
}

// escapeMultiline escapes and converts newlines to <br>. Used only for the
// fields that legitimately carry line breaks (slogan, disclaimer).
func escapeMultiline(s string) string {
	s = html.EscapeString(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", "<br>")
}

// telHref strips everything but digits and '+' for a tel: link.
func telHref(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if (r >= '0' && r <= '9') || r == '+' {
			b.WriteRune(r)
		}
	}
	return "tel:" + b.String()
}

// websiteHost returns the display form of a website URL (its host), falling
// back to the raw value when it does not parse.
func websiteHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Host
}

// trackedHref returns the tracking-redirect URL for a category when one is
// assigned, otherwise the canonical destination.
func trackedHref(tracking map[string]string, category, canonical string) string {
	if href, ok := tracking[category]; ok && href != "" {
		return href
	}
	return canonical
}

type contactLine struct {
	glyph    string
	category string
	href     string
	label    string
}

// ContactBlock renders one line per populated contact field: an icon glyph,
// an anchor, and the display text. Anchors point at the tracking redirect
// when the category has one assigned. Empty fields produce no output.
func ContactBlock(c Contact, style ResolvedStyle, tracking map[string]string) string {
	var lines []contactLine
	if v := strings.TrimSpace(c.Email); v != "" {
		lines = append(lines, contactLine{"\U0001F4E7", CategoryEmail, "mailto:" + v, v})
	}
	if v := strings.TrimSpace(c.Phone); v != "" {
		lines = append(lines, contactLine{"\U0001F4DE", CategoryPhone, telHref(v), v})
	}
	if v := strings.TrimSpace(c.Website); v != "" {
		lines = append(lines, contactLine{"\U0001F310", CategoryWebsite, v, websiteHost(v)})
	}
	if v := strings.TrimSpace(c.Calendly); v != "" {
		lines = append(lines, contactLine{"\U0001F4C5", CategoryCalendly, v, "Book a Meeting"})
	}
	if len(lines) == 0 {
		return ""
	}

	var b strings.Builder
	for _, ln := range lines {
		href := trackedHref(tracking, ln.category, ln.href)
		fmt.Fprintf(&b,
			`<div>%s <a href="%s" style="color: %s; text-decoration: none;">%s</a></div>`,
			ln.glyph, escape(href), style.Accent, escape(ln.label))
	}
	return b.String()
}

type platform struct {
	category string
	name     string
	color    string
}

// socialPlatforms fixes the emission order for social links.
var socialPlatforms = []platform{
	{CategoryLinkedIn, "LinkedIn", "#0A66C2"},
	{CategoryX, "X", "#000000"},
	{CategoryGitHub, "GitHub", "#181717"},
	{CategoryFacebook, "Facebook", "#1877F2"},
	{CategoryInstagram, "Instagram", "#E4405F"},
	{CategoryYouTube, "YouTube", "#FF0000"},
}

func (l Links) byCategory() map[string]string {
	return map[string]string{
		CategoryLinkedIn:  l.LinkedIn,
		CategoryX:         l.X,
		CategoryGitHub:    l.GitHub,
		CategoryFacebook:  l.Facebook,
		CategoryInstagram: l.Instagram,
		CategoryYouTube:   l.YouTube,
	}
}

// SocialLinks emits one inline anchor per populated platform in the fixed
// platform order. The solid icon style renders brand-colored pills; the
// default outline style renders accent-colored text links.
func SocialLinks(l Links, style ResolvedStyle, tracking map[string]string) string {
	urls := l.byCategory()

	var b strings.Builder
	for _, p := range socialPlatforms {
		raw := strings.TrimSpace(urls[p.category])
		if raw == "" {
			continue
		}
		href := escape(trackedHref(tracking, p.category, raw))
		if style.IconStyle == "solid" {
			fmt.Fprintf(&b,
				`<a href="%s" style="display: inline-block; margin-right: 8px; padding: 4px 8px; background: %s; color: #ffffff; text-decoration: none; border-radius: 3px; font-size: 11px; font-weight: 600;">%s</a>`,
				href, p.color, p.name)
		} else {
			fmt.Fprintf(&b,
				`<a href="%s" style="color: %s; text-decoration: none; margin-right: 8px;">%s</a>`,
				href, style.Accent, p.name)
		}
	}
	return b.String()
}

// logoTag renders the company logo image with absolute pixel dimensions, or
// nothing when no logo URL is set.
func logoTag(c Company, style ResolvedStyle) string {
	if c.LogoURL == "" {
		return ""
	}
	return fmt.Sprintf(
		`<img src="%s" width="%d" height="%d" style="border-radius: 4px; display: block; object-fit: contain;" alt="Logo">`,
		escape(c.LogoURL), style.LogoSize, style.LogoSize)
}
