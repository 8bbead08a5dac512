package render

import (
	"errors"
	"strings"
)

// ErrNilConfig is returned when Render is called without a configuration.
var ErrNilConfig = errors.New("render: signature config is required")

// Render produces the signature HTML for the given configuration and
// template key. An empty or unrecognized key falls back to
// DefaultTemplateKey rather than failing; the only error condition is a nil
// config. The tracking map, when non-nil, maps link categories to redirect
// URLs that replace the canonical hrefs.
func Render(cfg *SignatureConfig, templateKey string, tracking map[string]string) (string, error) {
	if cfg == nil {
		return "", ErrNilConfig
	}

	layout, ok := templates[templateKey]
	if !ok {
		layout = templates[DefaultTemplateKey]
	}

	style := ResolveStyle(cfg.Branding)
	frags := prepareFragments(cfg, style, tracking)
	return layout(style, frags), nil
}

// prepareFragments escapes the scalar fields and builds the shared
// sub-fragments once so layouts only assemble.
func prepareFragments(cfg *SignatureConfig, style ResolvedStyle, tracking map[string]string) *Fragments {
	return &Fragments{
		Name:          escape(strings.TrimSpace(cfg.Identity.Name)),
		Pronouns:      escape(strings.TrimSpace(cfg.Identity.Pronouns)),
		Title:         escape(strings.TrimSpace(cfg.Identity.Title)),
		CompanyName:   escape(strings.TrimSpace(cfg.Company.Name)),
		CompanySlogan: escapeMultiline(strings.TrimSpace(cfg.Company.Slogan)),
		Disclaimer:    escapeMultiline(strings.TrimSpace(cfg.Addons.Disclaimer)),
		Logo:          logoTag(cfg.Company, style),
		LogoURL:       escape(strings.TrimSpace(cfg.Company.LogoURL)),
		Contact:       ContactBlock(cfg.Contact, style, tracking),
		Social:        SocialLinks(cfg.Links, style, tracking),

		style:    style,
		contact:  cfg.Contact,
		cta:      cfg.Addons.CTA,
		tracking: tracking,
	}
}
