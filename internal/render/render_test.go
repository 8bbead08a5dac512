package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullConfig() *SignatureConfig {
	return &SignatureConfig{
		Identity: Identity{
			Name:     "Jordan Alvarez",
			Title:    "Head of Partnerships",
			Pronouns: "they/them",
		},
		Company: Company{
			Name:    "Brightpath Consulting",
			Slogan:  "Clarity in every engagement",
			LogoURL: "https://cdn.brightpath.example/logo.png",
		},
		Contact: Contact{
			Email:    "jordan@brightpath.example",
			Phone:    "+1 (555) 010-7788",
			Website:  "https://brightpath.example",
			Calendly: "https://calendly.com/jordan-alvarez",
		},
		Links: Links{
			LinkedIn: "https://linkedin.com/in/jordanalvarez",
			GitHub:   "https://github.com/jordanalvarez",
		},
		Branding: Branding{
			Accent:   "#C24343",
			FontSize: "large",
		},
		Addons: Addons{
			CTA: CTAField{Entries: []CTAButton{
				{Label: "Book a Call", URL: "https://calendly.com/jordan-alvarez/intro"},
			}},
			Disclaimer: "This message is confidential.",
		},
	}
}

func TestRenderNilConfig(t *testing.T) {
	_, err := Render(nil, DefaultTemplateKey, nil)
	require.ErrorIs(t, err, ErrNilConfig)
}

func TestRenderAllTemplates(t *testing.T) {
	cfg := fullConfig()
	for _, key := range RegisteredTemplates() {
		t.Run(key, func(t *testing.T) {
			html, err := Render(cfg, key, nil)
			require.NoError(t, err)
			assert.Contains(t, html, "Jordan Alvarez")
			assert.Contains(t, html, "Head of Partnerships")
			assert.Contains(t, html, "Brightpath Consulting")
			assert.Contains(t, html, "they/them")
			assert.Contains(t, html, "#C24343")
			assert.Contains(t, html, "16px", "large font token resolves to 16px")
			assert.Contains(t, html, "mailto:jordan@brightpath.example")
			assert.Contains(t, html, "tel:+15550107788")
			assert.Contains(t, html, "Book a Meeting")
			assert.Contains(t, html, "Book a Call")
			assert.Contains(t, html, "LinkedIn")
			assert.Contains(t, html, "GitHub")
			assert.Contains(t, html, "This message is confidential.")
			assert.NotContains(t, html, "Facebook", "unset platforms never render")
		})
	}
}

func TestRenderDeterministic(t *testing.T) {
	cfg := fullConfig()
	first, err := Render(cfg, "corporate-block", nil)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Render(cfg, "corporate-block", nil)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestRenderUnknownKeyFallsBack(t *testing.T) {
	cfg := fullConfig()
	def, err := Render(cfg, DefaultTemplateKey, nil)
	require.NoError(t, err)
	got, err := Render(cfg, "no-such-layout", nil)
	require.NoError(t, err)
	assert.Equal(t, def, got)

	got, err = Render(cfg, "", nil)
	require.NoError(t, err)
	assert.Equal(t, def, got)
}

func TestRenderEscapesUserInput(t *testing.T) {
	cfg := fullConfig()
	cfg.Identity.Name = `Jordan <script>alert("x")</script>`
	cfg.Company.Slogan = "Fast & loose"
	cfg.Addons.CTA.Entries[0].Label = `Click "here" <now>`

	for _, key := range RegisteredTemplates() {
		html, err := Render(cfg, key, nil)
		require.NoError(t, err)
		assert.NotContains(t, html, "<script>", key)
		assert.Contains(t, html, "&lt;script&gt;", key)
		assert.Contains(t, html, "Fast &amp; loose", key)
		assert.Contains(t, html, "Click &#34;here&#34; &lt;now&gt;", key)
	}
}

func TestRenderEscapesAccent(t *testing.T) {
	cfg := fullConfig()
	cfg.Branding.Accent = `#fff" onmouseover="alert(1)`
	html, err := Render(cfg, DefaultTemplateKey, nil)
	require.NoError(t, err)
	assert.NotContains(t, html, `" onmouseover="`)
}

func TestRenderOmitsEmptySections(t *testing.T) {
	cfg := &SignatureConfig{Identity: Identity{Name: "Sam Ortiz"}}
	for _, key := range RegisteredTemplates() {
		html, err := Render(cfg, key, nil)
		require.NoError(t, err)
		assert.Contains(t, html, "Sam Ortiz", key)
		assert.NotContains(t, html, "mailto:", key)
		assert.NotContains(t, html, "tel:", key)
		assert.NotContains(t, html, "<img", key)
		assert.NotContains(t, html, "Book a Meeting", key)
		assert.NotContains(t, html, "()", key, "no empty pronoun parens")
		assert.NotContains(t, html, "| </div>", key, "no dangling separator")
	}
}

func TestRenderMultilineDisclaimer(t *testing.T) {
	cfg := fullConfig()
	cfg.Addons.Disclaimer = "Confidential.\nDo not forward."
	html, err := Render(cfg, "simple-text", nil)
	require.NoError(t, err)
	assert.Contains(t, html, "Confidential.<br>Do not forward.")
}

func TestRenderTrackingSubstitution(t *testing.T) {
	cfg := fullConfig()
	tracking := map[string]string{
		CategoryEmail:    "https://sig.example/api/click?c=aB3dE9fG",
		CategoryLinkedIn: "https://sig.example/api/click?c=Qw2rT7yU",
		CategoryCustom:   "https://sig.example/api/click?c=Zx8cV1bN",
	}
	html, err := Render(cfg, "corporate-block", tracking)
	require.NoError(t, err)

	assert.Contains(t, html, "https://sig.example/api/click?c=aB3dE9fG")
	assert.NotContains(t, html, `href="mailto:`)
	assert.Contains(t, html, "jordan@brightpath.example", "display text stays the real address")

	assert.Contains(t, html, "https://sig.example/api/click?c=Qw2rT7yU")
	assert.NotContains(t, html, `href="https://linkedin.com/in/jordanalvarez"`)

	assert.Contains(t, html, "https://sig.example/api/click?c=Zx8cV1bN")
	assert.NotContains(t, html, `href="https://calendly.com/jordan-alvarez/intro"`)

	// Categories without a link keep the canonical href.
	assert.Contains(t, html, `href="tel:+15550107788"`)
	assert.Contains(t, html, `href="https://github.com/jordanalvarez"`)
}

func TestRenderNilTrackingKeepsCanonical(t *testing.T) {
	html, err := Render(fullConfig(), DefaultTemplateKey, nil)
	require.NoError(t, err)
	assert.Contains(t, html, `href="mailto:jordan@brightpath.example"`)
	assert.NotContains(t, html, "/api/click")
}

func TestComposeCTACap(t *testing.T) {
	cta := CTAField{Entries: []CTAButton{
		{Label: "A", URL: "https://a.example"},
		{Label: "B", URL: "https://b.example"},
		{Label: "C", URL: "https://c.example"},
		{Label: "D", URL: "https://d.example"},
	}}
	buttons := ComposeCTA(cta, ResolveStyle(Branding{}), ButtonCorporate, nil)
	require.Len(t, buttons, MaxCTAButtons)
	assert.Equal(t, "A", buttons[0].Label)
	assert.Equal(t, "B", buttons[1].Label)
	assert.Equal(t, "C", buttons[2].Label)

	html := RenderButtons(buttons)
	assert.NotContains(t, html, "d.example")
}

func TestComposeCTASkipsIncomplete(t *testing.T) {
	cta := CTAField{Entries: []CTAButton{
		{Label: "", URL: "https://a.example"},
		{Label: "No URL", URL: "  "},
		{Label: "Real", URL: "https://real.example"},
	}}
	buttons := ComposeCTA(cta, ResolveStyle(Branding{}), ButtonDefault, nil)
	require.Len(t, buttons, 1)
	assert.Equal(t, "Real", buttons[0].Label)
}

func TestFirstCTADestinationMatchesRenderedButton(t *testing.T) {
	cta := CTAField{Entries: []CTAButton{
		{Label: "", URL: "https://skipped.example"},
		{Label: "Real", URL: "https://real.example"},
	}}

	dest, ok := FirstCTADestination(cta)
	require.True(t, ok)

	// The tracked slot's destination and the button the redirect is
	// substituted into must refer to the same entry.
	tracking := map[string]string{CategoryCustom: "https://sig.example/api/click?c=Zq8wXv2K"}
	buttons := ComposeCTA(cta, ResolveStyle(Branding{}), ButtonDefault, tracking)
	require.Len(t, buttons, 1)
	assert.Equal(t, "https://real.example", dest)
	assert.Equal(t, buttons[0].URL, dest)
	assert.Equal(t, escape("https://sig.example/api/click?c=Zq8wXv2K"), buttons[0].Href)
}

func TestFirstCTADestinationEmpty(t *testing.T) {
	_, ok := FirstCTADestination(CTAField{Entries: []CTAButton{{Label: "no url"}}})
	assert.False(t, ok)
}

func TestComposeCTATracksFirstButtonOnly(t *testing.T) {
	cta := CTAField{Entries: []CTAButton{
		{Label: "First", URL: "https://first.example"},
		{Label: "Second", URL: "https://second.example"},
	}}
	tracking := map[string]string{CategoryCustom: "https://sig.example/api/click?c=Mn4pQ6rS"}
	buttons := ComposeCTA(cta, ResolveStyle(Branding{}), ButtonCorporate, tracking)
	require.Len(t, buttons, 2)
	assert.Equal(t, escape("https://sig.example/api/click?c=Mn4pQ6rS"), buttons[0].Href)
	assert.Equal(t, "https://second.example", buttons[1].Href)
}

func TestButtonStylePerEntryRadius(t *testing.T) {
	cta := CTAField{Entries: []CTAButton{
		{Label: "Pill", URL: "https://a.example", CornerRadius: "large"},
		{Label: "Square", URL: "https://b.example", CornerRadius: "none"},
	}}
	buttons := ComposeCTA(cta, ResolveStyle(Branding{}), ButtonCorporate, nil)
	require.Len(t, buttons, 2)
	assert.Contains(t, buttons[0].Style, "border-radius: 20px")
	assert.Contains(t, buttons[1].Style, "border-radius: 0px")
}

func TestResolveStyleDefaults(t *testing.T) {
	s := ResolveStyle(Branding{})
	assert.Equal(t, "14px", s.FontSize)
	assert.Equal(t, "1.4", s.LineHeight)
	assert.Equal(t, "0px", s.LetterSpacing)
	assert.Equal(t, "10px", s.Spacing)
	assert.Equal(t, "8px", s.CornerRadius)
	assert.Equal(t, "outline", s.IconStyle)
	assert.Equal(t, DefaultAccent, s.Accent)
	assert.Equal(t, DefaultLogoSize, s.LogoSize)
}

func TestResolveStyleTokens(t *testing.T) {
	s := ResolveStyle(Branding{
		FontSize:      "small",
		LineHeight:    "relaxed",
		LetterSpacing: "loose",
		Spacing:       "spacious",
		CornerRadius:  "large",
		IconStyle:     "solid",
		Accent:        "#112233",
		LogoSize:      120,
	})
	assert.Equal(t, "12px", s.FontSize)
	assert.Equal(t, "1.6", s.LineHeight)
	assert.Equal(t, "1px", s.LetterSpacing)
	assert.Equal(t, "14px", s.Spacing)
	assert.Equal(t, "20px", s.CornerRadius)
	assert.Equal(t, "solid", s.IconStyle)
	assert.Equal(t, "#112233", s.Accent)
	assert.Equal(t, 120, s.LogoSize)
}

func TestResolveStyleUnknownTokensFallBack(t *testing.T) {
	s := ResolveStyle(Branding{FontSize: "gigantic", CornerRadius: "round-ish", IconStyle: "neon"})
	assert.Equal(t, "14px", s.FontSize)
	assert.Equal(t, "8px", s.CornerRadius)
	assert.Equal(t, "outline", s.IconStyle)
}

func TestSocialLinksFixedOrder(t *testing.T) {
	links := Links{
		YouTube:  "https://youtube.com/@acme",
		LinkedIn: "https://linkedin.com/company/acme",
		GitHub:   "https://github.com/acme",
	}
	html := SocialLinks(links, ResolveStyle(Branding{}), nil)
	li := strings.Index(html, "LinkedIn")
	gh := strings.Index(html, "GitHub")
	yt := strings.Index(html, "YouTube")
	require.True(t, li >= 0 && gh >= 0 && yt >= 0)
	assert.Less(t, li, gh)
	assert.Less(t, gh, yt)
}

func TestSocialLinksSolidStyle(t *testing.T) {
	links := Links{LinkedIn: "https://linkedin.com/in/acme"}
	html := SocialLinks(links, ResolveStyle(Branding{IconStyle: "solid"}), nil)
	assert.Contains(t, html, "background: #0A66C2")
	assert.Contains(t, html, "color: #ffffff")
}

func TestContactBlockWebsiteHost(t *testing.T) {
	c := Contact{Website: "https://www.brightpath.example/about?ref=sig"}
	html := ContactBlock(c, ResolveStyle(Branding{}), nil)
	assert.Contains(t, html, ">www.brightpath.example</a>")
	assert.Contains(t, html, `href="https://www.brightpath.example/about?ref=sig"`)
}

func TestCompanyInitials(t *testing.T) {
	assert.Equal(t, "BC", companyInitials("Brightpath Consulting"))
	assert.Equal(t, "A", companyInitials("acme"))
	assert.Equal(t, "", companyInitials("   "))
}

func TestProfessionalLeftLogoPlaceholder(t *testing.T) {
	cfg := fullConfig()
	cfg.Company.LogoURL = ""
	html, err := Render(cfg, "professional-left-logo", nil)
	require.NoError(t, err)
	assert.Contains(t, html, ">BC</td>", "initials placeholder fills the logo slot")
}

func TestTrackingPixel(t *testing.T) {
	tag := TrackingPixel("https://sig.example", "sig-123", "user 9")
	assert.Contains(t, tag, `src="https://sig.example/api/pixel?s=sig-123&u=user+9"`)
	assert.Contains(t, tag, `width="1" height="1"`)
	assert.Contains(t, tag, "display: none")

	assert.Empty(t, TrackingPixel("https://sig.example", "", "user"))
}
