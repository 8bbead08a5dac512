// Package render generates email-client-safe signature HTML from a
// structured configuration and a template key. Everything in this package
// is pure computation: no I/O, no shared state, identical inputs produce
// identical output.
package render

import (
	"encoding/json"
	"sort"
	"strconv"
)

// SignatureConfig is the complete user-entered signature state. Every field
// is optional from the renderer's point of view; missing sections simply
// omit their markup.
type SignatureConfig struct {
	Identity Identity `json:"identity"`
	Company  Company  `json:"company"`
	Contact  Contact  `json:"contact"`
	Links    Links    `json:"links"`
	Branding Branding `json:"branding"`
	Addons   Addons   `json:"addons"`
	Options  Options  `json:"options"`
}

// Identity holds the person's own fields.
type Identity struct {
	Name     string `json:"name"`
	Title    string `json:"title"`
	Pronouns string `json:"pronouns"`
}

// Company holds employer/brand fields. LogoURL may be an absolute URL or a
// data URI.
type Company struct {
	Name    string `json:"name"`
	Slogan  string `json:"slogan"`
	LogoURL string `json:"logoUrl"`
}

// Contact holds the reachable-at fields.
type Contact struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Website  string `json:"website"`
	Calendly string `json:"calendly"`
}

// Links holds social profile URLs. Rendering order is fixed regardless of
// input order; see SocialLinks.
type Links struct {
	LinkedIn  string `json:"linkedin"`
	X         string `json:"x"`
	GitHub    string `json:"github"`
	Facebook  string `json:"facebook"`
	Instagram string `json:"instagram"`
	YouTube   string `json:"youtube"`
}

// Branding holds visual style choices. Enumerated fields fall back to
// documented defaults when empty or unrecognized; see ResolveStyle.
type Branding struct {
	Accent        string `json:"accent"`
	LogoSize      int    `json:"logoSize"`
	FontSize      string `json:"fontSize"`
	LineHeight    string `json:"lineHeight"`
	Spacing       string `json:"spacing"`
	LetterSpacing string `json:"letterSpacing"`
	IconStyle     string `json:"iconStyle"`
	CornerRadius  string `json:"cornerRadius"`
}

// Addons holds the optional extras: call-to-action buttons and a legal
// disclaimer.
type Addons struct {
	CTA        CTAField `json:"cta"`
	Disclaimer string   `json:"disclaimer"`
}

// Options holds display-only preview flags. The renderer does not consume
// them; they ride along so a stored config round-trips unchanged.
type Options struct {
	DarkMode bool `json:"darkMode"`
	Compact  bool `json:"compact"`
}

// CTAButton is a single call-to-action entry as entered by the user.
type CTAButton struct {
	Label        string `json:"label"`
	URL          string `json:"url"`
	CornerRadius string `json:"cornerRadius"`
}

// CTAField accepts the two wire shapes the frontend has produced over time:
// a single {label,url,cornerRadius} object, or a sparse collection keyed by
// numeric index ({"0": {...}, "1": {...}}), optionally serialized as a JSON
// array. Decoding never fails; a malformed shape yields an empty entry list.
type CTAField struct {
	Entries []CTAButton
}

// UnmarshalJSON normalizes all accepted CTA shapes into Entries, preserving
// index order for the collection forms.
func (f *CTAField) UnmarshalJSON(data []byte) error {
	f.Entries = nil

	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	switch raw[0] {
	case '[':
		var list []CTAButton
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil
		}
		f.Entries = list
	case '{':
		var keyed map[string]json.RawMessage
		if err := json.Unmarshal(raw, &keyed); err != nil {
			return nil
		}

		// Indexed collection: at least one numeric key.
		type indexed struct {
			idx int
			btn CTAButton
		}
		var entries []indexed
		for k, v := range keyed {
			idx, err := strconv.Atoi(k)
			if err != nil {
				continue
			}
			var btn CTAButton
			if err := json.Unmarshal(v, &btn); err != nil {
				continue
			}
			entries = append(entries, indexed{idx: idx, btn: btn})
		}
		if len(entries) > 0 {
			sort.Slice(entries, func(i, j int) bool { return entries[i].idx < entries[j].idx })
			for _, e := range entries {
				f.Entries = append(f.Entries, e.btn)
			}
			return nil
		}

		// Legacy single-object shape.
		var single CTAButton
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil
		}
		if single.Label != "" || single.URL != "" {
			f.Entries = []CTAButton{single}
		}
	}
	return nil
}

// MarshalJSON writes the normalized array form.
func (f CTAField) MarshalJSON() ([]byte, error) {
	if len(f.Entries) == 0 {
		return []byte("null"), nil
	}
	return json.Marshal(f.Entries)
}
