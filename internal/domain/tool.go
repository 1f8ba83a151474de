package domain

import (
	"strings"
	"time"
)

// Tool statuses in the public catalog.
const (
	ToolStatusPublished = "published"
	ToolStatusHidden    = "hidden"
)

// Tool is a published catalog entry.
type Tool struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Tagline     string    `json:"tagline"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	Pricing     string    `json:"pricing"`
	Logo        string    `json:"logo"`
	WebsiteURL  string    `json:"websiteUrl"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// SearchDocument is the denormalized record served to the client-side
// search UI and indexed into Elasticsearch.
type SearchDocument struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	Tagline     string   `json:"tagline"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Pricing     string   `json:"pricing"`
	Logo        string   `json:"logo"`
}

// SearchDoc flattens a tool into its search document. Description falls
// back to the tagline and slug falls back to the id, matching what the
// public site expects.
func (t *Tool) SearchDoc() SearchDocument {
	slug := t.Slug
	if slug == "" {
		slug = t.ID
	}
	desc := t.Description
	if desc == "" {
		desc = t.Tagline
	}
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	return SearchDocument{
		ID:          t.ID,
		Name:        t.Name,
		Slug:        slug,
		Tagline:     t.Tagline,
		Description: desc,
		Category:    t.Category,
		Tags:        tags,
		Pricing:     t.Pricing,
		Logo:        t.Logo,
	}
}

// Slugify builds a URL slug from a tool name.
func Slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
