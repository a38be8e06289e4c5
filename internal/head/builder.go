// internal/head/builder.go
//
// The Builder collects what a page puts inside its <head> element.  The
// view engine creates one per render, seeds it with the page title and the
// site-wide robots policy, and the layout emits it.
//
// Features
// --------
//   - SetTitle  – page title; the site name is appended.
//   - Meta      – <meta name content>, first value per name wins.
//   - Link      – <link rel href>, deduplicated on (rel, href).
//   - Tags      – every meta and link tag as one template.HTML.
//
// Attribute values are escaped here, so callers pass plain strings.
package head

import (
	"html/template"
	"strings"
)

// SiteName closes every page title.
const SiteName = "Student Desk"

// Builder is scoped to a single render and not safe for concurrent use.
type Builder struct {
	title string
	tags  []string
	seen  map[string]struct{}
}

func New() *Builder {
	return &Builder{seen: make(map[string]struct{})}
}

// SetTitle overrides the page title.  The last caller wins.
func (b *Builder) SetTitle(t string) { b.title = strings.TrimSpace(t) }

// Title returns "<page> · Student Desk", or just the site name.
func (b *Builder) Title() string {
	if b.title == "" {
		return SiteName
	}
	return b.title + " · " + SiteName
}

// Meta adds a named meta tag unless name was already set.
func (b *Builder) Meta(name, content string) {
	b.add("meta:"+name, `<meta name="`+esc(name)+`" content="`+esc(content)+`">`)
}

// Link adds a link tag.
func (b *Builder) Link(rel, href string) {
	b.add("link:"+rel+" "+href, `<link rel="`+esc(rel)+`" href="`+esc(href)+`">`)
}

func (b *Builder) add(key, tag string) {
	if _, dup := b.seen[key]; dup {
		return
	}
	b.seen[key] = struct{}{}
	b.tags = append(b.tags, tag)
}

// Tags returns the collected tags, one per line, in insertion order.
func (b *Builder) Tags() template.HTML {
	return template.HTML(strings.Join(b.tags, "\n"))
}

func esc(s string) string { return template.HTMLEscapeString(s) }
