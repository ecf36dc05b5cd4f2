// Package normal contains string normalizers for titles and abstracts.
package normal

import (
	"html"
	"regexp"
	"strings"
	"unicode"
)

// tagPattern matches opening, closing and empty element tags with a name, so
// that a lone "<" or ">" in text is kept.
var tagPattern = regexp.MustCompile(`</?[A-Za-z][\w:.-]*(\s[^<>]*)?/?>`)

// Pipeline applies normalizers in order.
type Pipeline struct {
	Normalizer []Normalizer
}

func (p *Pipeline) Normalize(s string) string {
	for _, n := range p.Normalizer {
		s = n.Normalize(s)
	}
	return s
}

type Normalizer interface {
	Normalize(string) string
}

// StripTagsNormalizer removes anything that looks like a markup tag, e.g.
// JATS elements in crossref abstracts.
type StripTagsNormalizer struct{}

func (s *StripTagsNormalizer) Normalize(v string) string {
	return tagPattern.ReplaceAllString(v, " ")
}

// UnescapeNormalizer decodes HTML entities.
type UnescapeNormalizer struct{}

func (s *UnescapeNormalizer) Normalize(v string) string {
	return html.UnescapeString(v)
}

// CollapseWSNormalizer replaces runs of whitespace with a single space and
// trims the result.
type CollapseWSNormalizer struct{}

func (s *CollapseWSNormalizer) Normalize(v string) string {
	var (
		b       strings.Builder
		inSpace bool
	)
	for _, c := range strings.TrimSpace(v) {
		if unicode.IsSpace(c) {
			if !inSpace {
				b.WriteRune(' ')
			}
			inSpace = true
			continue
		}
		inSpace = false
		b.WriteRune(c)
	}
	return b.String()
}

// Text is the cleanup for raw free text fields. Tags are removed before
// entities are decoded, so an escaped "&lt;" survives as "<".
var Text = &Pipeline{Normalizer: []Normalizer{
	&StripTagsNormalizer{},
	&UnescapeNormalizer{},
	&CollapseWSNormalizer{},
}}

// Decoded is the cleanup for text with entities already decoded. It must
// not decode again.
var Decoded = &Pipeline{Normalizer: []Normalizer{
	&StripTagsNormalizer{},
	&CollapseWSNormalizer{},
}}

// Markup removes tags and entities and collapses whitespace.
func Markup(s string) string {
	return Text.Normalize(s)
}

// Residual removes tags left in decoded text and collapses whitespace.
func Residual(s string) string {
	return Decoded.Normalize(s)
}

// Whitespace collapses whitespace only.
func Whitespace(s string) string {
	return (&CollapseWSNormalizer{}).Normalize(s)
}
