// Package security provides the application's security services.
//
// ContentSanitizerService sanitizes user-generated HTML (listing
// descriptions, review comments, testimonials) before it is stored, using an
// allowlist-based bluemonday policy that lets only safe tags and attributes
// through.
package security

import (
	"net/url"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService defines the HTML sanitization interface. It is
// applied to every piece of user-generated content before persistence.
type ContentSanitizerService interface {
	// Sanitize returns a safe version of rawHTML. Only basic formatting
	// tags (p, br, ul, ol, li, blockquote, strong, em, a, img) pass;
	// script, iframe, style and all on* event attributes are removed.
	// img src must be https. Links get target="_blank" and
	// rel="noopener noreferrer". Empty input yields empty output; the
	// function is idempotent.
	Sanitize(rawHTML string) string
}

// contentSanitizer implements ContentSanitizerService. The bluemonday
// policy is safe for concurrent use.
type contentSanitizer struct {
	policy *bluemonday.Policy
}

// NewContentSanitizer builds the sanitizer with the marketplace UGC policy:
// basic formatting only, https-only images, hardened links.
func NewContentSanitizer() *contentSanitizer {
	p := bluemonday.NewPolicy()

	// Simple formatting tags without attributes. Anything not on the
	// allowlist (script, iframe, style, on* attributes) is stripped.
	p.AllowElements(
		"p", "br", "ul", "ol", "li",
		"blockquote", "strong", "em",
	)

	// Links: href only, absolute URLs only, hardened attributes forced.
	p.AllowAttrs("href").OnElements("a")
	p.AllowRelativeURLs(false)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)

	// Images: https src only, alt allowed for accessibility.
	p.AllowAttrs("src").OnElements("img")
	p.AllowAttrs("alt").OnElements("img")
	p.AllowURLSchemeWithCustomPolicy("https", func(u *url.URL) bool {
		return true
	})

	return &contentSanitizer{
		policy: p,
	}
}

// Sanitize returns a safe version of rawHTML.
func (s *contentSanitizer) Sanitize(rawHTML string) string {
	return s.policy.Sanitize(rawHTML)
}
