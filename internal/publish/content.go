// Package publish sends finished drafts to the WordPress site.
package publish

import (
	"fmt"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/votewire/autopost/internal/domain"
)

// BuildContent assembles the final post body. The candidate media figure is
// prepended when the draft carries a usable image and the body has no figure
// yet; the Sources section is appended unless the body already has one.
func BuildContent(draft *domain.Draft) string {
	content := strings.TrimSpace(draft.ContentHTML)

	if media := mediaSection(draft.CandidateProfile); media != "" && !hasFigure(content) {
		content = media + "\n\n" + content
	}

	if sources := sourcesSection(draft.Sources); sources != "" && !hasSourcesHeading(content) {
		content = content + "\n\n" + sources
	}

	return content
}

// mediaSection renders the candidate photo as a figure with caption and
// credit. Drafts without a usable image URL get no media section.
func mediaSection(profile domain.CandidateProfile) string {
	imageURL := strings.TrimSpace(profile.ProfileImageURL)
	if !strings.HasPrefix(imageURL, "http") {
		return ""
	}

	name := strings.TrimSpace(profile.CandidateName)
	credit := strings.TrimSpace(profile.ProfileImageCredit)

	parts := make([]string, 0, 2)
	if name != "" {
		parts = append(parts, html.EscapeString(name))
	}
	if credit != "" {
		parts = append(parts, html.EscapeString(credit))
	}
	caption := strings.Join(parts, " - ")
	if caption == "" {
		caption = "Candidate photo"
	}

	if sourceURL := strings.TrimSpace(profile.ProfileImageSourceURL); strings.HasPrefix(sourceURL, "http") {
		caption = fmt.Sprintf(
			`%s (source: <a href="%s" rel="nofollow noopener" target="_blank">link</a>)`,
			caption, html.EscapeString(sourceURL))
	}

	alt := name
	if alt == "" {
		alt = "Candidate"
	}

	var b strings.Builder
	b.WriteString("<figure>\n")
	fmt.Fprintf(&b, `  <img src="%s" alt="%s" loading="lazy">`+"\n",
		html.EscapeString(imageURL), html.EscapeString(alt))
	fmt.Fprintf(&b, "  <figcaption>%s</figcaption>\n", caption)
	b.WriteString("</figure>")
	return b.String()
}

// sourcesSection renders the citation list as an ordered list under an h2.
// Sources without an http(s) URL are dropped; the link label is the
// publisher with the domain in parentheses.
func sourcesSection(sources []domain.Source) string {
	items := make([]string, 0, len(sources))
	for _, source := range sources {
		url := strings.TrimSpace(source.URL)
		if !strings.HasPrefix(url, "http") {
			continue
		}

		domainName := source.ResolvedDomain()
		publisher := strings.TrimSpace(source.Publisher)
		if publisher == "" {
			publisher = domainName
		}
		label := strings.TrimSpace(publisher + " (" + domainName + ")")

		items = append(items, fmt.Sprintf(
			`<li><a href="%s" rel="nofollow noopener" target="_blank">%s</a></li>`,
			html.EscapeString(url), html.EscapeString(label)))
	}

	if len(items) == 0 {
		return ""
	}
	return "<h2>Sources</h2>\n<ol>\n" + strings.Join(items, "\n") + "\n</ol>"
}

// hasFigure reports whether the body already carries a figure element.
// Unparseable HTML is treated as carrying none.
func hasFigure(contentHTML string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(contentHTML))
	if err != nil {
		return false
	}
	return doc.Find("figure").Length() > 0
}

// hasSourcesHeading reports whether an h2 titled "Sources" is already
// present, so a model-written section is never duplicated.
func hasSourcesHeading(contentHTML string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(contentHTML))
	if err != nil {
		return false
	}

	found := false
	doc.Find("h2").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if strings.EqualFold(strings.TrimSpace(sel.Text()), "Sources") {
			found = true
			return false
		}
		return true
	})
	return found
}
