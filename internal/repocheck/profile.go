package repocheck

import (
	"strings"

	"golang.org/x/net/html"
)

// MarkupProfile is the static metadata attached to each audited file.
type MarkupProfile struct {
	HTMLVersion string
	Title       string
}

// ProfileMarkup tokenizes the raw markup once and extracts the declared
// HTML version and document title. It never fails: unparseable input simply
// yields an Unknown version and an empty title.
func ProfileMarkup(markup string) MarkupProfile {
	profile := MarkupProfile{HTMLVersion: "Unknown"}

	z := html.NewTokenizer(strings.NewReader(markup))
	var inTitle bool

	for {
		switch z.Next() {
		case html.ErrorToken:
			// EOF and malformed input alike end the scan.
			return profile

		case html.DoctypeToken:
			profile.HTMLVersion = htmlVersion(z.Token())

		case html.StartTagToken:
			tn, _ := z.TagName()
			if string(tn) == "title" {
				inTitle = true
			}

		case html.TextToken:
			if inTitle {
				profile.Title = strings.TrimSpace(string(z.Text()))
				inTitle = false
			}

		case html.EndTagToken:
			tn, _ := z.TagName()
			if string(tn) == "title" {
				inTitle = false
			}
		}
	}
}

// htmlVersion maps a doctype token to a version label.
// HTML5 has no PUBLIC identifier; legacy doctypes carry a DTD reference.
// https://www.w3.org/QA/2002/04/valid-dtd-list.html
func htmlVersion(token html.Token) string {
	data := strings.ToLower(token.Data)

	if !strings.Contains(data, "public") {
		return "HTML5"
	}

	switch {
	case strings.Contains(data, "xhtml 1.1") || strings.Contains(data, "xhtml basic 1.1"):
		return "XHTML 1.1"
	case strings.Contains(data, "xhtml 1.0"):
		return "XHTML 1.0"
	case strings.Contains(data, "html 4.01"):
		return "HTML 4.01"
	default:
		return "Unknown"
	}
}
