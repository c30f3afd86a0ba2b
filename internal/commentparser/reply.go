package commentparser

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	requestPattern = regexp.MustCompile(`(?i)link(ffn|ao3|ffa|fp|aff)\(([^)]*)\)`)
	urlPattern     = regexp.MustCompile(`https?://[^\s()\[\]<>"']+`)
	numericID      = regexp.MustCompile(`^\d+$`)
)

type request struct {
	site  site
	query string
}

// DirectLinks turns a story URL into link requests, e.g.
// "https://www.fanfiction.net/s/123/1/" becomes "linkffn(123)".
func DirectLinks(rawURL string) []string {
	var out []string
	for _, s := range sites {
		if m := s.urlID.FindStringSubmatch(rawURL); m != nil {
			out = append(out, s.request(m[1]))
		}
	}
	return out
}

// FormulateReply builds a markdown reply for every link request found in
// body and additions. It returns "" when nothing was requested or the body
// asks to be ignored. Nil markers are parsed from body.
func FormulateReply(body string, markers Markers, additions []string) string {
	if markers == nil {
		markers = ParseMarkers(body)
	}
	if markers.Has(MarkerIgnore) {
		return ""
	}
	sources := append([]string{body}, additions...)
	if markers.Has(MarkerDirectLinks) {
		for _, u := range urlPattern.FindAllString(body, -1) {
			sources = append(sources, DirectLinks(u)...)
		}
	}

	var requests []request
	seen := map[string]bool{}
	distinct := !markers.Has(MarkerNoDistinct)
	for _, src := range sources {
		for _, m := range requestPattern.FindAllStringSubmatch(src, -1) {
			s, ok := siteByKey(strings.ToLower(m[1]))
			if !ok {
				continue
			}
			for _, q := range strings.Split(m[2], ";") {
				q = strings.TrimSpace(q)
				if q == "" {
					continue
				}
				key := s.key + "\x00" + strings.ToLower(q)
				if distinct && seen[key] {
					continue
				}
				seen[key] = true
				requests = append(requests, request{site: s, query: q})
			}
		}
	}

	lines := make([]string, 0, len(requests))
	for _, r := range requests {
		lines = append(lines, r.render())
	}
	return strings.Join(lines, "\n\n")
}

func (r request) render() string {
	if numericID.MatchString(r.query) {
		return fmt.Sprintf("**%s** story %s: [%s](%s)", r.site.name, r.query, r.query, fmt.Sprintf(r.site.storyURL, r.query))
	}
	return fmt.Sprintf("**%s** search for *%s*: [results](%s)", r.site.name, escapeMarkdown(r.query), r.site.searchURL(r.query))
}

var markdownEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `_`, `\_`, `[`, `\[`, `]`, `\]`, "`", "\\`")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// Formatter exposes the package functions as methods so it can serve as both
// the reply formulator and the marker parser.
type Formatter struct{}

func (Formatter) FormulateReply(body string, markers Markers, additions []string) string {
	return FormulateReply(body, markers, additions)
}

func (Formatter) ParseMarkers(body string) Markers {
	return ParseMarkers(body)
}

func (Formatter) DirectLinks(rawURL string) []string {
	return DirectLinks(rawURL)
}
