package extractor

import (
	"io"
	"net/url"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/tagmarks/tagmarks-server/internal/domain"
)

// Parse derives title, image and excerpt from an HTML document.
// pageURL is used to make the og:image and img src absolute.
func Parse(r io.Reader, pageURL string, opts Options) domain.PageContent {
	doc, err := html.Parse(r)
	if err != nil {
		return domain.PageContent{URL: pageURL}
	}

	base, _ := url.Parse(pageURL)

	return domain.PageContent{
		URL:      pageURL,
		Title:    findTitle(doc),
		ImageURL: findImage(doc, base),
		Excerpt:  buildExcerpt(doc, opts),
	}
}

// findTitle: og:title, then meta name=title, then <title>.
func findTitle(doc *html.Node) string {
	if t := metaContent(doc, "property", "og:title"); t != "" {
		return t
	}
	if t := metaContent(doc, "name", "title"); t != "" {
		return t
	}
	if n := findFirst(doc, func(n *html.Node) bool { return n.DataAtom == atom.Title }); n != nil {
		return strings.TrimSpace(textOf(n))
	}
	return ""
}

// findImage: og:image, then the first <img> with a src.
func findImage(doc *html.Node, base *url.URL) string {
	if img := metaContent(doc, "property", "og:image"); img != "" {
		return resolve(base, img)
	}
	n := findFirst(doc, func(n *html.Node) bool {
		return n.DataAtom == atom.Img && strings.TrimSpace(attr(n, "src")) != ""
	})
	if n != nil {
		return resolve(base, strings.TrimSpace(attr(n, "src")))
	}
	return ""
}

// buildExcerpt joins the visible text that survives the denylist and
// truncates it to opts.MaxExcerpt runes.
func buildExcerpt(doc *html.Node, opts Options) string {
	patterns := make([]string, 0, len(opts.Denylist))
	for _, p := range opts.Denylist {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			patterns = append(patterns, p)
		}
	}

	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if s := strings.TrimSpace(n.Data); s != "" {
				parts = append(parts, s)
			}
			return
		case html.ElementNode:
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript, atom.Template, atom.Svg:
				return
			}
			if n.Namespace == "svg" {
				return
			}
			if denied(n, patterns) {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return truncateRunes(strings.Join(parts, " "), opts.MaxExcerpt)
}

// denied reports whether the element's class list or id contains any pattern.
func denied(n *html.Node, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	class := strings.ToLower(strings.Join(strings.Fields(attr(n, "class")), " "))
	id := strings.ToLower(attr(n, "id"))
	if class == "" && id == "" {
		return false
	}
	for _, p := range patterns {
		if (class != "" && strings.Contains(class, p)) || (id != "" && strings.Contains(id, p)) {
			return true
		}
	}
	return false
}

// metaContent returns the trimmed content of the first <meta key="value">.
func metaContent(doc *html.Node, key, value string) string {
	n := findFirst(doc, func(n *html.Node) bool {
		return n.DataAtom == atom.Meta && strings.EqualFold(attr(n, key), value)
	})
	if n == nil {
		return ""
	}
	return strings.TrimSpace(attr(n, "content"))
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func resolve(base *url.URL, ref string) string {
	if base == nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}
