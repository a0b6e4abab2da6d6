package extractor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func parse(doc string) (title, image, excerpt string) {
	p := Parse(strings.NewReader(doc), "https://example.com/articles/1", DefaultOptions())
	return p.Title, p.ImageURL, p.Excerpt
}

func TestParse_TitlePrecedence(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "og title wins",
			doc: `<html><head><title>Doc</title><meta name="title" content="Meta">
				<meta property="og:title" content="Open Graph"></head></html>`,
			want: "Open Graph",
		},
		{
			name: "meta title before document title",
			doc:  `<html><head><title>Doc</title><meta name="title" content="Meta"></head></html>`,
			want: "Meta",
		},
		{
			name: "document title",
			doc:  `<html><head><title>  Doc Title  </title></head></html>`,
			want: "Doc Title",
		},
		{
			name: "no title",
			doc:  `<html><body><p>text</p></body></html>`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, _, _ := parse(tt.doc)
			assert.Equal(t, tt.want, title)
		})
	}
}

func TestParse_ImagePrecedence(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "relative og image is made absolute",
			doc:  `<html><head><meta property="og:image" content="/img/cover.png"></head><body><img src="first.png"></body></html>`,
			want: "https://example.com/img/cover.png",
		},
		{
			name: "absolute og image kept",
			doc:  `<html><head><meta property="og:image" content="https://cdn.example.org/x.jpg"></head></html>`,
			want: "https://cdn.example.org/x.jpg",
		},
		{
			name: "first img src",
			doc:  `<html><body><img alt="none"><img src="https://example.com/a.png"><img src="b.png"></body></html>`,
			want: "https://example.com/a.png",
		},
		{
			name: "no image",
			doc:  `<html><body><p>text</p></body></html>`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, image, _ := parse(tt.doc)
			assert.Equal(t, tt.want, image)
		})
	}
}

func TestParse_ExcerptDropsDeniedRegions(t *testing.T) {
	doc := `<html><body>
		<div class="site-nav">Home About</div>
		<div id="cookie-banner">We use cookies</div>
		<article>
			<h1>Real   heading</h1>
			<p>First paragraph.</p>
			<div class="share-buttons"><a>Tweet this</a></div>
			<p>Second paragraph.</p>
		</article>
		<section class="Comments">Nice post!</section>
		<script>var tracking = 1;</script>
		<style>p { color: red }</style>
	</body></html>`

	_, _, excerpt := parse(doc)

	assert.Equal(t, "Real   heading First paragraph. Second paragraph.", excerpt)
}

func TestParse_ExcerptDropsSVG(t *testing.T) {
	doc := `<html><body>
		<svg viewBox="0 0 10 10"><title>icon-label</title><text>chart text</text></svg>
		<p>Body copy</p>
	</body></html>`

	_, _, excerpt := parse(doc)

	assert.Equal(t, "Body copy", excerpt)
}

func TestParse_ExcerptTruncatesByRunes(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxExcerpt = 5

	p := Parse(strings.NewReader(`<p>héllo wörld</p>`), "https://example.com", opts)

	assert.Equal(t, "héllo", p.Excerpt)
}

func TestParse_CustomDenylist(t *testing.T) {
	opts := DefaultOptions()
	opts.Denylist = []string{"skipme"}

	p := Parse(strings.NewReader(`<div class="nav">kept</div><div id="SkipMe-now">gone</div>`), "https://example.com", opts)

	assert.Equal(t, "kept", p.Excerpt)
}
