package report

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/rohmanhakim/nps-crawler/internal/pipeline"
)

// RenderMarkdown lays a pipeline result out as one section per site.
func RenderMarkdown(result pipeline.Result) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", escape(title(result.State)))
	fmt.Fprintf(&buf, "Source: <%s>\n\n", result.StateURL.String())

	if len(result.Sites) == 0 {
		buf.WriteString("No sites listed.\n")
		return buf.Bytes()
	}

	for i, s := range result.Sites {
		fmt.Fprintf(&buf, "## %d. %s\n\n", i+1, escape(s.Site.Name))
		fmt.Fprintf(&buf, "%s\n\n", escape(s.Site.Info()))
		fmt.Fprintf(&buf, "- Category: %s\n", escape(s.Site.Category))
		fmt.Fprintf(&buf, "- Address: %s\n", escape(s.Site.Address))
		fmt.Fprintf(&buf, "- Zip code: %s\n", escape(s.Site.ZipCode))
		fmt.Fprintf(&buf, "- Phone: %s\n", escape(s.Site.Phone))
		if s.Site.URL.Host != "" {
			fmt.Fprintf(&buf, "- Page: <%s>\n", s.Site.URL.String())
		}
		if s.Nearby != "" {
			buf.WriteString("\n### Nearby\n\n")
			buf.WriteString(nearbyItem(s.Nearby))
			buf.WriteString("\n")
		}
		buf.WriteString("\n")
	}
	return buf.Bytes()
}

// RenderHTML converts the markdown report into a standalone page.
func RenderHTML(result pipeline.Result) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Title: title(result.State),
		Flags: mdhtml.CommonFlags | mdhtml.CompletePage,
	})
	return markdown.ToHTML(RenderMarkdown(result), p, renderer)
}

func title(state string) string {
	return "National sites in " + capitalize(state)
}

func capitalize(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		first, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(first)) + w[size:]
	}
	return strings.Join(words, " ")
}

// scraped text is literal; markdown syntax inside it must not render
var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	">", `\>`,
	"#", `\#`,
	"|", `\|`,
)

func escape(s string) string {
	return markdownEscaper.Replace(s)
}

// nearbyItem keeps the list marker of a formatted place line and escapes
// the rest.
func nearbyItem(line string) string {
	if rest, ok := strings.CutPrefix(line, "- "); ok {
		return "- " + escape(rest)
	}
	return escape(line)
}
