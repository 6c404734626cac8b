// Package document turns uploaded files into text chunks for embedding.
package document

import (
	"bytes"
	"path"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var paragraphBreak = regexp.MustCompile(`\n[ \t\r]*\n`)

var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Li: true, atom.Br: true, atom.Tr: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Pre: true, atom.Blockquote: true, atom.Section: true, atom.Article: true,
	atom.Header: true, atom.Footer: true, atom.Table: true, atom.Ul: true, atom.Ol: true,
}

// IsHTML reports whether a file should be parsed as markup.
func IsHTML(name, contentType string) bool {
	if strings.HasPrefix(contentType, "text/html") {
		return true
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".html", ".htm":
		return true
	}
	return false
}

// Parse returns the non-empty paragraphs of a file.
func Parse(name, contentType string, data []byte) ([]string, error) {
	text := string(data)
	if IsHTML(name, contentType) {
		var err error
		if text, err = ExtractText(data); err != nil {
			return nil, err
		}
	}
	return Split(text), nil
}

// ExtractText returns the visible text of an HTML document with a blank line
// after every block element.
func ExtractText(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	doc.Find("script, style, noscript, template, head").Remove()

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(strings.Join(strings.Fields(n.Data), " "))
			if strings.TrimSpace(n.Data) != "" {
				sb.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockElements[n.DataAtom] {
			sb.WriteString("\n\n")
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}
	return sb.String(), nil
}

// Split breaks text on blank lines and trims each paragraph.
func Split(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, p := range paragraphBreak.Split(text, -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
