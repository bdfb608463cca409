package engine

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dejo1307/pagerepl/internal/jsx"
)

// capturedPage is the body of a captured document with scripts and inline event
// handlers removed. html is
// the same nodes rendered back, the reference the generated page must match.
type capturedPage struct {
	title string
	body  []*html.Node
	html  string
}

// stripped elements carry no visible markup of their own.
var stripped = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Noscript: true,
	atom.Template: true,
}

func parsePage(src string) (*capturedPage, error) {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parsing page html: %w", err)
	}

	page := &capturedPage{}
	if t := find(doc, atom.Title); t != nil && t.FirstChild != nil {
		page.title = strings.TrimSpace(t.FirstChild.Data)
	}
	body := find(doc, atom.Body)
	if body == nil {
		return nil, fmt.Errorf("parsing page html: no body element")
	}
	strip(body)

	var buf bytes.Buffer
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		page.body = append(page.body, c)
		if err := html.Render(&buf, c); err != nil {
			return nil, fmt.Errorf("rendering captured body: %w", err)
		}
	}
	page.html = buf.String()
	return page, nil
}

func find(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, a); found != nil {
			return found
		}
	}
	return nil
}

func strip(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		switch {
		case c.Type == html.CommentNode:
			n.RemoveChild(c)
		case c.Type == html.ElementNode && stripped[c.DataAtom]:
			n.RemoveChild(c)
		default:
			if c.Type == html.ElementNode {
				c.Attr = slices.DeleteFunc(c.Attr, func(a html.Attribute) bool {
					return a.Namespace == "" && jsx.IsEventHandler(a.Key)
				})
			}
			strip(c)
		}
		c = next
	}
}
