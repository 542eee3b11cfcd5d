// Package htmldoc is a static host document backed by golang.org/x/net/html.
// It serves saved pages to the extractor and question resolver when no live
// browser is involved (CLI, HTTP API, terminal preview).
package htmldoc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"formsuggest/internal/field"

	"golang.org/x/net/html"
)

// ErrUnsupportedSelector is returned for selectors beyond a single compound
// (tag, #id, .class, [attr], [attr=value]).
var ErrUnsupportedSelector = errors.New("unsupported selector")

// Document is a parsed HTML page.
type Document struct {
	root   *html.Node
	fields []field.Field
	nodes  map[string]*html.Node
}

// Parse reads and parses an HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	d := &Document{root: root, nodes: make(map[string]*html.Node)}
	d.indexFields()
	return d, nil
}

// ParseString parses an HTML string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Load parses an HTML file from disk.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// TextOf returns the text of the first element matching selector.
func (d *Document) TextOf(_ context.Context, selector string) (string, error) {
	sel, err := parseSelector(selector)
	if err != nil {
		return "", err
	}
	n := findFirst(d.root, sel.matches)
	if n == nil {
		return "", nil
	}
	return getTextContent(n, false), nil
}

// VisibleBodyText returns body text minus script, style, noscript and
// aria-hidden subtrees.
func (d *Document) VisibleBodyText(_ context.Context) (string, error) {
	body := findFirst(d.root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "body"
	})
	if body == nil {
		return "", nil
	}
	return getTextContent(body, true), nil
}

// LabelFor returns the text of the <label for=id>, if any.
func (d *Document) LabelFor(_ context.Context, id string) (string, error) {
	if id == "" {
		return "", nil
	}
	n := findFirst(d.root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "label" && getAttrValue(n, "for") == id
	})
	if n == nil {
		return "", nil
	}
	return strings.TrimSpace(getTextContent(n, false)), nil
}

// Fields returns every input and textarea in document order.
func (d *Document) Fields() []field.Field {
	out := make([]field.Field, len(d.fields))
	copy(out, d.fields)
	return out
}

// Field returns the field with the given ref.
func (d *Document) Field(ref string) (field.Field, bool) {
	for _, f := range d.fields {
		if f.Ref == ref {
			return f, true
		}
	}
	return field.Field{}, false
}

// Find returns the first field matching a selector such as "#email" or
// "input[name=q]".
func (d *Document) Find(selector string) (field.Field, error) {
	sel, err := parseSelector(selector)
	if err != nil {
		return field.Field{}, err
	}
	for _, f := range d.fields {
		if sel.matches(d.nodes[f.Ref]) {
			return f, nil
		}
	}
	return field.Field{}, fmt.Errorf("no field matches %q", selector)
}

// SetValue updates the stored value of a field.
func (d *Document) SetValue(ref, value string) error {
	for i := range d.fields {
		if d.fields[i].Ref == ref {
			d.fields[i].Value = value
			return nil
		}
	}
	return fmt.Errorf("unknown field ref %q", ref)
}

func (d *Document) indexFields() {
	var walk func(n *html.Node, form *html.Node, hidden bool)
	walk = func(n *html.Node, form *html.Node, hidden bool) {
		if n.Type == html.ElementNode {
			if n.Data == "form" {
				form = n
			}
			if hasAttr(n, "hidden") || strings.Contains(strings.ReplaceAll(getAttrValue(n, "style"), " ", ""), "display:none") {
				hidden = true
			}
			if n.Data == "input" || n.Data == "textarea" {
				ref := "html-" + strconv.Itoa(len(d.fields)+1)
				d.nodes[ref] = n
				d.fields = append(d.fields, toField(ref, n, form, hidden))
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, form, hidden)
		}
	}
	walk(d.root, nil, false)
}

func toField(ref string, n, form *html.Node, hidden bool) field.Field {
	f := field.Field{
		Ref:         ref,
		Tag:         n.Data,
		ID:          getAttrValue(n, "id"),
		Name:        getAttrValue(n, "name"),
		ClassName:   getAttrValue(n, "class"),
		Type:        getAttrValue(n, "type"),
		Placeholder: getAttrValue(n, "placeholder"),
		AriaLabel:   getAttrValue(n, "aria-label"),
		Title:       getAttrValue(n, "title"),
		Disabled:    hasAttr(n, "disabled"),
		Visible:     !hidden,
	}
	if n.Data == "textarea" {
		f.Value = getTextContent(n, false)
	} else {
		f.Value = getAttrValue(n, "value")
	}
	if form != nil {
		f.FormID = getAttrValue(form, "id")
		f.FormName = getAttrValue(form, "name")
	}
	return f
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

// getAttrValue returns the value of an attribute.
func getAttrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return true
		}
	}
	return false
}

var invisibleTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

// getTextContent returns all text within a node, space separated.
// With visibleOnly, invisible tags and aria-hidden subtrees are skipped.
func getTextContent(n *html.Node, visibleOnly bool) string {
	var sb strings.Builder
	var getText func(*html.Node)
	getText = func(n *html.Node) {
		if visibleOnly && n.Type == html.ElementNode {
			if invisibleTags[n.Data] || getAttrValue(n, "aria-hidden") == "true" {
				return
			}
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			getText(c)
		}
	}
	getText(n)
	return strings.TrimSpace(sb.String())
}
