package htmldoc

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

type attrCond struct {
	key      string
	value    string
	hasValue bool
}

// selector is a single compound selector: tag#id.class[attr=value].
type selector struct {
	tag     string
	id      string
	classes []string
	attrs   []attrCond
}

func parseSelector(s string) (selector, error) {
	s = strings.TrimSpace(s)
	var sel selector
	if s == "" || !insideBrackets(s) {
		return sel, fmt.Errorf("%w: %q", ErrUnsupportedSelector, s)
	}

	i := 0
	readIdent := func() string {
		start := i
		for i < len(s) && !strings.ContainsRune("#.[", rune(s[i])) {
			i++
		}
		return s[start:i]
	}

	sel.tag = strings.ToLower(readIdent())
	for i < len(s) {
		switch s[i] {
		case '#':
			i++
			sel.id = readIdent()
		case '.':
			i++
			sel.classes = append(sel.classes, readIdent())
		case '[':
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return sel, fmt.Errorf("%w: unterminated attribute in %q", ErrUnsupportedSelector, s)
			}
			body := s[i+1 : i+end]
			i += end + 1
			key, val, ok := strings.Cut(body, "=")
			cond := attrCond{key: strings.TrimSpace(key)}
			if ok {
				cond.hasValue = true
				cond.value = strings.Trim(strings.TrimSpace(val), `"'`)
			}
			sel.attrs = append(sel.attrs, cond)
		default:
			return sel, fmt.Errorf("%w: %q", ErrUnsupportedSelector, s)
		}
	}
	return sel, nil
}

// insideBrackets reports whether every special character sits inside [...].
func insideBrackets(s string) bool {
	depth := 0
	for _, r := range s {
		switch {
		case r == '[':
			depth++
		case r == ']':
			depth--
		case depth == 0 && strings.ContainsRune(" >+~:,", r):
			return false
		}
	}
	return true
}

func (sel selector) matches(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	if sel.tag != "" && sel.tag != "*" && n.Data != sel.tag {
		return false
	}
	if sel.id != "" && getAttrValue(n, "id") != sel.id {
		return false
	}
	if len(sel.classes) > 0 {
		have := strings.Fields(getAttrValue(n, "class"))
		for _, want := range sel.classes {
			found := false
			for _, c := range have {
				if c == want {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}
	for _, a := range sel.attrs {
		if !hasAttr(n, a.key) {
			return false
		}
		if a.hasValue && getAttrValue(n, a.key) != a.value {
			return false
		}
	}
	return true
}
