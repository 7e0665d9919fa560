package fakeapp

import (
	"fmt"
	"strconv"
	"strings"
)

type matcher func(*node) bool

// compileQuery turns a find-element request into a node predicate. Only the
// query shapes the suite sends are understood:
//
//	id:                   full resource ID, or the part after ":id/"
//	xpath:                //Class or //* with [@attr=literal (and @attr=literal)*]
//	-android uiautomator: [new UiSelector()].method("arg")...
func compileQuery(using, value string) (matcher, error) {
	switch using {
	case "id":
		return matchID(value), nil
	case "xpath":
		return compileXPath(value)
	case "-android uiautomator":
		return compileUISelector(value)
	default:
		return nil, fmt.Errorf("locator strategy %q is not supported", using)
	}
}

func matchID(id string) matcher {
	return func(n *node) bool {
		if n.ResourceID == "" {
			return false
		}
		return n.ResourceID == id || strings.HasSuffix(n.ResourceID, ":id/"+id)
	}
}

// attribute returns the named UiAutomator2 attribute of a node.
func attribute(n *node, name string) (string, bool) {
	switch name {
	case "text":
		return n.Text, true
	case "resource-id", "resourceId":
		return n.ResourceID, true
	case "class", "className":
		return n.Class, true
	case "displayed":
		return strconv.FormatBool(!n.Hidden), true
	case "enabled":
		return strconv.FormatBool(!n.Disabled), true
	default:
		return "", false
	}
}

// XPath

type xpathParser struct {
	src string
	pos int
}

func compileXPath(expr string) (matcher, error) {
	p := &xpathParser{src: strings.TrimSpace(expr)}

	if !p.consume("//") {
		return nil, p.errorf("expected //")
	}
	class := p.name()
	if class == "" {
		return nil, p.errorf("expected element name")
	}

	type predicate struct {
		attr  string
		value string
	}
	var preds []predicate

	for p.consume("[") {
		for {
			p.skipSpace()
			if !p.consume("@") {
				return nil, p.errorf("expected @attribute")
			}
			attr := p.name()
			if attr == "" {
				return nil, p.errorf("expected attribute name")
			}
			p.skipSpace()
			if !p.consume("=") {
				return nil, p.errorf("expected =")
			}
			p.skipSpace()
			lit, err := p.literal()
			if err != nil {
				return nil, err
			}
			preds = append(preds, predicate{attr: attr, value: lit})

			p.skipSpace()
			if !p.consume("and") {
				break
			}
		}
		p.skipSpace()
		if !p.consume("]") {
			return nil, p.errorf("expected ]")
		}
	}
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected trailing input")
	}

	return func(n *node) bool {
		if class != "*" && n.Class != class {
			return false
		}
		for _, pr := range preds {
			v, ok := attribute(n, pr.attr)
			if !ok || v != pr.value {
				return false
			}
		}
		return true
	}, nil
}

func (p *xpathParser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("xpath %q at offset %d: %s", p.src, p.pos, fmt.Sprintf(format, args...))
}

func (p *xpathParser) consume(tok string) bool {
	if strings.HasPrefix(p.src[p.pos:], tok) {
		p.pos += len(tok)
		return true
	}
	return false
}

func (p *xpathParser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *xpathParser) name() string {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '*' && p.pos == start {
			p.pos++
			break
		}
		if c == '.' || c == '-' || c == '_' || c == ':' ||
			(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos]
}

// literal reads 'x', "x" or concat(lit, lit, ...).
func (p *xpathParser) literal() (string, error) {
	if p.consume("concat(") {
		var b strings.Builder
		for {
			p.skipSpace()
			part, err := p.quoted()
			if err != nil {
				return "", err
			}
			b.WriteString(part)
			p.skipSpace()
			if p.consume(")") {
				return b.String(), nil
			}
			if !p.consume(",") {
				return "", p.errorf("expected , or ) in concat")
			}
		}
	}
	return p.quoted()
}

func (p *xpathParser) quoted() (string, error) {
	if p.pos >= len(p.src) {
		return "", p.errorf("expected string literal")
	}
	q := p.src[p.pos]
	if q != '\'' && q != '"' {
		return "", p.errorf("expected string literal")
	}
	end := strings.IndexByte(p.src[p.pos+1:], q)
	if end < 0 {
		return "", p.errorf("unterminated string literal")
	}
	s := p.src[p.pos+1 : p.pos+1+end]
	p.pos += end + 2
	return s, nil
}

// UiSelector

func compileUISelector(expr string) (matcher, error) {
	src := strings.TrimSpace(expr)
	src = strings.TrimPrefix(src, "new UiSelector()")

	var preds []matcher
	for len(src) > 0 {
		if src[0] != '.' {
			return nil, fmt.Errorf("uiselector %q: expected .method(...)", expr)
		}
		open := strings.IndexByte(src, '(')
		if open < 0 {
			return nil, fmt.Errorf("uiselector %q: expected (", expr)
		}
		method := src[1:open]

		arg, rest, err := selectorArg(src[open+1:])
		if err != nil {
			return nil, fmt.Errorf("uiselector %q: %w", expr, err)
		}
		src = strings.TrimSpace(rest)

		m, err := selectorMethod(method, arg)
		if err != nil {
			return nil, fmt.Errorf("uiselector %q: %w", expr, err)
		}
		preds = append(preds, m)
	}
	if len(preds) == 0 {
		return nil, fmt.Errorf("uiselector %q: no criteria", expr)
	}

	return func(n *node) bool {
		for _, m := range preds {
			if !m(n) {
				return false
			}
		}
		return true
	}, nil
}

// selectorArg reads a Java string literal or bare token up to the closing
// parenthesis and returns the remaining input.
func selectorArg(s string) (string, string, error) {
	s = strings.TrimLeft(s, " ")
	if strings.HasPrefix(s, `"`) {
		var b strings.Builder
		for i := 1; i < len(s); i++ {
			switch c := s[i]; c {
			case '\\':
				if i+1 >= len(s) {
					return "", "", fmt.Errorf("dangling escape")
				}
				i++
				b.WriteByte(s[i])
			case '"':
				rest := strings.TrimLeft(s[i+1:], " ")
				if !strings.HasPrefix(rest, ")") {
					return "", "", fmt.Errorf("expected )")
				}
				return b.String(), rest[1:], nil
			default:
				b.WriteByte(c)
			}
		}
		return "", "", fmt.Errorf("unterminated string")
	}

	end := strings.IndexByte(s, ')')
	if end < 0 {
		return "", "", fmt.Errorf("expected )")
	}
	return strings.TrimSpace(s[:end]), s[end+1:], nil
}

func selectorMethod(method, arg string) (matcher, error) {
	switch method {
	case "text":
		return func(n *node) bool { return n.Text == arg }, nil
	case "textContains":
		return func(n *node) bool { return strings.Contains(n.Text, arg) }, nil
	case "textStartsWith":
		return func(n *node) bool { return strings.HasPrefix(n.Text, arg) }, nil
	case "resourceId":
		return func(n *node) bool { return n.ResourceID == arg }, nil
	case "className":
		return func(n *node) bool { return n.Class == arg }, nil
	case "enabled":
		want, err := strconv.ParseBool(arg)
		if err != nil {
			return nil, fmt.Errorf("enabled(%s): %w", arg, err)
		}
		return func(n *node) bool { return !n.Disabled == want }, nil
	default:
		return nil, fmt.Errorf("unsupported method %s", method)
	}
}
