// Package locator describes how a UI element is found: a strategy and the
// query string that is only meaningful under that strategy.
package locator

import (
	"fmt"
	"strings"

	"github.com/devicelab-dev/loginmodule-e2e/pkg/core"
)

// Strategy selects how the automation server resolves a locator value.
type Strategy int

const (
	// XPath resolves the value as an XPath expression over the UI hierarchy.
	XPath Strategy = iota
	// ID resolves the value as a resource ID (Android) or accessibility ID.
	ID
	// UISelector resolves the value as an Android UiAutomator selector expression.
	UISelector
)

// W3C "using" values sent to the Appium server.
const (
	usingXPath      = "xpath"
	usingID         = "id"
	usingUISelector = "-android uiautomator"
)

// String returns the name accepted by ParseStrategy.
func (s Strategy) String() string {
	switch s {
	case XPath:
		return "xpath"
	case ID:
		return "id"
	case UISelector:
		return "uiselector"
	default:
		return "unknown"
	}
}

// Using returns the W3C locator strategy name for the find-element request.
func (s Strategy) Using() (string, error) {
	switch s {
	case XPath:
		return usingXPath, nil
	case ID:
		return usingID, nil
	case UISelector:
		return usingUISelector, nil
	default:
		return "", core.ErrInvalidLocator.WithMessage(fmt.Sprintf("unknown locator strategy %d", int(s)))
	}
}

// ParseStrategy parses a strategy name (xpath, id, uiselector), case-insensitively.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "xpath":
		return XPath, nil
	case "id":
		return ID, nil
	case "uiselector", "uiautomator", "android-uiautomator":
		return UISelector, nil
	default:
		return 0, core.ErrInvalidLocator.WithMessage(fmt.Sprintf("unknown locator strategy %q (want xpath, id or uiselector)", name))
	}
}

// Locator identifies one UI element. Values are plain data and never mutated.
type Locator struct {
	Strategy Strategy
	Value    string
}

// ByXPath returns an XPath locator.
func ByXPath(expr string) Locator {
	return Locator{Strategy: XPath, Value: expr}
}

// ByID returns a resource-ID locator.
func ByID(id string) Locator {
	return Locator{Strategy: ID, Value: id}
}

// ByUISelector returns a UiAutomator selector locator.
func ByUISelector(expr string) Locator {
	return Locator{Strategy: UISelector, Value: expr}
}

// Describe returns a human-readable description for logs and errors.
func (l Locator) Describe() string {
	return fmt.Sprintf("%s=%s", l.Strategy, l.Value)
}

// Query returns the W3C using/value pair for a find-element request.
func (l Locator) Query() (using, value string, err error) {
	using, err = l.Strategy.Using()
	if err != nil {
		return "", "", err
	}
	if l.Value == "" {
		return "", "", core.ErrInvalidLocator.WithMessage("empty locator value for strategy " + l.Strategy.String())
	}
	return using, l.Value, nil
}

// TextView locates an android.widget.TextView whose text equals text exactly.
func TextView(text string) Locator {
	return ByXPath(fmt.Sprintf("//android.widget.TextView[@text=%s]", XPathLiteral(text)))
}

// XPathLiteral quotes s as an XPath 1.0 string literal. XPath has no escape
// sequences, so strings holding both quote kinds are built with concat().
func XPathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}

	parts := strings.Split(s, "'")
	args := make([]string, 0, 2*len(parts)-1)
	for i, p := range parts {
		if i > 0 {
			args = append(args, `"'"`)
		}
		if p != "" {
			args = append(args, "'"+p+"'")
		}
	}
	return "concat(" + strings.Join(args, ", ") + ")"
}

// UISelectorString quotes s as a Java string literal for UiSelector expressions.
func UISelectorString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// UISelectorText locates an element whose text equals text exactly.
func UISelectorText(text string) Locator {
	return ByUISelector(".text(" + UISelectorString(text) + ")")
}
