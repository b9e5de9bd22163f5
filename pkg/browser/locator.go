package browser

import "fmt"

// Strategy selects how a Locator's selector is interpreted.
type Strategy string

const (
	StrategyCSS   Strategy = "css"
	StrategyID    Strategy = "id"
	StrategyXPath Strategy = "xpath"
)

// Locator identifies zero or one DOM element within the current document.
// It is an immutable value; resolution happens at interaction time.
type Locator struct {
	Strategy Strategy
	Selector string
}

// Css returns a CSS query locator.
func Css(selector string) Locator {
	return Locator{Strategy: StrategyCSS, Selector: selector}
}

// ID returns a locator matching an element id.
func ID(id string) Locator {
	return Locator{Strategy: StrategyID, Selector: id}
}

// XPath returns an XPath locator.
func XPath(expr string) Locator {
	return Locator{Strategy: StrategyXPath, Selector: expr}
}

// IsZero reports whether the locator is unset.
func (l Locator) IsZero() bool {
	return l.Strategy == "" && l.Selector == ""
}

func (l Locator) String() string {
	return fmt.Sprintf("%s=%s", l.Strategy, l.Selector)
}
