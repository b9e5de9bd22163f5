package pages

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PageAnalysis is the structure extracted from a captured page source.
type PageAnalysis struct {
	Title           string
	NavItems        []string
	Headings        []string
	DemoCredentials []DemoCredential
	LinkCount       int
	FormCount       int
}

// DemoCredential is one email/password pair advertised on the home page.
type DemoCredential struct {
	Email    string
	Password string
}

// Analyze parses captured HTML and extracts the structure the smoke
// suites assert on. It works offline on a saved page source, so failures
// can be diagnosed without re-driving the browser.
func Analyze(html string) (*PageAnalysis, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page source: %w", err)
	}

	analysis := &PageAnalysis{
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
	}

	seen := make(map[string]bool)
	doc.Find(".navbar-item, nav a").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text == "" || seen[text] {
			return
		}
		seen[text] = true
		analysis.NavItems = append(analysis.NavItems, text)
	})

	doc.Find("h1, h2, h3").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text != "" {
			analysis.Headings = append(analysis.Headings, text)
		}
	})

	analysis.DemoCredentials = extractDemoCredentials(doc)
	analysis.LinkCount = doc.Find("a[href]").Length()
	analysis.FormCount = doc.Find("form").Length()

	return analysis, nil
}

// extractDemoCredentials pulls email/password pairs out of the demo
// credentials section. The section lists each account as text containing
// an email address followed by a password token.
func extractDemoCredentials(doc *goquery.Document) []DemoCredential {
	var creds []DemoCredential
	doc.Find(".demo-credentials .credential, .demo-credentials li, .demo-credentials p").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		cred := parseCredentialLine(text)
		if cred != nil {
			creds = append(creds, *cred)
		}
	})
	return creds
}

// parseCredentialLine splits a line like "admin@iotplatform.com / Admin123!"
// or "Email: admin@iotplatform.com Password: Admin123!" into its parts.
func parseCredentialLine(text string) *DemoCredential {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ' ' || r == '/' || r == '|' || r == '\n' || r == '\t'
	})

	var email, password string
	for i, f := range fields {
		f = strings.Trim(f, ",;:")
		if email == "" && strings.Count(f, "@") == 1 && strings.Contains(f, ".") {
			email = f
			// Password follows the email, skipping any label token.
			for _, next := range fields[i+1:] {
				next = strings.Trim(next, ",;")
				if next == "" || strings.EqualFold(next, "password") || strings.EqualFold(next, "password:") {
					continue
				}
				password = next
				break
			}
			break
		}
	}

	if email == "" || password == "" {
		return nil
	}
	return &DemoCredential{Email: email, Password: password}
}

// HasNavItem reports whether the analysis contains a nav entry matching
// name, case-insensitively.
func (a *PageAnalysis) HasNavItem(name string) bool {
	for _, item := range a.NavItems {
		if strings.EqualFold(item, name) {
			return true
		}
	}
	return false
}

// HasHeadingContaining reports whether any heading contains the given
// substring, case-insensitively.
func (a *PageAnalysis) HasHeadingContaining(substr string) bool {
	needle := strings.ToLower(substr)
	for _, h := range a.Headings {
		if strings.Contains(strings.ToLower(h), needle) {
			return true
		}
	}
	return false
}
