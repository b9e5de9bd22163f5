package pages

import (
	"context"
	"fmt"

	"github.com/ternarybob/probo/pkg/browser"
)

// Dashboard and home page locators.
var (
	heroSection      = browser.Css("section.hero")
	sidebarNav       = browser.Css("nav")
	demoCredentials  = browser.Css(".demo-credentials")
	apiStatusSection = browser.Css(".api-status")
	tryLoginButton   = browser.XPath(`//a[contains(text(), 'Try Login')] | //button[contains(text(), 'Try Login')]`)
	registerButton   = browser.XPath(`//a[contains(text(), 'Register')] | //button[contains(text(), 'Register')]`)
	footerSection    = browser.Css("footer")
)

// Viewport presets for responsive checks.
type Viewport struct {
	Name   string
	Width  int
	Height int
}

var (
	ViewportDesktop = Viewport{Name: "desktop", Width: 1920, Height: 1080}
	ViewportTablet  = Viewport{Name: "tablet", Width: 768, Height: 1024}
	ViewportMobile  = Viewport{Name: "mobile", Width: 390, Height: 844}
)

// DashboardPage drives the home page and the per-role dashboards.
type DashboardPage struct {
	*Page
}

// NewDashboardPage wraps the base page.
func NewDashboardPage(p *Page) *DashboardPage {
	return &DashboardPage{Page: p}
}

// Open navigates to the home page.
func (dp *DashboardPage) Open(ctx context.Context) error {
	return dp.NavigateTo(ctx, "/")
}

// HeroPresent reports whether the hero section rendered.
func (dp *DashboardPage) HeroPresent(ctx context.Context) bool {
	return dp.IsVisible(ctx, heroSection)
}

// NavPresent reports whether the navigation rendered.
func (dp *DashboardPage) NavPresent(ctx context.Context) bool {
	return dp.IsVisible(ctx, sidebarNav)
}

// NavItems returns the visible navigation labels.
func (dp *DashboardPage) NavItems(ctx context.Context) ([]string, error) {
	var items []string
	err := dp.acc.Evaluate(ctx,
		`Array.from(document.querySelectorAll('.navbar-item, nav a')).map(el => el.textContent.trim()).filter(t => t.length > 0)`,
		&items)
	if err != nil {
		return nil, fmt.Errorf("failed to read navigation items: %w", err)
	}
	return items, nil
}

// HasDemoCredentials reports whether the demo credentials section is shown.
func (dp *DashboardPage) HasDemoCredentials(ctx context.Context) bool {
	return dp.IsPresent(ctx, demoCredentials)
}

// APIStatusText returns the API status section's text.
func (dp *DashboardPage) APIStatusText(ctx context.Context) (string, error) {
	return dp.TextOf(ctx, apiStatusSection)
}

// ClickTryLogin follows the home page's login call-to-action.
func (dp *DashboardPage) ClickTryLogin(ctx context.Context) error {
	return dp.Click(ctx, "click try login", tryLoginButton)
}

// ClickRegister follows the home page's register call-to-action.
func (dp *DashboardPage) ClickRegister(ctx context.Context) error {
	return dp.Click(ctx, "click register", registerButton)
}

// FooterPresent reports whether the footer rendered.
func (dp *DashboardPage) FooterPresent(ctx context.Context) bool {
	return dp.IsPresent(ctx, footerSection)
}

// CheckResponsive resizes the viewport and verifies the page body still
// renders. The screenshot names carry the viewport so captures can be
// compared across sizes.
func (dp *DashboardPage) CheckResponsive(ctx context.Context, vp Viewport) error {
	if err := dp.acc.SetViewport(ctx, vp.Width, vp.Height); err != nil {
		return fmt.Errorf("failed to set %s viewport: %w", vp.Name, err)
	}
	if err := dp.waiter.ForVisible(ctx, browser.Css("body")); err != nil {
		return fmt.Errorf("page did not render at %s size: %w", vp.Name, err)
	}
	dp.Screenshot(ctx, "responsive_"+vp.Name)
	return nil
}
