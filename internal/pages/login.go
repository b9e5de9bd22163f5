package pages

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/probo/internal/report"
	"github.com/ternarybob/probo/internal/users"
	"github.com/ternarybob/probo/pkg/browser"
)

// Login form locators.
var (
	emailInput          = browser.ID("email")
	passwordInput       = browser.ID("password")
	loginButton         = browser.XPath(`//button[contains(text(), 'Sign In') or contains(text(), 'Login')]`)
	rememberMeCheckbox  = browser.ID("remember-me")
	forgotPasswordLink  = browser.XPath(`//a[contains(text(), 'Forgot Password')]`)
	registerLink        = browser.XPath(`//a[contains(text(), 'Register')]`)
	emailRequiredErr    = browser.XPath(`//span[contains(text(), 'Email is required')]`)
	passwordRequiredErr = browser.XPath(`//span[contains(text(), 'Password is required')]`)
	invalidEmailErr     = browser.XPath(`//span[contains(text(), 'Please enter a valid email')]`)
)

// Logout controls probed in order; applications expose different ones.
var logoutLocators = []browser.Locator{
	browser.XPath(`//button[contains(text(), 'Logout') or contains(text(), 'Sign Out')]`),
	browser.XPath(`//a[contains(text(), 'Logout') or contains(text(), 'Sign Out')]`),
	browser.Css(".logout-btn"),
}

// Paths a successful login may redirect to.
var dashboardPaths = []string{"/dashboard", "/admin", "/company", "/consumer"}

// LoginPage drives the authentication flow.
type LoginPage struct {
	*Page
}

// NewLoginPage wraps the base page.
func NewLoginPage(p *Page) *LoginPage {
	return &LoginPage{Page: p}
}

// Open navigates to the login form.
func (lp *LoginPage) Open(ctx context.Context) error {
	return lp.NavigateTo(ctx, "/login")
}

// EnterEmail types the email address into the form.
func (lp *LoginPage) EnterEmail(ctx context.Context, email string) error {
	return lp.TypeInto(ctx, "enter email", emailInput, email, true)
}

// EnterPassword types the password into the form.
func (lp *LoginPage) EnterPassword(ctx context.Context, password string) error {
	return lp.TypeInto(ctx, "enter password", passwordInput, password, true)
}

// Submit clicks the login button.
func (lp *LoginPage) Submit(ctx context.Context) error {
	return lp.Click(ctx, "click login button", loginButton)
}

// Login enters credentials, submits, and waits for the page to settle. An
// application-level error message fails the login with its text.
func (lp *LoginPage) Login(ctx context.Context, email, password string) error {
	if err := lp.EnterEmail(ctx, email); err != nil {
		return err
	}
	if err := lp.EnterPassword(ctx, password); err != nil {
		return err
	}
	if err := lp.Submit(ctx); err != nil {
		return err
	}
	if err := lp.WaitForPageLoad(ctx); err != nil {
		return err
	}

	if msg := lp.ErrorText(ctx); msg != "" {
		lp.sink.Step("login", report.StatusFail, msg)
		return fmt.Errorf("login failed: %s", msg)
	}
	lp.sink.Step("login", report.StatusPass, email)
	return nil
}

// LoginAs logs in with a demo user's credentials.
func (lp *LoginPage) LoginAs(ctx context.Context, user users.User) error {
	return lp.Login(ctx, user.Email, user.Password)
}

// LoggedIn waits for the post-login redirect and returns the landing URL.
// Any of the known dashboard paths counts as success.
func (lp *LoginPage) LoggedIn(ctx context.Context) (string, error) {
	url, err := lp.waiter.ForURLContains(ctx, "/dashboard")
	if err == nil {
		return url, nil
	}

	current, locErr := lp.CurrentURL(ctx)
	if locErr != nil {
		return "", locErr
	}
	for _, path := range dashboardPaths {
		if strings.Contains(current, path) {
			return current, nil
		}
	}
	return "", fmt.Errorf("still on login page after submit: %s", current)
}

// VerifyFormElements checks the essential controls are on the page.
func (lp *LoginPage) VerifyFormElements(ctx context.Context) error {
	required := []struct {
		loc  browser.Locator
		name string
	}{
		{emailInput, "email input"},
		{passwordInput, "password input"},
		{loginButton, "login button"},
	}

	var missing []string
	for _, r := range required {
		if !lp.IsPresent(ctx, r.loc) {
			missing = append(missing, r.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("login form missing elements: %s", strings.Join(missing, ", "))
	}
	return nil
}

// PasswordMasked reports whether the password field hides its input.
func (lp *LoginPage) PasswordMasked(ctx context.Context) (bool, error) {
	fieldType, err := lp.AttributeOf(ctx, passwordInput, "type")
	if err != nil {
		return false, err
	}
	return fieldType == "password", nil
}

// EmailRequiredErrorShown reports whether the empty-email validation
// message appears.
func (lp *LoginPage) EmailRequiredErrorShown(ctx context.Context) bool {
	return lp.IsPresent(ctx, emailRequiredErr)
}

// PasswordRequiredErrorShown reports whether the empty-password validation
// message appears.
func (lp *LoginPage) PasswordRequiredErrorShown(ctx context.Context) bool {
	return lp.IsPresent(ctx, passwordRequiredErr)
}

// InvalidEmailErrorShown reports whether the malformed-email validation
// message appears.
func (lp *LoginPage) InvalidEmailErrorShown(ctx context.Context) bool {
	return lp.IsPresent(ctx, invalidEmailErr)
}

// ClearForm empties both credential fields.
func (lp *LoginPage) ClearForm(ctx context.Context) error {
	if err := lp.acc.Clear(ctx, emailInput); err != nil {
		return err
	}
	return lp.acc.Clear(ctx, passwordInput)
}

// FieldValues returns the current contents of the email and password
// inputs.
func (lp *LoginPage) FieldValues(ctx context.Context) (string, string, error) {
	var values []string
	err := lp.acc.Evaluate(ctx,
		`[(document.getElementById("email") || {}).value || "", (document.getElementById("password") || {}).value || ""]`,
		&values)
	if err != nil {
		return "", "", fmt.Errorf("failed to read form values: %w", err)
	}
	if len(values) != 2 {
		return "", "", fmt.Errorf("unexpected form value count: %d", len(values))
	}
	return values[0], values[1], nil
}

// HasRememberMe reports whether the remember-me checkbox is on the page.
func (lp *LoginPage) HasRememberMe(ctx context.Context) bool {
	return lp.IsPresent(ctx, rememberMeCheckbox)
}

// RememberMeChecked reports the remember-me checkbox state.
func (lp *LoginPage) RememberMeChecked(ctx context.Context) (bool, error) {
	var checked bool
	err := lp.acc.Evaluate(ctx,
		`!!(document.getElementById("remember-me") && document.getElementById("remember-me").checked)`,
		&checked)
	return checked, err
}

// ToggleRememberMe clicks the remember-me checkbox.
func (lp *LoginPage) ToggleRememberMe(ctx context.Context) error {
	return lp.Click(ctx, "toggle remember me", rememberMeCheckbox)
}

// HasForgotPasswordLink reports whether the forgot-password link is shown.
func (lp *LoginPage) HasForgotPasswordLink(ctx context.Context) bool {
	return lp.IsPresent(ctx, forgotPasswordLink)
}

// HasRegisterLink reports whether the register link is shown.
func (lp *LoginPage) HasRegisterLink(ctx context.Context) bool {
	return lp.IsPresent(ctx, registerLink)
}

// OpenRegister follows the register link.
func (lp *LoginPage) OpenRegister(ctx context.Context) error {
	return lp.Click(ctx, "click register link", registerLink)
}

// OpenForgotPassword follows the forgot-password link.
func (lp *LoginPage) OpenForgotPassword(ctx context.Context) error {
	return lp.Click(ctx, "click forgot password link", forgotPasswordLink)
}

// Logout ends the session. It probes the known logout controls; when none
// is present it clears browser storage and returns to the login page.
func (lp *LoginPage) Logout(ctx context.Context) error {
	for _, loc := range logoutLocators {
		if !lp.IsPresent(ctx, loc) {
			continue
		}
		if err := lp.Click(ctx, "click logout", loc); err != nil {
			return err
		}
		if err := lp.WaitForPageLoad(ctx); err != nil {
			return err
		}
		lp.sink.Step("logout", report.StatusPass, "")
		return nil
	}

	// No logout control found; drop the session manually.
	if err := lp.acc.ClearStorage(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	if err := lp.Open(ctx); err != nil {
		return err
	}
	lp.sink.Step("logout", report.StatusPass, "manual session clear")
	return nil
}
