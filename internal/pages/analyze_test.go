package pages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const homePageHTML = `
<!DOCTYPE html>
<html>
<head><title>IoT Platform - Device Management &amp; Analytics</title></head>
<body>
	<nav class="navbar">
		<a class="navbar-item" href="/dashboard">Dashboard</a>
		<a class="navbar-item" href="/devices">Devices</a>
		<a class="navbar-item" href="/analytics">Analytics</a>
		<a class="navbar-item" href="/settings">Settings</a>
	</nav>
	<section class="hero">
		<h1>Manage Your IoT Devices</h1>
		<p>Monitoring and analytics for connected devices.</p>
	</section>
	<div class="demo-credentials">
		<h2>Demo Accounts</h2>
		<ul>
			<li>admin@iotplatform.com / Admin123!</li>
			<li>Email: manager@acmecorp.com Password: Manager456!</li>
			<li>jane.doe@example.com | Consumer789!</li>
		</ul>
	</div>
	<form action="/login" method="post"><input type="email"></form>
	<footer><a href="/about">About</a></footer>
</body>
</html>`

func TestAnalyzeHomePage(t *testing.T) {
	analysis, err := Analyze(homePageHTML)
	require.NoError(t, err)

	assert.Equal(t, "IoT Platform - Device Management & Analytics", analysis.Title)

	assert.True(t, analysis.HasNavItem("Dashboard"))
	assert.True(t, analysis.HasNavItem("devices"), "nav lookup is case-insensitive")
	assert.False(t, analysis.HasNavItem("Billing"))

	assert.True(t, analysis.HasHeadingContaining("IoT Devices"))
	assert.True(t, analysis.HasHeadingContaining("demo accounts"))
	assert.False(t, analysis.HasHeadingContaining("pricing"))

	assert.Equal(t, 1, analysis.FormCount)
	assert.Greater(t, analysis.LinkCount, 3)
}

func TestAnalyzeExtractsDemoCredentials(t *testing.T) {
	analysis, err := Analyze(homePageHTML)
	require.NoError(t, err)

	require.Len(t, analysis.DemoCredentials, 3)

	byEmail := make(map[string]string)
	for _, c := range analysis.DemoCredentials {
		byEmail[c.Email] = c.Password
	}
	assert.Equal(t, "Admin123!", byEmail["admin@iotplatform.com"])
	assert.Equal(t, "Manager456!", byEmail["manager@acmecorp.com"])
	assert.Equal(t, "Consumer789!", byEmail["jane.doe@example.com"])
}

func TestAnalyzeDeduplicatesNavItems(t *testing.T) {
	html := `<html><body>
		<nav><a href="/x">Devices</a><a href="/x">Devices</a></nav>
	</body></html>`

	analysis, err := Analyze(html)
	require.NoError(t, err)
	assert.Equal(t, []string{"Devices"}, analysis.NavItems)
}

func TestAnalyzeEmptyDocument(t *testing.T) {
	analysis, err := Analyze("<html><body></body></html>")
	require.NoError(t, err)

	assert.Empty(t, analysis.NavItems)
	assert.Empty(t, analysis.DemoCredentials)
	assert.Equal(t, 0, analysis.FormCount)
}

func TestParseCredentialLine(t *testing.T) {
	tests := []struct {
		line  string
		email string
		pass  string
	}{
		{"admin@iotplatform.com / Admin123!", "admin@iotplatform.com", "Admin123!"},
		{"Email: manager@acmecorp.com Password: Manager456!", "manager@acmecorp.com", "Manager456!"},
		{"no credentials here", "", ""},
		{"lonely@example.com", "", ""},
	}

	for _, tt := range tests {
		cred := parseCredentialLine(tt.line)
		if tt.email == "" {
			assert.Nil(t, cred, "line %q", tt.line)
			continue
		}
		require.NotNil(t, cred, "line %q", tt.line)
		assert.Equal(t, tt.email, cred.Email)
		assert.Equal(t, tt.pass, cred.Password)
	}
}
