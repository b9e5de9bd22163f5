// Package users holds the demo credentials and test-data generation for
// the IoT Platform smoke suites.
package users

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// User is one set of application credentials with its expected post-login
// landing path.
type User struct {
	Email         string
	Password      string
	Role          string
	FirstName     string
	LastName      string
	Company       string
	DashboardPath string
}

// Admin returns the platform administrator demo account.
func Admin() User {
	return User{
		Email:         "admin@iotplatform.com",
		Password:      "Admin123!",
		Role:          "admin",
		FirstName:     "Admin",
		LastName:      "User",
		Company:       "IoT Platform",
		DashboardPath: "/admin/dashboard",
	}
}

// CompanyManager returns the company-scope demo account.
func CompanyManager() User {
	return User{
		Email:         "manager@acmecorp.com",
		Password:      "Manager456!",
		Role:          "company",
		FirstName:     "Company",
		LastName:      "Manager",
		Company:       "ACME Corp",
		DashboardPath: "/company/dashboard",
	}
}

// Consumer returns the consumer demo account.
func Consumer() User {
	return User{
		Email:         "jane.doe@example.com",
		Password:      "Consumer789!",
		Role:          "consumer",
		FirstName:     "Jane",
		LastName:      "Doe",
		Company:       "Example Inc",
		DashboardPath: "/consumer/dashboard",
	}
}

// AllValid returns every demo account that should log in successfully.
func AllValid() []User {
	return []User{Admin(), CompanyManager(), Consumer()}
}

// InvalidCredential pairs bad credentials with the error the login form
// should show.
type InvalidCredential struct {
	Name          string
	Email         string
	Password      string
	ExpectedError string
}

// AllInvalid returns the credential fixtures that must be rejected.
func AllInvalid() []InvalidCredential {
	return []InvalidCredential{
		{Name: "unknown email", Email: "invalid@email.com", Password: "wrongpassword", ExpectedError: "Invalid credentials"},
		{Name: "wrong password", Email: "admin@iotplatform.com", Password: "wrongpassword", ExpectedError: "Invalid credentials"},
		{Name: "malformed email", Email: "invalid-email", Password: "password123", ExpectedError: "Please enter a valid email"},
	}
}

// Generator produces unique registration data for tests that must not
// collide across runs.
type Generator struct{}

// NewGenerator returns a Generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Registration is the data set for a new-user signup.
type Registration struct {
	FirstName       string
	LastName        string
	Email           string
	Password        string
	ConfirmPassword string
	Company         string
	Role            string
}

// NewRegistration returns signup data with a uuid-unique email.
func (g *Generator) NewRegistration(role string) Registration {
	suffix := strings.Split(uuid.New().String(), "-")[0]
	password := "TestPass123!"
	return Registration{
		FirstName:       "Test",
		LastName:        "User",
		Email:           fmt.Sprintf("testuser-%s@example.com", suffix),
		Password:        password,
		ConfirmPassword: password,
		Company:         "Test Company",
		Role:            role,
	}
}
