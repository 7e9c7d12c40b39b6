package auth

import (
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body interface{}) error
	GET(path string, headers map[string]string) error
	GetResponseField(field string) (interface{}, error)
	GetAccessToken() string
	SetAccessToken(token string)
}

// RegisterSteps registers authentication-related step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &authSteps{tc: tc}

	ctx.Step(`^I register as "([^"]*)" with password "([^"]*)"$`, steps.register)
	ctx.Step(`^I log in as "([^"]*)" with password "([^"]*)"$`, steps.login)
	ctx.Step(`^I save the access token$`, steps.saveAccessToken)
	ctx.Step(`^I am logged in as "([^"]*)" with password "([^"]*)"$`, steps.registerAndLogin)
	ctx.Step(`^I log out$`, steps.logout)
	ctx.Step(`^I request my profile$`, steps.requestProfile)
	ctx.Step(`^I request my profile without a token$`, steps.requestProfileAnonymously)
}

type authSteps struct {
	tc TestContext
}

func (s *authSteps) register(email, password string) error {
	return s.tc.POST("/auth/register", map[string]interface{}{
		"email":    email,
		"password": password,
	})
}

func (s *authSteps) login(email, password string) error {
	return s.tc.POST("/auth/login", map[string]interface{}{
		"email":    email,
		"password": password,
	})
}

func (s *authSteps) saveAccessToken() error {
	token, err := s.tc.GetResponseField("access_token")
	if err != nil {
		return err
	}
	str, ok := token.(string)
	if !ok || str == "" {
		return fmt.Errorf("access_token is not a usable string: %v", token)
	}
	s.tc.SetAccessToken(str)
	return nil
}

// registerAndLogin is the compound background step most scenarios start with.
func (s *authSteps) registerAndLogin(email, password string) error {
	if err := s.register(email, password); err != nil {
		return err
	}
	if err := s.login(email, password); err != nil {
		return err
	}
	return s.saveAccessToken()
}

func (s *authSteps) logout() error {
	return s.tc.POST("/auth/logout", nil)
}

func (s *authSteps) requestProfile() error {
	return s.tc.GET("/me", nil)
}

func (s *authSteps) requestProfileAnonymously() error {
	saved := s.tc.GetAccessToken()
	s.tc.SetAccessToken("")
	err := s.tc.GET("/me", nil)
	s.tc.SetAccessToken(saved)
	return err
}
