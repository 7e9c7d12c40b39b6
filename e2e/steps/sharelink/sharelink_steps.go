package sharelink

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
	GetWorkspaceID() string
	GetShareToken() string
	SetShareToken(token string)
}

// RegisterSteps registers share-link step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &sharelinkSteps{tc: tc}

	ctx.Step(`^I create a share link for the saved workspace$`, steps.createShareLink)
	ctx.Step(`^I save the share token$`, steps.saveShareToken)
	ctx.Step(`^I resolve the saved share token anonymously$`, steps.resolveAnonymously)
	ctx.Step(`^I resolve share token "([^"]*)" anonymously$`, steps.resolveTokenAnonymously)
}

type sharelinkSteps struct {
	tc TestContext
}

func (s *sharelinkSteps) createShareLink() error {
	return s.tc.POST("/workspaces/"+s.tc.GetWorkspaceID()+"/share-links", nil)
}

func (s *sharelinkSteps) saveShareToken() error {
	token, err := s.tc.GetResponseField("token")
	if err != nil {
		return err
	}
	str, ok := token.(string)
	if !ok || str == "" {
		return fmt.Errorf("share token is not a usable string: %v", token)
	}
	s.tc.SetShareToken(str)
	return nil
}

func (s *sharelinkSteps) resolveAnonymously() error {
	return s.resolveTokenAnonymously(s.tc.GetShareToken())
}

// resolveTokenAnonymously drops the bearer token for the request: public
// share access must work with no identity at all.
func (s *sharelinkSteps) resolveTokenAnonymously(token string) error {
	saved := s.tc.GetAccessToken()
	s.tc.SetAccessToken("")
	err := s.tc.GET("/share/"+token, nil)
	s.tc.SetAccessToken(saved)
	return err
}
