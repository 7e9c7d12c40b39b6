package common

import (
	"encoding/json"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body interface{}) error
	GET(path string, headers map[string]string) error
	DELETE(path string) error
	LastStatus() int
	GetResponseField(field string) (interface{}, error)
	ResponseContains(field string) bool
}

// RegisterSteps registers generic request and assertion step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	ctx.Step(`^I GET "([^"]*)"$`, steps.get)
	ctx.Step(`^I POST to "([^"]*)" with body:$`, steps.postWithBody)
	ctx.Step(`^I DELETE "([^"]*)"$`, steps.del)

	ctx.Step(`^the response status should be (\d+)$`, steps.responseStatusShouldBe)
	ctx.Step(`^the response should contain "([^"]*)"$`, steps.responseShouldContain)
	ctx.Step(`^the response field "([^"]*)" should equal "([^"]*)"$`, steps.responseFieldShouldEqual)
	ctx.Step(`^the response error should be "([^"]*)"$`, steps.responseErrorShouldBe)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) get(path string) error {
	return s.tc.GET(path, nil)
}

func (s *commonSteps) postWithBody(path string, body *godog.DocString) error {
	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(body.Content), &parsed); err != nil {
		return fmt.Errorf("step body is not valid JSON: %w", err)
	}
	return s.tc.POST(path, parsed)
}

func (s *commonSteps) del(path string) error {
	return s.tc.DELETE(path)
}

func (s *commonSteps) responseStatusShouldBe(status int) error {
	if s.tc.LastStatus() != status {
		return fmt.Errorf("expected status %d, got %d", status, s.tc.LastStatus())
	}
	return nil
}

func (s *commonSteps) responseShouldContain(field string) error {
	if !s.tc.ResponseContains(field) {
		return fmt.Errorf("response has no field %q", field)
	}
	return nil
}

func (s *commonSteps) responseFieldShouldEqual(field, expected string) error {
	val, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if fmt.Sprintf("%v", val) != expected {
		return fmt.Errorf("expected %q to equal %q, got %v", field, expected, val)
	}
	return nil
}

func (s *commonSteps) responseErrorShouldBe(code string) error {
	return s.responseFieldShouldEqual("error", code)
}
