package workspace

import (
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body interface{}) error
	GET(path string, headers map[string]string) error
	GetResponseField(field string) (interface{}, error)
	GetWorkspaceID() string
	SetWorkspaceID(id string)
}

// RegisterSteps registers workspace-related step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &workspaceSteps{tc: tc}

	ctx.Step(`^I create a workspace named "([^"]*)"$`, steps.createWorkspace)
	ctx.Step(`^I save the workspace id$`, steps.saveWorkspaceID)
	ctx.Step(`^I have a workspace named "([^"]*)"$`, steps.createAndSaveWorkspace)
	ctx.Step(`^I list my workspaces$`, steps.listWorkspaces)
	ctx.Step(`^I fetch the saved workspace$`, steps.fetchSavedWorkspace)
	ctx.Step(`^I add member "([^"]*)" to the saved workspace$`, steps.addMember)
}

type workspaceSteps struct {
	tc TestContext
}

func (s *workspaceSteps) createWorkspace(name string) error {
	return s.tc.POST("/workspaces", map[string]interface{}{"name": name})
}

func (s *workspaceSteps) saveWorkspaceID() error {
	id, err := s.tc.GetResponseField("id")
	if err != nil {
		return err
	}
	str, ok := id.(string)
	if !ok || str == "" {
		return fmt.Errorf("workspace id is not a usable string: %v", id)
	}
	s.tc.SetWorkspaceID(str)
	return nil
}

func (s *workspaceSteps) createAndSaveWorkspace(name string) error {
	if err := s.createWorkspace(name); err != nil {
		return err
	}
	return s.saveWorkspaceID()
}

func (s *workspaceSteps) listWorkspaces() error {
	return s.tc.GET("/workspaces", nil)
}

func (s *workspaceSteps) fetchSavedWorkspace() error {
	return s.tc.GET("/workspaces/"+s.tc.GetWorkspaceID(), nil)
}

func (s *workspaceSteps) addMember(userID string) error {
	return s.tc.POST("/workspaces/"+s.tc.GetWorkspaceID()+"/members", map[string]interface{}{
		"user_id": userID,
	})
}
