package e2e

import (
	"context"
	"os"
	"testing"

	"github.com/cucumber/godog"
)

func TestFeatures(t *testing.T) {
	baseURL := os.Getenv("TOME_E2E_BASE_URL")
	if baseURL == "" {
		t.Skip("TOME_E2E_BASE_URL not set; skipping end-to-end suite")
	}

	tc := NewTestContext(baseURL)

	suite := godog.TestSuite{
		ScenarioInitializer: func(ctx *godog.ScenarioContext) {
			ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
				tc.Reset()
				return c, nil
			})
			RegisterSteps(ctx, tc)
		},
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("end-to-end scenarios failed")
	}
}
