package e2e

import (
	"github.com/cucumber/godog"

	"tome/e2e/steps/auth"
	"tome/e2e/steps/common"
	"tome/e2e/steps/sharelink"
	"tome/e2e/steps/workspace"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Register common steps (generic requests, assertions)
	common.RegisterSteps(ctx, tc)

	// Register authentication-specific steps
	auth.RegisterSteps(ctx, tc)

	// Register workspace-specific steps
	workspace.RegisterSteps(ctx, tc)

	// Register share-link-specific steps
	sharelink.RegisterSteps(ctx, tc)
}
