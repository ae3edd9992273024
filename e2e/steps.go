package e2e

import (
	"github.com/cucumber/godog"

	"bistro/e2e/steps/authz"
	"bistro/e2e/steps/common"
	"bistro/e2e/steps/ratelimit"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	authz.RegisterSteps(ctx, tc)
	ratelimit.RegisterSteps(ctx, tc)
}
