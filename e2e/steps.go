package e2e

import (
	"github.com/cucumber/godog"

	"parley/e2e/steps/common"
	"parley/e2e/steps/requests"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	requests.RegisterSteps(ctx, tc)
}
