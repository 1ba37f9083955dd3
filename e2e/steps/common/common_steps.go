package common

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	GET(path string) error
	GETWithoutAuth(path string) error
	POSTAdmin(path string) error
	StatusCode() int
	Body() []byte
	GetResponseField(field string) (any, error)
	Save(name, value string)
	Expand(s string) string
}

// RegisterSteps registers generic request and assertion steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	ctx.Step(`^I POST to "([^"]*)" with body:$`, steps.postWithBody)
	ctx.Step(`^I POST to "([^"]*)"$`, steps.postEmpty)
	ctx.Step(`^I GET "([^"]*)"$`, steps.get)
	ctx.Step(`^I GET "([^"]*)" without authentication$`, steps.getWithoutAuth)
	ctx.Step(`^I POST to "([^"]*)" as admin$`, steps.postAdmin)

	ctx.Step(`^the response status should be (\d+)$`, steps.statusShouldBe)
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, steps.fieldShouldBe)
	ctx.Step(`^the response field "([^"]*)" should be (true|false)$`, steps.fieldShouldBeBool)
	ctx.Step(`^the response field "([^"]*)" should be present$`, steps.fieldShouldBePresent)
	ctx.Step(`^I save the response field "([^"]*)" as "([^"]*)"$`, steps.saveField)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) postWithBody(ctx context.Context, path string, body *godog.DocString) error {
	return s.tc.POST(path, body.Content)
}

func (s *commonSteps) postEmpty(ctx context.Context, path string) error {
	return s.tc.POST(path, "{}")
}

func (s *commonSteps) get(ctx context.Context, path string) error {
	return s.tc.GET(path)
}

func (s *commonSteps) getWithoutAuth(ctx context.Context, path string) error {
	return s.tc.GETWithoutAuth(path)
}

func (s *commonSteps) postAdmin(ctx context.Context, path string) error {
	return s.tc.POSTAdmin(path)
}

func (s *commonSteps) statusShouldBe(ctx context.Context, want int) error {
	if got := s.tc.StatusCode(); got != want {
		return fmt.Errorf("expected status %d, got %d: %s", want, got, s.tc.Body())
	}
	return nil
}

func (s *commonSteps) fieldShouldBe(ctx context.Context, field, want string) error {
	v, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	want = s.tc.Expand(want)
	if got := fmt.Sprint(v); got != want {
		return fmt.Errorf("expected %s to be %q, got %q", field, want, got)
	}
	return nil
}

func (s *commonSteps) fieldShouldBeBool(ctx context.Context, field, want string) error {
	v, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	b, ok := v.(bool)
	if !ok || fmt.Sprint(b) != want {
		return fmt.Errorf("expected %s to be %s, got %v", field, want, v)
	}
	return nil
}

func (s *commonSteps) fieldShouldBePresent(ctx context.Context, field string) error {
	_, err := s.tc.GetResponseField(field)
	return err
}

func (s *commonSteps) saveField(ctx context.Context, field, name string) error {
	v, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	s.tc.Save(name, fmt.Sprint(v))
	return nil
}
