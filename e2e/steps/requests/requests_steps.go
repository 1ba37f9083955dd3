package requests

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	StatusCode() int
	Body() []byte
	GetResponseField(field string) (any, error)
	Save(name, value string)
	Saved(name string) string
}

// RegisterSteps registers request exchange steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &requestSteps{tc: tc}

	ctx.Step(`^my peer is "([^"]*)"$`, steps.peerIs)
	ctx.Step(`^I own an identity attribute "([^"]*)" with value "([^"]*)"$`, steps.ownAttribute)
	ctx.Step(`^I create an outgoing request reading "([^"]*)"$`, steps.createReadRequest)
	ctx.Step(`^my peer sends me a request reading "([^"]*)"$`, steps.receiveReadRequest)
	ctx.Step(`^I accept the request with attribute "([^"]*)"$`, steps.acceptWith)
	ctx.Step(`^I reject the request$`, steps.reject)
}

type requestSteps struct {
	tc TestContext
}

func readItem(valueType string) map[string]any {
	return map[string]any{
		"@type":          "ReadAttributeRequestItem",
		"mustBeAccepted": true,
		"query": map[string]any{
			"@type":     "IdentityAttributeQuery",
			"valueType": valueType,
		},
	}
}

func (s *requestSteps) peerIs(ctx context.Context, peer string) error {
	s.tc.Save("peer", peer)
	return nil
}

func (s *requestSteps) ownAttribute(ctx context.Context, valueType, value string) error {
	err := s.tc.POST("/attributes", map[string]any{
		"@type":     "IdentityAttribute",
		"owner":     s.tc.Saved("me"),
		"valueType": valueType,
		"value":     value,
	})
	if err != nil {
		return err
	}
	return s.saveID(valueType)
}

func (s *requestSteps) createReadRequest(ctx context.Context, valueType string) error {
	err := s.tc.POST("/requests/outgoing", map[string]any{
		"peer":    s.tc.Saved("peer"),
		"content": map[string]any{"items": []any{readItem(valueType)}},
	})
	if err != nil {
		return err
	}
	return s.saveID("request")
}

func (s *requestSteps) receiveReadRequest(ctx context.Context, valueType string) error {
	err := s.tc.POST("/requests/incoming", map[string]any{
		"sender":  s.tc.Saved("peer"),
		"source":  map[string]any{"type": "Message", "reference": "MSG-e2e"},
		"content": map[string]any{"items": []any{readItem(valueType)}},
	})
	if err != nil {
		return err
	}
	return s.saveID("request")
}

func (s *requestSteps) acceptWith(ctx context.Context, attribute string) error {
	return s.tc.POST("/requests/incoming/"+s.tc.Saved("request")+"/accept", map[string]any{
		"items": []any{map[string]any{
			"accept": true,
			"params": map[string]any{"attributeId": s.tc.Saved(attribute)},
		}},
	})
}

func (s *requestSteps) reject(ctx context.Context) error {
	return s.tc.POST("/requests/incoming/"+s.tc.Saved("request")+"/reject", map[string]any{
		"items": []any{map[string]any{"accept": false}},
	})
}

// saveID stores the id of a just-created resource under name.
func (s *requestSteps) saveID(name string) error {
	if code := s.tc.StatusCode(); code != 201 {
		return fmt.Errorf("expected 201, got %d: %s", code, s.tc.Body())
	}
	v, err := s.tc.GetResponseField("id")
	if err != nil {
		return err
	}
	s.tc.Save(name, fmt.Sprint(v))
	return nil
}
