package processors

import (
	"context"
	"log/slog"

	"parley/internal/requests/models"
	"parley/internal/requests/validation"
	id "parley/pkg/domain"
)

// GenericProcessor accepts everything and changes nothing. It serves item
// types without a registered processor during decide and apply, and the
// built-ins embed it for the steps they leave at default.
type GenericProcessor struct {
	deps Dependencies
}

func NewGenericProcessor(deps Dependencies) *GenericProcessor {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &GenericProcessor{deps: deps}
}

func (p *GenericProcessor) CanCreateOutgoingRequestItem(context.Context, models.RequestItem, id.Address) (*validation.Result, error) {
	return validation.Success(), nil
}

func (p *GenericProcessor) CheckPrerequisitesOfIncomingRequestItem(context.Context, models.RequestItem, *models.Request) (bool, error) {
	return true, nil
}

func (p *GenericProcessor) CanAccept(context.Context, models.RequestItem, models.DecideRequestItemParameters, *models.Request) (*validation.Result, error) {
	return validation.Success(), nil
}

func (p *GenericProcessor) CanReject(context.Context, models.RequestItem, models.DecideRequestItemParameters, *models.Request) (*validation.Result, error) {
	return validation.Success(), nil
}

func (p *GenericProcessor) Accept(context.Context, models.RequestItem, models.DecideRequestItemParameters, *models.Request) (models.ResponseItem, error) {
	return models.AcceptResponseItem{}, nil
}

func (p *GenericProcessor) Reject(_ context.Context, _ models.RequestItem, params models.DecideRequestItemParameters, _ *models.Request) (models.ResponseItem, error) {
	return models.RejectResponseItem{Code: params.Code, Message: params.Message}, nil
}

func (p *GenericProcessor) CanApplyIncomingResponseItem(context.Context, models.ResponseItem, models.RequestItem, *models.Request) (*validation.Result, error) {
	return validation.Success(), nil
}

func (p *GenericProcessor) ApplyIncomingResponseItem(context.Context, models.ResponseItem, models.RequestItem, *models.Request) error {
	return nil
}

// checkAcceptedResponse validates the common shape of a response item: a
// rejection is always applicable, an acceptance must be of type T.
func checkAcceptedResponse[T models.ResponseItem](responseItem models.ResponseItem) (T, bool, *validation.Result) {
	var zero T
	if responseItem.Result() == models.ItemRejected {
		return zero, false, validation.Success()
	}
	accepted, ok := itemAs[T](responseItem)
	if !ok {
		return zero, false, validation.Error(CodeInvalidResponseItem,
			"expected "+zero.ItemType()+", got "+responseItem.ItemType())
	}
	return accepted, true, nil
}
