package processors

import (
	"context"

	reqmodels "parley/internal/requests/models"
	"parley/internal/requests/validation"
	id "parley/pkg/domain"
)

// ProposeAttributeProcessor suggests an attribute value the peer may confirm
// or replace with one of its own.
type ProposeAttributeProcessor struct {
	*GenericProcessor
}

func NewProposeAttributeProcessor(deps Dependencies) Processor {
	return &ProposeAttributeProcessor{GenericProcessor: NewGenericProcessor(deps)}
}

func (p *ProposeAttributeProcessor) CanCreateOutgoingRequestItem(_ context.Context, item reqmodels.RequestItem, _ id.Address) (*validation.Result, error) {
	propose, ok := itemAs[reqmodels.ProposeAttributeRequestItem](item)
	if !ok {
		return wrongType(item, reqmodels.TypeProposeAttributeRequestItem), nil
	}
	if problem := propose.Query.Problem(); problem != "" {
		return validation.Error(CodeInvalidRequestItem, problem), nil
	}
	if err := propose.Attribute.Validate(); err != nil {
		return validation.Error(CodeInvalidRequestItem, err.Error()), nil
	}
	if propose.Attribute.Kind != propose.Query.Kind() || propose.Attribute.ValueType != propose.Query.ValueType {
		return validation.Error(CodeAttributeQueryMismatch, "the proposed attribute does not match the query"), nil
	}
	return validation.Success(), nil
}

func (p *ProposeAttributeProcessor) CanAccept(ctx context.Context, item reqmodels.RequestItem, params reqmodels.DecideRequestItemParameters, _ *reqmodels.Request) (*validation.Result, error) {
	propose, ok := itemAs[reqmodels.ProposeAttributeRequestItem](item)
	if !ok {
		return wrongType(item, reqmodels.TypeProposeAttributeRequestItem), nil
	}
	return p.checkAnswer(ctx, propose.Query, params.Params)
}

func (p *ProposeAttributeProcessor) Accept(ctx context.Context, _ reqmodels.RequestItem, params reqmodels.DecideRequestItemParameters, request *reqmodels.Request) (reqmodels.ResponseItem, error) {
	shared, err := p.shareAnswer(ctx, params.Params, request)
	if err != nil {
		return nil, err
	}
	return reqmodels.ProposeAttributeAcceptResponseItem{AttributeID: shared.ID, Attribute: shared.Content}, nil
}

func (p *ProposeAttributeProcessor) CanApplyIncomingResponseItem(_ context.Context, responseItem reqmodels.ResponseItem, item reqmodels.RequestItem, request *reqmodels.Request) (*validation.Result, error) {
	propose, ok := itemAs[reqmodels.ProposeAttributeRequestItem](item)
	if !ok {
		return wrongType(item, reqmodels.TypeProposeAttributeRequestItem), nil
	}
	accepted, isAccept, res := checkAcceptedResponse[reqmodels.ProposeAttributeAcceptResponseItem](responseItem)
	if !isAccept {
		return res, nil
	}
	return checkReceivedAnswer(propose.Query, accepted.AttributeID, accepted.Attribute, request.Peer), nil
}

func (p *ProposeAttributeProcessor) ApplyIncomingResponseItem(ctx context.Context, responseItem reqmodels.ResponseItem, _ reqmodels.RequestItem, request *reqmodels.Request) error {
	accepted, ok := itemAs[reqmodels.ProposeAttributeAcceptResponseItem](responseItem)
	if !ok {
		return nil
	}
	_, err := p.deps.Attributes.CreatePeerAttribute(ctx, accepted.AttributeID, accepted.Attribute, request.Peer, request.ID)
	return err
}
