package processors

import (
	"context"

	"parley/internal/attributes/models"
	reqmodels "parley/internal/requests/models"
	"parley/internal/requests/validation"
	id "parley/pkg/domain"
)

// CreateAttributeProcessor asks the peer to store an attribute we provide.
type CreateAttributeProcessor struct {
	*GenericProcessor
}

func NewCreateAttributeProcessor(deps Dependencies) Processor {
	return &CreateAttributeProcessor{GenericProcessor: NewGenericProcessor(deps)}
}

func (p *CreateAttributeProcessor) CanCreateOutgoingRequestItem(_ context.Context, item reqmodels.RequestItem, recipient id.Address) (*validation.Result, error) {
	create, ok := itemAs[reqmodels.CreateAttributeRequestItem](item)
	if !ok {
		return wrongType(item, reqmodels.TypeCreateAttributeRequestItem), nil
	}
	if err := create.Attribute.Validate(); err != nil {
		return validation.Error(CodeInvalidRequestItem, err.Error()), nil
	}
	if create.Attribute.Kind == models.KindIdentity {
		return validation.Error(CodeInvalidRequestItem, "an IdentityAttribute cannot be created for a peer"), nil
	}
	owner := create.Attribute.Owner
	if owner != recipient && !p.deps.Identity.IsMe(owner) {
		return validation.Error(CodeInvalidRequestItem, "the attribute owner must be the recipient or the sender"), nil
	}
	return validation.Success(), nil
}

func (p *CreateAttributeProcessor) CanAccept(_ context.Context, item reqmodels.RequestItem, _ reqmodels.DecideRequestItemParameters, request *reqmodels.Request) (*validation.Result, error) {
	create, ok := itemAs[reqmodels.CreateAttributeRequestItem](item)
	if !ok {
		return wrongType(item, reqmodels.TypeCreateAttributeRequestItem), nil
	}
	if err := create.Attribute.Validate(); err != nil {
		return validation.Error(CodeInvalidRequestItem, err.Error()), nil
	}
	if create.Attribute.Kind == models.KindIdentity {
		return validation.Error(CodeInvalidRequestItem, "an IdentityAttribute cannot be created by a peer"), nil
	}
	if owner := create.Attribute.Owner; owner != request.Peer && !p.deps.Identity.IsMe(owner) {
		return validation.Error(CodeInvalidRequestItem, "the attribute owner must be one of the two parties"), nil
	}
	return validation.Success(), nil
}

// Accept records the attribute as received from the requester.
func (p *CreateAttributeProcessor) Accept(ctx context.Context, item reqmodels.RequestItem, _ reqmodels.DecideRequestItemParameters, request *reqmodels.Request) (reqmodels.ResponseItem, error) {
	create, _ := itemAs[reqmodels.CreateAttributeRequestItem](item)
	attr, err := p.deps.Attributes.CreatePeerAttribute(ctx, "", create.Attribute, request.Peer, request.ID)
	if err != nil {
		return nil, err
	}
	return reqmodels.CreateAttributeAcceptResponseItem{AttributeID: attr.ID}, nil
}

func (p *CreateAttributeProcessor) CanApplyIncomingResponseItem(_ context.Context, responseItem reqmodels.ResponseItem, item reqmodels.RequestItem, _ *reqmodels.Request) (*validation.Result, error) {
	if _, ok := itemAs[reqmodels.CreateAttributeRequestItem](item); !ok {
		return wrongType(item, reqmodels.TypeCreateAttributeRequestItem), nil
	}
	accepted, isAccept, res := checkAcceptedResponse[reqmodels.CreateAttributeAcceptResponseItem](responseItem)
	if !isAccept {
		return res, nil
	}
	if accepted.AttributeID.IsNil() {
		return validation.Error(CodeInvalidResponseItem, "the response does not name the created attribute"), nil
	}
	return validation.Success(), nil
}

// ApplyIncomingResponseItem mirrors the peer's record under the same id.
func (p *CreateAttributeProcessor) ApplyIncomingResponseItem(ctx context.Context, responseItem reqmodels.ResponseItem, item reqmodels.RequestItem, request *reqmodels.Request) error {
	accepted, ok := itemAs[reqmodels.CreateAttributeAcceptResponseItem](responseItem)
	if !ok {
		return nil
	}
	create, _ := itemAs[reqmodels.CreateAttributeRequestItem](item)
	_, err := p.deps.Attributes.CreatePeerAttribute(ctx, accepted.AttributeID, create.Attribute, request.Peer, request.ID)
	return err
}
