package processors

import (
	"context"

	"parley/internal/attributes/models"
	reqmodels "parley/internal/requests/models"
	"parley/internal/requests/validation"
	id "parley/pkg/domain"
	dErrors "parley/pkg/domain-errors"
)

// ShareAttributeProcessor asks the recipient to share one of its attributes
// with a third party it also has a relationship with.
type ShareAttributeProcessor struct {
	*GenericProcessor
}

func NewShareAttributeProcessor(deps Dependencies) Processor {
	return &ShareAttributeProcessor{GenericProcessor: NewGenericProcessor(deps)}
}

func (p *ShareAttributeProcessor) CanCreateOutgoingRequestItem(_ context.Context, item reqmodels.RequestItem, recipient id.Address) (*validation.Result, error) {
	share, ok := itemAs[reqmodels.ShareAttributeRequestItem](item)
	if !ok {
		return wrongType(item, reqmodels.TypeShareAttributeRequestItem), nil
	}
	if share.AttributeID.IsNil() || share.ShareWith.IsNil() {
		return validation.Error(CodeInvalidRequestItem, "attributeId and shareWith are required"), nil
	}
	if share.ShareWith == recipient {
		return validation.Error(CodeInvalidRequestItem, "the third party must differ from the recipient"), nil
	}
	return validation.Success(), nil
}

// CheckPrerequisitesOfIncomingRequestItem holds when we know the third
// party and the attribute is ours to share.
func (p *ShareAttributeProcessor) CheckPrerequisitesOfIncomingRequestItem(ctx context.Context, item reqmodels.RequestItem, request *reqmodels.Request) (bool, error) {
	share, ok := itemAs[reqmodels.ShareAttributeRequestItem](item)
	if !ok {
		return false, nil
	}
	related, err := p.deps.Relationships.HasRelationship(ctx, share.ShareWith)
	if err != nil {
		return false, err
	}
	if !related {
		p.deps.Logger.DebugContext(ctx, "share prerequisite failed: no relationship with third party",
			"share_with", share.ShareWith,
			"request_id", request.ID,
		)
		return false, nil
	}
	attr, err := p.deps.Attributes.GetAttribute(ctx, share.AttributeID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return false, nil
		}
		return false, err
	}
	switch attr.Content.Kind {
	case models.KindIdentity:
		return p.deps.Identity.IsMe(attr.Content.Owner), nil
	default:
		owner := attr.Content.Owner
		return p.deps.Identity.IsMe(owner) || owner == request.Peer, nil
	}
}

// Accept shares a copy with the third party under this request.
func (p *ShareAttributeProcessor) Accept(ctx context.Context, item reqmodels.RequestItem, _ reqmodels.DecideRequestItemParameters, request *reqmodels.Request) (reqmodels.ResponseItem, error) {
	share, _ := itemAs[reqmodels.ShareAttributeRequestItem](item)
	shared, err := p.deps.Attributes.CreateSharedAttributeCopy(ctx, share.AttributeID, share.ShareWith, request.ID)
	if err != nil {
		return nil, err
	}
	return reqmodels.ShareAttributeAcceptResponseItem{AttributeID: shared.ID}, nil
}

func (p *ShareAttributeProcessor) CanApplyIncomingResponseItem(_ context.Context, responseItem reqmodels.ResponseItem, item reqmodels.RequestItem, _ *reqmodels.Request) (*validation.Result, error) {
	if _, ok := itemAs[reqmodels.ShareAttributeRequestItem](item); !ok {
		return wrongType(item, reqmodels.TypeShareAttributeRequestItem), nil
	}
	_, isAccept, res := checkAcceptedResponse[reqmodels.ShareAttributeAcceptResponseItem](responseItem)
	if !isAccept {
		return res, nil
	}
	return validation.Success(), nil
}
