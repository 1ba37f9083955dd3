package processors

import (
	"context"

	"parley/internal/attributes/models"
	reqmodels "parley/internal/requests/models"
	"parley/internal/requests/validation"
	id "parley/pkg/domain"
	dErrors "parley/pkg/domain-errors"
)

// ReadAttributeProcessor asks the peer for an attribute matching a query.
type ReadAttributeProcessor struct {
	*GenericProcessor
}

func NewReadAttributeProcessor(deps Dependencies) Processor {
	return &ReadAttributeProcessor{GenericProcessor: NewGenericProcessor(deps)}
}

func (p *ReadAttributeProcessor) CanCreateOutgoingRequestItem(_ context.Context, item reqmodels.RequestItem, _ id.Address) (*validation.Result, error) {
	read, ok := itemAs[reqmodels.ReadAttributeRequestItem](item)
	if !ok {
		return wrongType(item, reqmodels.TypeReadAttributeRequestItem), nil
	}
	if problem := read.Query.Problem(); problem != "" {
		return validation.Error(CodeInvalidRequestItem, problem), nil
	}
	return validation.Success(), nil
}

func (p *ReadAttributeProcessor) CanAccept(ctx context.Context, item reqmodels.RequestItem, params reqmodels.DecideRequestItemParameters, _ *reqmodels.Request) (*validation.Result, error) {
	read, ok := itemAs[reqmodels.ReadAttributeRequestItem](item)
	if !ok {
		return wrongType(item, reqmodels.TypeReadAttributeRequestItem), nil
	}
	return p.checkAnswer(ctx, read.Query, params.Params)
}

func (p *ReadAttributeProcessor) Accept(ctx context.Context, _ reqmodels.RequestItem, params reqmodels.DecideRequestItemParameters, request *reqmodels.Request) (reqmodels.ResponseItem, error) {
	shared, err := p.shareAnswer(ctx, params.Params, request)
	if err != nil {
		return nil, err
	}
	return reqmodels.ReadAttributeAcceptResponseItem{AttributeID: shared.ID, Attribute: shared.Content}, nil
}

func (p *ReadAttributeProcessor) CanApplyIncomingResponseItem(_ context.Context, responseItem reqmodels.ResponseItem, item reqmodels.RequestItem, request *reqmodels.Request) (*validation.Result, error) {
	read, ok := itemAs[reqmodels.ReadAttributeRequestItem](item)
	if !ok {
		return wrongType(item, reqmodels.TypeReadAttributeRequestItem), nil
	}
	accepted, isAccept, res := checkAcceptedResponse[reqmodels.ReadAttributeAcceptResponseItem](responseItem)
	if !isAccept {
		return res, nil
	}
	return checkReceivedAnswer(read.Query, accepted.AttributeID, accepted.Attribute, request.Peer), nil
}

func (p *ReadAttributeProcessor) ApplyIncomingResponseItem(ctx context.Context, responseItem reqmodels.ResponseItem, _ reqmodels.RequestItem, request *reqmodels.Request) error {
	accepted, ok := itemAs[reqmodels.ReadAttributeAcceptResponseItem](responseItem)
	if !ok {
		return nil
	}
	_, err := p.deps.Attributes.CreatePeerAttribute(ctx, accepted.AttributeID, accepted.Attribute, request.Peer, request.ID)
	return err
}

// checkAnswer validates accept params for a query: exactly one of an
// existing attribute or a new one, owned by us and matching the query.
func (p *GenericProcessor) checkAnswer(ctx context.Context, query models.Query, params reqmodels.AcceptParams) (*validation.Result, error) {
	hasID := !params.AttributeID.IsNil()
	hasNew := params.Attribute != nil
	if hasID == hasNew {
		return validation.Error(CodeInvalidAcceptParameters, "exactly one of attributeId or attribute must be given"), nil
	}

	var content models.Content
	if hasID {
		attr, err := p.deps.Attributes.GetAttribute(ctx, params.AttributeID)
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeNotFound) {
				return validation.Error(CodeAttributeNotFound, "attribute "+params.AttributeID.String()+" does not exist"), nil
			}
			return nil, err
		}
		if attr.IsShared() {
			return validation.Error(CodeInvalidAcceptParameters, "a shared copy cannot be shared again"), nil
		}
		content = attr.Content
	} else {
		if err := params.Attribute.Validate(); err != nil {
			return validation.Error(CodeInvalidAcceptParameters, err.Error()), nil
		}
		content = *params.Attribute
	}

	if !p.deps.Identity.IsMe(content.Owner) {
		return validation.Error(CodeAttributeNotOwned, "only own attributes can be shared"), nil
	}
	if !query.MatchesContent(content) {
		return validation.Error(CodeAttributeQueryMismatch, "the attribute does not match the query"), nil
	}
	return validation.Success(), nil
}

// shareAnswer creates the new attribute if needed and a copy shared with
// the requester.
func (p *GenericProcessor) shareAnswer(ctx context.Context, params reqmodels.AcceptParams, request *reqmodels.Request) (*models.LocalAttribute, error) {
	sourceID := params.AttributeID
	if params.Attribute != nil {
		created, err := p.deps.Attributes.CreateAttribute(ctx, *params.Attribute)
		if err != nil {
			return nil, err
		}
		sourceID = created.ID
	}
	return p.deps.Attributes.CreateSharedAttributeCopy(ctx, sourceID, request.Peer, request.ID)
}

// checkReceivedAnswer validates an answer the peer sent back for query.
func checkReceivedAnswer(query models.Query, attributeID id.AttributeID, content models.Content, peer id.Address) *validation.Result {
	if attributeID.IsNil() {
		return validation.Error(CodeInvalidResponseItem, "the response does not name the shared attribute")
	}
	if err := content.Validate(); err != nil {
		return validation.Error(CodeInvalidResponseItem, err.Error())
	}
	if content.Kind == models.KindIdentity && content.Owner != peer {
		return validation.Error(CodeInvalidResponseItem, "an identity attribute in a response must be owned by the responder")
	}
	if !query.MatchesContent(content) {
		return validation.Error(CodeAttributeQueryMismatch, "the returned attribute does not match the query")
	}
	return validation.Success()
}
