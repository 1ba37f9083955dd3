package processors

import (
	"context"
	"log/slog"

	attrmodels "parley/internal/attributes/models"
	"parley/internal/requests/models"
	"parley/internal/requests/validation"
	id "parley/pkg/domain"
)

// Result codes processors report through validation results.
const (
	CodeInvalidRequestItem      = "invalidRequestItem"
	CodeInvalidAcceptParameters = "invalidAcceptParameters"
	CodeAttributeNotFound       = "attributeNotFound"
	CodeAttributeNotOwned       = "attributeNotOwned"
	CodeAttributeQueryMismatch  = "attributeQueryMismatch"
	CodeInvalidResponseItem     = "invalidResponseItem"
	CodeWrongItemType           = "wrongItemType"
)

// AttributeService is the attribute write and lookup surface processors use.
type AttributeService interface {
	CreateAttribute(ctx context.Context, content attrmodels.Content) (*attrmodels.LocalAttribute, error)
	CreateSharedAttributeCopy(ctx context.Context, sourceID id.AttributeID, peer id.Address, requestRef id.RequestID) (*attrmodels.LocalAttribute, error)
	CreatePeerAttribute(ctx context.Context, attributeID id.AttributeID, content attrmodels.Content, peer id.Address, requestRef id.RequestID) (*attrmodels.LocalAttribute, error)
	GetAttribute(ctx context.Context, attributeID id.AttributeID) (*attrmodels.LocalAttribute, error)
}

type Identity interface {
	IsMe(addr id.Address) bool
	Address() id.Address
}

type Relationships interface {
	HasRelationship(ctx context.Context, peer id.Address) (bool, error)
}

// Dependencies are handed to every processor factory.
type Dependencies struct {
	Attributes    AttributeService
	Identity      Identity
	Relationships Relationships
	Logger        *slog.Logger
}

// Processor handles one request item type through its whole life: creation
// checks on the initiator, decision on the recipient, and response
// application back on the initiator.
//
// Domain rejections are reported as validation results. A returned error
// means the check itself could not run.
type Processor interface {
	CanCreateOutgoingRequestItem(ctx context.Context, item models.RequestItem, recipient id.Address) (*validation.Result, error)
	CheckPrerequisitesOfIncomingRequestItem(ctx context.Context, item models.RequestItem, request *models.Request) (bool, error)
	CanAccept(ctx context.Context, item models.RequestItem, params models.DecideRequestItemParameters, request *models.Request) (*validation.Result, error)
	CanReject(ctx context.Context, item models.RequestItem, params models.DecideRequestItemParameters, request *models.Request) (*validation.Result, error)
	Accept(ctx context.Context, item models.RequestItem, params models.DecideRequestItemParameters, request *models.Request) (models.ResponseItem, error)
	Reject(ctx context.Context, item models.RequestItem, params models.DecideRequestItemParameters, request *models.Request) (models.ResponseItem, error)
	CanApplyIncomingResponseItem(ctx context.Context, responseItem models.ResponseItem, item models.RequestItem, request *models.Request) (*validation.Result, error)
	ApplyIncomingResponseItem(ctx context.Context, responseItem models.ResponseItem, item models.RequestItem, request *models.Request) error
}

// itemAs narrows an item to T whether it was built as a value or a pointer.
func itemAs[T any](item any) (T, bool) {
	switch v := item.(type) {
	case T:
		return v, true
	case *T:
		if v != nil {
			return *v, true
		}
	}
	var zero T
	return zero, false
}

func wrongType(item models.RequestItem, want string) *validation.Result {
	return validation.Error(CodeWrongItemType, "expected "+want+", got "+item.ItemType())
}
