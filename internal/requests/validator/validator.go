// Package validator checks that a decision is legal for the request it
// answers before any processor runs. Checks stop at the first failure.
package validator

import (
	"fmt"

	"parley/internal/requests/models"
	"parley/internal/requests/validation"
)

const (
	CodeInvalidRequestID                  = "invalidRequestId"
	CodeInvalidNumberOfItems              = "invalidNumberOfItems"
	CodeInvalidResponseItemForRequestItem = "invalidResponseItemForRequestItem"
	CodeItemAcceptedButParentNotAccepted  = "itemAcceptedButParentNotAccepted"
	CodeMustBeAcceptedItemNotAccepted     = "mustBeAcceptedItemNotAccepted"
)

type DecideRequestParametersValidator struct{}

func New() *DecideRequestParametersValidator {
	return &DecideRequestParametersValidator{}
}

// Validate returns a success result or the first violation found.
func (v *DecideRequestParametersValidator) Validate(params models.DecideRequestParameters, request *models.Request) *validation.Result {
	if params.RequestID != request.ID {
		return validation.Error(CodeInvalidRequestID,
			fmt.Sprintf("the decision is for request %s, not %s", params.RequestID, request.ID))
	}
	entries := request.Content.Items
	if len(params.Items) != len(entries) {
		return validation.Error(CodeInvalidNumberOfItems,
			fmt.Sprintf("the request has %d items, the decision answers %d", len(entries), len(params.Items)))
	}
	for i, entry := range entries {
		decision := params.Items[i]
		var res *validation.Result
		if entry.IsGroup() {
			res = v.checkGroup(entry.Group, decision, params.Accept, fmt.Sprintf("items[%d]", i))
		} else {
			res = v.checkLeaf(entry.Item, decision, params.Accept, fmt.Sprintf("items[%d]", i))
		}
		if res.IsError() {
			return res
		}
	}
	return validation.Success()
}

func (v *DecideRequestParametersValidator) checkGroup(group *models.RequestItemGroup, decision models.DecideItemParameters, parentAccepted bool, path string) *validation.Result {
	if !decision.IsGroup() {
		return validation.Error(CodeInvalidResponseItemForRequestItem, path+" is a group and must be answered with a group")
	}
	if len(decision.Group.Items) != len(group.Items) {
		return validation.Error(CodeInvalidNumberOfItems,
			fmt.Sprintf("%s has %d items, the decision answers %d", path, len(group.Items), len(decision.Group.Items)))
	}

	groupAccepted := false
	for _, d := range decision.Group.Items {
		if d.Accept {
			groupAccepted = true
			break
		}
	}
	if res := checkLegality(groupAccepted, group.MustBeAccepted, parentAccepted, path); res.IsError() {
		return res
	}

	for i, item := range group.Items {
		childPath := fmt.Sprintf("%s.items[%d]", path, i)
		d := decision.Group.Items[i]
		if res := checkLegality(d.Accept, item.IsMustBeAccepted(), groupAccepted, childPath); res.IsError() {
			return res
		}
	}
	return validation.Success()
}

func (v *DecideRequestParametersValidator) checkLeaf(item models.RequestItem, decision models.DecideItemParameters, parentAccepted bool, path string) *validation.Result {
	if decision.IsGroup() || decision.Item == nil {
		return validation.Error(CodeInvalidResponseItemForRequestItem, path+" is an item and must be answered with an item")
	}
	return checkLegality(decision.Item.Accept, item.IsMustBeAccepted(), parentAccepted, path)
}

// checkLegality enforces that only children of an accepted parent are
// accepted and that mandatory children of an accepted parent are.
func checkLegality(accepted, mustBeAccepted, parentAccepted bool, path string) *validation.Result {
	if accepted && !parentAccepted {
		return validation.Error(CodeItemAcceptedButParentNotAccepted, path+" is accepted but its parent is not")
	}
	if parentAccepted && mustBeAccepted && !accepted {
		return validation.Error(CodeMustBeAcceptedItemNotAccepted, path+" must be accepted when its parent is")
	}
	return validation.Success()
}
