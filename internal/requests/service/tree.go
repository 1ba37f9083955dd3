package service

import (
	"context"
	"fmt"

	"parley/internal/requests/models"
	"parley/internal/requests/validation"
	"parley/internal/requests/validator"
)

// The helpers below walk the request tree in index order, groups
// depth-first, calling back once per leaf. Result trees mirror the request
// tree: one node per entry, one child per item of a group.

type leafCheck func(ctx context.Context, item models.RequestItem, path string) (*validation.Result, error)

func checkEntries(ctx context.Context, entries []models.RequestEntry, check leafCheck) (*validation.Result, error) {
	results := make([]*validation.Result, 0, len(entries))
	for i, entry := range entries {
		path := entryPath(i)
		if !entry.IsGroup() {
			res, err := check(ctx, entry.Item, path)
			if err != nil {
				return nil, err
			}
			results = append(results, res)
			continue
		}
		children := make([]*validation.Result, 0, len(entry.Group.Items))
		for j, item := range entry.Group.Items {
			res, err := check(ctx, item, childPath(path, j))
			if err != nil {
				return nil, err
			}
			children = append(children, res)
		}
		results = append(results, validation.FromItems(children))
	}
	return validation.FromItems(results), nil
}

type responseVisit func(ctx context.Context, item models.RequestItem, responseItem models.ResponseItem, path string) error

// visitResponse pairs every leaf with its response item. The response must
// already have passed checkResponseShape.
func visitResponse(ctx context.Context, entries []models.RequestEntry, response []models.ResponseEntry, visit responseVisit) error {
	for i, entry := range entries {
		path := entryPath(i)
		if !entry.IsGroup() {
			if err := visit(ctx, entry.Item, response[i].Item, path); err != nil {
				return err
			}
			continue
		}
		for j, item := range entry.Group.Items {
			if err := visit(ctx, item, response[i].Group.Items[j], childPath(path, j)); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkResponseShape enforces positional correspondence between a request
// and the response to it, at the top level and inside every group.
func checkResponseShape(entries []models.RequestEntry, response []models.ResponseEntry) *validation.Result {
	if len(response) != len(entries) {
		return validation.Error(validator.CodeInvalidNumberOfItems,
			fmt.Sprintf("the request has %d items, the response answers %d", len(entries), len(response)))
	}
	for i, entry := range entries {
		path := entryPath(i)
		answer := response[i]
		if entry.IsGroup() != answer.IsGroup() {
			return validation.Error(validator.CodeInvalidResponseItemForRequestItem, path+" is answered with the wrong shape")
		}
		if !entry.IsGroup() {
			if answer.Item == nil {
				return validation.Error(validator.CodeInvalidResponseItemForRequestItem, path+" has no response item")
			}
			continue
		}
		if len(answer.Group.Items) != len(entry.Group.Items) {
			return validation.Error(validator.CodeInvalidNumberOfItems,
				fmt.Sprintf("%s has %d items, the response answers %d", path, len(entry.Group.Items), len(answer.Group.Items)))
		}
		for j, item := range answer.Group.Items {
			if item == nil {
				return validation.Error(validator.CodeInvalidResponseItemForRequestItem, childPath(path, j)+" has no response item")
			}
		}
	}
	return validation.Success()
}

func entryPath(i int) string {
	return fmt.Sprintf("items[%d]", i)
}

func childPath(parent string, j int) string {
	return fmt.Sprintf("%s.items[%d]", parent, j)
}
