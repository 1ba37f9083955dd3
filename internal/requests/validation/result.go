// Package validation holds the composite result tree produced wherever request
// items are validated. The tree mirrors the request item tree: one child per
// entry, and one grandchild per item inside a group.
package validation

import (
	"strings"

	dErrors "parley/pkg/domain-errors"
)

// CodeInheritedFromItem marks a node that failed only because a child did.
const CodeInheritedFromItem = "inheritedFromItem"

// Result is either a success or an error node. Both kinds may carry children.
type Result struct {
	code    string
	message string
	items   []*Result
}

// Success returns a success node with the given children.
func Success(items ...*Result) *Result {
	return &Result{items: items}
}

// Error returns an error node.
func Error(code, message string, items ...*Result) *Result {
	return &Result{code: code, message: message, items: items}
}

// FromItems aggregates children: the node is an error when any child is.
func FromItems(items []*Result) *Result {
	for _, item := range items {
		if item.IsError() {
			return Error(CodeInheritedFromItem, "some child items have errors", items...)
		}
	}
	return Success(items...)
}

func (r *Result) IsSuccess() bool  { return r.code == "" }
func (r *Result) IsError() bool    { return r.code != "" }
func (r *Result) Code() string     { return r.code }
func (r *Result) Message() string  { return r.message }
func (r *Result) Items() []*Result { return r.items }

// FirstError walks the tree depth-first and returns the first node that failed
// on its own account, skipping inherited wrappers. Nil when the tree succeeded.
func (r *Result) FirstError() *Result {
	if r.IsSuccess() {
		return nil
	}
	for _, item := range r.items {
		if found := item.FirstError(); found != nil {
			return found
		}
	}
	return r
}

// Errors collects every leaf-level failure in tree order.
func (r *Result) Errors() []*Result {
	var out []*Result
	r.collect(&out)
	return out
}

func (r *Result) collect(out *[]*Result) {
	if r.IsSuccess() {
		return
	}
	before := len(*out)
	for _, item := range r.items {
		item.collect(out)
	}
	if len(*out) == before {
		*out = append(*out, r)
	}
}

// Err converts a failed tree into a validation domain error listing every
// failure. It returns nil for a success.
func (r *Result) Err() error {
	if r.IsSuccess() {
		return nil
	}
	failures := r.Errors()
	msgs := make([]string, 0, len(failures))
	for _, f := range failures {
		msgs = append(msgs, f.code+": "+f.message)
	}
	return dErrors.New(dErrors.CodeValidation, strings.Join(msgs, "; "))
}
