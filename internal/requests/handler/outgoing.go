package handler

import (
	"net/http"

	"parley/internal/requests/models"
	"parley/internal/requests/service"
	id "parley/pkg/domain"
	dErrors "parley/pkg/domain-errors"
	"parley/pkg/platform/httputil"
	"parley/pkg/platform/middleware/auth"
	"parley/pkg/requestcontext"
)

// SentRequest is the body of POST /requests/outgoing/{id}/sent. Author
// defaults to the caller.
type SentRequest struct {
	Source models.RequestSource `json:"source"`
	Author id.Address           `json:"author,omitempty"`
}

func (h *Handler) handleCanCreateOutgoing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params, ok := httputil.DecodeAndPrepare[service.CreateOutgoingParameters](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	result, err := h.outgoing.CanCreate(ctx, *params)
	if err != nil {
		h.writeServiceError(ctx, w, "can_create", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toValidationResponse(result))
}

func (h *Handler) handleCreateOutgoing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params, ok := httputil.DecodeAndPrepare[service.CreateOutgoingParameters](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	req, err := h.outgoing.Create(ctx, *params)
	if err != nil {
		h.writeServiceError(ctx, w, "create", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, req)
}

func (h *Handler) handleSentOutgoing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID, ok := h.requestIDParam(w, r)
	if !ok {
		return
	}
	body, ok := httputil.DecodeAndPrepare[SentRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	params := service.SentParameters{RequestID: requestID, Source: body.Source, Author: body.Author}
	if params.Author.IsNil() {
		params.Author = auth.GetCaller(ctx)
	}
	if err := params.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := h.outgoing.Sent(ctx, params)
	if err != nil {
		h.writeServiceError(ctx, w, "sent", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, req)
}

func (h *Handler) handleCompleteOutgoing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID, ok := h.requestIDParam(w, r)
	if !ok {
		return
	}
	params, ok := httputil.DecodeAndPrepare[service.CompleteOutgoingParameters](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if params.Response.RequestID != requestID {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "response.requestId does not match the path"))
		return
	}
	req, err := h.outgoing.Complete(ctx, *params)
	if err != nil {
		h.writeServiceError(ctx, w, "complete_outgoing", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, req)
}

func (h *Handler) handleGetOutgoing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID, ok := h.requestIDParam(w, r)
	if !ok {
		return
	}
	req, err := h.outgoing.Get(ctx, requestID)
	if err != nil {
		h.writeServiceError(ctx, w, "get_outgoing", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, req)
}

func (h *Handler) handleListOutgoing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query, err := parseListQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	requests, err := h.outgoing.List(ctx, query)
	if err != nil {
		h.writeServiceError(ctx, w, "list_outgoing", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newListResponse(requests))
}

func (h *Handler) handleFailOutgoing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID, ok := h.requestIDParam(w, r)
	if !ok {
		return
	}
	body, ok := httputil.DecodeAndPrepare[service.FailParameters](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	req, err := h.outgoing.Fail(ctx, requestID, body.Reason)
	if err != nil {
		h.writeServiceError(ctx, w, "fail_outgoing", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, req)
}

func (h *Handler) handleSendOutgoing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID, ok := h.requestIDParam(w, r)
	if !ok {
		return
	}
	req, err := h.courier.SendRequest(ctx, requestID)
	if err != nil {
		h.writeServiceError(ctx, w, "send_request", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, req)
}
