package handler

import (
	"context"
	"net/http"

	"parley/internal/requests/models"
	"parley/internal/requests/service"
	"parley/internal/requests/validation"
	dErrors "parley/pkg/domain-errors"
	"parley/pkg/platform/httputil"
	"parley/pkg/requestcontext"
)

// DecideRequest is the body of the accept/reject routes. The request id
// comes from the path.
type DecideRequest struct {
	Items []models.DecideItemParameters `json:"items"`
}

func (d DecideRequest) Validate() error {
	if len(d.Items) == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "items must decide every request item")
	}
	return nil
}

// CompleteIncomingRequest is the body of POST /requests/incoming/{id}/complete.
type CompleteIncomingRequest struct {
	Source *models.ResponseSource `json:"source,omitempty"`
}

func (h *Handler) handleReceivedIncoming(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params, ok := httputil.DecodeAndPrepare[service.ReceivedParameters](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	req, err := h.incoming.Received(ctx, *params)
	if err != nil {
		h.writeServiceError(ctx, w, "received", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, req)
}

func (h *Handler) handleCheckPrerequisites(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID, ok := h.requestIDParam(w, r)
	if !ok {
		return
	}
	report, err := h.incoming.CheckPrerequisites(ctx, requestID)
	if err != nil {
		h.writeServiceError(ctx, w, "check_prerequisites", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) handleCanAccept(w http.ResponseWriter, r *http.Request) {
	h.handleCanDecide(w, r, "can_accept", h.incoming.CanAccept)
}

func (h *Handler) handleCanReject(w http.ResponseWriter, r *http.Request) {
	h.handleCanDecide(w, r, "can_reject", h.incoming.CanReject)
}

func (h *Handler) handleAccept(w http.ResponseWriter, r *http.Request) {
	h.handleDecide(w, r, "accept", h.incoming.Accept)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.handleDecide(w, r, "reject", h.incoming.Reject)
}

func (h *Handler) handleCanDecide(w http.ResponseWriter, r *http.Request, op string,
	check func(context.Context, models.DecideRequestParameters) (*validation.Result, error)) {
	ctx := r.Context()
	params, ok := h.decideParams(w, r)
	if !ok {
		return
	}
	result, err := check(ctx, params)
	if err != nil {
		h.writeServiceError(ctx, w, op, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toValidationResponse(result))
}

func (h *Handler) handleDecide(w http.ResponseWriter, r *http.Request, op string,
	decide func(context.Context, models.DecideRequestParameters) (*models.Request, error)) {
	ctx := r.Context()
	params, ok := h.decideParams(w, r)
	if !ok {
		return
	}
	req, err := decide(ctx, params)
	if err != nil {
		h.writeServiceError(ctx, w, op, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, req)
}

func (h *Handler) decideParams(w http.ResponseWriter, r *http.Request) (models.DecideRequestParameters, bool) {
	ctx := r.Context()
	requestID, ok := h.requestIDParam(w, r)
	if !ok {
		return models.DecideRequestParameters{}, false
	}
	body, ok := httputil.DecodeAndPrepare[DecideRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return models.DecideRequestParameters{}, false
	}
	return models.DecideRequestParameters{RequestID: requestID, Items: body.Items}, true
}

func (h *Handler) handleCompleteIncoming(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID, ok := h.requestIDParam(w, r)
	if !ok {
		return
	}
	body, ok := httputil.DecodeAndPrepare[CompleteIncomingRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	params := service.CompleteIncomingParameters{RequestID: requestID, Source: body.Source}
	if err := params.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := h.incoming.Complete(ctx, params)
	if err != nil {
		h.writeServiceError(ctx, w, "complete_incoming", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, req)
}

func (h *Handler) handleGetIncoming(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID, ok := h.requestIDParam(w, r)
	if !ok {
		return
	}
	req, err := h.incoming.Get(ctx, requestID)
	if err != nil {
		h.writeServiceError(ctx, w, "get_incoming", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, req)
}

func (h *Handler) handleListIncoming(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query, err := parseListQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	requests, err := h.incoming.List(ctx, query)
	if err != nil {
		h.writeServiceError(ctx, w, "list_incoming", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newListResponse(requests))
}

func (h *Handler) handleFailIncoming(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID, ok := h.requestIDParam(w, r)
	if !ok {
		return
	}
	body, ok := httputil.DecodeAndPrepare[service.FailParameters](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	req, err := h.incoming.Fail(ctx, requestID, body.Reason)
	if err != nil {
		h.writeServiceError(ctx, w, "fail_incoming", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, req)
}

func (h *Handler) handleRespondIncoming(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID, ok := h.requestIDParam(w, r)
	if !ok {
		return
	}
	req, err := h.courier.SendResponse(ctx, requestID)
	if err != nil {
		h.writeServiceError(ctx, w, "send_response", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, req)
}
