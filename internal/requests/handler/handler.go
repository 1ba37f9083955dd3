package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"parley/internal/requests/models"
	"parley/internal/requests/service"
	"parley/internal/requests/validation"
	id "parley/pkg/domain"
	dErrors "parley/pkg/domain-errors"
	"parley/pkg/platform/httputil"
	"parley/pkg/platform/middleware/auth"
	"parley/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/requests-mocks.go -package=mocks OutgoingService,IncomingService,Courier

// OutgoingService drives requests this node initiates.
type OutgoingService interface {
	CanCreate(ctx context.Context, params service.CreateOutgoingParameters) (*validation.Result, error)
	Create(ctx context.Context, params service.CreateOutgoingParameters) (*models.Request, error)
	Sent(ctx context.Context, params service.SentParameters) (*models.Request, error)
	Complete(ctx context.Context, params service.CompleteOutgoingParameters) (*models.Request, error)
	Get(ctx context.Context, requestID id.RequestID) (*models.Request, error)
	List(ctx context.Context, query models.Query) ([]*models.Request, error)
	Fail(ctx context.Context, requestID id.RequestID, reason string) (*models.Request, error)
}

// IncomingService drives requests peers sent to this node.
type IncomingService interface {
	Received(ctx context.Context, params service.ReceivedParameters) (*models.Request, error)
	CheckPrerequisites(ctx context.Context, requestID id.RequestID) (*service.PrerequisitesReport, error)
	CanAccept(ctx context.Context, params models.DecideRequestParameters) (*validation.Result, error)
	CanReject(ctx context.Context, params models.DecideRequestParameters) (*validation.Result, error)
	Accept(ctx context.Context, params models.DecideRequestParameters) (*models.Request, error)
	Reject(ctx context.Context, params models.DecideRequestParameters) (*models.Request, error)
	Complete(ctx context.Context, params service.CompleteIncomingParameters) (*models.Request, error)
	Get(ctx context.Context, requestID id.RequestID) (*models.Request, error)
	List(ctx context.Context, query models.Query) ([]*models.Request, error)
	Fail(ctx context.Context, requestID id.RequestID, reason string) (*models.Request, error)
}

// Courier delivers requests and responses to the peer.
type Courier interface {
	SendRequest(ctx context.Context, requestID id.RequestID) (*models.Request, error)
	SendResponse(ctx context.Context, requestID id.RequestID) (*models.Request, error)
}

// Handler exposes both controllers over HTTP. Every route requires a bearer
// token for one of the accounts this node serves.
type Handler struct {
	logger       *slog.Logger
	outgoing     OutgoingService
	incoming     IncomingService
	jwtValidator auth.JWTValidator
	accounts     []id.Address
	courier      Courier
}

func New(outgoing OutgoingService, incoming IncomingService, logger *slog.Logger, jwtValidator auth.JWTValidator, accounts ...id.Address) *Handler {
	return &Handler{
		logger:       logger,
		outgoing:     outgoing,
		incoming:     incoming,
		jwtValidator: jwtValidator,
		accounts:     accounts,
	}
}

// WithCourier enables the send and respond routes.
func (h *Handler) WithCourier(c Courier) *Handler {
	h.courier = c
	return h
}

func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(h.jwtValidator, h.logger, h.accounts...))

		r.Route("/requests/outgoing", func(r chi.Router) {
			r.Post("/", h.handleCreateOutgoing)
			r.Post("/validate", h.handleCanCreateOutgoing)
			r.Get("/", h.handleListOutgoing)
			r.Get("/{id}", h.handleGetOutgoing)
			r.Post("/{id}/sent", h.handleSentOutgoing)
			r.Post("/{id}/complete", h.handleCompleteOutgoing)
			r.Post("/{id}/fail", h.handleFailOutgoing)
			if h.courier != nil {
				r.Post("/{id}/send", h.handleSendOutgoing)
			}
		})

		r.Route("/requests/incoming", func(r chi.Router) {
			r.Post("/", h.handleReceivedIncoming)
			r.Get("/", h.handleListIncoming)
			r.Get("/{id}", h.handleGetIncoming)
			r.Get("/{id}/prerequisites", h.handleCheckPrerequisites)
			r.Post("/{id}/can-accept", h.handleCanAccept)
			r.Post("/{id}/can-reject", h.handleCanReject)
			r.Post("/{id}/accept", h.handleAccept)
			r.Post("/{id}/reject", h.handleReject)
			r.Post("/{id}/complete", h.handleCompleteIncoming)
			r.Post("/{id}/fail", h.handleFailIncoming)
			if h.courier != nil {
				r.Post("/{id}/respond", h.handleRespondIncoming)
			}
		})
	})
}

// ValidationResponse renders a validation tree.
type ValidationResponse struct {
	Valid   bool                  `json:"valid"`
	Code    string                `json:"code,omitempty"`
	Message string                `json:"message,omitempty"`
	Items   []*ValidationResponse `json:"items,omitempty"`
}

func toValidationResponse(r *validation.Result) *ValidationResponse {
	out := &ValidationResponse{Valid: r.IsSuccess(), Code: r.Code(), Message: r.Message()}
	for _, item := range r.Items() {
		out.Items = append(out.Items, toValidationResponse(item))
	}
	return out
}

// ListResponse wraps a page of requests.
type ListResponse struct {
	Requests []*models.Request `json:"requests"`
	Count    int               `json:"count"`
}

func newListResponse(requests []*models.Request) ListResponse {
	if requests == nil {
		requests = []*models.Request{}
	}
	return ListResponse{Requests: requests, Count: len(requests)}
}

// requestIDParam reads and checks the {id} path parameter. On failure the
// error response is already written.
func (h *Handler) requestIDParam(w http.ResponseWriter, r *http.Request) (id.RequestID, bool) {
	requestID, err := id.ParseRequestID(chi.URLParam(r, "id"))
	if err != nil {
		h.logger.WarnContext(r.Context(), "invalid request id in path",
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err,
		)
		httputil.WriteError(w, err)
		return "", false
	}
	return requestID, true
}

// writeServiceError logs at a level matching the error class and writes it.
func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	code := dErrors.CodeOf(err)
	if httputil.StatusFor(code) >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, "request operation failed",
			"operation", op,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	} else {
		h.logger.WarnContext(ctx, "request operation rejected",
			"operation", op,
			"request_id", requestcontext.RequestID(ctx),
			"code", string(code),
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}

// parseListQuery reads peer, status (repeatable or comma separated),
// created_after, created_before and limit.
func parseListQuery(r *http.Request) (models.Query, error) {
	values := r.URL.Query()
	var q models.Query

	if peer := values.Get("peer"); peer != "" {
		addr, err := id.ParseAddress(peer)
		if err != nil {
			return q, err
		}
		q.Peer = addr
	}
	for _, raw := range values["status"] {
		for _, part := range strings.Split(raw, ",") {
			status := models.Status(strings.TrimSpace(part))
			if !status.IsValid() {
				return q, dErrors.Newf(dErrors.CodeBadRequest, "unknown status %q", part)
			}
			q.Statuses = append(q.Statuses, status)
		}
	}
	for key, dst := range map[string]**time.Time{
		"created_after":  &q.CreatedAfter,
		"created_before": &q.CreatedBefore,
	} {
		raw := values.Get(key)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return q, dErrors.Newf(dErrors.CodeBadRequest, "%s must be RFC 3339", key)
		}
		*dst = &t
	}
	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return q, dErrors.New(dErrors.CodeBadRequest, "limit must be a non-negative integer")
		}
		q.Limit = limit
	}
	return q, nil
}
