package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"parley/internal/attributes/models"
	"parley/internal/attributes/service"
	id "parley/pkg/domain"
	dErrors "parley/pkg/domain-errors"
	"parley/pkg/platform/httputil"
	"parley/pkg/platform/middleware/admin"
	"parley/pkg/platform/middleware/auth"
	"parley/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/attributes-mocks.go -package=mocks Service

// Service is the attribute store contract the API drives.
type Service interface {
	CreateAttribute(ctx context.Context, content models.Content) (*models.LocalAttribute, error)
	SucceedAttribute(ctx context.Context, predecessorID id.AttributeID, successor models.Content) (*models.LocalAttribute, *models.LocalAttribute, error)
	GetAttribute(ctx context.Context, attributeID id.AttributeID) (*models.LocalAttribute, error)
	ListAttributes(ctx context.Context, filter models.Filter) ([]*models.LocalAttribute, error)
	FindCurrent(ctx context.Context, filter models.Filter) (*models.LocalAttribute, error)
	RepairSuccessions(ctx context.Context) (*service.RepairReport, error)
}

// Handler serves the attribute API and the succession repair endpoint.
type Handler struct {
	logger       *slog.Logger
	attributes   Service
	jwtValidator auth.JWTValidator
	adminToken   string
	accounts     []id.Address
}

func New(attributes Service, logger *slog.Logger, jwtValidator auth.JWTValidator, adminToken string, accounts ...id.Address) *Handler {
	return &Handler{
		logger:       logger,
		attributes:   attributes,
		jwtValidator: jwtValidator,
		adminToken:   adminToken,
		accounts:     accounts,
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(h.jwtValidator, h.logger, h.accounts...))
		r.Post("/attributes", h.handleCreate)
		r.Get("/attributes", h.handleList)
		r.Get("/attributes/current", h.handleCurrent)
		r.Get("/attributes/{id}", h.handleGet)
		r.Post("/attributes/{id}/succeed", h.handleSucceed)
	})

	r.Group(func(r chi.Router) {
		r.Use(admin.RequireAdminToken(h.adminToken, h.logger))
		r.Post("/admin/attributes/repair", h.handleRepair)
	})
}

// SucceedResponse returns both records touched by a succession.
type SucceedResponse struct {
	Predecessor *models.LocalAttribute `json:"predecessor"`
	Successor   *models.LocalAttribute `json:"successor"`
}

// ListResponse wraps a set of attributes.
type ListResponse struct {
	Attributes []*models.LocalAttribute `json:"attributes"`
	Count      int                      `json:"count"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	content, ok := h.ownContent(w, r)
	if !ok {
		return
	}
	attr, err := h.attributes.CreateAttribute(ctx, content)
	if err != nil {
		h.writeServiceError(ctx, w, "create_attribute", err)
		return
	}
	h.logger.InfoContext(ctx, "attribute created",
		"request_id", requestcontext.RequestID(ctx),
		"attribute_id", attr.ID,
	)
	httputil.WriteJSON(w, http.StatusCreated, attr)
}

func (h *Handler) handleSucceed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	predecessorID, ok := h.attributeIDParam(w, r)
	if !ok {
		return
	}
	content, ok := h.ownContent(w, r)
	if !ok {
		return
	}
	predecessor, successor, err := h.attributes.SucceedAttribute(ctx, predecessorID, content)
	if err != nil {
		h.writeServiceError(ctx, w, "succeed_attribute", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, SucceedResponse{Predecessor: predecessor, Successor: successor})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	attributeID, ok := h.attributeIDParam(w, r)
	if !ok {
		return
	}
	attr, err := h.attributes.GetAttribute(ctx, attributeID)
	if err != nil {
		h.writeServiceError(ctx, w, "get_attribute", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, attr)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter, err := parseFilter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	attrs, err := h.attributes.ListAttributes(ctx, filter)
	if err != nil {
		h.writeServiceError(ctx, w, "list_attributes", err)
		return
	}
	if attrs == nil {
		attrs = []*models.LocalAttribute{}
	}
	httputil.WriteJSON(w, http.StatusOK, ListResponse{Attributes: attrs, Count: len(attrs)})
}

func (h *Handler) handleCurrent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter, err := parseFilter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	attr, err := h.attributes.FindCurrent(ctx, filter)
	if err != nil {
		h.writeServiceError(ctx, w, "find_current_attribute", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, attr)
}

func (h *Handler) handleRepair(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	report, err := h.attributes.RepairSuccessions(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, "repair_successions", err)
		return
	}
	h.logger.InfoContext(ctx, "succession repair finished",
		"request_id", requestcontext.RequestID(ctx),
		"completed", len(report.Completed),
		"cleared", len(report.Cleared),
	)
	httputil.WriteJSON(w, http.StatusOK, report)
}

// ownContent decodes attribute content whose owner must be the caller.
func (h *Handler) ownContent(w http.ResponseWriter, r *http.Request) (models.Content, bool) {
	ctx := r.Context()
	caller := auth.GetCaller(ctx)
	content, ok := httputil.DecodeAndPrepare[models.Content](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return models.Content{}, false
	}
	if content.Owner != caller {
		h.logger.WarnContext(ctx, "attribute owner is not the caller",
			"request_id", requestcontext.RequestID(ctx),
			"owner", content.Owner,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "attributes can only be created for the caller"))
		return models.Content{}, false
	}
	return *content, true
}

func (h *Handler) attributeIDParam(w http.ResponseWriter, r *http.Request) (id.AttributeID, bool) {
	attributeID, err := id.ParseAttributeID(chi.URLParam(r, "id"))
	if err != nil {
		h.logger.WarnContext(r.Context(), "invalid attribute id in path",
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err,
		)
		httputil.WriteError(w, err)
		return "", false
	}
	return attributeID, true
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	code := dErrors.CodeOf(err)
	if httputil.StatusFor(code) >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, "attribute operation failed",
			"operation", op,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	} else {
		h.logger.WarnContext(ctx, "attribute operation rejected",
			"operation", op,
			"request_id", requestcontext.RequestID(ctx),
			"code", string(code),
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}

// parseFilter reads kind, owner, value_type, key, shared_with,
// source_attribute, only_originals and valid_at.
func parseFilter(r *http.Request) (models.Filter, error) {
	values := r.URL.Query()
	f := models.Filter{
		Kind:      models.Kind(values.Get("kind")),
		ValueType: values.Get("value_type"),
		Key:       values.Get("key"),
	}
	if f.Kind != "" && !f.Kind.IsValid() {
		return f, dErrors.Newf(dErrors.CodeBadRequest, "unknown attribute kind %q", f.Kind)
	}
	if raw := values.Get("owner"); raw != "" {
		addr, err := id.ParseAddress(raw)
		if err != nil {
			return f, err
		}
		f.Owner = addr
	}
	if raw := values.Get("shared_with"); raw != "" {
		addr, err := id.ParseAddress(raw)
		if err != nil {
			return f, err
		}
		f.SharedWithPeer = addr
	}
	if raw := values.Get("source_attribute"); raw != "" {
		attributeID, err := id.ParseAttributeID(raw)
		if err != nil {
			return f, err
		}
		f.SourceAttribute = attributeID
	}
	if raw := values.Get("only_originals"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return f, dErrors.New(dErrors.CodeBadRequest, "only_originals must be a boolean")
		}
		f.OnlyOriginals = v
	}
	if raw := values.Get("valid_at"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return f, dErrors.New(dErrors.CodeBadRequest, "valid_at must be RFC 3339")
		}
		f.ValidAt = &t
	}
	return f, nil
}
