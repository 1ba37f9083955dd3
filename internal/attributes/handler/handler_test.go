package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"parley/internal/attributes/handler/mocks"
	"parley/internal/attributes/models"
	"parley/internal/attributes/service"
	id "parley/pkg/domain"
	dErrors "parley/pkg/domain-errors"
	"parley/pkg/platform/middleware/admin"
	"parley/pkg/platform/middleware/auth"
	"parley/pkg/testutil"
)

const (
	alice      id.Address = "did:parley:alice"
	bob        id.Address = "did:parley:bob"
	adminToken            = "repair-token"
)

type AttributesHandlerSuite struct {
	suite.Suite
	service   *mocks.MockService
	router    chi.Router
	validator *auth.HMACValidator
}

func TestAttributesHandlerSuite(t *testing.T) {
	suite.Run(t, new(AttributesHandlerSuite))
}

func (s *AttributesHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	s.validator = auth.NewHMACValidator("test-secret", "", "")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.router = chi.NewRouter()
	New(s.service, logger, s.validator, adminToken, alice).Register(s.router)
}

func (s *AttributesHandlerSuite) do(req *http.Request, caller id.Address) *httptest.ResponseRecorder {
	if caller != "" {
		token, err := s.validator.Sign(caller, time.Minute)
		s.Require().NoError(err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return testutil.DoRequest(s.router, req)
}

func (s *AttributesHandlerSuite) postContent(path string, owner id.Address) *http.Request {
	return testutil.NewJSONRequest(s.T(), http.MethodPost, path, map[string]any{
		"@type":     "IdentityAttribute",
		"owner":     owner,
		"valueType": "GivenName",
		"value":     map[string]string{"value": "Alice"},
	})
}

func (s *AttributesHandlerSuite) TestCreate() {
	s.Run("owner must be the caller", func() {
		w := s.do(s.postContent("/attributes", bob), alice)
		testutil.AssertStatusAndError(s.T(), w, http.StatusForbidden, string(dErrors.CodeForbidden))
	})

	s.Run("creates for the caller", func() {
		s.service.EXPECT().CreateAttribute(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, content models.Content) (*models.LocalAttribute, error) {
				assert.Equal(s.T(), models.KindIdentity, content.Kind)
				assert.Equal(s.T(), "GivenName", content.ValueType)
				return &models.LocalAttribute{ID: "ATT-1", Content: content}, nil
			})

		w := s.do(s.postContent("/attributes", alice), alice)

		require.Equal(s.T(), http.StatusCreated, w.Code)
		got := testutil.UnmarshalResponse[models.LocalAttribute](s.T(), w)
		assert.Equal(s.T(), id.AttributeID("ATT-1"), got.ID)
	})

	s.Run("invalid content never reaches the service", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/attributes", map[string]any{
			"@type": "IdentityAttribute",
			"owner": alice,
		})
		w := s.do(req, alice)
		testutil.AssertStatus(s.T(), w, http.StatusBadRequest)
	})
}

func (s *AttributesHandlerSuite) TestSucceed() {
	predecessor := &models.LocalAttribute{ID: "ATT-1", SucceededBy: ptr(id.AttributeID("ATT-2"))}
	successor := &models.LocalAttribute{ID: "ATT-2", Succeeds: ptr(id.AttributeID("ATT-1"))}
	s.service.EXPECT().SucceedAttribute(gomock.Any(), id.AttributeID("ATT-1"), gomock.Any()).Return(predecessor, successor, nil)

	w := s.do(s.postContent("/attributes/ATT-1/succeed", alice), alice)

	require.Equal(s.T(), http.StatusCreated, w.Code)
	got := testutil.UnmarshalResponse[SucceedResponse](s.T(), w)
	assert.Equal(s.T(), id.AttributeID("ATT-2"), *got.Predecessor.SucceededBy)
	assert.Equal(s.T(), id.AttributeID("ATT-1"), *got.Successor.Succeeds)
}

func (s *AttributesHandlerSuite) TestGetNotFound() {
	s.service.EXPECT().GetAttribute(gomock.Any(), id.AttributeID("ATT-9")).
		Return(nil, dErrors.New(dErrors.CodeNotFound, "attribute not found"))

	w := s.do(testutil.NewRequest(s.T(), http.MethodGet, "/attributes/ATT-9"), alice)

	testutil.AssertStatusAndError(s.T(), w, http.StatusNotFound, string(dErrors.CodeNotFound))
}

func (s *AttributesHandlerSuite) TestListParsesFilter() {
	validAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.service.EXPECT().ListAttributes(gomock.Any(), models.Filter{
		Kind:           models.KindIdentity,
		ValueType:      "GivenName",
		SharedWithPeer: bob,
		OnlyOriginals:  false,
		ValidAt:        &validAt,
	}).Return(nil, nil)

	w := s.do(httptest.NewRequest(http.MethodGet,
		"/attributes?kind=IdentityAttribute&value_type=GivenName&shared_with=did:parley:bob&valid_at=2024-03-01T12:00:00Z", nil), alice)

	require.Equal(s.T(), http.StatusOK, w.Code)
	assert.JSONEq(s.T(), `{"attributes":[],"count":0}`, w.Body.String())
}

func (s *AttributesHandlerSuite) TestListRejectsBadFilter() {
	for _, query := range []string{"kind=Other", "only_originals=maybe", "valid_at=yesterday"} {
		w := s.do(httptest.NewRequest(http.MethodGet, "/attributes?"+query, nil), alice)
		assert.Equal(s.T(), http.StatusBadRequest, w.Code, query)
	}
}

func (s *AttributesHandlerSuite) TestCurrentRouteIsNotAnID() {
	s.service.EXPECT().FindCurrent(gomock.Any(), models.Filter{Owner: alice, ValueType: "GivenName"}).
		Return(&models.LocalAttribute{ID: "ATT-3"}, nil)

	w := s.do(httptest.NewRequest(http.MethodGet, "/attributes/current?owner=did:parley:alice&value_type=GivenName", nil), alice)

	require.Equal(s.T(), http.StatusOK, w.Code)
}

func (s *AttributesHandlerSuite) TestRepairRequiresAdminToken() {
	s.Run("bearer token alone is not enough", func() {
		w := s.do(httptest.NewRequest(http.MethodPost, "/admin/attributes/repair", nil), alice)
		assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
	})

	s.Run("admin token runs the pass", func() {
		s.service.EXPECT().RepairSuccessions(gomock.Any()).Return(&service.RepairReport{
			Completed: []id.AttributeID{"ATT-1"},
		}, nil)

		req := httptest.NewRequest(http.MethodPost, "/admin/attributes/repair", nil)
		req.Header.Set(admin.HeaderAdminToken, adminToken)
		w := s.do(req, "")

		require.Equal(s.T(), http.StatusOK, w.Code)
		got := testutil.UnmarshalResponse[service.RepairReport](s.T(), w)
		assert.Equal(s.T(), []id.AttributeID{"ATT-1"}, got.Completed)
	})
}

func ptr[T any](v T) *T { return &v }
