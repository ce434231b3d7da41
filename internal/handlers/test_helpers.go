package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BradenHooton/lumina/internal/auth"
	"github.com/BradenHooton/lumina/internal/models"
	"github.com/BradenHooton/lumina/internal/services"
	pkghttp "github.com/BradenHooton/lumina/pkg/http"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithSession adds a session principal to the request context for testing protected endpoints
func WithSession(req *http.Request, identifier string, role models.Role) *http.Request {
	ctx := auth.ContextWithSession(req.Context(), &models.SessionProjection{
		Identifier: identifier,
		Role:       role,
	})
	return req.WithContext(ctx)
}

// WithURLParam sets a chi route parameter on the request
func WithURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	contentType := w.Header().Get("Content-Type")
	assert.Equal(t, "application/json", contentType, "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is a valid error response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	LoginFunc         func(ctx context.Context, identifier, secret string) (*services.LoginResponse, error)
	LogoutFunc        func(ctx context.Context)
	SessionFunc       func() models.Session
	LockoutStatusFunc func(ctx context.Context) models.LockoutStatus
}

func (m *MockAuthService) Login(ctx context.Context, identifier, secret string) (*services.LoginResponse, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, identifier, secret)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAuthService) Logout(ctx context.Context) {
	if m.LogoutFunc != nil {
		m.LogoutFunc(ctx)
	}
}

func (m *MockAuthService) Session() models.Session {
	if m.SessionFunc != nil {
		return m.SessionFunc()
	}
	return models.Session{}
}

func (m *MockAuthService) LockoutStatus(ctx context.Context) models.LockoutStatus {
	if m.LockoutStatusFunc != nil {
		return m.LockoutStatusFunc(ctx)
	}
	return models.LockoutStatus{}
}

// MockSearchService implements SearchServiceInterface for testing
type MockSearchService struct {
	SearchFunc       func(ctx context.Context, actor *models.SessionProjection, query string) (*services.SearchResponse, error)
	HistoryFunc      func() []string
	ClearHistoryFunc func(ctx context.Context)
}

func (m *MockSearchService) Search(ctx context.Context, actor *models.SessionProjection, query string) (*services.SearchResponse, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, actor, query)
	}
	return &services.SearchResponse{Query: query, Results: []models.SearchResult{}}, nil
}

func (m *MockSearchService) History() []string {
	if m.HistoryFunc != nil {
		return m.HistoryFunc()
	}
	return []string{}
}

func (m *MockSearchService) ClearHistory(ctx context.Context) {
	if m.ClearHistoryFunc != nil {
		m.ClearHistoryFunc(ctx)
	}
}

// policyMutation is the shape shared by the single-argument firewall operations
type policyMutation func(ctx context.Context, actor *models.SessionProjection, arg string) (*models.FirewallPolicy, error)

// MockFirewallService implements FirewallServiceInterface for testing
type MockFirewallService struct {
	PolicyFunc              func() *models.FirewallPolicy
	UpdateFunc              func(ctx context.Context, actor *models.SessionProjection, patch *models.FirewallPolicyPatch) (*models.FirewallPolicy, error)
	AddAllowedDomainFunc    policyMutation
	RemoveAllowedDomainFunc policyMutation
	AddBlockWordFunc        policyMutation
	RemoveBlockWordFunc     policyMutation
	UpdateDefinitionsFunc   func(ctx context.Context, actor *models.SessionProjection) (*models.FirewallPolicy, error)
	ResetFunc               func(ctx context.Context, actor *models.SessionProjection) (*models.FirewallPolicy, error)
}

func (m *MockFirewallService) Policy() *models.FirewallPolicy {
	if m.PolicyFunc != nil {
		return m.PolicyFunc()
	}
	return &models.FirewallPolicy{}
}

func (m *MockFirewallService) Update(ctx context.Context, actor *models.SessionProjection, patch *models.FirewallPolicyPatch) (*models.FirewallPolicy, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, actor, patch)
	}
	return nil, models.ErrInternalServer
}

func (m *MockFirewallService) AddAllowedDomain(ctx context.Context, actor *models.SessionProjection, pattern string) (*models.FirewallPolicy, error) {
	return callMutation(m.AddAllowedDomainFunc, ctx, actor, pattern)
}

func (m *MockFirewallService) RemoveAllowedDomain(ctx context.Context, actor *models.SessionProjection, pattern string) (*models.FirewallPolicy, error) {
	return callMutation(m.RemoveAllowedDomainFunc, ctx, actor, pattern)
}

func (m *MockFirewallService) AddBlockWord(ctx context.Context, actor *models.SessionProjection, word string) (*models.FirewallPolicy, error) {
	return callMutation(m.AddBlockWordFunc, ctx, actor, word)
}

func (m *MockFirewallService) RemoveBlockWord(ctx context.Context, actor *models.SessionProjection, word string) (*models.FirewallPolicy, error) {
	return callMutation(m.RemoveBlockWordFunc, ctx, actor, word)
}

func (m *MockFirewallService) UpdateDefinitions(ctx context.Context, actor *models.SessionProjection) (*models.FirewallPolicy, error) {
	if m.UpdateDefinitionsFunc != nil {
		return m.UpdateDefinitionsFunc(ctx, actor)
	}
	return nil, models.ErrInternalServer
}

func (m *MockFirewallService) Reset(ctx context.Context, actor *models.SessionProjection) (*models.FirewallPolicy, error) {
	if m.ResetFunc != nil {
		return m.ResetFunc(ctx, actor)
	}
	return nil, models.ErrInternalServer
}

func callMutation(fn policyMutation, ctx context.Context, actor *models.SessionProjection, arg string) (*models.FirewallPolicy, error) {
	if fn != nil {
		return fn(ctx, actor, arg)
	}
	return nil, models.ErrInternalServer
}

// MockAdminService implements AdminServiceInterface for testing
type MockAdminService struct {
	ResetSystemFunc func(ctx context.Context, actor *models.SessionProjection) error
}

func (m *MockAdminService) ResetSystem(ctx context.Context, actor *models.SessionProjection) error {
	if m.ResetSystemFunc != nil {
		return m.ResetSystemFunc(ctx, actor)
	}
	return nil
}

// MockPinger implements Pinger for testing
type MockPinger struct {
	PingFunc func(ctx context.Context) error
}

func (m *MockPinger) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}
