package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Wesllen-Vinicius/controle-producao-sub001/internal/domain"
	"github.com/Wesllen-Vinicius/controle-producao-sub001/internal/ledger"
	"github.com/Wesllen-Vinicius/controle-producao-sub001/internal/session"
	"github.com/Wesllen-Vinicius/controle-producao-sub001/internal/store/memory"
)

const testSecret = "test-secret-test-secret-test-secret!"

func newTestAPI(t *testing.T) (*API, http.Handler) {
	t.Helper()
	t.Setenv("SEED_ADMIN_PASSWORD", "admin123")
	t.Setenv("SEED_OPERATOR_PASSWORD", "operator123")
	repo := memory.NewSeeded()
	svc := ledger.New(repo, nil, session.New(domain.Actor{}), nil)
	if report := svc.Refresh(context.Background()); report.Err() != nil {
		t.Fatalf("refresh failed: %v", report.Err())
	}
	auth := NewAuthManager(testSecret, time.Hour, repo)
	api := New(svc, auth, "http://127.0.0.1:3000")
	return api, api.Handler()
}

func loginToken(t *testing.T, handler http.Handler, username, password string) string {
	t.Helper()
	body, _ := json.Marshal(domain.LoginRequest{Username: username, Password: password})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed with status %d: %s", rec.Code, rec.Body.String())
	}
	var resp domain.LoginResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return resp.AccessToken
}

func csrfToken(t *testing.T, handler http.Handler) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/csrf-token", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("csrf token fetch failed: %d", rec.Code)
	}
	var resp struct {
		Token string `json:"csrf_token"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode csrf response: %v", err)
	}
	return resp.Token
}

func authedRequest(t *testing.T, handler http.Handler, method, path, token, csrf string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	if csrf != "" {
		req.Header.Set("X-CSRF-Token", csrf)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	_, handler := newTestAPI(t)
	body, _ := json.Marshal(domain.LoginRequest{Username: "admin", Password: "wrong"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestProductsRequireAuth(t *testing.T) {
	_, handler := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	token := loginToken(t, handler, "admin", "admin123")
	rec = authedRequest(t, handler, http.MethodGet, "/api/v1/products", token, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Products []domain.Product `json:"products"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode products: %v", err)
	}
	if len(resp.Products) == 0 {
		t.Fatalf("expected seeded products")
	}
}

func TestMutationsRequireCSRF(t *testing.T) {
	_, handler := newTestAPI(t)
	token := loginToken(t, handler, "admin", "admin123")

	payload := transactionCreateRequest{
		TransactionInput: domain.TransactionInput{
			ProductID:    "prod-tripa",
			Type:         domain.TxInbound,
			QuantityText: "10",
		},
	}
	rec := authedRequest(t, handler, http.MethodPost, "/api/v1/transactions", token, "", payload)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without CSRF token, got %d", rec.Code)
	}

	csrf := csrfToken(t, handler)
	rec = authedRequest(t, handler, http.MethodPost, "/api/v1/transactions", token, csrf, payload)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSubmitTransactionSoftBlockRoundTrip(t *testing.T) {
	_, handler := newTestAPI(t)
	token := loginToken(t, handler, "operator", "operator123")
	csrf := csrfToken(t, handler)

	payload := transactionCreateRequest{
		TransactionInput: domain.TransactionInput{
			ProductID:     "prod-tripa",
			Type:          domain.TxOutbound,
			QuantityText:  "30",
			Justification: "venda direta",
		},
	}

	rec := authedRequest(t, handler, http.MethodPost, "/api/v1/transactions", token, csrf, payload)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 soft block, got %d: %s", rec.Code, rec.Body.String())
	}

	payload.Confirmed = true
	rec = authedRequest(t, handler, http.MethodPost, "/api/v1/transactions", token, csrf, payload)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 after confirmation, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestUndoIsAdminOnly(t *testing.T) {
	_, handler := newTestAPI(t)
	operatorToken := loginToken(t, handler, "operator", "operator123")
	csrf := csrfToken(t, handler)

	rec := authedRequest(t, handler, http.MethodPost, "/api/v1/transactions/undo", operatorToken, csrf, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for operator, got %d", rec.Code)
	}
}

func TestProductionItemsPath(t *testing.T) {
	_, handler := newTestAPI(t)
	token := loginToken(t, handler, "admin", "admin123")
	csrf := csrfToken(t, handler)

	rec := authedRequest(t, handler, http.MethodPost, "/api/v1/productions", token, csrf, domain.ProductionInput{
		AnimalCount: 25,
		Items:       []domain.ProductionItemInput{{ProductID: "prod-mocoto", Produced: 40}},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Production domain.ProductionBatch `json:"production"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode production: %v", err)
	}

	rec = authedRequest(t, handler, http.MethodGet, "/api/v1/productions/"+created.Production.ID+"/items", token, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Items []domain.ProductionItem `json:"items"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode items: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].Target != 50 {
		t.Fatalf("unexpected items: %+v", resp.Items)
	}
}

func TestStatusFromError(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrUnknownProduct, http.StatusNotFound},
		{domain.ErrPermissionDenied, http.StatusForbidden},
		{domain.ErrDuplicateRecord, http.StatusConflict},
		{domain.ErrInsufficientBalance, http.StatusConflict},
		{domain.ErrInvalidQuantity, http.StatusUnprocessableEntity},
		{domain.ErrMissingJustification, http.StatusUnprocessableEntity},
		{&domain.RemoteError{Op: "list", Message: "down"}, http.StatusBadGateway},
		{errors.New("anything else"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := statusFromError(tc.err); got != tc.want {
			t.Fatalf("statusFromError(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestParseTokenRejectsTampering(t *testing.T) {
	api, handler := newTestAPI(t)
	token := loginToken(t, handler, "admin", "admin123")

	if _, err := api.auth.ParseToken(token); err != nil {
		t.Fatalf("valid token rejected: %v", err)
	}
	if _, err := api.auth.ParseToken(token + "x"); err == nil {
		t.Fatalf("tampered token accepted")
	}

	other := NewAuthManager("another-secret-another-secret-12345!", time.Hour, nil)
	if _, err := other.ParseToken(token); err == nil {
		t.Fatalf("token signed with a different secret accepted")
	}
}
