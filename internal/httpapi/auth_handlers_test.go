package httpapi

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"recylink.org/internal/auth"
	"recylink.org/internal/config"
	"recylink.org/internal/store/pg"
)

// newTestAPI backs the full API with a mocked database and a real token
// service, so tests exercise the same path production requests take.
func newTestAPI(t *testing.T) (*API, sqlmock.Sqlmock, *auth.TokenService) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store := pg.NewStore(pg.NewPool(db))
	tokens, err := auth.NewTokenService("test-secret")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	cfg := config.Config{BcryptCost: bcrypt.MinCost}
	return New(store, store, tokens, ReadyProbe{}, cfg, "test"), mock, tokens
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
	}
	return body
}

func TestRegisterCreatesUserAndIssuesToken(t *testing.T) {
	api, mock, tokens := newTestAPI(t)
	created := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("insert into public.usuario").
		WithArgs("Ana", "ana@recylink.org", sqlmock.AnyArg(), nil).
		WillReturnRows(sqlmock.NewRows([]string{
			"id_usuario", "nome", "email", "telefone", "nivel_acesso", "data_cadastro",
		}).AddRow(int64(7), "Ana", "ana@recylink.org", nil, "user", created))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"nome":"Ana","email":"ana@recylink.org","password":"s3nh4-segura"}`))
	rec := httptest.NewRecorder()
	api.handleRegister(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["message"] != "Usuário registrado com sucesso!" {
		t.Fatalf("message = %v", body["message"])
	}
	if body["userId"] != float64(7) || body["userName"] != "Ana" || body["userRole"] != "user" {
		t.Fatalf("identity fields wrong: %v", body)
	}

	token, _ := body["token"].(string)
	principal, err := tokens.Verify(token)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if principal.UserID != "7" || principal.Name != "Ana" {
		t.Fatalf("principal = %+v", principal)
	}
}

func TestRegisterAcceptsLegacyFieldNames(t *testing.T) {
	api, mock, _ := newTestAPI(t)

	mock.ExpectQuery("insert into public.usuario").
		WithArgs("Bruno", "bruno@recylink.org", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{
			"id_usuario", "nome", "email", "telefone", "nivel_acesso", "data_cadastro",
		}).AddRow(int64(8), "Bruno", "bruno@recylink.org", "11999990000", "user", time.Now()))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"name":"Bruno","email":"bruno@recylink.org","senha":"outra-senha","phone":"11999990000"}`))
	rec := httptest.NewRecorder()
	api.handleRegister(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestRegisterMissingFields(t *testing.T) {
	api, _, _ := newTestAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"email":"ana@recylink.org"}`))
	rec := httptest.NewRecorder()
	api.handleRegister(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["message"] != "Nome, e-mail e senha são obrigatórios." {
		t.Fatalf("message = %v", body["message"])
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	api, mock, _ := newTestAPI(t)

	mock.ExpectQuery("insert into public.usuario").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"nome":"Ana","email":"ana@recylink.org","password":"s3nh4"}`))
	rec := httptest.NewRecorder()
	api.handleRegister(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["message"] != "Este e-mail já está em uso." {
		t.Fatalf("message = %v", body["message"])
	}
}

func userRow(hash string, active bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id_usuario", "nome", "email", "telefone", "nivel_acesso", "senha_hash", "active", "data_cadastro",
	}).AddRow(int64(7), "Ana", "ana@recylink.org", nil, "user", hash, active, time.Now())
}

func TestLoginSuccess(t *testing.T) {
	api, mock, tokens := newTestAPI(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3nh4-segura"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	mock.ExpectQuery("select id_usuario").
		WithArgs("ana@recylink.org").
		WillReturnRows(userRow(string(hash), true))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"ana@recylink.org","password":"s3nh4-segura"}`))
	rec := httptest.NewRecorder()
	api.handleLogin(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["message"] != "Login bem-sucedido!" {
		t.Fatalf("message = %v", body["message"])
	}

	token, _ := body["token"].(string)
	if principal, err := tokens.Verify(token); err != nil || principal.UserID != "7" {
		t.Fatalf("token invalid: principal=%+v err=%v", principal, err)
	}

	// The stored hash never leaves the server.
	if strings.Contains(rec.Body.String(), string(hash)) {
		t.Fatal("response leaks the password hash")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	api, mock, _ := newTestAPI(t)

	hash, _ := bcrypt.GenerateFromPassword([]byte("correta"), bcrypt.MinCost)
	mock.ExpectQuery("select id_usuario").
		WithArgs("ana@recylink.org").
		WillReturnRows(userRow(string(hash), true))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"ana@recylink.org","password":"errada"}`))
	rec := httptest.NewRecorder()
	api.handleLogin(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["message"] != "Usuário ou senha incorretos." {
		t.Fatalf("message = %v", body["message"])
	}
}

func TestLoginUnknownEmailSameMessage(t *testing.T) {
	api, mock, _ := newTestAPI(t)

	mock.ExpectQuery("select id_usuario").
		WithArgs("ghost@recylink.org").
		WillReturnError(sql.ErrNoRows)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"ghost@recylink.org","password":"qualquer"}`))
	rec := httptest.NewRecorder()
	api.handleLogin(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["message"] != "Usuário ou senha incorretos." {
		t.Fatalf("message = %v", body["message"])
	}
}

func TestLoginInactiveAccount(t *testing.T) {
	api, mock, _ := newTestAPI(t)

	hash, _ := bcrypt.GenerateFromPassword([]byte("s3nh4"), bcrypt.MinCost)
	mock.ExpectQuery("select id_usuario").
		WithArgs("ana@recylink.org").
		WillReturnRows(userRow(string(hash), false))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"ana@recylink.org","password":"s3nh4"}`))
	rec := httptest.NewRecorder()
	api.handleLogin(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["message"] != "Conta inativa. Contate o suporte." {
		t.Fatalf("message = %v", body["message"])
	}
}

func TestLoginLegacyPasswordField(t *testing.T) {
	api, mock, _ := newTestAPI(t)

	hash, _ := bcrypt.GenerateFromPassword([]byte("s3nh4"), bcrypt.MinCost)
	mock.ExpectQuery("select id_usuario").
		WithArgs("ana@recylink.org").
		WillReturnRows(userRow(string(hash), true))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"ana@recylink.org","senha":"s3nh4"}`))
	rec := httptest.NewRecorder()
	api.handleLogin(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

// Expired tokens must fail the gate end to end through the full handler
// chain, not just in the token service.
func TestExpiredTokenRejectedEndToEnd(t *testing.T) {
	api, _, _ := newTestAPI(t)

	past := time.Now().Add(-30 * 24 * time.Hour)
	issuer, err := auth.NewTokenService("test-secret", auth.WithClock(func() time.Time { return past }))
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	token, _, err := issuer.Issue(auth.Principal{UserID: "7", Role: "user"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if body := decodeBody(t, rec); body["message"] != "Token inválido ou ausente." {
		t.Fatalf("message = %v", body["message"])
	}
}
