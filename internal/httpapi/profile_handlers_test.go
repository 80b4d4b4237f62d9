package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestGetProfile(t *testing.T) {
	api, mock, _ := newTestAPI(t)
	created := time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery("select id_usuario, nome, email, telefone, nivel_acesso, data_cadastro").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id_usuario", "nome", "email", "telefone", "nivel_acesso", "data_cadastro",
		}).AddRow(int64(7), "Ana", "ana@recylink.org", nil, "user", created))

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/profile", nil), "7")
	rec := httptest.NewRecorder()
	api.handleProfile(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["id_usuario"] != float64(7) || body["nome"] != "Ana" {
		t.Fatalf("body = %v", body)
	}
	// Credentials never serialize.
	if _, leaked := body["senha_hash"]; leaked {
		t.Fatal("profile leaks the password hash")
	}
}

func TestUpdateProfileRequiresName(t *testing.T) {
	api, _, _ := newTestAPI(t)

	req := asUser(httptest.NewRequest(http.MethodPut, "/api/profile",
		strings.NewReader(`{"nome":"  "}`)), "7")
	rec := httptest.NewRecorder()
	api.handleProfile(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["message"] != "O nome é obrigatório." {
		t.Fatalf("message = %v", body["message"])
	}
}

func TestUpdateProfile(t *testing.T) {
	api, mock, _ := newTestAPI(t)

	mock.ExpectQuery("update public.usuario").
		WithArgs("Ana Clara", "11988887777", int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id_usuario", "nome", "email", "telefone", "nivel_acesso",
		}).AddRow(int64(7), "Ana Clara", "ana@recylink.org", "11988887777", "user"))

	req := asUser(httptest.NewRequest(http.MethodPut, "/api/profile",
		strings.NewReader(`{"nome":"Ana Clara","telefone":"11988887777"}`)), "7")
	rec := httptest.NewRecorder()
	api.handleProfile(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if body := decodeBody(t, rec); body["message"] != "Perfil atualizado com sucesso!" {
		t.Fatalf("message = %v", body["message"])
	}
}

func TestProfileWithoutPrincipal(t *testing.T) {
	api, _, _ := newTestAPI(t)

	rec := httptest.NewRecorder()
	api.handleProfile(rec, httptest.NewRequest(http.MethodGet, "/api/profile", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
}
