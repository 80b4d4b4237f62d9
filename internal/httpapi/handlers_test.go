package httpapi

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"recylink.org/internal/auth"
)

func asUser(req *http.Request, id string) *http.Request {
	ctx := auth.ContextWithPrincipal(req.Context(), auth.Principal{UserID: id, Role: "user", Name: "Ana"})
	return req.WithContext(ctx)
}

func TestHealthz(t *testing.T) {
	api, _, _ := newTestAPI(t)

	rec := httptest.NewRecorder()
	api.Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["status"] != "ok" || body["service"] != "recylink-api" {
		t.Fatalf("body = %v", body)
	}
}

func TestReadyWithoutDatabaseHandle(t *testing.T) {
	api, _, _ := newTestAPI(t)

	rec := httptest.NewRecorder()
	api.Ready(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRootLiveness(t *testing.T) {
	api, _, _ := newTestAPI(t)

	rec := httptest.NewRecorder()
	api.Root(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["message"] != "Servidor Recylink no ar" {
		t.Fatalf("body = %v", body)
	}
}

func TestUnknownEndpointIsJSON404(t *testing.T) {
	api, _, _ := newTestAPI(t)

	rec := httptest.NewRecorder()
	api.Root(rec, httptest.NewRequest(http.MethodGet, "/api/nao-existe", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["ok"] != false || body["message"] != "Endpoint não encontrado" {
		t.Fatalf("body = %v", body)
	}
}

func TestCreatePostRequiresContent(t *testing.T) {
	api, _, _ := newTestAPI(t)

	req := asUser(httptest.NewRequest(http.MethodPost, "/api/posts",
		strings.NewReader(`{"conteudo":"   "}`)), "7")
	rec := httptest.NewRecorder()
	api.handlePostsCollection(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["message"] != "Conteúdo obrigatório" {
		t.Fatalf("message = %v", body["message"])
	}
}

func TestCreatePostDefaultsCategory(t *testing.T) {
	api, mock, _ := newTestAPI(t)
	created := time.Date(2025, 4, 2, 9, 30, 0, 0, time.UTC)

	mock.ExpectQuery("insert into posts").
		WithArgs(int64(7), "Onde descartar pilhas?", "geral").
		WillReturnRows(sqlmock.NewRows([]string{
			"id_post", "id_usuario", "conteudo", "categoria", "data_criacao",
		}).AddRow(int64(1), int64(7), "Onde descartar pilhas?", "geral", created))
	mock.ExpectQuery("select nome from public.usuario").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"nome"}).AddRow("Ana"))

	req := asUser(httptest.NewRequest(http.MethodPost, "/api/posts",
		strings.NewReader(`{"conteudo":"Onde descartar pilhas?"}`)), "7")
	rec := httptest.NewRecorder()
	api.handlePostsCollection(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["categoria"] != "geral" || body["autor_nome"] != "Ana" {
		t.Fatalf("body = %v", body)
	}
}

func TestDeletePostByNonAuthor(t *testing.T) {
	api, mock, _ := newTestAPI(t)

	mock.ExpectQuery("select id_usuario from posts").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id_usuario"}).AddRow(int64(5)))

	req := asUser(httptest.NewRequest(http.MethodDelete, "/api/posts/3", nil), "7")
	rec := httptest.NewRecorder()
	api.handlePostResource(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["message"] != "Somente o autor pode excluir." {
		t.Fatalf("message = %v", body["message"])
	}
}

func TestPostResourceInvalidID(t *testing.T) {
	api, _, _ := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/posts/abc", nil)
	rec := httptest.NewRecorder()
	api.handlePostResource(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestCountLikes(t *testing.T) {
	api, mock, _ := newTestAPI(t)

	mock.ExpectQuery("select count").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(4)))

	req := httptest.NewRequest(http.MethodGet, "/api/posts/3/likes", nil)
	rec := httptest.NewRecorder()
	api.handlePostResource(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["cnt"] != float64(4) {
		t.Fatalf("body = %v", body)
	}
}

func TestCreateEventValidatesTitleAndDate(t *testing.T) {
	api, _, _ := newTestAPI(t)

	req := asUser(httptest.NewRequest(http.MethodPost, "/api/evento/eventos",
		strings.NewReader(`{"titulo":"","data_evento":"amanhã"}`)), "7")
	rec := httptest.NewRecorder()
	api.handleEventsCollection(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestCreateEventAcceptsDateOnly(t *testing.T) {
	api, mock, _ := newTestAPI(t)
	when := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("insert into evento").
		WithArgs("Mutirão de limpeza", nil, nil, when, nil, int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id_evento", "titulo", "descricao", "localizacao", "data_evento", "imagem_url",
			"sugerido_por_id", "status_aprovacao", "data_cadastro",
		}).AddRow(int64(2), "Mutirão de limpeza", nil, nil, when, nil, int64(7), "aprovado", time.Now()))

	req := asUser(httptest.NewRequest(http.MethodPost, "/api/evento/eventos",
		strings.NewReader(`{"titulo":"Mutirão de limpeza","data_evento":"2025-06-01"}`)), "7")
	rec := httptest.NewRecorder()
	api.handleEventsCollection(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if body := decodeBody(t, rec); body["message"] != "Evento publicado com sucesso!" {
		t.Fatalf("message = %v", body["message"])
	}
}

func TestUpdateForeignEventDenied(t *testing.T) {
	api, mock, _ := newTestAPI(t)

	mock.ExpectQuery("update evento").
		WillReturnError(sql.ErrNoRows)

	req := asUser(httptest.NewRequest(http.MethodPut, "/api/evento/eventos/meus/3",
		strings.NewReader(`{"titulo":"Novo título","data_evento":"2025-06-01"}`)), "7")
	rec := httptest.NewRecorder()
	api.handleEventResource(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["message"] != "Acesso negado: Evento não encontrado ou não pertence a você." {
		t.Fatalf("message = %v", body["message"])
	}
}

func TestRegisterForEventTwice(t *testing.T) {
	api, mock, _ := newTestAPI(t)

	mock.ExpectExec("insert into inscricao_evento").
		WithArgs(int64(7), int64(3)).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	req := asUser(httptest.NewRequest(http.MethodPost, "/api/evento/eventos/3/inscrever", nil), "7")
	rec := httptest.NewRecorder()
	api.handleEventResource(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["message"] != "Você já está inscrito neste evento." {
		t.Fatalf("message = %v", body["message"])
	}
}

func TestMethodNotAllowedSetsAllowHeader(t *testing.T) {
	api, _, _ := newTestAPI(t)

	req := httptest.NewRequest(http.MethodPatch, "/api/posts", nil)
	rec := httptest.NewRecorder()
	api.handlePostsCollection(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); !strings.Contains(allow, http.MethodPost) {
		t.Fatalf("Allow = %q", allow)
	}
}
