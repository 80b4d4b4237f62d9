package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"recylink.org/internal/audit"
	"recylink.org/internal/auth"
)

type registerRequest struct {
	Nome     string  `json:"nome"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Senha    string  `json:"senha"`
	Telefone *string `json:"telefone"`
	Phone    *string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Senha    string `json:"senha"`
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	// Older frontends send English field names; prefer the canonical ones.
	nome := strings.TrimSpace(firstNonEmpty(req.Nome, req.Name))
	email := strings.TrimSpace(req.Email)
	password := firstNonEmpty(req.Password, req.Senha)
	telefone := req.Telefone
	if telefone == nil {
		telefone = req.Phone
	}

	if nome == "" || email == "" || password == "" {
		writeError(w, r, http.StatusBadRequest, "Nome, e-mail e senha são obrigatórios.")
		return
	}

	hash, err := auth.HashPassword(password, a.bcryptCost)
	if err != nil {
		logServerError(r, err)
		writeError(w, r, http.StatusInternalServerError, "Erro interno do servidor.")
		return
	}

	user, err := a.users.Create(r.Context(), nome, email, hash, telefone)
	if errors.Is(err, auth.ErrDuplicateEmail) {
		writeError(w, r, http.StatusConflict, "Este e-mail já está em uso.")
		return
	}
	if err != nil {
		logServerError(r, err)
		writeError(w, r, http.StatusInternalServerError, "Erro interno do servidor.")
		return
	}

	token, _, err := a.tokens.Issue(principalFor(user))
	if err != nil {
		logServerError(r, err)
		writeError(w, r, http.StatusInternalServerError, "Erro interno do servidor.")
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.user.registered", map[string]any{
		"user_id": user.ID,
		"email":   user.Email,
	})

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":  "Usuário registrado com sucesso!",
		"token":    token,
		"user":     user,
		"userId":   user.ID,
		"userName": user.Nome,
		"userRole": user.NivelAcesso,
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	email := strings.TrimSpace(req.Email)
	password := firstNonEmpty(req.Password, req.Senha)
	if email == "" || password == "" {
		writeError(w, r, http.StatusBadRequest, "E-mail e senha são obrigatórios.")
		return
	}

	user, err := a.users.FindByEmail(r.Context(), email)
	if errors.Is(err, auth.ErrNotFound) {
		writeError(w, r, http.StatusBadRequest, "Usuário ou senha incorretos.")
		return
	}
	if err != nil {
		logServerError(r, err)
		writeError(w, r, http.StatusInternalServerError, "Erro no login.")
		return
	}

	if user.PasswordHash == "" {
		// Account rows imported without a hash can never authenticate.
		writeError(w, r, http.StatusUnauthorized, "Usuário ou senha incorretos.")
		return
	}
	if err := auth.VerifyPassword(strings.TrimSpace(user.PasswordHash), password); err != nil {
		writeError(w, r, http.StatusBadRequest, "Usuário ou senha incorretos.")
		return
	}
	if !user.Active {
		writeError(w, r, http.StatusForbidden, "Conta inativa. Contate o suporte.")
		return
	}

	token, _, err := a.tokens.Issue(principalFor(user))
	if err != nil {
		logServerError(r, err)
		writeError(w, r, http.StatusInternalServerError, "Erro no login.")
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.user.login", map[string]any{
		"user_id": user.ID,
	})

	user.PasswordHash = ""
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login bem-sucedido!",
		"user":    user,
		"token":   token,
	})
}

func principalFor(user auth.User) auth.Principal {
	return auth.Principal{
		UserID: strconv.FormatInt(user.ID, 10),
		Role:   user.NivelAcesso,
		Name:   user.Nome,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
