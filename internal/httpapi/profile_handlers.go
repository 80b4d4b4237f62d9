package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"recylink.org/internal/auth"
)

type updateProfileRequest struct {
	Nome     string  `json:"nome"`
	Telefone *string `json:"telefone"`
}

func (a *API) handleProfile(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.getProfile(w, r)
	case http.MethodPut:
		a.updateProfile(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut)
	}
}

func (a *API) getProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	user, err := a.users.FindByID(r.Context(), userID)
	if errors.Is(err, auth.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "Usuário não encontrado.")
		return
	}
	if err != nil {
		logServerError(r, err)
		writeError(w, r, http.StatusInternalServerError, "Erro interno do servidor.")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (a *API) updateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req updateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	nome := strings.TrimSpace(req.Nome)
	if nome == "" {
		writeError(w, r, http.StatusBadRequest, "O nome é obrigatório.")
		return
	}

	user, err := a.users.UpdateProfile(r.Context(), userID, nome, req.Telefone)
	if errors.Is(err, auth.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "Usuário não encontrado para atualização.")
		return
	}
	if err != nil {
		logServerError(r, err)
		writeError(w, r, http.StatusInternalServerError, "Erro interno do servidor ao atualizar perfil.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Perfil atualizado com sucesso!",
		"user":    user,
	})
}
