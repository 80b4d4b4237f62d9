package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"recylink.org/internal/audit"
	"recylink.org/internal/community"
)

type eventRequest struct {
	Titulo      string  `json:"titulo"`
	Descricao   *string `json:"descricao"`
	Localizacao *string `json:"localizacao"`
	DataEvento  string  `json:"data_evento"`
	ImagemURL   *string `json:"imagem_url"`
}

// eventDateLayouts covers the formats the frontend date pickers produce.
var eventDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

func parseEventDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range eventDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (req eventRequest) toNewEvent() (community.NewEvent, bool) {
	titulo := strings.TrimSpace(req.Titulo)
	when, ok := parseEventDate(req.DataEvento)
	if titulo == "" || !ok {
		return community.NewEvent{}, false
	}
	return community.NewEvent{
		Titulo:      titulo,
		Descricao:   req.Descricao,
		Localizacao: req.Localizacao,
		DataEvento:  when,
		ImagemURL:   req.ImagemURL,
	}, true
}

func (a *API) handleEventsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listEvents(w, r)
	case http.MethodPost:
		a.createEvent(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleEventResource dispatches /api/evento/eventos/{id},
// /api/evento/eventos/{id}/inscrever and the owner-scoped
// /api/evento/eventos/meus[/{id}] routes.
func (a *API) handleEventResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/evento/eventos/"), "/")

	if path == "meus" {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		a.listMyEvents(w, r)
		return
	}
	if rest, ok := strings.CutPrefix(path, "meus/"); ok {
		id, valid := parsePathID(rest)
		if !valid {
			writeError(w, r, http.StatusNotFound, "Evento não encontrado.")
			return
		}
		switch r.Method {
		case http.MethodPut:
			a.updateMyEvent(w, r, id)
		case http.MethodDelete:
			a.deleteMyEvent(w, r, id)
		default:
			methodNotAllowed(w, r, http.MethodPut, http.MethodDelete)
		}
		return
	}

	idPart, action, _ := strings.Cut(path, "/")
	id, valid := parsePathID(idPart)
	if !valid {
		writeError(w, r, http.StatusNotFound, "Evento não encontrado.")
		return
	}

	switch action {
	case "":
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		a.getEvent(w, r, id)
	case "inscrever":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r, http.MethodPost)
			return
		}
		a.registerForEvent(w, r, id)
	default:
		writeError(w, r, http.StatusNotFound, "Endpoint não encontrado")
	}
}

func (a *API) handleMyRegistrations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	regs, err := a.store.ListRegistrations(r.Context(), userID)
	if err != nil {
		logServerError(r, err)
		writeError(w, r, http.StatusInternalServerError, "Erro interno do servidor ao buscar inscrições.")
		return
	}
	writeJSON(w, http.StatusOK, regs)
}

func (a *API) listEvents(w http.ResponseWriter, r *http.Request) {
	events, err := a.store.ListApprovedEvents(r.Context())
	if err != nil {
		logServerError(r, err)
		writeError(w, r, http.StatusInternalServerError, "Erro interno do servidor.")
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (a *API) createEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req eventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	ev, valid := req.toNewEvent()
	if !valid {
		writeError(w, r, http.StatusBadRequest, "Título, data do evento e ID do usuário são obrigatórios.")
		return
	}

	created, err := a.store.CreateEvent(r.Context(), userID, ev)
	if err != nil {
		logServerError(r, err)
		writeError(w, r, http.StatusInternalServerError, "Erro interno do servidor.")
		return
	}
	_ = audit.LogEvent(r.Context(), "event.created", map[string]any{"event_id": created.ID})
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Evento publicado com sucesso!",
		"evento":  created,
	})
}

func (a *API) getEvent(w http.ResponseWriter, r *http.Request, id int64) {
	event, err := a.store.GetEvent(r.Context(), id)
	if err != nil {
		storeError(w, r, err, "Evento não encontrado.", "")
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (a *API) updateMyEvent(w http.ResponseWriter, r *http.Request, id int64) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req eventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	ev, valid := req.toNewEvent()
	if !valid {
		writeError(w, r, http.StatusBadRequest, "Título e data são obrigatórios.")
		return
	}

	updated, err := a.store.UpdateOwnEvent(r.Context(), id, userID, ev)
	if err != nil {
		storeError(w, r, err, "Evento não encontrado.", "Acesso negado: Evento não encontrado ou não pertence a você.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Evento atualizado com sucesso!",
		"evento":  updated,
	})
}

func (a *API) deleteMyEvent(w http.ResponseWriter, r *http.Request, id int64) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := a.store.DeleteOwnEvent(r.Context(), id, userID); err != nil {
		storeError(w, r, err, "Evento não encontrado.", "Acesso negado: O evento não existe ou não pertence a você.")
		return
	}
	_ = audit.LogEvent(r.Context(), "event.deleted", map[string]any{"event_id": id})
	writeJSON(w, http.StatusOK, map[string]any{"message": "Evento excluído com sucesso."})
}

func (a *API) registerForEvent(w http.ResponseWriter, r *http.Request, eventID int64) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	err := a.store.RegisterForEvent(r.Context(), userID, eventID)
	if errors.Is(err, community.ErrAlreadyRegistered) {
		writeError(w, r, http.StatusBadRequest, "Você já está inscrito neste evento.")
		return
	}
	if err != nil {
		logServerError(r, err)
		writeError(w, r, http.StatusInternalServerError, "Erro interno do servidor ao inscrever.")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Inscrição realizada com sucesso!"})
}
