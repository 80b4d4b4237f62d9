package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"recylink.org/internal/auth"
	"recylink.org/internal/community"
	"recylink.org/internal/obs"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError emits the stable error envelope. The message is all a client
// gets; internal detail goes to the log only.
func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"message": msg,
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "Método não permitido.")
}

// decodeJSON reads a bounded JSON body. Unknown fields are tolerated;
// legacy clients send alternates the handlers pick from explicitly.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	return nil
}

// parsePathID converts a path segment into a numeric identifier.
func parsePathID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// requireUser returns the numeric user id of the authenticated principal,
// writing the generic 401 when it is absent or malformed.
func requireUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "Autenticação necessária.")
		return 0, false
	}
	id, err := strconv.ParseInt(principal.UserID, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusUnauthorized, "Token inválido ou ausente.")
		return 0, false
	}
	return id, true
}

// storeError maps domain errors onto the wire contract. Unknown errors
// collapse to a generic 500 with the detail logged server-side.
func storeError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg, forbiddenMsg string) {
	switch {
	case errors.Is(err, community.ErrNotFound):
		writeError(w, r, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, community.ErrForbidden):
		writeError(w, r, http.StatusForbidden, forbiddenMsg)
	default:
		logServerError(r, err)
		writeError(w, r, http.StatusInternalServerError, "Erro interno do servidor.")
	}
}

func logServerError(r *http.Request, err error) {
	obs.LogRequest(map[string]any{
		"ts":         time.Now().UTC().Format(time.RFC3339Nano),
		"level":      "error",
		"msg":        "request failed",
		"method":     r.Method,
		"path":       r.URL.Path,
		"request_id": RequestIDFromContext(r.Context()),
		"error":      err.Error(),
	})
}
