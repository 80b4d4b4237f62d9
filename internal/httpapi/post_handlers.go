package httpapi

import (
	"net/http"
	"strings"

	"recylink.org/internal/audit"
)

type createPostRequest struct {
	Conteudo  string `json:"conteudo"`
	Categoria string `json:"categoria"`
}

type createCommentRequest struct {
	Conteudo string `json:"conteudo"`
}

func (a *API) handlePostsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listPosts(w, r)
	case http.MethodPost:
		a.createPost(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

// handlePostResource dispatches /api/posts/{id}[/like|/likes|/comments].
func (a *API) handlePostResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/posts/")
	path = strings.TrimSuffix(path, "/")

	idPart, action, _ := strings.Cut(path, "/")
	id, ok := parsePathID(idPart)
	if !ok {
		writeError(w, r, http.StatusNotFound, "Post não encontrado")
		return
	}

	switch action {
	case "":
		switch r.Method {
		case http.MethodGet:
			a.getPost(w, r, id)
		case http.MethodDelete:
			a.deletePost(w, r, id)
		default:
			methodNotAllowed(w, r, http.MethodGet, http.MethodDelete)
		}
	case "like":
		switch r.Method {
		case http.MethodPost:
			a.likePost(w, r, id)
		case http.MethodDelete:
			a.unlikePost(w, r, id)
		default:
			methodNotAllowed(w, r, http.MethodPost, http.MethodDelete)
		}
	case "likes":
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		a.countLikes(w, r, id)
	case "comments":
		switch r.Method {
		case http.MethodGet:
			a.listComments(w, r, id)
		case http.MethodPost:
			a.createComment(w, r, id)
		default:
			methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
		}
	default:
		writeError(w, r, http.StatusNotFound, "Endpoint não encontrado")
	}
}

// handleCommentResource dispatches /api/comments/{id}.
func (a *API) handleCommentResource(w http.ResponseWriter, r *http.Request) {
	idPart := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/comments/"), "/")
	id, ok := parsePathID(idPart)
	if !ok {
		writeError(w, r, http.StatusNotFound, "Comentário não encontrado.")
		return
	}
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, r, http.MethodDelete)
		return
	}

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := a.store.DeleteComment(r.Context(), id, userID); err != nil {
		storeError(w, r, err, "Comentário não encontrado.", "Você não tem permissão para excluir este comentário.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Comentário removido."})
}

func (a *API) listPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := a.store.ListPosts(r.Context())
	if err != nil {
		logServerError(r, err)
		writeError(w, r, http.StatusInternalServerError, "Erro ao listar posts")
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (a *API) createPost(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req createPostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	conteudo := strings.TrimSpace(req.Conteudo)
	if conteudo == "" {
		writeError(w, r, http.StatusBadRequest, "Conteúdo obrigatório")
		return
	}
	categoria := strings.TrimSpace(req.Categoria)
	if categoria == "" {
		categoria = "geral"
	}

	post, err := a.store.CreatePost(r.Context(), userID, conteudo, categoria)
	if err != nil {
		logServerError(r, err)
		writeError(w, r, http.StatusInternalServerError, "Erro interno ao criar post.")
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

func (a *API) getPost(w http.ResponseWriter, r *http.Request, id int64) {
	post, err := a.store.GetPost(r.Context(), id)
	if err != nil {
		storeError(w, r, err, "Post não encontrado", "")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (a *API) deletePost(w http.ResponseWriter, r *http.Request, id int64) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := a.store.DeletePost(r.Context(), id, userID); err != nil {
		storeError(w, r, err, "Post não encontrado", "Somente o autor pode excluir.")
		return
	}
	_ = audit.LogEvent(r.Context(), "post.deleted", map[string]any{"post_id": id})
	writeJSON(w, http.StatusOK, map[string]any{"message": "Post removido"})
}

func (a *API) likePost(w http.ResponseWriter, r *http.Request, id int64) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := a.store.LikePost(r.Context(), id, userID); err != nil {
		logServerError(r, err)
		writeError(w, r, http.StatusInternalServerError, "Erro ao curtir")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Curtida registrada"})
}

func (a *API) unlikePost(w http.ResponseWriter, r *http.Request, id int64) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := a.store.UnlikePost(r.Context(), id, userID); err != nil {
		logServerError(r, err)
		writeError(w, r, http.StatusInternalServerError, "Erro ao remover curtida")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Curtida removida"})
}

func (a *API) countLikes(w http.ResponseWriter, r *http.Request, id int64) {
	cnt, err := a.store.CountLikes(r.Context(), id)
	if err != nil {
		logServerError(r, err)
		writeError(w, r, http.StatusInternalServerError, "Erro ao contar likes")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cnt": cnt})
}

func (a *API) listComments(w http.ResponseWriter, r *http.Request, postID int64) {
	comments, err := a.store.ListComments(r.Context(), postID)
	if err != nil {
		logServerError(r, err)
		writeError(w, r, http.StatusInternalServerError, "Erro ao listar comentários.")
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func (a *API) createComment(w http.ResponseWriter, r *http.Request, postID int64) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req createCommentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	conteudo := strings.TrimSpace(req.Conteudo)
	if conteudo == "" {
		writeError(w, r, http.StatusBadRequest, "Conteúdo é obrigatório.")
		return
	}

	comment, err := a.store.CreateComment(r.Context(), postID, userID, conteudo)
	if err != nil {
		logServerError(r, err)
		writeError(w, r, http.StatusInternalServerError, "Erro ao criar comentário.")
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}
