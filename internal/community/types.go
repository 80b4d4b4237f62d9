package community

import "time"

// Post is a community feed entry. List queries attach the author name and
// like count; both may be absent when the author row is gone.
type Post struct {
	ID         int64     `json:"id_post"`
	UserID     int64     `json:"id_usuario"`
	Conteudo   string    `json:"conteudo"`
	Categoria  string    `json:"categoria"`
	CreatedAt  time.Time `json:"data_criacao"`
	AutorNome  *string   `json:"autor_nome"`
	LikesCount int64     `json:"likes_count"`
}

// Comment belongs to a post.
type Comment struct {
	ID        int64     `json:"id_comment"`
	PostID    int64     `json:"id_post"`
	UserID    int64     `json:"id_usuario"`
	Conteudo  string    `json:"conteudo"`
	CreatedAt time.Time `json:"data_publicacao"`
	AutorNome *string   `json:"autor_nome,omitempty"`
}

// Event is a community event. Events are auto-approved on creation, but
// the status column is kept so moderation can be reintroduced.
type Event struct {
	ID              int64     `json:"id_evento"`
	Titulo          string    `json:"titulo"`
	Descricao       *string   `json:"descricao"`
	Localizacao     *string   `json:"localizacao"`
	DataEvento      time.Time `json:"data_evento"`
	ImagemURL       *string   `json:"imagem_url"`
	SugeridoPorID   *int64    `json:"sugerido_por_id,omitempty"`
	SugeridoPorNome *string   `json:"sugerido_por_nome,omitempty"`
	Status          string    `json:"status_aprovacao"`
	CreatedAt       time.Time `json:"data_cadastro"`
}

// NewEvent carries the user-supplied attributes for create and update.
type NewEvent struct {
	Titulo      string
	Descricao   *string
	Localizacao *string
	DataEvento  time.Time
	ImagemURL   *string
}

// EventSummary is the trimmed row returned for the owner's event list.
type EventSummary struct {
	ID         int64     `json:"id_evento"`
	Titulo     string    `json:"titulo"`
	DataEvento time.Time `json:"data_evento"`
	Status     string    `json:"status_aprovacao"`
	CreatedAt  time.Time `json:"data_cadastro"`
}

// Registration is a user's enrollment in an event.
type Registration struct {
	DataInscricao time.Time `json:"data_inscricao"`
	Titulo        string    `json:"titulo"`
	DataEvento    time.Time `json:"data_evento"`
}

// CollectionPoint is a recycling drop-off location shown on the map.
type CollectionPoint struct {
	ID          int64    `json:"id_ponto"`
	Nome        string   `json:"nome"`
	Endereco    *string  `json:"endereco,omitempty"`
	TipoResiduo *string  `json:"tipo_residuo,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
}
