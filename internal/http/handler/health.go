package handler

import "net/http"

// ConnectionState reports whether the database handle has been opened.
type ConnectionState interface {
	Connected() bool
}

type HealthHandler struct {
	db ConnectionState
}

// NewHealthHandler builds the liveness endpoint. A nil db omits the database field.
func NewHealthHandler(db ConnectionState) *HealthHandler {
	return &HealthHandler{db: db}
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

// ServeHTTP never opens a connection: the handle is lazy and the first
// GraphQL request pays for it, so an unopened handle is still healthy.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "only GET is allowed")
		return
	}

	resp := healthResponse{Status: "ok"}
	if h.db != nil {
		resp.Database = "idle"
		if h.db.Connected() {
			resp.Database = "connected"
		}
	}
	WriteJSON(w, http.StatusOK, resp)
}
