package handler

import (
	"net/http"

	"github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
)

const maxGraphQLBodySize = 1 << 20 // 1 MB

// GraphQLHandler serves the schema with relay.Handler, limited to POST
// bodies of at most maxGraphQLBodySize.
type GraphQLHandler struct {
	relay *relay.Handler
}

func NewGraphQLHandler(schema *graphql.Schema) *GraphQLHandler {
	return &GraphQLHandler{relay: &relay.Handler{Schema: schema}}
}

// ServeHTTP answers 200 for every executed document, field errors included,
// the way the managed gateway does.
func (h *GraphQLHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "only POST is allowed")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxGraphQLBodySize)
	w.Header().Set("Cache-Control", "no-store")
	h.relay.ServeHTTP(w, r)
}
