package http

import (
	"net/http"

	"github.com/graph-gophers/graphql-go"

	"github.com/jaekwang-park/todo-resolver/internal/http/handler"
	"github.com/jaekwang-park/todo-resolver/internal/service"
)

// RouterDeps are the handlers' collaborators. A nil AuthSvc leaves /auth/
// unregistered; a nil DB omits the database field from /health.
type RouterDeps struct {
	Schema  *graphql.Schema
	AuthSvc *service.AuthService
	DB      handler.ConnectionState
}

func NewRouter(deps RouterDeps) http.Handler {
	mux := http.NewServeMux()

	// Health check stays unauthenticated for load balancer probes
	mux.Handle("/health", handler.NewHealthHandler(deps.DB))

	mux.Handle("/graphql", handler.NewGraphQLHandler(deps.Schema))

	if deps.AuthSvc != nil {
		mux.Handle("/auth/", handler.NewAuthHandler(deps.AuthSvc))
	}

	return mux
}
