package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/jaekwang-park/todo-resolver/internal/model"
)

type TodoRepository interface {
	Create(ctx context.Context, id string, input model.TodoInput) (model.Todo, error)
	GetByID(ctx context.Context, id string) (model.Todo, error)
	List(ctx context.Context) ([]model.Todo, error)
	Update(ctx context.Context, id string, columns map[string]any) (model.Todo, error)
	Delete(ctx context.Context, id string) (model.Todo, error)
}

// Handler hands out the shared database handle.
type Handler interface {
	Handle(ctx context.Context) (*sqlx.DB, error)
}

// Store yields a TodoRepository bound to the current handle.
type Store interface {
	Todos(ctx context.Context) (TodoRepository, error)
}

// HandlerStore builds Postgres repositories on top of a Handler.
type HandlerStore struct {
	handler Handler
}

func NewHandlerStore(h Handler) *HandlerStore {
	return &HandlerStore{handler: h}
}

func (s *HandlerStore) Todos(ctx context.Context) (TodoRepository, error) {
	db, err := s.handler.Handle(ctx)
	if err != nil {
		return nil, err
	}
	return NewPostgresTodo(db), nil
}

var _ Store = (*HandlerStore)(nil)
