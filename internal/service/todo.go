package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jaekwang-park/todo-resolver/internal/model"
	"github.com/jaekwang-park/todo-resolver/internal/repository"
)

// Operation names as they appear in logs and OperationError.Op.
const (
	OpCreate  = "createTodo"
	OpGetByID = "getTodoById"
	OpList    = "listTodos"
	OpUpdate  = "updateTodo"
	OpDelete  = "deleteTodo"
)

// TodoService runs each todo operation as a single persistence call.
// Ownership is recorded on update but never checked.
type TodoService struct {
	store  repository.Store
	logger *slog.Logger
	newID  func() string
}

func NewTodoService(store repository.Store, logger *slog.Logger) *TodoService {
	return &TodoService{
		store:  store,
		logger: logger,
		newID:  uuid.NewString,
	}
}

// Create inserts the supplied fields, generating an id when none is given.
func (s *TodoService) Create(ctx context.Context, input model.TodoInput, callerSub string) (model.Todo, error) {
	repo, err := s.repo(ctx, OpCreate)
	if err != nil {
		return model.Todo{}, err
	}

	id := ""
	if input.ID != nil {
		id = *input.ID
	}
	if id == "" {
		id = s.newID()
	}

	todo, err := repo.Create(ctx, id, input)
	if err != nil {
		return model.Todo{}, s.fail(ctx, OpCreate, err)
	}
	return todo, nil
}

// GetByID returns the row with the given id. A missing row is a normal
// outcome rather than a failure: it comes back as a bare ErrNotFound and is
// not logged.
func (s *TodoService) GetByID(ctx context.Context, id, callerSub string) (model.Todo, error) {
	repo, err := s.repo(ctx, OpGetByID)
	if err != nil {
		return model.Todo{}, err
	}

	todo, err := repo.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Todo{}, ErrNotFound
	}
	if err != nil {
		return model.Todo{}, s.fail(ctx, OpGetByID, err)
	}
	return todo, nil
}

// List returns every row regardless of owner.
func (s *TodoService) List(ctx context.Context, callerSub string) ([]model.Todo, error) {
	repo, err := s.repo(ctx, OpList)
	if err != nil {
		return nil, err
	}

	todos, err := repo.List(ctx)
	if err != nil {
		return nil, s.fail(ctx, OpList, err)
	}
	return todos, nil
}

// Update writes the supplied fields to the row named by input.ID. The owner
// always becomes callerSub; a client-supplied owner is ignored. An empty
// callerSub leaves the owner column untouched.
func (s *TodoService) Update(ctx context.Context, input model.TodoInput, callerSub string) (model.Todo, error) {
	if input.ID == nil || *input.ID == "" {
		return model.Todo{}, s.fail(ctx, OpUpdate, fmt.Errorf("%w: id is required", ErrInvalidInput))
	}

	repo, err := s.repo(ctx, OpUpdate)
	if err != nil {
		return model.Todo{}, err
	}

	cols := input.Columns()
	delete(cols, "owner")
	if callerSub != "" {
		cols["owner"] = callerSub
	}

	todo, err := repo.Update(ctx, *input.ID, cols)
	if err != nil {
		return model.Todo{}, s.fail(ctx, OpUpdate, err)
	}
	return todo, nil
}

// Delete removes the row and returns it as it was.
func (s *TodoService) Delete(ctx context.Context, id, callerSub string) (model.Todo, error) {
	repo, err := s.repo(ctx, OpDelete)
	if err != nil {
		return model.Todo{}, err
	}

	todo, err := repo.Delete(ctx, id)
	if err != nil {
		return model.Todo{}, s.fail(ctx, OpDelete, err)
	}
	return todo, nil
}

func (s *TodoService) repo(ctx context.Context, op string) (repository.TodoRepository, error) {
	repo, err := s.store.Todos(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "database handle unavailable", "op", op, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrHandleUnavailable, err)
	}
	return repo, nil
}

func (s *TodoService) fail(ctx context.Context, op string, err error) error {
	kind := classify(err)
	if errors.Is(err, ErrInvalidInput) {
		kind = ErrInvalidInput
	}
	s.logger.ErrorContext(ctx, "todo operation failed", "op", op, "kind", kind.Error(), "error", err)
	return &OperationError{Op: op, Kind: kind, Err: err}
}
