package repository

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/jaekwang-park/todo-resolver/internal/model"
)

const todoTable = "todos"

var todoColumns = []string{
	"id", "name", "description", "completed", "owner", "created_at", "updated_at",
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func returningTodo() string {
	return "RETURNING " + strings.Join(todoColumns, ", ")
}

type PostgresTodoRepository struct {
	db sqlx.ExtContext
}

func NewPostgresTodo(db sqlx.ExtContext) *PostgresTodoRepository {
	return &PostgresTodoRepository{db: db}
}

// Create inserts only the supplied columns so table defaults apply to the rest.
func (r *PostgresTodoRepository) Create(ctx context.Context, id string, input model.TodoInput) (model.Todo, error) {
	cols := input.Columns()
	cols["id"] = id

	query, args, err := psql.Insert(todoTable).
		SetMap(cols).
		Suffix(returningTodo()).
		ToSql()
	if err != nil {
		return model.Todo{}, fmt.Errorf("failed to build insert: %w", err)
	}

	var t model.Todo
	if err := sqlx.GetContext(ctx, r.db, &t, query, args...); err != nil {
		return model.Todo{}, fmt.Errorf("failed to insert todo: %w", err)
	}
	return t, nil
}

func (r *PostgresTodoRepository) GetByID(ctx context.Context, id string) (model.Todo, error) {
	query, args, err := psql.Select(todoColumns...).
		From(todoTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return model.Todo{}, fmt.Errorf("failed to build select: %w", err)
	}

	var t model.Todo
	if err := sqlx.GetContext(ctx, r.db, &t, query, args...); err != nil {
		return model.Todo{}, fmt.Errorf("failed to get todo: %w", err)
	}
	return t, nil
}

func (r *PostgresTodoRepository) List(ctx context.Context) ([]model.Todo, error) {
	query, args, err := psql.Select(todoColumns...).
		From(todoTable).
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	var todos []model.Todo
	if err := sqlx.SelectContext(ctx, r.db, &todos, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	if todos == nil {
		todos = []model.Todo{}
	}
	return todos, nil
}

// Update writes columns to the row with the given id and refreshes updated_at.
// A missing row surfaces as sql.ErrNoRows.
func (r *PostgresTodoRepository) Update(ctx context.Context, id string, columns map[string]any) (model.Todo, error) {
	query, args, err := psql.Update(todoTable).
		SetMap(columns).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		Suffix(returningTodo()).
		ToSql()
	if err != nil {
		return model.Todo{}, fmt.Errorf("failed to build update: %w", err)
	}

	var t model.Todo
	if err := sqlx.GetContext(ctx, r.db, &t, query, args...); err != nil {
		return model.Todo{}, fmt.Errorf("failed to update todo: %w", err)
	}
	return t, nil
}

func (r *PostgresTodoRepository) Delete(ctx context.Context, id string) (model.Todo, error) {
	query, args, err := psql.Delete(todoTable).
		Where(sq.Eq{"id": id}).
		Suffix(returningTodo()).
		ToSql()
	if err != nil {
		return model.Todo{}, fmt.Errorf("failed to build delete: %w", err)
	}

	var t model.Todo
	if err := sqlx.GetContext(ctx, r.db, &t, query, args...); err != nil {
		return model.Todo{}, fmt.Errorf("failed to delete todo: %w", err)
	}
	return t, nil
}

// ensure compile-time interface compliance
var _ TodoRepository = (*PostgresTodoRepository)(nil)
