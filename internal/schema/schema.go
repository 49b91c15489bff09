package schema

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/graph-gophers/graphql-go"

	"github.com/jaekwang-park/todo-resolver/internal/dispatch"
	"github.com/jaekwang-park/todo-resolver/internal/middleware"
	"github.com/jaekwang-park/todo-resolver/internal/model"
)

//go:embed schema.graphql
var SDL string

// Resolver is the gateway-facing side of the dispatcher.
type Resolver interface {
	Resolve(ctx context.Context, ev dispatch.Event) (any, error)
}

// New parses the schema and binds it to resolver, so every field runs
// through the same event path the Lambda uses.
func New(resolver Resolver) (*graphql.Schema, error) {
	s, err := graphql.ParseSchema(SDL, &rootResolver{resolver: resolver})
	if err != nil {
		return nil, fmt.Errorf("failed to parse GraphQL schema: %w", err)
	}
	return s, nil
}

type rootResolver struct {
	resolver Resolver
}

type todoInput struct {
	ID          *graphql.ID
	Name        *string
	Description *string
	Completed   *bool
	Owner       *string
}

func (in todoInput) model() *model.TodoInput {
	out := &model.TodoInput{
		Name:        in.Name,
		Description: in.Description,
		Completed:   in.Completed,
		Owner:       in.Owner,
	}
	if in.ID != nil {
		out.ID = model.StringPtr(string(*in.ID))
	}
	return out
}

func (r *rootResolver) ListTodos(ctx context.Context) (*[]*todoResolver, error) {
	v, err := r.resolve(ctx, "listTodos", dispatch.Arguments{})
	if err != nil || v == nil {
		return nil, err
	}
	todos, ok := v.([]model.Todo)
	if !ok {
		return nil, fmt.Errorf("listTodos: unexpected result %T", v)
	}
	out := make([]*todoResolver, len(todos))
	for i := range todos {
		out[i] = &todoResolver{todo: todos[i]}
	}
	return &out, nil
}

func (r *rootResolver) GetTodoByID(ctx context.Context, args struct{ TodoID string }) (*todoResolver, error) {
	return r.resolveTodo(ctx, "getTodoById", dispatch.Arguments{TodoID: args.TodoID})
}

func (r *rootResolver) CreateTodo(ctx context.Context, args struct{ Todo todoInput }) (*todoResolver, error) {
	return r.resolveTodo(ctx, "createTodo", dispatch.Arguments{Todo: args.Todo.model()})
}

func (r *rootResolver) UpdateTodo(ctx context.Context, args struct{ Todo todoInput }) (*todoResolver, error) {
	return r.resolveTodo(ctx, "updateTodo", dispatch.Arguments{Todo: args.Todo.model()})
}

func (r *rootResolver) DeleteTodo(ctx context.Context, args struct{ TodoID string }) (*todoResolver, error) {
	return r.resolveTodo(ctx, "deleteTodo", dispatch.Arguments{TodoID: args.TodoID})
}

func (r *rootResolver) resolveTodo(ctx context.Context, field string, args dispatch.Arguments) (*todoResolver, error) {
	v, err := r.resolve(ctx, field, args)
	if err != nil || v == nil {
		return nil, err
	}
	todo, ok := v.(*model.Todo)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected result %T", field, v)
	}
	return &todoResolver{todo: *todo}, nil
}

func (r *rootResolver) resolve(ctx context.Context, field string, args dispatch.Arguments) (any, error) {
	ev := dispatch.Event{
		Info:      dispatch.Info{FieldName: field},
		Arguments: args,
	}
	if id, ok := middleware.IdentityFrom(ctx); ok {
		ev.Identity = &id
	}
	return r.resolver.Resolve(ctx, ev)
}

type todoResolver struct {
	todo model.Todo
}

func (t *todoResolver) ID() graphql.ID       { return graphql.ID(t.todo.ID) }
func (t *todoResolver) Name() string         { return t.todo.Name }
func (t *todoResolver) Description() *string { return t.todo.Description }
func (t *todoResolver) Completed() bool      { return t.todo.Completed }
func (t *todoResolver) Owner() *string       { return t.todo.Owner }
func (t *todoResolver) CreatedAt() string    { return t.todo.CreatedAt.UTC().Format(time.RFC3339Nano) }
func (t *todoResolver) UpdatedAt() string    { return t.todo.UpdatedAt.UTC().Format(time.RFC3339Nano) }
