package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jaekwang-park/todo-resolver/internal/model"
	"github.com/jaekwang-park/todo-resolver/internal/service"
)

// TodoOperations is the operation set the dispatcher routes to.
type TodoOperations interface {
	Create(ctx context.Context, input model.TodoInput, callerSub string) (model.Todo, error)
	GetByID(ctx context.Context, id, callerSub string) (model.Todo, error)
	List(ctx context.Context, callerSub string) ([]model.Todo, error)
	Update(ctx context.Context, input model.TodoInput, callerSub string) (model.Todo, error)
	Delete(ctx context.Context, id, callerSub string) (model.Todo, error)
}

var _ TodoOperations = (*service.TodoService)(nil)

// Result is the typed outcome of one dispatched event.
type Result struct {
	Operation Operation
	// Known is false when the field name matched no operation.
	Known bool
	Todo  *model.Todo
	Todos []model.Todo
	Err   *service.OperationError
}

// Value is the record or list to hand back to the gateway, or nil.
func (r Result) Value() any {
	switch {
	case r.Err != nil:
		return nil
	case r.Todo != nil:
		return r.Todo
	case r.Todos != nil:
		return r.Todos
	default:
		return nil
	}
}

type handlerFunc func(ctx context.Context, ops TodoOperations, args Arguments, callerSub string) (Result, error)

var defaultHandlers = [numOperations]handlerFunc{
	OpCreateTodo: func(ctx context.Context, ops TodoOperations, args Arguments, callerSub string) (Result, error) {
		return todoResult(ops.Create(ctx, args.todoInput(), callerSub))
	},
	OpListTodos: func(ctx context.Context, ops TodoOperations, args Arguments, callerSub string) (Result, error) {
		todos, err := ops.List(ctx, callerSub)
		if err != nil {
			return failure(err)
		}
		return Result{Todos: todos}, nil
	},
	OpUpdateTodo: func(ctx context.Context, ops TodoOperations, args Arguments, callerSub string) (Result, error) {
		return todoResult(ops.Update(ctx, args.todoInput(), callerSub))
	},
	OpDeleteTodo: func(ctx context.Context, ops TodoOperations, args Arguments, callerSub string) (Result, error) {
		return todoResult(ops.Delete(ctx, args.TodoID, callerSub))
	},
	OpGetTodoByID: func(ctx context.Context, ops TodoOperations, args Arguments, callerSub string) (Result, error) {
		todo, err := ops.GetByID(ctx, args.TodoID, callerSub)
		// A bare ErrNotFound is a miss; only OperationErrors are failures.
		if err == service.ErrNotFound {
			return Result{}, nil
		}
		return todoResult(todo, err)
	},
}

func todoResult(todo model.Todo, err error) (Result, error) {
	if err != nil {
		return failure(err)
	}
	return Result{Todo: &todo}, nil
}

// failure keeps operation failures in the result and returns anything else
// as a hard error.
func failure(err error) (Result, error) {
	var opErr *service.OperationError
	if errors.As(err, &opErr) {
		return Result{Err: opErr}, nil
	}
	return Result{}, err
}

type Option func(*Dispatcher)

// WithNullOnFailure controls whether Resolve turns operation failures into nil.
func WithNullOnFailure(null bool) Option {
	return func(d *Dispatcher) {
		d.nullOnFailure = null
	}
}

// Dispatcher routes events to the operation named by their field name.
// It holds no state of its own.
type Dispatcher struct {
	ops           TodoOperations
	handlers      [numOperations]handlerFunc
	logger        *slog.Logger
	nullOnFailure bool
}

func NewDispatcher(ops TodoOperations, logger *slog.Logger, opts ...Option) (*Dispatcher, error) {
	return newDispatcher(ops, defaultHandlers, logger, opts...)
}

func newDispatcher(ops TodoOperations, handlers [numOperations]handlerFunc, logger *slog.Logger, opts ...Option) (*Dispatcher, error) {
	for op, h := range handlers {
		if h == nil {
			return nil, fmt.Errorf("no handler for operation %s", Operation(op))
		}
	}
	d := &Dispatcher{
		ops:           ops,
		handlers:      handlers,
		logger:        logger,
		nullOnFailure: true,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Dispatch runs the operation the event names. Unknown field names produce a
// Result with Known false and never reach the store. The returned error is
// reserved for failures outside any single operation, such as an
// unavailable database handle.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) (Result, error) {
	op, ok := ParseOperation(ev.Info.FieldName)
	if !ok {
		d.logger.WarnContext(ctx, "unknown field name", "field", ev.Info.FieldName)
		return Result{}, nil
	}

	res, err := d.handlers[op](ctx, d.ops, ev.Arguments, ev.CallerSub())
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}
	res.Operation = op
	res.Known = true
	return res, nil
}

// Resolve is the gateway-facing entry point. Unknown operations resolve to
// nil, and so do operation failures unless null-on-failure is disabled.
func (d *Dispatcher) Resolve(ctx context.Context, ev Event) (any, error) {
	res, err := d.Dispatch(ctx, ev)
	if err != nil {
		return nil, err
	}
	if res.Err != nil && !d.nullOnFailure {
		return nil, res.Err
	}
	return res.Value(), nil
}
