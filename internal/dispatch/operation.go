package dispatch

import "fmt"

// Operation is a GraphQL field this resolver serves.
type Operation int

const (
	OpCreateTodo Operation = iota
	OpListTodos
	OpUpdateTodo
	OpDeleteTodo
	OpGetTodoByID

	numOperations
)

var operationNames = [numOperations]string{
	OpCreateTodo:  "createTodo",
	OpListTodos:   "listTodos",
	OpUpdateTodo:  "updateTodo",
	OpDeleteTodo:  "deleteTodo",
	OpGetTodoByID: "getTodoById",
}

var operationsByName = func() map[string]Operation {
	m := make(map[string]Operation, numOperations)
	for op, name := range operationNames {
		m[name] = Operation(op)
	}
	return m
}()

func (o Operation) String() string {
	if o < 0 || o >= numOperations {
		return fmt.Sprintf("Operation(%d)", int(o))
	}
	return operationNames[o]
}

// ParseOperation matches a field name exactly, case included.
func ParseOperation(fieldName string) (Operation, bool) {
	op, ok := operationsByName[fieldName]
	return op, ok
}

// Operations lists every operation in declaration order.
func Operations() []Operation {
	ops := make([]Operation, numOperations)
	for i := range ops {
		ops[i] = Operation(i)
	}
	return ops
}
