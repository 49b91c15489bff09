package dispatch

import "github.com/jaekwang-park/todo-resolver/internal/model"

// Event is the payload a direct Lambda resolver receives from AppSync.
type Event struct {
	Info      Info            `json:"info"`
	Arguments Arguments       `json:"arguments"`
	Identity  *model.Identity `json:"identity"`
}

type Info struct {
	FieldName      string `json:"fieldName"`
	ParentTypeName string `json:"parentTypeName,omitempty"`
}

type Arguments struct {
	Todo   *model.TodoInput `json:"todo,omitempty"`
	TodoID string           `json:"todoId,omitempty"`
}

// CallerSub is empty for callers without a user pool identity, such as API keys.
func (e Event) CallerSub() string {
	if e.Identity == nil {
		return ""
	}
	return e.Identity.Sub
}

func (a Arguments) todoInput() model.TodoInput {
	if a.Todo == nil {
		return model.TodoInput{}
	}
	return *a.Todo
}
