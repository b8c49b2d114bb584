package rest

import (
	"encoding/json"

	"task-tracker-client/core"
)

// envelope is the server's response wrapper. Success is a pointer so a
// response lacking the indicator entirely can be told apart from false.
type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e envelope) ok() bool {
	return e.Success != nil && *e.Success
}

type statusUpdateIn struct {
	IsDone bool `json:"is_done"`
}

// The status route nests the updated record in a one-element collection.
type statusUpdateOut struct {
	UpdatedData []core.Task `json:"updatedData"`
}
