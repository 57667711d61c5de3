package collab

import "fmt"

// Error is a collaborator-adapter failure: the graph store, vector index,
// or embedder could not complete a call. The driver treats every Error as a
// top-level collaborator failure; it never retries at the core layer.
type Error struct {
	Kind    string
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("collaborator error (%s): %s", e.Kind, e.Message)
}

func NotFound(id string) error {
	return Error{Kind: "NotFound", Message: fmt.Sprintf("entity %s not found", id)}
}

func Unavailable(backend string, cause error) error {
	return Error{Kind: "Unavailable", Message: fmt.Sprintf("%s: %v", backend, cause)}
}

func Truncated(backend string) error {
	return Error{Kind: "Truncated", Message: fmt.Sprintf("%s truncated its result set", backend)}
}
