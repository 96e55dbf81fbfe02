package state

import "github.com/dshills/quorum/internal/agent"

// TodoState summarizes a todo list against the previous snapshot.
type TodoState struct {
	AllCompleted  bool
	JustCompleted bool
	Total         int
	Completed     int
}

// Detector decides when a todo list has just transitioned to fully
// completed, which is the signal that triggers a completion review
// exactly once per completion event.
type Detector struct {
	store *Store
}

// NewDetector creates a Detector backed by the given store.
func NewDetector(store *Store) *Detector {
	return &Detector{store: store}
}

// DetectCompletion compares the todo list with the previous snapshot.
// JustCompleted is true exactly when all items are now completed and the
// previous snapshot was not all-completed. The new snapshot is persisted
// as a side effect.
func (d *Detector) DetectCompletion(sessionID string, todos []agent.Todo) (TodoState, error) {
	if len(todos) == 0 {
		return TodoState{}, nil
	}

	total := len(todos)
	completed := 0
	for _, t := range todos {
		if t.Completed() {
			completed++
		}
	}
	allCompleted := completed == total

	prev, err := d.store.TodoState(sessionID)
	if err != nil {
		return TodoState{}, err
	}

	if err := d.store.SaveTodoSnapshot(sessionID, allCompleted, completed, total); err != nil {
		return TodoState{}, err
	}

	return TodoState{
		AllCompleted:  allCompleted,
		JustCompleted: allCompleted && !prev.AllCompleted,
		Total:         total,
		Completed:     completed,
	}, nil
}
