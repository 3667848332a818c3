// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

// Engine bundles the party components over one store.
type Engine struct {
	Roster      *Roster
	States      *StateMachine
	Selections  *Selections
	Coordinator *Coordinator
}

func New(store *Store) *Engine {
	return &Engine{
		Roster:      NewRoster(store),
		States:      NewStateMachine(store),
		Selections:  NewSelections(store),
		Coordinator: NewCoordinator(store),
	}
}
