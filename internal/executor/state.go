package executor

import (
	"sync"

	"github.com/zclconf/go-cty/cty"
)

// State holds the outputs of completed nodes, keyed by graph ID. Workers
// on the same level write concurrently, so access is guarded.
type State struct {
	mutex   sync.RWMutex
	outputs map[string]cty.Value
}

// NewState creates an empty State.
func NewState() *State {
	return &State{outputs: make(map[string]cty.Value)}
}

// Set records a node's output value.
func (s *State) Set(nodeID string, val cty.Value) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.outputs[nodeID] = val
}

// Get returns a node's output value, if it has completed.
func (s *State) Get(nodeID string) (cty.Value, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	val, ok := s.outputs[nodeID]
	return val, ok
}

// Snapshot copies the current outputs map.
func (s *State) Snapshot() map[string]cty.Value {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	out := make(map[string]cty.Value, len(s.outputs))
	for id, val := range s.outputs {
		out[id] = val
	}
	return out
}
