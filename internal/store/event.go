package store

import (
	"fmt"

	"github.com/zot/ui-builder/internal/ir"
)

// On registers an event handler on an element. The action payload is
// cloned; unrecognized kinds are stored as Unknown and compile to no-ops.
func (s *Store) On(elementID, eventType string, action ir.Action) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireTx("on"); err != nil {
		return "", err
	}
	if s.doc.Element(elementID) == nil {
		return "", fmt.Errorf("on: element %s: %w", elementID, ErrNotFound)
	}
	if eventType == "" {
		return "", fmt.Errorf("on: event type is required: %w", ErrStateViolation)
	}
	switch action.Kind {
	case ir.ActionUpdate, ir.ActionSet, ir.ActionCall:
	default:
		action.Kind = ir.ActionUnknown
	}
	id := s.mintID("event")
	s.doc.Events[eventType] = append(s.doc.Events[eventType], &ir.Event{
		ID:     id,
		Target: elementID,
		Action: action.Clone(),
	})
	s.doc.Dirty.Events.Add(id)
	s.doc.Touch()
	s.logf(3, "event added: id=%s type=%s target=%s action=%s", id, eventType, elementID, action.Kind)
	return id, nil
}

// Off removes an event by id.
func (s *Store) Off(eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireTx("off"); err != nil {
		return err
	}
	for eventType, events := range s.doc.Events {
		for i, e := range events {
			if e.ID != eventID {
				continue
			}
			s.doc.Events[eventType] = append(events[:i], events[i+1:]...)
			if len(s.doc.Events[eventType]) == 0 {
				delete(s.doc.Events, eventType)
			}
			s.doc.Dirty.Events.Add(eventID)
			s.doc.Touch()
			return nil
		}
	}
	return fmt.Errorf("off: event %s: %w", eventID, ErrNotFound)
}

// Events returns the events targeting an element, keyed by event type.
// Entries are deep clones.
func (s *Store) Events(elementID string) map[string][]*ir.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]*ir.Event)
	for eventType, events := range s.doc.Events {
		for _, e := range events {
			if e.Target == elementID {
				out[eventType] = append(out[eventType], e.Clone())
			}
		}
	}
	return out
}
