package kb

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/signalsfoundry/delta-e6b/core"
	"github.com/signalsfoundry/delta-e6b/model"
)

// EventType indicates what kind of change happened in the KB.
type EventType int

const (
	EventWaypointAdded EventType = iota
	EventWaypointUpdated
)

// Event is emitted to subscribers when a waypoint changes.
type Event struct {
	Type     EventType
	Waypoint model.Waypoint
}

var ErrWaypointNotFound = errors.New("waypoint not found")

// KnowledgeBase is an in-memory, thread-safe store of waypoints keyed by name.
// Ring anchors and phases are derived on insert so readers always see a fully
// resolved waypoint.
type KnowledgeBase struct {
	ring core.Ring

	mu        sync.RWMutex
	waypoints map[string]*model.Waypoint

	subs []func(Event)
}

// NewKnowledgeBase constructs an empty KB using the given ring for anchor
// derivation.
func NewKnowledgeBase(ring core.Ring) *KnowledgeBase {
	return &KnowledgeBase{
		ring:      ring,
		waypoints: make(map[string]*model.Waypoint),
	}
}

// Ring returns the ring this KB derives anchors with.
func (kb *KnowledgeBase) Ring() core.Ring { return kb.ring }

// AddWaypoint adds a new waypoint, deriving its ring anchor and phase from the
// name. It returns an error if the name already exists or coordinates are
// invalid.
func (kb *KnowledgeBase) AddWaypoint(wp model.Waypoint) error {
	resolved, err := kb.resolve(wp)
	if err != nil {
		return err
	}

	kb.mu.Lock()
	if _, exists := kb.waypoints[resolved.Name]; exists {
		kb.mu.Unlock()
		return fmt.Errorf("waypoint %q already exists", resolved.Name)
	}
	kb.waypoints[resolved.Name] = &resolved
	event := Event{Type: EventWaypointAdded, Waypoint: resolved}
	subs := append([]func(Event){}, kb.subs...)
	kb.mu.Unlock()

	// Notify subscribers outside the lock to avoid deadlocks.
	for _, sub := range subs {
		sub(event)
	}
	return nil
}

// UpsertWaypoint inserts or replaces a waypoint and notifies subscribers.
func (kb *KnowledgeBase) UpsertWaypoint(wp model.Waypoint) error {
	resolved, err := kb.resolve(wp)
	if err != nil {
		return err
	}

	kb.mu.Lock()
	typ := EventWaypointAdded
	if _, exists := kb.waypoints[resolved.Name]; exists {
		typ = EventWaypointUpdated
	}
	kb.waypoints[resolved.Name] = &resolved
	event := Event{Type: typ, Waypoint: resolved}
	subs := append([]func(Event){}, kb.subs...)
	kb.mu.Unlock()

	for _, sub := range subs {
		sub(event)
	}
	return nil
}

// GetWaypoint returns a copy of the named waypoint.
func (kb *KnowledgeBase) GetWaypoint(name string) (model.Waypoint, error) {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	wp, ok := kb.waypoints[normalizeName(name)]
	if !ok {
		return model.Waypoint{}, fmt.Errorf("%w: %q", ErrWaypointNotFound, name)
	}
	return *wp, nil
}

// ListWaypoints returns a snapshot of all waypoints sorted by name.
func (kb *KnowledgeBase) ListWaypoints() []model.Waypoint {
	kb.mu.RLock()
	res := make([]model.Waypoint, 0, len(kb.waypoints))
	for _, wp := range kb.waypoints {
		res = append(res, *wp)
	}
	kb.mu.RUnlock()

	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res
}

// Count returns the number of stored waypoints.
func (kb *KnowledgeBase) Count() int {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return len(kb.waypoints)
}

// Subscribe registers a callback for KB events. It returns an unsubscribe function.
func (kb *KnowledgeBase) Subscribe(fn func(Event)) (unsubscribe func()) {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	kb.subs = append(kb.subs, fn)
	idx := len(kb.subs) - 1

	return func() {
		kb.mu.Lock()
		defer kb.mu.Unlock()
		if idx < 0 || idx >= len(kb.subs) {
			return
		}
		kb.subs = append(kb.subs[:idx], kb.subs[idx+1:]...)
		idx = -1
	}
}

func (kb *KnowledgeBase) resolve(wp model.Waypoint) (model.Waypoint, error) {
	wp.Name = normalizeName(wp.Name)
	if wp.Name == "" {
		return model.Waypoint{}, errors.New("waypoint name is required")
	}
	if _, err := core.NewLatLon(wp.Lat, wp.Lon); err != nil {
		return model.Waypoint{}, fmt.Errorf("waypoint %q: %w", wp.Name, err)
	}

	wp.Anchor = kb.ring.AddressOf(wp.Name)
	phase, err := kb.ring.Phase(wp.Anchor)
	if err != nil {
		return model.Waypoint{}, err
	}
	wp.Phase = phase
	return wp, nil
}

func normalizeName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
