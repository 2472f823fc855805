package vfo

import "sync"

// VFOChangedListener is notified after a property patch was applied to a
// VFO. fields contains the properties that actually changed, including
// those adjusted by the consistency rules.
type VFOChangedListener interface {
	VFOChanged(v VFO, fields FieldSet)
}

// VFOActivatedListener is notified after a VFO was activated.
type VFOActivatedListener interface {
	VFOActivated(v VFO)
}

// VFODeactivatedListener is notified after a VFO was deactivated.
type VFODeactivatedListener interface {
	VFODeactivated(v VFO)
}

// SelectionChangedListener is notified after the selection changed, number
// is 0 when the selection was cleared.
type SelectionChangedListener interface {
	SelectionChanged(number int)
}

// SnapshotAppliedListener is notified after an authoritative backend
// snapshot was merged into the store.
type SnapshotAppliedListener interface {
	SnapshotApplied()
}

type notifier struct {
	listenerMutex sync.RWMutex
	listeners     []any
}

// Notify registers the given listener. The listener is checked against all
// listener interfaces of this package.
func (n *notifier) Notify(listener any) {
	n.listenerMutex.Lock()
	defer n.listenerMutex.Unlock()
	n.listeners = append(n.listeners, listener)
}

func (n *notifier) currentListeners() []any {
	n.listenerMutex.RLock()
	defer n.listenerMutex.RUnlock()
	result := make([]any, len(n.listeners))
	copy(result, n.listeners)
	return result
}

func (n *notifier) emitVFOChanged(v VFO, fields FieldSet) {
	for _, l := range n.currentListeners() {
		if listener, ok := l.(VFOChangedListener); ok {
			listener.VFOChanged(v, fields)
		}
	}
}

func (n *notifier) emitVFOActivated(v VFO) {
	for _, l := range n.currentListeners() {
		if listener, ok := l.(VFOActivatedListener); ok {
			listener.VFOActivated(v)
		}
	}
}

func (n *notifier) emitVFODeactivated(v VFO) {
	for _, l := range n.currentListeners() {
		if listener, ok := l.(VFODeactivatedListener); ok {
			listener.VFODeactivated(v)
		}
	}
}

func (n *notifier) emitSelectionChanged(number int) {
	for _, l := range n.currentListeners() {
		if listener, ok := l.(SelectionChangedListener); ok {
			listener.SelectionChanged(number)
		}
	}
}

func (n *notifier) emitSnapshotApplied() {
	for _, l := range n.currentListeners() {
		if listener, ok := l.(SnapshotAppliedListener); ok {
			listener.SnapshotApplied()
		}
	}
}
