// Package event is the observer registry that stands in for host lifecycle
// callbacks: construction, property edits, transform updates and scene
// object destruction.
//
// Delivery is synchronous and single-threaded; handlers run on the caller of
// Emit in subscription order.
package event

// Kind identifies an event category.
type Kind uint8

const (
	Construction Kind = iota
	PropertyChanged
	TransformUpdated
	SegmentDestroyed
	ActorDestroyed
	BeginPlay
)

var kindNames = [...]string{
	Construction:     "construction",
	PropertyChanged:  "property_changed",
	TransformUpdated: "transform_updated",
	SegmentDestroyed: "segment_destroyed",
	ActorDestroyed:   "actor_destroyed",
	BeginPlay:        "begin_play",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ChangeType distinguishes a committed edit from an in-progress drag.
type ChangeType uint8

const (
	ValueSet ChangeType = iota
	Interactive
)

// Event carries the payload for every kind; unused fields stay zero.
type Event struct {
	Kind Kind
	// Object is the object the event concerns: an actor, a spline, ...
	Object   any
	Property string
	Change   ChangeType
	// Handle is the destroyed mesh segment for SegmentDestroyed.
	Handle uint64
	// Actor is the id of the actor involved, if any.
	Actor uint64
}

// Handler receives events.
type Handler func(Event)

type entry struct {
	id uint64
	fn Handler
}

// Dispatcher routes events to subscribers.
type Dispatcher struct {
	handlers map[Kind][]entry
	nextID   uint64
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[Kind][]entry)}
}

// Subscribe registers fn for kind. The returned subscription must be
// cancelled with Unsubscribe when the subscriber is torn down.
func (d *Dispatcher) Subscribe(kind Kind, fn Handler) *Subscription {
	d.nextID++
	d.handlers[kind] = append(d.handlers[kind], entry{id: d.nextID, fn: fn})
	return &Subscription{d: d, kind: kind, id: d.nextID}
}

// Emit delivers e to every current subscriber of e.Kind. Handlers added or
// removed during delivery take effect on the next Emit.
func (d *Dispatcher) Emit(e Event) {
	subs := append([]entry(nil), d.handlers[e.Kind]...)
	for _, s := range subs {
		s.fn(e)
	}
}

// Count returns the number of subscribers for kind.
func (d *Dispatcher) Count(kind Kind) int {
	return len(d.handlers[kind])
}

func (d *Dispatcher) remove(kind Kind, id uint64) {
	list := d.handlers[kind]
	for i, s := range list {
		if s.id == id {
			d.handlers[kind] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// Subscription is a handle to a registered handler.
type Subscription struct {
	d    *Dispatcher
	kind Kind
	id   uint64
}

// Unsubscribe removes the handler. Calling it more than once is a no-op.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.d == nil {
		return
	}
	s.d.remove(s.kind, s.id)
	s.d = nil
}

// Active reports whether the subscription is still registered.
func (s *Subscription) Active() bool {
	return s != nil && s.d != nil
}
