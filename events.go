package delaunay

const (
	VERTEX_INSERTED EventType = iota
	VERTEX_DELETED
	FLIPPED
	MESH_REBUILT
)

type EventType uint8

// FlipKind tells how many tetrahedra a flip replaced and how many it created.
type FlipKind uint8

const (
	FLIP_1_4 FlipKind = iota
	FLIP_2_6
	FLIP_N_2N
	FLIP_2_3
	FLIP_3_2
	FLIP_4_4
	FLIP_4_1
	FLIP_2N_N
	FLIP_6_2
)

func (k FlipKind) String() string {
	return [...]string{"1-4", "2-6", "n-2n", "2-3", "3-2", "4-4", "4-1", "2n-n", "6-2"}[k]
}

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

type VertexInsertedEvent struct {
	Vertex *Vertex
}

func (e VertexInsertedEvent) Type() EventType { return VERTEX_INSERTED }

type VertexDeletedEvent struct {
	Vertex *Vertex
}

func (e VertexDeletedEvent) Type() EventType { return VERTEX_DELETED }

// FlipEvent reports one bistellar flip. Created is the number of tetrahedra the
// flip produced.
type FlipEvent struct {
	Kind    FlipKind
	Created int
}

func (e FlipEvent) Type() EventType { return FLIPPED }

// MeshRebuiltEvent reports that a deletion fell back to inserting the Vertices
// remaining vertices again. Handles held before the event are all destroyed.
type MeshRebuiltEvent struct {
	Vertices int
}

func (e MeshRebuiltEvent) Type() EventType { return MESH_REBUILT }

// EventListener - callback for events
type EventListener func(event Event)

// Events buffers mesh events during an Insert or Delete and hands them to the
// listeners once the mesh is consistent again.
type Events struct {
	listeners map[EventType][]EventListener
	buffer    []Event
}

func NewEvents() Events {
	return Events{
		listeners: make(map[EventType][]EventListener),
		buffer:    make([]Event, 0, 16),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	if e.listeners == nil {
		e.listeners = make(map[EventType][]EventListener)
	}
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// emit buffers event, unless nobody listens to its type
func (e *Events) emit(event Event) {
	if len(e.listeners[event.Type()]) == 0 {
		return
	}
	e.buffer = append(e.buffer, event)
}

func (e *Events) emitFlip(kind FlipKind, created int) {
	if len(e.listeners[FLIPPED]) == 0 {
		return
	}
	e.buffer = append(e.buffer, FlipEvent{Kind: kind, Created: created})
}

// flush sends the buffered events in order and empties the buffer.
func (e *Events) flush() {
	for _, event := range e.buffer {
		for _, listener := range e.listeners[event.Type()] {
			listener(event)
		}
	}
	e.buffer = e.buffer[:0]
}
