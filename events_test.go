package delaunay

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

type eventCapture struct {
	events []Event
}

func (ec *eventCapture) capture(event Event) {
	ec.events = append(ec.events, event)
}

func (ec *eventCapture) reset() {
	ec.events = ec.events[:0]
}

func (ec *eventCapture) count() int {
	return len(ec.events)
}

func (ec *eventCapture) hasEventType(eventType EventType) bool {
	for _, e := range ec.events {
		if e.Type() == eventType {
			return true
		}
	}
	return false
}

func (ec *eventCapture) flipKinds() map[FlipKind]int {
	kinds := make(map[FlipKind]int)
	for _, e := range ec.events {
		if flip, ok := e.(FlipEvent); ok {
			kinds[flip.Kind]++
		}
	}
	return kinds
}

// =============================================================================
// Subscribe and Listeners Tests
// =============================================================================

func TestEvents_Subscribe(t *testing.T) {
	events := NewEvents()
	capture := &eventCapture{}

	events.Subscribe(VERTEX_INSERTED, capture.capture)

	// Verify listener is registered
	if len(events.listeners[VERTEX_INSERTED]) != 1 {
		t.Errorf("Expected 1 listener for VERTEX_INSERTED, got %d", len(events.listeners[VERTEX_INSERTED]))
	}
}

func TestEvents_SubscribeZeroValue(t *testing.T) {
	var events Events
	capture := &eventCapture{}

	events.Subscribe(VERTEX_DELETED, capture.capture)
	events.emit(VertexDeletedEvent{})
	events.flush()

	if capture.count() != 1 {
		t.Errorf("Expected 1 event, got %d", capture.count())
	}
}

func TestEvents_MultipleListeners(t *testing.T) {
	events := NewEvents()
	capture1 := &eventCapture{}
	capture2 := &eventCapture{}
	capture3 := &eventCapture{}

	events.Subscribe(FLIPPED, capture1.capture)
	events.Subscribe(FLIPPED, capture2.capture)
	events.Subscribe(FLIPPED, capture3.capture)

	if len(events.listeners[FLIPPED]) != 3 {
		t.Errorf("Expected 3 listeners for FLIPPED, got %d", len(events.listeners[FLIPPED]))
	}

	events.emitFlip(FLIP_2_3, 3)
	events.flush()

	for i, capture := range []*eventCapture{capture1, capture2, capture3} {
		if capture.count() != 1 {
			t.Errorf("Capture%d expected 1 event, got %d", i+1, capture.count())
		}
	}
}

func TestEvents_DifferentEventTypes(t *testing.T) {
	events := NewEvents()
	captureInserted := &eventCapture{}
	captureDeleted := &eventCapture{}

	events.Subscribe(VERTEX_INSERTED, captureInserted.capture)
	events.Subscribe(VERTEX_DELETED, captureDeleted.capture)

	events.emit(VertexInsertedEvent{Vertex: NewVertex(mgl64.Vec3{})})
	events.flush()

	if captureInserted.count() != 1 {
		t.Errorf("Inserted capture expected 1 event, got %d", captureInserted.count())
	}
	if captureDeleted.count() != 0 {
		t.Errorf("Deleted capture expected 0 events, got %d", captureDeleted.count())
	}
}

func TestEvents_NoListenerNoBuffer(t *testing.T) {
	events := NewEvents()

	events.emit(VertexInsertedEvent{})
	events.emitFlip(FLIP_1_4, 4)

	if len(events.buffer) != 0 {
		t.Errorf("Expected an empty buffer without listeners, got %d events", len(events.buffer))
	}
}

func TestEvents_FlushOrder(t *testing.T) {
	events := NewEvents()
	capture := &eventCapture{}
	events.Subscribe(FLIPPED, capture.capture)
	events.Subscribe(VERTEX_INSERTED, capture.capture)

	events.emitFlip(FLIP_1_4, 4)
	events.emitFlip(FLIP_2_3, 3)
	events.emit(VertexInsertedEvent{})

	if capture.count() != 0 {
		t.Fatalf("Events delivered before flush: %d", capture.count())
	}
	events.flush()

	want := []EventType{FLIPPED, FLIPPED, VERTEX_INSERTED}
	if capture.count() != len(want) {
		t.Fatalf("Expected %d events, got %d", len(want), capture.count())
	}
	for i, e := range capture.events {
		if e.Type() != want[i] {
			t.Errorf("event %d has type %d, want %d", i, e.Type(), want[i])
		}
	}
	if first := capture.events[0].(FlipEvent); first.Kind != FLIP_1_4 || first.Created != 4 {
		t.Errorf("first event = %+v, want a 1-4 flip creating 4 tetrahedra", first)
	}

	capture.reset()
	events.flush()
	if capture.count() != 0 {
		t.Errorf("flush delivered %d events twice", capture.count())
	}
}

func TestFlipKind_String(t *testing.T) {
	tests := []struct {
		kind     FlipKind
		expected string
	}{
		{FLIP_1_4, "1-4"},
		{FLIP_2_6, "2-6"},
		{FLIP_N_2N, "n-2n"},
		{FLIP_2_3, "2-3"},
		{FLIP_3_2, "3-2"},
		{FLIP_4_4, "4-4"},
		{FLIP_4_1, "4-1"},
		{FLIP_2N_N, "2n-n"},
		{FLIP_6_2, "6-2"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.expected {
			t.Errorf("String() = %q, want %q", got, tt.expected)
		}
	}
}

// =============================================================================
// Mesh Events Tests
// =============================================================================

func TestEvents_InsertDelete(t *testing.T) {
	mesh := newTestMesh(1)
	capture := &eventCapture{}
	mesh.Events.Subscribe(VERTEX_INSERTED, capture.capture)
	mesh.Events.Subscribe(VERTEX_DELETED, capture.capture)
	mesh.Events.Subscribe(FLIPPED, capture.capture)

	v := NewVertex(mgl64.Vec3{1, 2, 3})
	insertAll(t, mesh, []*Vertex{v})

	if capture.count() != 2 {
		t.Fatalf("Expected a 1-4 flip and an insertion, got %d events", capture.count())
	}
	if inserted, ok := capture.events[1].(VertexInsertedEvent); !ok || inserted.Vertex != v {
		t.Errorf("last event = %+v, want the insertion of %v", capture.events[1], v)
	}

	capture.reset()
	if err := mesh.Delete(v); err != nil {
		t.Fatal(err)
	}
	if !capture.hasEventType(VERTEX_DELETED) {
		t.Error("no VERTEX_DELETED event")
	}
	if kinds := capture.flipKinds(); kinds[FLIP_4_1] != 1 {
		t.Errorf("flips = %v, want one 4-1 flip", kinds)
	}
}

func TestEvents_FailedInsert(t *testing.T) {
	mesh := newTestMesh(1)
	insertAll(t, mesh, newVertices(mgl64.Vec3{0, 0, 0}))

	capture := &eventCapture{}
	mesh.Events.Subscribe(VERTEX_INSERTED, capture.capture)
	mesh.Events.Subscribe(FLIPPED, capture.capture)

	if err := mesh.Insert(NewVertex(mgl64.Vec3{0, 0, 0})); err == nil {
		t.Fatal("duplicate Insert should fail")
	}
	if capture.count() != 0 {
		t.Errorf("failed Insert sent %d events", capture.count())
	}
}
