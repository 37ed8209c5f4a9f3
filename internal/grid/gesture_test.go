package grid

import (
	"testing"
	"time"
)

var t0 = time.Date(2025, 12, 28, 9, 0, 0, 0, time.UTC)

func click(d *ClickDetector, at time.Duration, x, y float64) Gesture {
	ts := t0.Add(at)
	d.Handle(PointerEvent{Kind: PointerPress, X: x, Y: y, Time: ts})
	return d.Handle(PointerEvent{Kind: PointerRelease, X: x, Y: y, Time: ts})
}

func TestClickDetector(t *testing.T) {
	tests := []struct {
		name   string
		second time.Duration
		x2     float64
		want   []GestureKind
	}{
		{"slow clicks stay single", 500 * time.Millisecond, 0, []GestureKind{GestureClick, GestureClick}},
		{"fast clicks become double", 100 * time.Millisecond, 0, []GestureKind{GestureClick, GestureDoubleClick}},
		{"too far apart", 100 * time.Millisecond, 80, []GestureKind{GestureClick, GestureClick}},
		{"within tolerance", 100 * time.Millisecond, 30, []GestureKind{GestureClick, GestureDoubleClick}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewClickDetector()
			got := []GestureKind{
				click(d, 0, 10, 10).Kind,
				click(d, tt.second, 10+tt.x2, 10).Kind,
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("click %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestClickDetector_NoTripleChain(t *testing.T) {
	d := NewClickDetector()
	click(d, 0, 0, 0)
	if g := click(d, 100*time.Millisecond, 0, 0); g.Kind != GestureDoubleClick {
		t.Fatalf("second = %v, want double-click", g.Kind)
	}
	if g := click(d, 200*time.Millisecond, 0, 0); g.Kind != GestureClick {
		t.Errorf("third = %v, want click", g.Kind)
	}
}

func TestClickDetector_SecondaryAtPress(t *testing.T) {
	d := NewClickDetector()
	g := d.Handle(PointerEvent{Kind: PointerPress, Button: ButtonSecondary, X: 4, Y: 5, Time: t0})
	if g.Kind != GestureSecondaryClick || g.X != 4 || g.Y != 5 {
		t.Errorf("press = %+v, want secondary click at (4, 5)", g)
	}
	g = d.Handle(PointerEvent{Kind: PointerRelease, Button: ButtonSecondary, Time: t0})
	if g.Kind != GestureNone {
		t.Errorf("release = %v, want none", g.Kind)
	}
}

func TestDragDetector_LongPress(t *testing.T) {
	d := NewDragDetector(DefaultDragConfig())

	d.Handle(PointerEvent{Kind: PointerPress, X: 5, Y: 5, Time: t0})
	if g := d.Tick(t0.Add(200 * time.Millisecond)); g.Kind != GestureNone {
		t.Fatalf("early tick = %v, want none", g.Kind)
	}
	if g := d.Tick(t0.Add(400 * time.Millisecond)); g.Kind != GestureLongPress {
		t.Fatalf("tick = %v, want long-press", g.Kind)
	}

	g := d.Handle(PointerEvent{Kind: PointerMove, X: 5, Y: 8, Time: t0.Add(500 * time.Millisecond)})
	if g.Kind != GestureDragMove || g.DY != 3 {
		t.Errorf("move = %+v, want drag-move dy 3", g)
	}
	g = d.Handle(PointerEvent{Kind: PointerRelease, X: 5, Y: 8, Time: t0.Add(600 * time.Millisecond)})
	if g.Kind != GestureDragEnd {
		t.Errorf("release = %v, want drag-end", g.Kind)
	}
	if d.Dragging() {
		t.Error("detector should be idle after release")
	}
}

func TestDragDetector_SlopSuppresses(t *testing.T) {
	d := NewDragDetector(DefaultDragConfig())

	d.Handle(PointerEvent{Kind: PointerPress, X: 0, Y: 0, Time: t0})
	g := d.Handle(PointerEvent{Kind: PointerMove, X: 20, Y: 0, Time: t0.Add(50 * time.Millisecond)})
	if g.Kind != GestureSuppressed {
		t.Fatalf("move = %v, want suppressed", g.Kind)
	}
	if g := d.Tick(t0.Add(time.Second)); g.Kind != GestureNone {
		t.Errorf("tick after suppression = %v, want none", g.Kind)
	}
	if g := d.Handle(PointerEvent{Kind: PointerRelease, X: 20, Time: t0.Add(time.Second)}); g.Kind != GestureNone {
		t.Errorf("release = %v, want none", g.Kind)
	}
}

func TestDragDetector_QuickReleaseIsClick(t *testing.T) {
	d := NewDragDetector(DefaultDragConfig())

	d.Handle(PointerEvent{Kind: PointerPress, X: 1, Y: 1, Time: t0})
	d.Handle(PointerEvent{Kind: PointerMove, X: 3, Y: 1, Time: t0.Add(20 * time.Millisecond)})
	g := d.Handle(PointerEvent{Kind: PointerRelease, X: 3, Y: 1, Time: t0.Add(80 * time.Millisecond)})
	if g.Kind != GestureClick {
		t.Errorf("release = %v, want click", g.Kind)
	}
}

func TestDragDetector_SecondaryPreempts(t *testing.T) {
	d := NewDragDetector(DefaultDragConfig())

	d.Handle(PointerEvent{Kind: PointerPress, X: 1, Y: 1, Time: t0})
	g := d.Handle(PointerEvent{Kind: PointerPress, Button: ButtonSecondary, X: 1, Y: 1, Time: t0.Add(10 * time.Millisecond)})
	if g.Kind != GestureSecondaryClick {
		t.Fatalf("secondary press = %v, want secondary click", g.Kind)
	}
	if g := d.Tick(t0.Add(time.Second)); g.Kind != GestureNone {
		t.Errorf("long press after secondary = %v, want none", g.Kind)
	}
}
