package grid

import (
	"math"
	"time"
)

// PointerKind is the phase of a low-level pointer event.
type PointerKind int

const (
	PointerPress PointerKind = iota
	PointerMove
	PointerRelease
)

// Button identifies the pressed pointer button.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
)

// PointerEvent is one low-level pointer event.
type PointerEvent struct {
	Kind   PointerKind
	Button Button
	X, Y   float64
	Time   time.Time
}

// GestureKind is a recognised gesture.
type GestureKind int

const (
	GestureNone GestureKind = iota
	GestureClick
	GestureDoubleClick
	GestureSecondaryClick
	GestureLongPress
	GestureDragMove
	GestureDragEnd
	GestureSuppressed
)

func (k GestureKind) String() string {
	switch k {
	case GestureClick:
		return "click"
	case GestureDoubleClick:
		return "double-click"
	case GestureSecondaryClick:
		return "secondary-click"
	case GestureLongPress:
		return "long-press"
	case GestureDragMove:
		return "drag-move"
	case GestureDragEnd:
		return "drag-end"
	case GestureSuppressed:
		return "suppressed"
	default:
		return "none"
	}
}

// Gesture is the detector output. DX and DY carry the movement of a
// drag-move since the previous event.
type Gesture struct {
	Kind   GestureKind
	X, Y   float64
	DX, DY float64
}

// Default gesture thresholds.
const (
	DefaultDoubleClickTimeout   = 400 * time.Millisecond
	DefaultDoubleClickTolerance = 50.0
)

// ClickDetector classifies primary clicks, double-clicks and secondary
// clicks from a pointer event stream.
type ClickDetector struct {
	Timeout   time.Duration
	Tolerance float64

	lastAt   time.Time
	lastX    float64
	lastY    float64
	haveLast bool
}

// NewClickDetector returns a detector with the default thresholds.
func NewClickDetector() *ClickDetector {
	return &ClickDetector{
		Timeout:   DefaultDoubleClickTimeout,
		Tolerance: DefaultDoubleClickTolerance,
	}
}

// Handle feeds one event. Secondary presses are reported at press time;
// primary clicks at release.
func (d *ClickDetector) Handle(ev PointerEvent) Gesture {
	switch ev.Kind {
	case PointerPress:
		if ev.Button == ButtonSecondary {
			return Gesture{Kind: GestureSecondaryClick, X: ev.X, Y: ev.Y}
		}
	case PointerRelease:
		if ev.Button != ButtonPrimary {
			return Gesture{}
		}
		return d.release(ev)
	}
	return Gesture{}
}

// Reset forgets the previous click.
func (d *ClickDetector) Reset() {
	d.haveLast = false
}

func (d *ClickDetector) release(ev PointerEvent) Gesture {
	if d.haveLast &&
		ev.Time.Sub(d.lastAt) <= d.Timeout &&
		math.Hypot(ev.X-d.lastX, ev.Y-d.lastY) <= d.Tolerance {
		// A third click must not chain into another double-click.
		d.haveLast = false
		return Gesture{Kind: GestureDoubleClick, X: ev.X, Y: ev.Y}
	}
	d.lastAt, d.lastX, d.lastY = ev.Time, ev.X, ev.Y
	d.haveLast = true
	return Gesture{Kind: GestureClick, X: ev.X, Y: ev.Y}
}

type dragPhase int

const (
	phaseIdle dragPhase = iota
	phasePending
	phaseDragging
	phaseSuppressed
)

// DragDetector layers long-press-to-drag on top of click detection. A
// press that moves further than Slop before the long press fires is
// suppressed until release.
type DragDetector struct {
	LongPress time.Duration
	Slop      float64
	Clicks    *ClickDetector

	phase   dragPhase
	pressAt time.Time
	startX  float64
	startY  float64
	lastX   float64
	lastY   float64
	moved   float64
}

// NewDragDetector returns a detector using cfg's long-press thresholds.
func NewDragDetector(cfg DragConfig) *DragDetector {
	return &DragDetector{
		LongPress: cfg.LongPress,
		Slop:      cfg.Slop,
		Clicks:    NewClickDetector(),
	}
}

// Dragging reports whether a long press has turned into a drag.
func (d *DragDetector) Dragging() bool {
	return d.phase == phaseDragging
}

// Pending reports whether a press is waiting on the long-press timer.
func (d *DragDetector) Pending() bool {
	return d.phase == phasePending
}

// Handle feeds one event.
func (d *DragDetector) Handle(ev PointerEvent) Gesture {
	switch ev.Kind {
	case PointerPress:
		if ev.Button == ButtonSecondary {
			d.phase = phaseIdle
			return d.Clicks.Handle(ev)
		}
		d.phase = phasePending
		d.pressAt = ev.Time
		d.startX, d.startY = ev.X, ev.Y
		d.lastX, d.lastY = ev.X, ev.Y
		d.moved = 0
		return Gesture{}

	case PointerMove:
		dx, dy := ev.X-d.lastX, ev.Y-d.lastY
		d.lastX, d.lastY = ev.X, ev.Y
		switch d.phase {
		case phasePending:
			if g := d.Tick(ev.Time); g.Kind == GestureLongPress {
				return g
			}
			d.moved += math.Hypot(dx, dy)
			if d.moved > d.Slop {
				d.phase = phaseSuppressed
				return Gesture{Kind: GestureSuppressed, X: ev.X, Y: ev.Y}
			}
		case phaseDragging:
			return Gesture{Kind: GestureDragMove, X: ev.X, Y: ev.Y, DX: dx, DY: dy}
		}
		return Gesture{}

	case PointerRelease:
		phase := d.phase
		d.phase = phaseIdle
		switch phase {
		case phasePending:
			return d.Clicks.Handle(ev)
		case phaseDragging:
			d.Clicks.Reset()
			return Gesture{Kind: GestureDragEnd, X: ev.X, Y: ev.Y}
		}
	}
	return Gesture{}
}

// Tick fires the long press once the press has been held long enough.
func (d *DragDetector) Tick(now time.Time) Gesture {
	if d.phase != phasePending || now.Sub(d.pressAt) < d.LongPress {
		return Gesture{}
	}
	d.phase = phaseDragging
	return Gesture{Kind: GestureLongPress, X: d.startX, Y: d.startY}
}

// Cancel drops any pending or active gesture.
func (d *DragDetector) Cancel() {
	d.phase = phaseIdle
}
