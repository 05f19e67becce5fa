package dnd

import (
	"fmt"

	"workbench/internal/geom"
)

// Source is what is being dragged: one tab (Panel set) or a whole group.
type Source struct {
	Panel  string
	Group  string
	Window string

	// Index is the panel's current tab index; GroupSize the number of tabs in
	// its group. Both let Derive recognise drops that change nothing.
	Index     int
	GroupSize int
}

// WholeGroup reports whether the source is a group header drag.
func (s Source) WholeGroup() bool { return s.Panel == "" }

// HitKind says what part of the workbench is under the pointer.
type HitKind int

const (
	HitNone    HitKind = iota // outside every group
	HitTabs                   // a group's tab strip
	HitContent                // a group's content area
)

func (k HitKind) String() string {
	switch k {
	case HitTabs:
		return "tabs"
	case HitContent:
		return "content"
	default:
		return "none"
	}
}

// Hit is the geometry under the pointer, produced by the engine's hit test.
type Hit struct {
	Kind     HitKind
	Group    string
	Window   string
	Index    int           // insertion index for HitTabs
	Position geom.Position // region for HitContent
	Locked   bool          // target group refuses merges
	Detached bool          // target group is floating or popped out
	Point    geom.Point
}

// Kind is the structural mutation an instruction performs.
type Kind int

const (
	Noop    Kind = iota
	Reorder      // move a tab within its own group
	Merge        // move a tab or group's tabs into another group
	Split        // create a new group beside the target
	Float        // move into a new floating group
)

func (k Kind) String() string {
	switch k {
	case Reorder:
		return "reorder"
	case Merge:
		return "merge"
	case Split:
		return "split"
	case Float:
		return "float"
	default:
		return "noop"
	}
}

// Instruction is a derived docking mutation.
type Instruction struct {
	Kind   Kind
	Source Source

	Target   string        // target group for Reorder, Merge and Split
	Window   string        // window of the target
	Index    int           // final tab index for Reorder and Merge; -1 appends
	Position geom.Position // side for Split
	Box      geom.Rect     // placement for Float
}

func (i Instruction) String() string {
	what := i.Source.Group
	if !i.Source.WholeGroup() {
		what = i.Source.Panel
	}
	switch i.Kind {
	case Reorder, Merge:
		return fmt.Sprintf("%s %s -> %s[%d]", i.Kind, what, i.Target, i.Index)
	case Split:
		return fmt.Sprintf("split %s -> %s:%s", what, i.Target, i.Position)
	case Float:
		return fmt.Sprintf("float %s -> %s", what, i.Box)
	}
	return "noop"
}

// Env carries the drop policy.
type Env struct {
	// AllowFloat turns drops outside every group into Float instructions.
	AllowFloat bool
	// FloatWidth and FloatHeight size a group created by a Float drop.
	FloatWidth, FloatHeight int
}

// Derive computes the instruction for dropping src on hit. Drops that would
// leave the layout unchanged, or make a group a child of itself, resolve to
// Noop.
func Derive(src Source, hit Hit, env Env) Instruction {
	noop := Instruction{Kind: Noop, Source: src}
	if src.Group == "" {
		return noop
	}
	same := hit.Group == src.Group

	switch hit.Kind {
	case HitNone:
		if !env.AllowFloat {
			return noop
		}
		return Instruction{
			Kind:   Float,
			Source: src,
			Window: hit.Window,
			Box:    geom.Rect{X: hit.Point.X, Y: hit.Point.Y, Width: env.FloatWidth, Height: env.FloatHeight},
		}

	case HitTabs:
		if same {
			if src.WholeGroup() {
				return noop
			}
			idx := hit.Index
			if idx == src.Index || idx == src.Index+1 {
				return noop
			}
			if idx > src.Index {
				idx--
			}
			return Instruction{Kind: Reorder, Source: src, Target: hit.Group, Window: hit.Window, Index: idx}
		}
		if hit.Locked {
			return noop
		}
		return Instruction{Kind: Merge, Source: src, Target: hit.Group, Window: hit.Window, Index: hit.Index}

	case HitContent:
		if hit.Position == geom.Center || !hit.Position.IsEdge() {
			if same || hit.Locked {
				return noop
			}
			return Instruction{Kind: Merge, Source: src, Target: hit.Group, Window: hit.Window, Index: -1}
		}
		if same && (src.WholeGroup() || src.GroupSize <= 1) {
			return noop
		}
		if hit.Detached {
			// Detached groups cannot be split; dropping on their edge merges.
			if same || hit.Locked {
				return noop
			}
			return Instruction{Kind: Merge, Source: src, Target: hit.Group, Window: hit.Window, Index: -1}
		}
		return Instruction{Kind: Split, Source: src, Target: hit.Group, Window: hit.Window, Position: hit.Position}
	}
	return noop
}
