package dnd

// State is the phase of a drag gesture.
type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Controller sequences one drag gesture at a time:
// Start -> Over* -> Drop, or Cancel at any point. It never mutates layout
// state; Drop hands back the instruction to apply.
type Controller struct {
	env     Env
	state   State
	source  Source
	preview Instruction
}

// NewController returns an idle controller using env as drop policy.
func NewController(env Env) *Controller {
	return &Controller{env: env}
}

// State returns the current phase.
func (c *Controller) State() State { return c.state }

// Source returns the item being dragged.
func (c *Controller) Source() (Source, bool) {
	return c.source, c.state == Dragging
}

// Start begins dragging src. It returns false if a drag is already running.
func (c *Controller) Start(src Source) bool {
	if c.state == Dragging {
		return false
	}
	c.state = Dragging
	c.source = src
	c.preview = Instruction{Kind: Noop, Source: src}
	return true
}

// Over records the target under the pointer and returns the instruction a
// drop there would produce, for drop-indicator rendering.
func (c *Controller) Over(hit Hit) Instruction {
	if c.state != Dragging {
		return Instruction{Kind: Noop}
	}
	c.preview = Derive(c.source, hit, c.env)
	return c.preview
}

// Preview returns the instruction from the last Over.
func (c *Controller) Preview() Instruction { return c.preview }

// Drop ends the gesture on hit and returns the instruction to apply. The
// second result is false when no drag was running.
func (c *Controller) Drop(hit Hit) (Instruction, bool) {
	if c.state != Dragging {
		return Instruction{Kind: Noop}, false
	}
	instr := Derive(c.source, hit, c.env)
	c.reset()
	return instr, true
}

// Cancel abandons the gesture without producing an instruction.
func (c *Controller) Cancel() {
	c.reset()
}

func (c *Controller) reset() {
	c.state = Idle
	c.source = Source{}
	c.preview = Instruction{}
}
