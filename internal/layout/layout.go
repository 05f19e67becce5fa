// Package layout defines SerializedLayout, the persisted JSON form of a
// workbench, and the invariant checks a document must pass before an engine
// is rebuilt from it.
//
// The tree references groups and panels by id only; panel data lives in the
// flat Panels map.
package layout

import (
	"encoding/json"
	"fmt"

	"workbench/internal/grid"
	"workbench/internal/jsonutil"
)

// Renderer controls when a panel's content stays mounted.
type Renderer string

const (
	// OnlyWhenVisible mounts content while its panel is the active tab of a
	// visible group and disposes it otherwise.
	OnlyWhenVisible Renderer = "onlyWhenVisible"
	// Always keeps content mounted for the panel's whole lifetime.
	Always Renderer = "always"
)

// Valid reports whether r is a known renderer mode. The empty value is
// accepted and means the engine default.
func (r Renderer) Valid() bool {
	return r == "" || r == OnlyWhenVisible || r == Always
}

// Layout is a SerializedLayout document.
type Layout struct {
	Grid           Grid             `json:"grid"`
	Panels         map[string]Panel `json:"panels"`
	ActiveGroup    string           `json:"activeGroup,omitempty"`
	FloatingGroups []FloatingGroup  `json:"floatingGroups,omitempty"`
	PopoutGroups   []PopoutGroup    `json:"popoutGroups,omitempty"`
}

// Grid is the serialized grid: its root node, the container size it was last
// laid out in, and the root orientation.
type Grid struct {
	Root        Node             `json:"root"`
	Width       int              `json:"width"`
	Height      int              `json:"height"`
	Orientation grid.Orientation `json:"orientation"`
}

// NodeType tags a serialized grid node.
type NodeType string

const (
	BranchNode NodeType = "branch"
	LeafNode   NodeType = "leaf"
)

// Node is one serialized grid node. A branch carries Children, a leaf carries
// Group; both encode under the "data" key.
type Node struct {
	Type     NodeType
	Size     float64
	Children []Node
	Group    *Group
}

type wireNode struct {
	Type NodeType        `json:"type"`
	Data json.RawMessage `json:"data"`
	Size *float64        `json:"size"`
}

// DefaultSize is the weight of a node whose size is absent.
const DefaultSize = 1

// MarshalJSON implements json.Marshaler.
func (n Node) MarshalJSON() ([]byte, error) {
	var data any
	switch n.Type {
	case LeafNode:
		g := n.Group
		if g == nil {
			g = &Group{}
		}
		data = g
	case BranchNode:
		children := n.Children
		if children == nil {
			children = []Node{}
		}
		data = children
	default:
		return nil, fmt.Errorf("layout: unknown node type %q", n.Type)
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	size := n.Size
	return json.Marshal(wireNode{Type: n.Type, Data: raw, Size: &size})
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Node) UnmarshalJSON(b []byte) error {
	var w wireNode
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*n = Node{Type: w.Type, Size: DefaultSize}
	if w.Size != nil {
		n.Size = *w.Size
	}
	switch w.Type {
	case LeafNode:
		var g Group
		if len(w.Data) > 0 {
			if err := json.Unmarshal(w.Data, &g); err != nil {
				return fmt.Errorf("leaf data: %w", err)
			}
		}
		n.Group = &g
	case BranchNode:
		if len(w.Data) > 0 {
			if err := json.Unmarshal(w.Data, &n.Children); err != nil {
				return fmt.Errorf("branch data: %w", err)
			}
		}
	default:
		return fmt.Errorf("unknown node type %q", w.Type)
	}
	return nil
}

// Group is a serialized tab group.
type Group struct {
	Views      []string `json:"views"`
	ActiveView string   `json:"activeView,omitempty"`
	ID         string   `json:"id"`
	Locked     bool     `json:"locked,omitempty"`
	HideHeader bool     `json:"hideHeader,omitempty"`
}

// Panel is a serialized panel entry.
type Panel struct {
	ID               string         `json:"id"`
	ContentComponent string         `json:"contentComponent"`
	TabComponent     string         `json:"tabComponent,omitempty"`
	Title            string         `json:"title,omitempty"`
	Renderer         Renderer       `json:"renderer,omitempty"`
	Params           map[string]any `json:"params,omitempty"`
	MinimumWidth     int            `json:"minimumWidth,omitempty"`
	MinimumHeight    int            `json:"minimumHeight,omitempty"`
	MaximumWidth     int            `json:"maximumWidth,omitempty"`
	MaximumHeight    int            `json:"maximumHeight,omitempty"`
}

// Box is the position and size of a detached group.
type Box struct {
	Top    int `json:"top"`
	Left   int `json:"left"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// FloatingGroup is a group drawn as an overlay above the grid.
type FloatingGroup struct {
	Data     Group `json:"data"`
	Position Box   `json:"position"`
}

// PopoutGroup is a group shown in its own window.
type PopoutGroup struct {
	Data               Group  `json:"data"`
	GridReferenceGroup string `json:"gridReferenceGroup,omitempty"`
	Position           Box    `json:"position"`
	URL                string `json:"url,omitempty"`
}

// Decode parses a document without validating it.
func Decode(data []byte) (*Layout, error) {
	var l Layout
	if err := jsonutil.UnmarshalWithContext(data, &l, "decode layout"); err != nil {
		return nil, err
	}
	return &l, nil
}

// Encode renders l as indented JSON. Map keys are sorted, so equal documents
// encode to identical bytes.
func Encode(l *Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// Groups returns every group in the document in depth-first grid order,
// followed by floating then popout groups.
func (l *Layout) Groups() []Group {
	var out []Group
	var walk func(n Node)
	walk = func(n Node) {
		if n.Type == LeafNode && n.Group != nil {
			out = append(out, *n.Group)
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(l.Grid.Root)
	for _, f := range l.FloatingGroups {
		out = append(out, f.Data)
	}
	for _, p := range l.PopoutGroups {
		out = append(out, p.Data)
	}
	return out
}
