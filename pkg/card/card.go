package card

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	cgerrors "github.com/matzehuels/cardgraph/pkg/errors"
)

var (
	// ErrNodeNotFound is returned when an operation references a node id
	// that does not exist in the graph.
	ErrNodeNotFound = errors.New("node not found")

	// ErrConnectionNotFound is returned when a connection id does not exist.
	ErrConnectionNotFound = errors.New("connection not found")

	// ErrSelfLoop is returned by Connect when both endpoints are the same node.
	ErrSelfLoop = errors.New("node cannot be connected to itself")

	// ErrCycle is returned by Connect when the connection would make a node
	// its own ancestor.
	ErrCycle = errors.New("connection would create a cycle")

	// ErrMultipleParents is returned by Validate when a node has more than
	// one inbound connection.
	ErrMultipleParents = errors.New("node has more than one parent")

	// ErrDanglingConnection is returned by Validate when a connection
	// references a node that does not exist.
	ErrDanglingConnection = errors.New("connection references unknown node")

	// ErrUnknownType is returned when a type id is not one of the known kinds.
	ErrUnknownType = errors.New("unknown parameter type")
)

// TypeID selects the parameter kind of a node. It decides which Meta
// variant applies and which widget renders the field.
type TypeID string

const (
	TypeInteger   TypeID = "integer"
	TypeFloat     TypeID = "float"
	TypeString    TypeID = "string"
	TypeEnum      TypeID = "enum"
	TypeDate      TypeID = "date"
	TypeBoolean   TypeID = "boolean"
	TypeReference TypeID = "reference"
	TypeRange     TypeID = "range"
	TypeColor     TypeID = "color"
	TypeIcon      TypeID = "icon"
)

// TypeIDs lists every known parameter kind in declaration order.
var TypeIDs = []TypeID{
	TypeInteger, TypeFloat, TypeString, TypeEnum, TypeDate,
	TypeBoolean, TypeReference, TypeRange, TypeColor, TypeIcon,
}

// Valid reports whether t is a known parameter kind.
func (t TypeID) Valid() bool {
	for _, k := range TypeIDs {
		if k == t {
			return true
		}
	}
	return false
}

// ParseTypeID converts a string into a TypeID, case-insensitively.
func ParseTypeID(s string) (TypeID, error) {
	t := TypeID(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", cgerrors.Wrap(cgerrors.ErrCodeInvalidInput, ErrUnknownType, "type %q", s)
	}
	return t, nil
}

// Position is a 2D canvas coordinate (top-left corner of a node).
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Size is the rendered size of a node on the canvas.
type Size struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// DefaultSize is applied to nodes added without an explicit size.
var DefaultSize = Size{Width: 220, Height: 80}

// ParamNode is one field definition of a data card.
//
// Key is the variable name used inside conditions and the field name of
// the form data; it should be unique within a graph but uniqueness is
// advisory (see [Graph.DuplicateKeys]).
type ParamNode struct {
	ID        string   `json:"id"`
	Key       string   `json:"key"`
	TypeID    TypeID   `json:"typeId"`
	Condition string   `json:"condition,omitempty"`
	Order     int      `json:"order"`
	Meta      Meta     `json:"-"`
	Position  Position `json:"position"`
	Size      Size     `json:"size"`
}

type paramNodeJSON struct {
	ID        string          `json:"id"`
	Key       string          `json:"key"`
	TypeID    TypeID          `json:"typeId"`
	Condition string          `json:"condition,omitempty"`
	Order     int             `json:"order"`
	Meta      json.RawMessage `json:"metaJson,omitempty"`
	Position  Position        `json:"position"`
	Size      *Size           `json:"size,omitempty"`
}

// MarshalJSON encodes the node with its Meta variant under "metaJson".
func (n ParamNode) MarshalJSON() ([]byte, error) {
	out := paramNodeJSON{
		ID:        n.ID,
		Key:       n.Key,
		TypeID:    n.TypeID,
		Condition: n.Condition,
		Order:     n.Order,
		Position:  n.Position,
	}
	if n.Size != (Size{}) {
		size := n.Size
		out.Size = &size
	}
	if n.Meta != nil {
		raw, err := json.Marshal(n.Meta)
		if err != nil {
			return nil, fmt.Errorf("encode meta of %s: %w", n.ID, err)
		}
		out.Meta = raw
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a node, choosing the Meta variant from typeId.
// Unknown meta keys are ignored and missing ones take zero values.
func (n *ParamNode) UnmarshalJSON(data []byte) error {
	var in paramNodeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	t, err := ParseTypeID(string(in.TypeID))
	if err != nil {
		return err
	}
	meta, err := DecodeMeta(t, in.Meta)
	if err != nil {
		return fmt.Errorf("decode meta of %s: %w", in.ID, err)
	}
	*n = ParamNode{
		ID:        in.ID,
		Key:       in.Key,
		TypeID:    t,
		Condition: in.Condition,
		Order:     in.Order,
		Meta:      meta,
		Position:  in.Position,
	}
	if in.Size != nil {
		n.Size = *in.Size
	}
	return nil
}

// HasCondition reports whether the node carries a non-blank condition.
func (n *ParamNode) HasCondition() bool {
	return strings.TrimSpace(n.Condition) != ""
}

// Connection is an explicit edge record. Source is the parent, Target the
// child. Condition, when present, gates the child in addition to the
// child's own condition.
type Connection struct {
	ID        string `json:"id"`
	Source    string `json:"source"`
	Target    string `json:"target"`
	Condition string `json:"condition,omitempty"`
}

// HasCondition reports whether the connection carries a non-blank condition.
func (c *Connection) HasCondition() bool {
	return strings.TrimSpace(c.Condition) != ""
}

// Viewport is the pan/zoom state of a tab.
type Viewport struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// Template groups independently editable tabs (one per metric/form).
type Template struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Tabs []*Graph `json:"tabs"`
}

// Tab returns the tab with the given id.
func (t *Template) Tab(id string) (*Graph, bool) {
	for _, g := range t.Tabs {
		if g.ID == id {
			return g, true
		}
	}
	return nil, false
}

// IDFunc generates node and connection identifiers.
type IDFunc func() string

// NewID is the default IDFunc. UUIDs keep ids unique across rapid
// sequential calls without relying on timing.
func NewID() string { return uuid.NewString() }

// CounterIDs returns an IDFunc producing prefix-1, prefix-2, ... It is
// deterministic and therefore useful in tests and examples.
func CounterIDs(prefix string) IDFunc {
	var n int
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}
