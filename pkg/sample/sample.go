// Package sample fills a card with plausible answers, the way a user
// would: answer what is visible, look again, answer what appeared.
//
// The result is the {key: value} object the form would submit, so it can
// be used as an export preview or as fixture data for the consumers of a
// card.
package sample

import (
	"fmt"
	"maps"
	"slices"

	"github.com/matzehuels/cardgraph/pkg/card"
	"github.com/matzehuels/cardgraph/pkg/logic"
	"github.com/matzehuels/cardgraph/pkg/visibility"
)

// FixedDate is used for date fields without a lower bound.
const FixedDate = "2024-01-01"

// Options steers generation.
type Options struct {
	// Values presets answers by key. Presets always take part in condition
	// evaluation and win over generated values, but like every value they
	// only appear in the result while their field is visible.
	Values map[string]any
	// Choices picks an enum option id per key instead of the first option.
	Choices map[string]string
}

// Generate answers the visible fields below rootID, or below every root
// when rootID is empty. It iterates until the visible set stops changing,
// bounded by the node count plus one rounds. Generated values of fields
// that became hidden are discarded.
func Generate(g *card.Graph, rootID string, r *visibility.Resolver, opts Options) map[string]any {
	generated := make(map[string]any)
	var visible, prev []string
	for round := 0; round <= g.NodeCount(); round++ {
		env := logic.Env{}
		maps.Copy(env, generated)
		maps.Copy(env, opts.Values)

		visible = visibleFields(g, rootID, r, env)
		shown := make(map[string]bool, len(visible))
		for _, id := range visible {
			n, _ := g.Node(id)
			if n.Key == "" || shown[n.Key] {
				continue
			}
			shown[n.Key] = true
			if _, preset := opts.Values[n.Key]; preset {
				continue
			}
			if _, ok := generated[n.Key]; !ok {
				generated[n.Key] = Value(n, opts.Choices[n.Key])
			}
		}
		maps.DeleteFunc(generated, func(k string, _ any) bool { return !shown[k] })

		if slices.Equal(visible, prev) {
			break
		}
		prev = visible
	}

	out := make(map[string]any, len(visible))
	for _, id := range visible {
		n, _ := g.Node(id)
		if v, ok := opts.Values[n.Key]; ok {
			out[n.Key] = v
		} else if v, ok := generated[n.Key]; ok {
			out[n.Key] = v
		}
	}
	return out
}

func visibleFields(g *card.Graph, rootID string, r *visibility.Resolver, env logic.Env) []string {
	if rootID != "" {
		return r.VisibleFields(rootID, g, env)
	}
	var out []string
	for _, root := range g.Roots() {
		out = append(out, r.VisibleFields(root, g, env)...)
	}
	return out
}

// Value returns a plausible answer for n. choice selects an enum option
// by id; an unknown or empty choice falls back to the first option.
func Value(n card.ParamNode, choice string) any {
	switch m := n.Meta.(type) {
	case card.EnumMeta:
		if len(m.Options) == 0 {
			return ""
		}
		opt := m.Options[0]
		if o, ok := m.Option(choice); ok {
			opt = o
		}
		if m.Multiple {
			return []any{opt.TechnicalValue()}
		}
		return opt.TechnicalValue()
	case card.IntegerMeta:
		if m.Min != nil {
			return *m.Min
		}
		return int64(0)
	case card.FloatMeta:
		if m.Min != nil {
			return *m.Min
		}
		return 0.0
	case card.RangeMeta:
		return m.Min
	case card.StringMeta:
		return n.Key + " example"
	case card.DateMeta:
		if m.Min != "" {
			return m.Min
		}
		return FixedDate
	case card.BooleanMeta:
		return m.Default
	case card.ReferenceMeta:
		entity := m.Entity
		if entity == "" {
			entity = n.Key
		}
		return fmt.Sprintf("%s-1", entity)
	case card.ColorMeta:
		if len(m.Palette) > 0 {
			return m.Palette[0]
		}
		return "#000000"
	case card.IconMeta:
		set := m.Set
		if set == "" {
			set = "default"
		}
		return set + ":default"
	}
	return nil
}
