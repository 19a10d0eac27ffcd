package document

import (
	"fmt"

	"github.com/matzehuels/cardgraph/pkg/card"
	cgerrors "github.com/matzehuels/cardgraph/pkg/errors"
	"github.com/matzehuels/cardgraph/pkg/logic"
)

// Severity grades an Issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one finding of Check.
type Issue struct {
	Severity Severity `json:"severity"`
	Tab      string   `json:"tab"`
	Node     string   `json:"node,omitempty"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	if i.Node != "" {
		return fmt.Sprintf("%s: tab %s node %s: %s", i.Severity, i.Tab, i.Node, i.Message)
	}
	return fmt.Sprintf("%s: tab %s: %s", i.Severity, i.Tab, i.Message)
}

// Check inspects every tab. Structural problems (dangling connections,
// second parents, cycles, duplicate tab ids) are errors. Conditions that
// do not parse and duplicate keys are warnings: the editor keeps working
// with them, the affected fields are simply always shown.
func Check(t *card.Template) []Issue {
	var issues []Issue
	seenTabs := make(map[string]bool, len(t.Tabs))
	for _, g := range t.Tabs {
		if g == nil {
			issues = append(issues, Issue{Severity: SeverityError, Message: "nil tab"})
			continue
		}
		if seenTabs[g.ID] {
			issues = append(issues, Issue{Severity: SeverityError, Tab: g.ID, Message: "duplicate tab id"})
		}
		seenTabs[g.ID] = true

		if err := g.Validate(); err != nil {
			issues = append(issues, Issue{Severity: SeverityError, Tab: g.ID, Message: cgerrors.UserMessage(err)})
		}
		for _, k := range g.DuplicateKeys() {
			issues = append(issues, Issue{Severity: SeverityWarning, Tab: g.ID, Message: fmt.Sprintf("key %q is used by more than one node", k)})
		}
		for _, n := range g.Nodes() {
			if !n.HasCondition() {
				continue
			}
			if _, err := logic.Parse(n.Condition); err != nil {
				issues = append(issues, Issue{Severity: SeverityWarning, Tab: g.ID, Node: n.ID, Message: "condition: " + cgerrors.UserMessage(err)})
			}
		}
		for _, c := range g.Connections() {
			if !c.HasCondition() {
				continue
			}
			if _, err := logic.Parse(c.Condition); err != nil {
				issues = append(issues, Issue{Severity: SeverityWarning, Tab: g.ID, Node: c.Target, Message: "connection condition: " + cgerrors.UserMessage(err)})
			}
		}
	}
	return issues
}

// Validate returns the first error-level issue of Check, coded
// INVALID_REFERENCE.
func Validate(t *card.Template) error {
	for _, i := range Check(t) {
		if i.Severity == SeverityError {
			return cgerrors.New(cgerrors.ErrCodeInvalidReference, "%s", i.String())
		}
	}
	return nil
}
