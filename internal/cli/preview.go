package cli

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cardgraph/pkg/card"
	"github.com/matzehuels/cardgraph/pkg/editor"
	"github.com/matzehuels/cardgraph/pkg/logic"
	"github.com/matzehuels/cardgraph/pkg/sample"
)

// previewCommand fills in a template interactively.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		answers answerFlags
		tab     string
	)

	cmd := &cobra.Command{
		Use:   "preview [template]",
		Short: "Fill in a template interactively",
		Long: `Walk the visible fields of a tab in the terminal. Changing an answer
re-resolves visibility immediately, so dependent fields appear and
disappear as they would in the form.

Keys: ↑/↓ move, →/⏎ next value, ← previous value, x clear, q quit.
The final answers are printed as JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tpl, err := loadTemplate(args[0])
			if err != nil {
				return err
			}
			env, err := answers.env()
			if err != nil {
				return err
			}
			ed, _, err := c.newEditor(cmd.Context(), tpl, true)
			if err != nil {
				return err
			}
			defer ed.Close()
			tabID, err := pickTab(ed, tab)
			if err != nil {
				return err
			}

			m, err := newPreviewModel(ed, tabID, env)
			if err != nil {
				return err
			}
			final, err := tea.NewProgram(m, tea.WithContext(cmd.Context())).Run()
			if err != nil {
				return err
			}
			fm, ok := final.(previewModel)
			if !ok {
				return nil
			}
			enc := json.NewEncoder(c.writer())
			enc.SetIndent("", "  ")
			return enc.Encode(fm.answers())
		},
	}

	cmd.Flags().StringVar(&answers.file, "answers", "", "initial answers file (JSON or YAML object)")
	cmd.Flags().StringArrayVar(&answers.set, "set", nil, "initial answer as key=value (repeatable)")
	cmd.Flags().StringVar(&tab, "tab", "", "tab id or name (default: first tab)")
	return cmd
}

// =============================================================================
// previewModel - Interactive form walk-through
// =============================================================================

// previewModel is the bubbletea model of the preview command. The graph is
// a snapshot; only the answers change.
type previewModel struct {
	ed     *editor.Editor
	tabID  string
	title  string
	g      *card.Graph
	env    logic.Env
	fields []card.ParamNode
	hidden int
	cursor int
	offset int
	height int
	err    error
}

func newPreviewModel(ed *editor.Editor, tabID string, env logic.Env) (previewModel, error) {
	g, err := ed.Graph(tabID)
	if err != nil {
		return previewModel{}, err
	}
	if env == nil {
		env = logic.Env{}
	}
	m := previewModel{ed: ed, tabID: tabID, title: g.Name, g: g, env: env, height: 15}
	if err := m.refresh(); err != nil {
		return previewModel{}, err
	}
	return m, nil
}

// refresh re-resolves the visible fields under the current answers.
func (m *previewModel) refresh() error {
	ids, err := m.ed.VisibleFields(m.tabID, "", m.env)
	if err != nil {
		return err
	}
	m.fields = make([]card.ParamNode, 0, len(ids))
	for _, id := range ids {
		if n, ok := m.g.Node(id); ok {
			m.fields = append(m.fields, n)
		}
	}
	m.hidden = m.g.NodeCount() - len(m.fields)
	m.cursor = min(m.cursor, max(len(m.fields)-1, 0))
	m.scroll()
	return nil
}

func (m *previewModel) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

// answers returns the answers of the visible fields only; answers to
// fields that were hidden again are dropped.
func (m previewModel) answers() map[string]any {
	out := make(map[string]any, len(m.fields))
	for _, n := range m.fields {
		if v, ok := m.env[n.Key]; ok {
			out[n.Key] = v
		}
	}
	return out
}

func (m previewModel) Init() tea.Cmd {
	return nil
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				m.scroll()
			}
			return m, nil
		case "down", "j":
			if m.cursor < len(m.fields)-1 {
				m.cursor++
				m.scroll()
			}
			return m, nil
		case "right", "l", "enter", " ":
			m.step(1)
		case "left", "h":
			m.step(-1)
		case "x", "backspace", "delete":
			if len(m.fields) > 0 {
				m.env = cloneEnv(m.env)
				delete(m.env, m.fields[m.cursor].Key)
			}
		default:
			return m, nil
		}
		m.err = m.refresh()
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-8, 5)
		m.scroll()
	}
	return m, nil
}

// step moves the answer of the selected field by dir.
func (m *previewModel) step(dir int) {
	if len(m.fields) == 0 {
		return
	}
	n := m.fields[m.cursor]
	m.env = cloneEnv(m.env)
	v := nextValue(n, m.env[n.Key], dir)
	if v == nil {
		delete(m.env, n.Key)
		return
	}
	m.env[n.Key] = v
}

// cloneEnv copies env so earlier models stay unchanged.
func cloneEnv(env logic.Env) logic.Env {
	out := make(logic.Env, len(env)+1)
	for k, v := range env {
		out[k] = v
	}
	return out
}

// nextValue returns the answer after cur when stepping by dir. Enums cycle
// through their options, booleans toggle, numbers move by their step
// within bounds. Other kinds switch between unset and an example value.
func nextValue(n card.ParamNode, cur any, dir int) any {
	switch meta := n.Meta.(type) {
	case card.EnumMeta:
		if len(meta.Options) == 0 {
			return nil
		}
		if list, ok := cur.([]any); ok && len(list) > 0 {
			cur = list[0]
		}
		idx := -1
		for i, o := range meta.Options {
			if o.TechnicalValue() == cur {
				idx = i
			}
		}
		size := len(meta.Options)
		switch {
		case idx < 0 && dir > 0:
			idx = 0
		case idx < 0:
			idx = size - 1
		default:
			idx = ((idx+dir)%size + size) % size
		}
		v := meta.Options[idx].TechnicalValue()
		if meta.Multiple {
			return []any{v}
		}
		return v
	case card.BooleanMeta:
		if cur == nil {
			return !meta.Default
		}
		return !logic.Truthy(cur)
	case card.IntegerMeta:
		step := max(meta.Step, 1)
		v := int64(0)
		if meta.Min != nil {
			v = *meta.Min
		}
		if cur != nil {
			v = int64(number(cur, float64(v))) + int64(dir)*step
		}
		if meta.Min != nil {
			v = max(v, *meta.Min)
		}
		if meta.Max != nil {
			v = min(v, *meta.Max)
		}
		return v
	case card.FloatMeta:
		step := meta.Step
		if step <= 0 {
			step = 1
		}
		v := 0.0
		if meta.Min != nil {
			v = *meta.Min
		}
		if cur != nil {
			v = number(cur, v) + float64(dir)*step
		}
		if meta.Min != nil {
			v = math.Max(v, *meta.Min)
		}
		if meta.Max != nil {
			v = math.Min(v, *meta.Max)
		}
		return v
	case card.RangeMeta:
		step := meta.Step
		if step <= 0 {
			step = 1
		}
		v := meta.Min
		if cur != nil {
			v = number(cur, meta.Min) + float64(dir)*step
		}
		return math.Min(math.Max(v, meta.Min), math.Max(meta.Max, meta.Min))
	}
	if cur != nil {
		return nil
	}
	return sample.Value(n, "")
}

// number converts a decoded answer to float64, or returns def.
func number(v any, def float64) float64 {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case float64:
		return x
	}
	return def
}

func (m previewModel) View() string {
	var b strings.Builder

	title := m.title
	if title == "" {
		title = "Preview"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ navigate  →/⏎ next value  ← previous  x clear  q done"))
	b.WriteString("\n\n")

	end := min(m.offset+m.height, len(m.fields))
	rows := make([][]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		n := m.fields[i]
		cursor := "  "
		if i == m.cursor {
			cursor = iconCursor + " "
		}
		rows = append(rows, []string{cursor, n.Key, string(n.TypeID), formatAnswer(m.env[n.Key])})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorMuted).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorFaint)).
		Headers("", "Field", "Type", "Answer").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.offset+row == m.cursor {
				return lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
			}
			if col == 2 {
				return StyleDim
			}
			return StyleValue
		})
	b.WriteString(t.Render())
	b.WriteString("\n\n")

	line := fmt.Sprintf("  %d visible", len(m.fields))
	if m.hidden > 0 {
		line += " · " + styleHidden.Render(fmt.Sprintf("%d hidden", m.hidden))
	}
	b.WriteString(StyleDim.Render(line))
	if m.err != nil {
		b.WriteString("\n" + markFail.String() + " " + m.err.Error())
	}
	return b.String()
}

func formatAnswer(v any) string {
	if v == nil {
		return StyleDim.Render("—")
	}
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
