package cli

import (
	"encoding/json"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	cgerrors "github.com/matzehuels/cardgraph/pkg/errors"
	"github.com/matzehuels/cardgraph/pkg/logic"
)

// answerFlags collects form answers from --answers files and --set pairs.
type answerFlags struct {
	file string
	set  []string
}

// env merges the answers file (JSON or YAML) with --set pairs; pairs win.
func (a answerFlags) env() (logic.Env, error) {
	env := logic.Env{}
	if a.file != "" {
		data, err := os.ReadFile(a.file)
		if err != nil {
			return nil, cgerrors.Wrap(cgerrors.ErrCodeInvalidInput, err, "read answers %s", a.file)
		}
		if err := yaml.Unmarshal(data, &env); err != nil {
			return nil, cgerrors.Wrap(cgerrors.ErrCodeInvalidFormat, err, "parse answers %s", a.file)
		}
	}
	pairs, err := parseAssignments(a.set)
	if err != nil {
		return nil, err
	}
	for k, v := range pairs {
		env[k] = v
	}
	return env, nil
}

// parseAssignments turns key=value pairs into an Env. Values that parse
// as JSON keep their JSON type (numbers, booleans, null, arrays); anything
// else is a string.
func parseAssignments(pairs []string) (logic.Env, error) {
	env := make(logic.Env, len(pairs))
	for _, p := range pairs {
		key, raw, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, cgerrors.New(cgerrors.ErrCodeInvalidInput, "expected key=value, got %q", p)
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		env[key] = v
	}
	return env, nil
}
