package logic

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	cgerrors "github.com/matzehuels/cardgraph/pkg/errors"
)

// Env is the flat key -> value environment a rule is evaluated against.
// Values are JSON-like: nil, bool, float64 (or any Go number), string,
// []any and map[string]any.
type Env map[string]any

// Operator names.
const (
	OpEq  = "=="
	OpNe  = "!="
	OpLt  = "<"
	OpGt  = ">"
	OpLe  = "<="
	OpGe  = ">="
	OpIn  = "in"
	OpAnd = "and"
	OpOr  = "or"
	OpVar = "var"
)

// Operators lists every supported operator.
var Operators = []string{OpEq, OpNe, OpLt, OpGt, OpLe, OpGe, OpIn, OpAnd, OpOr, OpVar}

// Rule is a parsed condition.
type Rule struct {
	root node
	src  string
}

// node is one parsed expression: a literal, an array of expressions or an
// operator application.
type node struct {
	op    string
	args  []node
	lit   any
	array bool
}

// Parse parses a JSON-Logic expression. An empty or blank expression parses
// to a rule that always evaluates to true.
func Parse(expr string) (Rule, error) {
	if strings.TrimSpace(expr) == "" {
		return Rule{root: node{lit: true}, src: expr}, nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(expr)))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Rule{}, cgerrors.Wrap(cgerrors.ErrCodeInvalidExpression, err, "parse condition")
	}
	if dec.More() {
		return Rule{}, cgerrors.New(cgerrors.ErrCodeInvalidExpression, "trailing data after condition")
	}
	root, err := build(raw)
	if err != nil {
		return Rule{}, err
	}
	return Rule{root: root, src: expr}, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level rules.
func MustParse(expr string) Rule {
	r, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return r
}

// String returns the source text of the rule.
func (r Rule) String() string { return r.src }

// Eval evaluates the rule and returns the raw JSON-Logic result.
func (r Rule) Eval(env Env) (any, error) {
	return eval(r.root, env)
}

// Test evaluates the rule and reports its truthiness.
func (r Rule) Test(env Env) (bool, error) {
	v, err := r.Eval(env)
	if err != nil {
		return false, err
	}
	return Truthy(v), nil
}

// Evaluate parses expr and evaluates it against env.
func Evaluate(expr string, env Env) (bool, error) {
	r, err := Parse(expr)
	if err != nil {
		return false, err
	}
	return r.Test(env)
}

func build(raw any) (node, error) {
	switch v := raw.(type) {
	case map[string]any:
		if len(v) != 1 {
			keys := make([]string, 0, len(v))
			for k := range v {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			return node{}, cgerrors.New(cgerrors.ErrCodeInvalidExpression,
				"operator object must have exactly one key, got %v", keys)
		}
		for op, rawArgs := range v {
			if !known(op) {
				return node{}, cgerrors.New(cgerrors.ErrCodeUnknownOperator, "unknown operator %q", op)
			}
			var items []any
			if list, ok := rawArgs.([]any); ok {
				items = list
			} else {
				items = []any{rawArgs}
			}
			args := make([]node, len(items))
			for i, item := range items {
				n, err := build(item)
				if err != nil {
					return node{}, err
				}
				args[i] = n
			}
			if err := checkArity(op, len(args)); err != nil {
				return node{}, err
			}
			return node{op: op, args: args}, nil
		}
	case []any:
		args := make([]node, len(v))
		for i, item := range v {
			n, err := build(item)
			if err != nil {
				return node{}, err
			}
			args[i] = n
		}
		return node{array: true, args: args}, nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return node{}, cgerrors.Wrap(cgerrors.ErrCodeInvalidExpression, err, "number %s", v)
		}
		return node{lit: f}, nil
	}
	return node{lit: raw}, nil
}

func known(op string) bool {
	for _, o := range Operators {
		if o == op {
			return true
		}
	}
	return false
}

func checkArity(op string, n int) error {
	var ok bool
	switch op {
	case OpEq, OpNe, OpIn, OpGt, OpGe:
		ok = n == 2
	case OpLt, OpLe:
		ok = n == 2 || n == 3
	case OpAnd, OpOr:
		ok = n >= 1
	case OpVar:
		ok = n == 1 || n == 2
	}
	if !ok {
		return cgerrors.New(cgerrors.ErrCodeInvalidExpression, "operator %q does not take %d arguments", op, n)
	}
	return nil
}

func eval(n node, env Env) (any, error) {
	if n.array {
		out := make([]any, len(n.args))
		for i, a := range n.args {
			v, err := eval(a, env)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
	if n.op == "" {
		return n.lit, nil
	}

	switch n.op {
	case OpAnd:
		var last any
		for _, a := range n.args {
			v, err := eval(a, env)
			if err != nil {
				return nil, err
			}
			if !Truthy(v) {
				return v, nil
			}
			last = v
		}
		return last, nil
	case OpOr:
		var last any
		for _, a := range n.args {
			v, err := eval(a, env)
			if err != nil {
				return nil, err
			}
			if Truthy(v) {
				return v, nil
			}
			last = v
		}
		return last, nil
	case OpVar:
		return lookup(n.args, env)
	}

	vals := make([]any, len(n.args))
	for i, a := range n.args {
		v, err := eval(a, env)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}

	switch n.op {
	case OpEq:
		return looseEqual(vals[0], vals[1]), nil
	case OpNe:
		return !looseEqual(vals[0], vals[1]), nil
	case OpIn:
		return contains(vals[0], vals[1])
	default:
		return compareChain(n.op, vals)
	}
}

func lookup(args []node, env Env) (any, error) {
	name, err := eval(args[0], env)
	if err != nil {
		return nil, err
	}
	var key string
	switch k := name.(type) {
	case string:
		key = k
	case float64:
		key = strconv.FormatFloat(k, 'f', -1, 64)
	case nil:
		return map[string]any(env), nil
	default:
		return nil, cgerrors.New(cgerrors.ErrCodeTypeMismatch, "var name must be a string, got %T", name)
	}
	if key == "" {
		return map[string]any(env), nil
	}
	if v, ok := env[key]; ok && v != nil {
		return normalize(v), nil
	}
	if len(args) == 2 {
		return eval(args[1], env)
	}
	return nil, nil
}

// normalize converts Go numeric types to float64 so comparisons see a
// single number representation.
func normalize(v any) any {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int8:
		return float64(x)
	case int16:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case uint:
		return float64(x)
	case uint8:
		return float64(x)
	case uint16:
		return float64(x)
	case uint32:
		return float64(x)
	case uint64:
		return float64(x)
	case float32:
		return float64(x)
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out
	}
	return v
}

// Truthy implements JSON-Logic truthiness: false, nil, 0, NaN, "" and empty
// arrays are false; everything else is true.
func Truthy(v any) bool {
	switch x := normalize(v).(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0 && !math.IsNaN(x)
	case string:
		return x != ""
	case []any:
		return len(x) > 0
	}
	return true
}

// looseEqual follows JavaScript "==" for the JSON value space.
func looseEqual(a, b any) bool {
	a, b = normalize(a), normalize(b)
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return x == y
		}
	case bool:
		if y, ok := b.(bool); ok {
			return x == y
		}
	case float64:
		if y, ok := b.(float64); ok {
			return x == y
		}
	case []any, map[string]any:
		// Arrays and objects compare by identity in JavaScript; values
		// decoded from JSON are never identical.
		if _, ok := b.(string); !ok {
			return false
		}
	}
	if isComposite(a) || isComposite(b) {
		if s, ok := b.(string); ok {
			return primitiveString(a) == s
		}
		if s, ok := a.(string); ok {
			return primitiveString(b) == s
		}
		return false
	}
	fa, okA := toNumber(a)
	fb, okB := toNumber(b)
	return okA && okB && fa == fb
}

func compareChain(op string, vals []any) (any, error) {
	for _, v := range vals {
		if isComposite(normalize(v)) {
			return nil, cgerrors.New(cgerrors.ErrCodeTypeMismatch, "operator %q cannot compare %T", op, v)
		}
	}
	for i := 0; i+1 < len(vals); i++ {
		ok := compare(op, vals[i], vals[i+1])
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func compare(op string, a, b any) bool {
	a, b = normalize(a), normalize(b)
	if sa, ok := a.(string); ok {
		if sb, ok := b.(string); ok {
			c := strings.Compare(sa, sb)
			return cmpResult(op, c)
		}
	}
	fa, okA := toNumber(a)
	fb, okB := toNumber(b)
	if !okA || !okB {
		return false
	}
	switch {
	case fa < fb:
		return cmpResult(op, -1)
	case fa > fb:
		return cmpResult(op, 1)
	}
	return cmpResult(op, 0)
}

func cmpResult(op string, c int) bool {
	switch op {
	case OpLt:
		return c < 0
	case OpLe:
		return c <= 0
	case OpGt:
		return c > 0
	case OpGe:
		return c >= 0
	}
	return false
}

func contains(needle, haystack any) (any, error) {
	needle, haystack = normalize(needle), normalize(haystack)
	switch h := haystack.(type) {
	case string:
		s, ok := needle.(string)
		if !ok {
			if isComposite(needle) || needle == nil {
				return nil, cgerrors.New(cgerrors.ErrCodeTypeMismatch, "in: cannot search a string for %T", needle)
			}
			s = primitiveString(needle)
		}
		return strings.Contains(h, s), nil
	case []any:
		for _, item := range h {
			if strictEqual(needle, item) {
				return true, nil
			}
		}
		return false, nil
	case nil:
		return false, nil
	}
	return nil, cgerrors.New(cgerrors.ErrCodeTypeMismatch, "in: haystack must be a string or array, got %T", haystack)
}

func strictEqual(a, b any) bool {
	a, b = normalize(a), normalize(b)
	if isComposite(a) || isComposite(b) {
		return false
	}
	return a == b
}

// toNumber converts a primitive to a number the way JavaScript's Number()
// does for the JSON value space.
func toNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, !math.IsNaN(x)
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case nil:
		return 0, true
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func isComposite(v any) bool {
	switch v.(type) {
	case []any, map[string]any:
		return true
	}
	return false
}

func primitiveString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case []any:
		parts := make([]string, len(x))
		for i, item := range x {
			parts[i] = primitiveString(item)
		}
		return strings.Join(parts, ",")
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

// Vars returns the variable names referenced by the rule, sorted and
// deduplicated. Only literal names are reported.
func (r Rule) Vars() []string {
	seen := make(map[string]bool)
	var walk func(node)
	walk = func(n node) {
		if n.op == OpVar && len(n.args) > 0 {
			if s, ok := n.args[0].lit.(string); ok && n.args[0].op == "" && s != "" {
				seen[s] = true
			}
		}
		for _, a := range n.args {
			walk(a)
		}
	}
	walk(r.root)
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
