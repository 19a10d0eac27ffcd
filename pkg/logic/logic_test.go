package logic

import (
	"fmt"
	"reflect"
	"testing"

	cgerrors "github.com/matzehuels/cardgraph/pkg/errors"
)

func TestEvaluate(t *testing.T) {
	env := Env{
		"scope": "subject",
		"age":   21,
		"tags":  []any{"a", "b"},
		"flag":  true,
		"zero":  0,
		"name":  "",
	}
	tests := []struct {
		name string
		expr string
		want bool
	}{
		{"blank", "", true},
		{"whitespace", "   ", true},
		{"literal true", "true", true},
		{"literal false", "false", false},
		{"eq string", `{"==":[{"var":"scope"},"subject"]}`, true},
		{"eq mismatch", `{"==":[{"var":"scope"},"object"]}`, false},
		{"eq loose number string", `{"==":[{"var":"age"},"21"]}`, true},
		{"ne", `{"!=":[{"var":"scope"},"object"]}`, true},
		{"lt", `{"<":[{"var":"age"},30]}`, true},
		{"gt", `{">":[{"var":"age"},30]}`, false},
		{"le equal", `{"<=":[21,{"var":"age"}]}`, true},
		{"ge", `{">=":[{"var":"age"},18]}`, true},
		{"between", `{"<":[18,{"var":"age"},30]}`, true},
		{"between outside", `{"<":[18,{"var":"age"},20]}`, false},
		{"between inclusive", `{"<=":[21,{"var":"age"},21]}`, true},
		{"in array", `{"in":["b",{"var":"tags"}]}`, true},
		{"in array miss", `{"in":["c",{"var":"tags"}]}`, false},
		{"in string", `{"in":["sub",{"var":"scope"}]}`, true},
		{"in literal array", `{"in":[{"var":"scope"},["subject","object"]]}`, true},
		{"and", `{"and":[{"var":"flag"},{"==":[{"var":"scope"},"subject"]}]}`, true},
		{"and short circuit", `{"and":[false,{"in":["x",5]}]}`, false},
		{"or", `{"or":[{"var":"zero"},{"var":"flag"}]}`, true},
		{"or all false", `{"or":[{"var":"zero"},{"var":"name"}]}`, false},
		{"missing var", `{"==":[{"var":"missing"},null]}`, true},
		{"missing var default", `{"==":[{"var":["missing","fallback"]},"fallback"]}`, true},
		{"var single arg form", `{"var":"flag"}`, true},
		{"dotted key is flat", `{"var":"scope.sub"}`, false},
		{"nested", `{"and":[{"or":[false,{">":[{"var":"age"},20]}]},{"!=":[{"var":"scope"},""]}]}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.expr, env)
			if err != nil {
				t.Fatalf("Evaluate(%s) error: %v", tt.expr, err)
			}
			if got != tt.want {
				t.Errorf("Evaluate(%s) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestEvaluate_Errors(t *testing.T) {
	tests := []struct {
		name string
		expr string
		code cgerrors.Code
	}{
		{"malformed json", `{"==":[`, cgerrors.ErrCodeInvalidExpression},
		{"trailing data", `true false`, cgerrors.ErrCodeInvalidExpression},
		{"unknown operator", `{"xor":[true,false]}`, cgerrors.ErrCodeUnknownOperator},
		{"two keys", `{"==":[1,1],"!=":[1,2]}`, cgerrors.ErrCodeInvalidExpression},
		{"arity", `{"==":[1]}`, cgerrors.ErrCodeInvalidExpression},
		{"compare array", `{"<":[[1],2]}`, cgerrors.ErrCodeTypeMismatch},
		{"in number haystack", `{"in":["a",5]}`, cgerrors.ErrCodeTypeMismatch},
		{"var object name", `{"var":{"==":[1,1]}}`, cgerrors.ErrCodeTypeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Evaluate(tt.expr, Env{})
			if err == nil {
				t.Fatalf("Evaluate(%s) error = nil, want %s", tt.expr, tt.code)
			}
			if got := cgerrors.GetCode(err); got != tt.code {
				t.Errorf("GetCode() = %s, want %s (err: %v)", got, tt.code, err)
			}
		})
	}
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		v    any
		want bool
	}{
		{nil, false},
		{false, false},
		{true, true},
		{0, false},
		{0.0, false},
		{int64(3), true},
		{"", false},
		{"0", true},
		{[]any{}, false},
		{[]any{0}, true},
		{map[string]any{}, true},
	}
	for _, tt := range tests {
		if got := Truthy(tt.v); got != tt.want {
			t.Errorf("Truthy(%#v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestLooseEqual(t *testing.T) {
	tests := []struct {
		a, b any
		want bool
	}{
		{1, 1.0, true},
		{"1", 1, true},
		{true, 1, true},
		{false, "", true},
		{nil, nil, true},
		{nil, 0, false},
		{"a", "b", false},
		{[]any{"a"}, "a", true},
		{[]any{1}, []any{1}, false},
	}
	for _, tt := range tests {
		if got := looseEqual(tt.a, tt.b); got != tt.want {
			t.Errorf("looseEqual(%#v, %#v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestRule_Vars(t *testing.T) {
	r := MustParse(`{"and":[{"==":[{"var":"scope"},"s"]},{"in":[{"var":"tag"},{"var":"tags"}]},{"var":"scope"}]}`)
	want := []string{"scope", "tag", "tags"}
	if got := r.Vars(); !reflect.DeepEqual(got, want) {
		t.Errorf("Vars() = %v, want %v", got, want)
	}
}

func TestRule_Reuse(t *testing.T) {
	r := MustParse(`{">":[{"var":"n"},2]}`)
	for n, want := range map[int]bool{1: false, 2: false, 3: true} {
		got, err := r.Test(Env{"n": n})
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("Test(n=%d) = %v, want %v", n, got, want)
		}
	}
}

func ExampleEvaluate() {
	ok, err := Evaluate(`{"==":[{"var":"scope"},"subject"]}`, Env{"scope": "subject"})
	fmt.Println(ok, err)
	// Output: true <nil>
}

func ExampleRule_Eval() {
	r := MustParse(`{"or":[{"var":"nickname"},{"var":"name"}]}`)
	v, _ := r.Eval(Env{"name": "Ada"})
	fmt.Println(v)
	// Output: Ada
}
