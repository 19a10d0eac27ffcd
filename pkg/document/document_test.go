package document

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/cardgraph/pkg/card"
	cgerrors "github.com/matzehuels/cardgraph/pkg/errors"
)

const kindIsAnimal = `{"==":[{"var":"kind"},"animal"]}`

func sampleTemplate(t *testing.T) *card.Template {
	t.Helper()
	g := card.NewGraph("Observation", card.WithIDFunc(card.CounterIDs("n")))
	kind := g.AddNode(card.ParamNode{
		Key:    "kind",
		TypeID: card.TypeEnum,
		Order:  1,
		Meta: card.EnumMeta{Options: []card.EnumOption{
			{ID: "animal", Label: map[string]string{"en": "Animal", "de": "Tier"}},
			{ID: "plant", Label: map[string]string{"en": "Plant"}},
		}},
		Position: card.Position{X: 10, Y: 20.5},
	})
	legs := g.AddNode(card.ParamNode{Key: "legs", TypeID: card.TypeInteger, Order: 2, Condition: kindIsAnimal})
	if _, err := g.ConnectDirected(kind, legs, card.ConnectOptions{Condition: `{"!=":[{"var":"kind"},null]}`}); err != nil {
		t.Fatal(err)
	}
	return &card.Template{ID: "tpl-1", Name: "Field survey", Tabs: []*card.Graph{g}}
}

func TestRoundTrip(t *testing.T) {
	for _, format := range []Format{JSON, YAML} {
		t.Run(string(format), func(t *testing.T) {
			tpl := sampleTemplate(t)
			want, err := Encode(tpl, JSON)
			if err != nil {
				t.Fatal(err)
			}

			data, err := Encode(tpl, format)
			if err != nil {
				t.Fatal(err)
			}
			back, err := Decode(data, format)
			if err != nil {
				t.Fatalf("Decode: %v\n%s", err, data)
			}
			got, _ := Encode(back, JSON)
			if !bytes.Equal(got, want) {
				t.Errorf("round trip changed the document:\n got %s\nwant %s", got, want)
			}

			legs, ok := back.Tabs[0].NodeByKey("legs")
			if !ok || legs.Condition != kindIsAnimal {
				t.Errorf("condition = %q, want byte-identical %q", legs.Condition, kindIsAnimal)
			}
		})
	}
}

func TestYAMLIsBlockStyle(t *testing.T) {
	data, err := Encode(sampleTemplate(t), YAML)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	if !strings.HasPrefix(s, "version: 1\ntemplate:\n") {
		t.Errorf("unexpected YAML head:\n%s", s)
	}
	if strings.Contains(s, "{\"id\"") {
		t.Errorf("YAML should not contain flow mappings:\n%s", s)
	}
}

func TestDecodeBareTemplate(t *testing.T) {
	data := []byte(`{"id":"t","name":"bare","tabs":[{"id":"tab","name":"A","nodes":[
		{"id":"a","key":"a","typeId":"boolean","order":1,"position":{"x":0,"y":0}}],"connections":[]}]}`)
	tpl, err := Decode(data, JSON)
	if err != nil {
		t.Fatal(err)
	}
	if tpl.Name != "bare" || len(tpl.Tabs) != 1 || tpl.Tabs[0].NodeCount() != 1 {
		t.Errorf("decoded %+v", tpl)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
		code   cgerrors.Code
	}{
		{"not json", `{`, JSON, cgerrors.ErrCodeInvalidFormat},
		{"not yaml", "a: [", YAML, cgerrors.ErrCodeInvalidFormat},
		{"future version", `{"version":99,"template":{"tabs":[]}}`, JSON, cgerrors.ErrCodeUnsupported},
		{"no template", `{"version":1}`, JSON, cgerrors.ErrCodeInvalidFormat},
		{"unknown type", `{"tabs":[{"id":"x","nodes":[{"id":"a","typeId":"blob"}]}]}`, JSON, cgerrors.ErrCodeInvalidFormat},
		{"dangling connection", `{"tabs":[{"id":"x","nodes":[],"connections":[{"id":"c","source":"a","target":"b"}]}]}`, JSON, cgerrors.ErrCodeInvalidReference},
		{"duplicate tab", `{"tabs":[{"id":"x"},{"id":"x"}]}`, JSON, cgerrors.ErrCodeInvalidReference},
		{"unknown parentId", `{"tabs":[{"id":"x","nodes":[{"id":"b","typeId":"string","parentId":"ghost"}]}]}`, JSON, cgerrors.ErrCodeInvalidReference},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data), tt.format)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := cgerrors.GetCode(err); got != tt.code {
				t.Errorf("code = %s, want %s (%v)", got, tt.code, err)
			}
		})
	}
}

func TestDecodeTreeModeParentIDs(t *testing.T) {
	data := []byte(`{"tabs":[{"id":"tree","name":"Tree","nodes":[
		{"id":"a","key":"kind","typeId":"string","order":1},
		{"id":"b","key":"legs","typeId":"integer","order":2,"parentId":"a","condition":"{\"==\":[{\"var\":\"kind\"},\"animal\"]}"},
		{"id":"c","key":"tail","typeId":"boolean","order":3,"parentId":"b"}],
		"connections":[{"id":"a-c","source":"a","target":"c"}]}]}`)

	tpl, err := Decode(data, JSON)
	if err != nil {
		t.Fatal(err)
	}
	g := tpl.Tabs[0]
	if g.ConnectionCount() != 2 {
		t.Fatalf("connections = %v, want a-c plus a->b", g.Connections())
	}
	for child, want := range map[string]string{"b": "a", "c": "a"} {
		if p, ok := g.Parent(child); !ok || p != want {
			t.Errorf("Parent(%s) = %q, %v, want %q", child, p, ok, want)
		}
	}
	if roots := g.Roots(); len(roots) != 1 || roots[0] != "a" {
		t.Errorf("Roots() = %v, want [a]", roots)
	}

	encoded, err := Encode(tpl, JSON)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(encoded, []byte("parentId")) {
		t.Errorf("encoded document still carries parentId:\n%s", encoded)
	}
	back, err := Decode(encoded, JSON)
	if err != nil {
		t.Fatal(err)
	}
	again, _ := Encode(back, JSON)
	if !bytes.Equal(again, encoded) {
		t.Errorf("second round trip changed the document:\n got %s\nwant %s", again, encoded)
	}
}

func TestCheckReportsUnknownParentID(t *testing.T) {
	data := []byte(`{"tabs":[{"id":"tree","nodes":[
		{"id":"a","key":"kind","typeId":"string","order":1},
		{"id":"b","key":"legs","typeId":"integer","order":2,"parentId":"ghost"}]}]}`)
	tpl, err := Parse(data, JSON)
	if err != nil {
		t.Fatal(err)
	}
	issues := Check(tpl)
	if len(issues) != 1 || issues[0].Severity != SeverityError || !strings.Contains(issues[0].Message, "ghost") {
		t.Errorf("issues = %v, want one error naming the unknown parent", issues)
	}
}

func TestCheckWarnings(t *testing.T) {
	tpl := sampleTemplate(t)
	g := tpl.Tabs[0]
	g.AddNode(card.ParamNode{Key: "legs", TypeID: card.TypeString, Order: 3, Condition: `{"xor":[1,2]}`})

	issues := Check(tpl)
	var warnings int
	for _, i := range issues {
		if i.Severity != SeverityWarning {
			t.Errorf("unexpected error issue: %s", i)
		}
		warnings++
	}
	if warnings != 2 {
		t.Errorf("got %d warnings, want 2 (duplicate key, bad condition): %v", warnings, issues)
	}
	if err := Validate(tpl); err != nil {
		t.Errorf("warnings must not fail Validate: %v", err)
	}
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"card.json", "card.yml"} {
		path := filepath.Join(dir, name)
		if err := WriteFile(path, sampleTemplate(t)); err != nil {
			t.Fatal(err)
		}
		tpl, err := ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if tpl.Name != "Field survey" {
			t.Errorf("%s: name = %q", name, tpl.Name)
		}
	}
	if FormatFor("x.YAML") != YAML || FormatFor("x.txt") != JSON {
		t.Error("FormatFor")
	}
}
