package graph

import (
	"errors"
	"strings"
	"testing"
)

func TestMarshalShape(t *testing.T) {
	b := newTestBuilder()
	b.AddHasFeature("b1", "f1")
	data, err := Marshal(b.Graph())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	s := string(data)
	for _, want := range []string{`"nodes"`, `"data"`, `"nodeType": "bot"`, `"bot_can_send": false`, `"id": "b1_f1_hasFeature"`} {
		if !strings.Contains(s, want) {
			t.Errorf("encoded graph missing %s:\n%s", want, s)
		}
	}
}

func TestMarshalEmptyGraph(t *testing.T) {
	data, err := Marshal(&Graph{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"nodes": []`) || !strings.Contains(string(data), `"edges": []`) {
		t.Errorf("empty graph should encode empty arrays, got %s", data)
	}
}

func TestMarshalIsDeterministic(t *testing.T) {
	build := func() []byte {
		b := newTestBuilder()
		b.AddNode(NodeData{ID: "b2", NodeType: NodeBot, Label: "B2"})
		b.AddHasFeature("b1", "f1")
		b.AttachScreenshots("f1", "b2", "z.png")
		b.AttachScreenshots("f1", "b1", "a.png")
		data, err := Marshal(b.Graph())
		if err != nil {
			t.Fatal(err)
		}
		return data
	}
	if string(build()) != string(build()) {
		t.Error("repeated builds encode differently")
	}
}

func TestUnmarshalValidates(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{`},
		{"unknown type", `{"nodes":[{"data":{"id":"a","nodeType":"robot","label":"A"}}],"edges":[]}`},
		{"duplicate id", `{"nodes":[{"data":{"id":"a","nodeType":"bot","label":"A"}},{"data":{"id":"a","nodeType":"bot","label":"A"}}],"edges":[]}`},
		{"dangling edge", `{"nodes":[{"data":{"id":"a","nodeType":"bot","label":"A"}}],"edges":[{"data":{"id":"e","source":"a","target":"b","relation":"partOf","label":"partOf"}}]}`},
		{"two hasFeature edges", `{"nodes":[{"data":{"id":"a","nodeType":"bot","label":"A"}},{"data":{"id":"f","nodeType":"feature","label":"F"}}],
			"edges":[{"data":{"id":"1","source":"a","target":"f","relation":"hasFeature","label":"x"}},{"data":{"id":"2","source":"f","target":"a","relation":"hasFeature","label":"x"}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.doc))
			if !errors.Is(err, ErrInvalidGraph) {
				t.Errorf("expected ErrInvalidGraph, got %v", err)
			}
		})
	}
}

func TestCapabilitiesEitherOrientation(t *testing.T) {
	doc := `{"nodes":[
		{"data":{"id":"a","nodeType":"bot","label":"A"}},
		{"data":{"id":"b","nodeType":"bot","label":"B"}},
		{"data":{"id":"f","nodeType":"feature","label":"F"}},
		{"data":{"id":"d","nodeType":"domain","label":"D"}},
		{"data":{"id":"e","nodeType":"domain","label":"E"}}],
	"edges":[
		{"data":{"id":"1","source":"a","target":"f","relation":"hasFeature","label":"hasFeature"}},
		{"data":{"id":"2","source":"f","target":"b","relation":"hasFeature","label":"hasFeature"}},
		{"data":{"id":"3","source":"a","target":"d","relation":"partOf","label":"partOf"}},
		{"data":{"id":"4","source":"a","target":"e","relation":"partOf","label":"partOf"}}]}`
	g, err := Unmarshal([]byte(doc))
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	caps := g.Capabilities()
	if len(caps) != 2 || caps[1].Bot != "b" || caps[1].Feature != "f" {
		t.Errorf("capabilities = %+v", caps)
	}
	if d := g.BotDomains()["a"]; d != "e" {
		t.Errorf("bot domain = %q, want last partOf edge (e)", d)
	}
	st := g.Stats()
	if st.ByType[NodeDomain] != 2 || st.ByRelation[RelHasFeature] != 2 {
		t.Errorf("stats = %+v", st)
	}
}
