package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dd0wney/cluso-botgraph/pkg/graph"
)

const (
	botsCSV = "\ufeffBot,Description,Domain\n" +
		"Alpha Bot,Helps with billing,Finance\n" +
		"Beta-Bot,Books trips,Travel\n" +
		"Gamma,No domain,\n" +
		",missing name,Finance\n"

	featuresCSV = "class,feature,feature_group,description,relation,relation_target\n" +
		"Quick Reply,Quick reply,Input,Tap to answer,refines,Button\n" +
		"Button,Button,Input,Clickable,,\n" +
		"Carousel,Carousel,Output,Cards,extends,Unknown Feature\n" +
		"Image,Image,Output,Pictures,,\n"

	permissionsCSV = "class,alpha_bot_user,alpha_bot_bot,beta_bot_user,beta_bot_bot,gamma_user,gamma_bot\n" +
		"Quick Reply,x,x,,X,,\n" +
		"Button,,x,x,,,\n" +
		"Carousel,,,,,,\n" +
		"Nonexistent,x,x,x,x,x,x\n"

	screenshotsCSV = "class,bot,screenshot\n" +
		"Quick Reply,Alpha Bot,img/a1.png; img/a2.png\n" +
		"Quick Reply,Alpha Bot,img/a3.png\n" +
		"Button,Beta-Bot,img/b1.png,\n" +
		"Button,Nobody,img/x.png\n" +
		"Image,Gamma,\n"
)

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func fixtureSources(t *testing.T) Sources {
	t.Helper()
	dir := t.TempDir()
	return Sources{
		Bots:        writeFixture(t, dir, "bots.csv", botsCSV),
		Features:    writeFixture(t, dir, "features.csv", featuresCSV),
		Permissions: writeFixture(t, dir, "permissions.csv", permissionsCSV),
		Screenshots: writeFixture(t, dir, "screenshots.csv", screenshotsCSV),
	}
}

func edgeByID(g *graph.Graph, id string) (graph.EdgeData, bool) {
	for _, e := range g.Edges {
		if e.Data.ID == id {
			return e.Data, true
		}
	}
	return graph.EdgeData{}, false
}

func TestBuildNodes(t *testing.T) {
	g, report, err := Build(context.Background(), fixtureSources(t), nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if g.Nodes[0].Data.ID != graph.UserNodeID {
		t.Errorf("first node = %q, want user", g.Nodes[0].Data.ID)
	}

	wantBots := []string{"alpha_bot", "beta_bot", "gamma"}
	gotBots := g.IDs(graph.NodeBot)
	if len(gotBots) != len(wantBots) {
		t.Fatalf("bots = %v, want %v", gotBots, wantBots)
	}
	for i := range wantBots {
		if gotBots[i] != wantBots[i] {
			t.Errorf("bots[%d] = %q, want %q", i, gotBots[i], wantBots[i])
		}
	}

	if d := g.BotDomains(); d["alpha_bot"] != "finance" || d["beta_bot"] != "travel" || d["gamma"] != "" {
		t.Errorf("bot domains = %v", d)
	}

	f, ok := g.Find("quick_reply")
	if !ok {
		t.Fatal("quick_reply feature missing")
	}
	if f.Label != "Quick reply" || f.Class != "Quick Reply" || f.GroupID != "input" || f.Description != "Tap to answer" {
		t.Errorf("feature data = %+v", f)
	}

	if report.Skipped[SourceBots] != 1 {
		t.Errorf("skipped bots = %d, want 1", report.Skipped[SourceBots])
	}
	if report.Rows[SourceFeatures] != 4 {
		t.Errorf("feature rows = %d, want 4", report.Rows[SourceFeatures])
	}
}

func TestBuildRelations(t *testing.T) {
	g, _, err := Build(context.Background(), fixtureSources(t), nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, ok := edgeByID(g, "quick_reply_button_refines"); !ok {
		t.Error("forward-referencing semantic relation missing")
	}
	if rel := g.EdgesWith("extends"); len(rel) != 0 {
		t.Errorf("relation to unknown feature should be skipped, got %v", rel)
	}
	if _, ok := edgeByID(g, "button_input_partOf"); !ok {
		t.Error("feature to group partOf edge missing")
	}
}

func TestBuildScreenshots(t *testing.T) {
	g, report, err := Build(context.Background(), fixtureSources(t), nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	qr, _ := g.Find("quick_reply")
	got := qr.Screenshots["alpha_bot"]
	want := []string{"img/a1.png", "img/a2.png", "img/a3.png"}
	if len(got) != len(want) {
		t.Fatalf("screenshots = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("screenshots[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	btn, _ := g.Find("button")
	if paths := btn.Screenshots["beta_bot"]; len(paths) != 1 || paths[0] != "img/b1.png" {
		t.Errorf("button screenshots = %v", btn.Screenshots)
	}
	if _, ok := btn.Screenshots["nobody"]; ok {
		t.Error("unknown bot should not receive screenshots")
	}
	if report.Skipped[SourceScreenshots] != 2 {
		t.Errorf("skipped screenshots = %d, want 2", report.Skipped[SourceScreenshots])
	}
}

func TestBuildCapabilitiesWithoutPresenceSource(t *testing.T) {
	g, _, err := Build(context.Background(), fixtureSources(t), nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	tests := []struct {
		id    string
		label string
	}{
		{"alpha_bot_quick_reply_hasFeature", graph.LabelExchange},
		{"beta_bot_quick_reply_hasFeature", graph.LabelBotOutput},
		{"alpha_bot_button_hasFeature", graph.LabelBotOutput},
		{"beta_bot_button_hasFeature", graph.LabelUserInput},
	}
	for _, tt := range tests {
		e, ok := edgeByID(g, tt.id)
		if !ok {
			t.Errorf("edge %s missing", tt.id)
			continue
		}
		if e.Label != tt.label {
			t.Errorf("edge %s label = %q, want %q", tt.id, e.Label, tt.label)
		}
	}
	if n := len(g.EdgesWith(graph.RelHasFeature)); n != 4 {
		t.Errorf("hasFeature edges = %d, want 4", n)
	}
}

func TestBuildPresenceIsTheExistenceCriterion(t *testing.T) {
	src := fixtureSources(t)
	dir := filepath.Dir(src.Bots)
	src.Presence = writeFixture(t, dir, "presence.csv",
		"class,alpha_bot,beta_bot,gamma\n"+
			"Quick Reply,x,,\n"+
			"Image,,,x\n")

	g, report, err := Build(context.Background(), src, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	caps := g.Capabilities()
	if len(caps) != 2 {
		t.Fatalf("capabilities = %+v, want 2", caps)
	}

	upgraded, _ := edgeByID(g, "alpha_bot_quick_reply_hasFeature")
	if upgraded.Label != graph.LabelExchange || !upgraded.BotSends() || !upgraded.UserSends() {
		t.Errorf("upgraded edge = %+v", upgraded)
	}

	// No permission marks for gamma/image: the base edge stays as it was.
	base, ok := edgeByID(g, "gamma_image_hasFeature")
	if !ok {
		t.Fatal("base edge missing")
	}
	if base.Label != graph.RelHasFeature || base.BotSends() || base.UserSends() {
		t.Errorf("base edge = %+v", base)
	}

	if report.Skipped[SourcePermissions] == 0 {
		t.Error("permission marks without presence should be counted as skipped")
	}
}

func TestBuildMissingSourceIsFatal(t *testing.T) {
	src := fixtureSources(t)
	src.Screenshots = filepath.Join(t.TempDir(), "absent.csv")

	g, _, err := Build(context.Background(), src, nil)
	if g != nil {
		t.Error("no graph should be returned on failure")
	}
	if !errors.Is(err, ErrSourceMissing) {
		t.Fatalf("expected ErrSourceMissing, got %v", err)
	}
	var se *SourceError
	if !errors.As(err, &se) || se.Source != SourceScreenshots {
		t.Errorf("expected SourceError for screenshots, got %v", err)
	}
}

func TestBuildMissingColumn(t *testing.T) {
	src := fixtureSources(t)
	src.Bots = writeFixture(t, filepath.Dir(src.Bots), "nobot.csv", "name,domain\nA,B\n")

	_, _, err := Build(context.Background(), src, nil)
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
}

func TestBuildCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := Build(ctx, fixtureSources(t), nil); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	src := fixtureSources(t)
	a, _, err := Build(context.Background(), src, nil)
	if err != nil {
		t.Fatal(err)
	}
	b, _, err := Build(context.Background(), src, nil)
	if err != nil {
		t.Fatal(err)
	}
	ja, _ := graph.Marshal(a)
	jb, _ := graph.Marshal(b)
	if string(ja) != string(jb) {
		t.Error("rebuilding unchanged input produced different output")
	}
}

func TestSplitPaths(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{" ; , ", 0},
		{"a.png", 1},
		{"a.png;b.png", 2},
		{"a.png, b.png ;c.png", 3},
	}
	for _, tt := range tests {
		if got := splitPaths(tt.in); len(got) != tt.want {
			t.Errorf("splitPaths(%q) = %v, want %d paths", tt.in, got, tt.want)
		}
	}
}

func TestMarked(t *testing.T) {
	for _, v := range []string{"x", " X ", "yes", "TRUE", "1", "y"} {
		if !marked(v) {
			t.Errorf("marked(%q) = false", v)
		}
	}
	for _, v := range []string{"", "no", "0", "-", "false"} {
		if marked(v) {
			t.Errorf("marked(%q) = true", v)
		}
	}
}
