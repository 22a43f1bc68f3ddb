package cmd

import (
	"strings"
	"testing"
	"time"

	"codearch/internal/analysis"
	"codearch/internal/exhibit"
	"codearch/internal/report"
	"codearch/internal/store"
)

func sampleResult() *analysis.Result {
	return &analysis.Result{
		Artifacts: map[exhibit.Key][]analysis.Item{
			exhibit.Todos: {{"file": "/a.py", "line": float64(3), "text": "# TODO: later"}},
		},
		Stories: map[string]string{"todos_story": "One promise."},
	}
}

func TestRenderSelectsExhibit(t *testing.T) {
	o := renderOptions{exhibit: "todos", level: report.LevelFull}
	text, err := o.render(sampleResult(), "site")
	if err != nil {
		t.Fatalf("render() error = %v", err)
	}
	if !strings.Contains(text, "One promise.") || strings.Contains(text, "# Excavation of") {
		t.Fatalf("render(todos) =\n%s", text)
	}
}

func TestRenderRejectsBadOptions(t *testing.T) {
	if _, err := (renderOptions{level: "verbose"}).render(sampleResult(), "x"); err == nil {
		t.Fatalf("render() with unknown level returned nil error")
	}
	if _, err := (renderOptions{level: report.LevelFull, exhibit: "gift_shop"}).render(sampleResult(), "x"); err == nil {
		t.Fatalf("render() with unknown exhibit returned nil error")
	}
}

func TestRenderBudgetAndClip(t *testing.T) {
	o := renderOptions{level: report.LevelFull, budget: 1}
	text, err := o.render(sampleResult(), "site")
	if err != nil {
		t.Fatalf("render() error = %v", err)
	}
	if !strings.HasPrefix(text, "Excavation of site:") {
		t.Fatalf("budget 1 should pick the brief report, got %q", text)
	}

	if got := clip("abcdef", 3); got != "abc\n..." {
		t.Fatalf("clip() = %q", got)
	}
	if got := clip("abc", 0); got != "abc" {
		t.Fatalf("clip(no limit) = %q", got)
	}
}

func TestFindSavedMatchesKind(t *testing.T) {
	now := time.Now()
	list := []store.RepositoryDescriptor{
		store.NewDescriptor("/src/site", true, now),
		store.NewDescriptor("/src/site", false, now),
	}
	d, ok := findSaved(list, "/src/site", false)
	if !ok || d.IsLocal {
		t.Fatalf("findSaved(remote) = %+v, %v", d, ok)
	}
	if _, ok := findSaved(list, "/src/site/", true); ok {
		t.Fatalf("findSaved() matched a different path")
	}
}
