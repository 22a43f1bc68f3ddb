package report

import (
	"fmt"
	"math"
	"strings"

	"codearch/internal/analysis"
	"codearch/internal/exhibit"
)

const (
	LevelFull    = "full"
	LevelCompact = "compact"
	LevelBrief   = "brief"
)

var Levels = []string{LevelFull, LevelCompact, LevelBrief}

const compactItems = 5

type Builder struct {
	Target string
}

func NewBuilder(target string) *Builder {
	return &Builder{Target: target}
}

// Build renders the result at every level.
func (b *Builder) Build(r *analysis.Result) map[string]string {
	return map[string]string{
		LevelFull:    b.buildFull(r),
		LevelCompact: b.buildCompact(r),
		LevelBrief:   b.buildBrief(r),
	}
}

// BestFit returns the most detailed level whose estimated token count fits
// budget. A budget of zero or less always picks the full report.
func (b *Builder) BestFit(reports map[string]string, budget int) (string, string) {
	if budget <= 0 {
		return LevelFull, reports[LevelFull]
	}
	for _, lvl := range Levels {
		text := reports[lvl]
		if EstimateTokens(text) <= budget {
			return lvl, text
		}
	}
	return LevelBrief, reports[LevelBrief]
}

// Exhibit renders a single exhibit with its story and every item.
func Exhibit(r *analysis.Result, k exhibit.Key) string {
	var sb strings.Builder
	writeExhibit(&sb, r, k, -1, true)
	return sb.String()
}

func (b *Builder) buildFull(r *analysis.Result) string {
	var sb strings.Builder
	b.writeHeader(&sb)
	writeSummary(&sb, r)
	for _, k := range exhibit.Order[1:] {
		writeExhibit(&sb, r, k, -1, true)
	}
	return sb.String()
}

func (b *Builder) buildCompact(r *analysis.Result) string {
	var sb strings.Builder
	b.writeHeader(&sb)
	writeSummary(&sb, r)
	for _, k := range exhibit.Order[1:] {
		if len(r.Items(k)) == 0 {
			continue
		}
		writeExhibit(&sb, r, k, compactItems, false)
	}
	return sb.String()
}

func (b *Builder) buildBrief(r *analysis.Result) string {
	var parts []string
	for _, k := range exhibit.Order[1:] {
		p := exhibit.Profiles[k]
		parts = append(parts, fmt.Sprintf("%d %s", len(r.Items(k)), strings.ToLower(p.StatLabel)))
	}
	target := b.Target
	if target == "" {
		target = "repository"
	}
	return fmt.Sprintf("Excavation of %s: %s.", target, strings.Join(parts, ", "))
}

func (b *Builder) writeHeader(sb *strings.Builder) {
	if b.Target == "" {
		return
	}
	sb.WriteString(fmt.Sprintf("# Excavation of %s\n\n", b.Target))
}

func writeSummary(sb *strings.Builder, r *analysis.Result) {
	p := exhibit.Profiles[exhibit.Summary]
	sb.WriteString(fmt.Sprintf("## %s %s\n", p.Icon, p.Title))
	if story := r.Story(exhibit.Summary); story != "" {
		sb.WriteString(story)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	for _, s := range Stats(r) {
		sb.WriteString(fmt.Sprintf("- %-16s %d\n", s.Label, s.Count))
	}
	sb.WriteString("\n")
}

func writeExhibit(sb *strings.Builder, r *analysis.Result, k exhibit.Key, limit int, withStory bool) {
	if k == exhibit.Summary {
		writeSummary(sb, r)
		return
	}
	p := exhibit.Profiles[k]
	items := r.Items(k)

	sb.WriteString(fmt.Sprintf("## %s %s\n", p.Icon, p.Title))
	if story := r.Story(k); withStory && story != "" {
		sb.WriteString(story)
		sb.WriteString("\n\n")
	}
	if len(items) == 0 {
		sb.WriteString(p.Empty)
		sb.WriteString("\n\n")
		return
	}
	shown := items
	if limit >= 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	for _, it := range shown {
		sb.WriteString("- ")
		sb.WriteString(ItemLine(k, it))
		sb.WriteString("\n")
	}
	if len(shown) < len(items) {
		sb.WriteString(fmt.Sprintf("- … and %d more\n", len(items)-len(shown)))
	}
	sb.WriteString("\n")
}

type Stat struct {
	Key   exhibit.Key
	Label string
	Count int
}

// Stats counts the items of every non-summary exhibit.
func Stats(r *analysis.Result) []Stat {
	var stats []Stat
	for _, k := range exhibit.Order[1:] {
		stats = append(stats, Stat{Key: k, Label: exhibit.Profiles[k].StatLabel, Count: len(r.Items(k))})
	}
	return stats
}

// ItemLine formats one artifact the way its exhibit presents it.
func ItemLine(k exhibit.Key, it analysis.Item) string {
	if v, ok := it.Value(); ok {
		return format(v)
	}
	switch k {
	case exhibit.DeadCode:
		return fmt.Sprintf("⚰️ %s  📁 %s:%s  [%s]", field(it, "name"), field(it, "file"), field(it, "line"), field(it, "type"))
	case exhibit.CommentedCode:
		return fmt.Sprintf("📁 %s:%s  %s", field(it, "file"), field(it, "line"), field(it, "code"))
	case exhibit.Todos:
		return fmt.Sprintf("📁 %s:%s  %s", field(it, "file"), field(it, "line"), field(it, "text"))
	case exhibit.OldestCode:
		return fmt.Sprintf("🗿 %s  📅 First seen: %s (%s days ago)  %q",
			field(it, "file"), field(it, "first_commit_date"), field(it, "age_days"), field(it, "first_commit_message"))
	case exhibit.HallOfShame:
		return fmt.Sprintf("👹 %s  📁 %s:%s  %s lines of terror", field(it, "name"), field(it, "file"), field(it, "line"), field(it, "length"))
	case exhibit.Timeline:
		return fmt.Sprintf("%s  %s  👤 %s · 📝 %s files changed",
			field(it, "date"), field(it, "message"), field(it, "author"), field(it, "files_changed"))
	}
	return genericLine(k, it)
}

func genericLine(k exhibit.Key, it analysis.Item) string {
	var parts []string
	for _, f := range exhibit.Profiles[k].Fields {
		if _, ok := it[f]; ok {
			parts = append(parts, fmt.Sprintf("%s: %s", f, field(it, f)))
		}
	}
	if len(parts) == 0 {
		return fmt.Sprint(map[string]any(it))
	}
	return strings.Join(parts, "  ")
}

func field(it analysis.Item, name string) string {
	v, ok := it[name]
	if !ok || v == nil {
		return "?"
	}
	return format(v)
}

func format(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%.2f", t)
	case bool:
		return fmt.Sprintf("%t", t)
	}
	return fmt.Sprint(v)
}

// EstimateTokens uses a character-based estimate of about 3.5 characters per
// token, which holds up for mixed prose and code paths.
func EstimateTokens(text string) int {
	return int(float64(len(text)) / 3.5)
}
