package exhibit

type Profile struct {
	Key      Key
	Title    string
	Label    string
	Icon     string
	StoryKey string
	Empty    string
	// StatLabel captions the item count on the summary exhibit.
	StatLabel string
	// Fields lists item attributes shown for each artifact, in display order.
	Fields []string
}

var Profiles = map[Key]Profile{
	Summary: {
		Key:      Summary,
		Title:    "Excavation Summary",
		Label:    "Summary",
		Icon:     "🏛️",
		StoryKey: "excavation_summary",
	},
	DeadCode: {
		Key:       DeadCode,
		StatLabel: "Dead Functions",
		Title:     "The Graveyard: Dead Code",
		Label:     "Dead Code",
		Icon:      "💀",
		StoryKey:  "dead_code_story",
		Empty:     "No dead code found! This codebase is well-maintained.",
		Fields:    []string{"name", "file", "line", "type"},
	},
	CommentedCode: {
		Key:       CommentedCode,
		StatLabel: "Code Fossils",
		Title:     "Fossilized Code",
		Label:     "Fossils",
		Icon:      "🦴",
		StoryKey:  "commented_code_story",
		Empty:     "No commented code fossils found!",
		Fields:    []string{"file", "line", "code"},
	},
	Todos: {
		Key:       Todos,
		StatLabel: "Ancient TODOs",
		Title:     "The Scroll of Broken Promises",
		Label:     "TODOs",
		Icon:      "📜",
		StoryKey:  "todos_story",
		Empty:     "No TODOs found! All promises kept.",
		Fields:    []string{"file", "line", "text"},
	},
	OldestCode: {
		Key:       OldestCode,
		StatLabel: "Oldest Files",
		Title:     "Ancient Relics",
		Label:     "Ancient Code",
		Icon:      "🏺",
		StoryKey:  "oldest_code_story",
		Empty:     "No ancient code found.",
		Fields:    []string{"file", "first_commit_date", "age_days", "first_commit_message"},
	},
	HallOfShame: {
		Key:       HallOfShame,
		StatLabel: "Complex Beasts",
		Title:     "Hall of Shame: Monstrous Functions",
		Label:     "Hall of Shame",
		Icon:      "🐉",
		StoryKey:  "hall_of_shame_story",
		Empty:     "No monstrous functions found! Clean code champion.",
		Fields:    []string{"name", "file", "line", "length"},
	},
	ComplexityHeatmap: {
		Key:       ComplexityHeatmap,
		StatLabel: "Hotspots",
		Title:     "Complexity Heatmap",
		Label:     "Heatmap",
		Icon:      "🔥",
		StoryKey:  "complexity_heatmap_story",
		Empty:     "No complexity hotspots found.",
		Fields:    []string{"file", "complexity", "functions", "lines"},
	},
	Timeline: {
		Key:       Timeline,
		StatLabel: "Timeline Events",
		Title:     "Archaeological Timeline",
		Label:     "Timeline",
		Icon:      "📅",
		Empty:     "No timeline data available.",
		Fields:    []string{"date", "message", "author", "files_changed"},
	},
}

func GetProfile(k Key) (Profile, bool) {
	p, ok := Profiles[k]
	return p, ok
}

func ListProfiles() []Profile {
	var result []Profile
	for _, k := range Order {
		result = append(result, Profiles[k])
	}
	return result
}
