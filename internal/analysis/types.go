package analysis

import (
	"encoding/json"
	"errors"

	"codearch/internal/exhibit"
)

const DefaultServerURL = "http://localhost:5000"

const fallbackMessage = "Analysis failed"

// Target is what gets excavated: a local path or a remote URL.
type Target struct {
	Path    string
	IsLocal bool
}

// ValueKey holds an artifact that the service sent as something other than a
// JSON object.
const ValueKey = "value"

// Item is one artifact as the service reports it. Its shape depends on the
// exhibit and is not interpreted here.
type Item map[string]any

// UnmarshalJSON accepts any JSON value. Objects become the item's fields;
// scalars and arrays are kept whole under ValueKey.
func (it *Item) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case map[string]any:
		*it = Item(t)
	case nil:
		*it = Item{}
	default:
		*it = Item{ValueKey: t}
	}
	return nil
}

// Value returns the wrapped artifact of an item decoded from a non-object.
func (it Item) Value() (any, bool) {
	if len(it) != 1 {
		return nil, false
	}
	v, ok := it[ValueKey]
	return v, ok
}

type Metadata struct {
	RepoPath       string `json:"repo_path"`
	TotalArtifacts int    `json:"total_artifacts"`
}

type Result struct {
	Artifacts map[exhibit.Key][]Item `json:"artifacts"`
	Stories   map[string]string      `json:"stories"`
	Metadata  *Metadata              `json:"metadata,omitempty"`
}

// Items returns the artifacts routed to k.
func (r *Result) Items(k exhibit.Key) []Item {
	if r == nil || r.Artifacts == nil {
		return nil
	}
	return r.Artifacts[k]
}

// Story returns the narrative for k, if the service wrote one.
func (r *Result) Story(k exhibit.Key) string {
	if r == nil || r.Stories == nil {
		return ""
	}
	p, ok := exhibit.GetProfile(k)
	if !ok || p.StoryKey == "" {
		return ""
	}
	return r.Stories[p.StoryKey]
}

type HealthStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type errorBody struct {
	Error string `json:"error"`
}

type messageBody struct {
	Message string `json:"message"`
}

var ErrAnalysisFailed = errors.New("analysis failed")

// FailedError covers both service-reported failures and transport failures.
// StatusCode is zero when no response was received.
type FailedError struct {
	Message    string
	StatusCode int
}

func (e *FailedError) Error() string {
	return e.Message
}

func (e *FailedError) Is(target error) bool {
	return target == ErrAnalysisFailed
}
