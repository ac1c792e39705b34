// internal/models/research.go
package models

// ResearchTask is one research angle produced by the decomposer.
type ResearchTask struct {
	AgentRole       string   `json:"agentRole"`
	TaskDescription string   `json:"taskDescription"`
	SearchQueries   []string `json:"searchQueries"`
}

type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// AgentFinding is a research agent's narrative plus the URLs it consulted,
// deduplicated in first-seen order.
type AgentFinding struct {
	AgentRole string   `json:"agentRole"`
	Findings  string   `json:"findings"`
	Sources   []string `json:"sources"`
}

// SourceSet collects URLs once each, keeping insertion order.
type SourceSet struct {
	seen  map[string]struct{}
	items []string
}

func (s *SourceSet) Add(url string) {
	if url == "" {
		return
	}
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, ok := s.seen[url]; ok {
		return
	}
	s.seen[url] = struct{}{}
	s.items = append(s.items, url)
}

func (s *SourceSet) List() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

func (s *SourceSet) Len() int {
	return len(s.items)
}
