package search

import (
	"github.com/poiesic/pagefind/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string, pages int)
	ModeSelected(mode core.SearchType, reason string)
	AfterEmbedding(vectors int, dimension int)
	AfterRelevanceFilter(similarities map[int]float64, kept []int)
	AfterExactScan(matchCounts map[int]int)
	Finish(results *core.ResultSet)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ int)                           {}
func (n *noopMonitor) ModeSelected(_ core.SearchType, _ string)        {}
func (n *noopMonitor) AfterEmbedding(_ int, _ int)                     {}
func (n *noopMonitor) AfterRelevanceFilter(_ map[int]float64, _ []int) {}
func (n *noopMonitor) AfterExactScan(_ map[int]int)                    {}
func (n *noopMonitor) Finish(_ *core.ResultSet)                        {}
