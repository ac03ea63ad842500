package search

import "github.com/studium-hq/studium/core"

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterSemanticSearch(segmentKeys []string)
	ResolvedSource(source *core.Source)
	DroppedHit(segmentKey string)
	VerbatimHit(segmentKey string)
	Finish(hits []*Hit)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                 {}
func (n *noopMonitor) AfterSemanticSearch(_ []string) {}
func (n *noopMonitor) ResolvedSource(_ *core.Source)  {}
func (n *noopMonitor) DroppedHit(_ string)            {}
func (n *noopMonitor) VerbatimHit(_ string)           {}
func (n *noopMonitor) Finish(_ []*Hit)                {}
