package runtime

import (
	"cmp"
	"slices"

	"github.com/aretw0/parley/pkg/domain"
)

// Candidate is one scored (edge, keyword) pair leaving the current node.
type Candidate struct {
	Edge    domain.EdgeID `json:"edge"`
	Target  domain.NodeID `json:"target"`
	Keyword string        `json:"keyword"`
	Cost    int           `json:"cost"`
}

// Rank scores userText against every keyword of every outgoing edge of the
// current node and returns the candidates sorted by ascending cost. The sort
// is stable, so equal costs keep edge order, then keyword order.
func (e *Engine) Rank(userText string) []Candidate {
	e.mustBeInitialized()
	return e.rank(e.current, userText)
}

func (e *Engine) rank(from domain.NodeID, userText string) []Candidate {
	var candidates []Candidate
	for _, edge := range e.graph.OutgoingEdges(from) {
		target := e.graph.TargetOf(edge)
		for _, keyword := range e.graph.KeywordsOf(edge) {
			candidates = append(candidates, Candidate{
				Edge:    edge,
				Target:  target,
				Keyword: keyword,
				Cost:    e.scorer(keyword, userText),
			})
		}
	}

	slices.SortStableFunc(candidates, func(a, b Candidate) int {
		return cmp.Compare(a.Cost, b.Cost)
	})
	return candidates
}

// selectNext picks the node to move to. best is nil when root was chosen
// because there was nothing to score.
func (e *Engine) selectNext(userText string) (next domain.NodeID, best *Candidate, scored int) {
	candidates := e.rank(e.current, userText)
	if len(candidates) == 0 {
		return e.root, nil, 0
	}
	return candidates[0].Target, &candidates[0], len(candidates)
}
