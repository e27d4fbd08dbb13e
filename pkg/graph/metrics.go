package graph

import (
	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/vanderheijden86/silsila/pkg/model"
)

const (
	pageRankDamping   = 0.85
	pageRankTolerance = 1e-6
)

// PageRank scores every entity by its importance in the directed relation
// graph. The view uses the scores to size nodes. Relations with unknown
// endpoints and self-loops are ignored, mirroring the index build.
func PageRank(entities []model.Entity, relations []model.Relation) map[string]float64 {
	scores := make(map[string]float64, len(entities))
	if len(entities) == 0 {
		return scores
	}

	idx := make(map[string]int64, len(entities))
	g := simple.NewDirectedGraph()
	for i := range entities {
		id := int64(i)
		idx[entities[i].ID] = id
		g.AddNode(simple.Node(id))
	}

	for _, rel := range relations {
		from, okF := idx[rel.Source]
		to, okT := idx[rel.Target]
		if !okF || !okT || from == to {
			continue
		}
		g.SetEdge(simple.Edge{F: simple.Node(from), T: simple.Node(to)})
	}

	ranks := network.PageRank(g, pageRankDamping, pageRankTolerance)
	for i := range entities {
		scores[entities[i].ID] = ranks[int64(i)]
	}
	return scores
}
