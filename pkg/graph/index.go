// Package graph holds the derived structures computed from the entity and
// relation lists: the symmetric connection index used for highlight lookups
// during hover and click, and the centrality metrics used for node sizing.
package graph

import (
	"github.com/vanderheijden86/silsila/pkg/debug"
	"github.com/vanderheijden86/silsila/pkg/model"
)

// emptySet is returned for unknown or isolated entities so Lookup never
// returns nil. Callers treat lookup results as read-only.
var emptySet = map[string]struct{}{}

// Index maps an entity ID to the set of directly connected entity IDs.
// The mapping is symmetric: every relation contributes to both endpoints'
// sets. It is built once at startup and only ever mutated by Rebuild.
type Index struct {
	adj map[string]map[string]struct{}
}

// BuildIndex constructs the connection index in a single pass over the
// relations. Relations referencing unknown entity IDs are skipped silently;
// a dirty edge list must not fail the whole build.
func BuildIndex(entities []model.Entity, relations []model.Relation) *Index {
	ix := &Index{}
	ix.Rebuild(entities, relations)
	return ix
}

// Rebuild replaces the index contents wholesale. Prior state is dropped
// before repopulating, so rebuilding is idempotent and never leaves the
// index partially updated.
func (ix *Index) Rebuild(entities []model.Entity, relations []model.Relation) {
	known := make(map[string]struct{}, len(entities))
	for i := range entities {
		known[entities[i].ID] = struct{}{}
	}

	adj := make(map[string]map[string]struct{}, len(entities))
	skipped := 0
	for _, rel := range relations {
		if _, ok := known[rel.Source]; !ok {
			skipped++
			continue
		}
		if _, ok := known[rel.Target]; !ok {
			skipped++
			continue
		}
		insert(adj, rel.Source, rel.Target)
		insert(adj, rel.Target, rel.Source)
	}
	debug.LogIf(skipped > 0, "connection index: skipped %d relations with unknown endpoints", skipped)

	// Swap in the fully built map last.
	ix.adj = adj
}

func insert(adj map[string]map[string]struct{}, from, to string) {
	set, ok := adj[from]
	if !ok {
		set = make(map[string]struct{}, 4)
		adj[from] = set
	}
	set[to] = struct{}{}
}

// Lookup returns the set of entity IDs directly connected to id. The result
// is never nil; unknown and isolated entities yield an empty set. The
// returned map is shared and must not be mutated by callers.
func (ix *Index) Lookup(id string) map[string]struct{} {
	if ix == nil || ix.adj == nil {
		return emptySet
	}
	if set, ok := ix.adj[id]; ok {
		return set
	}
	return emptySet
}

// Connected reports whether a and b are directly connected.
func (ix *Index) Connected(a, b string) bool {
	_, ok := ix.Lookup(a)[b]
	return ok
}

// Degree returns the number of distinct neighbors of id.
func (ix *Index) Degree(id string) int {
	return len(ix.Lookup(id))
}

// Len returns the number of entities with at least one connection.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.adj)
}
