// Package testutil provides dataset generators shared by property tests.
package testutil

import (
	"pgregory.net/rapid"

	"github.com/vanderheijden86/silsila/pkg/model"
)

var categories = []model.Category{
	model.CategoryScholar,
	model.CategoryText,
	model.CategoryConcept,
	model.CategoryPractice,
	model.CategoryPlace,
	model.CategoryEvent,
}

var relationTypes = []model.RelationType{
	model.RelationTaught,
	model.RelationStudentOf,
	model.RelationWrote,
	model.RelationInfluenced,
	model.RelationRefutes,
	model.RelationCommentaryOn,
	model.RelationPracticeOf,
	model.RelationConceptIn,
	model.RelationLivedIn,
}

// IDs draws between 1 and max distinct entity identifiers.
func IDs(max int) *rapid.Generator[[]string] {
	return rapid.SliceOfNDistinct(rapid.StringMatching(`[a-z]{1,6}`), 1, max, rapid.ID[string])
}

// Category draws one of the known entity categories.
func Category() *rapid.Generator[model.Category] {
	return rapid.SampledFrom(categories)
}

// RelationType draws one of the known relation labels.
func RelationType() *rapid.Generator[model.RelationType] {
	return rapid.SampledFrom(relationTypes)
}

// EntitiesFor builds one minimal valid entity per id.
func EntitiesFor(t *rapid.T, ids []string) []model.Entity {
	entities := make([]model.Entity, len(ids))
	for i, id := range ids {
		entities[i] = model.Entity{
			ID:       id,
			Name:     id,
			Category: Category().Draw(t, "cat"),
		}
	}
	return entities
}

// RelationsAmong draws up to max relations whose endpoints come from ids
// plus any extra identifiers, typically unknown ones to exercise dangling
// edges.
func RelationsAmong(t *rapid.T, ids []string, max int, extra ...string) []model.Relation {
	pool := append(append([]string{}, ids...), extra...)
	endpoint := rapid.SampledFrom(pool)
	n := rapid.IntRange(0, max).Draw(t, "nRel")
	relations := make([]model.Relation, n)
	for i := range relations {
		relations[i] = model.Relation{
			Source: endpoint.Draw(t, "src"),
			Target: endpoint.Draw(t, "dst"),
			Type:   RelationType().Draw(t, "typ"),
		}
	}
	return relations
}
