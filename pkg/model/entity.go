// Package model defines the knowledge-graph data model: entities (scholars,
// texts, concepts, ...) and the typed relations between them. Values are
// immutable after load; every other package holds references into the slices
// returned by the data source.
package model

import (
	"fmt"
	"strings"
)

// Category classifies an entity.
type Category string

const (
	CategoryScholar  Category = "scholar"
	CategoryText     Category = "text"
	CategoryConcept  Category = "concept"
	CategoryPractice Category = "practice"
	CategoryPlace    Category = "place"
	CategoryEvent    Category = "event"
)

// IsValid reports whether c is a known category.
func (c Category) IsValid() bool {
	switch c {
	case CategoryScholar, CategoryText, CategoryConcept,
		CategoryPractice, CategoryPlace, CategoryEvent:
		return true
	}
	return false
}

// Entity is a node in the knowledge graph.
type Entity struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	Description string   `json:"description,omitempty"` // markdown
	Era         string   `json:"era,omitempty"`         // e.g. "699–767 CE"
	Born        string   `json:"born,omitempty"`
	Died        string   `json:"died,omitempty"`
	Quotes      []string `json:"quotes,omitempty"`
	Facts       []string `json:"facts,omitempty"`
}

// Validate checks the minimal shape required by the rest of the program.
func (e *Entity) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return fmt.Errorf("entity has empty id")
	}
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("entity %s has empty name", e.ID)
	}
	if !e.Category.IsValid() {
		return fmt.Errorf("entity %s has unknown category %q", e.ID, e.Category)
	}
	return nil
}

// RelationType labels an edge. The vocabulary is fixed; unknown labels are
// tolerated on load but render without special styling.
type RelationType string

const (
	RelationTaught       RelationType = "taught"
	RelationStudentOf    RelationType = "student_of"
	RelationWrote        RelationType = "wrote"
	RelationInfluenced   RelationType = "influenced"
	RelationRefutes      RelationType = "refutes"
	RelationCommentaryOn RelationType = "commentary_on"
	RelationPracticeOf   RelationType = "practice_of"
	RelationConceptIn    RelationType = "concept_in"
	RelationLivedIn      RelationType = "lived_in"
)

// Relation is a directed, typed edge between two entities. Multiple
// relations between the same pair are permitted and distinct.
type Relation struct {
	Source string       `json:"source"`
	Target string       `json:"target"`
	Type   RelationType `json:"type"`
}

// Validate checks that both endpoints are named. Whether the endpoints
// exist is the connection index's concern, not the relation's.
func (r *Relation) Validate() error {
	if strings.TrimSpace(r.Source) == "" || strings.TrimSpace(r.Target) == "" {
		return fmt.Errorf("relation %s-[%s]->%s has empty endpoint", r.Source, r.Type, r.Target)
	}
	return nil
}

// Dataset bundles everything the loader returns.
type Dataset struct {
	Entities  []Entity
	Relations []Relation
}

// EntityMap builds an ID lookup over the dataset's entities.
func (d *Dataset) EntityMap() map[string]*Entity {
	m := make(map[string]*Entity, len(d.Entities))
	for i := range d.Entities {
		m[d.Entities[i].ID] = &d.Entities[i]
	}
	return m
}
