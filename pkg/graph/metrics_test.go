package graph

import (
	"testing"

	"github.com/vanderheijden86/silsila/pkg/model"
)

func TestPageRankEmpty(t *testing.T) {
	scores := PageRank(nil, nil)
	if len(scores) != 0 {
		t.Errorf("expected empty scores, got %v", scores)
	}
}

func TestPageRankHubScoresHigher(t *testing.T) {
	entities := ents("hub", "a", "b", "c", "loner")
	relations := []model.Relation{
		rel("a", "hub"),
		rel("b", "hub"),
		rel("c", "hub"),
	}
	scores := PageRank(entities, relations)

	if len(scores) != len(entities) {
		t.Fatalf("expected a score per entity, got %d", len(scores))
	}
	if scores["hub"] <= scores["loner"] {
		t.Errorf("hub (%.4f) should outrank loner (%.4f)", scores["hub"], scores["loner"])
	}
}

func TestPageRankIgnoresDanglingAndSelfLoops(t *testing.T) {
	entities := ents("a", "b")
	relations := []model.Relation{
		rel("a", "b"),
		rel("a", "a"),
		rel("a", "ghost"),
	}
	// Must not panic and must still score both entities.
	scores := PageRank(entities, relations)
	if len(scores) != 2 {
		t.Fatalf("expected 2 scores, got %d", len(scores))
	}
}
