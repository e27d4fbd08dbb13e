// Package datasource loads the knowledge graph from its possible homes:
// the embedded default dataset, an external JSON file, or a SQLite
// database. All loaders return the same model.Dataset shape and apply the
// same validation.
package datasource

import (
	"context"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/silsila/pkg/debug"
	"github.com/vanderheijden86/silsila/pkg/model"
)

//go:embed assets/entities.json assets/relations.json
var assets embed.FS

// Load returns the dataset at path. An empty path selects the embedded
// dataset; ".json" and ".db"/".sqlite" extensions select their loaders.
func Load(ctx context.Context, path string) (*model.Dataset, error) {
	if path == "" {
		return LoadEmbedded(ctx)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return LoadJSON(path)
	case ".db", ".sqlite", ".sqlite3":
		return LoadSQLite(ctx, path)
	default:
		return nil, fmt.Errorf("unsupported dataset format %q (want .json or .db)", filepath.Ext(path))
	}
}

// LoadEmbedded decodes the built-in dataset. The two asset files are
// independent, so they decode in parallel.
func LoadEmbedded(ctx context.Context) (*model.Dataset, error) {
	var (
		entities  []model.Entity
		relations []model.Relation
	)

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		return decodeAsset("assets/entities.json", &entities)
	})
	g.Go(func() error {
		return decodeAsset("assets/relations.json", &relations)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return finish(&model.Dataset{Entities: entities, Relations: relations})
}

func decodeAsset(name string, out any) error {
	data, err := assets.ReadFile(name)
	if err != nil {
		return fmt.Errorf("reading %s: %w", name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding %s: %w", name, err)
	}
	return nil
}

// jsonDataset is the external file shape: one object with both lists.
type jsonDataset struct {
	Entities  []model.Entity   `json:"entities"`
	Relations []model.Relation `json:"relations"`
}

// LoadJSON reads an external dataset file.
func LoadJSON(path string) (*model.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}
	var ds jsonDataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("decoding dataset %s: %w", path, err)
	}
	return finish(&model.Dataset{Entities: ds.Entities, Relations: ds.Relations})
}

// finish validates a freshly decoded dataset. Invalid entities fail the
// load outright; invalid relations are dropped with a debug note, since a
// half-broken edge list is still a usable graph.
func finish(ds *model.Dataset) (*model.Dataset, error) {
	if len(ds.Entities) == 0 {
		return nil, fmt.Errorf("dataset has no entities")
	}

	seen := make(map[string]struct{}, len(ds.Entities))
	for i := range ds.Entities {
		e := &ds.Entities[i]
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("invalid entity: %w", err)
		}
		if _, dup := seen[e.ID]; dup {
			return nil, fmt.Errorf("duplicate entity id %s", e.ID)
		}
		seen[e.ID] = struct{}{}
	}

	kept := ds.Relations[:0]
	dropped := 0
	for i := range ds.Relations {
		if err := ds.Relations[i].Validate(); err != nil {
			dropped++
			continue
		}
		kept = append(kept, ds.Relations[i])
	}
	ds.Relations = kept
	debug.LogIf(dropped > 0, "dropped %d malformed relations", dropped)

	return ds, nil
}
