package datasource

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/silsila/pkg/model"
)

// LoadSQLite reads a dataset from a SQLite database with `entities` and
// `relations` tables. List-valued entity fields are stored as JSON text
// columns.
func LoadSQLite(ctx context.Context, path string) (*model.Dataset, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open dataset database: %w", err)
	}
	defer db.Close()

	entities, err := loadEntities(ctx, db)
	if err != nil {
		return nil, err
	}
	relations, err := loadRelations(ctx, db)
	if err != nil {
		return nil, err
	}

	return finish(&model.Dataset{Entities: entities, Relations: relations})
}

func loadEntities(ctx context.Context, db *sql.DB) ([]model.Entity, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, category, description, era, born, died, quotes, facts
		FROM entities ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying entities: %w", err)
	}
	defer rows.Close()

	var entities []model.Entity
	for rows.Next() {
		var e model.Entity
		var category string
		var description, era, born, died, quotesJSON, factsJSON sql.NullString

		if err := rows.Scan(&e.ID, &e.Name, &category, &description, &era, &born, &died, &quotesJSON, &factsJSON); err != nil {
			return nil, fmt.Errorf("scanning entity: %w", err)
		}
		e.Category = model.Category(category)
		e.Description = description.String
		e.Era = era.String
		e.Born = born.String
		e.Died = died.String
		e.Quotes = parseJSONStrings(quotesJSON)
		e.Facts = parseJSONStrings(factsJSON)

		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entities: %w", err)
	}
	return entities, nil
}

func loadRelations(ctx context.Context, db *sql.DB) ([]model.Relation, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT source, target, type FROM relations`)
	if err != nil {
		return nil, fmt.Errorf("querying relations: %w", err)
	}
	defer rows.Close()

	var relations []model.Relation
	for rows.Next() {
		var r model.Relation
		var typ string
		if err := rows.Scan(&r.Source, &r.Target, &typ); err != nil {
			return nil, fmt.Errorf("scanning relation: %w", err)
		}
		r.Type = model.RelationType(typ)
		relations = append(relations, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating relations: %w", err)
	}
	return relations, nil
}

func parseJSONStrings(s sql.NullString) []string {
	if !s.Valid || s.String == "" || s.String == "null" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(s.String), &out); err != nil {
		return nil
	}
	return out
}
