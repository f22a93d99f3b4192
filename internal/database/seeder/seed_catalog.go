package seeder

import (
	"context"
	"fmt"

	"skill-gap/internal/database"
)

// CatalogSeeder inserts the built-in roles, requirements and resources.
// Existing rows are left untouched so edits made in the database survive restarts.
type CatalogSeeder struct {
	Catalog *Catalog
}

func (CatalogSeeder) Name() string { return "catalog" }

func (s CatalogSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "roles", "id", "title", "category", "description"); err != nil {
		return err
	}
	if err := EnsureTableColumns(ctx, db, "role_requirements", "role_id", "position", "skill", "weight", "priority"); err != nil {
		return err
	}
	if err := EnsureTableColumns(ctx, db, "resources", "position", "skill", "title", "url", "type"); err != nil {
		return err
	}

	catalog := s.Catalog
	if catalog == nil {
		c, err := LoadCatalog()
		if err != nil {
			return err
		}
		catalog = &c
	}

	return database.InTx(ctx, db, func(tx database.Tx) error {
		for _, r := range catalog.Roles {
			if _, err := tx.Exec(
				ctx,
				`INSERT INTO roles (id, title, category, description) VALUES ($1, $2, $3, $4) ON CONFLICT (id) DO NOTHING`,
				r.ID, r.Title, r.Category, r.Description,
			); err != nil {
				return fmt.Errorf("role %s: %w", r.ID, err)
			}
			for i, req := range r.Requirements {
				if _, err := tx.Exec(
					ctx,
					`INSERT INTO role_requirements (role_id, position, skill, weight, priority) VALUES ($1, $2, $3, $4, $5) ON CONFLICT (role_id, position) DO NOTHING`,
					r.ID, i, req.Skill, req.Weight, string(req.Priority),
				); err != nil {
					return fmt.Errorf("requirement %s/%d: %w", r.ID, i, err)
				}
			}
		}

		for i, res := range catalog.Resources {
			if _, err := tx.Exec(
				ctx,
				`INSERT INTO resources (position, skill, title, url, type) VALUES ($1, $2, $3, $4, $5) ON CONFLICT (skill, url) DO NOTHING`,
				i, res.Skill, res.Title, res.URL, res.Type,
			); err != nil {
				return fmt.Errorf("resource %s: %w", res.URL, err)
			}
		}
		return nil
	})
}
