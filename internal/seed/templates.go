package seed

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

type categoryDef struct {
	name        string
	description string
}

var defaultCategories = []categoryDef{
	{name: "marketing", description: "Campaign briefs, landing pages, and ad copy"},
	{name: "sales", description: "Proposals, one-pagers, and outreach sequences"},
	{name: "report", description: "Recurring reports and executive summaries"},
	{name: "social", description: "Posts and threads for social channels"},
}

type templateDef struct {
	name        string
	description string
	category    string
	tags        string
	definition  string
}

var defaultTemplates = []templateDef{
	{
		name:        "Campaign Brief",
		description: "A one-page brief for launching a marketing campaign.",
		category:    "marketing",
		tags:        `["brief","campaign"]`,
		definition: `{"sections":[{"title":"Objective","body":""},{"title":"Audience","body":""},` +
			`{"title":"Key Message","body":""},{"title":"Channels","body":""}]}`,
	},
	{
		name:        "Weekly Report",
		description: "A recurring status report with highlights and metrics.",
		category:    "report",
		tags:        `["report","weekly"]`,
		definition: `{"sections":[{"title":"Highlights","body":""},{"title":"Metrics","body":""},` +
			`{"title":"Risks","body":""},{"title":"Next Steps","body":""}]}`,
	},
	{
		name:        "Sales One-Pager",
		description: "A single-page product overview for prospects.",
		category:    "sales",
		tags:        `["sales"]`,
		definition: `{"sections":[{"title":"Problem","body":""},{"title":"Solution","body":""},` +
			`{"title":"Proof","body":""},{"title":"Call to Action","body":""}]}`,
	},
}

// Categories inserts the default template categories if none exist yet.
func Categories(ctx context.Context, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM template_categories`).Scan(&count); err != nil {
		return fmt.Errorf("count categories: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, cd := range defaultCategories {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO template_categories (name, description) VALUES (?, ?)`,
			cd.name, cd.description,
		); err != nil {
			return fmt.Errorf("insert category %s: %w", cd.name, err)
		}
	}

	return nil
}

// Templates inserts the starter templates if none exist yet.
func Templates(ctx context.Context, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM templates`).Scan(&count); err != nil {
		return fmt.Errorf("count templates: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, td := range defaultTemplates {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO templates (id, name, description, category, tags, definition, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), td.name, td.description, td.category, td.tags, td.definition,
			seedTimestamp, seedTimestamp,
		); err != nil {
			return fmt.Errorf("insert template %s: %w", td.name, err)
		}
	}

	return nil
}
