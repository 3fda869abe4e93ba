package database

// migrations is an ordered list of SQL migration groups. Each entry is a slice
// of SQL statements that are executed together in a single transaction. The
// version number is the 1-based index into this slice.
var migrations = [][]string{
	// Migration 1: accounts and API keys
	{
		`CREATE TABLE users (
			id TEXT PRIMARY KEY,
			email TEXT UNIQUE NOT NULL,
			full_name TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL DEFAULT 'member',
			password_hash TEXT NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TEXT NOT NULL
		)`,

		`CREATE TABLE api_keys (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			prefix TEXT NOT NULL,
			key_hash TEXT UNIQUE NOT NULL,
			created_at TEXT NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id)
		)`,
		`CREATE INDEX idx_api_keys_user ON api_keys(user_id)`,
	},

	// Migration 2: templates and design
	{
		`CREATE TABLE template_categories (
			name TEXT PRIMARY KEY,
			description TEXT NOT NULL DEFAULT ''
		)`,

		`CREATE TABLE templates (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			tags TEXT NOT NULL DEFAULT '[]',
			definition TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX idx_templates_category ON templates(category)`,

		`CREATE TABLE template_artifacts (
			template_id TEXT NOT NULL,
			name TEXT NOT NULL,
			path TEXT NOT NULL,
			data BLOB,
			PRIMARY KEY (template_id, name),
			FOREIGN KEY (template_id) REFERENCES templates(id)
		)`,

		`CREATE TABLE brand_kits (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			colors TEXT NOT NULL,
			fonts TEXT NOT NULL,
			logo_url TEXT NOT NULL DEFAULT '',
			is_default BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,

		`CREATE TABLE design_assets (
			id TEXT PRIMARY KEY,
			file_name TEXT NOT NULL,
			content_type TEXT NOT NULL,
			size_bytes INTEGER NOT NULL,
			kind TEXT NOT NULL,
			brand_kit_id TEXT,
			data BLOB NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX idx_design_assets_kit ON design_assets(brand_kit_id)`,
	},

	// Migration 3: knowledge base
	{
		`CREATE TABLE documents (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			file_name TEXT NOT NULL,
			content_type TEXT NOT NULL,
			size_bytes INTEGER NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			chunk_count INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		)`,

		`CREATE TABLE document_chunks (
			id TEXT PRIMARY KEY,
			document_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			text TEXT NOT NULL,
			FOREIGN KEY (document_id) REFERENCES documents(id)
		)`,
		`CREATE INDEX idx_chunks_document ON document_chunks(document_id, seq)`,
	},

	// Migration 4: analyses
	{
		`CREATE TABLE analyses (
			id TEXT PRIMARY KEY,
			file_name TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			row_count INTEGER NOT NULL DEFAULT 0,
			column_count INTEGER NOT NULL DEFAULT 0,
			columns TEXT NOT NULL DEFAULT '[]',
			matrix TEXT,
			error TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		)`,
	},

	// Migration 5: exports and jobs
	{
		`CREATE TABLE exports (
			id TEXT PRIMARY KEY,
			resource_type TEXT NOT NULL,
			resource_id TEXT NOT NULL,
			format TEXT NOT NULL,
			status TEXT NOT NULL,
			size_bytes INTEGER NOT NULL DEFAULT 0,
			content_type TEXT NOT NULL DEFAULT 'application/json',
			data BLOB,
			error TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		)`,

		`CREATE TABLE jobs (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'queued',
			resource_id TEXT NOT NULL DEFAULT '',
			error TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX idx_jobs_status ON jobs(status, created_at)`,
	},

	// Migration 6: workflows
	{
		`CREATE TABLE workflows (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			enabled BOOLEAN NOT NULL DEFAULT TRUE,
			trigger_type TEXT NOT NULL DEFAULT 'manual',
			trigger_cron TEXT NOT NULL DEFAULT '',
			webhook_token TEXT NOT NULL DEFAULT '',
			steps TEXT NOT NULL DEFAULT '[]',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX idx_workflows_webhook ON workflows(webhook_token)`,

		`CREATE TABLE workflow_executions (
			id TEXT PRIMARY KEY,
			workflow_id TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			steps TEXT NOT NULL DEFAULT '[]',
			resume_from INTEGER NOT NULL DEFAULT 0,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			FOREIGN KEY (workflow_id) REFERENCES workflows(id)
		)`,
		`CREATE INDEX idx_executions_workflow ON workflow_executions(workflow_id, started_at)`,
	},
}
