package postgresql

// migrations returns the schema migrations for the webhook configuration
// store, keyed by version.
func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE IF NOT EXISTS webhook_endpoints (
				id UUID PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				url TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				identifier VARCHAR(255) NOT NULL UNIQUE,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_webhook_endpoints_name ON webhook_endpoints (name);
		`,
	}
}
