package store

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the route database schema.
const Schema = `
-- Routing rules table
CREATE TABLE IF NOT EXISTS routes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,

    -- Unique path prefix the gateway matches inbound requests against
    path TEXT NOT NULL UNIQUE,

    -- Base URL of the downstream service requests are forwarded to
    target_url TEXT NOT NULL,

    -- Token bucket parameters; both NULL disables rate limiting
    capacity INTEGER,
    refill_rate_per_second INTEGER,

    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);
`

// InsertSchemaVersion records the schema version, ignoring duplicates.
const InsertSchemaVersion = `INSERT OR IGNORE INTO schema_version (version) VALUES (?)`

// GetSchemaVersion reads the recorded schema version.
const GetSchemaVersion = `SELECT version FROM schema_version LIMIT 1`
