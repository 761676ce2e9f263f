package cache

// schemaSQL defines the SQLite schema for the cache database.
// module_diffs stores one row per compared source pair, keyed by the
// content hashes of the old and new sources.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS module_diffs (
    old_hash TEXT NOT NULL,
    new_hash TEXT NOT NULL,
    has_diff INTEGER NOT NULL DEFAULT 0,
    diff_text TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    PRIMARY KEY (old_hash, new_hash)
);

CREATE INDEX IF NOT EXISTS idx_module_diffs_created_at ON module_diffs(created_at);
`

// initSchema creates the database tables and indexes if they don't exist.
func (c *Cache) initSchema() error {
	_, err := c.db.Exec(schemaSQL)
	return err
}
