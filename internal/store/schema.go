package store

const schema = `
CREATE TABLE IF NOT EXISTS apps (
    package TEXT PRIMARY KEY,
    label TEXT NOT NULL,
    icon_path TEXT,
    color TEXT NOT NULL,
    scanned_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS usage_events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    package TEXT NOT NULL,
    kind TEXT NOT NULL,
    timestamp_ns INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_usage_package ON usage_events(package);
CREATE INDEX IF NOT EXISTS idx_usage_timestamp ON usage_events(timestamp_ns);
`
