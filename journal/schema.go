// journal/schema.go
package journal

const SQLiteSchema = `
CREATE TABLE IF NOT EXISTS watchlist (
	ticker TEXT PRIMARY KEY,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS rules (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	ticker TEXT NOT NULL,
	direction TEXT NOT NULL,
	price REAL NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	rule_id INTEGER NOT NULL,
	ticker TEXT NOT NULL,
	direction TEXT NOT NULL,
	threshold REAL NOT NULL,
	price REAL NOT NULL,
	triggered_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_rules_ticker ON rules(ticker);
CREATE INDEX IF NOT EXISTS idx_events_ticker ON events(ticker);
`

const PostgresSchema = `
CREATE TABLE IF NOT EXISTS watchlist (
	ticker TEXT PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS rules (
	id BIGSERIAL PRIMARY KEY,
	ticker TEXT NOT NULL,
	direction TEXT NOT NULL,
	price DOUBLE PRECISION NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
	id BIGSERIAL PRIMARY KEY,
	rule_id BIGINT NOT NULL,
	ticker TEXT NOT NULL,
	direction TEXT NOT NULL,
	threshold DOUBLE PRECISION NOT NULL,
	price DOUBLE PRECISION NOT NULL,
	triggered_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_rules_ticker ON rules(ticker);
CREATE INDEX IF NOT EXISTS idx_events_ticker ON events(ticker);
`
