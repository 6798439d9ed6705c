package sqlite

// schema contains the database schema DDL.
const schema = `
-- Food catalog
CREATE TABLE IF NOT EXISTS foods (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    carbs REAL NOT NULL,
    fats REAL NOT NULL,
    glycemic_index INTEGER NOT NULL,
    created_at INTEGER NOT NULL DEFAULT (unixepoch() * 1000)
);

-- Timeline events, one row per event regardless of kind
CREATE TABLE IF NOT EXISTS events (
    id TEXT PRIMARY KEY,
    kind TEXT NOT NULL,
    at INTEGER NOT NULL,
    units INTEGER,
    duration_min INTEGER,
    intensity TEXT
);
CREATE INDEX IF NOT EXISTS idx_events_kind_at ON events(kind, at);

-- Food amounts attached to FOOD events
CREATE TABLE IF NOT EXISTS event_food_amounts (
    event_id TEXT NOT NULL REFERENCES events(id),
    food_id TEXT NOT NULL REFERENCES foods(id),
    quantity INTEGER NOT NULL,
    PRIMARY KEY (event_id, food_id)
);
`
