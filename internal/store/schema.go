package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS days (
    day                  TEXT PRIMARY KEY,
    budget               REAL NOT NULL,
    updated_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS expenses (
    day                  TEXT NOT NULL REFERENCES days(day) ON DELETE CASCADE,
    name                 TEXT NOT NULL,
    amount               REAL NOT NULL,
    PRIMARY KEY (day, name)
);

CREATE INDEX IF NOT EXISTS idx_expenses_day ON expenses(day);
`
