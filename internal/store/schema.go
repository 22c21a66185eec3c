package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS users (
    id                   TEXT PRIMARY KEY,
    email                TEXT NOT NULL UNIQUE COLLATE NOCASE,
    created_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS user_roles (
    user_id              TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    role                 TEXT NOT NULL CHECK (role IN ('user', 'admin')),
    created_at           TEXT NOT NULL,
    PRIMARY KEY (user_id)
);

CREATE TABLE IF NOT EXISTS user_settings (
    user_id              TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
    theme                TEXT NOT NULL DEFAULT 'light',
    language             TEXT NOT NULL DEFAULT 'en',
    updated_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS expenses (
    id                   TEXT PRIMARY KEY,
    user_id              TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    amount               TEXT NOT NULL,
    category             TEXT NOT NULL,
    description          TEXT,
    expense_date         TEXT NOT NULL,
    source_file          TEXT,
    created_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS file_tracker (
    file_path            TEXT NOT NULL,
    user_id              TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    mtime_ns             INTEGER NOT NULL,
    size_bytes           INTEGER NOT NULL,
    imported             INTEGER NOT NULL DEFAULT 0,
    imported_at          TEXT NOT NULL,
    PRIMARY KEY (file_path, user_id)
);

CREATE INDEX IF NOT EXISTS idx_expenses_user_date ON expenses(user_id, expense_date);
CREATE INDEX IF NOT EXISTS idx_expenses_category ON expenses(category);
CREATE INDEX IF NOT EXISTS idx_expenses_source ON expenses(user_id, source_file);
`
