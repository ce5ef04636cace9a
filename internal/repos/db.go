package repos

import (
	"log"
	"strings"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"venues/internal/domain"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", withPragmas(dsn))
	if err != nil {
		return nil, err
	}
	// Every pooled connection to ":memory:" would get its own empty database.
	if strings.HasPrefix(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Baseline tag vocabulary (idempotent; safe to run every start)
	if err := seedTags(db); err != nil {
		return nil, err
	}
	return db, nil
}

func withPragmas(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func itemTableDDL(table string) string {
	return `
CREATE TABLE IF NOT EXISTS ` + table + `(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL CHECK (length(trim(name)) > 0),
  description TEXT,
  image BLOB,
  direction_link TEXT,
  open_hours TEXT,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);`
}

func ensureSchema(db *sqlx.DB) error {
	var b strings.Builder
	b.WriteString("PRAGMA foreign_keys = ON;\n")
	for _, c := range domain.Categories() {
		b.WriteString(itemTableDDL(c.Table))
	}
	b.WriteString(`
-- Tags (food items only)
CREATE TABLE IF NOT EXISTS tags(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_tags_name_nocase ON tags(LOWER(name));

CREATE TABLE IF NOT EXISTS food_item_tags(
  food_item_id INTEGER NOT NULL REFERENCES food_items(id) ON DELETE CASCADE,
  tag_id       INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
  PRIMARY KEY (food_item_id, tag_id)
);
CREATE INDEX IF NOT EXISTS idx_food_item_tags_tag ON food_item_tags(tag_id);

-- Users & Sessions (admin console)
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('USER','ADMIN')),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,               -- same value as the 'sid' cookie
  user_id TEXT NULL REFERENCES users(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen  TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);
`)
	_, err := db.Exec(b.String())
	return err
}

func seedTags(db *sqlx.DB) error {
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for _, name := range []string{"Breakfast", "Cafe", "Halal", "Late Night", "Vegan"} {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO tags(name) VALUES(?)`, name); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SeedAdmin ensures an ADMIN account exists for the console (idempotent).
func SeedAdmin(db *sqlx.DB, email, password string) error {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = db.Exec(`
		INSERT INTO users(id,email,name,password_hash,role)
		VALUES('u-admin',?,?,?,'ADMIN')
		ON CONFLICT(email) DO NOTHING
	`, email, "Admin", string(h))
	return err
}

// SeedDemo inserts a few venues when every item table is empty.
func SeedDemo(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT (SELECT COUNT(*) FROM food_items) + (SELECT COUNT(*) FROM leisure_items) + (SELECT COUNT(*) FROM service_items)`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo venues")

	tx := db.MustBegin()
	tx.MustExec(`INSERT INTO food_items(name,description,direction_link,open_hours) VALUES
	  ('Corner Bakery','Fresh bread and pastries','https://maps.google.com/?q=Corner+Bakery','07:00-15:00'),
	  ('Green Bowl','Plant-based lunch bowls',NULL,'11:00-21:00')`)
	tx.MustExec(`INSERT INTO food_item_tags(food_item_id, tag_id)
	  SELECT f.id, t.id FROM food_items f, tags t
	  WHERE (f.name='Corner Bakery' AND t.name IN ('Breakfast','Cafe'))
	     OR (f.name='Green Bowl' AND t.name='Vegan')`)
	tx.MustExec(`INSERT INTO leisure_items(name,description,open_hours) VALUES
	  ('Riverside Park','Walking trails and a playground','06:00-22:00')`)
	tx.MustExec(`INSERT INTO service_items(name,description,open_hours) VALUES
	  ('Quick Fix Bikes','Bicycle repairs while you wait','09:00-18:00')`)
	return tx.Commit()
}
