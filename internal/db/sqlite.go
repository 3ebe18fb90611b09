package db

import (
	"database/sql"

	"github.com/lingosub/backend/internal/auth"
	"github.com/lingosub/backend/internal/db/models"
	_ "github.com/mattn/go-sqlite3"
)

type Database struct {
	db *sql.DB
}

func NewSQLite(path string) (*Database, error) {
	sqlDB, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	d := &Database{db: sqlDB}
	if err := d.migrate(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Database) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT UNIQUE NOT NULL,
		password TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'viewer',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		entry_count INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		document_id TEXT NOT NULL,
		params TEXT NOT NULL,
		progress REAL DEFAULT 0,
		result TEXT,
		error TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		started_at DATETIME,
		completed_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS translation_presets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		prompt TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS backends (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		url TEXT NOT NULL DEFAULT '',
		model TEXT NOT NULL DEFAULT '',
		enabled INTEGER NOT NULL DEFAULT 1,
		priority INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := d.db.Exec(schema)
	return err
}

func (d *Database) EnsureAdmin(username, password string) error {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM users WHERE role = 'admin'").Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = d.db.Exec(
		"INSERT INTO users (username, password, role) VALUES (?, ?, 'admin')",
		username, hash,
	)
	return err
}

func (d *Database) GetUserByUsername(username string) (*models.User, error) {
	u := &models.User{}
	err := d.db.QueryRow(
		"SELECT id, username, password, role, created_at, updated_at FROM users WHERE username = ?",
		username,
	).Scan(&u.ID, &u.Username, &u.Password, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (d *Database) GetUserByID(id int64) (*models.User, error) {
	u := &models.User{}
	err := d.db.QueryRow(
		"SELECT id, username, password, role, created_at, updated_at FROM users WHERE id = ?",
		id,
	).Scan(&u.ID, &u.Username, &u.Password, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// ListUsers returns every account, newest first.
func (d *Database) ListUsers() ([]*models.User, error) {
	rows, err := d.db.Query(
		"SELECT id, username, password, role, created_at, updated_at FROM users ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u := &models.User{}
		if err := rows.Scan(&u.ID, &u.Username, &u.Password, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if users == nil {
		users = []*models.User{}
	}
	return users, nil
}

// CreateUser inserts an account with an already-hashed password.
func (d *Database) CreateUser(username, passwordHash, role string) (int64, error) {
	result, err := d.db.Exec(
		"INSERT INTO users (username, password, role) VALUES (?, ?, ?)",
		username, passwordHash, role,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (d *Database) UpdateUser(id int64, username, role string) error {
	_, err := d.db.Exec(
		"UPDATE users SET username = ?, role = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		username, role, id,
	)
	return err
}

func (d *Database) UpdateUserPassword(id int64, passwordHash string) error {
	_, err := d.db.Exec(
		"UPDATE users SET password = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		passwordHash, id,
	)
	return err
}

func (d *Database) DeleteUser(id int64) error {
	_, err := d.db.Exec("DELETE FROM users WHERE id = ?", id)
	return err
}

// CountAdmins reports how many admin accounts exist. Deleting or demoting the
// last one is refused upstream.
func (d *Database) CountAdmins() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM users WHERE role = 'admin'").Scan(&count)
	return count, err
}

// GetSetting returns a setting value by key, or defaultVal if not found
func (d *Database) GetSetting(key, defaultVal string) string {
	var val string
	err := d.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&val)
	if err != nil {
		return defaultVal
	}
	return val
}

// SetSetting upserts a setting
func (d *Database) SetSetting(key, value string) error {
	_, err := d.db.Exec(`
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = ?, updated_at = CURRENT_TIMESTAMP`,
		key, value, value,
	)
	return err
}

// GetAllSettings returns all settings as a map
func (d *Database) GetAllSettings() (map[string]string, error) {
	rows, err := d.db.Query("SELECT key, value FROM settings")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		result[k] = v
	}
	return result, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

// DB returns the underlying sql.DB for use by other packages (e.g., job queue)
func (d *Database) DB() *sql.DB {
	return d.db
}

// Document is the library index entry for an uploaded subtitle file. The
// file contents live in the storage package, keyed by ID.
type Document struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	EntryCount int    `json:"entry_count"`
	CreatedAt  string `json:"created_at"`
}

func (d *Database) CreateDocument(id, name string, entryCount int) error {
	_, err := d.db.Exec(
		"INSERT INTO documents (id, name, entry_count) VALUES (?, ?, ?)",
		id, name, entryCount,
	)
	return err
}

func (d *Database) GetDocument(id string) (*Document, error) {
	var doc Document
	err := d.db.QueryRow(
		"SELECT id, name, entry_count, created_at FROM documents WHERE id = ?", id,
	).Scan(&doc.ID, &doc.Name, &doc.EntryCount, &doc.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListDocuments returns the library, newest first.
func (d *Database) ListDocuments() ([]Document, error) {
	rows, err := d.db.Query("SELECT id, name, entry_count, created_at FROM documents ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.Name, &doc.EntryCount, &doc.CreatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if docs == nil {
		docs = []Document{}
	}
	return docs, nil
}

func (d *Database) DeleteDocument(id string) error {
	_, err := d.db.Exec("DELETE FROM documents WHERE id = ?", id)
	return err
}

// TranslationPreset represents a saved custom translation prompt
type TranslationPreset struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Prompt    string `json:"prompt"`
	CreatedAt string `json:"created_at"`
}

// ListTranslationPresets returns all saved presets ordered by creation time
func (d *Database) ListTranslationPresets() ([]TranslationPreset, error) {
	rows, err := d.db.Query("SELECT id, name, prompt, created_at FROM translation_presets ORDER BY created_at ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var presets []TranslationPreset
	for rows.Next() {
		var p TranslationPreset
		if err := rows.Scan(&p.ID, &p.Name, &p.Prompt, &p.CreatedAt); err != nil {
			return nil, err
		}
		presets = append(presets, p)
	}
	if presets == nil {
		presets = []TranslationPreset{}
	}
	return presets, nil
}

// CreateTranslationPreset saves a new custom translation preset
func (d *Database) CreateTranslationPreset(name, prompt string) (int64, error) {
	result, err := d.db.Exec(
		"INSERT INTO translation_presets (name, prompt) VALUES (?, ?)",
		name, prompt,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// UpdateTranslationPreset modifies a saved preset
func (d *Database) UpdateTranslationPreset(id int64, name, prompt string) error {
	_, err := d.db.Exec(
		"UPDATE translation_presets SET name = ?, prompt = ? WHERE id = ?",
		name, prompt, id,
	)
	return err
}

// DeleteTranslationPreset removes a saved preset by ID
func (d *Database) DeleteTranslationPreset(id int64) error {
	_, err := d.db.Exec("DELETE FROM translation_presets WHERE id = ?", id)
	return err
}

// Backend represents a registered translation backend. URL is stored exactly
// as the user entered it; callers normalize it before dialing.
type Backend struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	URL       string `json:"url"`
	Model     string `json:"model"`
	Enabled   bool   `json:"enabled"`
	Priority  int    `json:"priority"`
	CreatedAt string `json:"created_at"`
}

// ListBackends returns all backends ordered by priority
func (d *Database) ListBackends() ([]Backend, error) {
	rows, err := d.db.Query("SELECT id, name, url, model, enabled, priority, created_at FROM backends ORDER BY priority ASC, id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var backends []Backend
	for rows.Next() {
		var b Backend
		var enabled int
		if err := rows.Scan(&b.ID, &b.Name, &b.URL, &b.Model, &enabled, &b.Priority, &b.CreatedAt); err != nil {
			return nil, err
		}
		b.Enabled = enabled != 0
		backends = append(backends, b)
	}
	if backends == nil {
		backends = []Backend{}
	}
	return backends, nil
}

// GetBackend returns a single backend by ID
func (d *Database) GetBackend(id int64) (*Backend, error) {
	var b Backend
	var enabled int
	err := d.db.QueryRow(
		"SELECT id, name, url, model, enabled, priority, created_at FROM backends WHERE id = ?", id,
	).Scan(&b.ID, &b.Name, &b.URL, &b.Model, &enabled, &b.Priority, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	b.Enabled = enabled != 0
	return &b, nil
}

// CreateBackend adds a new backend
func (d *Database) CreateBackend(name, url, model string, priority int) (int64, error) {
	result, err := d.db.Exec(
		"INSERT INTO backends (name, url, model, priority) VALUES (?, ?, ?, ?)",
		name, url, model, priority,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// UpdateBackend modifies an existing backend
func (d *Database) UpdateBackend(id int64, name, url, model string, enabled bool, priority int) error {
	enabledInt := 0
	if enabled {
		enabledInt = 1
	}
	_, err := d.db.Exec(
		"UPDATE backends SET name=?, url=?, model=?, enabled=?, priority=? WHERE id=?",
		name, url, model, enabledInt, priority, id,
	)
	return err
}

// DeleteBackend removes a backend by ID
func (d *Database) DeleteBackend(id int64) error {
	_, err := d.db.Exec("DELETE FROM backends WHERE id = ?", id)
	return err
}

// SeedDefaultBackend registers the configured Ollama instance on first run so
// a fresh install can translate without setup.
func (d *Database) SeedDefaultBackend(url string) error {
	var count int
	if err := d.db.QueryRow("SELECT COUNT(*) FROM backends").Scan(&count); err != nil {
		return err
	}
	if count > 0 || url == "" {
		return nil
	}
	_, err := d.CreateBackend("Ollama (Local)", url, "", 0)
	return err
}
