package sqlite

import (
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the SQLite database connection with thread-safe access.
type DB struct {
	conn *sql.DB
	mu   sync.RWMutex
}

// New creates and initializes a new SQLite database connection.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// migrate creates the necessary tables if they don't exist.
func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS images (
		_id INTEGER PRIMARY KEY AUTOINCREMENT,
		_data TEXT NOT NULL UNIQUE,
		_display_name TEXT NOT NULL DEFAULT '',
		_size INTEGER DEFAULT 0,
		mime_type TEXT NOT NULL DEFAULT '',
		date_added DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS audio (
		_id INTEGER PRIMARY KEY AUTOINCREMENT,
		_data TEXT NOT NULL UNIQUE,
		_display_name TEXT NOT NULL DEFAULT '',
		_size INTEGER DEFAULT 0,
		mime_type TEXT NOT NULL DEFAULT '',
		date_added DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS video (
		_id INTEGER PRIMARY KEY AUTOINCREMENT,
		_data TEXT NOT NULL UNIQUE,
		_display_name TEXT NOT NULL DEFAULT '',
		_size INTEGER DEFAULT 0,
		mime_type TEXT NOT NULL DEFAULT '',
		date_added DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS detections (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		path TEXT NOT NULL,
		detect_ms INTEGER DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS faces (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		detection_id INTEGER NOT NULL,
		position INTEGER NOT NULL,
		x INTEGER DEFAULT 0,
		y INTEGER DEFAULT 0,
		width INTEGER DEFAULT 0,
		height INTEGER DEFAULT 0,
		confidence INTEGER DEFAULT 0,
		angle INTEGER DEFAULT 0,
		FOREIGN KEY (detection_id) REFERENCES detections(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_detections_path ON detections(path);
	CREATE INDEX IF NOT EXISTS idx_faces_detection_id ON faces(detection_id);
	`

	_, err := db.conn.Exec(schema)
	return err
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying database connection for use by repositories.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Lock acquires a write lock.
func (db *DB) Lock() {
	db.mu.Lock()
}

// Unlock releases the write lock.
func (db *DB) Unlock() {
	db.mu.Unlock()
}

// RLock acquires a read lock.
func (db *DB) RLock() {
	db.mu.RLock()
}

// RUnlock releases the read lock.
func (db *DB) RUnlock() {
	db.mu.RUnlock()
}
