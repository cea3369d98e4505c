package store

import (
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver

	"github.com/pixelgrove/saveslot-go/internal/models"
)

const (
	appDirName   = "saveslot"
	savesDirName = "saves"
	metadataFile = "metadata.db"

	// timestampFormat matches SQLite's DEFAULT CURRENT_TIMESTAMP output so
	// rows inserted by us and rows touched by SQL sort together.
	timestampFormat = "2006-01-02 15:04:05"
)

const metadataSchema = `
CREATE TABLE IF NOT EXISTS save_slots (
    id UUID PRIMARY KEY,
    name TEXT NOT NULL,
    last_played TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    file_path TEXT NOT NULL
)`

const slotSchema = `
CREATE TABLE IF NOT EXISTS player_stats (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    health INTEGER NOT NULL,
    experience INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS inventory (
    position INTEGER PRIMARY KEY,
    item TEXT NOT NULL
)`

// SQLiteStore keeps slot metadata in a single metadata database and each
// slot's payload in its own database file under the saves directory.
// It is not safe for concurrent use; the coordinator serializes access.
type SQLiteStore struct {
	savesDir string
	meta     *sql.DB

	loadedID string
	loaded   *sql.DB
}

// Open initializes the backend under baseDir. It creates
// <baseDir>/saveslot/saves/ and the metadata database on first use.
// Call it once at startup; the returned store owns all database handles.
func Open(baseDir string) (*SQLiteStore, error) {
	savesDir := filepath.Join(baseDir, appDirName, savesDirName)
	if err := os.MkdirAll(savesDir, 0o755); err != nil {
		return nil, models.ErrBackend("create saves directory", err)
	}

	meta, err := openDB(filepath.Join(savesDir, metadataFile))
	if err != nil {
		return nil, err
	}
	if _, err := meta.Exec(metadataSchema); err != nil {
		_ = meta.Close()
		return nil, models.ErrBackend("initialize metadata db", err)
	}

	return &SQLiteStore{savesDir: savesDir, meta: meta}, nil
}

// SavesDir returns the directory holding the metadata and slot databases.
func (s *SQLiteStore) SavesDir() string { return s.savesDir }

// openDB opens a SQLite database in WAL mode.
func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, models.ErrBackend("open database", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, models.ErrBackend("open database", err)
	}
	return db, nil
}

// ListSlots returns every slot, most recently played first.
func (s *SQLiteStore) ListSlots() ([]models.SaveSlotMetadata, error) {
	rows, err := s.meta.Query(`SELECT id, name, last_played, file_path
		FROM save_slots ORDER BY last_played DESC`)
	if err != nil {
		return nil, models.ErrBackend("list slots", err)
	}
	defer rows.Close()

	var slots []models.SaveSlotMetadata
	for rows.Next() {
		var m models.SaveSlotMetadata
		if err := rows.Scan(&m.ID, &m.Name, &m.LastPlayed, &m.FilePath); err != nil {
			return nil, models.ErrBackend("scan slot row", err)
		}
		slots = append(slots, m)
	}
	if err := rows.Err(); err != nil {
		return nil, models.ErrBackend("list slots", err)
	}
	return slots, nil
}

// CreateSlot inserts a metadata row for a fresh slot. The slot's payload
// database is created lazily on first load.
func (s *SQLiteStore) CreateSlot(displayName string) (models.SaveSlotMetadata, error) {
	m := models.SaveSlotMetadata{
		ID:         uuid.NewString(),
		Name:       displayName,
		LastPlayed: time.Now().UTC().Format(timestampFormat),
	}
	m.FilePath = filepath.Join(s.savesDir, m.ID+".db")

	_, err := s.meta.Exec(`INSERT INTO save_slots (id, name, last_played, file_path)
		VALUES (?, ?, ?, ?)`, m.ID, m.Name, m.LastPlayed, m.FilePath)
	if err != nil {
		return models.SaveSlotMetadata{}, models.ErrBackend("create slot", err)
	}
	return m, nil
}

// LoadSlot opens the slot's payload database, making it the target of
// subsequent WritePlayerData calls, and bumps the slot's last_played time.
// Any previously loaded slot is closed first.
func (s *SQLiteStore) LoadSlot(slotID string) error {
	var path string
	err := s.meta.QueryRow(`SELECT file_path FROM save_slots WHERE id = ?`, slotID).Scan(&path)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrSlotNotFound(slotID)
	}
	if err != nil {
		return models.ErrBackend("look up slot", err)
	}

	db, err := openDB(path)
	if err != nil {
		return err
	}
	if _, err := db.Exec(slotSchema); err != nil {
		_ = db.Close()
		return models.ErrBackend("initialize slot db", err)
	}
	if _, err := s.meta.Exec(`UPDATE save_slots SET last_played = CURRENT_TIMESTAMP
		WHERE id = ?`, slotID); err != nil {
		_ = db.Close()
		return models.ErrBackend("update last played", err)
	}

	s.closeLoaded()
	s.loadedID = slotID
	s.loaded = db
	return nil
}

// WritePlayerData writes the payload into the loaded slot in one
// transaction: the stats row is upserted and the inventory rewritten.
func (s *SQLiteStore) WritePlayerData(data models.PlayerData) error {
	if s.loaded == nil {
		return models.ErrNoActiveSlot
	}

	tx, err := s.loaded.Begin()
	if err != nil {
		return models.ErrBackend("begin save transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(`INSERT INTO player_stats (id, health, experience)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		    health = excluded.health,
		    experience = excluded.experience`, data.Health, data.Experience)
	if err != nil {
		return models.ErrBackend("write player stats", err)
	}

	if _, err := tx.Exec(`DELETE FROM inventory`); err != nil {
		return models.ErrBackend("clear inventory", err)
	}
	for position, item := range data.Inventory {
		if _, err := tx.Exec(`INSERT INTO inventory (position, item)
			VALUES (?, ?)`, position, item); err != nil {
			return models.ErrBackend("write inventory", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return models.ErrBackend("commit save", err)
	}
	return nil
}

// DeleteSlot removes the slot's metadata row and payload database.
// Deleting the loaded slot closes its database handle.
func (s *SQLiteStore) DeleteSlot(slotID string) error {
	var path string
	err := s.meta.QueryRow(`SELECT file_path FROM save_slots WHERE id = ?`, slotID).Scan(&path)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrSlotNotFound(slotID)
	}
	if err != nil {
		return models.ErrBackend("look up slot", err)
	}

	if _, err := s.meta.Exec(`DELETE FROM save_slots WHERE id = ?`, slotID); err != nil {
		return models.ErrBackend("delete slot", err)
	}

	if s.loadedID == slotID {
		s.closeLoaded()
	}

	// The metadata row is authoritative; a leftover payload file is
	// unreferenced, so its removal is best effort.
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("store: could not remove slot file", "path", path, "err", err)
	}
	return nil
}

// Close releases the metadata and any loaded slot database handle.
func (s *SQLiteStore) Close() error {
	s.closeLoaded()
	if s.meta == nil {
		return nil
	}
	err := s.meta.Close()
	s.meta = nil
	if err != nil {
		return models.ErrBackend("close metadata db", err)
	}
	return nil
}

func (s *SQLiteStore) closeLoaded() {
	if s.loaded != nil {
		_ = s.loaded.Close()
		s.loaded = nil
		s.loadedID = ""
	}
}

// Ensure SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)
