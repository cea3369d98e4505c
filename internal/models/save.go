// Package models defines the save-slot data model shared by the store and
// the save coordinator.
package models

// SaveSlotMetadata describes one save slot as reported by the persistence
// backend. It is a read-only snapshot: the backend assigns the ID once and
// owns every field.
type SaveSlotMetadata struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	LastPlayed string `json:"last_played"`
	FilePath   string `json:"file_path"`
}

// PlayerData is the payload persisted into the active slot. The coordinator
// forwards it verbatim; only the backend knows the schema.
type PlayerData struct {
	Health     int      `json:"health"`
	Experience int      `json:"experience"`
	Inventory  []string `json:"inventory"`
}
