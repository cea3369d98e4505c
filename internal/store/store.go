// Package store implements the save-slot persistence backend: slot metadata
// plus one payload database per slot, kept under a saves directory.
package store

import "github.com/pixelgrove/saveslot-go/internal/models"

// Store is the interface the save coordinator persists through.
// Implementations are synchronous: every method returns only after the
// underlying storage has accepted or rejected the operation, and failures
// leave no partial state visible to the caller.
type Store interface {
	// ListSlots returns all slots, most recently played first.
	ListSlots() ([]models.SaveSlotMetadata, error)

	// CreateSlot allocates a new slot with the given display name.
	// The new slot is not loaded.
	CreateSlot(displayName string) (models.SaveSlotMetadata, error)

	// LoadSlot makes the given slot the target of subsequent writes.
	LoadSlot(slotID string) error

	// WritePlayerData persists data into whichever slot is loaded.
	WritePlayerData(data models.PlayerData) error

	// DeleteSlot removes the slot and its stored data.
	DeleteSlot(slotID string) error

	// Close releases any open storage handles.
	Close() error
}
