package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/pixelgrove/saveslot-go/internal/models"
)

// MemStore is an in-memory Store for tests that never touches disk.
// Slots are kept most recently played first, mirroring the SQLite ordering.
type MemStore struct {
	mu     sync.Mutex
	seq    int
	slots  []models.SaveSlotMetadata
	data   map[string]models.PlayerData
	loaded string
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string]models.PlayerData)}
}

// ListSlots returns a copy of the slot list, most recently played first.
func (m *MemStore) ListSlots() ([]models.SaveSlotMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.SaveSlotMetadata, len(m.slots))
	copy(out, m.slots)
	return out, nil
}

// CreateSlot allocates a slot with a deterministic sequential ID.
func (m *MemStore) CreateSlot(displayName string) (models.SaveSlotMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	meta := models.SaveSlotMetadata{
		ID:         fmt.Sprintf("slot-%04d", m.seq),
		Name:       displayName,
		LastPlayed: time.Now().UTC().Format(timestampFormat),
		FilePath:   ":memory:",
	}
	m.slots = append([]models.SaveSlotMetadata{meta}, m.slots...)
	return meta, nil
}

// LoadSlot marks the slot as the write target and moves it to the front of
// the list, the in-memory equivalent of bumping last_played.
func (m *MemStore) LoadSlot(slotID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.slots {
		if m.slots[i].ID == slotID {
			meta := m.slots[i]
			meta.LastPlayed = time.Now().UTC().Format(timestampFormat)
			m.slots = append(m.slots[:i], m.slots[i+1:]...)
			m.slots = append([]models.SaveSlotMetadata{meta}, m.slots...)
			m.loaded = slotID
			return nil
		}
	}
	return models.ErrSlotNotFound(slotID)
}

// WritePlayerData stores a copy of the payload under the loaded slot.
func (m *MemStore) WritePlayerData(data models.PlayerData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loaded == "" {
		return models.ErrNoActiveSlot
	}
	cp := data
	cp.Inventory = append([]string(nil), data.Inventory...)
	m.data[m.loaded] = cp
	return nil
}

// DeleteSlot removes the slot and its payload. Deleting the loaded slot
// clears the write target.
func (m *MemStore) DeleteSlot(slotID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.slots {
		if m.slots[i].ID == slotID {
			m.slots = append(m.slots[:i], m.slots[i+1:]...)
			delete(m.data, slotID)
			if m.loaded == slotID {
				m.loaded = ""
			}
			return nil
		}
	}
	return models.ErrSlotNotFound(slotID)
}

// Close is a no-op for in-memory stores.
func (m *MemStore) Close() error { return nil }

// PlayerData returns the payload stored for a slot, for assertions in tests.
func (m *MemStore) PlayerData(slotID string) (models.PlayerData, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.data[slotID]
	return data, ok
}

// LoadedSlot returns the ID of the slot currently targeted by writes.
func (m *MemStore) LoadedSlot() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loaded
}

// Ensure MemStore implements Store.
var _ Store = (*MemStore)(nil)
