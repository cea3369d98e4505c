// Package coordinator implements the debounced save coordinator — the single
// owner of the active-slot handle and the component that decides when a
// persistence write is actually issued to the backend.
package coordinator

import (
	"log/slog"
	"sync"
	"time"

	"github.com/pixelgrove/saveslot-go/internal/events"
	"github.com/pixelgrove/saveslot-go/internal/models"
	"github.com/pixelgrove/saveslot-go/internal/store"
)

// DefaultInterval is the minimum time between two backend writes issued
// through DebouncedSave.
const DefaultInterval = 5 * time.Second

// pendingSave is the single deferred-write slot. Each DebouncedSave call
// inside the window overwrites it; earlier payloads are discarded, never
// queued.
type pendingSave struct {
	data   models.PlayerData
	slotID string
	fireAt time.Time
	timer  Timer
	seq    uint64
}

// Coordinator rate-limits writes to the persistence backend and keeps them
// scoped to the currently active slot. At most one deferred write is ever
// scheduled; every state-mutating operation cancels it before scheduling a
// replacement. The mutex serializes the caller with the timer callback, so
// backend writes never overlap.
type Coordinator struct {
	mu       sync.Mutex
	store    store.Store
	bus      *events.Bus
	clock    Clock
	interval time.Duration

	activeSlot string
	lastSaveAt time.Time // zero until the first successful write
	pending    *pendingSave
	nextSeq    uint64
}

// New creates a coordinator writing through st. bus may be nil to disable
// event publishing, clock may be nil to use the wall clock, and an
// interval <= 0 selects DefaultInterval.
func New(st store.Store, bus *events.Bus, clock Clock, interval time.Duration) *Coordinator {
	if clock == nil {
		clock = wallClock{}
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Coordinator{store: st, bus: bus, clock: clock, interval: interval}
}

// ActiveSlot returns the identifier of the currently active slot, or ""
// when no slot is loaded.
func (c *Coordinator) ActiveSlot() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeSlot
}

// ListSlots returns the backend's slot list, unmodified and uncached.
func (c *Coordinator) ListSlots() ([]models.SaveSlotMetadata, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.ListSlots()
}

// CreateSlot allocates a new slot. The active slot does not change.
func (c *Coordinator) CreateSlot(displayName string) (models.SaveSlotMetadata, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	meta, err := c.store.CreateSlot(displayName)
	if err != nil {
		return models.SaveSlotMetadata{}, err
	}
	c.publish(events.SlotCreated, meta.ID)
	return meta, nil
}

// ActivateSlot loads the slot into working memory and makes it the target
// of subsequent writes. A pending deferred write belongs to the previously
// active slot and is cancelled. The debounce window is global, not per-slot:
// switching slots does not reset it.
func (c *Coordinator) ActivateSlot(slotID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.LoadSlot(slotID); err != nil {
		return err
	}
	c.cancelPending()
	c.activeSlot = slotID
	c.publish(events.SlotActivated, slotID)
	return nil
}

// SaveNow writes data immediately, bypassing the debounce window. On success
// any pending deferred write is superseded and cancelled and the window
// restarts; on failure coordinator state is untouched, so a legitimate
// subsequent save is never suppressed.
func (c *Coordinator) SaveNow(data models.PlayerData) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saveNowLocked(data)
}

func (c *Coordinator) saveNowLocked(data models.PlayerData) error {
	if c.activeSlot == "" {
		return models.ErrNoActiveSlot
	}
	if err := c.store.WritePlayerData(data); err != nil {
		return err
	}
	c.cancelPending()
	c.lastSaveAt = c.clock.Now()
	c.publish(events.SaveCommitted, c.activeSlot)
	return nil
}

// DebouncedSave requests a write of data, issuing it immediately when the
// debounce window has elapsed (or never started) and otherwise deferring it
// to the end of the window. Calls inside one window coalesce: only the most
// recent payload is ever written.
func (c *Coordinator) DebouncedSave(data models.PlayerData) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.activeSlot == "" {
		return models.ErrNoActiveSlot
	}

	now := c.clock.Now()
	if c.lastSaveAt.IsZero() || now.Sub(c.lastSaveAt) >= c.interval {
		return c.saveNowLocked(data)
	}

	remaining := c.interval - now.Sub(c.lastSaveAt)
	c.cancelPending()
	c.nextSeq++
	p := &pendingSave{
		data:   data,
		slotID: c.activeSlot,
		fireAt: now.Add(remaining),
		seq:    c.nextSeq,
	}
	p.timer = c.clock.AfterFunc(remaining, func() { c.firePending(p.seq) })
	c.pending = p
	slog.Debug("save deferred", "slot", p.slotID, "fire_at", p.fireAt, "delay", remaining)
	return nil
}

// firePending runs on the timer's goroutine. The sequence check makes
// cancellation effective even when Stop loses the race against a timer that
// has already fired and is waiting on the mutex.
func (c *Coordinator) firePending(seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pending
	if p == nil || p.seq != seq {
		return
	}
	c.pending = nil
	if err := c.saveNowLocked(p.data); err != nil {
		// The caller is long gone; the window stays where it was, so the
		// next save request writes immediately instead of backing off.
		slog.Error("deferred save failed", "slot", p.slotID, "err", err)
	}
}

// DeleteSlot removes the slot from the backend. Deleting the active slot
// clears it and cancels any pending deferred write, which must never be
// delivered against a slot that no longer exists.
func (c *Coordinator) DeleteSlot(slotID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.DeleteSlot(slotID); err != nil {
		return err
	}
	if c.activeSlot == slotID {
		c.cancelPending()
		c.activeSlot = ""
	}
	c.publish(events.SlotDeleted, slotID)
	return nil
}

// Dispose cancels any pending deferred write. It is idempotent and safe to
// call with nothing pending.
func (c *Coordinator) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelPending()
}

func (c *Coordinator) cancelPending() {
	if c.pending != nil {
		c.pending.timer.Stop()
		c.pending = nil
	}
}

func (c *Coordinator) publish(t events.Type, slotID string) {
	if c.bus != nil {
		c.bus.Publish(events.Event{Type: t, SlotID: slotID, At: c.clock.Now()})
	}
}
