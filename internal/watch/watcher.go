// Package watch notices external changes to the saves directory, such as a
// file sync tool replacing slot databases behind the running process.
package watch

import (
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pixelgrove/saveslot-go/internal/events"
)

// Watcher publishes a StoreChanged event whenever a slot database in the
// watched directory is created, written, or removed. It is advisory only and
// never mutates coordinator or store state.
type Watcher struct {
	dir  string
	bus  *events.Bus
	fsw  *fsnotify.Watcher
	done chan struct{}
}

// New starts watching dir and publishing to bus.
// Call Close to stop the watcher.
func New(dir string, bus *events.Bus) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w := &Watcher{dir: dir, bus: bus, fsw: fsw, done: make(chan struct{})}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !isSlotFile(ev.Name) {
				continue
			}
			if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) ||
				ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				slog.Debug("watch: slot store changed", "file", ev.Name, "op", ev.Op.String())
				w.bus.Publish(events.Event{
					Type:   events.StoreChanged,
					SlotID: slotIDFromPath(ev.Name),
					At:     time.Now(),
				})
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("watch: watcher error", "err", err)
		}
	}
}

// Close stops the watcher and waits for the event loop to exit.
func (w *Watcher) Close() error {
	err := w.fsw.Close()
	<-w.done
	return err
}

// isSlotFile reports whether path names a slot payload database. The
// metadata database and SQLite WAL/SHM sidecars are not slot files.
func isSlotFile(path string) bool {
	base := filepath.Base(path)
	return strings.HasSuffix(base, ".db") && base != "metadata.db"
}

func slotIDFromPath(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ".db")
}
