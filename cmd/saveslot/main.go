// Command saveslot is a small admin tool for the save-slot store.
// It lists, creates, and deletes slots, and can watch the saves directory
// for changes made by other processes.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/pixelgrove/saveslot-go/internal/config"
	"github.com/pixelgrove/saveslot-go/internal/events"
	"github.com/pixelgrove/saveslot-go/internal/store"
	"github.com/pixelgrove/saveslot-go/internal/watch"
)

func main() {
	var (
		dir   = pflag.String("dir", "", "base storage directory (default: $SAVESLOT_DIR or the user config dir)")
		debug = pflag.Bool("debug", false, "enable debug logging")
	)
	pflag.Usage = usage
	pflag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "saveslot:", err)
		os.Exit(1)
	}

	// Configure logging
	logLevel := slog.LevelInfo
	if *debug || cfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	// Resolve storage directory: flag > environment > user config dir
	baseDir := *dir
	if baseDir == "" {
		baseDir = cfg.BaseDir
	}
	if baseDir == "" {
		ucd, err := os.UserConfigDir()
		if err != nil {
			slog.Error("cannot determine config directory", "err", err)
			os.Exit(1)
		}
		baseDir = ucd
	}

	st, err := store.Open(baseDir)
	if err != nil {
		slog.Error("cannot open slot store", "err", err)
		os.Exit(1)
	}
	defer st.Close()

	args := pflag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	switch args[0] {
	case "ls":
		err = runLs(st)
	case "create":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "saveslot: create needs a display name")
			os.Exit(2)
		}
		err = runCreate(st, args[1])
	case "rm":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "saveslot: rm needs a slot id")
			os.Exit(2)
		}
		err = st.DeleteSlot(args[1])
	case "watch":
		err = runWatch(st)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		slog.Error("command failed", "cmd", args[0], "err", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: saveslot [flags] <command>

commands:
  ls             list save slots, most recently played first
  create <name>  create a new save slot
  rm <id>        delete a save slot
  watch          log external changes to the saves directory until interrupted

flags:
`)
	pflag.PrintDefaults()
}

func runLs(st *store.SQLiteStore) error {
	slots, err := st.ListSlots()
	if err != nil {
		return err
	}
	for _, s := range slots {
		fmt.Printf("%s  %-20s  %s\n", s.ID, s.Name, s.LastPlayed)
	}
	return nil
}

func runCreate(st *store.SQLiteStore, name string) error {
	meta, err := st.CreateSlot(name)
	if err != nil {
		return err
	}
	fmt.Println(meta.ID)
	return nil
}

func runWatch(st *store.SQLiteStore) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	bus := events.NewBus()
	ch := bus.Subscribe("cli-watch")
	defer bus.Unsubscribe("cli-watch")

	w, err := watch.New(st.SavesDir(), bus)
	if err != nil {
		return err
	}
	defer w.Close()

	slog.Info("watching saves directory", "dir", st.SavesDir())
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-ch:
			slog.Info("slot store changed", "slot", ev.SlotID)
		}
	}
}
