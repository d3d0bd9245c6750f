package internal

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/starford/notebook/internal/notelist"
	"github.com/starford/notebook/internal/notestore"
	"github.com/starford/notebook/internal/storage"
	"github.com/starford/notebook/internal/vault"
)

// NewTextLogger returns the human-readable logger used by CLI commands.
func NewTextLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// OpenStore opens the configured SQLite note store.
func OpenStore(cfg *Config) (*notestore.Store, error) {
	store, err := notestore.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	return store, nil
}

// ListOptions converts the list section into view options.
func ListOptions(cfg *Config, logger *slog.Logger) ([]notelist.ViewOption, error) {
	loc, err := cfg.List.Location()
	if err != nil {
		return nil, fmt.Errorf("list timezone: %w", err)
	}
	return []notelist.ViewOption{
		notelist.WithLocation(loc),
		notelist.WithDayLayout(cfg.List.DayLayout),
		notelist.WithSearchDebounce(cfg.List.SearchDebounce),
		notelist.WithLogger(logger),
	}, nil
}

// OpenVault builds a vault over the configured directories, creating them
// when missing. withInbox controls whether the inbox directory is attached.
func OpenVault(cfg *Config, store vault.Notes, logger *slog.Logger, withInbox bool) (*vault.Vault, error) {
	export, err := openDir(cfg.Vault.ExportDir)
	if err != nil {
		return nil, fmt.Errorf("export dir: %w", err)
	}
	opts := []vault.Option{
		vault.WithTheme(cfg.Editor.Theme()),
		vault.WithLogger(logger),
	}
	if withInbox {
		inbox, err := openDir(cfg.Vault.InboxDir)
		if err != nil {
			return nil, fmt.Errorf("inbox dir: %w", err)
		}
		opts = append(opts, vault.WithInbox(inbox, cfg.Vault.InboxPattern))
	}
	return vault.New(store, export, opts...), nil
}

func openDir(path string) (*storage.FS, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, err
	}
	return storage.NewFS(path)
}
