package host

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/harun/phobos/pkg/plugin"
)

// BootItem is a command a plugin asked the host to run at startup
type BootItem struct {
	UUID        string
	PackageName string
	Command     string
	Priority    int
	Args        []plugin.Value
	CreatedAt   time.Time
}

// Store persists plugin configuration, system configuration and boot items
// in SQLite.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) the database at path. ":memory:"
// gives a private in-memory store.
func OpenStore(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("database path is required")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS plugin_config (
			package_name TEXT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (package_name, key)
		);

		CREATE TABLE IF NOT EXISTS sys_config (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS boot_items (
			uuid TEXT PRIMARY KEY,
			package_name TEXT NOT NULL,
			command TEXT NOT NULL,
			priority INTEGER NOT NULL,
			args TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_boot_items_package ON boot_items(package_name);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// GetConfig returns the value stored for key under packageName
func (s *Store) GetConfig(ctx context.Context, packageName, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM plugin_config WHERE package_name = ? AND key = ?",
		packageName, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read config %s/%s: %w", packageName, key, err)
	}
	return value, true, nil
}

// SetConfig stores value for key under packageName
func (s *Store) SetConfig(ctx context.Context, packageName, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO plugin_config (package_name, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(package_name, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, packageName, key, value, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to write config %s/%s: %w", packageName, key, err)
	}
	return nil
}

// DeleteConfig removes every config entry of packageName
func (s *Store) DeleteConfig(ctx context.Context, packageName string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM plugin_config WHERE package_name = ?", packageName); err != nil {
		return fmt.Errorf("failed to delete config of %s: %w", packageName, err)
	}
	return nil
}

// GetSysConfig returns the system value stored for key
func (s *Store) GetSysConfig(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM sys_config WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read system config %s: %w", key, err)
	}
	return value, true, nil
}

// SetSysConfig stores a system value
func (s *Store) SetSysConfig(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sys_config (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to write system config %s: %w", key, err)
	}
	return nil
}

// AddBootItem stores a boot item and returns it with a fresh UUID
func (s *Store) AddBootItem(ctx context.Context, packageName, command string, priority int, args []plugin.Value) (BootItem, error) {
	encoded, err := json.Marshal(args)
	if err != nil {
		return BootItem{}, fmt.Errorf("failed to encode boot arguments: %w", err)
	}

	item := BootItem{
		UUID:        uuid.New().String(),
		PackageName: packageName,
		Command:     command,
		Priority:    priority,
		Args:        args,
		CreatedAt:   time.Now(),
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO boot_items (uuid, package_name, command, priority, args, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, item.UUID, packageName, command, priority, string(encoded), item.CreatedAt.UnixNano())
	if err != nil {
		return BootItem{}, fmt.Errorf("failed to add boot item: %w", err)
	}

	return item, nil
}

// RemoveBootItem deletes the boot item id owned by packageName. It reports
// false when no such item exists.
func (s *Store) RemoveBootItem(ctx context.Context, packageName, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM boot_items WHERE uuid = ? AND package_name = ?", id, packageName)
	if err != nil {
		return false, fmt.Errorf("failed to remove boot item %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListBootItems returns the boot items of packageName, or of every plugin
// when packageName is empty. Higher priorities come first, then older items.
func (s *Store) ListBootItems(ctx context.Context, packageName string) ([]BootItem, error) {
	query := "SELECT uuid, package_name, command, priority, args, created_at FROM boot_items"
	var params []any
	if packageName != "" {
		query += " WHERE package_name = ?"
		params = append(params, packageName)
	}
	query += " ORDER BY priority DESC, created_at ASC"

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("failed to list boot items: %w", err)
	}
	defer rows.Close()

	var items []BootItem
	for rows.Next() {
		var (
			item    BootItem
			args    string
			created int64
		)
		if err := rows.Scan(&item.UUID, &item.PackageName, &item.Command, &item.Priority, &args, &created); err != nil {
			return nil, fmt.Errorf("failed to scan boot item: %w", err)
		}

		if err := json.Unmarshal([]byte(args), &item.Args); err != nil {
			return nil, fmt.Errorf("failed to decode boot arguments of %s: %w", item.UUID, err)
		}
		item.CreatedAt = time.Unix(0, created)

		items = append(items, item)
	}

	return items, rows.Err()
}

// DeleteBootItems removes every boot item of packageName
func (s *Store) DeleteBootItems(ctx context.Context, packageName string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM boot_items WHERE package_name = ?", packageName); err != nil {
		return fmt.Errorf("failed to delete boot items of %s: %w", packageName, err)
	}
	return nil
}
