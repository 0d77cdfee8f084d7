package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var ErrNoMigrationsDir = errors.New("migrations directory not specified")

// RunMigrations executes every .sql file in dir in lexical order. Files must
// be idempotent since nothing records which ones already ran.
func RunMigrations(ctx context.Context, db *sql.DB, dir string, logger *slog.Logger) error {
	if dir == "" {
		return ErrNoMigrationsDir
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read migrations directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	if len(files) == 0 {
		logger.Warn("no migration files found", "dir", dir)
		return nil
	}

	for _, name := range files {
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("execute migration %s: %w", name, err)
		}
		logger.Info("applied migration", "file", name)
	}
	return nil
}
