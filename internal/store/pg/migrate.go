package pg

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/dropDatabas3/portalgate/internal/observability/logger"
)

// RunMigrations aplica en orden los archivos *_up.sql del filesystem dado
// (normalmente el embed de migrations/postgres). Las sentencias son
// idempotentes, correr dos veces es seguro.
func (s *Store) RunMigrations(ctx context.Context, fsys fs.FS) error {
	return s.runMigrations(ctx, fsys, "_up.sql", false)
}

// RunMigrationsDown aplica los *_down.sql en orden inverso.
func (s *Store) RunMigrationsDown(ctx context.Context, fsys fs.FS) error {
	return s.runMigrations(ctx, fsys, "_down.sql", true)
}

func (s *Store) runMigrations(ctx context.Context, fsys fs.FS, suffix string, reverse bool) error {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return err
	}
	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(strings.ToLower(e.Name()), suffix) {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	if reverse {
		for i, j := 0, len(files)-1; i < j; i, j = i+1, j-1 {
			files[i], files[j] = files[j], files[i]
		}
	}
	for _, f := range files {
		b, err := fs.ReadFile(fsys, f)
		if err != nil {
			return err
		}
		if _, err := s.pool.Exec(ctx, string(b)); err != nil {
			return fmt.Errorf("exec %s: %w", f, err)
		}
		logger.L().Info("migration applied", logger.Component("pg"), logger.Op(f))
	}
	return nil
}
