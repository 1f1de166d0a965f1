package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"circuitflow/store"
	"circuitflow/types"

	"github.com/prometheus/client_golang/prometheus"
)

var ErrNoSeedFiles = errors.New("no .sql seed files found")

var FilesApplied = prometheus.NewCounter(prometheus.CounterOpts{
	Namespace: "circuitflow",
	Name:      "seed_files_applied_total",
	Help:      "Seed files applied successfully.",
})

// SeedError names the seed file that stopped the run.
type SeedError struct {
	File string
	Err  error
}

func (e *SeedError) Error() string {
	return fmt.Sprintf("seed %s: %v", e.File, e.Err)
}

func (e *SeedError) Unwrap() error {
	return e.Err
}

// Service applies seed files to the document store. Runs must not overlap;
// nothing here locks the seed directory.
type Service struct {
	logger *slog.Logger
	store  store.DocumentStorer
}

func New(storer store.DocumentStorer) *Service {
	return &Service{
		logger: slog.Default(),
		store:  storer,
	}
}

// SeedFiles lists the .sql files of dir sorted by file name.
func SeedFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".sql") {
			continue
		}
		files = append(files, e.Name())
	}
	sort.Strings(files)
	return files, nil
}

// Apply runs every seed file of dir in order, each in its own transaction.
// The first failure stops the run; files after it are not touched.
func (s *Service) Apply(ctx context.Context, dir string) ([]string, error) {
	files, err := SeedFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("read seed dir: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoSeedFiles, dir)
	}

	s.logger.Info("seeding database", "dir", dir, "files", len(files))
	applied := make([]string, 0, len(files))
	for _, name := range files {
		s.logger.Info("running seed", "file", name)
		script, err := fs.ReadFile(os.DirFS(dir), name)
		if err != nil {
			return applied, &SeedError{File: name, Err: err}
		}
		if err := s.store.ApplyBatch(ctx, string(script)); err != nil {
			s.logger.Error("seed failed", "file", name, "error", err)
			return applied, &SeedError{File: name, Err: err}
		}
		FilesApplied.Inc()
		applied = append(applied, name)
		s.logger.Info("completed seed", "file", name)
	}
	s.logger.Info("database seeded successfully", "applied", len(applied))
	return applied, nil
}

// Verify reads the catalog back after seeding.
func (s *Service) Verify(ctx context.Context) ([]types.DocumentSummary, error) {
	docs, err := s.store.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("read back documents: %w", err)
	}
	for _, d := range docs {
		s.logger.Info("document in database", "doc", fmt.Sprintf("%s: %s (%s)", d.ID, d.Title, d.Type))
	}
	return docs, nil
}
