package importer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"greensprint/internal/config"
	"greensprint/internal/logging"
	"greensprint/internal/notify"
	"greensprint/internal/store"
	"greensprint/internal/trees"
)

const (
	processedDirName = "processed"
	failedDirName    = "failed"

	// settleDelay is how long a file must sit unchanged before it is
	// processed. Copies into the watch directory arrive as a burst of
	// write events; processing too early reads a partial file.
	settleDelay = 2 * time.Second
)

// Result summarizes one processed import file.
type Result struct {
	File      string
	Imported  int
	Failed    int
	RowErrors []RowError
}

// Importer ingests CSV tree registrations from the configured import
// directory.
type Importer struct {
	cfg      *config.Config
	store    *store.Store
	trees    *trees.Service
	logger   *slog.Logger
	notifier notify.Service

	mu      sync.Mutex
	pending map[string]time.Time
}

// NewImporter constructs an importer with default dependencies.
func NewImporter(cfg *config.Config, st *store.Store, logger *slog.Logger) *Importer {
	return NewImporterWithDependencies(cfg, st, trees.NewService(cfg, st, logger), logger, notify.NewService(cfg))
}

// NewImporterWithDependencies allows injecting collaborators (used in tests).
func NewImporterWithDependencies(cfg *config.Config, st *store.Store, treeSvc *trees.Service, logger *slog.Logger, notifier notify.Service) *Importer {
	return &Importer{
		cfg:      cfg,
		store:    st,
		trees:    treeSvc,
		logger:   logging.NewComponentLogger(logger, "importer"),
		notifier: notifier,
		pending:  make(map[string]time.Time),
	}
}

// Run watches the import directory until the context is cancelled. New and
// rewritten CSV files are processed after a short settle delay, and a
// periodic rescan sweeps anything the watcher missed.
func (i *Importer) Run(ctx context.Context) error {
	dir := i.cfg.Paths.ImportDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create import directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	i.logger.Info("watching for import files", logging.String("dir", dir))
	i.Sweep(ctx)

	settle := time.NewTicker(settleDelay / 2)
	defer settle.Stop()

	rescan := time.NewTicker(rescanInterval(i.cfg))
	defer rescan.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !isImportFile(event.Name) {
				continue
			}
			i.mu.Lock()
			i.pending[event.Name] = time.Now()
			i.mu.Unlock()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			i.logger.Warn("watcher error", logging.Error(err))
		case <-settle.C:
			for _, path := range i.takeSettled() {
				i.process(ctx, path)
			}
		case <-rescan.C:
			i.Sweep(ctx)
		}
	}
}

// Sweep processes every CSV currently sitting in the import directory.
func (i *Importer) Sweep(ctx context.Context) {
	entries, err := os.ReadDir(i.cfg.Paths.ImportDir)
	if err != nil {
		i.logger.Warn("scan import directory", logging.Error(err))
		return
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !isImportFile(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	for _, name := range names {
		i.process(ctx, filepath.Join(i.cfg.Paths.ImportDir, name))
	}
}

// takeSettled removes and returns pending paths whose last write is older
// than the settle delay.
func (i *Importer) takeSettled() []string {
	i.mu.Lock()
	defer i.mu.Unlock()

	cutoff := time.Now().Add(-settleDelay)
	var ready []string
	for path, seen := range i.pending {
		if seen.Before(cutoff) {
			ready = append(ready, path)
			delete(i.pending, path)
		}
	}
	sort.Strings(ready)
	return ready
}

// process runs one file through ProcessFile and logs the outcome. Missing
// files are ignored; the sweep may race a file the watcher already handled.
func (i *Importer) process(ctx context.Context, path string) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return
	}
	result, err := i.ProcessFile(ctx, path)
	if err != nil {
		i.logger.Error("import failed",
			logging.String("file", filepath.Base(path)),
			logging.Error(err),
		)
		return
	}
	i.logger.Info("import finished",
		logging.String("file", filepath.Base(path)),
		logging.Int("imported", result.Imported),
		logging.Int("failed", result.Failed),
	)
}

// ProcessFile imports one CSV file. Rows that parse and register become
// trees; bad rows are collected per line. Files that yield at least one tree
// move to processed/, files that yield nothing move to failed/ with an
// .error report alongside.
func (i *Importer) ProcessFile(ctx context.Context, path string) (*Result, error) {
	result := &Result{File: filepath.Base(path)}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open import file: %w", err)
	}
	rows, rowErrs, parseErr := parseRows(file)
	file.Close()
	if parseErr != nil {
		result.Failed = 1
		result.RowErrors = []RowError{{Line: 0, Err: parseErr}}
		if err := i.moveFailed(path, result.RowErrors); err != nil {
			return nil, err
		}
		return result, nil
	}
	result.RowErrors = rowErrs
	result.Failed = len(rowErrs)

	for _, row := range rows {
		if err := i.registerRow(ctx, row); err != nil {
			result.Failed++
			result.RowErrors = append(result.RowErrors, RowError{Line: row.Line, Err: err})
			continue
		}
		result.Imported++
	}
	sort.Slice(result.RowErrors, func(a, b int) bool {
		return result.RowErrors[a].Line < result.RowErrors[b].Line
	})

	if result.Imported > 0 {
		if err := i.moveProcessed(path); err != nil {
			return nil, err
		}
	} else {
		if err := i.moveFailed(path, result.RowErrors); err != nil {
			return nil, err
		}
	}

	i.announce(ctx, result)
	return result, nil
}

// registerRow turns one parsed row into a tree registration.
func (i *Importer) registerRow(ctx context.Context, row Row) error {
	planter := row.PlantedBy
	if planter == "" {
		planter = i.cfg.Import.DefaultPlanter
	}
	if planter == "" {
		return fmt.Errorf("no planted_by and no default planter configured")
	}

	req := trees.RegisterRequest{
		Species:     row.Species,
		Description: row.Note,
		Planter:     planter,
		Lat:         row.Lat,
		Lng:         row.Lng,
		PlantedAt:   row.PlantedAt,
		Quiet:       true,
	}
	if row.Campaign != "" {
		campaign, err := i.store.GetCampaignByName(ctx, row.Campaign)
		if err != nil {
			return fmt.Errorf("look up campaign %q: %w", row.Campaign, err)
		}
		if campaign == nil {
			return fmt.Errorf("unknown campaign %q", row.Campaign)
		}
		req.CampaignID = campaign.ID
	}

	if _, err := i.trees.Register(ctx, req); err != nil {
		return err
	}
	return nil
}

func (i *Importer) moveProcessed(path string) error {
	return moveTo(path, filepath.Join(filepath.Dir(path), processedDirName))
}

// moveFailed parks the file under failed/ and writes a sibling .error report
// listing what went wrong with each row.
func (i *Importer) moveFailed(path string, rowErrs []RowError) error {
	dir := filepath.Join(filepath.Dir(path), failedDirName)
	if err := moveTo(path, dir); err != nil {
		return err
	}

	var report strings.Builder
	for _, rowErr := range rowErrs {
		report.WriteString(rowErr.Error())
		report.WriteString("\n")
	}
	reportPath := filepath.Join(dir, filepath.Base(path)+".error")
	if err := os.WriteFile(reportPath, []byte(report.String()), 0o644); err != nil {
		return fmt.Errorf("write error report: %w", err)
	}
	return nil
}

// announce publishes one push notification per finished file.
func (i *Importer) announce(ctx context.Context, result *Result) {
	err := i.notifier.Publish(ctx, notify.EventImportCompleted, notify.Payload{
		"file":     result.File,
		"imported": strconv.Itoa(result.Imported),
		"failed":   strconv.Itoa(result.Failed),
	})
	if err != nil {
		i.logger.Warn("publish import notification", logging.Error(err))
	}
}

func moveTo(path, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	dest := filepath.Join(dir, filepath.Base(path))
	if err := os.Rename(path, dest); err != nil {
		return fmt.Errorf("move %s: %w", filepath.Base(path), err)
	}
	return nil
}

func isImportFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv")
}

func rescanInterval(cfg *config.Config) time.Duration {
	seconds := cfg.Workflow.ImportRescanInterval
	if seconds <= 0 {
		seconds = 300
	}
	return time.Duration(seconds) * time.Second
}
