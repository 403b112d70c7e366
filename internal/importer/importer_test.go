package importer_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"greensprint/internal/community"
	"greensprint/internal/config"
	"greensprint/internal/importer"
	"greensprint/internal/logging"
	"greensprint/internal/notify"
	"greensprint/internal/store"
	"greensprint/internal/testsupport"
	"greensprint/internal/trees"
)

type capturingNotifier struct {
	events []notify.Event
}

func (c *capturingNotifier) Publish(_ context.Context, event notify.Event, _ notify.Payload) error {
	c.events = append(c.events, event)
	return nil
}

func newImporter(t *testing.T, cfg *config.Config, st *store.Store) (*importer.Importer, *capturingNotifier) {
	t.Helper()
	notifier := &capturingNotifier{}
	communitySvc := community.NewServiceWithDependencies(cfg, st, logging.NewNop(), notifier)
	treeSvc := trees.NewServiceWithDependencies(cfg, st, logging.NewNop(), notifier, communitySvc)
	return importer.NewImporterWithDependencies(cfg, st, treeSvc, logging.NewNop(), notifier), notifier
}

func importPath(cfg *config.Config, name string) string {
	return filepath.Join(cfg.Paths.ImportDir, name)
}

func TestProcessFileRegistersRows(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	imp, notifier := newImporter(t, cfg, st)

	path := importPath(cfg, "batch.csv")
	testsupport.WriteFile(t, path, strings.Join([]string{
		"species,lat,lng,planted_by,planted_at,note",
		"Quercus robur,52.52,13.405,alice,2026-03-01,Tiergarten edge",
		"Tilia cordata,,,bob,,",
		"",
	}, "\n"))

	result, err := imp.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if result.Imported != 2 || result.Failed != 0 {
		t.Fatalf("expected 2 imported / 0 failed, got %d / %d", result.Imported, result.Failed)
	}

	all, err := st.ListTrees(context.Background(), store.ListTreesOptions{})
	if err != nil {
		t.Fatalf("ListTrees failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 trees in store, got %d", len(all))
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected source file moved, stat err=%v", err)
	}
	moved := filepath.Join(cfg.Paths.ImportDir, "processed", "batch.csv")
	if _, err := os.Stat(moved); err != nil {
		t.Fatalf("expected file in processed/, got %v", err)
	}

	var imports, treeEvents int
	for _, event := range notifier.events {
		switch event {
		case notify.EventImportCompleted:
			imports++
		case notify.EventTreeRegistered:
			treeEvents++
		}
	}
	if imports != 1 {
		t.Fatalf("expected one import notification, got %d", imports)
	}
	if treeEvents != 0 {
		t.Fatalf("expected no per-tree notifications during import, got %d", treeEvents)
	}
}

func TestProcessFileCollectsRowErrors(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	imp, _ := newImporter(t, cfg, st)

	path := importPath(cfg, "mixed.csv")
	testsupport.WriteFile(t, path, strings.Join([]string{
		"species,lat,lng,planted_by,campaign",
		"Acer campestre,48.13,11.58,alice,",
		",48.13,11.58,alice,",
		"Fagus sylvatica,not-a-number,11.58,alice,",
		"Betula pendula,48.10,11.50,alice,No Such Campaign",
	}, "\n"))

	result, err := imp.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if result.Imported != 1 {
		t.Fatalf("expected 1 imported, got %d", result.Imported)
	}
	if result.Failed != 3 {
		t.Fatalf("expected 3 failed, got %d", result.Failed)
	}
	lines := make([]int, 0, len(result.RowErrors))
	for _, rowErr := range result.RowErrors {
		lines = append(lines, rowErr.Line)
	}
	if len(lines) != 3 || lines[0] != 3 || lines[1] != 4 || lines[2] != 5 {
		t.Fatalf("unexpected error lines %v", lines)
	}

	moved := filepath.Join(cfg.Paths.ImportDir, "processed", "mixed.csv")
	if _, err := os.Stat(moved); err != nil {
		t.Fatalf("expected partially imported file in processed/, got %v", err)
	}
}

func TestProcessFileMovesHopelessFilesToFailed(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	imp, _ := newImporter(t, cfg, st)

	path := importPath(cfg, "bad.csv")
	testsupport.WriteFile(t, path, "id,name\n1,not a tree file\n")

	result, err := imp.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if result.Imported != 0 {
		t.Fatalf("expected nothing imported, got %d", result.Imported)
	}

	moved := filepath.Join(cfg.Paths.ImportDir, "failed", "bad.csv")
	if _, err := os.Stat(moved); err != nil {
		t.Fatalf("expected file in failed/, got %v", err)
	}
	report, err := os.ReadFile(moved + ".error")
	if err != nil {
		t.Fatalf("expected error report, got %v", err)
	}
	if !strings.Contains(string(report), "species") {
		t.Fatalf("report should mention the missing species column, got %q", report)
	}
}

func TestProcessFileFallsBackToDefaultPlanter(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Import.DefaultPlanter = "city-crew"
	st := testsupport.MustOpenStore(t, cfg)
	imp, _ := newImporter(t, cfg, st)

	path := importPath(cfg, "anonymous.csv")
	testsupport.WriteFile(t, path, "species\nPinus sylvestris\n")

	result, err := imp.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if result.Imported != 1 {
		t.Fatalf("expected 1 imported, got %d", result.Imported)
	}

	user, err := st.GetUserByUsername(context.Background(), "city_crew")
	if err != nil || user == nil {
		t.Fatalf("expected default planter user, got %v %v", user, err)
	}
}

func TestProcessFileResolvesCampaignByName(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	imp, _ := newImporter(t, cfg, st)

	ctx := context.Background()
	campaign := &store.Campaign{
		ID:     "11111111-1111-1111-1111-111111111111",
		Name:   "Spring Sprint",
		Status: store.CampaignStatusActive,
	}
	if _, err := st.InsertCampaign(ctx, campaign); err != nil {
		t.Fatalf("InsertCampaign failed: %v", err)
	}

	path := importPath(cfg, "campaign.csv")
	testsupport.WriteFile(t, path, strings.Join([]string{
		"species,planted_by,campaign",
		"Salix alba,alice,Spring Sprint",
	}, "\n"))

	if _, err := imp.ProcessFile(ctx, path); err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}

	all, err := st.ListTrees(ctx, store.ListTreesOptions{CampaignID: campaign.ID})
	if err != nil {
		t.Fatalf("ListTrees failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected campaign tree, got %d", len(all))
	}
}

func TestSweepProcessesEveryPendingFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	imp, notifier := newImporter(t, cfg, st)

	testsupport.WriteFile(t, importPath(cfg, "one.csv"), "species,planted_by\nAlnus glutinosa,alice\n")
	testsupport.WriteFile(t, importPath(cfg, "two.csv"), "species,planted_by\nCarpinus betulus,bob\n")
	testsupport.WriteFile(t, importPath(cfg, "notes.txt"), "not an import file\n")

	imp.Sweep(context.Background())

	all, err := st.ListTrees(context.Background(), store.ListTreesOptions{})
	if err != nil {
		t.Fatalf("ListTrees failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 trees after sweep, got %d", len(all))
	}
	if _, err := os.Stat(importPath(cfg, "notes.txt")); err != nil {
		t.Fatalf("non-CSV file should be left alone, got %v", err)
	}

	var imports int
	for _, event := range notifier.events {
		if event == notify.EventImportCompleted {
			imports++
		}
	}
	if imports != 2 {
		t.Fatalf("expected one notification per file, got %d", imports)
	}
}
