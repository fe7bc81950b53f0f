package enemy

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemplates(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "enemies.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadCatalogFromYAML(t *testing.T) {
	path := writeTemplates(t, `
enemies:
  slime:
    name: Slime
    base_hp: 20
    base_attack: 4
    base_xp: 8
    base_gold: 3
    min_level: 1
    max_level: 4
    spawn_weight: 50
  goblin:
    name: Goblin
    base_hp: 30
    min_level: 2
    max_level: 6
    spawn_weight: 25
`)

	catalog, err := LoadCatalogFromYAML(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if catalog.Count() != 2 {
		t.Errorf("expected 2 templates, got %d", catalog.Count())
	}

	slime, ok := catalog.Get("slime")
	if !ok {
		t.Fatal("expected to find 'slime'")
	}
	if slime.Key != "slime" {
		t.Errorf("expected key backfilled to 'slime', got %q", slime.Key)
	}
	if slime.BaseHP != 20 {
		t.Errorf("expected base_hp 20, got %d", slime.BaseHP)
	}
}

func TestLoadCatalogAutoCorrectsLevelRange(t *testing.T) {
	path := writeTemplates(t, `
enemies:
  broken:
    name: Broken
    base_hp: 10
    min_level: 5
    max_level: 2
`)

	catalog, err := LoadCatalogFromYAML(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	template, _ := catalog.Get("broken")
	if template.MaxLevel != 5 {
		t.Errorf("expected max_level corrected to 5, got %d", template.MaxLevel)
	}
}

func TestLoadCatalogMissingLevelsDefault(t *testing.T) {
	path := writeTemplates(t, `
enemies:
  bare:
    name: Bare
    base_hp: 10
`)

	catalog, err := LoadCatalogFromYAML(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	template, _ := catalog.Get("bare")
	if template.MinLevel != 1 || template.MaxLevel != 1 {
		t.Errorf("expected level range [1, 1], got [%d, %d]", template.MinLevel, template.MaxLevel)
	}
}

func TestLoadCatalogRejectsNonPositiveHP(t *testing.T) {
	path := writeTemplates(t, `
enemies:
  ghost:
    name: Ghost
    base_hp: 0
`)

	if _, err := LoadCatalogFromYAML(path); err == nil {
		t.Error("expected error for non-positive base_hp")
	}
}

func TestLoadCatalogMissingFile(t *testing.T) {
	if _, err := LoadCatalogFromYAML("/nonexistent/enemies.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}
