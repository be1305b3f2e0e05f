package dict_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/kazuhideoki/voice-input/internal/dict"
)

func TestApplyReplacesAndCounts(t *testing.T) {
	t.Parallel()

	entries := []dict.WordEntry{
		{Surface: "foo", Replacement: "bar", Status: dict.StatusActive},
	}

	got := dict.Apply("foo bar foo", entries)
	if want := "bar bar bar"; got != want {
		t.Errorf("Apply() = %q, want %q", got, want)
	}
	if entries[0].Hits != 2 {
		t.Errorf("Hits = %d, want 2", entries[0].Hits)
	}
}

func TestApplySkipsDraftEntries(t *testing.T) {
	t.Parallel()

	entries := []dict.WordEntry{
		{Surface: "foo", Replacement: "bar", Status: dict.StatusDraft},
	}

	got := dict.Apply("foo bar", entries)
	if want := "foo bar"; got != want {
		t.Errorf("Apply() = %q, want %q", got, want)
	}
	if entries[0].Hits != 0 {
		t.Errorf("Hits = %d, want 0 for a draft entry", entries[0].Hits)
	}
}

func TestApplyLongestMatchWins(t *testing.T) {
	t.Parallel()

	entries := []dict.WordEntry{
		{Surface: "go", Replacement: "X", Status: dict.StatusActive},
		{Surface: "gopher", Replacement: "Y", Status: dict.StatusActive},
	}

	got := dict.Apply("gopher go", entries)
	if want := "Y X"; got != want {
		t.Errorf("Apply() = %q, want %q", got, want)
	}
	if entries[1].Hits != 1 || entries[0].Hits != 1 {
		t.Errorf("Hits = [%d, %d], want [1, 1]", entries[0].Hits, entries[1].Hits)
	}
}

func TestApplyDoesNotRescanReplacements(t *testing.T) {
	t.Parallel()

	entries := []dict.WordEntry{
		{Surface: "a", Replacement: "ab", Status: dict.StatusActive},
		{Surface: "ab", Replacement: "c", Status: dict.StatusActive},
	}

	// "a" is replaced with "ab"; the produced "ab" must not then match.
	got := dict.Apply("a", entries)
	if want := "ab"; got != want {
		t.Errorf("Apply() = %q, want %q", got, want)
	}
}

func TestApplyCaseSensitive(t *testing.T) {
	t.Parallel()

	entries := []dict.WordEntry{
		{Surface: "Tokyo", Replacement: "Kyoto", Status: dict.StatusActive},
	}

	got := dict.Apply("tokyo Tokyo", entries)
	if want := "tokyo Kyoto"; got != want {
		t.Errorf("Apply() = %q, want %q", got, want)
	}
}

func TestApplyMultiByteSurfaces(t *testing.T) {
	t.Parallel()

	entries := []dict.WordEntry{
		{Surface: "東京", Replacement: "京都", Status: dict.StatusActive},
	}

	got := dict.Apply("東京に行く", entries)
	if want := "京都に行く"; got != want {
		t.Errorf("Apply() = %q, want %q", got, want)
	}
}

func TestApplyNoEntries(t *testing.T) {
	t.Parallel()

	if got := dict.Apply("unchanged", nil); got != "unchanged" {
		t.Errorf("Apply() = %q, want input unchanged", got)
	}
}

func TestMemStoreRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := dict.NewMemStore(dict.WordEntry{Surface: "a", Replacement: "b", Status: dict.StatusActive})

	entries, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Load() = %d entries, want 1", len(entries))
	}

	entries[0].Hits = 5
	if err := store.Save(ctx, entries); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	reloaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if reloaded[0].Hits != 5 {
		t.Errorf("Hits = %d, want 5 after save", reloaded[0].Hits)
	}
}

func TestMemStoreLoadReturnsCopy(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := dict.NewMemStore(dict.WordEntry{Surface: "a", Replacement: "b", Status: dict.StatusActive})

	first, _ := store.Load(ctx)
	first[0].Surface = "mutated"

	second, _ := store.Load(ctx)
	if second[0].Surface != "a" {
		t.Errorf("Surface = %q, want stored value unaffected by caller mutation", second[0].Surface)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "dict.yaml")
	store := dict.NewFileStore(path)

	entries, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() on missing file error: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("Load() on missing file = %d entries, want 0", len(entries))
	}

	want := []dict.WordEntry{
		{Surface: "foo", Replacement: "bar", Status: dict.StatusActive, Hits: 3},
		{Surface: "baz", Replacement: "qux", Status: dict.StatusDraft},
	}
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("Load() = %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
