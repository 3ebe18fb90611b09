package storage

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStoreWithFs(afero.NewMemMapFs(), "/data/subtitles")
	if err != nil {
		t.Fatalf("NewStoreWithFs: %v", err)
	}
	return store
}

func TestStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)

	if err := store.SaveOriginal("doc-1", "1\n00:00:01,000 --> 00:00:02,000\nHello\n"); err != nil {
		t.Fatalf("SaveOriginal: %v", err)
	}
	got, err := store.ReadOriginal("doc-1")
	if err != nil {
		t.Fatalf("ReadOriginal: %v", err)
	}
	if !strings.Contains(got, "Hello") {
		t.Fatalf("original content = %q", got)
	}

	if store.HasTranslated("doc-1") {
		t.Fatal("translation reported before one was written")
	}
	if err := store.WriteTranslated("doc-1", "1\n00:00:01,000 --> 00:00:02,000\nBonjour\n"); err != nil {
		t.Fatalf("WriteTranslated: %v", err)
	}
	if !store.HasTranslated("doc-1") {
		t.Fatal("translation not reported after write")
	}
	translated, err := store.ReadTranslated("doc-1")
	if err != nil {
		t.Fatalf("ReadTranslated: %v", err)
	}
	if !strings.Contains(translated, "Bonjour") {
		t.Fatalf("translated content = %q", translated)
	}
}

func TestStoreWriteTranslatedReplaces(t *testing.T) {
	store := newTestStore(t)
	if err := store.SaveOriginal("doc-1", "orig"); err != nil {
		t.Fatalf("SaveOriginal: %v", err)
	}
	if err := store.WriteTranslated("doc-1", "first"); err != nil {
		t.Fatalf("WriteTranslated: %v", err)
	}
	if err := store.WriteTranslated("doc-1", "second"); err != nil {
		t.Fatalf("WriteTranslated: %v", err)
	}
	got, err := store.ReadTranslated("doc-1")
	if err != nil {
		t.Fatalf("ReadTranslated: %v", err)
	}
	if got != "second" {
		t.Fatalf("translation = %q, want %q", got, "second")
	}
}

func TestStoreRemove(t *testing.T) {
	store := newTestStore(t)
	if err := store.SaveOriginal("doc-1", "orig"); err != nil {
		t.Fatalf("SaveOriginal: %v", err)
	}
	if err := store.Remove("doc-1"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := store.ReadOriginal("doc-1"); err == nil {
		t.Fatal("original still readable after Remove")
	}
	if store.HasTranslated("doc-1") {
		t.Fatal("translation reported after Remove")
	}
}

func TestStoreReadMissing(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.ReadOriginal("nope"); err == nil {
		t.Fatal("expected error for missing document")
	}
	if _, err := store.ReadTranslated("nope"); err == nil {
		t.Fatal("expected error for missing translation")
	}
}

func TestStoreRejectsUnsafeIDs(t *testing.T) {
	store := newTestStore(t)
	for _, id := range []string{"", ".", "..", "../etc", "a/b", `a\b`} {
		if err := store.SaveOriginal(id, "x"); err == nil {
			t.Fatalf("id %q accepted", id)
		}
	}
}

func TestStoreTranslatedPath(t *testing.T) {
	store := newTestStore(t)
	got := store.TranslatedPath("doc-1")
	if !strings.Contains(got, "doc-1") || !strings.HasSuffix(got, "translated.srt") {
		t.Fatalf("TranslatedPath = %q", got)
	}
}
