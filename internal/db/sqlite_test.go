package db

import (
	"path/filepath"
	"testing"

	"github.com/lingosub/backend/internal/auth"
)

func newTestDB(t *testing.T) *Database {
	t.Helper()
	database, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func TestEnsureAdmin(t *testing.T) {
	d := newTestDB(t)
	if err := d.EnsureAdmin("admin", "changeme"); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}

	user, err := d.GetUserByUsername("admin")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if user.Role != "admin" {
		t.Fatalf("role = %q", user.Role)
	}
	if !auth.CheckPassword("changeme", user.Password) {
		t.Fatal("stored password does not verify")
	}

	// A second call must not create another admin.
	if err := d.EnsureAdmin("other", "pw"); err != nil {
		t.Fatalf("EnsureAdmin again: %v", err)
	}
	count, err := d.CountAdmins()
	if err != nil {
		t.Fatalf("CountAdmins: %v", err)
	}
	if count != 1 {
		t.Fatalf("admins = %d", count)
	}
}

func TestUserCRUD(t *testing.T) {
	d := newTestDB(t)
	hash, _ := auth.HashPassword("pw")
	id, err := d.CreateUser("alice", hash, "editor")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	user, err := d.GetUserByID(id)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if user.Username != "alice" || user.Role != "editor" {
		t.Fatalf("user = %+v", user)
	}

	if err := d.UpdateUser(id, "alice", "viewer"); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	user, _ = d.GetUserByID(id)
	if user.Role != "viewer" {
		t.Fatalf("role after update = %q", user.Role)
	}

	newHash, _ := auth.HashPassword("pw2")
	if err := d.UpdateUserPassword(id, newHash); err != nil {
		t.Fatalf("UpdateUserPassword: %v", err)
	}
	user, _ = d.GetUserByID(id)
	if !auth.CheckPassword("pw2", user.Password) {
		t.Fatal("new password does not verify")
	}

	users, err := d.ListUsers()
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("users = %d", len(users))
	}

	if err := d.DeleteUser(id); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, err := d.GetUserByID(id); err == nil {
		t.Fatal("user still present after delete")
	}

	// Duplicate usernames are rejected by the unique constraint.
	if _, err := d.CreateUser("bob", hash, "viewer"); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := d.CreateUser("bob", hash, "viewer"); err == nil {
		t.Fatal("duplicate username accepted")
	}
}

func TestSettings(t *testing.T) {
	d := newTestDB(t)
	if got := d.GetSetting("default_target_lang", "en"); got != "en" {
		t.Fatalf("default = %q", got)
	}
	if err := d.SetSetting("default_target_lang", "ko"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	if err := d.SetSetting("default_target_lang", "ja"); err != nil {
		t.Fatalf("SetSetting overwrite: %v", err)
	}
	if got := d.GetSetting("default_target_lang", "en"); got != "ja" {
		t.Fatalf("setting = %q", got)
	}

	all, err := d.GetAllSettings()
	if err != nil {
		t.Fatalf("GetAllSettings: %v", err)
	}
	if all["default_target_lang"] != "ja" {
		t.Fatalf("all = %+v", all)
	}
}

func TestDocuments(t *testing.T) {
	d := newTestDB(t)
	if err := d.CreateDocument("doc-1", "movie.srt", 42); err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}

	doc, err := d.GetDocument("doc-1")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if doc.Name != "movie.srt" || doc.EntryCount != 42 {
		t.Fatalf("doc = %+v", doc)
	}

	docs, err := d.ListDocuments()
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != "doc-1" {
		t.Fatalf("docs = %+v", docs)
	}

	if err := d.DeleteDocument("doc-1"); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	if _, err := d.GetDocument("doc-1"); err == nil {
		t.Fatal("document still present after delete")
	}

	docs, _ = d.ListDocuments()
	if len(docs) != 0 {
		t.Fatalf("docs after delete = %+v", docs)
	}
}

func TestBackends(t *testing.T) {
	d := newTestDB(t)
	id, err := d.CreateBackend("Ollama (Local)", "127.0.0.1:11434", "llama3", 0)
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}

	b, err := d.GetBackend(id)
	if err != nil {
		t.Fatalf("GetBackend: %v", err)
	}
	// The URL is stored exactly as entered, without a scheme here.
	if b.URL != "127.0.0.1:11434" || b.Model != "llama3" || !b.Enabled {
		t.Fatalf("backend = %+v", b)
	}

	if err := d.UpdateBackend(id, "Ollama (LAN)", "http://10.0.0.2:11434", "mistral", false, 5); err != nil {
		t.Fatalf("UpdateBackend: %v", err)
	}
	b, _ = d.GetBackend(id)
	if b.Name != "Ollama (LAN)" || b.Enabled || b.Priority != 5 {
		t.Fatalf("backend after update = %+v", b)
	}

	list, err := d.ListBackends()
	if err != nil {
		t.Fatalf("ListBackends: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("backends = %+v", list)
	}

	if err := d.DeleteBackend(id); err != nil {
		t.Fatalf("DeleteBackend: %v", err)
	}
	if _, err := d.GetBackend(id); err == nil {
		t.Fatal("backend still present after delete")
	}
}

func TestSeedDefaultBackend(t *testing.T) {
	d := newTestDB(t)
	if err := d.SeedDefaultBackend("http://127.0.0.1:11434"); err != nil {
		t.Fatalf("SeedDefaultBackend: %v", err)
	}
	list, _ := d.ListBackends()
	if len(list) != 1 || list[0].URL != "http://127.0.0.1:11434" {
		t.Fatalf("seeded backends = %+v", list)
	}

	// Seeding is first-run only.
	if err := d.SeedDefaultBackend("http://other:11434"); err != nil {
		t.Fatalf("SeedDefaultBackend again: %v", err)
	}
	list, _ = d.ListBackends()
	if len(list) != 1 {
		t.Fatalf("second seed added a backend: %+v", list)
	}
}

func TestTranslationPresets(t *testing.T) {
	d := newTestDB(t)
	id, err := d.CreateTranslationPreset("Anime", "Keep honorifics untranslated.")
	if err != nil {
		t.Fatalf("CreateTranslationPreset: %v", err)
	}

	presets, err := d.ListTranslationPresets()
	if err != nil {
		t.Fatalf("ListTranslationPresets: %v", err)
	}
	if len(presets) != 1 || presets[0].Name != "Anime" {
		t.Fatalf("presets = %+v", presets)
	}

	if err := d.UpdateTranslationPreset(id, "Anime (ko)", "Keep honorifics."); err != nil {
		t.Fatalf("UpdateTranslationPreset: %v", err)
	}
	presets, _ = d.ListTranslationPresets()
	if presets[0].Name != "Anime (ko)" || presets[0].Prompt != "Keep honorifics." {
		t.Fatalf("preset after update = %+v", presets[0])
	}

	if err := d.DeleteTranslationPreset(id); err != nil {
		t.Fatalf("DeleteTranslationPreset: %v", err)
	}
	presets, _ = d.ListTranslationPresets()
	if len(presets) != 0 {
		t.Fatalf("presets after delete = %+v", presets)
	}
}
