package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/installdeck/installdeck/internal/apierrors"
	"github.com/installdeck/installdeck/internal/catalog"
	"github.com/installdeck/installdeck/internal/engine"
	"github.com/installdeck/installdeck/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestStore builds a file-backed store with a small catalog: apt
// (default) and flatpak on ubuntu, plus firefox/git/vlc applications.
func newTestStore(t *testing.T) catalog.Store {
	t.Helper()

	store, err := catalog.NewFileCatalog(filepath.Join(t.TempDir(), "catalog.json"), "", testLogger())
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()

	sources := []*models.Source{
		{Slug: "apt", Name: "APT", InstallCmd: "apt install -y", RequireSudo: true, Priority: 10},
		{Slug: "flatpak", Name: "Flatpak", InstallCmd: "flatpak install -y flathub",
			SetupCmd: "flatpak remote-add --if-not-exists flathub https://flathub.org/repo/flathub.flatpakrepo", Priority: 5},
	}
	for _, s := range sources {
		if err := store.CreateSource(ctx, s); err != nil {
			t.Fatalf("failed to seed source %s: %v", s.Slug, err)
		}
	}

	platforms := []*models.Platform{
		{Slug: "ubuntu", Name: "Ubuntu", Sources: []models.PlatformSource{
			{SourceSlug: "apt", Priority: 10, IsDefault: true},
			{SourceSlug: "flatpak", Priority: 5},
		}},
		{Slug: "bare", Name: "Bare"},
	}
	for _, p := range platforms {
		if err := store.CreatePlatform(ctx, p); err != nil {
			t.Fatalf("failed to seed platform %s: %v", p.Slug, err)
		}
	}

	apps := []*models.Application{
		{ID: "firefox", Name: "Firefox", Packages: []models.Package{
			{SourceSlug: "apt", Identifier: "firefox", IsAvailable: true},
			{SourceSlug: "flatpak", Identifier: "org.mozilla.firefox", IsAvailable: true},
		}},
		{ID: "git", Name: "Git", Packages: []models.Package{
			{SourceSlug: "apt", Identifier: "git", IsAvailable: true},
		}},
		{ID: "vlc", Name: "VLC", Packages: []models.Package{
			{SourceSlug: "flatpak", Identifier: "org.videolan.VLC", IsAvailable: true},
		}},
	}
	for _, a := range apps {
		if err := store.CreateApplication(ctx, a); err != nil {
			t.Fatalf("failed to seed application %s: %v", a.ID, err)
		}
	}

	return store
}

func newGenerateHandler(t *testing.T) *GenerateHandler {
	t.Helper()
	logger := testLogger()
	return NewGenerateHandler(newTestStore(t), engine.New(logger), NewMetricsHandler(logger), logger)
}

func postGenerate(t *testing.T, handler *GenerateHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.Generate(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) apierrors.ErrorResponse {
	t.Helper()
	var resp apierrors.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp
}

func TestGenerateHandler_Success(t *testing.T) {
	handler := newGenerateHandler(t)

	rr := postGenerate(t, handler, `{"platformSlug":"ubuntu","applicationIds":["firefox","git","vlc"]}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("handler returned wrong status code: got %v want %v (body %s)", rr.Code, http.StatusOK, rr.Body.String())
	}

	var result engine.Result
	if err := json.NewDecoder(rr.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	wantCommands := []string{
		"sudo apt install -y firefox git",
		"flatpak install -y flathub org.videolan.VLC",
	}
	if len(result.Commands) != len(wantCommands) {
		t.Fatalf("got %d commands, want %d: %v", len(result.Commands), len(wantCommands), result.Commands)
	}
	for i, want := range wantCommands {
		if result.Commands[i] != want {
			t.Errorf("command[%d] = %q, want %q", i, result.Commands[i], want)
		}
	}
	if len(result.SetupCommands) != 1 {
		t.Errorf("got %d setup commands, want 1", len(result.SetupCommands))
	}
	if len(result.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}
	if len(result.Breakdown) != 2 {
		t.Errorf("got %d breakdown entries, want 2", len(result.Breakdown))
	}
}

func TestGenerateHandler_EmptyWarningsSerializeAsArray(t *testing.T) {
	handler := newGenerateHandler(t)

	rr := postGenerate(t, handler, `{"platformSlug":"ubuntu","applicationIds":["git"]}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("handler returned wrong status code: got %v want %v (body %s)", rr.Code, http.StatusOK, rr.Body.String())
	}

	// Inspect the raw body: every result array must serialize as [] when
	// empty, never null. Decoding into a struct would hide the difference.
	body := rr.Body.String()
	if !strings.Contains(body, `"warnings":[]`) {
		t.Errorf("warnings not serialized as empty array: %s", body)
	}
	if strings.Contains(body, "null") {
		t.Errorf("response contains null field: %s", body)
	}
}

func TestGenerateHandler_PreferredSource(t *testing.T) {
	handler := newGenerateHandler(t)

	rr := postGenerate(t, handler, `{"platformSlug":"ubuntu","applicationIds":["firefox"],"preferredSourceSlug":"flatpak"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusOK)
	}

	var result engine.Result
	if err := json.NewDecoder(rr.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(result.Commands) != 1 || result.Commands[0] != "flatpak install -y flathub org.mozilla.firefox" {
		t.Errorf("unexpected commands: %v", result.Commands)
	}
}

func TestGenerateHandler_PlatformNotFound(t *testing.T) {
	handler := newGenerateHandler(t)

	rr := postGenerate(t, handler, `{"platformSlug":"solaris","applicationIds":["git"]}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusNotFound)
	}

	resp := decodeError(t, rr)
	if resp.Error.Code != apierrors.ErrCodePlatformNotFound {
		t.Errorf("error code = %q, want PLATFORM_NOT_FOUND", resp.Error.Code)
	}
}

func TestGenerateHandler_PlatformNoSources(t *testing.T) {
	handler := newGenerateHandler(t)

	rr := postGenerate(t, handler, `{"platformSlug":"bare","applicationIds":["git"]}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusBadRequest)
	}

	resp := decodeError(t, rr)
	if resp.Error.Code != apierrors.ErrCodePlatformNoSources {
		t.Errorf("error code = %q, want PLATFORM_NO_SOURCES", resp.Error.Code)
	}
}

func TestGenerateHandler_ApplicationsNotFound(t *testing.T) {
	handler := newGenerateHandler(t)

	rr := postGenerate(t, handler, `{"platformSlug":"ubuntu","applicationIds":["nope","also-nope"]}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusNotFound)
	}

	resp := decodeError(t, rr)
	if resp.Error.Code != apierrors.ErrCodeApplicationsNotFound {
		t.Errorf("error code = %q, want APPLICATIONS_NOT_FOUND", resp.Error.Code)
	}
}

func TestGenerateHandler_ValidationErrors(t *testing.T) {
	handler := newGenerateHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{not json`},
		{"missing platform", `{"applicationIds":["git"]}`},
		{"empty application list", `{"platformSlug":"ubuntu","applicationIds":[]}`},
		{"blank application id", `{"platformSlug":"ubuntu","applicationIds":[""]}`},
		{"bad nix variant", `{"platformSlug":"ubuntu","applicationIds":["git"],"nixInstallerVariant":"nix-bogus"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := postGenerate(t, handler, tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestGenerateHandler_UnknownIDsIgnoredWhenSomeMatch(t *testing.T) {
	handler := newGenerateHandler(t)

	rr := postGenerate(t, handler, `{"platformSlug":"ubuntu","applicationIds":["git","unknown-app"]}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusOK)
	}

	var result engine.Result
	if err := json.NewDecoder(rr.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(result.Commands) != 1 || result.Commands[0] != "sudo apt install -y git" {
		t.Errorf("unexpected commands: %v", result.Commands)
	}
}
