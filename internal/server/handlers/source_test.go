package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/installdeck/installdeck/internal/apierrors"
	"github.com/installdeck/installdeck/internal/models"
)

// newSourceRouter mounts the source handler on a chi router so URL
// parameters resolve the same way they do in the real server.
func newSourceRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := testLogger()
	handler := NewSourceHandler(newTestStore(t), NewMetricsHandler(logger), logger)

	r := chi.NewRouter()
	r.Route("/api/v1/sources", func(r chi.Router) {
		r.Get("/", handler.ListSources)
		r.Post("/", handler.CreateSource)
		r.Get("/{slug}", handler.GetSource)
		r.Put("/{slug}", handler.UpdateSource)
		r.Delete("/{slug}", handler.DeleteSource)
	})
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestSourceHandler_Create(t *testing.T) {
	router := newSourceRouter(t)

	rr := doJSON(t, router, http.MethodPost, "/api/v1/sources",
		`{"slug":"brew","name":"Homebrew","installCmd":"brew install","priority":8}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create returned %v, want %v (body %s)", rr.Code, http.StatusCreated, rr.Body.String())
	}

	var created models.Source
	if err := json.NewDecoder(rr.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if created.Slug != "brew" || created.InstallCmd != "brew install" {
		t.Errorf("unexpected created source: %+v", created)
	}

	// Duplicate slug conflicts
	rr = doJSON(t, router, http.MethodPost, "/api/v1/sources",
		`{"slug":"brew","name":"Homebrew","installCmd":"brew install","priority":8}`)
	if rr.Code != http.StatusConflict {
		t.Errorf("duplicate create returned %v, want %v", rr.Code, http.StatusConflict)
	}
}

func TestSourceHandler_CreateValidation(t *testing.T) {
	router := newSourceRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{oops`},
		{"bad slug", `{"slug":"Bad Slug","name":"X","installCmd":"x install"}`},
		{"missing install cmd", `{"slug":"choco","name":"Chocolatey"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doJSON(t, router, http.MethodPost, "/api/v1/sources", tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("create returned %v, want %v", rr.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestSourceHandler_GetAndList(t *testing.T) {
	router := newSourceRouter(t)

	rr := doJSON(t, router, http.MethodGet, "/api/v1/sources/apt", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("get returned %v, want %v", rr.Code, http.StatusOK)
	}

	var src models.Source
	if err := json.NewDecoder(rr.Body).Decode(&src); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if src.InstallCmd != "apt install -y" || !src.RequireSudo {
		t.Errorf("unexpected source: %+v", src)
	}

	rr = doJSON(t, router, http.MethodGet, "/api/v1/sources/missing", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("get missing returned %v, want %v", rr.Code, http.StatusNotFound)
	}

	rr = doJSON(t, router, http.MethodGet, "/api/v1/sources", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list returned %v, want %v", rr.Code, http.StatusOK)
	}
	var list []models.Source
	if err := json.NewDecoder(rr.Body).Decode(&list); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("list returned %d sources, want 2", len(list))
	}
}

func TestSourceHandler_Update(t *testing.T) {
	router := newSourceRouter(t)

	rr := doJSON(t, router, http.MethodPut, "/api/v1/sources/apt",
		`{"slug":"apt","name":"APT","installCmd":"apt-get install -y","requireSudo":true,"priority":11}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("update returned %v, want %v (body %s)", rr.Code, http.StatusOK, rr.Body.String())
	}

	// Slug mismatch between URL and body
	rr = doJSON(t, router, http.MethodPut, "/api/v1/sources/apt",
		`{"slug":"dnf","name":"DNF","installCmd":"dnf install -y"}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("mismatched update returned %v, want %v", rr.Code, http.StatusBadRequest)
	}

	rr = doJSON(t, router, http.MethodPut, "/api/v1/sources/missing",
		`{"slug":"missing","name":"Missing","installCmd":"missing install"}`)
	if rr.Code != http.StatusNotFound {
		t.Errorf("update missing returned %v, want %v", rr.Code, http.StatusNotFound)
	}
}

func TestSourceHandler_Delete(t *testing.T) {
	router := newSourceRouter(t)

	// apt is referenced by the ubuntu platform and seeded packages
	rr := doJSON(t, router, http.MethodDelete, "/api/v1/sources/apt", "")
	if rr.Code != http.StatusConflict {
		t.Fatalf("delete in-use returned %v, want %v", rr.Code, http.StatusConflict)
	}
	resp := decodeError(t, rr)
	if resp.Error.Code != apierrors.ErrCodeSourceInUse {
		t.Errorf("error code = %q, want SOURCE_IN_USE", resp.Error.Code)
	}

	// A fresh unreferenced source deletes cleanly
	rr = doJSON(t, router, http.MethodPost, "/api/v1/sources",
		`{"slug":"snap","name":"Snap","installCmd":"snap install","priority":4}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create returned %v, want %v", rr.Code, http.StatusCreated)
	}
	rr = doJSON(t, router, http.MethodDelete, "/api/v1/sources/snap", "")
	if rr.Code != http.StatusNoContent {
		t.Errorf("delete returned %v, want %v", rr.Code, http.StatusNoContent)
	}

	rr = doJSON(t, router, http.MethodDelete, "/api/v1/sources/snap", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("delete missing returned %v, want %v", rr.Code, http.StatusNotFound)
	}
}
