package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/evcraddock/client-visits/internal/blob"
	"github.com/evcraddock/client-visits/internal/visit"
	"github.com/evcraddock/client-visits/internal/web"
)

func acmeForm() visit.Form {
	return visit.Form{
		ClientName:       "Acme",
		BusinessLocation: "NYC",
		Date:             "2024-01-15",
		Products:         []visit.ProductInput{{Name: "Widget", FinalizedRate: 100}},
	}
}

// testServer runs the real API over an in-memory store.
func testServer(t *testing.T, scoping bool) *httptest.Server {
	t.Helper()
	store, err := visit.Open(context.Background(), blob.NewMemory())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	srv := httptest.NewServer(web.NewServer(store, web.Options{Scoping: scoping}))
	t.Cleanup(srv.Close)
	return srv
}

func TestListVisits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/visits" {
			t.Errorf("path = %q, want /api/visits", r.URL.Path)
		}
		if r.URL.Query().Get("status") != "draft" || r.URL.Query().Get("all") != "true" {
			t.Errorf("query = %q", r.URL.RawQuery)
		}
		email, password, ok := r.BasicAuth()
		if !ok || email != "john@company.com" || password != "password123" {
			t.Error("expected basic auth credentials")
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode([]visit.ClientVisit{{ID: "v1", ClientName: "Acme"}}); err != nil {
			t.Errorf("encode: %v", err)
		}
	}))
	defer srv.Close()

	c := New(srv.URL+"/", "john@company.com", "password123")
	visits, err := c.ListVisits(context.Background(), ListOptions{Status: "draft", All: true})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(visits) != 1 || visits[0].ClientName != "Acme" {
		t.Errorf("visits = %+v", visits)
	}
}

func TestVisitLifecycle(t *testing.T) {
	srv := testServer(t, true)
	c := New(srv.URL, "john@company.com", "password123")
	ctx := context.Background()

	me, err := c.Me(ctx)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if me.User.ID != "1" || !me.Scoping {
		t.Errorf("me = %+v", me)
	}

	v, err := c.CreateVisit(ctx, acmeForm(), visit.Draft)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if v.MarketingPersonID != "1" || v.Status != visit.Draft {
		t.Errorf("created = %+v", v)
	}

	loc := "Boston"
	updated, err := c.UpdateVisit(ctx, v.ID, visit.Patch{BusinessLocation: &loc})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.BusinessLocation != "Boston" || updated.ClientName != "Acme" {
		t.Errorf("updated = %+v", updated)
	}

	submitted, err := c.SubmitVisit(ctx, v.ID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if submitted.Status != visit.Submitted || submitted.SubmittedAt == "" {
		t.Errorf("submitted = %+v", submitted)
	}

	got, err := c.GetVisit(ctx, v.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != visit.Submitted {
		t.Errorf("status = %q", got.Status)
	}

	summary, err := c.Summary(ctx, ListOptions{}, 3)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.Total != 1 || summary.Submitted != 1 || summary.TotalValue.String() != "100" {
		t.Errorf("summary = %+v", summary)
	}

	var buf bytes.Buffer
	if err := c.Export(ctx, ListOptions{}, &buf); err != nil {
		t.Fatalf("export: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("empty export")
	}
}

func TestErrorsMapToStoreErrors(t *testing.T) {
	srv := testServer(t, true)
	ctx := context.Background()
	john := New(srv.URL, "john@company.com", "password123")
	admin := New(srv.URL, "admin@company.com", "password123")

	v, err := john.CreateVisit(ctx, acmeForm(), visit.Submitted)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := admin.GetVisit(ctx, v.ID); !errors.Is(err, visit.ErrNotFound) {
		t.Errorf("other owner get err = %v, want ErrNotFound", err)
	}

	draft := visit.Draft
	if _, err := john.UpdateVisit(ctx, v.ID, visit.Patch{Status: &draft}); !errors.Is(err, visit.ErrInvalidTransition) {
		t.Errorf("back to draft err = %v, want ErrInvalidTransition", err)
	}

	bad := acmeForm()
	bad.Date = "soon"
	_, err = john.CreateVisit(ctx, bad, visit.Draft)
	var fe *visit.FormError
	if !errors.As(err, &fe) {
		t.Fatalf("invalid form err = %v, want *visit.FormError", err)
	}
	if _, ok := fe.Fields["date"]; !ok {
		t.Errorf("fields = %v, want date", fe.Fields)
	}
}

func TestServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		if err := json.NewEncoder(w).Encode(map[string]string{"error": "disk exploded"}); err != nil {
			t.Errorf("encode: %v", err)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, "john@company.com", "password123")
	_, err := c.ListVisits(context.Background(), ListOptions{})
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "disk exploded" {
		t.Errorf("error = %q", err.Error())
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("err = %#v, want *APIError with 500", err)
	}
}

func TestUnauthorized(t *testing.T) {
	srv := testServer(t, true)

	c := New(srv.URL, "john@company.com", "wrong")
	_, err := c.Me(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("err = %v, want 401 APIError", err)
	}
}
