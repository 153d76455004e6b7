package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/cinedigest/cinedigest/internal/domain"
)

// fakeIMDB sert un index de recherche et des fiches, et compte les fetches
// de fiche pour vérifier le dédoublonnage.
type fakeIMDB struct {
	idByTitle   map[string]string
	langByID    map[string]string
	detailCount atomic.Int64
	failDetails bool
}

func (f *fakeIMDB) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/find":
			id, ok := f.idByTitle[r.URL.Query().Get("q")]
			if !ok {
				w.Write([]byte(`<html><body><div class="findNoResults"></div></body></html>`))
				return
			}
			w.Write([]byte(`<html><body><table class="findList"><tr><td><a href="/title/` + id + `/">x</a></td></tr></table></body></html>`))
		case strings.HasPrefix(r.URL.Path, "/title/"):
			f.detailCount.Add(1)
			if f.failDetails {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/title/"), "/")
			lang := f.langByID[id]
			w.Write([]byte(`<html><body><span itemprop="ratingValue">7.0</span><div><h4>Language:</h4> <a href="/l">` + lang + `</a></div></body></html>`))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
			http.NotFound(w, r)
		}
	})
}

func scheduleWith(t *testing.T, titles ...string) domain.Schedule {
	t.Helper()
	s := make(domain.Schedule)
	d := domain.NewDate(2026, time.September, 7)
	for _, title := range titles {
		s.Add(title, d, "", []domain.Showing{{
			Cinema: "City",
			Start:  clock(t, "18:00"),
			End:    clock(t, "20:00"),
		}})
	}
	return s
}

func TestAnnotate(t *testing.T) {
	fake := &fakeIMDB{
		idByTitle: map[string]string{"Nightfall": "tt0000001", "Daybreak": "tt0000002"},
		langByID:  map[string]string{"tt0000001": "English", "tt0000002": "Japanese"},
	}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	schedule := scheduleWith(t, "Nightfall", "Daybreak")
	resolver := NewResolver(zerolog.Nop(), NewIMDBService().WithBaseURL(srv.URL))
	if err := resolver.Annotate(context.Background(), schedule); err != nil {
		t.Fatalf("annotate: %v", err)
	}

	if schedule.Language("Nightfall") != "English" {
		t.Fatalf("unexpected language: %q", schedule.Language("Nightfall"))
	}
	if schedule.Language("Daybreak") != "Japanese" {
		t.Fatalf("unexpected language: %q", schedule.Language("Daybreak"))
	}
	d := domain.NewDate(2026, time.September, 7)
	prog := schedule["Nightfall"][d]
	if prog.Rating != "7.0" || prog.IMDBURL != srv.URL+"/title/tt0000001/" {
		t.Fatalf("unexpected enrichment: %+v", prog)
	}
}

func TestAnnotate_NoMatchGivesSentinel(t *testing.T) {
	fake := &fakeIMDB{idByTitle: map[string]string{}, langByID: map[string]string{}}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	schedule := scheduleWith(t, "Obscure Local Production")
	resolver := NewResolver(zerolog.Nop(), NewIMDBService().WithBaseURL(srv.URL))
	if err := resolver.Annotate(context.Background(), schedule); err != nil {
		t.Fatalf("a miss must not fail the run: %v", err)
	}
	if schedule.Language("Obscure Local Production") != domain.UnknownLanguage {
		t.Fatalf("expected sentinel, got %q", schedule.Language("Obscure Local Production"))
	}
}

func TestAnnotate_SharedIDFetchedOnce(t *testing.T) {
	// Deux titres scrapés pointent la même fiche.
	fake := &fakeIMDB{
		idByTitle: map[string]string{"Nightfall": "tt0000001", "Nightfall 3D": "tt0000001"},
		langByID:  map[string]string{"tt0000001": "English"},
	}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	schedule := scheduleWith(t, "Nightfall", "Nightfall 3D")
	resolver := NewResolver(zerolog.Nop(), NewIMDBService().WithBaseURL(srv.URL))
	if err := resolver.Annotate(context.Background(), schedule); err != nil {
		t.Fatalf("annotate: %v", err)
	}
	if got := fake.detailCount.Load(); got != 1 {
		t.Fatalf("shared id should be fetched once, got %d fetches", got)
	}
	if schedule.Language("Nightfall 3D") != "English" {
		t.Fatalf("both titles should share the resolved language")
	}
}

func TestAnnotate_DetailFailureDegradesToSentinel(t *testing.T) {
	fake := &fakeIMDB{
		idByTitle:   map[string]string{"Nightfall": "tt0000001"},
		langByID:    map[string]string{},
		failDetails: true,
	}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	schedule := scheduleWith(t, "Nightfall")
	resolver := NewResolver(zerolog.Nop(), NewIMDBService().WithBaseURL(srv.URL))
	if err := resolver.Annotate(context.Background(), schedule); err != nil {
		t.Fatalf("a failed fetch must not fail the run: %v", err)
	}
	if schedule.Language("Nightfall") != domain.UnknownLanguage {
		t.Fatalf("expected sentinel, got %q", schedule.Language("Nightfall"))
	}
}

func TestAnnotate_FailureIsolation(t *testing.T) {
	// La fiche du second titre n'existe pas: 404 sur son fetch, l'autre titre
	// se résout normalement.
	fake := &fakeIMDB{
		idByTitle: map[string]string{"Good": "tt0000001", "Broken": "tt0000404"},
		langByID:  map[string]string{"tt0000001": "English"},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "tt0000404") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fake.handler(t).ServeHTTP(w, r)
	}))
	defer srv.Close()

	schedule := scheduleWith(t, "Good", "Broken")
	resolver := NewResolver(zerolog.Nop(), NewIMDBService().WithBaseURL(srv.URL))
	if err := resolver.Annotate(context.Background(), schedule); err != nil {
		t.Fatalf("annotate: %v", err)
	}
	if schedule.Language("Good") != "English" {
		t.Fatalf("healthy title should resolve, got %q", schedule.Language("Good"))
	}
	if schedule.Language("Broken") != domain.UnknownLanguage {
		t.Fatalf("broken title should degrade to sentinel, got %q", schedule.Language("Broken"))
	}
}

func TestAnnotate_SecondPassIsAdditive(t *testing.T) {
	fake := &fakeIMDB{
		idByTitle: map[string]string{"Nightfall": "tt0000001"},
		langByID:  map[string]string{"tt0000001": "English"},
	}
	srv := httptest.NewServer(fake.handler(t))

	schedule := scheduleWith(t, "Nightfall")
	resolver := NewResolver(zerolog.Nop(), NewIMDBService().WithBaseURL(srv.URL))
	if err := resolver.Annotate(context.Background(), schedule); err != nil {
		t.Fatalf("first pass: %v", err)
	}
	srv.Close()

	// Lookup mort: une seconde passe ne doit toucher à rien puisque toutes
	// les langues sont déjà posées.
	if err := resolver.Annotate(context.Background(), schedule); err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if schedule.Language("Nightfall") != "English" {
		t.Fatalf("second pass mutated a resolved title: %q", schedule.Language("Nightfall"))
	}
}
