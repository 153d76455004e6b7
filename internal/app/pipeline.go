package app

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog"

	"github.com/cinedigest/cinedigest/internal/domain"
	"github.com/cinedigest/cinedigest/internal/htmldoc"
	"github.com/cinedigest/cinedigest/internal/ports"
)

// DigestSubject est l'objet du mail hebdomadaire.
const DigestSubject = "This week's movies"

var ErrRunInProgress = errors.New("a digest run is already in progress")

// PipelineOptions regroupe ce que la config fournit au pipeline. Les
// fenêtres et les langues sont passées explicitement: pas de config globale.
type PipelineOptions struct {
	Days     int
	Approved []string
	Windows  AvailabilityFunc
	Enrich   bool
	// Now est remplaçable en test; nil = time.Now.
	Now func() time.Time
}

// Pipeline enchaîne les cinq étapes: fetch+extraction, consolidation,
// résolution IMDB, filtre de langues, rendu (+ envoi). Tout est recalculé à
// chaque run, rien ne survit au process.
type Pipeline struct {
	logger   zerolog.Logger
	listings *ListingsClient
	resolver *Resolver
	renderer *Renderer
	mailer   *Mailer
	bus      ports.EventBus
	opts     PipelineOptions

	mu      sync.Mutex
	running bool
	last    *RunResult
}

// NewPipeline câble les étapes. mailer peut être nil (pas d'envoi), bus
// aussi (pas d'événements).
func NewPipeline(logger zerolog.Logger, listings *ListingsClient, resolver *Resolver, renderer *Renderer, mailer *Mailer, bus ports.EventBus, opts PipelineOptions) *Pipeline {
	if opts.Days <= 0 {
		opts.Days = 7
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Pipeline{
		logger:   logger,
		listings: listings,
		resolver: resolver,
		renderer: renderer,
		mailer:   mailer,
		bus:      bus,
		opts:     opts,
	}
}

// RunResult est le produit d'un run, gardé en mémoire pour l'API jusqu'au
// run suivant.
type RunResult struct {
	ID         string          `json:"id"`
	StartedAt  time.Time       `json:"startedAt"`
	FinishedAt time.Time       `json:"finishedAt"`
	Movies     int             `json:"movies"`
	Sent       bool            `json:"sent"`
	HTML       string          `json:"-"`
	Schedule   domain.Schedule `json:"-"`
}

type runEvent struct {
	ID     string `json:"id"`
	Stage  string `json:"stage,omitempty"`
	Movies int    `json:"movies,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Run exécute le pipeline complet une fois. Un seul run à la fois: un
// déclenchement pendant un run en cours renvoie ErrRunInProgress.
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil, ErrRunInProgress
	}
	p.running = true
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
	}()

	id := xid.New().String()
	started := p.opts.Now().UTC()
	logger := p.logger.With().Str("run_id", id).Logger()
	p.publish("run.started", runEvent{ID: id})

	today := domain.DateOf(p.opts.Now())
	dates := make([]domain.Date, 0, p.opts.Days)
	for i := 0; i < p.opts.Days; i++ {
		dates = append(dates, today.AddDays(i))
	}

	pages, err := p.listings.FetchWeek(ctx, dates)
	if err != nil {
		return p.fail(logger, id, err)
	}
	byDate := make(map[domain.Date][]domain.MovieDay, len(pages))
	for date, page := range pages {
		doc, err := htmldoc.ParseString(page)
		if err != nil {
			logger.Warn().Err(err).Str("date", date.String()).Msg("listing unparsable, day skipped")
			continue
		}
		byDate[date] = ExtractMovieDays(logger, doc)
	}
	p.publish("run.stage", runEvent{ID: id, Stage: "extracted"})
	logger.Info().Int("days", len(byDate)).Msg("listings extracted")

	schedule, err := Consolidate(byDate, p.opts.Windows)
	if err != nil {
		return p.fail(logger, id, err)
	}
	p.publish("run.stage", runEvent{ID: id, Stage: "consolidated", Movies: len(schedule)})
	logger.Info().Int("movies", len(schedule)).Msg("schedule consolidated")

	if err := p.resolver.Annotate(ctx, schedule); err != nil {
		return p.fail(logger, id, err)
	}
	p.publish("run.stage", runEvent{ID: id, Stage: "resolved"})

	filtered := FilterByLanguage(schedule, p.opts.Approved)
	logger.Info().Int("movies", len(filtered)).Msg("language filter applied")

	html, err := p.renderer.Render(filtered, RenderOptions{
		IssueDate: today,
		TicketURL: p.listings.TicketURL,
		Enrich:    p.opts.Enrich,
	})
	if err != nil {
		return p.fail(logger, id, err)
	}

	sent := false
	if p.mailer != nil {
		if err := p.mailer.Send(ctx, DigestSubject, html); err != nil {
			return p.fail(logger, id, err)
		}
		sent = true
		logger.Info().Msg("digest delivered")
	}

	result := &RunResult{
		ID:         id,
		StartedAt:  started,
		FinishedAt: p.opts.Now().UTC(),
		Movies:     len(filtered),
		Sent:       sent,
		HTML:       html,
		Schedule:   filtered,
	}
	p.mu.Lock()
	p.last = result
	p.mu.Unlock()

	p.publish("run.completed", runEvent{ID: id, Movies: result.Movies})
	logger.Info().Int("movies", result.Movies).Msg("run completed")
	return result, nil
}

// LastResult renvoie le dernier run réussi, ou ports.ErrNotFound si aucun
// run n'a encore abouti.
func (p *Pipeline) LastResult() (*RunResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last == nil {
		return nil, ports.ErrNotFound
	}
	return p.last, nil
}

func (p *Pipeline) fail(logger zerolog.Logger, id string, err error) (*RunResult, error) {
	logger.Error().Err(err).Msg("run failed")
	p.publish("run.failed", runEvent{ID: id, Error: err.Error()})
	return nil, err
}

func (p *Pipeline) publish(topic string, evt runEvent) {
	if p.bus == nil {
		return
	}
	b, err := json.Marshal(evt)
	if err != nil {
		return
	}
	p.bus.Publish(topic, b)
}
