package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/cinedigest/cinedigest/internal/domain"
)

// Resolver annote un Schedule consolidé avec les métadonnées IMDB, en deux
// phases batch: recherche de tous les titres, barrière, dédoublonnage des
// identifiants, fetch de chaque fiche une seule fois, barrière, annotation.
// Aucun résultat partiel d'une phase ne fuit dans l'autre.
type Resolver struct {
	logger      zerolog.Logger
	imdb        *IMDBService
	concurrency int
}

func NewResolver(logger zerolog.Logger, imdb *IMDBService) *Resolver {
	return &Resolver{logger: logger, imdb: imdb, concurrency: 4}
}

func (r *Resolver) WithConcurrency(n int) *Resolver {
	if n > 0 {
		r.concurrency = n
	}
	return r
}

// Annotate pose language/rating/imdb sur chaque entrée jour de chaque titre,
// uniformément: un titre a exactement une langue résolue pour tout le run.
//
// La résolution est additive: un titre dont la langue est déjà posée est
// sauté, une seconde passe avec un lookup mort ne modifie donc rien.
// L'échec d'un titre (réseau, page inattendue) dégrade ce seul titre vers la
// sentinelle et n'interrompt jamais les autres.
func (r *Resolver) Annotate(ctx context.Context, schedule domain.Schedule) error {
	var pending []string
	for _, title := range schedule.Titles() {
		if schedule.Language(title) == "" {
			pending = append(pending, title)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	// Phase 1: une recherche par titre. L'ordre de dispatch est sans
	// importance, on corrèle par titre.
	idByTitle := make(map[string]string, len(pending))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for _, title := range pending {
		title := title
		g.Go(func() error {
			id, ok, err := r.imdb.SearchTitle(gctx, title)
			if err != nil {
				r.logger.Warn().Err(err).Str("title", title).Msg("imdb search failed, title unresolved")
				return nil
			}
			if !ok {
				r.logger.Debug().Str("title", title).Msg("no imdb match")
				return nil
			}
			mu.Lock()
			idByTitle[title] = id
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// Dédoublonnage: deux titres peuvent pointer la même fiche, on ne la
	// récupère qu'une fois.
	ids := make([]string, 0, len(idByTitle))
	seen := make(map[string]struct{}, len(idByTitle))
	for _, title := range pending {
		id, ok := idByTitle[title]
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	// Phase 2: un fetch par identifiant.
	detailsByID := make(map[string]Details, len(ids))
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			det, err := r.imdb.FetchDetails(gctx, id)
			if err != nil {
				r.logger.Warn().Err(err).Str("imdb_id", id).Msg("imdb details failed, sentinel language kept")
				return nil
			}
			mu.Lock()
			detailsByID[id] = det
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, title := range pending {
		det := Details{Language: domain.UnknownLanguage, Rating: domain.UnknownLanguage}
		if id, ok := idByTitle[title]; ok {
			if d, ok := detailsByID[id]; ok {
				det = d
			}
		}
		for _, prog := range schedule[title] {
			prog.Language = det.Language
			prog.Rating = det.Rating
			prog.IMDBURL = det.URL
		}
	}
	return nil
}
