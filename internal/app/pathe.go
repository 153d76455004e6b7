package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/cinedigest/cinedigest/internal/domain"
)

// ListingsClient récupère les grilles horaires Pathé, une page par jour.
type ListingsClient struct {
	logger      zerolog.Logger
	baseURL     string
	cinemas     string
	concurrency int
	client      *http.Client
}

func NewListingsClient(logger zerolog.Logger) *ListingsClient {
	return &ListingsClient{
		logger:      logger,
		baseURL:     "https://en.pathe.nl",
		cinemas:     "1,2,9,10",
		concurrency: 4,
		client: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

func (c *ListingsClient) WithBaseURL(base string) *ListingsClient {
	if strings.TrimSpace(base) != "" {
		c.baseURL = strings.TrimRight(strings.TrimSpace(base), "/")
	}
	return c
}

func (c *ListingsClient) WithCinemas(ids string) *ListingsClient {
	if strings.TrimSpace(ids) != "" {
		c.cinemas = strings.TrimSpace(ids)
	}
	return c
}

func (c *ListingsClient) WithConcurrency(n int) *ListingsClient {
	if n > 0 {
		c.concurrency = n
	}
	return c
}

// ListingDate est le format de date des URLs update-schedule.
func ListingDate(d domain.Date) string {
	return fmt.Sprintf("%02d-%02d-%04d", d.Day, int(d.Month), d.Year)
}

func (c *ListingsClient) listingURL(d domain.Date) string {
	return fmt.Sprintf("%s/update-schedule/%s/%s", c.baseURL, c.cinemas, ListingDate(d))
}

// TicketURL absolutise un lien de réservation relatif au site.
func (c *ListingsClient) TicketURL(ref string) string {
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	if !strings.HasPrefix(ref, "/") {
		ref = "/" + ref
	}
	return c.baseURL + ref
}

// FetchWeek récupère toutes les pages en parallèle et corrèle les réponses
// par date (jamais par position). Un jour en échec est loggé et omis: le run
// continue avec les jours restants.
func (c *ListingsClient) FetchWeek(ctx context.Context, dates []domain.Date) (map[domain.Date]string, error) {
	out := make(map[domain.Date]string, len(dates))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for _, d := range dates {
		d := d
		g.Go(func() error {
			body, err := c.fetchDay(gctx, d)
			if err != nil {
				c.logger.Warn().Err(err).Str("date", d.String()).Msg("listing fetch failed, day skipped")
				return nil
			}
			mu.Lock()
			out[d] = body
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ListingsClient) fetchDay(ctx context.Context, d domain.Date) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.listingURL(d), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "cinedigest")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("listing http error: %s", resp.Status)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
