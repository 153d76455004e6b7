package app

import (
	"embed"
	"html/template"
	"strings"

	"github.com/cinedigest/cinedigest/internal/domain"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Renderer assemble le Schedule filtré en digest HTML. Tout l'ordre de sortie
// est déterministe: titres alphabétiques, jours calendaires, séances par
// heure de début; aucune itération de map n'atteint la sortie.
type Renderer struct {
	tpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	tpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{tpl: tpl}, nil
}

// RenderOptions configure la mise en forme, pas la sélection: couper Enrich
// vide la note et le lien IMDB mais ne change jamais quels films sortent.
type RenderOptions struct {
	IssueDate domain.Date
	// TicketURL absolutise les liens de réservation (nil = laissés tels quels).
	TicketURL func(ref string) string
	Enrich    bool
}

type digestMovie struct {
	Title   string
	Image   string
	Rating  string
	IMDB    string
	Entries []digestEntry
}

type digestEntry struct {
	Day    string
	Start  string
	End    string
	Cinema string
	Book   string
}

func (r *Renderer) Render(schedule domain.Schedule, opts RenderOptions) (string, error) {
	ticketURL := opts.TicketURL
	if ticketURL == nil {
		ticketURL = func(ref string) string { return ref }
	}

	movies := make([]digestMovie, 0, len(schedule))
	for _, title := range schedule.Titles() {
		days := schedule[title]
		movie := digestMovie{Title: title}

		for _, date := range schedule.Dates(title) {
			prog := days[date]
			if movie.Image == "" {
				movie.Image = prog.ImageURL
			}
			if opts.Enrich {
				movie.Rating = prog.Rating
				movie.IMDB = prog.IMDBURL
			}
			for _, showing := range prog.SortedTimes() {
				movie.Entries = append(movie.Entries, digestEntry{
					Day:    date.WeekdayName(),
					Start:  showing.Start.String(),
					End:    showing.End.String(),
					Cinema: showing.Cinema,
					Book:   ticketURL(showing.BookingRef),
				})
			}
		}
		movies = append(movies, movie)
	}

	var b strings.Builder
	err := r.tpl.ExecuteTemplate(&b, "base.html", struct {
		IssueDate string
		Movies    []digestMovie
	}{
		IssueDate: opts.IssueDate.String(),
		Movies:    movies,
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}
