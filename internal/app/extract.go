package app

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/cinedigest/cinedigest/internal/domain"
	"github.com/cinedigest/cinedigest/internal/htmldoc"
)

// Nom de cinéma hérité tant qu'aucun libellé n'a encore été vu dans la
// section (les pages mettent le nom du cinéma dans un <p> avant ses séances).
const undefinedCinema = "UNDEFINED LOCATION"

// ExtractMovieDays transforme la page d'un jour en séquence de films, en
// ordre document. Pure: aucun effet de bord, les sections inexploitables
// sont sautées et loggées, jamais fatales pour la page.
func ExtractMovieDays(logger zerolog.Logger, doc htmldoc.Node) []domain.MovieDay {
	sections := doc.FindClass("div", "schedule__section")
	out := make([]domain.MovieDay, 0, len(sections))
	for i, section := range sections {
		movie, err := extractMovie(logger, section)
		if err != nil {
			logger.Warn().Err(err).Int("section", i).Msg("movie section skipped")
			continue
		}
		out = append(out, movie)
	}
	return out
}

func extractMovie(logger zerolog.Logger, section htmldoc.Node) (domain.MovieDay, error) {
	// Le titre est requis: sans lui le film est inexploitable et on ne
	// synthétise jamais de titre.
	titleNode := htmldoc.First(htmldoc.First(section.Find("h4")).Find("a"))
	title := titleNode.Text()
	if title == "" {
		return domain.MovieDay{}, domain.ErrNoTitle
	}

	// L'image est cosmétique: absente, on laisse vide.
	image := htmldoc.First(section.Find("img")).Attr("src")

	return domain.MovieDay{
		Title:    title,
		ImageURL: image,
		Times:    extractShowings(logger.With().Str("movie", title).Logger(), section),
	}, nil
}

// extractShowings parcourt les blocs horaires d'une section. Un <p> change
// le "cinéma courant"; tout autre élément hérite du dernier libellé vu.
// L'état du fold est local à la section, jamais partagé entre documents.
func extractShowings(logger zerolog.Logger, section htmldoc.Node) []domain.Showing {
	var times []domain.Showing
	for _, wrapper := range section.FindClass("div", "schedule__wrapper") {
		cinema := undefinedCinema
		for _, el := range wrapper.Elements() {
			if el.Tag() == "p" {
				if label := el.Text(); label != "" {
					cinema = label
				}
				continue
			}
			for _, link := range el.Find("a") {
				showing, err := extractShowing(cinema, link)
				if err != nil {
					logger.Warn().Err(err).Str("cinema", cinema).Msg("showing skipped")
					continue
				}
				times = append(times, showing)
			}
		}
	}
	return times
}

// extractShowing lit une séance: les deux premiers <span> sous <h5> portent
// le début et la fin au format 24h "HH:MM".
func extractShowing(cinema string, link htmldoc.Node) (domain.Showing, error) {
	var spans []htmldoc.Node
	for _, h5 := range link.Find("h5") {
		spans = append(spans, h5.Find("span")...)
	}
	if len(spans) < 2 {
		return domain.Showing{}, fmt.Errorf("%w: expected two time labels, got %d", domain.ErrBadShowtime, len(spans))
	}
	start, err := domain.ParseClock(spans[0].Text())
	if err != nil {
		return domain.Showing{}, fmt.Errorf("%w: %v", domain.ErrBadShowtime, err)
	}
	end, err := domain.ParseClock(spans[1].Text())
	if err != nil {
		return domain.Showing{}, fmt.Errorf("%w: %v", domain.ErrBadShowtime, err)
	}
	return domain.Showing{
		Cinema:     cinema,
		BookingRef: link.Attr("data-href"),
		Start:      start,
		End:        end,
	}, nil
}
