package app

import (
	"time"

	"github.com/cinedigest/cinedigest/internal/domain"
)

// AvailabilityFunc renvoie la fenêtre de pertinence d'un jour de semaine.
// Passée explicitement (pas de config globale cachée), ce qui rend le
// consolidateur trivial à tester avec des fenêtres stub.
type AvailabilityFunc func(time.Weekday) (domain.Window, error)

// Consolidate fusionne les listes par jour en Schedule titre -> jour, en ne
// gardant que les séances dans la fenêtre du jour (bornes incluses).
//
// Deux entrées de même titre le même jour fusionnent (union des séances),
// jamais d'écrasement. Une fenêtre manquante pour un jour rencontré est une
// ConfigError fatale pour le run: on ne défaulte pas une plage horaire.
func Consolidate(byDate map[domain.Date][]domain.MovieDay, avail AvailabilityFunc) (domain.Schedule, error) {
	schedule := make(domain.Schedule)

	for date, movies := range byDate {
		window, err := avail(date.Weekday())
		if err != nil {
			return nil, err
		}
		for _, movie := range movies {
			var kept []domain.Showing
			for _, showing := range movie.Times {
				if window.Contains(showing.Start) {
					kept = append(kept, showing)
				}
			}
			// Add ignore les ensembles vides: un titre sans aucune séance
			// survivante n'apparaît pas dans le Schedule.
			schedule.Add(movie.Title, date, movie.ImageURL, kept)
		}
	}

	return schedule, nil
}
