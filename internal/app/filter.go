package app

import (
	"strings"

	"github.com/cinedigest/cinedigest/internal/domain"
)

// FilterByLanguage garde un titre (avec tous ses jours, sans autre filtrage)
// si sa langue résolue figure, sans casse, dans la liste approuvée. La
// sentinelle "?" passe uniquement si elle est elle-même approuvée.
func FilterByLanguage(schedule domain.Schedule, approved []string) domain.Schedule {
	set := make(map[string]struct{}, len(approved))
	for _, lang := range approved {
		set[strings.ToLower(strings.TrimSpace(lang))] = struct{}{}
	}

	filtered := make(domain.Schedule)
	for title, days := range schedule {
		lang := strings.ToLower(schedule.Language(title))
		if _, ok := set[lang]; ok {
			filtered[title] = days
		}
	}
	return filtered
}
