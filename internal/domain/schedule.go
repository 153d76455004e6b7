package domain

import "sort"

// Showing est une séance: un cinéma, un lien de réservation, une plage horaire.
// Immuable une fois extraite.
type Showing struct {
	Cinema     string `json:"cinema"`
	BookingRef string `json:"book"`
	Start      Clock  `json:"start"`
	End        Clock  `json:"end"`
}

// MovieDay est l'unité brute produite par l'extraction: un film tel qu'il
// apparaît sur la page d'un jour donné. Un même titre peut réapparaître sur
// plusieurs jours (et, en cas de page dupliquée, deux fois le même jour).
type MovieDay struct {
	Title    string
	ImageURL string
	Times    []Showing
}

// UnknownLanguage est la valeur sentinelle posée quand la résolution IMDB
// n'a rien donné. Elle passe dans le filtre de langues comme n'importe
// quelle autre valeur.
const UnknownLanguage = "?"

// DayProgramme regroupe les séances retenues d'un film pour un jour.
// Language/Rating/IMDBURL sont vides tant que le matcher n'est pas passé.
type DayProgramme struct {
	ImageURL string    `json:"image"`
	Times    []Showing `json:"times"`
	Language string    `json:"language,omitempty"`
	Rating   string    `json:"rating,omitempty"`
	IMDBURL  string    `json:"imdb,omitempty"`
}

// Schedule est l'entité consolidée: titre -> jour -> programme.
// Invariant: une entrée (titre, jour) n'existe que si Times est non vide.
type Schedule map[string]map[Date]*DayProgramme

// Titles renvoie les titres triés alphabétiquement.
func (s Schedule) Titles() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Dates renvoie les jours d'un titre en ordre calendaire.
func (s Schedule) Dates(title string) []Date {
	days := s[title]
	out := make([]Date, 0, len(days))
	for d := range days {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Add merges showings into the (title, date) entry, creating it when absent.
// Duplicate showings (same cinema, booking ref and times) are kept once.
func (s Schedule) Add(title string, date Date, imageURL string, times []Showing) {
	if len(times) == 0 {
		return
	}
	days, ok := s[title]
	if !ok {
		days = make(map[Date]*DayProgramme)
		s[title] = days
	}
	prog, ok := days[date]
	if !ok {
		days[date] = &DayProgramme{ImageURL: imageURL, Times: append([]Showing(nil), times...)}
		return
	}
	if prog.ImageURL == "" {
		prog.ImageURL = imageURL
	}
	seen := make(map[Showing]struct{}, len(prog.Times))
	for _, sh := range prog.Times {
		seen[sh] = struct{}{}
	}
	for _, sh := range times {
		if _, dup := seen[sh]; dup {
			continue
		}
		seen[sh] = struct{}{}
		prog.Times = append(prog.Times, sh)
	}
}

// SortedTimes renvoie les séances d'un programme triées par heure de début.
func (p *DayProgramme) SortedTimes() []Showing {
	out := append([]Showing(nil), p.Times...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

// Language renvoie la langue résolue d'un titre (uniforme sur tous ses jours),
// ou "" si le matcher n'est pas encore passé.
func (s Schedule) Language(title string) string {
	for _, prog := range s[title] {
		return prog.Language
	}
	return ""
}
