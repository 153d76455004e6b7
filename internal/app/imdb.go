package app

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/cinedigest/cinedigest/internal/domain"
	"github.com/cinedigest/cinedigest/internal/htmldoc"
)

// IMDBService résout un titre scrapé en métadonnées IMDB: recherche exacte
// puis fetch de la fiche. Une recherche sans résultat ou une fiche sans champ
// Language ne sont pas des erreurs: ce sont des "miss" documentés, rendus par
// ("", false) ou la sentinelle.
type IMDBService struct {
	baseURL string
	client  *http.Client
}

func NewIMDBService() *IMDBService {
	return &IMDBService{
		baseURL: "https://www.imdb.com",
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (s *IMDBService) WithBaseURL(base string) *IMDBService {
	if strings.TrimSpace(base) != "" {
		s.baseURL = strings.TrimRight(strings.TrimSpace(base), "/")
	}
	return s
}

var reTitleID = regexp.MustCompile(`tt\d+`)

// SearchTitle cherche un titre en correspondance exacte et renvoie
// l'identifiant ("tt...") du premier résultat. ok=false signifie "aucun
// résultat utilisable", jamais une erreur.
func (s *IMDBService) SearchTitle(ctx context.Context, title string) (id string, ok bool, err error) {
	q := url.Values{}
	q.Set("exact", "true")
	q.Set("s", "tt")
	q.Set("q", foldASCII(title))
	doc, err := s.get(ctx, s.baseURL+"/find?"+q.Encode())
	if err != nil {
		return "", false, err
	}

	table := htmldoc.First(doc.FindClass("table", "findList"))
	href := htmldoc.First(table.Find("a")).Attr("href")
	id = reTitleID.FindString(href)
	if id == "" {
		return "", false, nil
	}
	return id, true, nil
}

// Details porte les champs de fiche consommés par le digest.
type Details struct {
	Language string
	Rating   string
	URL      string
}

// FetchDetails récupère la fiche d'un identifiant. L'absence du marqueur
// Language ou de la note donne la sentinelle, pas une erreur: une fiche
// incomplète ne doit jamais faire échouer le run.
func (s *IMDBService) FetchDetails(ctx context.Context, id string) (Details, error) {
	pageURL := s.baseURL + "/title/" + id + "/"
	doc, err := s.get(ctx, pageURL)
	if err != nil {
		return Details{}, err
	}

	det := Details{
		Language: domain.UnknownLanguage,
		Rating:   domain.UnknownLanguage,
		URL:      pageURL,
	}
	for _, h4 := range doc.Find("h4") {
		if h4.Text() != "Language:" {
			continue
		}
		if lang := htmldoc.First(h4.FollowingSiblings("a")).Text(); lang != "" {
			det.Language = lang
		}
		break
	}
	if rating := htmldoc.First(doc.FindAttr("span", "itemprop", "ratingValue")).Text(); rating != "" {
		det.Rating = rating
	}
	return det, nil
}

func (s *IMDBService) get(ctx context.Context, rawURL string) (htmldoc.Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return htmldoc.Node{}, err
	}
	req.Header.Set("User-Agent", "cinedigest")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return htmldoc.Node{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return htmldoc.Node{}, fmt.Errorf("imdb http error: %s", resp.Status)
	}
	return htmldoc.Parse(resp.Body)
}

// foldASCII remplace les caractères accentués avant l'encodage de la requête
// (NFD -> suppression des Mn -> NFC); l'index de recherche ne tolère pas
// toujours les titres non-ASCII tels quels.
func foldASCII(s string) string {
	tr := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if out, _, err := transform.String(tr, s); err == nil {
		return out
	}
	return s
}
