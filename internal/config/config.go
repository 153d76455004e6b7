package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/cinedigest/cinedigest/internal/domain"
)

//go:embed sample_config.toml
var sampleConfig string

// Sample renvoie un settings.toml complet prêt à éditer.
func Sample() string {
	return sampleConfig
}

// Listings configure la source des grilles horaires.
type Listings struct {
	BaseURL     string `toml:"base_url"`
	Cinemas     string `toml:"cinemas"`
	Days        int    `toml:"days"`
	Concurrency int    `toml:"concurrency"`
}

// IMDB configure la résolution de métadonnées.
type IMDB struct {
	BaseURL     string `toml:"base_url"`
	Enrich      bool   `toml:"enrich"`
	Concurrency int    `toml:"concurrency"`
}

// Languages porte la liste des langues approuvées (comparées sans casse).
type Languages struct {
	Approved []string `toml:"approved"`
}

// Mailgun configure la livraison du digest.
type Mailgun struct {
	BaseURL    string   `toml:"base_url"`
	Domain     string   `toml:"domain"`
	APIKey     string   `toml:"api_key"`
	From       string   `toml:"from"`
	Recipients []string `toml:"recipients"`
}

// Server configure l'API HTTP et le déclenchement périodique.
type Server struct {
	Addr     string `toml:"addr"`
	RunEvery string `toml:"run_every"`

	runEvery time.Duration
}

// RunEvery renvoie l'intervalle entre deux runs planifiés (0 = désactivé).
func (s Server) Interval() time.Duration {
	return s.runEvery
}

type Config struct {
	Listings     Listings          `toml:"listings"`
	IMDB         IMDB              `toml:"imdb"`
	Languages    Languages         `toml:"languages"`
	Availability map[string]string `toml:"availability"`
	Mailgun      Mailgun           `toml:"mailgun"`
	Server       Server            `toml:"server"`

	windows Windows
}

// Windows est le lookup typé jour-de-semaine -> fenêtre, construit une fois
// au chargement et en lecture seule ensuite.
type Windows struct {
	byDay map[time.Weekday]domain.Window
}

// For renvoie la fenêtre du jour, ou une ConfigError si aucune n'est
// configurée: on ne défaulte jamais une fenêtre horaire.
func (w Windows) For(day time.Weekday) (domain.Window, error) {
	win, ok := w.byDay[day]
	if !ok {
		return domain.Window{}, &domain.ConfigError{
			Reason: fmt.Sprintf("no availability window for %s", day.String()[:3]),
		}
	}
	return win, nil
}

func (c *Config) Windows() Windows {
	return c.windows
}

// Load lit le fichier TOML, applique les overrides d'environnement puis
// valide. Un chemin inexistant est une erreur: sans fenêtres de
// disponibilité le pipeline ne peut pas tourner.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := toml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Les secrets et l'adresse d'écoute peuvent venir de l'environnement
// (pratique en conteneur), le reste vit dans le TOML.
func (c *Config) applyEnv() {
	c.Mailgun.APIKey = envOr("CINEDIGEST_MAILGUN_API_KEY", c.Mailgun.APIKey)
	c.Mailgun.Domain = envOr("CINEDIGEST_MAILGUN_DOMAIN", c.Mailgun.Domain)
	c.Server.Addr = envOr("CINEDIGEST_ADDR", c.Server.Addr)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
