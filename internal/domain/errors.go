package domain

import "errors"

// ErrNoTitle: une section film sans nœud titre est inexploitable. L'erreur
// est absorbée au niveau de la section (on saute la section, pas le run).
var ErrNoTitle = errors.New("movie section has no title")

// ErrBadShowtime: un libellé horaire ne matche pas "HH:MM". Fatal pour cette
// séance uniquement.
var ErrBadShowtime = errors.New("malformed showtime label")

// ConfigError est la seule erreur qui fait échouer un run complet: une
// fenêtre de disponibilité absente ne peut pas être défaultée sans risque.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "configuration error: " + e.Reason
}

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
