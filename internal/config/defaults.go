package config

// Default renvoie une configuration sans fenêtres de disponibilité ni
// identifiants Mailgun: ceux-là doivent venir du fichier.
func Default() Config {
	return Config{
		Listings: Listings{
			BaseURL:     "https://en.pathe.nl",
			Cinemas:     "1,2,9,10",
			Days:        7,
			Concurrency: 4,
		},
		IMDB: IMDB{
			BaseURL:     "https://www.imdb.com",
			Enrich:      true,
			Concurrency: 4,
		},
		Mailgun: Mailgun{
			BaseURL: "https://api.eu.mailgun.net/v3",
		},
		Server: Server{
			Addr: "127.0.0.1:8080",
		},
	}
}
