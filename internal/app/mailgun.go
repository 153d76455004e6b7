package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Mailer livre le digest via l'API messages de Mailgun. Un seul POST de
// formulaire, pas besoin de SDK.
type Mailer struct {
	baseURL    string
	domain     string
	apiKey     string
	from       string
	recipients []string
	client     *http.Client
}

func NewMailer(domain, apiKey, from string, recipients []string) (*Mailer, error) {
	if strings.TrimSpace(domain) == "" || strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("mailgun domain and api key are required")
	}
	if strings.TrimSpace(from) == "" || len(recipients) == 0 {
		return nil, errors.New("mailgun from and recipients are required")
	}
	return &Mailer{
		baseURL:    "https://api.eu.mailgun.net/v3",
		domain:     domain,
		apiKey:     apiKey,
		from:       from,
		recipients: recipients,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

func (m *Mailer) WithBaseURL(base string) *Mailer {
	if strings.TrimSpace(base) != "" {
		m.baseURL = strings.TrimRight(strings.TrimSpace(base), "/")
	}
	return m
}

func (m *Mailer) Send(ctx context.Context, subject, htmlBody string) error {
	form := url.Values{}
	form.Set("from", m.from)
	for _, rcpt := range m.recipients {
		form.Add("to", rcpt)
	}
	form.Set("subject", subject)
	form.Set("html", htmlBody)

	endpoint := fmt.Sprintf("%s/%s/messages", m.baseURL, m.domain)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("api", m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("mailgun http error: %s", resp.Status)
	}
	return nil
}
