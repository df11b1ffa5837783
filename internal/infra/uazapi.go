package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/leodymann/wi-api/internal/apperr"
)

// Media is a /send/media payload. File is an http(s) URL or a base64 data URI.
type Media struct {
	Kind     string `json:"type"` // image | document | video | audio
	File     string `json:"file"`
	Caption  string `json:"text,omitempty"`
	DocName  string `json:"docName,omitempty"`
	MimeType string `json:"mimetype,omitempty"`
}

type UazapiConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// UazapiClient talks to the uazapi WhatsApp gateway.
type UazapiClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewUazapiClient fails with a configuration error when no token is set; the
// worker refuses to start in that case.
func NewUazapiClient(cfg UazapiConfig) (*UazapiClient, error) {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, apperr.New(apperr.KindConfiguration, "uazapi", "UAZAPI_TOKEN is not configured")
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = "https://free.uazapi.com"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &UazapiClient{
		baseURL:    base,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// SendText posts {number, text} to /send/text.
func (c *UazapiClient) SendText(ctx context.Context, to, body string) error {
	return c.post(ctx, "/send/text", map[string]string{"number": to, "text": body})
}

// SendMedia posts {number, type, file, ...} to /send/media.
func (c *UazapiClient) SendMedia(ctx context.Context, to string, m Media) error {
	payload := struct {
		Number string `json:"number"`
		Media
	}{Number: to, Media: m}
	return c.post(ctx, "/send/media", payload)
}

func (c *UazapiClient) post(ctx context.Context, path string, payload any) error {
	op := "uazapi " + strings.TrimPrefix(path, "/")

	body, err := json.Marshal(payload)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, op, fmt.Errorf("marshal payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, op, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("token", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.KindTransientSend, op, fmt.Errorf("request error: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return apperr.Wrap(apperr.KindTransientSend, op,
			fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
