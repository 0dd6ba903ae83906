package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Webhook POSTs every event as JSON to a URL, e.g. a mod-log relay
type Webhook struct {
	URL        string
	HTTPClient *http.Client
}

func NewWebhook(url string) *Webhook {
	return &Webhook{URL: url, HTTPClient: &http.Client{Timeout: 10 * time.Second}}
}

func (w *Webhook) Publish(ctx context.Context, event Event) error {
	buf := bytes.Buffer{}
	if err := json.NewEncoder(&buf).Encode(event); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := w.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		buf.Reset()
		io.Copy(&buf, io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook status: %d, %s", resp.StatusCode, buf.String())
	}
	return nil
}

func (w *Webhook) String() string { return "webhook" }
