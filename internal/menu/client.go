// Package menu fetches the restaurant's daily menu from the Sodexo JSON feed.
package menu

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"go.uber.org/zap"

	"github.com/robertomlsoares/hiomo-tg-bot/internal/domain"
)

// Client reads the daily menu feed for a single restaurant.
type Client struct {
	httpc        *http.Client
	baseURL      string
	restaurantID string
	log          *zap.Logger
}

// NewClient creates a feed client. timeout bounds each HTTP request.
func NewClient(baseURL, restaurantID string, timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		httpc:        &http.Client{Timeout: timeout},
		baseURL:      baseURL,
		restaurantID: restaurantID,
		log:          log,
	}
}

// feed mirrors the daily JSON document. Courses carry bilingual titles and
// diet codes ("G, L"); category marks desserts.
type feed struct {
	Courses []struct {
		TitleFi    string `json:"title_fi"`
		TitleEn    string `json:"title_en"`
		Properties string `json:"properties"`
		Category   string `json:"category"`
	} `json:"courses"`
}

// Menu fetches and parses the menu for day. A 404 or an empty course list
// means nothing is published for that date and maps to ErrMenuUnavailable.
// One retry covers transient HTTP failures.
func (c *Client) Menu(ctx context.Context, day domain.Date) (domain.Menu, error) {
	t, err := day.Time(time.UTC)
	if err != nil {
		return domain.Menu{}, err
	}
	url := fmt.Sprintf("%s/%s/%d/%d/%d/fi", c.baseURL, c.restaurantID, t.Year(), int(t.Month()), t.Day())

	var body []byte
	err = retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			resp, err := c.httpc.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			switch {
			case resp.StatusCode == http.StatusNotFound:
				return retry.Unrecoverable(domain.ErrMenuUnavailable)
			case resp.StatusCode != http.StatusOK:
				return fmt.Errorf("feed returned %s", resp.Status)
			}

			body, err = io.ReadAll(resp.Body)
			return err
		},
		retry.Attempts(2),
		retry.Delay(time.Second),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.log.Warn("menu fetch retry", zap.Uint("attempt", n), zap.Error(err))
		}),
	)
	if err != nil {
		if errors.Is(err, domain.ErrMenuUnavailable) {
			return domain.Menu{}, domain.ErrMenuUnavailable
		}
		return domain.Menu{}, fmt.Errorf("fetch menu for %s: %w", day, err)
	}

	var f feed
	if err := json.Unmarshal(body, &f); err != nil {
		return domain.Menu{}, fmt.Errorf("parse menu for %s: %w", day, err)
	}

	m := domain.Menu{Date: day}
	for _, fc := range f.Courses {
		m.Courses = append(m.Courses, domain.Course{
			TitleFi:    fc.TitleFi,
			TitleEn:    fc.TitleEn,
			Properties: fc.Properties,
			Category:   fc.Category,
		})
	}
	if m.Empty() {
		return domain.Menu{}, domain.ErrMenuUnavailable
	}
	return m, nil
}

// FetchText returns the menu for day formatted for lang, or
// ErrMenuUnavailable when nothing is published.
func (c *Client) FetchText(ctx context.Context, day domain.Date, lang domain.Language) (string, error) {
	m, err := c.Menu(ctx, day)
	if err != nil {
		return "", err
	}
	return m.Format(lang), nil
}
