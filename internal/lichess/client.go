// Package lichess is a thin Lichess Board API adapter (spec §6: the
// Lichess adapter is an external-collaborator interface). It is adapted
// from the teacher's lichess/client.go: the same bearer-token
// http.Client-with-redirect-reauthorization and rate-limit retry loop,
// generalised to take a context.Context on every call (so a game loop can
// be cancelled cleanly) and to log through zerolog instead of the standard
// library's log package, matching the rest of this repository's ambient
// logging.
package lichess

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const apiHost = "https://lichess.org/"

const (
	rateLimitCooloff = time.Minute
	rateLimitRetries = 4
)

// ErrRateLimited is returned when every retry attempt was rate-limited.
var ErrRateLimited = errors.New("lichess: request was rate limited on each attempt")

// Client is a minimal Lichess Board API client: authenticated event and
// game-state streaming, plus move submission.
type Client struct {
	apiKey string
	client *http.Client
	logger zerolog.Logger

	rateLimitMu   sync.Mutex
	rateLimitTime time.Time
}

// NewClient builds a Client authenticated with apiKey.
func NewClient(apiKey string, logger zerolog.Logger) *Client {
	c := &Client{apiKey: apiKey, logger: logger}
	c.client = &http.Client{CheckRedirect: c.redirectPolicy}
	return c
}

// redirectPolicy re-adds the bearer token Go's http.Client strips on
// redirect and preserves the original method, mirroring the teacher's
// redirectPolicyFunc (Lichess has, in the past, redirected API endpoints).
func (c *Client) redirectPolicy(req *http.Request, via []*http.Request) error {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Method = via[0].Method
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, form url.Values) (*http.Request, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, apiHost+strings.TrimPrefix(path, "/"), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	return req, nil
}

type apiError struct {
	Error string `json:"error"`
}

// do sends req, transparently retrying on HTTP 429 with the standard
// Lichess cooldown, mirroring the teacher's doRequest.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	for attempt := 0; attempt < rateLimitRetries; attempt++ {
		if cooloff := c.currentCooloff(); cooloff > 0 {
			c.logger.Warn().Dur("cooloff", cooloff).Msg("rate limited, sleeping")
			select {
			case <-req.Context().Done():
				return nil, req.Context().Err()
			case <-time.After(cooloff):
			}
		}

		res, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		if res.StatusCode == http.StatusTooManyRequests {
			c.setRateLimitTime(time.Now())
			res.Body.Close()
			continue
		}
		if res.StatusCode != http.StatusOK {
			defer res.Body.Close()
			var lichessErr apiError
			body, _ := io.ReadAll(res.Body)
			_ = json.Unmarshal(body, &lichessErr)
			if lichessErr.Error == "" {
				lichessErr.Error = string(body)
			}
			return nil, fmt.Errorf("lichess: %s %s: %s", req.Method, req.URL.Path, lichessErr.Error)
		}
		return res, nil
	}
	return nil, ErrRateLimited
}

func (c *Client) currentCooloff() time.Duration {
	c.rateLimitMu.Lock()
	defer c.rateLimitMu.Unlock()
	if c.rateLimitTime.IsZero() {
		return 0
	}
	elapsed := time.Since(c.rateLimitTime)
	if elapsed >= rateLimitCooloff {
		return 0
	}
	return rateLimitCooloff - elapsed
}

func (c *Client) setRateLimitTime(t time.Time) {
	c.rateLimitMu.Lock()
	defer c.rateLimitMu.Unlock()
	c.rateLimitTime = t
}

// MakeMove submits uci as the move for gameID, optionally offering a draw.
func (c *Client) MakeMove(ctx context.Context, gameID, uci string, offerDraw bool) error {
	form := url.Values{}
	if offerDraw {
		form.Set("offeringDraw", "true")
	}
	req, err := c.newRequest(ctx, http.MethodPost, fmt.Sprintf("/api/bot/game/%s/move/%s", gameID, uci), form)
	if err != nil {
		return err
	}
	res, err := c.do(req)
	if err != nil {
		return err
	}
	return res.Body.Close()
}

// decodeNDJSON drains a chunked newline-delimited-JSON HTTP response into a
// channel of decoded values, closing the channel when the stream ends. It
// is the shared plumbing behind StreamEvents and StreamGame.
func decodeNDJSON[T any](res *http.Response, logger zerolog.Logger) <-chan T {
	out := make(chan T)
	go func() {
		defer res.Body.Close()
		defer close(out)
		dec := json.NewDecoder(res.Body)
		for dec.More() {
			var v T
			if err := dec.Decode(&v); err != nil {
				logger.Warn().Err(err).Msg("lichess: stream decode error")
				return
			}
			out <- v
		}
	}()
	return out
}
