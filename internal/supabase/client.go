package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/lukamv/studysuite/internal/identity"
	"github.com/lukamv/studysuite/internal/logger"
	"github.com/lukamv/studysuite/internal/progress"
)

const progressTable = "progress"

// Client talks to the hosted table store's REST API. It owns the canonical
// progress row per user and exposes the fetch/upsert pair the reconciler
// builds on.
type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	log        *logger.Logger
}

// New creates a Client for the project at baseURL authenticated with anonKey.
func New(baseURL, anonKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		anonKey:    anonKey,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.Default().WithPrefix("supabase"),
	}
}

// progressRow is the wire shape of one stored progress record.
type progressRow struct {
	UserID    string   `json:"user_id"`
	Attempts  int      `json:"attempts"`
	Correct   int      `json:"correct"`
	WrongIDs  []string `json:"wrong_ids"`
	SeenIDs   []string `json:"seen_ids"`
	UpdatedAt string   `json:"updated_at,omitempty"`
}

func (row progressRow) toSnapshot() progress.Snapshot {
	return progress.Normalize(progress.Snapshot{
		Attempts: row.Attempts,
		Correct:  row.Correct,
		SeenIDs:  progress.NewIDSet(row.SeenIDs...),
		WrongIDs: progress.NewIDSet(row.WrongIDs...),
	})
}

// Fetch returns the stored snapshot for userID. Missing rows, network
// problems and malformed payloads all collapse to the zero snapshot with a
// warning; a session must keep running even when the store cannot be read.
// The only hard failure is a missing user id.
func (c *Client) Fetch(ctx context.Context, userID string) (progress.Snapshot, error) {
	if userID == "" {
		return progress.Snapshot{}, progress.ErrUnauthenticated
	}
	log := logger.FromContext(ctx).WithPrefix("supabase").WithField("user_id", userID)

	endpoint := fmt.Sprintf("%s/rest/v1/%s?select=user_id,attempts,correct,wrong_ids,seen_ids&user_id=eq.%s&limit=1",
		c.baseURL, progressTable, url.QueryEscape(userID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		log.Warn("could not build fetch request, assuming empty progress: %v", err)
		return progress.NewSnapshot(), nil
	}
	c.setHeaders(ctx, req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("progress fetch failed, assuming empty progress: %v", err)
		return progress.NewSnapshot(), nil
	}
	defer resp.Body.Close()

	log.Debug("progress fetch responded in %v, status=%d", time.Since(start), resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Warn("progress fetch status %d, assuming empty progress: %s", resp.StatusCode, string(body))
		return progress.NewSnapshot(), nil
	}

	var rows []progressRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		log.Warn("malformed progress row, assuming empty progress: %v", err)
		return progress.NewSnapshot(), nil
	}
	if len(rows) == 0 {
		log.Debug("no progress row yet")
		return progress.NewSnapshot(), nil
	}
	return rows[0].toSnapshot(), nil
}

// Upsert writes snap as the new canonical row for userID, inserting or
// replacing unconditionally. Failures are reported to the caller; the
// reconciler keeps its local state and retries on the next save.
func (c *Client) Upsert(ctx context.Context, userID string, snap progress.Snapshot) error {
	if userID == "" {
		return progress.ErrUnauthenticated
	}
	log := logger.FromContext(ctx).WithPrefix("supabase").WithField("user_id", userID)

	snap = progress.Normalize(snap)
	row := progressRow{
		UserID:    userID,
		Attempts:  snap.Attempts,
		Correct:   snap.Correct,
		WrongIDs:  snap.WrongIDs.Sorted(),
		SeenIDs:   snap.SeenIDs.Sorted(),
		UpdatedAt: "now()",
	}
	payload, err := json.Marshal(row)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, progressTable)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	c.setHeaders(ctx, req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "resolution=merge-duplicates,return=minimal")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("progress upsert failed: %v", err)
		return err
	}
	defer resp.Body.Close()

	log.Debug("progress upsert responded in %v, status=%d", time.Since(start), resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Error("progress upsert status %d: %s", resp.StatusCode, string(body))
		return fmt.Errorf("upsert status %d: %s", resp.StatusCode, string(body))
	}

	log.Debug("progress upsert ok: attempts=%d correct=%d", row.Attempts, row.Correct)
	return nil
}

// setHeaders attaches the project key and the caller's bearer token. When the
// request context carries a signed-in session its token is used, so row-level
// security sees the real user; otherwise the anon key doubles as the bearer.
func (c *Client) setHeaders(ctx context.Context, req *http.Request) {
	req.Header.Set("apikey", c.anonKey)
	if sess, ok := identity.FromContext(ctx); ok && sess.Token != "" {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
		return
	}
	req.Header.Set("Authorization", "Bearer "+c.anonKey)
}

// Ensure Client satisfies the reconciler's store contract.
var _ progress.Store = (*Client)(nil)
