package searchclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/meilisync/connector/internal/document"
	"github.com/meilisync/connector/internal/errs"
)

// Options configures a MeilisearchClient.
type Options struct {
	Host   string
	APIKey string

	// IndexSettleCooldown is waited after creating a brand-new index,
	// before settings are applied to it.
	IndexSettleCooldown time.Duration
	// SettingsCooldown is waited after settings are applied, before the
	// index is used for document operations.
	SettingsCooldown time.Duration
	// BatchCooldown is waited between consecutive upsert/delete chunks.
	BatchCooldown time.Duration

	// HTTPClient overrides the default client, primarily for tests.
	HTTPClient *http.Client
	// MaxElapsedTime bounds the retry budget for a single HTTP call.
	MaxElapsedTime time.Duration
}

// MeilisearchClient is the Client capability talking directly to a
// Meilisearch HTTP API, since no Go SDK for it appears anywhere in the
// reference corpus this was built from.
type MeilisearchClient struct {
	host   string
	apiKey string
	http   *http.Client

	indexSettleCooldown time.Duration
	settingsCooldown    time.Duration
	batchCooldown       time.Duration
	maxElapsedTime      time.Duration
}

// NewMeilisearchClient builds a client from opts, applying the package
// defaults for any unset duration.
func NewMeilisearchClient(opts Options) *MeilisearchClient {
	c := &MeilisearchClient{
		host:                strings.TrimRight(opts.Host, "/"),
		apiKey:              opts.APIKey,
		http:                opts.HTTPClient,
		indexSettleCooldown: opts.IndexSettleCooldown,
		settingsCooldown:    opts.SettingsCooldown,
		batchCooldown:       opts.BatchCooldown,
		maxElapsedTime:      opts.MaxElapsedTime,
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 30 * time.Second}
	}
	if c.indexSettleCooldown <= 0 {
		c.indexSettleCooldown = time.Second
	}
	if c.settingsCooldown <= 0 {
		c.settingsCooldown = 500 * time.Millisecond
	}
	if c.batchCooldown <= 0 {
		c.batchCooldown = 100 * time.Millisecond
	}
	if c.maxElapsedTime <= 0 {
		c.maxElapsedTime = 30 * time.Second
	}
	return c
}

var _ Client = (*MeilisearchClient)(nil)

type indexStats struct {
	exists bool
}

// EnsureIndex implements Client.
func (c *MeilisearchClient) EnsureIndex(ctx context.Context, indexName, primaryKey string, settings IndexSettings) error {
	stat, err := c.indexExists(ctx, indexName)
	if err != nil {
		return err
	}
	if !stat.exists {
		body := map[string]any{"uid": indexName}
		if primaryKey != "" {
			body["primaryKey"] = primaryKey
		}
		if _, err := c.doJSON(ctx, http.MethodPost, "/indexes", body); err != nil {
			return errs.Wrap("searchclient.EnsureIndex", errs.Search, err)
		}
		c.sleep(ctx, c.indexSettleCooldown)
	}

	settingsBody := map[string]any{}
	if len(settings.SearchableAttributes) > 0 {
		settingsBody["searchableAttributes"] = settings.SearchableAttributes
	}
	if len(settings.RankingRules) > 0 {
		settingsBody["rankingRules"] = settings.RankingRules
	}
	if settings.TypoTolerance != nil {
		settingsBody["typoTolerance"] = map[string]any{"enabled": *settings.TypoTolerance}
	}
	if len(settingsBody) > 0 {
		path := fmt.Sprintf("/indexes/%s/settings", indexName)
		if _, err := c.doJSON(ctx, http.MethodPatch, path, settingsBody); err != nil {
			return errs.Wrap("searchclient.EnsureIndex", errs.Search, err)
		}
	}
	c.sleep(ctx, c.settingsCooldown)
	return nil
}

func (c *MeilisearchClient) indexExists(ctx context.Context, indexName string) (indexStats, error) {
	path := fmt.Sprintf("/indexes/%s", indexName)
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		var herr *httpStatusError
		if ok := asHTTPStatusError(err, &herr); ok && herr.status == http.StatusNotFound {
			return indexStats{exists: false}, nil
		}
		return indexStats{}, errs.Wrap("searchclient.indexExists", errs.Search, err)
	}
	resp.Body.Close()
	return indexStats{exists: true}, nil
}

// ListDocuments implements Client, paginating through Meilisearch's
// offset/limit document listing until a short page signals the end.
func (c *MeilisearchClient) ListDocuments(ctx context.Context, indexName string) ([]document.Document, error) {
	const pageSize = 1000
	var out []document.Document
	offset := 0
	for {
		path := fmt.Sprintf("/indexes/%s/documents?limit=%d&offset=%d", indexName, pageSize, offset)
		resp, err := c.do(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, errs.Wrap("searchclient.ListDocuments", errs.Search, err)
		}
		var page struct {
			Results []document.Document `json:"results"`
		}
		decodeErr := json.NewDecoder(resp.Body).Decode(&page)
		resp.Body.Close()
		if decodeErr != nil {
			return nil, errs.Wrap("searchclient.ListDocuments", errs.Search, decodeErr)
		}
		out = append(out, page.Results...)
		if len(page.Results) < pageSize {
			return out, nil
		}
		offset += pageSize
	}
}

// UpsertDocuments implements Client.
func (c *MeilisearchClient) UpsertDocuments(ctx context.Context, indexName string, docs []document.Document, batchSize int) error {
	if batchSize <= 0 {
		batchSize = len(docs)
		if batchSize == 0 {
			batchSize = 1
		}
	}
	path := fmt.Sprintf("/indexes/%s/documents", indexName)
	for i := 0; i < len(docs); i += batchSize {
		end := min(i+batchSize, len(docs))
		chunk := docs[i:end]
		if _, err := c.doJSON(ctx, http.MethodPost, path, chunk); err != nil {
			return errs.Wrap("searchclient.UpsertDocuments", errs.Search, err)
		}
		if end < len(docs) {
			c.sleep(ctx, c.batchCooldown)
		}
	}
	return nil
}

// DeleteDocuments implements Client.
func (c *MeilisearchClient) DeleteDocuments(ctx context.Context, indexName string, ids []string, batchSize int) error {
	if batchSize <= 0 {
		batchSize = len(ids)
		if batchSize == 0 {
			batchSize = 1
		}
	}
	path := fmt.Sprintf("/indexes/%s/documents/delete-batch", indexName)
	for i := 0; i < len(ids); i += batchSize {
		end := min(i+batchSize, len(ids))
		chunk := ids[i:end]
		if _, err := c.doJSON(ctx, http.MethodPost, path, chunk); err != nil {
			return errs.Wrap("searchclient.DeleteDocuments", errs.Search, err)
		}
		if end < len(ids) {
			c.sleep(ctx, c.batchCooldown)
		}
	}
	return nil
}

func (c *MeilisearchClient) sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// httpStatusError distinguishes a non-2xx HTTP response (possibly
// retryable, depending on status) from a transport-level failure.
type httpStatusError struct {
	status int
	body   string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("meilisearch: status %d: %s", e.status, e.body)
}

func asHTTPStatusError(err error, target **httpStatusError) bool {
	he, ok := err.(*httpStatusError)
	if !ok {
		return false
	}
	*target = he
	return true
}

func (c *MeilisearchClient) doJSON(ctx context.Context, method, path string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, method, path, body)
}

// do performs a single HTTP round-trip wrapped in capped exponential
// backoff, the same retry shape the teacher uses around flaky Dolt server
// connections: retryable failures (5xx, transport errors) are retried,
// 4xx responses are permanent.
func (c *MeilisearchClient) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var resp *http.Response

	op := func() error {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.host+path, reader)
		if err != nil {
			return backoff.Permanent(err)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		r, err := c.http.Do(req)
		if err != nil {
			return err
		}
		if r.StatusCode >= 500 {
			b, _ := io.ReadAll(r.Body)
			r.Body.Close()
			return &httpStatusError{status: r.StatusCode, body: string(b)}
		}
		if r.StatusCode >= 400 {
			b, _ := io.ReadAll(r.Body)
			r.Body.Close()
			return backoff.Permanent(&httpStatusError{status: r.StatusCode, body: string(b)})
		}
		resp = r
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = c.maxElapsedTime
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}
	return resp, nil
}
