// Package api fetches media, people and organisations from the ownership
// API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ha1tch/reseau/pkg/config"
	"github.com/ha1tch/reseau/pkg/logger"
	"github.com/ha1tch/reseau/pkg/medias"
	"github.com/ha1tch/reseau/pkg/metrics"
)

// Collection paths.
const (
	CollectionMedias        = "medias"
	CollectionPersonnes     = "personnes"
	CollectionOrganisations = "organisations"
)

// Defaults used when Options leaves a field zero.
const (
	DefaultBaseURL   = "http://localhost:8000"
	DefaultPageLimit = 50
	DefaultTimeout   = 10 * time.Second
)

// ErrNotFound is matched by errors.Is for 404 responses.
var ErrNotFound = errors.New("not found")

// Error is a non-2xx response.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

// Is matches ErrNotFound for 404 responses.
func (e *Error) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// Options configures a Client.
type Options struct {
	BaseURL   string
	PageLimit int
	Timeout   time.Duration
	// Retries is the number of extra attempts after a transient failure.
	Retries int
	// Pages bounds how many pages FetchAll reads per collection; 1 when
	// zero.
	Pages int

	HTTPClient *http.Client
	Metrics    *metrics.Registry
}

// Client talks to the API.
type Client struct {
	base    *url.URL
	limit   int
	retries int
	pages   int
	backoff time.Duration
	http    *http.Client
	metrics *metrics.Registry
}

// New returns a client for the API at opts.BaseURL.
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", opts.BaseURL)
	}

	c := &Client{
		base:    base,
		limit:   opts.PageLimit,
		retries: max(opts.Retries, 0),
		pages:   max(opts.Pages, 1),
		backoff: 200 * time.Millisecond,
		http:    opts.HTTPClient,
		metrics: opts.Metrics,
	}
	if c.limit <= 0 {
		c.limit = DefaultPageLimit
	}
	if c.http == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		c.http = &http.Client{Timeout: timeout}
	}
	return c, nil
}

// FromConfig returns a client for the [api] config section.
func FromConfig(cfg config.APIConfig, reg *metrics.Registry) (*Client, error) {
	return New(Options{
		BaseURL:   cfg.BaseURL,
		PageLimit: cfg.PageLimit,
		Timeout:   cfg.Timeout.Std(),
		Retries:   cfg.Retries,
		Metrics:   reg,
	})
}

func (c *Client) pageURL(collection string, page int) string {
	u := *c.base
	u.Path = u.Path + "/" + collection
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(c.limit))
	u.RawQuery = q.Encode()
	return u.String()
}

// errorBody is the API's error envelope.
type errorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func responseError(resp *http.Response) error {
	msg := fmt.Sprintf("Erreur HTTP %d", resp.StatusCode)
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var eb errorBody
	if json.Unmarshal(body, &eb) == nil && eb.Error.Message != "" {
		msg = eb.Error.Message
	}
	return &Error{Status: resp.StatusCode, Message: msg}
}

// get fetches one URL, retrying transient failures.
func (c *Client) get(ctx context.Context, collection, rawURL string) ([]byte, error) {
	return retryWithContext(ctx, c.retries+1, c.backoff, func(ctx context.Context) ([]byte, error) {
		start := time.Now()
		data, err := c.do(ctx, rawURL)
		status := "ok"
		if err != nil {
			status = "error"
			logger.Debug("api request failed", "url", rawURL, "err", err)
		}
		c.metrics.RecordFetch(collection, status, time.Since(start))
		return data, err
	})
}

func (c *Client) do(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, responseError(resp)
	}
	return io.ReadAll(resp.Body)
}

func fetchPage[T medias.Entity](ctx context.Context, c *Client, collection string, page int) (*medias.Page[T], error) {
	data, err := c.get(ctx, collection, c.pageURL(collection, page))
	if err != nil {
		return nil, fmt.Errorf("fetch %s page %d: %w", collection, page, err)
	}
	p, err := medias.ParsePage[T](data)
	if err != nil {
		return nil, fmt.Errorf("fetch %s page %d: %w", collection, page, err)
	}
	return p, nil
}

// fetchAll reads up to c.pages pages of a collection.
func fetchAll[T medias.Entity](ctx context.Context, c *Client, collection string) ([]T, error) {
	var items []T
	for page := 1; page <= c.pages; page++ {
		p, err := fetchPage[T](ctx, c, collection, page)
		if err != nil {
			return nil, err
		}
		items = append(items, p.Data...)
		if page >= p.Pagination.Pages {
			break
		}
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Medias fetches one page of media.
func (c *Client) Medias(ctx context.Context, page int) (*medias.Page[medias.Media], error) {
	return fetchPage[medias.Media](ctx, c, CollectionMedias, page)
}

// Personnes fetches one page of people.
func (c *Client) Personnes(ctx context.Context, page int) (*medias.Page[medias.Personne], error) {
	return fetchPage[medias.Personne](ctx, c, CollectionPersonnes, page)
}

// Organisations fetches one page of organisations.
func (c *Client) Organisations(ctx context.Context, page int) (*medias.Page[medias.Organisation], error) {
	return fetchPage[medias.Organisation](ctx, c, CollectionOrganisations, page)
}

// FetchAll fetches the three collections concurrently. The first failure
// cancels the other requests.
func (c *Client) FetchAll(ctx context.Context) (medias.Dataset, error) {
	var ds medias.Dataset
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		items, err := fetchAll[medias.Media](gctx, c, CollectionMedias)
		ds.Medias = items
		return err
	})
	g.Go(func() error {
		items, err := fetchAll[medias.Personne](gctx, c, CollectionPersonnes)
		ds.Personnes = items
		return err
	})
	g.Go(func() error {
		items, err := fetchAll[medias.Organisation](gctx, c, CollectionOrganisations)
		ds.Organisations = items
		return err
	})

	if err := g.Wait(); err != nil {
		return medias.Dataset{}, err
	}
	logger.Info("dataset fetched",
		"medias", len(ds.Medias),
		"personnes", len(ds.Personnes),
		"organisations", len(ds.Organisations))
	return ds, nil
}
