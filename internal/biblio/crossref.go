package biblio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/dchernyak/cvproof/internal/cache"
)

// maxSearchBodyBytes bounds how much of a search response is read.
const maxSearchBodyBytes = 2 << 20

// CrossrefClient implements SearchService against the Crossref works API.
type CrossrefClient struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	mailTo     string
	limiter    *rate.Limiter
	cache      cache.Cache
	cacheTTL   time.Duration
}

// CrossrefOption customizes the client.
type CrossrefOption func(*CrossrefClient)

// WithCache caches search responses; repeated titles across a CV (or a
// batch) then cost one request.
func WithCache(c cache.Cache, ttl time.Duration) CrossrefOption {
	return func(cl *CrossrefClient) {
		cl.cache = c
		cl.cacheTTL = ttl
	}
}

// WithMailTo adds the polite-pool mailto parameter.
func WithMailTo(mail string) CrossrefOption {
	return func(cl *CrossrefClient) {
		cl.mailTo = mail
	}
}

// WithHTTPClient overrides the underlying HTTP client (tests point it at a
// local server).
func WithHTTPClient(hc *http.Client) CrossrefOption {
	return func(cl *CrossrefClient) {
		cl.httpClient = hc
	}
}

// NewCrossrefClient creates a search client. Requests are rate-limited to
// stay inside Crossref's public-pool expectations.
func NewCrossrefClient(baseURL, userAgent string, timeout time.Duration, opts ...CrossrefOption) *CrossrefClient {
	if baseURL == "" {
		baseURL = "https://api.crossref.org"
	}

	cl := &CrossrefClient{
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		limiter:   rate.NewLimiter(rate.Limit(2), 2),
	}

	for _, opt := range opts {
		opt(cl)
	}

	return cl
}

// crossrefResponse mirrors the subset of the works API response we read.
type crossrefResponse struct {
	Message struct {
		Items []crossrefWork `json:"items"`
	} `json:"message"`
}

type crossrefWork struct {
	DOI    string   `json:"DOI"`
	Title  []string `json:"title"`
	URL    string   `json:"URL"`
	Author []struct {
		Given  string `json:"given"`
		Family string `json:"family"`
		Name   string `json:"name"`
		ORCID  string `json:"ORCID"`
	} `json:"author"`
	IsReferencedByCount int `json:"is-referenced-by-count"`
	Issued              struct {
		DateParts [][]int `json:"date-parts"`
	} `json:"issued"`
}

// Search queries the works API by title and maps the hits to SourceRecords.
func (c *CrossrefClient) Search(ctx context.Context, title string, maxResults int) ([]SourceRecord, error) {
	if maxResults <= 0 {
		maxResults = 5
	}

	cacheKey := cache.Key(fmt.Sprintf("crossref:%s:%d", strings.ToLower(title), maxResults))
	if c.cache != nil {
		if data, found := c.cache.Get(cacheKey); found {
			var records []SourceRecord
			if err := json.Unmarshal(data, &records); err == nil {
				return records, nil
			}
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("query.title", title)
	q.Set("rows", fmt.Sprintf("%d", maxResults))
	q.Set("select", "DOI,title,author,URL,is-referenced-by-count,issued")
	if c.mailTo != "" {
		q.Set("mailto", c.mailTo)
	}

	reqURL := c.baseURL + "/works?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSearchBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var parsed crossrefResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	records := make([]SourceRecord, 0, len(parsed.Message.Items))
	for _, item := range parsed.Message.Items {
		rec := SourceRecord{
			DOI:           item.DOI,
			Titles:        item.Title,
			URL:           item.URL,
			CitationCount: item.IsReferencedByCount,
		}
		for _, a := range item.Author {
			rec.Authors = append(rec.Authors, SourceAuthor{
				Given:  a.Given,
				Family: a.Family,
				Name:   a.Name,
				ORCID:  a.ORCID,
			})
		}
		if len(item.Issued.DateParts) > 0 && len(item.Issued.DateParts[0]) > 0 {
			rec.Year = item.Issued.DateParts[0][0]
		}
		records = append(records, rec)
	}

	if c.cache != nil {
		if data, err := json.Marshal(records); err == nil {
			_ = c.cache.Set(cacheKey, data, c.cacheTTL)
		}
	}

	return records, nil
}
