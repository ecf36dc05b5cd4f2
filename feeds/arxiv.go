package feeds

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/miku/covpre/schema/arxiv"
	"github.com/mmcdole/gofeed"
	"github.com/segmentio/encoding/json"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// DefaultArxivTerms are searched in title and abstract.
var DefaultArxivTerms = []string{
	"coronavirus",
	"covid-19",
	"sars-cov",
	"ncov-2019",
	"2019-ncov",
	"hcov-19",
	"sars-2",
}

// DefaultArxivInterval is the delay between requests recommended by the
// arXiv API user manual.
const DefaultArxivInterval = 3 * time.Second

const arxivErrorPrefix = "http://arxiv.org/api/errors"

// ArxivHarvester queries the arXiv search API, cf.
// https://info.arxiv.org/help/api/user-manual.html, and writes each entry as
// JSON line.
type ArxivHarvester struct {
	Client              Doer
	ApiEndpoint         string // http://export.arxiv.org/api/query
	Terms               []string
	PageSize            int
	Limiter             *rate.Limiter
	UserAgent           string
	MaxRetries          int
	AcceptableMissRatio float64
}

func (c *ArxivHarvester) Name() string { return "arxiv" }

func (c *ArxivHarvester) pageSize() int {
	if c.PageSize <= 0 {
		return 1000
	}
	return c.PageSize
}

// SearchQuery returns the search_query parameter for a window.
func (c *ArxivHarvester) SearchQuery(from, until time.Time) string {
	terms := c.Terms
	if len(terms) == 0 {
		terms = DefaultArxivTerms
	}
	var clauses []string
	for _, t := range terms {
		clauses = append(clauses, fmt.Sprintf(`ti:"%s" OR abs:"%s"`, t, t))
	}
	return fmt.Sprintf("(%s) AND submittedDate:[%s0000 TO %s2359]",
		strings.Join(clauses, " OR "),
		from.Format("20060102"),
		until.Format("20060102"))
}

// page fetches and parses a single result page.
func (c *ArxivHarvester) page(ctx context.Context, query string, start, size int) (*gofeed.Feed, error) {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	vs := url.Values{}
	vs.Set("search_query", query)
	vs.Set("start", strconv.Itoa(start))
	vs.Set("max_results", strconv.Itoa(size))
	vs.Set("sortBy", "submittedDate")
	vs.Set("sortOrder", "ascending")
	b, err := fetch(ctx, c.Client, c.ApiEndpoint+"?"+vs.Encode(), c.UserAgent)
	if err != nil {
		return nil, err
	}
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("feed parse failed: %w", err)
	}
	// errors are reported as a single entry
	if len(feed.Items) == 1 && strings.HasPrefix(feed.Items[0].GUID, arxivErrorPrefix) {
		return nil, fmt.Errorf("api error: %s", strings.TrimSpace(feed.Items[0].Description))
	}
	return feed, nil
}

// totalResults returns the opensearch result count of a feed.
func totalResults(feed *gofeed.Feed) int64 {
	vs := feed.Extensions["opensearch"]["totalResults"]
	if len(vs) == 0 {
		return 0
	}
	n, _ := strconv.ParseInt(strings.TrimSpace(vs[0].Value), 10, 64)
	return n
}

// Count asks for zero results and returns the total.
func (c *ArxivHarvester) Count(ctx context.Context, from, until time.Time) (int64, error) {
	feed, err := c.page(ctx, c.SearchQuery(from, until), 0, 0)
	if err != nil {
		return 0, fmt.Errorf("arxiv: %w", err)
	}
	return totalResults(feed), nil
}

// itemToEntry reduces a feed item to the fields we keep.
func itemToEntry(item *gofeed.Item) arxiv.Entry {
	entry := arxiv.Entry{
		ID:         strings.TrimSpace(item.GUID),
		Title:      item.Title,
		Summary:    item.Description,
		Published:  item.Published,
		Updated:    item.Updated,
		Categories: item.Categories,
	}
	for _, a := range item.Authors {
		if a != nil && a.Name != "" {
			entry.Authors = append(entry.Authors, a.Name)
		}
	}
	if vs := item.Extensions["arxiv"]["doi"]; len(vs) > 0 {
		entry.DOI = strings.TrimSpace(vs[0].Value)
	}
	return entry
}

// Harvest writes all entries of the window into w. The API sometimes answers
// with an empty page, these pages are retried.
func (c *ArxivHarvester) Harvest(ctx context.Context, w io.Writer, from, until time.Time) error {
	total, err := c.Count(ctx, from, until)
	if err != nil {
		return err
	}
	query := c.SearchQuery(from, until)
	log.WithFields(log.Fields{
		"source": c.Name(),
		"query":  query,
		"total":  total,
	}).Info("starting harvest")
	var (
		seen int64
		i    int
		size = c.pageSize()
	)
	for seen < total {
		if err := ctx.Err(); err != nil {
			return err
		}
		feed, err := c.page(ctx, query, int(seen), size)
		if err != nil {
			return fmt.Errorf("arxiv: %w", err)
		}
		if len(feed.Items) == 0 {
			if i < c.MaxRetries {
				i++
				log.Warnf("arxiv: empty page at start=%d, retrying [%d/%d]", seen, i, c.MaxRetries)
				continue
			}
			break
		}
		i = 0
		for _, item := range feed.Items {
			b, err := json.Marshal(itemToEntry(item))
			if err != nil {
				return err
			}
			if err := writeLine(w, b); err != nil {
				return err
			}
		}
		seen += int64(len(feed.Items))
		logSeenRatio(c.Name(), seen, total, log.Fields{"start": seen})
		if len(feed.Items) < size {
			break
		}
	}
	log.WithFields(log.Fields{"source": c.Name(), "seen": seen, "total": total}).Info("harvest done")
	return checkSeen(c.Name(), seen, total, c.AcceptableMissRatio)
}
