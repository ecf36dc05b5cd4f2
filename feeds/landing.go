package feeds

import (
	"bytes"
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/adrg/xdg"
	"github.com/miku/covpre"
	"github.com/miku/covpre/dateutil"
	"github.com/miku/covpre/schema/preprint"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultCacheTTL    = 30 * 24 * time.Hour
	DefaultResolverURL = "https://doi.org/"
)

// landingPageMetaNames are tried in order.
var landingPageMetaNames = []string{
	"citation_online_date",
	"citation_publication_date",
	"citation_date",
}

// LandingPageDater looks up the posting date of a record on its landing page.
// Repositories like SSRN register DOIs long after the paper was first posted,
// but keep the original date in the page metadata.
type LandingPageDater struct {
	Client      Doer
	ResolverURL string
	UserAgent   string
	CacheDir    string // empty disables the cache
	CacheTTL    time.Duration
	Workers     int
}

// NewLandingPageDater creates a dater with a cache in the XDG cache directory.
func NewLandingPageDater(client Doer) (*LandingPageDater, error) {
	cacheDir, err := xdg.CacheFile(filepath.Join(covpre.AppName, "landing"))
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, err
	}
	return &LandingPageDater{
		Client:      client,
		ResolverURL: DefaultResolverURL,
		CacheDir:    cacheDir,
		CacheTTL:    DefaultCacheTTL,
		Workers:     1,
	}, nil
}

func (d *LandingPageDater) cacheFile(identifier string) string {
	return filepath.Join(d.CacheDir, url.PathEscape(identifier))
}

// getCached returns a cached date, if it exists and is not expired.
func (d *LandingPageDater) getCached(identifier string) (time.Time, bool) {
	if d.CacheDir == "" {
		return time.Time{}, false
	}
	cacheFile := d.cacheFile(identifier)
	info, err := os.Stat(cacheFile)
	if err != nil {
		return time.Time{}, false
	}
	if d.CacheTTL > 0 && time.Since(info.ModTime()) > d.CacheTTL {
		return time.Time{}, false
	}
	b, err := os.ReadFile(cacheFile)
	if err != nil {
		return time.Time{}, false
	}
	t, err := dateutil.ParseDay(strings.TrimSpace(string(b)))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (d *LandingPageDater) setCached(identifier string, t time.Time) {
	if d.CacheDir == "" {
		return
	}
	b := []byte(t.Format(preprint.DateLayout))
	if err := os.WriteFile(d.cacheFile(identifier), b, 0644); err != nil {
		log.WithError(err).Warn("landing page cache")
	}
}

// ExtractDate finds the first parseable date in the citation meta tags of
// an HTML page.
func ExtractDate(page []byte) (time.Time, bool) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return time.Time{}, false
	}
	for _, name := range landingPageMetaNames {
		var result time.Time
		doc.Find(`meta[name="` + name + `"]`).EachWithBreak(func(i int, s *goquery.Selection) bool {
			v := strings.TrimSpace(s.AttrOr("content", ""))
			if v == "" {
				return true
			}
			t, err := dateutil.Parse(v)
			if err != nil {
				return true
			}
			result = preprint.Date(t)
			return false
		})
		if !result.IsZero() {
			return result, true
		}
	}
	return time.Time{}, false
}

// Date returns the date found on the landing page of a DOI. Failures are
// logged and reported as missing date.
func (d *LandingPageDater) Date(ctx context.Context, identifier string) (time.Time, bool) {
	if t, ok := d.getCached(identifier); ok {
		return t, true
	}
	link := d.ResolverURL + identifier
	b, err := fetch(ctx, d.Client, link, d.UserAgent)
	if err != nil {
		log.WithFields(log.Fields{"identifier": identifier}).WithError(err).Warn("landing page failed")
		return time.Time{}, false
	}
	t, ok := ExtractDate(b)
	if !ok {
		log.WithField("identifier", identifier).Debug("no date on landing page")
		return time.Time{}, false
	}
	d.setCached(identifier, t)
	return t, true
}

// Redate replaces the posted date of each record with the landing page
// date. Records without such a date get a zero date. Returns the number of
// records that got a date. Only context cancellation is returned as error.
func (d *LandingPageDater) Redate(ctx context.Context, records []preprint.Record) (int, error) {
	var (
		g     errgroup.Group
		found = make([]bool, len(records))
	)
	workers := d.Workers
	if workers < 1 {
		workers = 1
	}
	g.SetLimit(workers)
	for i := range records {
		if err := ctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			t, ok := d.Date(ctx, records[i].Identifier)
			records[i].PostedDate = t
			found[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var n int
	for _, ok := range found {
		if ok {
			n++
		}
	}
	return n, nil
}
