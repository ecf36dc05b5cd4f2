package feeds

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/miku/covpre/schema/crossref"
	"github.com/segmentio/encoding/json"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// CrossrefHarvester fetches works of a given type from the Crossref REST API,
// cf. https://api.crossref.org/swagger-ui/index.html.
type CrossrefHarvester struct {
	Client              Doer
	ApiEndpoint         string // https://api.crossref.org/works
	ApiFilter           string // date filter, e.g. "posted" for from-posted-date
	WorkType            string // e.g. posted-content
	ApiEmail            string
	Rows                int
	UserAgent           string
	MaxRetries          int
	AcceptableMissRatio float64 // recommended: 0.1
}

func (c *CrossrefHarvester) Name() string { return "crossref" }

func (c *CrossrefHarvester) rows() int {
	if c.Rows <= 0 {
		return 1000
	}
	return c.Rows
}

// filter returns the filter query parameter for a date window.
func (c *CrossrefHarvester) filter(from, until time.Time) string {
	s := fmt.Sprintf("from-%s-date:%s,until-%s-date:%s",
		c.ApiFilter,
		from.Format("2006-01-02"),
		c.ApiFilter,
		until.Format("2006-01-02"))
	if c.WorkType != "" {
		s = "type:" + c.WorkType + "," + s
	}
	return s
}

// query returns the base query of every request.
func (c *CrossrefHarvester) query(from, until time.Time) url.Values {
	vs := url.Values{}
	vs.Set("filter", c.filter(from, until))
	if c.ApiEmail != "" {
		vs.Set("mailto", c.ApiEmail)
	}
	return vs
}

// Count asks for zero rows and returns the number of matching works.
func (c *CrossrefHarvester) Count(ctx context.Context, from, until time.Time) (int64, error) {
	vs := c.query(from, until)
	vs.Set("rows", "0")
	b, err := fetch(ctx, c.Client, c.ApiEndpoint+"?"+vs.Encode(), c.UserAgent)
	if err != nil {
		return 0, fmt.Errorf("crossref: %w", err)
	}
	if !gjson.ValidBytes(b) {
		return 0, fmt.Errorf("crossref: invalid count response")
	}
	if status := gjson.GetBytes(b, "status").String(); status != "ok" {
		return 0, fmt.Errorf("crossref failed with status: %s", status)
	}
	return gjson.GetBytes(b, "message.total-results").Int(), nil
}

// Harvest writes all works of the window as JSON lines into w.
func (c *CrossrefHarvester) Harvest(ctx context.Context, w io.Writer, from, until time.Time) error {
	total, err := c.Count(ctx, from, until)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"source": c.Name(),
		"filter": c.filter(from, until),
		"total":  total,
	}).Info("starting harvest")
	if total == 0 {
		return nil
	}
	vs := c.query(from, until)
	vs.Set("cursor", "*")
	vs.Set("rows", strconv.Itoa(c.rows()))
	var (
		seen int64
		i    int // for retries
	)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		link := fmt.Sprintf("%s?%s", c.ApiEndpoint, vs.Encode())
		b, err := fetch(ctx, c.Client, link, c.UserAgent)
		if err != nil {
			return fmt.Errorf("crossref: %w", err)
		}
		var wr crossref.WorksResponse
		if err := json.Unmarshal(b, &wr); err != nil {
			if i < c.MaxRetries {
				i++
				log.Warnf("crossref: decode failed with %v, retrying [%d/%d]", err, i, c.MaxRetries)
				continue
			}
			return fmt.Errorf("crossref: decode failed with %w", err)
		}
		i = 0
		if wr.Status != "ok" {
			return fmt.Errorf("crossref failed with status: %s", wr.Status)
		}
		for _, item := range wr.Message.Items {
			if err := writeLine(w, item); err != nil {
				return err
			}
		}
		seen += int64(len(wr.Message.Items))
		logSeenRatio(c.Name(), seen, total, log.Fields{"cursor": wr.Message.NextCursor})
		if wr.IsLast() || seen >= total || len(wr.Message.Items) < c.rows() {
			break
		}
		vs.Set("cursor", wr.Message.NextCursor)
	}
	log.WithFields(log.Fields{"source": c.Name(), "seen": seen, "total": total}).Info("harvest done")
	return checkSeen(c.Name(), seen, total, c.AcceptableMissRatio)
}
