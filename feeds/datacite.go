package feeds

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/miku/covpre/schema/datacite"
	"github.com/segmentio/encoding/json"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// DataCiteHarvester fetches DOI records from the DataCite REST API with
// cursor pagination, cf. https://support.datacite.org/docs/pagination.
type DataCiteHarvester struct {
	Client              Doer
	ApiEndpoint         string // https://api.datacite.org/dois
	Query               string // e.g. types.resourceTypeGeneral:Preprint
	ResourceTypeID      string // e.g. preprint
	PageSize            int
	UserAgent           string
	MaxRetries          int
	AcceptableMissRatio float64
}

func (c *DataCiteHarvester) Name() string { return "datacite" }

func (c *DataCiteHarvester) pageSize() int {
	if c.PageSize <= 0 {
		return 1000
	}
	return c.PageSize
}

// query limits the search to records registered within the window.
func (c *DataCiteHarvester) query(from, until time.Time) url.Values {
	q := fmt.Sprintf("registered:[%s TO %s]",
		from.Format("2006-01-02"), until.Format("2006-01-02"))
	if c.Query != "" {
		q = c.Query + " AND " + q
	}
	vs := url.Values{}
	vs.Set("query", q)
	if c.ResourceTypeID != "" {
		vs.Set("resource-type-id", c.ResourceTypeID)
	}
	return vs
}

// Count requests a single record and returns the total.
func (c *DataCiteHarvester) Count(ctx context.Context, from, until time.Time) (int64, error) {
	vs := c.query(from, until)
	vs.Set("page[size]", "1")
	b, err := fetch(ctx, c.Client, c.ApiEndpoint+"?"+vs.Encode(), c.UserAgent)
	if err != nil {
		return 0, fmt.Errorf("datacite: %w", err)
	}
	if !gjson.ValidBytes(b) {
		return 0, fmt.Errorf("datacite: invalid count response")
	}
	return gjson.GetBytes(b, "meta.total").Int(), nil
}

// Harvest writes all records of the window as JSON lines into w.
func (c *DataCiteHarvester) Harvest(ctx context.Context, w io.Writer, from, until time.Time) error {
	total, err := c.Count(ctx, from, until)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"source": c.Name(),
		"query":  c.query(from, until).Get("query"),
		"total":  total,
	}).Info("starting harvest")
	if total == 0 {
		return nil
	}
	vs := c.query(from, until)
	vs.Set("page[cursor]", "1")
	vs.Set("page[size]", strconv.Itoa(c.pageSize()))
	var (
		link = c.ApiEndpoint + "?" + vs.Encode()
		seen int64
		i    int
	)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		b, err := fetch(ctx, c.Client, link, c.UserAgent)
		if err != nil {
			return fmt.Errorf("datacite: %w", err)
		}
		var lr datacite.ListResponse
		if err := json.Unmarshal(b, &lr); err != nil {
			if i < c.MaxRetries {
				i++
				log.Warnf("datacite: decode failed with %v, retrying [%d/%d]", err, i, c.MaxRetries)
				continue
			}
			return fmt.Errorf("datacite: decode failed with %w", err)
		}
		i = 0
		for _, doc := range lr.Data {
			if err := writeLine(w, doc); err != nil {
				return err
			}
		}
		seen += int64(len(lr.Data))
		logSeenRatio(c.Name(), seen, total, log.Fields{"page": lr.Meta.Page})
		if lr.IsLast() || seen >= total || len(lr.Data) < c.pageSize() {
			break
		}
		link = lr.Links.Next
	}
	log.WithFields(log.Fields{"source": c.Name(), "seen": seen, "total": total}).Info("harvest done")
	return checkSeen(c.Name(), seen, total, c.AcceptableMissRatio)
}
