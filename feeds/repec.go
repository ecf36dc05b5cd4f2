package feeds

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/miku/covpre/schema/oai"
	log "github.com/sirupsen/logrus"
)

// RePEcHarvester harvests an OAI-PMH endpoint, by default the RePEc gateway,
// with ListRecords and resumption tokens. Records are written as they are,
// one element per line.
type RePEcHarvester struct {
	Client         Doer
	ApiEndpoint    string // https://oai.repec.org/
	MetadataPrefix string // oai_dc
	Set            string
	UserAgent      string
	MaxRetries     int
}

func (c *RePEcHarvester) Name() string { return "repec" }

func (c *RePEcHarvester) link(vs url.Values) string {
	return c.ApiEndpoint + "?" + vs.Encode()
}

// Harvest writes all records of the window into w. The complete list size
// of the first response serves as count. A noRecordsMatch response is an
// empty harvest.
func (c *RePEcHarvester) Harvest(ctx context.Context, w io.Writer, from, until time.Time) error {
	prefix := c.MetadataPrefix
	if prefix == "" {
		prefix = "oai_dc"
	}
	vs := url.Values{}
	vs.Set("verb", "ListRecords")
	vs.Set("metadataPrefix", prefix)
	vs.Set("from", from.Format("2006-01-02"))
	vs.Set("until", until.Format("2006-01-02"))
	if c.Set != "" {
		vs.Set("set", c.Set)
	}
	var (
		seen, total int64
		i           int
	)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		link := c.link(vs)
		b, err := fetch(ctx, c.Client, link, c.UserAgent)
		if err != nil {
			return fmt.Errorf("repec: %w", err)
		}
		var resp oai.Response
		if err := xml.Unmarshal(b, &resp); err != nil {
			if i < c.MaxRetries {
				i++
				log.Warnf("repec: decode failed with %v, retrying [%d/%d]", err, i, c.MaxRetries)
				continue
			}
			return fmt.Errorf("repec: decode failed with %w", err)
		}
		i = 0
		if resp.IsEmpty() {
			log.WithField("source", c.Name()).Info("no records match")
			return nil
		}
		if resp.HasError() {
			return fmt.Errorf("repec: %s: %s", resp.Error.Code, resp.Error.Message)
		}
		token := resp.ListRecords.ResumptionToken
		if total == 0 {
			total = token.CompleteListSize
			log.WithFields(log.Fields{
				"source": c.Name(),
				"from":   vs.Get("from"),
				"until":  vs.Get("until"),
				"total":  total,
			}).Info("starting harvest")
		}
		for _, r := range resp.ListRecords.Records {
			if err := writeLine(w, r.Bytes()); err != nil {
				return err
			}
		}
		seen += int64(len(resp.ListRecords.Records))
		logSeenRatio(c.Name(), seen, total, log.Fields{"cursor": token.Cursor})
		if strings.TrimSpace(token.Value) == "" || len(resp.ListRecords.Records) == 0 {
			break
		}
		vs = url.Values{}
		vs.Set("verb", "ListRecords")
		vs.Set("resumptionToken", strings.TrimSpace(token.Value))
	}
	log.WithFields(log.Fields{"source": c.Name(), "seen": seen, "total": total}).Info("harvest done")
	return nil
}
