// Package report renders daily, weekly and cumulative counts of preprints
// per source as charts.
package report

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/miku/covpre/atomicfile"
	"github.com/miku/covpre/dateutil"
	"github.com/miku/covpre/schema/preprint"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

const (
	// DefaultThreshold is the minimum number of records of a source to get
	// its own series.
	DefaultThreshold = 50
	// Other collects the sources below the threshold.
	Other = "Other"
)

// File names of the charts.
const (
	DayName        = "covid19_preprints_day.png"
	WeekName       = "covid19_preprints_week.png"
	CumulativeName = "covid19_preprints_day_cumulative.png"
)

// Series is a named sequence of counts.
type Series struct {
	Name   string
	Counts []float64
}

// Total returns the sum of all counts.
func (s Series) Total() (total float64) {
	for _, c := range s.Counts {
		total += c
	}
	return total
}

// Table holds one count per series and date.
type Table struct {
	Dates  []time.Time
	Series []Series
}

// Bucket returns the source name of every record, with sources of fewer than
// threshold records renamed to Other.
func Bucket(records []preprint.Record, threshold int) []string {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.Source]++
	}
	result := make([]string, len(records))
	for i, r := range records {
		if counts[r.Source] < threshold {
			result[i] = Other
		} else {
			result[i] = r.Source
		}
	}
	return result
}

// count builds a table with one row per period, as returned by key, from
// the first to the last period. Series are ordered by total, Other last.
func count(records []preprint.Record, threshold int, key func(time.Time) time.Time, periods func(s, e time.Time) []time.Time) Table {
	if len(records) == 0 {
		return Table{}
	}
	var (
		names      = Bucket(records, threshold)
		first      = key(records[0].PostedDate)
		last       = first
		perSource  = make(map[string]map[int64]float64) // keyed by unix time
		sourceList []string
	)
	for i, r := range records {
		k := key(r.PostedDate)
		if k.Before(first) {
			first = k
		}
		if k.After(last) {
			last = k
		}
		if _, ok := perSource[names[i]]; !ok {
			perSource[names[i]] = make(map[int64]float64)
			sourceList = append(sourceList, names[i])
		}
		perSource[names[i]][k.Unix()]++
	}
	t := Table{Dates: periods(first, last)}
	for _, name := range sourceList {
		s := Series{Name: name, Counts: make([]float64, len(t.Dates))}
		for j, d := range t.Dates {
			s.Counts[j] = perSource[name][d.Unix()]
		}
		t.Series = append(t.Series, s)
	}
	sort.SliceStable(t.Series, func(i, j int) bool {
		a, b := t.Series[i], t.Series[j]
		if (a.Name == Other) != (b.Name == Other) {
			return b.Name == Other
		}
		if a.Total() != b.Total() {
			return a.Total() > b.Total()
		}
		return a.Name < b.Name
	})
	return t
}

// Daily counts records per day.
func Daily(records []preprint.Record, threshold int) Table {
	return count(records, threshold, preprint.Date, dateutil.Days)
}

// Weekly counts records per week, weeks start on Monday.
func Weekly(records []preprint.Record, threshold int) Table {
	return count(records, threshold, dateutil.WeekStart, dateutil.Weeks)
}

// Cumulative returns running totals of a table.
func Cumulative(t Table) Table {
	result := Table{Dates: t.Dates}
	for _, s := range t.Series {
		c := Series{Name: s.Name, Counts: make([]float64, len(s.Counts))}
		var sum float64
		for i, v := range s.Counts {
			sum += v
			c.Counts[i] = sum
		}
		result.Series = append(result.Series, c)
	}
	return result
}

// Plot draws a table as one line per series.
func Plot(t Table, title, ylabel string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Posted date"
	p.Y.Label.Text = ylabel
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	p.Legend.Top = true
	p.Legend.Left = true
	for i, s := range t.Series {
		xys := make(plotter.XYs, len(t.Dates))
		for j, d := range t.Dates {
			xys[j].X = float64(d.Unix())
			xys[j].Y = s.Counts[j]
		}
		l, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("report: %s: %w", s.Name, err)
		}
		l.Color = plotutil.Color(i)
		l.Width = vg.Points(1.5)
		p.Add(l)
		p.Legend.Add(s.Name, l)
	}
	p.Add(plotter.NewGrid())
	return p, nil
}

// Save renders a plot as PNG, atomically.
func Save(p *plot.Plot, name string) error {
	wt, err := p.WriterTo(12*vg.Inch, 6*vg.Inch, "png")
	if err != nil {
		return err
	}
	f, err := atomicfile.New(name)
	if err != nil {
		return err
	}
	if _, err := wt.WriteTo(f); err != nil {
		f.Abort()
		return err
	}
	return f.Close()
}

// Write renders all charts into dir and returns their paths.
func Write(dir string, records []preprint.Record, threshold int) ([]string, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("report: no records")
	}
	daily := Daily(records, threshold)
	charts := []struct {
		name   string
		title  string
		ylabel string
		table  Table
	}{
		{DayName, "COVID-19 preprints per day", "Preprints per day", daily},
		{WeekName, "COVID-19 preprints per week", "Preprints per week", Weekly(records, threshold)},
		{CumulativeName, "COVID-19 preprints, cumulative", "Preprints", Cumulative(daily)},
	}
	var paths []string
	for _, c := range charts {
		p, err := Plot(c.table, c.title, c.ylabel)
		if err != nil {
			return nil, err
		}
		path := filepath.Join(dir, c.name)
		if err := Save(p, path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
