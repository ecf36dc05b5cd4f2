package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/miku/covpre/schema/preprint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func records(source string, n int, date string) []preprint.Record {
	t, err := time.Parse(preprint.DateLayout, date)
	if err != nil {
		panic(err)
	}
	var result []preprint.Record
	for i := 0; i < n; i++ {
		result = append(result, preprint.Record{Source: source, PostedDate: t})
	}
	return result
}

func concat(rss ...[]preprint.Record) (result []preprint.Record) {
	for _, rs := range rss {
		result = append(result, rs...)
	}
	return result
}

func TestBucket(t *testing.T) {
	rs := concat(records("medRxiv", 3, "2020-03-02"), records("Qeios", 1, "2020-03-02"))
	assert.Equal(t, []string{"medRxiv", "medRxiv", "medRxiv", Other}, Bucket(rs, 2))
	assert.Equal(t, []string{Other, Other, Other, Other}, Bucket(rs, DefaultThreshold))
}

func TestDaily(t *testing.T) {
	rs := concat(
		records("bioRxiv", 2, "2020-03-04"),
		records("medRxiv", 3, "2020-03-02"),
		records("medRxiv", 1, "2020-03-04"),
		records("Qeios", 1, "2020-03-03"),
	)
	table := Daily(rs, 2)
	require.Len(t, table.Dates, 3)
	assert.Equal(t, "2020-03-02", table.Dates[0].Format(preprint.DateLayout))
	assert.Equal(t, "2020-03-04", table.Dates[2].Format(preprint.DateLayout))
	require.Len(t, table.Series, 3)
	assert.Equal(t, Series{Name: "medRxiv", Counts: []float64{3, 0, 1}}, table.Series[0])
	assert.Equal(t, Series{Name: "bioRxiv", Counts: []float64{0, 0, 2}}, table.Series[1])
	assert.Equal(t, Series{Name: Other, Counts: []float64{0, 1, 0}}, table.Series[2])

	cum := Cumulative(table)
	assert.Equal(t, []float64{3, 3, 4}, cum.Series[0].Counts)
	assert.Equal(t, []float64{0, 1, 1}, cum.Series[2].Counts)
	assert.Equal(t, table.Dates, cum.Dates)
}

func TestWeekly(t *testing.T) {
	// 2020-03-01 is a Sunday, 2020-03-02 a Monday
	rs := concat(
		records("medRxiv", 1, "2020-03-01"),
		records("medRxiv", 2, "2020-03-02"),
		records("medRxiv", 1, "2020-03-08"),
		records("medRxiv", 4, "2020-03-16"),
	)
	table := Weekly(rs, 1)
	var dates []string
	for _, d := range table.Dates {
		dates = append(dates, d.Format(preprint.DateLayout))
	}
	assert.Equal(t, []string{"2020-02-24", "2020-03-02", "2020-03-09", "2020-03-16"}, dates)
	require.Len(t, table.Series, 1)
	assert.Equal(t, []float64{1, 3, 0, 4}, table.Series[0].Counts)
}

func TestEmpty(t *testing.T) {
	assert.Empty(t, Daily(nil, 1).Dates)
	_, err := Write(t.TempDir(), nil, 1)
	assert.Error(t, err)
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	rs := concat(
		records("medRxiv", 60, "2020-03-02"),
		records("bioRxiv", 55, "2020-03-09"),
		records("Qeios", 3, "2020-03-10"),
	)
	paths, err := Write(dir, rs, DefaultThreshold)
	require.NoError(t, err)
	require.Len(t, paths, 3)
	for _, name := range []string{DayName, WeekName, CumulativeName} {
		b, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(b, []byte("\x89PNG")), name)
	}
}
