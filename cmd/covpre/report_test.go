package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/miku/covpre/dataset"
	"github.com/miku/covpre/schema/preprint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReportFromTable(t *testing.T) {
	dir := t.TempDir()
	day := time.Date(2020, 3, 2, 0, 0, 0, 0, time.UTC)
	records := []preprint.Record{
		{Source: "medRxiv", Identifier: "10.1101/1", IdentifierType: preprint.DOI, PostedDate: day, Title: "A"},
		{Source: "arXiv", Identifier: "2003.00001", IdentifierType: preprint.ArxivID, PostedDate: day.AddDate(0, 0, 9), Title: "B"},
	}
	table := filepath.Join(dir, dataset.CSVName+".gz")
	require.NoError(t, dataset.WriteFile(table, records))

	paths, err := writeReport(dir, table, 1)
	require.NoError(t, err)
	require.Len(t, paths, 3)
	for _, p := range paths {
		b, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.Equal(t, "\x89PNG", string(b[:4]), p)
	}

	_, err = writeReport(dir, filepath.Join(dir, "missing.csv"), 1)
	assert.Error(t, err)
}
