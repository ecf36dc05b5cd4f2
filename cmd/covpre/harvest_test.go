package main

import (
	"testing"

	"github.com/adrg/xdg"
	"github.com/miku/covpre/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPipeline(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	xdg.Reload()
	c := config.Default()
	c.SampleDate = "2020-06-30"
	c.Sources = []string{"crossref", "repec"}
	c.FeedDir = t.TempDir()

	p, err := newPipeline(c, "run-1")
	require.NoError(t, err)
	require.Len(t, p.Sources, 2)
	assert.Equal(t, "crossref", p.Sources[0].Name)
	assert.Equal(t, "repec", p.Sources[1].Name)
	assert.Equal(t, "xml", p.Sources[1].Ext)
	assert.Equal(t, "2020-06-30", p.Window.End.Format("2006-01-02"))
	assert.NotNil(t, p.Dater)
	assert.Equal(t, []string{"SSRN"}, p.RedateSources)

	c.Landing.Disabled = true
	p, err = newPipeline(c, "run-2")
	require.NoError(t, err)
	assert.Nil(t, p.Dater)
}

func TestNewPipelineInvalid(t *testing.T) {
	c := config.Default()
	c.TopicPattern = "covid("
	_, err := newPipeline(c, "run")
	assert.Error(t, err)
}
