package main

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"YieldDesk/internal/domain/catalog"
	"YieldDesk/internal/domain/models"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootRejectsUnknownFormat(t *testing.T) {
	_, err := run(t, "catalog", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestCatalogJSON(t *testing.T) {
	out, err := run(t, "catalog")
	require.NoError(t, err)

	var entries []catalog.Entry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	assert.Equal(t, catalog.Treasury().Entries(), entries)
}

func TestHistoryRequiresLabel(t *testing.T) {
	_, err := run(t, "history", "--start", "2024-01-01")
	require.Error(t, err)
}

func TestHistoryRejectsMalformedEnd(t *testing.T) {
	_, err := run(t, "history", "10 Year", "--start", "2024-01-01", "--end", "2024-13-45")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2024-13-45")
}

func TestNewsMarkdown(t *testing.T) {
	res := &models.NewsResult{
		Query: models.NewsQuery{Query: "bonds"},
		Articles: []models.Article{{
			Title:       "Yields climb",
			URL:         "https://example.com/a",
			Source:      "Wire",
			PublishedAt: time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC),
			Description: "Treasuries sold off.",
		}},
	}

	md := newsMarkdown(res)
	assert.Contains(t, md, "# News: bonds")
	assert.Contains(t, md, "## [Yields climb](https://example.com/a)")
	assert.Contains(t, md, "*Wire* · 2024-03-01 14:00 UTC")
	assert.Contains(t, md, "Treasuries sold off.")

	res.Unavailable = true
	assert.Contains(t, newsMarkdown(res), "currently unavailable")

	assert.Contains(t, newsMarkdown(&models.NewsResult{}), "No articles found")
}
