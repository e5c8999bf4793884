package agent_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/dive-sac-agent/internal/adapter/htmldoc"
	"github.com/couchcryptid/dive-sac-agent/internal/agent"
	"github.com/couchcryptid/dive-sac-agent/internal/domain"
	"github.com/couchcryptid/dive-sac-agent/internal/observability"
)

func loadPage(t *testing.T, name string) *htmldoc.Document {
	t.Helper()
	f, err := os.Open(filepath.Join("..", "adapter", "htmldoc", "testdata", name))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })

	doc, err := htmldoc.Parse(f)
	require.NoError(t, err)
	return doc
}

func TestModalWatcher_HTMLDocument(t *testing.T) {
	ctx := context.Background()
	doc := loadPage(t, "manual_dive.html")
	w := newWatcher(doc)

	require.NoError(t, w.Check(ctx))
	require.NoError(t, w.Check(ctx))

	require.NoError(t, doc.SetValue(ctx, domain.FieldTankSize, "12"))
	require.NoError(t, doc.SetValue(ctx, domain.FieldStartingPressure, "200"))
	assert.Empty(t, doc.Value(domain.FieldSACRate), "ending pressure still blank")

	require.NoError(t, doc.SetValue(ctx, domain.FieldEndingPressure, "50"))
	assert.Equal(t, "2.50", doc.Value(domain.FieldSACRate))

	// Depth is read at event time but does not trigger on its own.
	require.NoError(t, doc.SetValue(ctx, domain.FieldAverageDepth, "0"))
	assert.Equal(t, "2.50", doc.Value(domain.FieldSACRate))
	require.NoError(t, doc.SetValue(ctx, domain.FieldTankSize, "12"))
	assert.Equal(t, "7.50", doc.Value(domain.FieldSACRate))

	require.NoError(t, doc.SetValue(ctx, domain.FieldEndingPressure, "250"))
	assert.Empty(t, doc.Value(domain.FieldSACRate), "no gas consumed clears the field")
}

func TestTableAugmenter_HTMLDocument(t *testing.T) {
	ctx := context.Background()
	doc := loadPage(t, "view_table.html")
	a := agent.NewTableAugmenter(doc, domain.DefaultLayouts(), 2, discardLogger(), observability.NewMetricsForTesting())

	require.NoError(t, a.Check(ctx))
	var first bytes.Buffer
	require.NoError(t, doc.Render(&first))

	for range 3 {
		require.NoError(t, a.Check(ctx))
	}
	var later bytes.Buffer
	require.NoError(t, doc.Render(&later))
	assert.Equal(t, first.String(), later.String(), "repeated passes add nothing")

	table, ok, err := doc.SummaryTable(ctx, domain.ViewLayout)
	require.NoError(t, err)
	require.True(t, ok)
	rows, err := table.Rows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "RMV", rows[0][7])
	assert.Equal(t, "27.75", rows[1][7])
	assert.Equal(t, "--", rows[2][7])
}
