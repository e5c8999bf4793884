package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/dive-sac-agent/internal/adapter/htmldoc"
	"github.com/couchcryptid/dive-sac-agent/internal/domain"
	"github.com/couchcryptid/dive-sac-agent/internal/observability"
)

const dualPage = `<!DOCTYPE html>
<html><body>
<form>
  <input id="tankSize" value="11.1">
  <input id="startingPressure" value="200">
  <input id="endingPressure" value="50">
  <input id="averageDepth" value="20">
  <select id="averageDepthSelect"><option value="metric" selected>m</option></select>
  <input id="bottomTime_1-time-hour" value="0">
  <input id="bottomTime_1-time-minute" value="20">
  <input id="sacRate" value="">
</form>
<table class="tanks-table tanks-table-edit">
  <tr><th>Gas</th><th>Size</th><th>Start</th><th>End</th><th>Rate</th><th></th></tr>
  <tr><td>Air</td><td>11.1 L</td><td>200</td><td>50</td><td>2.50</td><td><button>Edit</button></td></tr>
</table>
</body></html>`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAugment_TableAndRecalc(t *testing.T) {
	ctx := context.Background()
	doc, err := htmldoc.Parse(strings.NewReader(dualPage))
	require.NoError(t, err)

	res, err := augment(ctx, doc, options{precision: 2, recalc: true}, testLogger(), observability.NewMetricsForTesting())
	require.NoError(t, err)

	assert.Equal(t, "edit", res.table)
	assert.True(t, res.hasForm)
	assert.Equal(t, "2.50", res.sacRate)

	table, ok, err := doc.SummaryTable(ctx, domain.EditLayout)
	require.NoError(t, err)
	require.True(t, ok)
	rows, err := table.Rows(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.TableRow{"Air", "11.1 L", "200", "50", "2.50", "27.75", "Edit"}, rows[1])
}

func TestAugment_SecondRunIsNoOp(t *testing.T) {
	ctx := context.Background()
	doc, err := htmldoc.Parse(strings.NewReader(dualPage))
	require.NoError(t, err)
	metrics := observability.NewMetricsForTesting()

	_, err = augment(ctx, doc, options{precision: 2}, testLogger(), metrics)
	require.NoError(t, err)
	var first bytes.Buffer
	require.NoError(t, doc.Render(&first))

	res, err := augment(ctx, doc, options{precision: 2}, testLogger(), metrics)
	require.NoError(t, err)
	var second bytes.Buffer
	require.NoError(t, doc.Render(&second))

	assert.Empty(t, res.table)
	assert.Equal(t, first.String(), second.String())
}

func TestAugment_WithoutRecalcLeavesSAC(t *testing.T) {
	doc, err := htmldoc.Parse(strings.NewReader(dualPage))
	require.NoError(t, err)

	res, err := augment(context.Background(), doc, options{precision: 2}, testLogger(), observability.NewMetricsForTesting())
	require.NoError(t, err)

	assert.Empty(t, res.sacRate)
	assert.Empty(t, doc.Value(domain.FieldSACRate))
}

func TestRunOnce_WritesOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "dive.html")
	out := filepath.Join(dir, "dive_rmv.html")
	require.NoError(t, os.WriteFile(in, []byte(dualPage), 0o600))

	_, err := runOnce(context.Background(), options{in: in, out: out, precision: 2}, testLogger(), observability.NewMetricsForTesting())
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<th>RMV</th>")
	assert.Contains(t, string(data), "<td>27.75</td>")
}

func TestRunOnce_MissingInput(t *testing.T) {
	_, err := runOnce(context.Background(), options{in: filepath.Join(t.TempDir(), "nope.html")}, testLogger(), observability.NewMetricsForTesting())
	require.Error(t, err)
}

func TestWatchFile_RejectsInPlaceOutput(t *testing.T) {
	err := watchFile(context.Background(), options{in: "dive.html", out: "./dive.html"}, testLogger(), observability.NewMetricsForTesting())
	require.ErrorContains(t, err, "differ")
}

func TestWatchFile_RequiresOutput(t *testing.T) {
	err := watchFile(context.Background(), options{in: "dive.html"}, testLogger(), observability.NewMetricsForTesting())
	require.ErrorContains(t, err, "requires -out")
}
