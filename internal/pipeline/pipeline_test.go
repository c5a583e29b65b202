package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/cashier-report-converter/internal/config"
	"github.com/insightdelivered/cashier-report-converter/internal/models"
	"github.com/insightdelivered/cashier-report-converter/internal/writer"
)

type fakeSource struct {
	pages []string
	fail  map[int]bool
}

func (s *fakeSource) NumPages() int { return len(s.pages) }

func (s *fakeSource) Page(i int) (models.Page, error) {
	if s.fail[i] {
		return models.Page{}, errors.New("broken page")
	}
	return models.Page{Index: i, Text: s.pages[i]}, nil
}

type recordingSink struct {
	header  bool
	batches [][]models.TransactionRecord
	err     error
}

func (s *recordingSink) WriteHeader() error {
	s.header = true
	return nil
}

func (s *recordingSink) WriteRecords(records []models.TransactionRecord) error {
	if s.err != nil {
		return s.err
	}
	s.batches = append(s.batches, records)
	return nil
}

func (s *recordingSink) Close() error { return nil }

func (s *recordingSink) all() []models.TransactionRecord {
	var out []models.TransactionRecord
	for _, b := range s.batches {
		out = append(out, b...)
	}
	return out
}

func newTestPipeline() *Pipeline {
	return New(config.DefaultProfile(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRunPreservesOrderAcrossBatches(t *testing.T) {
	src := &fakeSource{pages: []string{
		"10/06/25 08:00:00\nR$ 1.00\n10/06/25 09:00:00\nR$ 2.00",
		"10/06/25 10:00:00\nR$ 3.00",
	}}

	for _, batchPages := range []int{1, 2, 10} {
		sink := &recordingSink{}
		res, err := newTestPipeline().Run(context.Background(), src, sink, Options{BatchPages: batchPages})
		require.NoError(t, err)

		records := sink.all()
		require.Len(t, records, 3)
		assert.Equal(t, "10/06/25 08:00:00", records[0].Timestamp)
		assert.Equal(t, "10/06/25 09:00:00", records[1].Timestamp)
		assert.Equal(t, "10/06/25 10:00:00", records[2].Timestamp)
		assert.Equal(t, 3, res.Records)
		assert.Equal(t, 2, res.Pages)
		assert.True(t, sink.header)
		assert.Empty(t, res.Diagnostics)
	}
}

func TestRunFlushesAtBatchBoundaries(t *testing.T) {
	src := &fakeSource{pages: []string{
		"10/06/25 08:00:00",
		"10/06/25 09:00:00",
		"10/06/25 10:00:00",
	}}
	sink := &recordingSink{}

	_, err := newTestPipeline().Run(context.Background(), src, sink, Options{BatchPages: 1})
	require.NoError(t, err)

	// Each page closes the previous page's block; the last block closes at the end.
	require.Len(t, sink.batches, 3)
	for _, b := range sink.batches {
		assert.Len(t, b, 1)
	}
}

func TestRunPageFailureIsNotFatal(t *testing.T) {
	src := &fakeSource{
		pages: []string{"10/06/25 08:00:00", "ignored", "10/06/25 10:00:00"},
		fail:  map[int]bool{1: true},
	}
	sink := &recordingSink{}

	res, err := newTestPipeline().Run(context.Background(), src, sink, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.PageFailures)
	assert.Equal(t, 3, res.Pages)
	assert.Equal(t, 2, res.Records)
}

func TestRunProgress(t *testing.T) {
	src := &fakeSource{pages: []string{"a", "b", "c", "d"}}

	var seen []models.Progress
	_, err := newTestPipeline().Run(context.Background(), src, &recordingSink{}, Options{
		Progress: func(p models.Progress) { seen = append(seen, p) },
	})
	require.NoError(t, err)

	require.Len(t, seen, 4)
	for i := 1; i < len(seen); i++ {
		assert.Greater(t, seen[i].Fraction, seen[i-1].Fraction)
	}
	assert.Equal(t, 1.0, seen[3].Fraction)
	assert.Equal(t, "page 4 of 4", seen[3].Status)
}

func TestRunCancelled(t *testing.T) {
	src := &fakeSource{pages: []string{
		"10/06/25 08:00:00\n10/06/25 09:00:00",
		"R$ 5.00",
		"10/06/25 10:00:00",
	}}
	sink := &recordingSink{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	res, err := newTestPipeline().Run(ctx, src, sink, Options{
		BatchPages: 1,
		Progress: func(p models.Progress) {
			if p.Page == 2 {
				cancel()
			}
		},
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, res.Pages)

	// Only the block closed on page 1 was emitted; the open one is dropped.
	records := sink.all()
	require.Len(t, records, 1)
	assert.Equal(t, "10/06/25 08:00:00", records[0].Timestamp)
}

func TestRunDiagnosticsOnEmptyResult(t *testing.T) {
	profile := config.DefaultProfile()
	profile.DiagnosticLines = 3
	src := &fakeSource{pages: []string{"Relatório de Transações\nnothing here", "still\nnothing"}}

	res, err := New(profile, nil).Run(context.Background(), src, &recordingSink{}, Options{})
	require.NoError(t, err)
	assert.Zero(t, res.Records)
	assert.Equal(t, []string{"Relatório de Transações", "nothing here", "still"}, res.Diagnostics)
}

func TestRunSinkError(t *testing.T) {
	src := &fakeSource{pages: []string{"10/06/25 08:00:00"}}
	sink := &recordingSink{err: errors.New("disk full")}

	_, err := newTestPipeline().Run(context.Background(), src, sink, Options{})
	assert.ErrorContains(t, err, "disk full")
}

func TestRunDebug(t *testing.T) {
	src := &fakeSource{pages: []string{"Página: 1 de 1\n10/06/25 08:00:00"}}

	res, err := newTestPipeline().Run(context.Background(), src, &recordingSink{}, Options{Debug: true})
	require.NoError(t, err)
	require.Len(t, res.DebugLines, 2)
	assert.Equal(t, "filtered", res.DebugLines[0].Result)
}

func TestRunMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	p := newTestPipeline().WithMetrics(m)

	src := &fakeSource{pages: []string{"10/06/25 08:00:00", "x"}, fail: map[int]bool{1: true}}
	_, err := p.Run(context.Background(), src, &recordingSink{}, Options{})
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Pages))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PageFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Records))
}

func TestRunWritesIdenticalRecordsUnchanged(t *testing.T) {
	block := "10/06/25 14:15:19\n100516151111\nR$ 30.00\nPorto"
	src := &fakeSource{pages: []string{block + "\n" + block, block}}

	var buf bytes.Buffer
	profile := config.DefaultProfile()
	res, err := newTestPipeline().Run(context.Background(), src, writer.NewDelimitedWriter(&buf, profile), Options{BatchPages: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Records)

	row := ";100516151111;;;10/06/25 14:15:19;;R$0.00;;R$0.00;R$30.00;100516151111;Porto"
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, strings.Join(profile.Columns, ";"), lines[0])
	assert.Equal(t, []string{row, row, row}, lines[1:])
}
