package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/cashier-report-converter/internal/config"
	"github.com/insightdelivered/cashier-report-converter/internal/models"
)

func newTestParser() *ReportParser {
	return New(config.DefaultProfile())
}

func TestParseScenario(t *testing.T) {
	lines := []string{
		"PORTO",
		"10/06/25 14:15:19",
		"caixa buzios",
		"15",
		"6",
		"100516151111",
		"R$ 30.00",
		"R$ 30.00",
		"Porto",
		"R$ 0.00",
	}

	report, err := newTestParser().Parse([]string{strings.Join(lines, "\n")})
	require.NoError(t, err)
	require.Len(t, report.Records, 1)

	assert.Equal(t, models.TransactionRecord{
		RegisterID:        "",
		TransactionNumber: "100516151111",
		FiscalCounterID:   "6",
		SessionID:         "15",
		Timestamp:         "10/06/25 14:15:19",
		TariffLabel:       "caixa buzios",
		StayFee:           "R$30.00",
		RebateType:        "",
		RebatedAmount:     "R$0.00",
		BilledAmount:      "R$30.00",
		TicketID:          "100516151111",
		PaymentMethod:     "Porto",
	}, report.Records[0])
	assert.Equal(t, 10, report.Lines)
	assert.Equal(t, 1, report.Blocks)
}

func TestParseNoTimestamp(t *testing.T) {
	report, err := newTestParser().Parse([]string{"caixa buzios\n15\n100516151111\nR$ 30.00\nPorto"})
	require.NoError(t, err)
	assert.Empty(t, report.Records)
	assert.Equal(t, 0, report.Blocks)
}

func TestParseBoilerplateOnlyPage(t *testing.T) {
	pages := []string{
		"10/06/25 14:15:19\nR$ 1.00",
		"Relatório de Transações\nEmissão: 10/06/25\nValores Lançados\nCaixa Transação T. Fiscais\nPágina: 2 de 3",
		"10/06/25 14:20:00\nR$ 2.00",
	}

	report, err := newTestParser().Parse(pages)
	require.NoError(t, err)
	require.Len(t, report.Records, 2)
	assert.Equal(t, "R$1.00", report.Records[0].BilledAmount)
	assert.Equal(t, "R$2.00", report.Records[1].BilledAmount)
}

func TestParseRecordsNeverExceedTimestamps(t *testing.T) {
	pages := []string{
		"junk\n10/06/25 14:15:19\n10/06/25\n14:16:00\nR$ 1.00\n10/06/25 14:17:00",
		"10/06/25\n15\n14:18:00",
	}

	report, err := newTestParser().Parse(pages)
	require.NoError(t, err)

	timestamps := 0
	for _, page := range pages {
		timestamps += strings.Count(page, ":") / 2
	}
	assert.LessOrEqual(t, len(report.Records), timestamps)
	assert.Len(t, report.Records, 3)
}

func TestFeedKeepsOrderAcrossPages(t *testing.T) {
	p := newTestParser()

	var records []models.TransactionRecord
	records = append(records, p.Feed(models.Page{Index: 0, Text: "10/06/25 08:00:00\nR$ 1.00\n10/06/25 09:00:00\nR$ 2.00"})...)
	records = append(records, p.Feed(models.Page{Index: 1, Text: "10/06/25 10:00:00\nR$ 3.00"})...)
	records = append(records, p.Finish()...)

	require.Len(t, records, 3)
	assert.Equal(t, "10/06/25 08:00:00", records[0].Timestamp)
	assert.Equal(t, "10/06/25 09:00:00", records[1].Timestamp)
	assert.Equal(t, "10/06/25 10:00:00", records[2].Timestamp)
}

func TestFeedBlockSpansPages(t *testing.T) {
	p := newTestParser()

	got := p.Feed(models.Page{Index: 0, Text: "10/06/25 14:15:19\ncaixa buzios\n100516151111"})
	assert.Empty(t, got)

	got = p.Feed(models.Page{Index: 1, Text: "R$ 30.00\nDinheiro\n10/06/25 14:20:00\n100516151112"})
	require.Len(t, got, 1)
	assert.Equal(t, "100516151111", got[0].TicketID)
	assert.Equal(t, "R$30.00", got[0].BilledAmount)
	assert.Equal(t, "Dinheiro", got[0].PaymentMethod)

	got = p.Finish()
	require.Len(t, got, 1)
	assert.Equal(t, "100516151112", got[0].TicketID)
}

func TestFeedPairsDateAndTimeAcrossPages(t *testing.T) {
	p := newTestParser()

	assert.Empty(t, p.Feed(models.Page{Index: 0, Text: "10/06/25"}))
	assert.Empty(t, p.Feed(models.Page{Index: 1, Text: "14:15:19\nR$ 5.00"}))

	got := p.Finish()
	require.Len(t, got, 1)
	assert.Equal(t, "10/06/25 14:15:19", got[0].Timestamp)
	assert.Equal(t, "R$5.00", got[0].BilledAmount)
}

func TestFeedBlockModePage(t *testing.T) {
	p := newTestParser()

	got := p.Feed(models.Page{Index: 0, Blocks: [][]string{
		{"10/06/25 14:15:19", "caixa buzios"},
		{"100516151111", "R$ 30.00"},
	}})
	assert.Empty(t, got)

	got = p.Finish()
	require.Len(t, got, 1)
	assert.Equal(t, "caixa buzios", got[0].TariffLabel)
	assert.Equal(t, "R$30.00", got[0].BilledAmount)
}

func TestAbortDropsOpenBlock(t *testing.T) {
	p := newTestParser()

	p.Feed(models.Page{Index: 0, Text: "10/06/25 14:15:19\nR$ 1.00\n10/06/25"})
	p.Abort()

	assert.Empty(t, p.Finish())
}

func TestParseDebugLines(t *testing.T) {
	p := newTestParser()
	p.EnableDebug()

	report, err := p.Parse([]string{"Página: 1 de 1\nPORTO\n10/06/25 14:15:19\nR$ 1.00"})
	require.NoError(t, err)
	require.Len(t, report.DebugLines, 4)

	assert.Equal(t, "filtered", report.DebugLines[0].Result)
	assert.Equal(t, "leading", report.DebugLines[1].Result)
	assert.Equal(t, string(models.CategoryPaymentMethodLabel), report.DebugLines[1].Category)
	assert.Equal(t, "block", report.DebugLines[2].Result)
	assert.Equal(t, string(models.CategoryCurrencyAmount), report.DebugLines[3].Category)
}

func TestParseKeepsDigitOnlyLabels(t *testing.T) {
	report, err := newTestParser().Parse([]string{"10/06/25 14:15:19\n12345\nR$ 30.00\n10:30"})
	require.NoError(t, err)
	require.Len(t, report.Records, 1)

	assert.Equal(t, "12345", report.Records[0].TariffLabel)
	assert.Equal(t, "10:30", report.Records[0].RegisterID)
	assert.Equal(t, "R$30.00", report.Records[0].BilledAmount)
}

func TestParseKeepsIdenticalRecords(t *testing.T) {
	block := "10/06/25 14:15:19\n100516151111\nR$ 30.00\nPorto"

	report, err := newTestParser().Parse([]string{block + "\n" + block, block})
	require.NoError(t, err)
	require.Len(t, report.Records, 3)
	assert.Equal(t, report.Records[0], report.Records[1])
	assert.Equal(t, report.Records[1], report.Records[2])
}

func TestParseCountsOverflowBlocks(t *testing.T) {
	p := newTestParser()
	p.EnableDebug()

	report, err := p.Parse([]string{"10/06/25 14:15:19\nR$ 1.00\nR$ 2.00\nR$ 3.00\nR$ 4.00\n10/06/25 14:20:00\nR$ 5.00"})
	require.NoError(t, err)
	require.Len(t, report.Records, 2)
	assert.Equal(t, 1, report.OverflowBlocks)
	assert.Equal(t, "R$3.00", report.Records[0].RebatedAmount)
	assert.Equal(t, "overflow", report.DebugLines[0].Result)
	assert.Equal(t, "block", report.DebugLines[5].Result)
}

func TestParseResetsBetweenDocuments(t *testing.T) {
	p := newTestParser()

	first, err := p.Parse([]string{"10/06/25 14:15:19"})
	require.NoError(t, err)
	second, err := p.Parse([]string{"10/06/25 14:15:19"})
	require.NoError(t, err)

	assert.Equal(t, first.Blocks, second.Blocks)
	assert.Len(t, second.Records, 1)
}

func TestDetect(t *testing.T) {
	profile := config.DefaultProfile()

	tests := []struct {
		name     string
		pages    []string
		expected bool
	}{
		{name: "legend present", pages: []string{"Caixa;Transação\nV. Estadia\n"}, expected: true},
		{name: "accent-free header", pages: []string{"", "VALORES LANCADOS"}, expected: true},
		{name: "bank statement", pages: []string{"Metro Bank\nAccount Statement"}, expected: false},
		{name: "empty", pages: nil, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Detect(profile, tt.pages))
		})
	}
}
