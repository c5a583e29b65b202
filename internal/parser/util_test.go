package parser

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"30.00", "30"},
		{"0.00", "0"},
		{"1.234,56", "1234.56"},
		{"1,234.56", "1234.56"},
		{"1.500", "1500"},
		{"12,5", "12.5"},
		{"1.234.567", "1234567"},
		{"-5", "-5"},
		{" 25.99 ", "25.99"},
		{"", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseAmount(tt.input)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.expected).Equal(got), "got %s, want %s", got, tt.expected)
		})
	}
}

func TestParseAmountRejectsGarbage(t *testing.T) {
	_, err := parseAmount("1-2")
	assert.Error(t, err)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "R$30.00", formatAmount("R$", decimal.NewFromInt(30)))
	assert.Equal(t, "R$1234.50", formatAmount("R$", decimal.RequireFromString("1234.5")))
	assert.Equal(t, "R$0.00", formatAmount("R$", decimal.Zero))
}

func TestFold(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Emissão", "emissao"},
		{"EMISSAO", "emissao"},
		{"PÁGINA: 1 DE 3", "pagina: 1 de 3"},
		{"Valores Lançados", "valores lancados"},
		{"Búzios", "buzios"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, fold(tt.input))
		})
	}
}

func TestHasKeywordPrefix(t *testing.T) {
	keywords := []string{"porto", "sem parar"}
	tests := []struct {
		input    string
		expected bool
	}{
		{"porto", true},
		{"porto seguro", true},
		{"porto-cartao", true},
		{"portobello", false},
		{"sem parar", true},
		{"sem", false},
		{"o porto", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, hasKeywordPrefix(tt.input, keywords))
		})
	}
}
