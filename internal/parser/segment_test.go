package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/cashier-report-converter/internal/models"
)

func tok(cat models.Category, value string) models.ClassifiedToken {
	return models.ClassifiedToken{
		Lines:    []models.RawLine{{Text: value}},
		Category: cat,
		Value:    value,
	}
}

func TestSegment(t *testing.T) {
	tokens := []models.ClassifiedToken{
		tok(models.CategoryPaymentMethodLabel, "PORTO"),
		tok(models.CategoryDateTime, "10/06/25 14:15:19"),
		tok(models.CategoryShortNumericCounter, "15"),
		tok(models.CategoryDateTime, "10/06/25 14:20:00"),
		tok(models.CategoryDateTime, "10/06/25 14:25:00"),
		tok(models.CategoryCurrencyAmount, "R$1.00"),
	}

	leading, blocks := Segment(tokens)
	require.Len(t, leading, 1)
	assert.Equal(t, "PORTO", leading[0].Value)

	require.Len(t, blocks, 3)
	assert.Len(t, blocks[0].Tokens, 2)
	assert.Len(t, blocks[1].Tokens, 1)
	assert.Len(t, blocks[2].Tokens, 2)
	for _, b := range blocks {
		assert.Equal(t, models.CategoryDateTime, b.Tokens[0].Category)
	}
}

func TestSegmentIsPartition(t *testing.T) {
	tests := []struct {
		name   string
		tokens []models.ClassifiedToken
	}{
		{name: "empty"},
		{
			name: "no timestamp",
			tokens: []models.ClassifiedToken{
				tok(models.CategoryFreeText, "a"),
				tok(models.CategoryShortNumericCounter, "1"),
			},
		},
		{
			name: "mixed",
			tokens: []models.ClassifiedToken{
				tok(models.CategoryFreeText, "a"),
				tok(models.CategoryDateTime, "10/06/25 14:15:19"),
				tok(models.CategoryFreeText, "b"),
				tok(models.CategoryDateTime, "10/06/25 14:16:19"),
				tok(models.CategoryFreeText, "c"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			leading, blocks := Segment(tt.tokens)

			var rebuilt []models.ClassifiedToken
			rebuilt = append(rebuilt, leading...)
			for _, b := range blocks {
				rebuilt = append(rebuilt, b.Tokens...)
			}
			assert.Equal(t, len(tt.tokens), len(rebuilt))
			for i := range tt.tokens {
				assert.Equal(t, tt.tokens[i], rebuilt[i])
			}
		})
	}
}

func TestSegmenterCarriesOpenBlock(t *testing.T) {
	var s Segmenter

	closed, leading := s.Push([]models.ClassifiedToken{
		tok(models.CategoryDateTime, "10/06/25 14:15:19"),
		tok(models.CategoryFreeText, "caixa buzios"),
	})
	assert.Empty(t, closed)
	assert.Empty(t, leading)

	// Next page continues the same transaction.
	closed, leading = s.Push([]models.ClassifiedToken{
		tok(models.CategoryCurrencyAmount, "R$30.00"),
		tok(models.CategoryDateTime, "10/06/25 14:20:00"),
	})
	assert.Empty(t, leading)
	require.Len(t, closed, 1)
	assert.Len(t, closed[0].Tokens, 3)

	block, ok := s.Flush()
	require.True(t, ok)
	assert.Len(t, block.Tokens, 1)

	_, ok = s.Flush()
	assert.False(t, ok)
}

func TestSegmenterDiscard(t *testing.T) {
	var s Segmenter
	s.Push([]models.ClassifiedToken{tok(models.CategoryDateTime, "10/06/25 14:15:19")})
	s.Discard()

	_, ok := s.Flush()
	assert.False(t, ok)
}
