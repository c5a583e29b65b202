package parser

import "github.com/insightdelivered/cashier-report-converter/internal/models"

// Segmenter groups classified tokens into transaction blocks. Every DateTime
// token opens a new block; tokens seen before the first DateTime are leading
// noise. A Segmenter keeps the open block across calls to Push so a
// transaction may span pages.
type Segmenter struct {
	open *models.TransactionBlock
}

// Push appends tokens to the stream and returns the blocks they closed
// together with any tokens that arrived while no block was open.
func (s *Segmenter) Push(tokens []models.ClassifiedToken) (closed []models.TransactionBlock, leading []models.ClassifiedToken) {
	for _, tok := range tokens {
		if tok.Category == models.CategoryDateTime {
			if s.open != nil {
				closed = append(closed, *s.open)
			}
			s.open = &models.TransactionBlock{Tokens: []models.ClassifiedToken{tok}}
			continue
		}
		if s.open == nil {
			leading = append(leading, tok)
			continue
		}
		s.open.Tokens = append(s.open.Tokens, tok)
	}
	return closed, leading
}

// Flush closes and returns the open block, if any.
func (s *Segmenter) Flush() (models.TransactionBlock, bool) {
	if s.open == nil {
		return models.TransactionBlock{}, false
	}
	block := *s.open
	s.open = nil
	return block, true
}

// Discard drops the open block without returning it.
func (s *Segmenter) Discard() {
	s.open = nil
}

// Segment splits a complete token sequence. The leading tokens and the
// blocks, concatenated, reproduce the input exactly.
func Segment(tokens []models.ClassifiedToken) (leading []models.ClassifiedToken, blocks []models.TransactionBlock) {
	var s Segmenter
	blocks, leading = s.Push(tokens)
	if last, ok := s.Flush(); ok {
		blocks = append(blocks, last)
	}
	return leading, blocks
}
