package parser

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/cashier-report-converter/internal/config"
	"github.com/insightdelivered/cashier-report-converter/internal/models"
)

// Classifier assigns a field category to each filtered line. Rules are tried
// in a fixed order and the first match wins.
type Classifier struct {
	symbol   string
	currency *regexp.Regexp
	payments []string
	stations []string
	rebates  []string
}

// NewClassifier builds a classifier from the profile's keyword lists.
func NewClassifier(p *config.Profile) *Classifier {
	return &Classifier{
		symbol:   p.CurrencySymbol,
		currency: currencyPattern(p.CurrencySymbol),
		payments: foldAll(p.PaymentMethods),
		stations: foldAll(p.Stations),
		rebates:  foldAll(p.RebateTypes),
	}
}

// Classify returns the category of a single line. A bare date is reported as
// DateOnly; pairing it with a following time is done by ClassifyLines.
func (c *Classifier) Classify(line string) models.Category {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return models.CategoryUnclassified
	case dateTimePattern.MatchString(line):
		return models.CategoryDateTime
	case dateOnlyPattern.MatchString(line):
		return models.CategoryDateOnly
	case timeOnlyPattern.MatchString(line):
		return models.CategoryTimeOnly
	case c.isCurrency(line):
		return models.CategoryCurrencyAmount
	case longIDPattern.MatchString(line):
		return models.CategoryLongNumericID
	case shortCounterPattern.MatchString(line):
		return models.CategoryShortNumericCounter
	}

	folded := fold(line)
	switch {
	case hasKeywordPrefix(folded, c.payments):
		return models.CategoryPaymentMethodLabel
	case hasKeywordPrefix(folded, c.stations):
		return models.CategoryStationLabel
	default:
		return models.CategoryFreeText
	}
}

// ClassifyLines classifies a sequence of lines, merging a DateOnly line
// immediately followed by a TimeOnly line into one DateTime token.
func (c *Classifier) ClassifyLines(lines []models.RawLine) []models.ClassifiedToken {
	tokens := make([]models.ClassifiedToken, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		cat := c.Classify(lines[i].Text)
		if cat == models.CategoryDateOnly && i+1 < len(lines) &&
			c.Classify(lines[i+1].Text) == models.CategoryTimeOnly {
			tokens = append(tokens, models.ClassifiedToken{
				Lines:    []models.RawLine{lines[i], lines[i+1]},
				Category: models.CategoryDateTime,
				Value:    strings.TrimSpace(lines[i].Text) + " " + strings.TrimSpace(lines[i+1].Text),
			})
			i++
			continue
		}
		tokens = append(tokens, models.ClassifiedToken{
			Lines:    []models.RawLine{lines[i]},
			Category: cat,
			Value:    c.normalize(lines[i].Text, cat),
		})
	}
	return tokens
}

// IsRebateType reports whether a label names a rebate/agreement type.
func (c *Classifier) IsRebateType(label string) bool {
	return hasKeywordPrefix(fold(strings.TrimSpace(label)), c.rebates)
}

func (c *Classifier) isCurrency(line string) bool {
	m := c.currency.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	_, err := parseAmount(m[1])
	return err == nil
}

func (c *Classifier) normalize(line string, cat models.Category) string {
	line = strings.TrimSpace(line)
	switch cat {
	case models.CategoryDateTime:
		m := dateTimePattern.FindStringSubmatch(line)
		return m[1] + " " + m[2]
	case models.CategoryCurrencyAmount:
		m := c.currency.FindStringSubmatch(line)
		amount, _ := parseAmount(m[1])
		return formatAmount(c.symbol, amount)
	default:
		return line
	}
}
