package models

// Category is the field shape a line was recognised as.
type Category string

const (
	CategoryDateTime            Category = "DateTime"
	CategoryDateOnly            Category = "DateOnly"
	CategoryTimeOnly            Category = "TimeOnly"
	CategoryCurrencyAmount      Category = "CurrencyAmount"
	CategoryLongNumericID       Category = "LongNumericId"
	CategoryShortNumericCounter Category = "ShortNumericCounter"
	CategoryPaymentMethodLabel  Category = "PaymentMethodLabel"
	CategoryStationLabel        Category = "StationLabel"
	CategoryFreeText            Category = "FreeText"
	CategoryUnclassified        Category = "Unclassified"
)

// RawLine is one visual line of extracted page text.
type RawLine struct {
	Page int    `json:"page"`
	Text string `json:"text"`
}

// ClassifiedToken is a line (or a date line paired with its time line)
// together with the category assigned to it.
type ClassifiedToken struct {
	Lines    []RawLine `json:"lines"`
	Category Category  `json:"category"`
	// Value is the normalised text: "DD/MM/YY HH:MM:SS" for timestamps,
	// "R$N.NN" for amounts, the trimmed line otherwise.
	Value string `json:"value"`
}

// TransactionBlock is the run of tokens believed to belong to one transaction.
// The first token is always a DateTime.
type TransactionBlock struct {
	Tokens []ClassifiedToken `json:"tokens"`
}

// Lines flattens the block back into its source lines.
func (b TransactionBlock) Lines() []RawLine {
	var lines []RawLine
	for _, tok := range b.Tokens {
		lines = append(lines, tok.Lines...)
	}
	return lines
}
