package parser

import "github.com/insightdelivered/cashier-report-converter/internal/models"

// Assembler turns one transaction block into a record. Each slot rule lives
// in its own assign* function so tie-breaks can be tested in isolation.
type Assembler struct {
	// ZeroAmount fills amount slots the block did not provide.
	ZeroAmount string
	// IsRebate reports whether a label names a rebate type. Nil means no
	// label is ever treated as a rebate.
	IsRebate func(label string) bool
}

// draft tracks how many values each ordered slot group has consumed.
type draft struct {
	rec      models.TransactionRecord
	longIDs  int
	amounts  int
	counters int
	// overflow counts values that found no free slot.
	overflow int
}

// Assemble builds the record for block. It reports false when the block has
// no timestamp; such blocks are dropped, not treated as errors.
func (a Assembler) Assemble(block models.TransactionBlock) (models.TransactionRecord, bool) {
	rec, ok, _ := a.Build(block)
	return rec, ok
}

// Build is Assemble plus the number of ids, amounts and counters the block
// carried beyond the available slots. A non-zero overflow marks a block whose
// layout does not follow the documented field order.
func (a Assembler) Build(block models.TransactionBlock) (models.TransactionRecord, bool, int) {
	var d draft
	for _, tok := range block.Tokens {
		switch tok.Category {
		case models.CategoryDateTime:
			assignTimestamp(&d, tok.Value)
		case models.CategoryLongNumericID:
			assignLongID(&d, tok.Value)
		case models.CategoryCurrencyAmount:
			assignAmount(&d, tok.Value)
		case models.CategoryShortNumericCounter:
			assignCounter(&d, tok.Value)
		case models.CategoryPaymentMethodLabel:
			assignPayment(&d, tok.Value)
		case models.CategoryStationLabel, models.CategoryFreeText:
			assignLabel(&d, tok.Value, a.IsRebate != nil && a.IsRebate(tok.Value))
		}
	}
	if d.rec.Timestamp == "" {
		return models.TransactionRecord{}, false, d.overflow
	}
	fillAmounts(&d, a.ZeroAmount)
	return d.rec, true, d.overflow
}

// assignTimestamp keeps the first timestamp of the block.
func assignTimestamp(d *draft, value string) {
	if d.rec.Timestamp == "" {
		d.rec.Timestamp = value
	}
}

// assignLongID fills the ticket id first, then the transaction number. A lone
// id is mirrored into both slots; ids beyond the second are ignored.
func assignLongID(d *draft, value string) {
	switch d.longIDs {
	case 0:
		d.rec.TicketID = value
		d.rec.TransactionNumber = value
	case 1:
		d.rec.TransactionNumber = value
	default:
		d.overflow++
		return
	}
	d.longIDs++
}

// assignAmount maps amounts by arrival: billed, stay fee, rebated.
func assignAmount(d *draft, value string) {
	switch d.amounts {
	case 0:
		d.rec.BilledAmount = value
	case 1:
		d.rec.StayFee = value
	case 2:
		d.rec.RebatedAmount = value
	default:
		d.overflow++
		return
	}
	d.amounts++
}

// assignCounter maps short counters by arrival: session, then fiscal counter.
func assignCounter(d *draft, value string) {
	switch d.counters {
	case 0:
		d.rec.SessionID = value
	case 1:
		d.rec.FiscalCounterID = value
	default:
		d.overflow++
		return
	}
	d.counters++
}

// assignPayment keeps the last payment method seen.
func assignPayment(d *draft, value string) {
	d.rec.PaymentMethod = value
}

// assignLabel places a text label: rebate labels go to the rebate type while
// it is empty; anything else fills the tariff, then the register id.
func assignLabel(d *draft, value string, rebate bool) {
	switch {
	case rebate && d.rec.RebateType == "":
		d.rec.RebateType = value
	case d.rec.TariffLabel == "":
		d.rec.TariffLabel = value
	case d.rec.RegisterID == "":
		d.rec.RegisterID = value
	}
}

func fillAmounts(d *draft, zero string) {
	for _, slot := range []*string{&d.rec.BilledAmount, &d.rec.StayFee, &d.rec.RebatedAmount} {
		if *slot == "" {
			*slot = zero
		}
	}
}
