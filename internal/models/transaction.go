package models

// TransactionRecord is one cashier transaction row of the output document.
// Field order is the output column order.
type TransactionRecord struct {
	RegisterID        string `json:"registerId" csv:"register_id"`
	TransactionNumber string `json:"transactionNumber" csv:"transaction_number"`
	FiscalCounterID   string `json:"fiscalCounterId" csv:"fiscal_counter_id"`
	SessionID         string `json:"sessionId" csv:"session_id"`
	Timestamp         string `json:"timestamp" csv:"timestamp"`
	TariffLabel       string `json:"tariff" csv:"tariff"`
	StayFee           string `json:"stayFee" csv:"stay_fee"`
	RebateType        string `json:"rebateType" csv:"rebate_type"`
	RebatedAmount     string `json:"rebatedAmount" csv:"rebated_amount"`
	BilledAmount      string `json:"billedAmount" csv:"billed_amount"`
	TicketID          string `json:"ticketId" csv:"ticket_id"`
	PaymentMethod     string `json:"paymentMethod" csv:"payment_method"`
}

// ColumnCount is the fixed width of the output schema.
const ColumnCount = 12

// Values returns the record fields in output column order.
func (r TransactionRecord) Values() []string {
	return []string{
		r.RegisterID,
		r.TransactionNumber,
		r.FiscalCounterID,
		r.SessionID,
		r.Timestamp,
		r.TariffLabel,
		r.StayFee,
		r.RebateType,
		r.RebatedAmount,
		r.BilledAmount,
		r.TicketID,
		r.PaymentMethod,
	}
}

// DebugLine captures what the parser did with each input line.
type DebugLine struct {
	Page     int    `json:"page"`
	Text     string `json:"text"`
	Category string `json:"category,omitempty"`
	Result   string `json:"result"` // "filtered", "leading", "block", "overflow", "dropped"
}

// Report holds everything parsed from one cashier report.
type Report struct {
	Records       []TransactionRecord
	Lines         int
	Blocks        int
	DroppedBlocks int

	// OverflowBlocks counts emitted blocks that carried more ids, amounts or
	// counters than the record has slots for.
	OverflowBlocks int

	DebugLines []DebugLine
}
