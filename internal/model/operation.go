package model

// Operation kinds recorded in the journal.
const (
	OpCreate   = "create"
	OpProvide  = "provide"
	OpWithdraw = "withdraw"
	OpSwap     = "swap"
)

// OperationRecord is one committed pool operation.
type OperationRecord struct {
	Kind        string `json:"kind"`
	Pool        string `json:"pool"`
	Caller      string `json:"caller,omitempty"`
	Recipient   string `json:"recipient,omitempty"`
	Asset1      string `json:"asset1"`
	Asset2      string `json:"asset2"`
	Amount1     string `json:"amount1"`
	Amount2     string `json:"amount2"`
	Shares      string `json:"shares,omitempty"`
	TotalShares string `json:"total_shares"`
	Timestamp   string `json:"timestamp"`
}
