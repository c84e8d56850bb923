package model

// Balance is one custody balance row.
type Balance struct {
	Asset  string `json:"asset"`
	Holder string `json:"holder"`
	Amount string `json:"amount"`
}
