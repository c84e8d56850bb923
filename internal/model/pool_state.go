package model

// PoolState is the persisted form of the pool's share accounting.
// Amounts are base-10 strings so they survive JSON and SQL text columns unchanged.
type PoolState struct {
	Pool          string            `json:"pool"`
	AssetX        string            `json:"asset_x"`
	AssetY        string            `json:"asset_y"`
	LockedMinimum string            `json:"locked_minimum"`
	TotalShares   string            `json:"total_shares"`
	Shares        map[string]string `json:"shares"`
	UpdatedAt     string            `json:"updated_at"`
}
