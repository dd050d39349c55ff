package dto

import "encoding/json"

// CreateDataRequest is the JSON body for POST /data.
// Value accepts a JSON number or a numeric string; anything else is a
// validation error before the store is touched.
type CreateDataRequest struct {
	NumberKey  string      `json:"numberKey" binding:"required"`
	Value      json.Number `json:"value" binding:"required"`
	IsAddValue bool        `json:"isAddValue"`
}

// EditDataRequest is the JSON body for PUT /data/edit.
// Either ClearAll is true, or NumberKey+Value name a single entry to set.
type EditDataRequest struct {
	NumberKey string      `json:"numberKey"`
	Value     json.Number `json:"value"`
	ClearAll  bool        `json:"clearAll"`
}

// ResetDataRequest is the JSON body for PUT /data/reset/:numberKey.
type ResetDataRequest struct {
	Value *json.Number `json:"value"`
}

// UpdateDataRequest is the JSON body for PUT /data/:id. The numbers map
// replaces the stored one wholesale.
type UpdateDataRequest struct {
	Numbers map[string]float64 `json:"numbers" binding:"required"`
}

// LedgerResponse is the full ledger record view for the /data/:id routes.
type LedgerResponse struct {
	ID        string             `json:"id"`
	UserID    string             `json:"user"`
	Numbers   map[string]float64 `json:"numbers"`
	CreatedAt string             `json:"createdAt"`
}
