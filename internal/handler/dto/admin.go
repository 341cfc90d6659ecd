package dto

import "github.com/apilab/apilab/internal/model"

// TableResponse is a full dump of one table.
type TableResponse struct {
	Table model.Table `json:"table"`
	Rows  any         `json:"rows"`
	Count int         `json:"count"`
}

// ResetResponse reports the data left after a reset.
type ResetResponse struct {
	Message  string            `json:"message"`
	SeedData *model.SeedResult `json:"seed_data"`
}
