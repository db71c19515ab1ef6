package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// CropEntry is one rotation record appended when a field is planted.
type CropEntry struct {
	Crop      string `json:"crop"`
	PlantedOn string `json:"planted_on"`
}

// CropHistory is the ordered rotation history stored on a field.
type CropHistory []CropEntry

func (h CropHistory) Value() (driver.Value, error) {
	if h == nil {
		h = CropHistory{}
	}
	return json.Marshal(h)
}

func (h *CropHistory) Scan(src any) error {
	if src == nil {
		*h = CropHistory{}
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, h)
	case string:
		return json.Unmarshal([]byte(v), h)
	default:
		return fmt.Errorf("unsupported type %T for CropHistory", src)
	}
}
