package postgres

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"media_syncer/internal/domain"
)

// assetMap stores an image or video variant set as a JSONB column.
type assetMap map[string]domain.MediaAsset

func (m assetMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *assetMap) Scan(src interface{}) error {
	return scanJSON(src, m)
}

// linkList stores a post's retail links as a JSONB column.
type linkList []domain.RetailLink

func (l linkList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

func (l *linkList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

func scanJSON(src, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", src)
	}
}
