package data

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"mining-dispatch/internal/model"
)

// MarketSnapshot is the on-disk form of a merged market series. Missing
// values are encoded as null.
type MarketSnapshot struct {
	Data []SnapshotRow `json:"data"`
}

type SnapshotRow struct {
	Timestamp        time.Time `json:"timestamp"`
	ElectricityPrice *float64  `json:"electricity_price"`
	Hashprice        *float64  `json:"hashprice"`
	Filled           bool      `json:"filled,omitempty"`
}

func LoadMarketJSON(path string) ([]model.HourlyRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap MarketSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return snap.Records(), nil
}

func SaveMarketJSON(path string, records []model.HourlyRecord) error {
	raw, err := json.MarshalIndent(NewSnapshot(records), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

func NewSnapshot(records []model.HourlyRecord) MarketSnapshot {
	snap := MarketSnapshot{Data: make([]SnapshotRow, len(records))}
	for i, r := range records {
		snap.Data[i] = SnapshotRow{
			Timestamp:        r.Timestamp.UTC(),
			ElectricityPrice: present(r.ElectricityPrice),
			Hashprice:        present(r.Hashprice),
			Filled:           r.Filled,
		}
	}
	return snap
}

// Records converts the snapshot back to records, sorted by timestamp as
// stored. Null values become missing.
func (s MarketSnapshot) Records() []model.HourlyRecord {
	out := make([]model.HourlyRecord, len(s.Data))
	for i, row := range s.Data {
		out[i] = model.HourlyRecord{
			Timestamp:        row.Timestamp.UTC(),
			ElectricityPrice: valueOrMissing(row.ElectricityPrice),
			Hashprice:        valueOrMissing(row.Hashprice),
			Filled:           row.Filled,
		}
	}
	return out
}

func present(v float64) *float64 {
	if model.IsMissing(v) {
		return nil
	}
	return &v
}

func valueOrMissing(p *float64) float64 {
	if p == nil {
		return model.Missing()
	}
	return *p
}
