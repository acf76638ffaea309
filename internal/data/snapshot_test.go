package data

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mining-dispatch/internal/model"
)

func writeSnapshot(t *testing.T, records []model.HourlyRecord) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "market.json")
	require.NoError(t, SaveMarketJSON(path, records))
	return path
}

func TestSnapshotRoundTrip(t *testing.T) {
	in := []model.HourlyRecord{
		{Timestamp: hour(0), ElectricityPrice: 20, Hashprice: 0.05},
		{Timestamp: hour(1), ElectricityPrice: model.Missing(), Hashprice: 0.05},
		{Timestamp: hour(2), ElectricityPrice: 35, Hashprice: 0.051, Filled: true},
	}
	path := writeSnapshot(t, in)

	out, err := LoadMarketJSON(path)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, in[0], out[0])
	assert.True(t, model.IsMissing(out[1].ElectricityPrice))
	assert.Equal(t, in[2], out[2])
}

func TestSnapshotJSONUsesNull(t *testing.T) {
	snap := NewSnapshot([]model.HourlyRecord{{Timestamp: hour(0), ElectricityPrice: model.Missing(), Hashprice: 0.05}})
	assert.Nil(t, snap.Data[0].ElectricityPrice)
	require.NotNil(t, snap.Data[0].Hashprice)
	assert.Equal(t, 0.05, *snap.Data[0].Hashprice)
}

func TestSnapshotProviderTrims(t *testing.T) {
	var recs []model.HourlyRecord
	for h := 0; h < 72; h++ {
		recs = append(recs, model.HourlyRecord{Timestamp: hour(h), ElectricityPrice: float64(h), Hashprice: 0.05})
	}
	p := SnapshotProvider{Path: writeSnapshot(t, recs)}

	out, err := p.Fetch(context.Background(), hour(24), hour(24))
	require.NoError(t, err)
	require.Len(t, out, 24)
	assert.Equal(t, hour(24), out[0].Timestamp)
	assert.Equal(t, hour(47), out[23].Timestamp)

	_, err = SnapshotProvider{Path: filepath.Join(t.TempDir(), "absent.json")}.Fetch(context.Background(), hour(0), hour(0))
	assert.Error(t, err)
}

func TestSnapshotProviderKeepsFullWindow(t *testing.T) {
	var recs []model.HourlyRecord
	for h := 24; h < 48; h++ {
		recs = append(recs, model.HourlyRecord{Timestamp: hour(h), ElectricityPrice: 30, Hashprice: 0.05, Filled: h == 30})
	}
	path := writeSnapshot(t, recs)

	out, err := SnapshotProvider{Path: path}.Fetch(context.Background(), day1, day1.AddDate(0, 0, 2))
	require.NoError(t, err)
	require.Len(t, out, 72)
	assert.Equal(t, hour(0), out[0].Timestamp)
	assert.Equal(t, hour(71), out[71].Timestamp)
	for i, r := range out {
		assert.Equal(t, hour(i), r.Timestamp)
		assert.Equal(t, i >= 24 && i < 48, r.HasMarketData(), r.Timestamp)
	}
	assert.True(t, out[30].Filled)

	resolved, err := ResolvingProvider{Provider: SnapshotProvider{Path: path}, Policy: GapFlag}.
		Fetch(context.Background(), day1, day1.AddDate(0, 0, 2))
	require.NoError(t, err)
	require.Len(t, resolved, 72)
	assert.True(t, model.IsMissing(resolved[0].ElectricityPrice))
	assert.True(t, model.IsMissing(resolved[71].Hashprice))
}
