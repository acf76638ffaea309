package backtest

import (
	"bytes"
	"fmt"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

type ledgerParquetRecord struct {
	Timestamp        int64   `parquet:"name=timestamp, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
	ElectricityPrice float64 `parquet:"name=electricity_price, type=DOUBLE"`
	Hashprice        float64 `parquet:"name=hashprice, type=DOUBLE"`
	Revenue          float64 `parquet:"name=revenue, type=DOUBLE"`
	Cost             float64 `parquet:"name=cost, type=DOUBLE"`
	Profit           float64 `parquet:"name=profit, type=DOUBLE"`
	Operate          bool    `parquet:"name=operate, type=BOOLEAN"`
	CumProfit        float64 `parquet:"name=cum_profit, type=DOUBLE"`
	Filled           bool    `parquet:"name=filled, type=BOOLEAN"`
}

type memFile struct {
	buffer *bytes.Buffer
}

func newMemFile() *memFile {
	return &memFile{buffer: &bytes.Buffer{}}
}

func (m *memFile) Create(string) (source.ParquetFile, error) { return m, nil }
func (m *memFile) Open(string) (source.ParquetFile, error)   { return m, nil }
func (m *memFile) Seek(int64, int) (int64, error)            { return int64(m.buffer.Len()), nil }
func (m *memFile) Read([]byte) (int, error)                  { return 0, fmt.Errorf("read not supported") }
func (m *memFile) Write(b []byte) (int, error)               { return m.buffer.Write(b) }
func (m *memFile) Close() error                              { return nil }

// LedgerParquet encodes the ledger as a snappy-compressed parquet file in
// memory, with the same columns as the CSV artifact.
func LedgerParquet(ledger []LedgerRow) ([]byte, error) {
	mf := newMemFile()
	if err := writeParquet(mf, ledger); err != nil {
		return nil, err
	}
	return mf.buffer.Bytes(), nil
}

func WriteLedgerParquet(path string, ledger []LedgerRow) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("create parquet file %s: %w", path, err)
	}
	if err := writeParquet(fw, ledger); err != nil {
		fw.Close()
		return err
	}
	return fw.Close()
}

func writeParquet(fw source.ParquetFile, ledger []LedgerRow) error {
	pw, err := writer.NewParquetWriter(fw, new(ledgerParquetRecord), 1)
	if err != nil {
		return fmt.Errorf("create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, r := range ledger {
		rec := ledgerParquetRecord{
			Timestamp:        r.Timestamp.UnixMilli(),
			ElectricityPrice: r.ElectricityPrice,
			Hashprice:        r.Hashprice,
			Revenue:          r.Revenue,
			Cost:             r.Cost,
			Profit:           r.Profit,
			Operate:          r.Operate,
			CumProfit:        r.CumProfit,
			Filled:           r.Filled,
		}
		if err := pw.Write(rec); err != nil {
			return fmt.Errorf("write parquet row %d: %w", r.Index, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("finalize parquet: %w", err)
	}
	return nil
}
