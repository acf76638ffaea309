package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"mining-dispatch/internal/backtest"
	"mining-dispatch/internal/config"
	"mining-dispatch/internal/economics"
	"mining-dispatch/internal/logger"
	"mining-dispatch/internal/model"
	"mining-dispatch/internal/storage"
	"mining-dispatch/internal/strategy"
)

// run holds everything a subcommand needs once config and data are loaded.
type run struct {
	cfg      *config.Config
	log      *logger.Logger
	econ     *economics.Model
	records  []model.HourlyRecord // annotated
	registry *strategy.Registry
}

// loadConfig reads the config, letting dataPath (a market snapshot) stand in
// for the data section.
func loadConfig(cfgPath, dataPath string) (*config.Config, error) {
	if cfgPath == "" {
		return nil, fmt.Errorf("--config is required")
	}
	cfg, err := config.LoadUnchecked(cfgPath)
	if err != nil {
		return nil, err
	}
	if dataPath != "" {
		cfg.Data.Snapshot = dataPath
	}
	cfg.ApplyEnv(os.Getenv)
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func prepare(ctx context.Context, cfgPath, dataPath string) (*run, error) {
	cfg, err := loadConfig(cfgPath, dataPath)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, err
	}

	contract, err := cfg.ContractModel()
	if err != nil {
		return nil, err
	}
	econ, err := economics.New(cfg.Facility.ToModel(), contract)
	if err != nil {
		return nil, err
	}

	provider, err := cfg.NewProvider(log)
	if err != nil {
		return nil, err
	}
	start, end, err := cfg.Period.Range()
	if err != nil {
		return nil, err
	}
	raw, err := provider.Fetch(ctx, start, end)
	if err != nil {
		return nil, err
	}
	records, err := econ.Annotate(raw)
	if err != nil {
		return nil, err
	}

	log.Info("market data loaded",
		logger.StringField("facility", cfg.Facility.Name),
		logger.FloatField("hashrate_th", econ.HashrateTH()),
		logger.IntField("hours", len(records)),
		logger.StringField("start", cfg.Period.Start),
		logger.StringField("end", cfg.Period.End))

	return &run{cfg: cfg, log: log, econ: econ, records: records, registry: strategy.Default()}, nil
}

// pick resolves name against the configured strategies first and the
// registry second. An empty name selects the first configured strategy.
func (r *run) pick(name string) (config.NamedStrategy, error) {
	if name == "" {
		name = r.cfg.Strategies[0].Label
	}
	if sc, ok := r.cfg.FindStrategy(name); ok {
		s, err := r.registry.Build(sc.Strategy, sc.Params)
		if err != nil {
			return config.NamedStrategy{}, err
		}
		return config.NamedStrategy{Label: sc.Label, Strategy: s}, nil
	}
	s, err := r.registry.Build(name, nil)
	if err != nil {
		return config.NamedStrategy{}, err
	}
	return config.NamedStrategy{Label: name, Strategy: s}, nil
}

// writeArtifacts writes the ledger as CSV and/or Parquet and uploads the
// written files when S3 output is configured.
func (r *run) writeArtifacts(ctx context.Context, res *backtest.Result, csvPath, parquetPath string) error {
	var uploader *storage.S3Uploader
	if r.cfg.Output.S3.Enabled() {
		u, err := storage.NewS3Uploader(ctx, r.cfg.Output.S3)
		if err != nil {
			return err
		}
		uploader = u
	}

	if csvPath != "" {
		if err := os.MkdirAll(filepath.Dir(csvPath), 0o755); err != nil {
			return err
		}
		if err := backtest.WriteLedgerCSV(csvPath, res.Ledger); err != nil {
			return fmt.Errorf("write ledger csv: %w", err)
		}
		r.log.Info("ledger written", logger.StringField("path", csvPath), logger.IntField("rows", len(res.Ledger)))
		if err := r.upload(ctx, uploader, res, csvPath, "csv", "text/csv"); err != nil {
			return err
		}
	}
	if parquetPath != "" {
		if err := os.MkdirAll(filepath.Dir(parquetPath), 0o755); err != nil {
			return err
		}
		if err := backtest.WriteLedgerParquet(parquetPath, res.Ledger); err != nil {
			return fmt.Errorf("write ledger parquet: %w", err)
		}
		r.log.Info("ledger written", logger.StringField("path", parquetPath), logger.IntField("rows", len(res.Ledger)))
		if err := r.upload(ctx, uploader, res, parquetPath, "parquet", "application/octet-stream"); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) upload(ctx context.Context, u *storage.S3Uploader, res *backtest.Result, path, ext, contentType string) error {
	if u == nil {
		return nil
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	uri, err := u.Upload(ctx, u.Key(res.Strategy, res.Summary.Start, ext), contentType, body)
	if err != nil {
		return err
	}
	r.log.Info("ledger uploaded", logger.StringField("uri", uri))
	return nil
}
