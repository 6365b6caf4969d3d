package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/peterbourgon/ff/v4"

	"collisionos/internal/domain"
	"collisionos/internal/export"
	"collisionos/internal/service"
)

func newImportCommand(parent *ff.FlagSet, stdout io.Writer) *ff.Command {
	fs := ff.NewFlagSet("import").SetParent(parent)
	var (
		tenant      = fs.StringLong("tenant", "", "tenant id that owns created records")
		user        = fs.StringLong("user", "", "user id recorded in the import ledger")
		autoCreate  = fs.BoolLong("auto-create", "find or create customer, vehicle and job records")
		dev         = fs.BoolLong("dev", "development mode: fall back to the dev tenant when --tenant is empty")
		concurrency = fs.IntLong("concurrency", 0, "files processed in parallel (0 uses config)")
		archive     = fs.StringLong("archive-bucket", "", "bucket that receives a copy of every source document")
	)

	return &ff.Command{
		Name:      "import",
		Usage:     "importer import [flags] <file|dir|s3://bucket/prefix>...",
		ShortHelp: "parse BMS/EMS estimates and record them in the ledger",
		Flags:     fs,
		Exec: func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return errors.New("import: at least one file, directory or s3:// prefix is required")
			}

			d, err := loadDeps()
			if err != nil {
				return err
			}
			defer d.close()

			if *dev {
				d.cfg.Ingest.DevelopmentMode = true
			}
			if *archive != "" {
				d.cfg.Ingest.ArchiveBucket = *archive
			}
			workers := *concurrency
			if workers <= 0 {
				workers = d.cfg.Ingest.BatchConcurrency
			}

			l, err := d.ledger(ctx)
			if err != nil {
				return err
			}
			rec, err := d.reconciler()
			if err != nil {
				return err
			}
			store, err := d.storage(hasS3Arg(args) || d.cfg.Ingest.ArchiveBucket != "")
			if err != nil {
				return err
			}
			notifier, err := d.notifier()
			if err != nil {
				return err
			}

			purge := service.NewLedgerPurgeWorker(l, service.LedgerPurgeConfig{
				Interval:      d.cfg.Ledger.PurgeInterval,
				RetentionDays: d.cfg.Ledger.RetentionDays,
			})
			go purge.Start(ctx)

			svc := service.NewImportService(l, rec, store, notifier, nil, service.IngestConfig{
				DevelopmentMode:    d.cfg.Ingest.DevelopmentMode,
				MinAutoCreateScore: d.cfg.Ingest.MinAutoCreateScore,
				ArchiveBucket:      d.cfg.Ingest.ArchiveBucket,
			})

			inputs, err := collectInputs(ctx, args, store, service.ImportContext{UserID: *user, TenantID: *tenant}, *autoCreate)
			if err != nil {
				return err
			}
			if len(inputs) == 0 {
				return errors.New("import: no estimate files found")
			}

			out := svc.ProcessBatch(ctx, inputs, workers)
			if err := writeJSON(stdout, out); err != nil {
				return err
			}
			if out.Stats.Failed > 0 {
				return fmt.Errorf("import: %d of %d files failed", out.Stats.Failed, out.Stats.Total)
			}
			return nil
		},
	}
}

func newStatsCommand(parent *ff.FlagSet, stdout io.Writer) *ff.Command {
	fs := ff.NewFlagSet("stats").SetParent(parent)
	var (
		period  = fs.StringLong("period", "all", "window: all, 24h, 7d, 30d or a Go duration")
		groupBy = fs.StringLong("group-by", "", "group by file_type, status, user or day")
	)

	return &ff.Command{
		Name:      "stats",
		Usage:     "importer stats [--period P] [--group-by G]",
		ShortHelp: "summarise the import ledger",
		Flags:     fs,
		Exec: func(ctx context.Context, _ []string) error {
			d, err := loadDeps()
			if err != nil {
				return err
			}
			defer d.close()

			l, err := d.ledger(ctx)
			if err != nil {
				return err
			}
			stats, err := l.Statistics(ctx, *period, *groupBy)
			if err != nil {
				return err
			}
			return writeJSON(stdout, stats)
		},
	}
}

func newExportCommand(parent *ff.FlagSet, stdout io.Writer) *ff.Command {
	fs := ff.NewFlagSet("export").SetParent(parent)
	var (
		format = fs.StringLong("format", "csv", "csv or xlsx")
		out    = fs.StringLong("out", "", "output path (defaults to imports_<date>.<format>)")
		status = fs.StringLong("status", "", "only export records with this status")
		user   = fs.StringLong("user", "", "only export records from this user")
	)

	return &ff.Command{
		Name:      "export",
		Usage:     "importer export [--format csv|xlsx] [--out PATH]",
		ShortHelp: "write ledger records to a spreadsheet",
		Flags:     fs,
		Exec: func(ctx context.Context, _ []string) error {
			if *format != "csv" && *format != "xlsx" {
				return fmt.Errorf("export: unknown format %q", *format)
			}

			d, err := loadDeps()
			if err != nil {
				return err
			}
			defer d.close()

			l, err := d.ledger(ctx)
			if err != nil {
				return err
			}
			recs, err := export.Collect(ctx, l, domain.ImportFilter{
				Status: domain.ImportStatus(*status),
				UserID: *user,
			})
			if err != nil {
				return err
			}

			path := *out
			if path == "" {
				path = export.BuildFilename("imports", *format, time.Now())
			}
			if err := writeExport(path, *format, recs); err != nil {
				return err
			}
			log.Printf("importer.export: wrote %d records to %s", len(recs), path)
			return writeJSON(stdout, map[string]any{"path": path, "records": len(recs)})
		},
	}
}

func writeExport(path, format string, recs []domain.ImportRecord) error {
	if format == "xlsx" {
		data, err := export.WriteXLSX(recs)
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0o644)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := export.WriteCSV(f, recs); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func newPurgeCommand(parent *ff.FlagSet, stdout io.Writer) *ff.Command {
	fs := ff.NewFlagSet("purge").SetParent(parent)
	days := fs.IntLong("days", -1, "drop records older than this many days (-1 uses config)")

	return &ff.Command{
		Name:      "purge",
		Usage:     "importer purge [--days N]",
		ShortHelp: "delete old import ledger records",
		Flags:     fs,
		Exec: func(ctx context.Context, _ []string) error {
			d, err := loadDeps()
			if err != nil {
				return err
			}
			defer d.close()

			n, err := purgeDays(*days, d.cfg.Ledger.RetentionDays)
			if err != nil {
				return err
			}
			l, err := d.ledger(ctx)
			if err != nil {
				return err
			}
			removed, err := l.PurgeOlderThan(ctx, n)
			if err != nil {
				return err
			}
			return writeJSON(stdout, map[string]int{"removed": removed, "days": n})
		},
	}
}

// purgeDays resolves the purge window. A negative flag falls back to the
// configured retention, which must be positive: zero retention means the
// ledger is kept forever, not that every record is dropped.
func purgeDays(flagDays, retentionDays int) (int, error) {
	if flagDays >= 0 {
		return flagDays, nil
	}
	if retentionDays <= 0 {
		return 0, fmt.Errorf("purge: ledger retention is disabled (retention_days=%d); pass --days explicitly", retentionDays)
	}
	return retentionDays, nil
}
