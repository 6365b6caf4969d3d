package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"collisionos/internal/config"
	"collisionos/internal/email/noop"
	"collisionos/internal/email/ses"
	"collisionos/internal/ledger"
	"collisionos/internal/port"
	"collisionos/internal/repository/memory"
	"collisionos/internal/repository/postgres"
	"collisionos/internal/service"
	s3storage "collisionos/internal/storage/s3"
)

// deps holds everything a subcommand may need. Fields are built lazily so
// that e.g. "stats" never dials S3.
type deps struct {
	cfg     *config.Config
	closers []func() error
}

func (d *deps) close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			log.Printf("WARN: importer: close failed: %v", err)
		}
	}
}

func (d *deps) ledger(ctx context.Context) (port.ImportLedger, error) {
	lc := d.cfg.Ledger
	switch lc.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     lc.RedisAddr,
			Password: lc.RedisPassword,
			DB:       lc.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("connecting to redis at %s: %w", lc.RedisAddr, err)
		}
		d.closers = append(d.closers, client.Close)
		log.Printf("importer: using redis ledger at %s", lc.RedisAddr)
		return ledger.NewRedisLedger(client, lc.RedisKeyPrefix), nil
	case "bolt":
		l, err := ledger.NewBoltLedger(lc.BoltPath)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, l.Close)
		log.Printf("importer: using bolt ledger at %s", lc.BoltPath)
		return l, nil
	default:
		log.Printf("WARN: importer: in-memory ledger does not persist across runs")
		return ledger.NewMemoryLedger(), nil
	}
}

func (d *deps) reconciler() (service.Reconciler, error) {
	devTenant, err := uuid.Parse(d.cfg.Ingest.DevTenantID)
	if err != nil && d.cfg.Ingest.DevelopmentMode {
		return nil, fmt.Errorf("invalid dev tenant id %q: %w", d.cfg.Ingest.DevTenantID, err)
	}
	rcfg := service.ReconcilerConfig{
		DevelopmentMode: d.cfg.Ingest.DevelopmentMode,
		DevTenantID:     devTenant,
	}

	if d.cfg.DB.Driver == "postgres" {
		db, err := postgres.NewDB(&d.cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		d.closers = append(d.closers, db.Close)
		return service.NewReconciler(
			postgres.NewCustomerRepo(db),
			postgres.NewVehicleRepo(db),
			postgres.NewJobRepo(db),
			rcfg,
		), nil
	}

	store := memory.NewStore()
	return service.NewReconciler(store, store, store, rcfg), nil
}

func (d *deps) storage(needed bool) (port.ObjectStorage, error) {
	if !needed {
		return nil, nil
	}
	client, err := s3storage.NewS3Client(&d.cfg.S3)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize S3 client: %w", err)
	}
	return client, nil
}

func (d *deps) notifier() (port.Notifier, error) {
	ec := d.cfg.Email
	switch ec.Provider {
	case "ses":
		n, err := ses.NewSESNotifier(ec.Region, ec.FromAddress, ec.FromName, ec.OpsAddress)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SES notifier: %w", err)
		}
		return n, nil
	default:
		return noop.NewNoopNotifier(), nil
	}
}
