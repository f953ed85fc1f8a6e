// Command inventory-ingest loads gzipped inventory feed files into the
// dealership backend. Feeds arrive as CSV (vin,variant_id,color_id,status),
// one file per source lot, and overlap: the same VIN shows up in several
// feeds. A bloom filter keeps the upload pass from re-posting VINs it has
// already sent.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/tanvtse183061-eng/dealer-checkout/internal/dealer"
)

const (
	bloomCapacity = 1_000_000
	bloomFPR      = 0.0001
	progressEvery = 10_000
	vinLength     = 17
)

func main() {
	var (
		dataDir    string
		backendURL string
		token      string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing *.gz inventory feeds")
	flag.StringVar(&backendURL, "backend-url", "", "dealership backend API root (or BACKEND_URL env)")
	flag.StringVar(&token, "token", "", "bearer token for the backend (or BACKEND_TOKEN env)")
	flag.Parse()

	if backendURL == "" {
		backendURL = os.Getenv("BACKEND_URL")
	}
	if token == "" {
		token = os.Getenv("BACKEND_TOKEN")
	}
	if backendURL == "" {
		slog.Error("backend URL is required: set --backend-url or BACKEND_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, backendURL, token); err != nil {
		slog.Error("inventory ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("inventory ingest completed successfully")
}

func run(ctx context.Context, dataDir, backendURL, token string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "*.gz"))
	if err != nil {
		return errors.Wrap(err, "list feed files")
	}
	if len(files) == 0 {
		return errors.Errorf("no *.gz feeds in %s", dataDir)
	}

	slog.Info("scanning feeds", slog.Int("files", len(files)))

	// Scanners run concurrently per file; a single uploader owns the
	// bloom filter and the backend connection, so dedup needs no locking.
	units := make(chan dealer.InventoryUnitForm, 1024)

	g, gctx := errgroup.WithContext(ctx)
	scanners, scanCtx := errgroup.WithContext(gctx)
	for _, f := range files {
		scanners.Go(scanFeed(scanCtx, f, units))
	}
	g.Go(func() error {
		defer close(units)
		return scanners.Wait()
	})

	client := dealer.New(dealer.Config{BaseURL: backendURL, Token: token})
	g.Go(uploadUnits(gctx, client, units))

	return g.Wait()
}

// scanFeed streams one gzipped CSV feed and sends valid rows downstream.
func scanFeed(ctx context.Context, path string, out chan<- dealer.InventoryUnitForm) func() error {
	return func() error {
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrapf(err, "open %s", path)
		}
		defer func() { _ = f.Close() }()

		gz, err := pgzip.NewReader(f)
		if err != nil {
			return errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()

		r := csv.NewReader(gz)
		r.FieldsPerRecord = 4
		r.ReuseRecord = true

		var rows, skipped uint64
		for {
			record, err := r.Read()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return errors.Wrapf(err, "read %s", path)
			}

			form, ok := parseRow(record)
			if !ok {
				skipped++
				continue
			}
			rows++
			if rows%progressEvery == 0 {
				slog.Info("scan progress", slog.String("file", path), slog.Uint64("rows", rows))
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case out <- form:
			}
		}

		slog.Info("scan complete",
			slog.String("file", path),
			slog.Uint64("rows", rows),
			slog.Uint64("skipped", skipped),
		)
		return nil
	}
}

// parseRow validates one CSV record. VINs must be 17 characters; rows
// with an unknown status are dropped rather than guessed at.
func parseRow(record []string) (dealer.InventoryUnitForm, bool) {
	vin := strings.ToUpper(strings.TrimSpace(record[0]))
	if len(vin) != vinLength {
		return dealer.InventoryUnitForm{}, false
	}
	status := strings.ToLower(strings.TrimSpace(record[3]))
	switch status {
	case dealer.StatusAvailable, dealer.StatusSold, dealer.StatusReserved, dealer.StatusInTransit:
	default:
		return dealer.InventoryUnitForm{}, false
	}
	return dealer.InventoryUnitForm{
		VIN:       vin,
		VariantID: dealer.ID(strings.TrimSpace(record[1])),
		ColorID:   dealer.ID(strings.TrimSpace(record[2])),
		Status:    status,
	}, true
}

// uploadUnits posts units to the backend, skipping VINs the bloom filter
// has seen. A false positive drops a genuine unit with probability
// bloomFPR, which the feed's nightly full resync tolerates.
func uploadUnits(ctx context.Context, client *dealer.Client, units <-chan dealer.InventoryUnitForm) func() error {
	return func() error {
		seen := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
		var sent, dup uint64

		for form := range units {
			if seen.TestString(form.VIN) {
				dup++
				continue
			}
			seen.AddString(form.VIN)

			if err := client.CreateInventoryUnit(ctx, form); err != nil {
				return errors.Wrapf(err, "upload %s", form.VIN)
			}
			sent++
			if sent%progressEvery == 0 {
				slog.Info("upload progress", slog.Uint64("sent", sent), slog.Uint64("duplicates", dup))
			}
		}

		slog.Info("upload complete", slog.Uint64("sent", sent), slog.Uint64("duplicates", dup))
		return nil
	}
}
