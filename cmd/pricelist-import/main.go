// Command pricelist-import loads negotiated per-client prices from gzipped
// supplier price-list exports into the users' custom price maps.
//
// Supplier exports are large, overlap heavily, and occasionally contain
// typos, so an entry is applied only when it is confirmed by at least two
// files. When confirmed entries disagree on the amount, the lowest price
// wins.
package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"math/bits"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/IMAD-HB/ets-louaguef-sayah/internal/domain/product"
	"github.com/IMAD-HB/ets-louaguef-sayah/internal/domain/user"
	"github.com/IMAD-HB/ets-louaguef-sayah/internal/repository"
)

const (
	bloomCapacity = 50_000_000
	bloomFPR      = 0.001
	progressEvery = 5_000_000
)

// entry is one confirmed price-list line.
type entry struct {
	username  string
	productID string
	price     decimal.Decimal
}

// fileResult holds candidate entries found in a single file during pass 2,
// keyed by "username|productID". The mask records which files the key was
// seen in; the price is the lowest one observed.
type fileResult struct {
	masks  map[string]uint
	prices map[string]decimal.Decimal
}

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing *.gz price-list files")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("price-list import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("price-list import completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "*.gz"))
	if err != nil {
		return errors.Wrap(err, "glob data dir")
	}
	if len(files) < 2 {
		return errors.Errorf("need at least 2 price-list files in %s, found %d", dataDir, len(files))
	}

	// Pass 1: build one bloom filter per file, concurrently.
	slog.Info("pass 1: building bloom filters", slog.Int("files", len(files)))

	filters, err := buildBloomFilters(ctx, files)
	if err != nil {
		return errors.Wrap(err, "build bloom filters")
	}

	// Pass 2: collect entries appearing in 2+ files.
	slog.Info("pass 2: finding confirmed entries")

	confirmed, err := findConfirmedEntries(ctx, files, filters)
	if err != nil {
		return errors.Wrap(err, "find confirmed entries")
	}

	slog.Info("confirmed entries found", slog.Int("count", len(confirmed)))

	if len(confirmed) == 0 {
		slog.Info("no confirmed entries to apply")
		return nil
	}

	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	users := repository.NewUserRepository(pool)
	products := repository.NewProductRepository(pool)

	if err := applyEntries(ctx, users, products, confirmed); err != nil {
		return errors.Wrap(err, "apply entries to database")
	}

	return nil
}

// buildBloomFilters creates one bloom filter per file, concurrently.
func buildBloomFilters(ctx context.Context, files []string) ([]*bloom.BloomFilter, error) {
	filters := make([]*bloom.BloomFilter, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(buildFilterForFile(ctx, i, f, filters))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return filters, nil
}

func buildFilterForFile(ctx context.Context, idx int, path string, filters []*bloom.BloomFilter) func() error {
	return func() error {
		filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
		var count uint64

		if err := streamGzFile(ctx, path, func(line string) {
			key, _, ok := parseLine(line)
			if !ok {
				return
			}
			filter.AddString(key)
			count++
			if count%progressEvery == 0 {
				slog.Info("pass 1 progress",
					slog.Int("file", idx+1),
					slog.Uint64("entries", count),
				)
			}
		}); err != nil {
			return errors.Wrapf(err, "build filter for file %d", idx+1)
		}

		slog.Info("pass 1 complete",
			slog.Int("file", idx+1),
			slog.Uint64("total_entries", count),
		)

		filters[idx] = filter
		return nil
	}
}

// findConfirmedEntries re-streams each file and checks keys against OTHER
// files' bloom filters. An entry is confirmed if it appears in 2+ files.
func findConfirmedEntries(ctx context.Context, files []string, filters []*bloom.BloomFilter) ([]entry, error) {
	results := make([]fileResult, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(findCandidatesInFile(ctx, i, f, filters, results))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Merge bitmasks and keep the lowest price per key.
	merged := make(map[string]uint)
	prices := make(map[string]decimal.Decimal)
	for _, r := range results {
		for key, mask := range r.masks {
			merged[key] |= mask
			p, seen := prices[key]
			if !seen || r.prices[key].LessThan(p) {
				prices[key] = r.prices[key]
			}
		}
	}

	var confirmed []entry
	for key, mask := range merged {
		if bits.OnesCount(mask) < 2 {
			continue
		}
		username, productID, _ := strings.Cut(key, "|")
		confirmed = append(confirmed, entry{
			username:  username,
			productID: productID,
			price:     prices[key],
		})
	}

	return confirmed, nil
}

func findCandidatesInFile(
	ctx context.Context,
	idx int,
	path string,
	filters []*bloom.BloomFilter,
	results []fileResult,
) func() error {
	return func() error {
		masks := make(map[string]uint)
		prices := make(map[string]decimal.Decimal)
		fileBit := uint(1) << uint(idx)
		var count uint64

		if err := streamGzFile(ctx, path, func(line string) {
			key, price, ok := parseLine(line)
			if !ok {
				return
			}

			count++
			if count%progressEvery == 0 {
				slog.Info("pass 2 progress",
					slog.Int("file", idx+1),
					slog.Uint64("entries", count),
				)
			}

			// Check if this key appears in any OTHER file's bloom filter.
			for j, f := range filters {
				if j == idx {
					continue
				}
				if f.TestString(key) {
					masks[key] |= fileBit
					if p, seen := prices[key]; !seen || price.LessThan(p) {
						prices[key] = price
					}
					break
				}
			}
		}); err != nil {
			return errors.Wrapf(err, "scan file %d for candidates", idx+1)
		}

		slog.Info("pass 2 complete",
			slog.Int("file", idx+1),
			slog.Uint64("total_entries", count),
			slog.Int("candidates", len(masks)),
		)

		results[idx] = fileResult{masks: masks, prices: prices}
		return nil
	}
}

// parseLine splits a "username,productID,price" line into a bloom key and a
// price. Malformed or negatively priced lines are dropped.
func parseLine(line string) (key string, price decimal.Decimal, ok bool) {
	username, rest, found := strings.Cut(line, ",")
	if !found {
		return "", decimal.Decimal{}, false
	}
	productID, amount, found := strings.Cut(rest, ",")
	if !found || username == "" || productID == "" {
		return "", decimal.Decimal{}, false
	}
	price, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil || price.IsNegative() {
		return "", decimal.Decimal{}, false
	}
	return username + "|" + productID, price, true
}

// streamGzFile opens a gzip-compressed file and calls fn for each line.
func streamGzFile(ctx context.Context, path string, fn func(line string)) error {
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

	scanner := bufio.NewScanner(gz)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		fn(scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}

	return nil
}

// applyEntries merges confirmed prices into each user's custom price map.
// Entries naming unknown users or products are skipped, mirroring how stale
// references are treated elsewhere.
func applyEntries(ctx context.Context, users user.Repository, products product.Repository, confirmed []entry) error {
	slog.Info("applying entries", slog.Int("count", len(confirmed)))

	// Group by username so each user is written once.
	byUser := make(map[string][]entry)
	for _, e := range confirmed {
		byUser[e.username] = append(byUser[e.username], e)
	}

	var applied, skipped int
	for username, entries := range byUser {
		u, err := users.GetByUsername(ctx, username)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				slog.Warn("unknown user, skipping", slog.String("username", username))
				skipped += len(entries)
				continue
			}
			return errors.Wrapf(err, "load user %s", username)
		}

		if u.CustomPrices == nil {
			u.CustomPrices = user.CustomPrices{}
		}
		var changed bool
		for _, e := range entries {
			if _, err := products.GetByID(ctx, e.productID); err != nil {
				if errors.Is(err, product.ErrNotFound) {
					slog.Warn("unknown product, skipping",
						slog.String("username", username),
						slog.String("product", e.productID),
					)
					skipped++
					continue
				}
				return errors.Wrapf(err, "load product %s", e.productID)
			}
			u.CustomPrices[e.productID] = e.price
			applied++
			changed = true
		}

		if !changed {
			continue
		}
		if err := users.Update(ctx, u); err != nil {
			return errors.Wrapf(err, "update user %s", username)
		}
		slog.Info("updated user prices",
			slog.String("username", username),
			slog.Int("overrides", len(entries)),
		)
	}

	slog.Info("apply complete", slog.Int("applied", applied), slog.Int("skipped", skipped))
	return nil
}
