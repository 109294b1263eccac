// Test program to scan music directories into a sqlite media table and load
// the catalog back from it.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/llehouerou/odeon/internal/catalog"
	"github.com/llehouerou/odeon/internal/errmsg"
	"github.com/llehouerou/odeon/internal/logging"
	"github.com/llehouerou/odeon/internal/mediastore"
)

func main() {
	dbPath := flag.String("db", filepath.Join(os.TempDir(), "odeon-testscan.db"), "media database to write")
	workers := flag.Int("workers", 8, "files read in parallel")
	level := flag.String("log", "info", "log level")
	flag.Parse()

	if flag.NArg() == 0 {
		log.Fatalf("usage: testscan [-db path] [-workers n] <dir>...")
	}

	ctx := context.Background()
	logger := logging.New(os.Stderr, *level)

	store, err := mediastore.Open(*dbPath, mediastore.WithLogger(logger))
	if err != nil {
		log.Fatal(errmsg.FormatWith(errmsg.OpSourceOpen, *dbPath, err))
	}

	start := time.Now()
	scanner := mediastore.NewScanner(flag.Args(), mediastore.WithLogger(logger), mediastore.WithWorkers(*workers))
	written, err := store.Replace(ctx, scanner)
	if err != nil {
		store.Close()
		log.Fatal(errmsg.Format(errmsg.OpSourceScan, err))
	}
	log.Printf("Scanned %s tracks into %s in %v", humanize.Comma(int64(written)), *dbPath, time.Since(start).Round(time.Millisecond))
	if err := store.Close(); err != nil {
		log.Fatal(errmsg.Format(errmsg.OpSourceSave, err))
	}

	cat := catalog.New(catalog.WithLogger(logger))
	stats, err := cat.Refresh(ctx, mediastore.FileSource(*dbPath, mediastore.WithLogger(logger)))
	if err != nil {
		log.Fatal(errmsg.Format(errmsg.OpCatalogLoad, err))
	}

	log.Printf("Catalog: %s tracks, %s albums, %s artists (%d skipped, loaded in %v)",
		humanize.Comma(int64(stats.Loaded)),
		humanize.Comma(int64(len(cat.Albums()))),
		humanize.Comma(int64(len(cat.Artists()))),
		stats.Skipped,
		stats.Duration.Round(time.Millisecond))

	for i, a := range cat.Albums() {
		if i == 5 { // Show first 5
			break
		}
		log.Printf("  %s - %s (%d) %d tracks", a.Artist, a.Title, a.Year, a.TrackCount)
	}
}
