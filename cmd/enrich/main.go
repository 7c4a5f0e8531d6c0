// Command enrich runs the shipment enrichment pipeline over a CSV file
// offline and writes the enriched records and run statistics as JSON. It uses
// the same domain and pipeline packages as the server, so its output matches
// what the upload API returns.
//
// Usage:
//
//	go run ./cmd/enrich -in shipments.csv -out enriched.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/parcelscope/shipment-etl-service/internal/adapter/csvsource"
	"github.com/parcelscope/shipment-etl-service/internal/adapter/zippopotam"
	"github.com/parcelscope/shipment-etl-service/internal/observability"
	"github.com/parcelscope/shipment-etl-service/internal/pipeline"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	in := flag.String("in", "", "path to the shipment CSV to enrich")
	out := flag.String("out", "", "output path for the enriched JSON (stdout when empty)")
	baseURL := flag.String("base-url", "https://api.zippopotam.us/us", "postal lookup API base URL")
	maxRows := flag.Int("max-rows", 500, "maximum rows to process")
	delay := flag.Duration("delay", 100*time.Millisecond, "pause between external lookups")
	flag.Parse()

	if *in == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -in")
	}

	f, err := os.Open(*in)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	rows, err := csvsource.ParseUpload(f)
	if err != nil {
		return fmt.Errorf("parse %s: %w", *in, err)
	}
	log.Printf("parsed %d rows from %s", len(rows), *in)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	metrics := observability.NewMetrics()

	client := zippopotam.NewClient(*baseURL, 10*time.Second, metrics, logger)
	geocoder := zippopotam.NewMemoizingGeocoder(client, metrics, logger)

	svc := pipeline.New(geocoder, nil, logger, metrics, *maxRows, *delay)

	result, err := svc.Run(context.Background(), rows)
	if err != nil {
		return fmt.Errorf("enrichment run: %w", err)
	}
	log.Printf("enriched %d records (dropped=%d, unresolved=%d)",
		result.Stats.TotalRecords, result.Stats.DroppedRecords, result.Stats.UnresolvedRecords)

	if *out == "" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	if err := writeJSON(*out, result); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	log.Printf("wrote %s", *out)
	return nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}
