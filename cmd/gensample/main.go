// Command gensample writes the reference sample shipment CSV to a file or
// stdout, for onboarding and manual testing against the upload API.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/parcelscope/shipment-etl-service/internal/adapter/csvsource"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the sample CSV (stdout when empty)")
	flag.Parse()

	if *out == "" {
		fmt.Print(csvsource.SampleCSV)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(*out, []byte(csvsource.SampleCSV), 0o600); err != nil {
		return err
	}
	log.Printf("wrote %s", *out)
	return nil
}
