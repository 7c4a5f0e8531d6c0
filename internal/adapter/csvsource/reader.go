// Package csvsource parses shipment CSV uploads into raw records and holds
// the reference sample fixture.
package csvsource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/parcelscope/shipment-etl-service/internal/domain"
)

// Column names expected in the upload header. Only the required set blocks
// acceptance; the rest default per record when absent.
const (
	colID        = "id"
	colCreated   = "created_time"
	colWarehouse = "warehouse_name"
	colPostal    = "shipto_postal_code"
	colCity      = "shipto_city"
	colState     = "shipto_state"
	colCountry   = "shipto_country_code"
	colCarrier   = "carrier"
	colBizType   = "biz_type"
	colWeight    = "gw"
	colVolume    = "vol"
	colPackages  = "pkg_num"
)

var requiredColumns = []string{colWarehouse, colCreated, colPostal}

// ErrEmptyUpload is returned when the upload contains no header row.
var ErrEmptyUpload = errors.New("empty CSV upload")

// MissingColumnsError reports required columns absent from the header.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
}

// ParseUpload reads shipment rows from CSV content. The header must contain
// the required columns; row cells are passed through untrimmed of semantics
// (validation happens in normalization). Ragged rows are tolerated — missing
// trailing cells read as empty.
func ParseUpload(r io.Reader) ([]domain.RawRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyUpload
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	cell := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var rows []domain.RawRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows)+2, err)
		}
		rows = append(rows, domain.RawRecord{
			ID:            cell(row, colID),
			CreatedTime:   cell(row, colCreated),
			WarehouseName: cell(row, colWarehouse),
			ShipToPostal:  cell(row, colPostal),
			ShipToCity:    cell(row, colCity),
			ShipToState:   cell(row, colState),
			ShipToCountry: cell(row, colCountry),
			Carrier:       cell(row, colCarrier),
			BizType:       cell(row, colBizType),
			GrossWeight:   cell(row, colWeight),
			Volume:        cell(row, colVolume),
			PackageCount:  cell(row, colPackages),
		})
	}
	return rows, nil
}
