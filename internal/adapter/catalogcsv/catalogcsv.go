// Package catalogcsv loads the conductor reference tables from CSV: a
// library table with geometry and resistance columns, and a ratings table
// with pre-computed nameplate ratings per voltage class.
//
// Library columns: ConductorName, CDRAD_in (outer radius, inches),
// RES_25C and RES_50C (AC resistance, ohms per mile).
// Ratings columns: ConductorName, MOT, RatingAmps, RatingMVA_69,
// RatingMVA_138.
package catalogcsv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/line-rating-service/internal/domain"
)

const feetPerMile = 5280

// Reference temperatures of the published resistance columns.
const (
	resLoTempC = 25
	resHiTempC = 50
)

// LoadFiles reads both tables from disk and builds a Catalog.
func LoadFiles(libraryPath, ratingsPath string) (*domain.Catalog, error) {
	lib, err := os.Open(libraryPath)
	if err != nil {
		return nil, fmt.Errorf("open conductor library: %w", err)
	}
	defer lib.Close()

	rat, err := os.Open(ratingsPath)
	if err != nil {
		return nil, fmt.Errorf("open conductor ratings: %w", err)
	}
	defer rat.Close()

	return Load(lib, rat)
}

// Load builds a Catalog from the two CSV streams.
func Load(library, ratings io.Reader) (*domain.Catalog, error) {
	specs, err := parseLibrary(library)
	if err != nil {
		return nil, err
	}
	rows, err := parseRatings(ratings)
	if err != nil {
		return nil, err
	}
	return domain.NewCatalog(specs, rows)
}

func parseLibrary(r io.Reader) ([]domain.ConductorSpec, error) {
	records, header, err := readAll(r, "conductor library")
	if err != nil {
		return nil, err
	}

	var specs []domain.ConductorSpec
	for i, rec := range records {
		row := indexed(header, rec)
		radius, errR := row.float("CDRAD_in")
		r25, err25 := row.float("RES_25C")
		r50, err50 := row.float("RES_50C")
		for _, err := range []error{errR, err25, err50} {
			if err != nil {
				return nil, fmt.Errorf("conductor library row %d: %w", i+2, err)
			}
		}
		specs = append(specs, domain.ConductorSpec{
			Name:       row.str("ConductorName"),
			DiameterIn: radius * 2,
			TLoC:       resLoTempC,
			RLo:        r25 / feetPerMile,
			THiC:       resHiTempC,
			RHi:        r50 / feetPerMile,
		})
	}
	return specs, nil
}

func parseRatings(r io.Reader) ([]domain.StaticRating, error) {
	records, header, err := readAll(r, "conductor ratings")
	if err != nil {
		return nil, err
	}

	var rows []domain.StaticRating
	for i, rec := range records {
		row := indexed(header, rec)
		mot, errM := row.float("MOT")
		amps, errA := row.float("RatingAmps")
		mva69, err69 := row.float("RatingMVA_69")
		mva138, err138 := row.float("RatingMVA_138")
		for _, err := range []error{errM, errA, err69, err138} {
			if err != nil {
				return nil, fmt.Errorf("conductor ratings row %d: %w", i+2, err)
			}
		}
		rows = append(rows, domain.StaticRating{
			Conductor: row.str("ConductorName"),
			MOTC:      mot,
			Amps:      amps,
			MVAByKV:   map[int]float64{69: mva69, 138: mva138},
		})
	}
	return rows, nil
}

func readAll(r io.Reader, what string) ([][]string, map[string]int, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	all, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", what, err)
	}
	if len(all) < 1 {
		return nil, nil, fmt.Errorf("read %s: missing header", what)
	}
	header := make(map[string]int, len(all[0]))
	for i, name := range all[0] {
		header[strings.TrimSpace(name)] = i
	}
	return all[1:], header, nil
}

type row struct {
	header map[string]int
	rec    []string
}

func indexed(header map[string]int, rec []string) row {
	return row{header: header, rec: rec}
}

func (r row) str(col string) string {
	i, ok := r.header[col]
	if !ok || i >= len(r.rec) {
		return ""
	}
	return strings.TrimSpace(r.rec[i])
}

func (r row) float(col string) (float64, error) {
	s := r.str(col)
	if s == "" {
		return 0, fmt.Errorf("missing column %q", col)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("column %q: %w", col, err)
	}
	return v, nil
}
