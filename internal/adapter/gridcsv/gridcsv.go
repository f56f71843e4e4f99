// Package gridcsv loads a network snapshot from a directory of CSV files
// (buses.csv, lines.csv, loads.csv, generators.csv, and optionally
// transformers.csv and shunt_impedances.csv). Only the columns the rating
// pipeline reads are interpreted; anything else in the files is ignored.
package gridcsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/couchcryptid/line-rating-service/internal/domain"
)

// LoadDir reads a snapshot from dir. Missing optional files (transformers,
// shunts) are treated as empty.
func LoadDir(dir string) (*domain.Network, error) {
	n := &domain.Network{}

	if err := readFile(filepath.Join(dir, "buses.csv"), false, func(r row) error {
		vnom, err := r.float("v_nom")
		if err != nil {
			return err
		}
		x, err := r.float("x")
		if err != nil {
			return err
		}
		y, err := r.float("y")
		if err != nil {
			return err
		}
		n.Buses = append(n.Buses, domain.Bus{Name: r.str("name"), VNomKV: vnom, X: x, Y: y})
		return nil
	}); err != nil {
		return nil, err
	}

	if err := readFile(filepath.Join(dir, "lines.csv"), false, func(r row) error {
		mot, err := r.float("MOT")
		if err != nil {
			return err
		}
		xpu, err := r.float("x_pu")
		if err != nil {
			return err
		}
		n.Lines = append(n.Lines, domain.Line{
			Name:        r.str("name"),
			From:        r.str("bus0"),
			To:          r.str("bus1"),
			Conductor:   r.str("conductor"),
			MOTC:        mot,
			ReactancePU: xpu,
			Active:      true,
		})
		return nil
	}); err != nil {
		return nil, err
	}

	if err := readFile(filepath.Join(dir, "loads.csv"), false, func(r row) error {
		p, err := r.float("p_set")
		if err != nil {
			return err
		}
		n.Loads = append(n.Loads, domain.Load{Name: r.str("name"), Bus: r.str("bus"), PSetMW: p})
		return nil
	}); err != nil {
		return nil, err
	}

	if err := readFile(filepath.Join(dir, "generators.csv"), false, func(r row) error {
		p, err := r.float("p_max")
		if err != nil {
			return err
		}
		n.Generators = append(n.Generators, domain.Generator{Name: r.str("name"), Bus: r.str("bus"), PMaxMW: p})
		return nil
	}); err != nil {
		return nil, err
	}

	if err := readFile(filepath.Join(dir, "transformers.csv"), true, func(r row) error {
		xpu, err := r.float("x_pu")
		if err != nil {
			return err
		}
		n.Transformers = append(n.Transformers, domain.Transformer{
			Name:        r.str("name"),
			From:        r.str("bus0"),
			To:          r.str("bus1"),
			ReactancePU: xpu,
			Active:      true,
		})
		return nil
	}); err != nil {
		return nil, err
	}

	if err := readFile(filepath.Join(dir, "shunt_impedances.csv"), true, func(r row) error {
		b, err := r.float("b")
		if err != nil {
			return err
		}
		n.Shunts = append(n.Shunts, domain.Shunt{Name: r.str("name"), Bus: r.str("bus"), BSiemens: b})
		return nil
	}); err != nil {
		return nil, err
	}

	return n, nil
}

func readFile(path string, optional bool, each func(row) error) error {
	f, err := os.Open(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	return read(f, filepath.Base(path), each)
}

func read(r io.Reader, name string, each func(row) error) error {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	all, err := cr.ReadAll()
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if len(all) < 1 {
		return fmt.Errorf("read %s: missing header", name)
	}
	header := make(map[string]int, len(all[0]))
	for i, col := range all[0] {
		header[strings.TrimSpace(col)] = i
	}
	for i, rec := range all[1:] {
		if err := each(row{header: header, rec: rec}); err != nil {
			return fmt.Errorf("%s row %d: %w", name, i+2, err)
		}
	}
	return nil
}

type row struct {
	header map[string]int
	rec    []string
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
