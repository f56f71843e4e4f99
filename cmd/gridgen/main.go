// Command gridgen generates a synthetic network snapshot and conductor
// reference tables for local runs and test fixtures. The grid is a ring of
// load buses around a pair of generation buses, with a few cross ties so
// single outages reroute flow instead of islanding the network.
//
// Usage:
//
//	go run ./cmd/gridgen -out data -buses 12 -voltage 69
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
)

type conductor struct {
	name         string
	radiusIn     float64
	res25, res50 float64 // ohms per mile
	amps         float64
	mva69        float64
	mva138       float64
}

// Published reference values for three common ACSR sizes.
var conductors = []conductor{
	{name: "ORIOLE", radiusIn: 0.3705, res25: 0.2850, res50: 0.3110, amps: 531, mva69: 63, mva138: 127},
	{name: "DRAKE", radiusIn: 0.554, res25: 0.1180, res50: 0.1290, amps: 902, mva69: 107, mva138: 215},
	{name: "FALCON", radiusIn: 0.7725, res25: 0.0611, res50: 0.0665, amps: 1371, mva69: 161, mva138: 322},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out", "data", "output directory")
	buses := flag.Int("buses", 12, "number of ring buses")
	voltage := flag.Float64("voltage", 69, "nominal voltage in kV")
	loadMW := flag.Float64("load-mw", 30, "real power demand per load bus")
	flag.Parse()

	if *buses < 4 {
		return fmt.Errorf("-buses must be at least 4, got %d", *buses)
	}

	networkDir := filepath.Join(*outDir, "network")
	if err := os.MkdirAll(networkDir, 0o755); err != nil {
		return err
	}

	if err := writeConductorTables(*outDir); err != nil {
		return err
	}
	if err := writeNetwork(networkDir, *buses, *voltage, *loadMW); err != nil {
		return err
	}

	log.Printf("wrote %d-bus snapshot to %s", *buses, networkDir)
	return nil
}

func writeConductorTables(dir string) error {
	library := [][]string{{"ConductorName", "CDRAD_in", "RES_25C", "RES_50C"}}
	ratings := [][]string{{"ConductorName", "MOT", "RatingAmps", "RatingMVA_69", "RatingMVA_138"}}
	for _, c := range conductors {
		library = append(library, []string{
			c.name, f(c.radiusIn), f(c.res25), f(c.res50),
		})
		ratings = append(ratings, []string{
			c.name, "75", f(c.amps), f(c.mva69), f(c.mva138),
		})
	}
	if err := writeCSV(filepath.Join(dir, "conductor_library.csv"), library); err != nil {
		return err
	}
	return writeCSV(filepath.Join(dir, "conductor_ratings.csv"), ratings)
}

func writeNetwork(dir string, nBuses int, kv, loadMW float64) error {
	busRows := [][]string{{"name", "v_nom", "x", "y"}}
	lineRows := [][]string{{"name", "bus0", "bus1", "conductor", "MOT", "x_pu"}}
	loadRows := [][]string{{"name", "bus", "p_set"}}
	genRows := [][]string{{"name", "bus", "p_max"}}

	// Ring buses on a circle; names are stable so regeneration diffs
	// cleanly.
	names := make([]string, nBuses)
	for i := range names {
		names[i] = fmt.Sprintf("bus-%02d", i)
		angle := 2 * math.Pi * float64(i) / float64(nBuses)
		busRows = append(busRows, []string{
			names[i], f(kv), f(50 * math.Cos(angle)), f(50 * math.Sin(angle)),
		})
	}

	// Ring circuit: heavier conductor on the first segment, which carries
	// the most generation.
	for i := range names {
		next := (i + 1) % nBuses
		cond := "ORIOLE"
		if i == 0 || next == 0 {
			cond = "DRAKE"
		}
		lineRows = append(lineRows, []string{
			fmt.Sprintf("ring-%02d", i), names[i], names[next], cond, "75", "0.08",
		})
	}

	// Cross ties between opposite sides keep N-1 solvable.
	half := nBuses / 2
	for _, i := range []int{0, nBuses / 4} {
		lineRows = append(lineRows, []string{
			fmt.Sprintf("tie-%02d", i), names[i], names[(i+half)%nBuses], "FALCON", "75", "0.12",
		})
	}

	// Generation at two adjacent buses, load everywhere else.
	total := 0.0
	for i, name := range names {
		if i < 2 {
			continue
		}
		loadRows = append(loadRows, []string{
			fmt.Sprintf("load-%02d", i), name, f(loadMW),
		})
		total += loadMW
	}
	genRows = append(genRows,
		[]string{"gen-00", names[0], f(total)},
		[]string{"gen-01", names[1], f(total / 2)},
	)

	for file, rows := range map[string][][]string{
		"buses.csv":      busRows,
		"lines.csv":      lineRows,
		"loads.csv":      loadRows,
		"generators.csv": genRows,
	} {
		if err := writeCSV(filepath.Join(dir, file), rows); err != nil {
			return err
		}
	}
	return nil
}

func writeCSV(path string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func f(v float64) string {
	return fmt.Sprintf("%g", v)
}
