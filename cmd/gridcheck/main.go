// Command gridcheck performs data integrity checks across the conductor
// reference tables and a network snapshot: column presence, catalog
// coverage of every line's conductor and MOT, topology consistency, and a
// base-case flow solve. Run it after editing the CSVs and before deploying
// them to the service.
//
// Usage:
//
//	go run ./cmd/gridcheck \
//	  -library data/conductor_library.csv \
//	  -ratings data/conductor_ratings.csv \
//	  -network data/network
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/couchcryptid/line-rating-service/internal/adapter/catalogcsv"
	"github.com/couchcryptid/line-rating-service/internal/adapter/gridcsv"
	"github.com/couchcryptid/line-rating-service/internal/domain"
	"github.com/couchcryptid/line-rating-service/internal/powerflow"
)

// phase tracks pass/fail for one validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	library := flag.String("library", "data/conductor_library.csv", "conductor library CSV")
	ratings := flag.String("ratings", "data/conductor_ratings.csv", "conductor ratings CSV")
	networkDir := flag.String("network", "data/network", "network snapshot directory")
	flag.Parse()

	phases := run(*library, *ratings, *networkDir)

	failed := 0
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = "FAIL"
			failed++
		}
		fmt.Printf("[%s] %s\n", status, p.name)
		for _, e := range p.errors {
			fmt.Printf("       %s\n", e)
		}
	}
	if failed > 0 {
		fmt.Printf("%d of %d phases failed\n", failed, len(phases))
		os.Exit(1)
	}
	fmt.Printf("all %d phases passed\n", len(phases))
}

func run(libraryPath, ratingsPath, networkDir string) []*phase {
	loadPhase := &phase{name: "load reference tables and snapshot"}

	catalog, err := catalogcsv.LoadFiles(libraryPath, ratingsPath)
	if err != nil {
		loadPhase.errorf("conductor tables: %v", err)
	}
	network, err := gridcsv.LoadDir(networkDir)
	if err != nil {
		loadPhase.errorf("network snapshot: %v", err)
	}
	if !loadPhase.passed() {
		return []*phase{loadPhase}
	}

	return []*phase{
		loadPhase,
		checkCoverage(catalog, network),
		checkTopology(network),
		checkBaseCase(network),
	}
}

// checkCoverage verifies every line's conductor has a library entry and a
// ratings row at the line's MOT for the line's voltage class.
func checkCoverage(catalog *domain.Catalog, network *domain.Network) *phase {
	p := &phase{name: "catalog covers every line"}
	for _, line := range network.Lines {
		if _, err := catalog.Spec(line.Conductor); err != nil {
			p.errorf("line %s: %v", line.Name, err)
			continue
		}
		from, ok := network.Bus(line.From)
		if !ok {
			continue // topology phase reports this
		}
		if _, err := catalog.RatedMVA(line.Conductor, line.MOTC, from.VNomKV); err != nil {
			p.errorf("line %s: %v", line.Name, err)
		}
	}
	return p
}

// checkTopology verifies bus references, voltage agreement, and reactances.
func checkTopology(network *domain.Network) *phase {
	p := &phase{name: "topology is consistent"}

	for _, line := range network.Lines {
		if _, _, err := network.LineEndpoints(line); err != nil {
			p.errorf("%v", err)
		}
		if line.ReactancePU <= 0 {
			p.errorf("line %s: reactance must be positive, got %g", line.Name, line.ReactancePU)
		}
	}
	for _, tr := range network.Transformers {
		for _, bus := range []string{tr.From, tr.To} {
			if _, ok := network.Bus(bus); !ok {
				p.errorf("transformer %s: unknown bus %q", tr.Name, bus)
			}
		}
		if tr.ReactancePU <= 0 {
			p.errorf("transformer %s: reactance must be positive, got %g", tr.Name, tr.ReactancePU)
		}
	}
	for _, load := range network.Loads {
		if _, ok := network.Bus(load.Bus); !ok {
			p.errorf("load %s: unknown bus %q", load.Name, load.Bus)
		}
	}
	for _, gen := range network.Generators {
		if _, ok := network.Bus(gen.Bus); !ok {
			p.errorf("generator %s: unknown bus %q", gen.Name, gen.Bus)
		}
	}
	if len(network.Generators) == 0 {
		p.errorf("no generators in snapshot")
	}
	return p
}

// checkBaseCase verifies the intact topology solves.
func checkBaseCase(network *domain.Network) *phase {
	p := &phase{name: "base case flow solves"}
	flows, err := powerflow.DCSolver{}.Solve(context.Background(), network)
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	for _, line := range network.Lines {
		if !line.Active {
			continue
		}
		if _, ok := flows[line.Name]; !ok {
			p.errorf("no flow computed for line %s", line.Name)
		}
	}
	return p
}
