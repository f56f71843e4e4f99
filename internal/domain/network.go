package domain

import "fmt"

// ComponentType identifies an outage-able component class.
type ComponentType string

const (
	ComponentLine        ComponentType = "line"
	ComponentTransformer ComponentType = "transformer"
)

// Bus is a network node with a nominal voltage and planar coordinates used
// for line orientation.
type Bus struct {
	Name   string
	VNomKV float64
	X, Y   float64
}

// Line is a transmission branch. CapacityMVA is the operating capacity
// installed by the rating pipeline before each flow solve; ReactancePU is
// the series reactance in per-unit on the system base.
type Line struct {
	Name        string
	From, To    string
	Conductor   string
	MOTC        float64
	ReactancePU float64
	CapacityMVA float64
	Active      bool
}

// Transformer is a branch that can be outaged but carries no conductor
// rating of its own.
type Transformer struct {
	Name        string
	From, To    string
	ReactancePU float64
	Active      bool
}

// Load is a real-power demand at a bus, in MW.
type Load struct {
	Name   string
	Bus    string
	PSetMW float64
}

// Generator is a dispatchable source at a bus with a capability limit.
type Generator struct {
	Name   string
	Bus    string
	PMaxMW float64
}

// Shunt is a fixed shunt element at a bus.
type Shunt struct {
	Name     string
	Bus      string
	BSiemens float64
}

// Network is one topology snapshot: buses, branches, loads, generators and
// shunts. A Network is owned by exactly one pipeline run at a time; sweep
// engines Clone the base snapshot before mutating anything, so scenario
// mutations (deactivating a component, installing a capacity) never leak
// into the base case or into sibling scenarios.
type Network struct {
	Buses        []Bus
	Lines        []Line
	Transformers []Transformer
	Loads        []Load
	Generators   []Generator
	Shunts       []Shunt
}

// Clone returns an independent deep copy of the snapshot.
func (n *Network) Clone() *Network {
	out := &Network{
		Buses:        make([]Bus, len(n.Buses)),
		Lines:        make([]Line, len(n.Lines)),
		Transformers: make([]Transformer, len(n.Transformers)),
		Loads:        make([]Load, len(n.Loads)),
		Generators:   make([]Generator, len(n.Generators)),
		Shunts:       make([]Shunt, len(n.Shunts)),
	}
	copy(out.Buses, n.Buses)
	copy(out.Lines, n.Lines)
	copy(out.Transformers, n.Transformers)
	copy(out.Loads, n.Loads)
	copy(out.Generators, n.Generators)
	copy(out.Shunts, n.Shunts)
	return out
}

// Bus looks up a bus by name.
func (n *Network) Bus(name string) (Bus, bool) {
	for _, b := range n.Buses {
		if b.Name == name {
			return b, true
		}
	}
	return Bus{}, false
}

// Deactivate marks a component out of service. Returns false if no
// component of that type and name exists.
func (n *Network) Deactivate(kind ComponentType, name string) bool {
	switch kind {
	case ComponentLine:
		for i := range n.Lines {
			if n.Lines[i].Name == name {
				n.Lines[i].Active = false
				return true
			}
		}
	case ComponentTransformer:
		for i := range n.Transformers {
			if n.Transformers[i].Name == name {
				n.Transformers[i].Active = false
				return true
			}
		}
	}
	return false
}

// LineEndpoints resolves a line's terminal buses, checking that both exist
// and agree on nominal voltage.
func (n *Network) LineEndpoints(l Line) (Bus, Bus, error) {
	from, ok := n.Bus(l.From)
	if !ok {
		return Bus{}, Bus{}, fmt.Errorf("line %q: unknown bus %q", l.Name, l.From)
	}
	to, ok := n.Bus(l.To)
	if !ok {
		return Bus{}, Bus{}, fmt.Errorf("line %q: unknown bus %q", l.Name, l.To)
	}
	if from.VNomKV != to.VNomKV {
		return Bus{}, Bus{}, fmt.Errorf("line %q: terminal voltages differ (%g kV vs %g kV)", l.Name, from.VNomKV, to.VNomKV)
	}
	return from, to, nil
}
