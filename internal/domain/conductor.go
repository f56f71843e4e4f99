package domain

import "fmt"

// ConductorSpec holds the physical reference data for one conductor type.
// Resistances are in ohms per foot at the two reference temperatures.
type ConductorSpec struct {
	Name       string
	DiameterIn float64

	TLoC float64
	RLo  float64
	THiC float64
	RHi  float64
}

// ResistanceAt linearly interpolates (or extrapolates) resistance at the
// given conductor temperature between the two reference points.
func (s ConductorSpec) ResistanceAt(tc float64) (float64, error) {
	if s.THiC == s.TLoC {
		return 0, fmt.Errorf("conductor %q: %w", s.Name, ErrResistanceSpan)
	}
	return s.RLo + (s.RHi-s.RLo)/(s.THiC-s.TLoC)*(tc-s.TLoC), nil
}

// StaticRating is one pre-computed ratings-table row: the nameplate ampacity
// and MVA rating of a conductor at a maximum operating temperature, per
// standard voltage class.
type StaticRating struct {
	Conductor string
	MOTC      float64
	Amps      float64

	// MVAByKV maps nominal line-to-line voltage class (e.g. 69, 138) to the
	// published MVA rating.
	MVAByKV map[int]float64
}

type ratingKey struct {
	name string
	mot  float64
}

// Catalog is the immutable conductor reference library: specs keyed by
// name, static ratings keyed by (name, MOT). Loaded once and shared
// read-only by all sweep workers.
type Catalog struct {
	specs   map[string]ConductorSpec
	ratings map[ratingKey]StaticRating
}

// NewCatalog builds a Catalog, validating each spec's reference points.
func NewCatalog(specs []ConductorSpec, ratings []StaticRating) (*Catalog, error) {
	c := &Catalog{
		specs:   make(map[string]ConductorSpec, len(specs)),
		ratings: make(map[ratingKey]StaticRating, len(ratings)),
	}
	for _, s := range specs {
		if s.TLoC >= s.THiC {
			return nil, fmt.Errorf("conductor %q: reference temperatures must satisfy TLo < THi (got %g, %g)", s.Name, s.TLoC, s.THiC)
		}
		if s.RHi <= s.RLo {
			return nil, fmt.Errorf("conductor %q: resistance must increase with temperature (got %g, %g)", s.Name, s.RLo, s.RHi)
		}
		c.specs[s.Name] = s
	}
	for _, r := range ratings {
		c.ratings[ratingKey{r.Conductor, r.MOTC}] = r
	}
	return c, nil
}

// Spec looks up a conductor by exact name.
func (c *Catalog) Spec(name string) (ConductorSpec, error) {
	s, ok := c.specs[name]
	if !ok {
		return ConductorSpec{}, fmt.Errorf("%w: %q", ErrUnknownConductor, name)
	}
	return s, nil
}

// Rating looks up the static ratings row for a (conductor, MOT) pair.
func (c *Catalog) Rating(name string, mot float64) (StaticRating, error) {
	r, ok := c.ratings[ratingKey{name, mot}]
	if !ok {
		return StaticRating{}, fmt.Errorf("%w: %q at MOT %g°C", ErrNoRating, name, mot)
	}
	return r, nil
}

// RatedMVA returns the published MVA rating for a conductor at the given
// MOT and nominal voltage class.
func (c *Catalog) RatedMVA(name string, mot, kv float64) (float64, error) {
	r, err := c.Rating(name, mot)
	if err != nil {
		return 0, err
	}
	mva, ok := r.MVAByKV[int(kv)]
	if !ok {
		return 0, fmt.Errorf("%w: %q has no %d kV voltage class", ErrNoRating, name, int(kv))
	}
	return mva, nil
}
