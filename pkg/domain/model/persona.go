package model

import (
	"maps"
	"slices"

	"github.com/m-mizutani/goerr/v2"
)

// Persona is the static description of the companion: its name and trait intensities.
type Persona struct {
	Name   string
	Traits map[string]int
}

// DefaultPersona returns the built-in persona.
func DefaultPersona() *Persona {
	return &Persona{
		Name: "Lumi",
		Traits: map[string]int{
			"warmth":       9,
			"humor":        7,
			"empathy":      9,
			"curiosity":    8,
			"authenticity": 9,
			"positivity":   8,
			"reliability":  10,
			"playfulness":  7,
			"wisdom":       8,
			"passion":      7,
		},
	}
}

// Validate checks the persona has a name and every trait intensity is within 1..10.
func (p *Persona) Validate() error {
	if p.Name == "" {
		return goerr.New("persona name is required")
	}
	for name, v := range p.Traits {
		if name == "" {
			return goerr.New("trait name is required")
		}
		if v < 1 || v > 10 {
			return goerr.New("trait intensity must be between 1 and 10", goerr.V("trait", name), goerr.V("intensity", v))
		}
	}
	return nil
}

// TraitNames returns trait names sorted alphabetically.
func (p *Persona) TraitNames() []string {
	return slices.Sorted(maps.Keys(p.Traits))
}
