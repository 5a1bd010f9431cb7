package fitter

import (
	"fmt"
	"strings"
)

// Particle is a dimuon resonance. Masses are in MeV.
type Particle struct {
	Name  string
	Mass  float64
	Width float64 // expected detector resolution

	// default fit window
	Low, High float64
}

var (
	JPsi    = Particle{Name: "JPsi", Mass: 3096.916, Width: 15, Low: 2900, High: 3300}
	PsiP    = Particle{Name: "PsiP", Mass: 3686.097, Width: 17, Low: 3450, High: 3900}
	Upsilon = Particle{Name: "Upsilon", Mass: 9460.30, Width: 45, Low: 8500, High: 11500}
)

var particles = []Particle{JPsi, PsiP, Upsilon}

// ParticleByName looks a particle up, ignoring case.
func ParticleByName(name string) (Particle, error) {
	for _, p := range particles {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return Particle{}, fmt.Errorf("fitter: unknown particle %q", name)
}

func (p Particle) MeanKey() string  { return p.Name + "_mean" }
func (p Particle) WidthKey() string { return p.Name + "_width" }
