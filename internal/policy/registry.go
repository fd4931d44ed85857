package policy

import (
	"fmt"
	"sort"

	"github.com/san-kum/satsim/internal/episode"
	"github.com/san-kum/satsim/internal/satellite"
)

// Params are the tunables shared by the registered policies.
type Params struct {
	Deadband float64
	Target   float64
	Gain     float64
	MaxRate  float64
	Script   []satellite.Action
}

type factory func(p Params, c satellite.Constants, seed int64) episode.Policy

type Registry struct {
	policies map[string]factory
}

func NewRegistry() *Registry {
	r := &Registry{policies: make(map[string]factory)}

	r.policies["rest"] = func(Params, satellite.Constants, int64) episode.Policy { return NewRest() }
	r.policies["bangbang"] = func(Params, satellite.Constants, int64) episode.Policy { return NewBangBang() }
	r.policies["detumble"] = func(p Params, c satellite.Constants, _ int64) episode.Policy {
		if p.Deadband > 0 {
			return NewDetumble(p.Deadband)
		}
		return NewDetumbleFor(c)
	}
	r.policies["point"] = func(p Params, c satellite.Constants, _ int64) episode.Policy {
		pt := NewPointing(p.Target, c)
		if p.Gain > 0 {
			pt.Gain = p.Gain
		}
		if p.MaxRate > 0 {
			pt.MaxRate = p.MaxRate
		}
		return pt
	}
	r.policies["random"] = func(_ Params, _ satellite.Constants, seed int64) episode.Policy { return NewRandom(seed) }
	r.policies["scripted"] = func(p Params, _ satellite.Constants, _ int64) episode.Policy { return NewScripted(p.Script) }
	r.policies["manual"] = func(Params, satellite.Constants, int64) episode.Policy { return NewManual() }

	return r
}

func (r *Registry) Get(name string, p Params, c satellite.Constants, seed int64) (episode.Policy, error) {
	build, err := r.Factory(name, p, c, seed)
	if err != nil {
		return nil, err
	}
	return build(), nil
}

// Factory binds the arguments of name so callers can build a fresh instance
// per episode.
func (r *Registry) Factory(name string, p Params, c satellite.Constants, seed int64) (func() episode.Policy, error) {
	fn, ok := r.policies[name]
	if !ok {
		return nil, fmt.Errorf("unknown policy: %s (available: %v)", name, r.Names())
	}
	return func() episode.Policy { return fn(p, c, seed) }, nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.policies))
	for name := range r.policies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
