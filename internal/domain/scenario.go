package domain

// Mode selects how a profile turns evidence into belief.
type Mode string

const (
	// ModeDirect conditions the observer's model on the observation.
	ModeDirect Mode = "direct"
	// ModeChoice routes the direct posterior through the observer's own guess.
	ModeChoice Mode = "choice"
	// ModePretend never incorporates evidence; belief is the prior.
	ModePretend Mode = "pretend"
)

func ValidMode(m string) bool {
	switch Mode(m) {
	case ModeDirect, ModeChoice, ModePretend:
		return true
	}
	return false
}

func AllModes() []Mode {
	return []Mode{ModeDirect, ModeChoice, ModePretend}
}

type VariableSpec struct {
	Name   string   `json:"name" yaml:"name"`
	Values []string `json:"values" yaml:"values"`
}

// Profile is one observer's prior over the subject's latent state.
type Profile struct {
	Name        string    `json:"name" yaml:"name"`
	Observer    string    `json:"observer" yaml:"observer"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Prior       []float64 `json:"prior" yaml:"prior"`
	Mode        Mode      `json:"mode" yaml:"mode"`
}

// EffectiveMode defaults an unset mode to ModeDirect.
func (p *Profile) EffectiveMode() Mode {
	if p.Mode == "" {
		return ModeDirect
	}
	return p.Mode
}

// Scenario is a configuration record for one family of inferences: a subject
// with a latent state, an observable behavior and the likelihood linking them,
// evaluated under several observer profiles.
type Scenario struct {
	Name        string       `json:"name" yaml:"name"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Subject     string       `json:"subject" yaml:"subject"`
	Latent      VariableSpec `json:"latent" yaml:"latent"`
	Observable  VariableSpec `json:"observable" yaml:"observable"`
	// Likelihood rows follow Latent.Values, columns follow Observable.Values.
	Likelihood [][]float64 `json:"likelihood" yaml:"likelihood"`
	Profiles   []Profile   `json:"profiles" yaml:"profiles"`
	// StressWeights are the evidence weights for low, moderate and high stress.
	StressWeights []float64 `json:"stress_weights,omitempty" yaml:"stress_weights,omitempty"`
}

func (s *Scenario) Profile(name string) (*Profile, bool) {
	for i := range s.Profiles {
		if s.Profiles[i].Name == name {
			return &s.Profiles[i], true
		}
	}
	return nil, false
}

func (s *Scenario) ProfileNames() []string {
	names := make([]string, len(s.Profiles))
	for i, p := range s.Profiles {
		names[i] = p.Name
	}
	return names
}
