package scenario

import "github.com/Harshitk-cp/mentalize/internal/domain"

// Builtins returns the bundled scenarios. Each call returns fresh records.
func Builtins() []domain.Scenario {
	return []domain.Scenario{
		mentalizing(),
		bpdAbandonment(),
		npdCriticism(),
		mbtModes(),
	}
}

func mentalizing() domain.Scenario {
	return domain.Scenario{
		Name:        "mentalizing",
		Description: "Jane infers the intention behind Alex's text reply delay; attachment style sets her prior.",
		Subject:     "alex",
		Latent:      domain.VariableSpec{Name: "intention", Values: []string{"busy", "caring", "rejecting"}},
		Observable:  domain.VariableSpec{Name: "behavior", Values: []string{"quick", "moderate", "long_delay"}},
		Likelihood: [][]float64{
			{0.3, 0.5, 0.2},   // busy: mostly moderate
			{0.7, 0.25, 0.05}, // caring: mostly quick
			{0.1, 0.3, 0.6},   // rejecting: mostly long
		},
		Profiles: []domain.Profile{
			{Name: "secure", Observer: "jane", Prior: []float64{0.5, 0.3, 0.2}, Mode: domain.ModeDirect},
			{Name: "anxious", Observer: "jane", Prior: []float64{0.1, 0.1, 0.8}, Mode: domain.ModeDirect},
		},
	}
}

func bpdAbandonment() domain.Scenario {
	return domain.Scenario{
		Name:        "bpd_abandonment",
		Description: "Jane sends Alex an urgent text and gets no reply for an hour; an abandonment schema weights her prior toward rejection.",
		Subject:     "alex",
		Latent:      domain.VariableSpec{Name: "intention", Values: []string{"rejecting", "busy", "supportive"}},
		Observable:  domain.VariableSpec{Name: "reply", Values: []string{"no_reply", "delayed", "quick"}},
		Likelihood: [][]float64{
			{0.7, 0.2, 0.1},
			{0.3, 0.5, 0.2},
			{0.1, 0.3, 0.6},
		},
		Profiles: []domain.Profile{
			{Name: "bpd", Observer: "jane", Description: "abandonment fear schema", Prior: []float64{0.6, 0.3, 0.1}, Mode: domain.ModeDirect},
			{Name: "secure", Observer: "observer", Description: "securely attached observer", Prior: []float64{0.1, 0.4, 0.5}, Mode: domain.ModeDirect},
		},
		StressWeights: []float64{1.0, 0.5, 0.1},
	}
}

func npdCriticism() domain.Scenario {
	return domain.Scenario{
		Name:        "npd_criticism",
		Description: "John presents a project and a colleague remarks on it; a grandiose self-image makes envy the favored explanation.",
		Subject:     "colleague",
		Latent:      domain.VariableSpec{Name: "interpretation", Values: []string{"valid_criticism", "minor_exaggeration", "envy_malice"}},
		Observable:  domain.VariableSpec{Name: "critique", Values: []string{"no_critique", "mild_critique", "strong_critique"}},
		Likelihood: [][]float64{
			{0.1, 0.5, 0.4},
			{0.3, 0.5, 0.2},
			{0.2, 0.5, 0.3},
		},
		Profiles: []domain.Profile{
			{Name: "npd", Observer: "john", Description: "grandiose self-image", Prior: []float64{0.05, 0.20, 0.75}, Mode: domain.ModeDirect},
			{Name: "realistic", Observer: "observer", Prior: []float64{0.40, 0.35, 0.25}, Mode: domain.ModeDirect},
		},
	}
}

func mbtModes() domain.Scenario {
	return domain.Scenario{
		Name:        "mbt_modes",
		Description: "Prementalizing modes: the same action read under healthy mentalizing, psychic equivalence, pretend mode and hypermentalizing.",
		Subject:     "friend",
		Latent:      domain.VariableSpec{Name: "mental_state", Values: []string{"doesnt_care", "neutral", "cares"}},
		Observable:  domain.VariableSpec{Name: "action", Values: []string{"forgot_birthday", "sent_text", "threw_party"}},
		Likelihood: [][]float64{
			{0.6, 0.3, 0.1},
			{0.3, 0.5, 0.2},
			{0.1, 0.4, 0.5},
		},
		Profiles: []domain.Profile{
			{Name: "healthy", Observer: "self", Description: "balanced prior, full updating", Prior: []float64{0.2, 0.4, 0.4}, Mode: domain.ModeChoice},
			{Name: "psychic_equivalence_abandoned", Observer: "self", Description: "feeling abandoned", Prior: []float64{0.95, 0.04, 0.01}, Mode: domain.ModeChoice},
			{Name: "psychic_equivalence_loved", Observer: "self", Description: "feeling loved", Prior: []float64{0.01, 0.04, 0.95}, Mode: domain.ModeChoice},
			{Name: "pretend", Observer: "self", Description: "no reality testing", Prior: []float64{0.2, 0.4, 0.4}, Mode: domain.ModePretend},
			{Name: "hypermentalizing", Observer: "self", Description: "extreme hypotheses favored", Prior: []float64{0.45, 0.10, 0.45}, Mode: domain.ModeChoice},
		},
	}
}
