package scenario

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/Harshitk-cp/mentalize/internal/dist"
	"github.com/Harshitk-cp/mentalize/internal/domain"
	"github.com/Harshitk-cp/mentalize/internal/inference"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestBuiltins_Compile(t *testing.T) {
	for _, s := range Builtins() {
		t.Run(s.Name, func(t *testing.T) {
			c, err := Compile(s)
			require.NoError(t, err)
			assert.Equal(t, s.Latent.Values, c.Latent.Values())
			assert.Equal(t, s.Observable.Values, c.Observable.Values())
			for _, name := range s.ProfileNames() {
				subject, p, err := c.Subject(name)
				require.NoError(t, err)
				assert.Equal(t, name, p.Name)
				assert.Equal(t, s.Subject, subject.Name)
			}
		})
	}
}

func TestBuiltins_BPDNoReply(t *testing.T) {
	c, err := Compile(bpdAbandonment())
	require.NoError(t, err)

	subject, _, err := c.Subject("bpd")
	require.NoError(t, err)
	assert.Equal(t, "jane", subject.Observer)

	obs, err := c.Observation("no_reply")
	require.NoError(t, err)

	posterior, err := inference.NewEngine(zaptest.NewLogger(t)).Infer(subject, obs)
	require.NoError(t, err)

	want := []float64{0.42 / 0.52, 0.09 / 0.52, 0.01 / 0.52}
	assert.InDeltaSlice(t, want, posterior.Probs(), 1e-9)
}

func TestBuiltins_AnxiousReadsDelayAsRejection(t *testing.T) {
	c, err := Compile(mentalizing())
	require.NoError(t, err)
	engine := inference.NewEngine(nil)
	obs, err := c.Observation("long_delay")
	require.NoError(t, err)

	anxious, _, err := c.Subject("anxious")
	require.NoError(t, err)
	posterior, err := engine.Infer(anxious, obs)
	require.NoError(t, err)
	p, err := posterior.Prob("rejecting")
	require.NoError(t, err)
	assert.InDelta(t, 0.48/0.505, p, 1e-9)

	secure, _, err := c.Subject("secure")
	require.NoError(t, err)
	posterior, err = engine.Infer(secure, obs)
	require.NoError(t, err)
	q, err := posterior.Prob("rejecting")
	require.NoError(t, err)
	assert.Less(t, q, p)
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Scenario)
	}{
		{"missing name", func(s *domain.Scenario) { s.Name = "" }},
		{"missing subject", func(s *domain.Scenario) { s.Subject = "" }},
		{"empty latent", func(s *domain.Scenario) { s.Latent.Values = nil }},
		{"duplicate observable value", func(s *domain.Scenario) { s.Observable.Values = []string{"a", "a", "b"} }},
		{"same variable names", func(s *domain.Scenario) { s.Observable.Name = s.Latent.Name }},
		{"short likelihood", func(s *domain.Scenario) { s.Likelihood = s.Likelihood[:2] }},
		{"negative likelihood", func(s *domain.Scenario) { s.Likelihood[0] = []float64{-1, 1, 1} }},
		{"no profiles", func(s *domain.Scenario) { s.Profiles = nil }},
		{"duplicate profile", func(s *domain.Scenario) { s.Profiles = append(s.Profiles, s.Profiles[0]) }},
		{"zero prior", func(s *domain.Scenario) { s.Profiles[0].Prior = []float64{0, 0, 0} }},
		{"prior length", func(s *domain.Scenario) { s.Profiles[0].Prior = []float64{1} }},
		{"bad mode", func(s *domain.Scenario) { s.Profiles[0].Mode = "dreaming" }},
		{"two stress weights", func(s *domain.Scenario) { s.StressWeights = []float64{1, 0.5} }},
		{"stress weight above one", func(s *domain.Scenario) { s.StressWeights = []float64{1.5, 0.5, 0.1} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := bpdAbandonment()
			tt.mutate(&s)
			_, err := Compile(s)
			assert.ErrorIs(t, err, ErrInvalidScenario)
		})
	}
}

func TestCompile_StressWeights(t *testing.T) {
	s := npdCriticism()
	c, err := Compile(s)
	require.NoError(t, err)
	assert.Equal(t, inference.DefaultEvidenceWeights, c.Weights)

	s.StressWeights = []float64{0.9, 0.6, 0.3}
	c, err = Compile(s)
	require.NoError(t, err)
	assert.Equal(t, inference.EvidenceWeights{0.9, 0.6, 0.3}, c.Weights)
}

func TestCompiled_SubjectAndObservation(t *testing.T) {
	c, err := Compile(npdCriticism())
	require.NoError(t, err)

	_, _, err = c.Subject("missing")
	assert.ErrorIs(t, err, ErrUnknownProfile)

	obs, err := c.Observation("")
	require.NoError(t, err)
	assert.Nil(t, obs)

	_, err = c.Observation("shouting")
	assert.ErrorIs(t, err, dist.ErrUnknownAssignment)

	obs, err = c.Observation("mild_critique")
	require.NoError(t, err)
	assert.Equal(t, "critique", obs.Variable)
}

const singleYAML = `
name: late_reply
subject: sam
latent:
  name: intention
  values: [busy, upset]
observable:
  name: reply
  values: [fast, slow]
likelihood:
  - [0.4, 0.6]
  - [0.2, 0.8]
profiles:
  - name: calm
    observer: kim
    prior: [0.7, 0.3]
  - name: worried
    observer: kim
    prior: [0.3, 0.7]
    mode: choice
`

const listYAML = `
scenarios:
  - name: one
    subject: a
    latent: {name: x, values: [p, q]}
    observable: {name: y, values: [r, s]}
    likelihood: [[1, 1], [1, 3]]
    profiles:
      - {name: flat, prior: [1, 1]}
  - name: two
    subject: b
    latent: {name: x, values: [p, q]}
    observable: {name: y, values: [r, s]}
    likelihood: [[1, 0], [0, 1]]
    profiles:
      - {name: flat, prior: [1, 1], mode: pretend}
    stress_weights: [1, 0.8, 0.6]
`

func TestParseYAML_Single(t *testing.T) {
	scenarios, err := ParseYAML([]byte(singleYAML))
	require.NoError(t, err)
	require.Len(t, scenarios, 1)

	s := scenarios[0]
	assert.Equal(t, "late_reply", s.Name)
	assert.Equal(t, []string{"busy", "upset"}, s.Latent.Values)
	require.Len(t, s.Profiles, 2)
	assert.Equal(t, domain.ModeDirect, s.Profiles[0].EffectiveMode())
	assert.Equal(t, domain.ModeChoice, s.Profiles[1].EffectiveMode())
}

func TestParseYAML_List(t *testing.T) {
	scenarios, err := ParseYAML([]byte(listYAML))
	require.NoError(t, err)
	require.Len(t, scenarios, 2)
	assert.Equal(t, "one", scenarios[0].Name)
	assert.Equal(t, []float64{1, 0.8, 0.6}, scenarios[1].StressWeights)
	assert.Equal(t, domain.ModePretend, scenarios[1].Profiles[0].Mode)
}

func TestParseYAML_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", "   \n"},
		{"malformed", "name: [unterminated"},
		{"invalid scenario", "name: x\nsubject: y\n"},
		{"misspelled key", strings.Replace(singleYAML, "profiles:", "stress_weight: [1, 0.2, 0.1]\nprofiles:", 1)},
		{"unknown profile key", strings.Replace(singleYAML, "    mode: choice", "    mood: choice", 1)},
		{"unknown list key", strings.Replace(listYAML, "    stress_weights:", "    stress_weight:", 1)},
		{"empty list", "scenarios: []\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseYAML([]byte(tt.data))
			assert.Error(t, err)
		})
	}

	_, err := ParseYAML([]byte("name: x\nsubject: y\n"))
	assert.ErrorIs(t, err, ErrInvalidScenario)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte(listYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yml"), []byte(singleYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.yaml"), 0o755))

	scenarios, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, scenarios, 3)
	assert.Equal(t, "late_reply", scenarios[0].Name)
	assert.Equal(t, "one", scenarios[1].Name)
	assert.Equal(t, "two", scenarios[2].Name)
}

func TestLoadDir_Missing(t *testing.T) {
	scenarios, err := LoadDir(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Empty(t, scenarios)

	scenarios, err = LoadDir("")
	require.NoError(t, err)
	assert.Empty(t, scenarios)
}

func TestLoadDir_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("name: x\n"), 0o644))

	_, err := LoadDir(dir)
	assert.ErrorIs(t, err, ErrInvalidScenario)
}

func TestCatalog_Default(t *testing.T) {
	dir := t.TempDir()
	override := `
name: mentalizing
subject: alex
latent: {name: intention, values: [busy, caring]}
observable: {name: behavior, values: [quick, slow]}
likelihood: [[0.5, 0.5], [0.9, 0.1]]
profiles:
  - {name: secure, observer: jane, prior: [0.5, 0.5]}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "override.yaml"), []byte(override), 0o644))

	c, err := Default(dir)
	require.NoError(t, err)
	assert.Equal(t, 4, c.Len())

	names := make([]string, 0, c.Len())
	for _, s := range c.List() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"bpd_abandonment", "mbt_modes", "mentalizing", "npd_criticism"}, names)

	s, err := c.Get("mentalizing")
	require.NoError(t, err)
	assert.Equal(t, []string{"busy", "caring"}, s.Latent.Values)

	_, err = c.Get("nope")
	assert.ErrorIs(t, err, ErrScenarioNotFound)
}

func TestCatalog_ConcurrentAccess(t *testing.T) {
	c := NewCatalog()
	var wg sync.WaitGroup
	for _, s := range Builtins() {
		wg.Add(2)
		go func(s domain.Scenario) {
			defer wg.Done()
			assert.NoError(t, c.Add(s))
		}(s)
		go func() {
			defer wg.Done()
			_ = c.List()
		}()
	}
	wg.Wait()
	assert.Equal(t, 4, c.Len())
}
