// Package artifact loads the pre-fit parameter bundles the inference core
// runs on: imputer tables, scaler coefficients, encoder class lists,
// thresholds, and model weights. Bundles are loaded once at startup and
// treated as immutable for the process lifetime; a load failure is a fatal
// startup failure, never a per-request error.
package artifact

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/carebridge/oncorisk/internal/risk"
	"github.com/carebridge/oncorisk/internal/scoring"
)

// Model artifact type tags.
const (
	ModelLinear       = "linear"
	ModelTreeEnsemble = "tree_ensemble"
)

// ModelArtifact is a tagged pre-fit model loaded from JSON.
type ModelArtifact struct {
	Type     string                `json:"type"`
	Linear   *scoring.Linear       `json:"linear,omitempty"`
	Ensemble *scoring.TreeEnsemble `json:"ensemble,omitempty"`
}

// Model returns the opaque scoring model behind the tag.
func (m *ModelArtifact) Model() (scoring.Model, error) {
	switch m.Type {
	case ModelLinear:
		if m.Linear == nil || len(m.Linear.Coefficients) == 0 {
			return nil, eris.New("artifact: linear model has no coefficients")
		}
		return m.Linear, nil
	case ModelTreeEnsemble:
		if m.Ensemble == nil {
			return nil, eris.New("artifact: ensemble model is empty")
		}
		if err := m.Ensemble.Validate(); err != nil {
			return nil, err
		}
		return m.Ensemble, nil
	default:
		return nil, eris.Errorf("artifact: unknown model type %q", m.Type)
	}
}

// GatedParams holds the conditional zero/impute stage parameters.
type GatedParams struct {
	Gate        string             `json:"gate"`
	Negative    float64            `json:"negative"`
	BinaryDeps  []string           `json:"binary_deps"`
	Medians     map[string]float64 `json:"medians"`
	MedianOrder []string           `json:"median_order"`
}

// DerivedParams holds the aggregate-feature stage parameters.
type DerivedParams struct {
	Group        []string `json:"group"`
	HighRisk     []string `json:"high_risk"`
	AnyName      string   `json:"any_name"`
	CountName    string   `json:"count_name"`
	HighRiskName string   `json:"high_risk_name"`
	DropExtra    []string `json:"drop_extra"`
}

// OneHotParams holds one categorical column's fitted dummy layout. The
// baseline category is recorded for documentation; it is never materialized.
type OneHotParams struct {
	Column     string   `json:"column"`
	Prefix     string   `json:"prefix"`
	Categories []string `json:"categories"`
	Baseline   string   `json:"baseline"`
}

// MergeParams holds the two-column average-merge parameters.
type MergeParams struct {
	Left   string `json:"left"`
	Right  string `json:"right"`
	Output string `json:"output"`
}

// PipelineParams is the full fitted-parameter table for one transform chain.
// Which parameters a variant uses, and in which stage order, is fixed by the
// variant's assembly code — the artifact only carries the numbers.
type PipelineParams struct {
	Rename           map[string]string  `json:"rename,omitempty"`
	Gated            *GatedParams       `json:"gated,omitempty"`
	IndicatorColumns []string           `json:"indicator_columns,omitempty"`
	Derived          *DerivedParams     `json:"derived,omitempty"`
	ImputeMedians    map[string]float64 `json:"impute_medians,omitempty"`
	ImputeModes      map[string]float64 `json:"impute_modes,omitempty"`
	OneHot           []OneHotParams     `json:"one_hot,omitempty"`
	ScaleColumns     []string           `json:"scale_columns,omitempty"`
	ScaleCenter      map[string]float64 `json:"scale_center,omitempty"`
	ScaleScale       map[string]float64 `json:"scale_scale,omitempty"`
	Merge            *MergeParams       `json:"merge,omitempty"`
	// ModelColumns is the exact transformed column order the model was fit on.
	ModelColumns []string `json:"model_columns"`
}

// Task pairs one model with the pipeline parameters that feed it.
type Task struct {
	Name     string
	Model    *ModelArtifact
	Pipeline *PipelineParams
}

// Bundle is one variant's complete fitted artifact set.
type Bundle struct {
	Variant      string
	Tasks        map[string]*Task
	Thresholds   risk.ThresholdSet
	Encoder      *scoring.LabelEncoder
	DisplayNames map[string]string
}

// Task returns a named task; "primary" is the conventional single-task name.
func (b *Bundle) Task(name string) (*Task, error) {
	t, ok := b.Tasks[name]
	if !ok {
		return nil, eris.Errorf("artifact: bundle %q has no task %q", b.Variant, name)
	}
	return t, nil
}

// manifest is the per-variant manifest.yaml layout.
type manifest struct {
	Variant      string            `yaml:"variant"`
	Thresholds   string            `yaml:"thresholds"`
	Encoder      string            `yaml:"encoder"`
	DisplayNames map[string]string `yaml:"display_names"`
	Tasks        []manifestTask    `yaml:"tasks"`
}

type manifestTask struct {
	Name     string `yaml:"name"`
	Model    string `yaml:"model"`
	Pipeline string `yaml:"pipeline"`
}

// thresholdsFile is the thresholds.json layout.
type thresholdsFile struct {
	Lowest string `json:"lowest"`
	Cuts   []struct {
		Value float64 `json:"value"`
		Tier  string  `json:"tier"`
	} `json:"cuts"`
}

// LoadBundle reads one variant directory: manifest.yaml plus the JSON files
// it names.
func LoadBundle(dir string) (*Bundle, error) {
	raw, err := os.ReadFile(filepath.Join(dir, "manifest.yaml"))
	if err != nil {
		return nil, eris.Wrapf(err, "artifact: read manifest in %s", dir)
	}
	var m manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, eris.Wrapf(err, "artifact: parse manifest in %s", dir)
	}
	if m.Variant == "" {
		return nil, eris.Errorf("artifact: manifest in %s has no variant name", dir)
	}
	if len(m.Tasks) == 0 {
		return nil, eris.Errorf("artifact: manifest %q lists no tasks", m.Variant)
	}

	b := &Bundle{
		Variant:      m.Variant,
		Tasks:        make(map[string]*Task, len(m.Tasks)),
		DisplayNames: m.DisplayNames,
	}

	var tf thresholdsFile
	if err := readJSON(filepath.Join(dir, m.Thresholds), &tf); err != nil {
		return nil, err
	}
	b.Thresholds.Lowest = risk.Tier(tf.Lowest)
	for _, c := range tf.Cuts {
		b.Thresholds.Cuts = append(b.Thresholds.Cuts, risk.Cut{Value: c.Value, Tier: risk.Tier(c.Tier)})
	}
	if err := b.Thresholds.Validate(); err != nil {
		return nil, eris.Wrapf(err, "artifact: bundle %q", m.Variant)
	}

	if m.Encoder != "" {
		var enc scoring.LabelEncoder
		if err := readJSON(filepath.Join(dir, m.Encoder), &enc); err != nil {
			return nil, err
		}
		if len(enc.Classes) == 0 {
			return nil, eris.Errorf("artifact: bundle %q encoder has no classes", m.Variant)
		}
		b.Encoder = &enc
	}

	for _, mt := range m.Tasks {
		if mt.Name == "" {
			return nil, eris.Errorf("artifact: bundle %q has an unnamed task", m.Variant)
		}
		var ma ModelArtifact
		if err := readJSON(filepath.Join(dir, mt.Model), &ma); err != nil {
			return nil, err
		}
		if _, err := ma.Model(); err != nil {
			return nil, eris.Wrapf(err, "artifact: bundle %q task %q", m.Variant, mt.Name)
		}
		var pp PipelineParams
		if err := readJSON(filepath.Join(dir, mt.Pipeline), &pp); err != nil {
			return nil, err
		}
		if len(pp.ModelColumns) == 0 {
			return nil, eris.Errorf("artifact: bundle %q task %q has no model column list", m.Variant, mt.Name)
		}
		b.Tasks[mt.Name] = &Task{Name: mt.Name, Model: &ma, Pipeline: &pp}
	}

	return b, nil
}

// LoadDir reads every variant bundle under dir (one subdirectory each).
func LoadDir(dir string) (map[string]*Bundle, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "artifact: read dir %s", dir)
	}
	bundles := make(map[string]*Bundle)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		b, err := LoadBundle(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		if _, dup := bundles[b.Variant]; dup {
			return nil, eris.Errorf("artifact: duplicate variant %q", b.Variant)
		}
		bundles[b.Variant] = b
	}
	if len(bundles) == 0 {
		return nil, eris.Errorf("artifact: no bundles found under %s", dir)
	}
	return bundles, nil
}

func readJSON(path string, out any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "artifact: read %s", path)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return eris.Wrapf(err, "artifact: parse %s", path)
	}
	return nil
}
