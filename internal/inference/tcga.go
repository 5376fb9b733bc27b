package inference

import (
	"github.com/rotisserie/eris"

	"github.com/carebridge/oncorisk/internal/artifact"
	"github.com/carebridge/oncorisk/internal/explain"
	"github.com/carebridge/oncorisk/internal/feature"
	"github.com/carebridge/oncorisk/internal/guidance"
	"github.com/carebridge/oncorisk/internal/risk"
	"github.com/carebridge/oncorisk/internal/scoring"
	"github.com/carebridge/oncorisk/internal/transform"
)

// VariantTCGA is the molecular uterine-cancer model: two tasks over TCGA
// genomic features — a random-forest molecular-subtype classifier (secondary)
// and a boosted survival classifier (primary).
const VariantTCGA = "uterine-tcga"

func tcgaSchema() feature.Schema {
	return feature.Schema{
		{Name: "mutation_count", Kind: feature.Numeric, Required: true},
		{Name: "fraction_genome_altered", Kind: feature.Numeric, Required: true},
		{Name: "msi_mantis_score", Kind: feature.Numeric, Required: true},
		{Name: "msisensor_score", Kind: feature.Numeric, Required: true},
		{Name: "diagnosis_age", Kind: feature.Numeric, Required: true},
		{Name: "race_category", Kind: feature.Categorical, Required: true},
	}
}

func tcgaGuidance() *guidance.Engine {
	return &guidance.Engine{
		Closing: map[risk.Tier]string{
			"Low":          "Low estimated survival risk — continue routine oncologic follow-up.",
			"Intermediate": "Intermediate estimated survival risk — recommend closer surveillance and multidisciplinary review.",
			"High":         "High estimated survival risk — urgent gynaecologic oncology review recommended.",
		},
	}
}

// tcgaPipeline builds one task's transform chain. Both tasks share the shape
// — rename, one-hot race, impute, scale, MSI merge, fixed layout — but carry
// separately fitted parameters.
func tcgaPipeline(pp *artifact.PipelineParams) (*transform.Pipeline, error) {
	if len(pp.OneHot) != 1 {
		return nil, eris.Errorf("inference: tcga pipeline needs exactly one one-hot block, got %d", len(pp.OneHot))
	}
	if pp.Merge == nil {
		return nil, eris.New("inference: tcga pipeline is missing merge parameters")
	}
	oh := pp.OneHot[0]
	return transform.NewPipeline(
		&transform.RenameColumns{Mapping: pp.Rename},
		&transform.OneHot{Column: oh.Column, Categories: oh.Categories, Prefix: oh.Prefix},
		&transform.Imputer{Medians: pp.ImputeMedians, Modes: pp.ImputeModes},
		&transform.RobustScale{Columns: pp.ScaleColumns, Center: pp.ScaleCenter, Scale: pp.ScaleScale},
		&transform.AverageMerge{Left: pp.Merge.Left, Right: pp.Merge.Right, Output: pp.Merge.Output},
		&transform.Select{StageName: "model_layout", Columns: pp.ModelColumns},
	), nil
}

// newTCGA assembles the two-task TCGA predictor from its artifact bundle.
func newTCGA(b *artifact.Bundle, topN int) (*Predictor, error) {
	survival, err := b.Task("survival")
	if err != nil {
		return nil, err
	}
	subtype, err := b.Task("subtype")
	if err != nil {
		return nil, err
	}
	if b.Encoder == nil {
		return nil, eris.New("inference: tcga bundle has no subtype label encoder")
	}

	survivalPipeline, err := tcgaPipeline(survival.Pipeline)
	if err != nil {
		return nil, err
	}
	subtypePipeline, err := tcgaPipeline(subtype.Pipeline)
	if err != nil {
		return nil, err
	}

	survivalModel, err := survival.Model.Model()
	if err != nil {
		return nil, err
	}
	subtypeModel, err := subtype.Model.Model()
	if err != nil {
		return nil, err
	}

	cuts := b.Thresholds.Cuts
	if len(cuts) != 2 {
		return nil, eris.Errorf("inference: tcga thresholds need 2 cuts, got %d", len(cuts))
	}
	echo := map[string]float64{"low_upper": cuts[0].Value, "high_lower": cuts[1].Value}

	engine := tcgaGuidance()
	if err := engine.Validate(b.Thresholds.Tiers()); err != nil {
		return nil, err
	}

	survivalArtifact := survival.Model
	return &Predictor{
		Variant: VariantTCGA,
		Schema:  tcgaSchema(),
		Primary: &Task{
			Pipeline: survivalPipeline,
			Scorer:   &scoring.Scorer{Model: survivalModel, Columns: survival.Pipeline.ModelColumns, Positive: 1},
			NewExplainer: func() (explain.Explainer, error) {
				// Attribution tracks the survival model: its sign maps
				// directly to increases/decreases risk.
				return newExplainer(survivalArtifact)
			},
		},
		Subtype: &Task{
			Pipeline: subtypePipeline,
			Scorer:   &scoring.Scorer{Model: subtypeModel, Columns: subtype.Pipeline.ModelColumns, Positive: 1},
		},
		Encoder:       b.Encoder,
		Thresholds:    b.Thresholds,
		ThresholdEcho: echo,
		Guidance:      engine,
		Namer:         &explain.Namer{Overrides: b.DisplayNames},
		TopN:          topN,
		PosLabel:      "DECEASED",
		NegLabel:      "LIVING",
		Info: ModelInfo{
			Name:       "Uterine Cancer TCGA Molecular Classifier",
			ModelType:  "Random Forest (subtype) + Gradient Boosting (survival)",
			Version:    "1.0.0",
			Features:   tcgaSchema().Names(),
			Thresholds: echo,
			Subtypes:   b.Encoder.Classes,
			Limitations: []string{
				"Trained on the public TCGA uterine cohort; not clinically validated.",
				"Molecular features must come from the same assay pipeline as training data.",
			},
		},
	}, nil
}
