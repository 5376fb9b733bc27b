package inference

import (
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/carebridge/oncorisk/internal/artifact"
	"github.com/carebridge/oncorisk/internal/explain"
	"github.com/carebridge/oncorisk/internal/feature"
	"github.com/carebridge/oncorisk/internal/guidance"
	"github.com/carebridge/oncorisk/internal/risk"
	"github.com/carebridge/oncorisk/internal/scoring"
	"github.com/carebridge/oncorisk/internal/transform"
)

// VariantUterine is the clinical uterine-cancer risk model: logistic
// regression over symptoms, labs, and comorbidities.
const VariantUterine = "uterine"

const uterineDisclaimer = "This is a CDS prototype using synthetic data. Results are not " +
	"clinically validated. Always defer to clinical judgement."

func uterineSchema() feature.Schema {
	return feature.Schema{
		{Name: "Age", Kind: feature.Numeric, Required: true},
		{Name: "BMI", Kind: feature.Numeric, Required: true},
		{Name: "MenopauseStatus", Kind: feature.Categorical, Required: true},
		{Name: "AbnormalBleeding", Kind: feature.Binary, Required: true},
		{Name: "PelvicPain", Kind: feature.Binary, Required: true},
		{Name: "VaginalDischarge", Kind: feature.Binary, Required: true},
		{Name: "UnexplainedWeightLoss", Kind: feature.Binary, Required: true},
		{Name: "ThickEndometrium", Kind: feature.Numeric, Required: true},
		{Name: "CA125_Level", Kind: feature.Numeric, Required: true},
		{Name: "Hypertension", Kind: feature.Binary, Required: true},
		{Name: "Diabetes", Kind: feature.Binary, Required: true},
		{Name: "FamilyHistoryCancer", Kind: feature.Binary, Required: true},
		{Name: "Smoking", Kind: feature.Binary, Required: true},
		{Name: "EstrogenTherapy", Kind: feature.Binary, Required: true},
		{Name: "HistologyType", Kind: feature.Categorical, Required: true},
		{Name: "Parity", Kind: feature.Numeric, Required: true},
		{Name: "Gravidity", Kind: feature.Numeric, Required: true},
		{Name: "HormoneReceptorStatus", Kind: feature.Categorical, Required: true},
	}
}

// uterineGuidance is the rule table behind the clinical recommendations:
// every matching rule contributes, in declaration order, and the tier line
// closes the list.
func uterineGuidance() *guidance.Engine {
	return &guidance.Engine{
		Rules: []guidance.Rule{
			{
				Name: "postmenopausal_thick_endometrium",
				When: func(_ risk.Tier, f guidance.Fields) bool {
					return f.Num("ThickEndometrium") > 4 && f.Str("MenopauseStatus") == "Postmenopausal"
				},
				Message: func(f guidance.Fields) string {
					return fmt.Sprintf("Elevated endometrial thickness (%g mm) exceeds the 4-5 mm "+
						"postmenopausal threshold — consider endometrial biopsy.", f.Num("ThickEndometrium"))
				},
			},
			{
				Name: "premenopausal_thick_endometrium",
				When: func(_ risk.Tier, f guidance.Fields) bool {
					return f.Num("ThickEndometrium") > 12 && f.Str("MenopauseStatus") == "Premenopausal"
				},
				Message: func(f guidance.Fields) string {
					return fmt.Sprintf("Endometrial thickness (%g mm) is elevated for a premenopausal "+
						"patient — consider ultrasound follow-up.", f.Num("ThickEndometrium"))
				},
			},
			{
				Name: "elevated_ca125",
				When: func(_ risk.Tier, f guidance.Fields) bool { return f.Num("CA125_Level") > 35 },
				Message: func(f guidance.Fields) string {
					return fmt.Sprintf("CA-125 level (%g U/mL) is above the reference range (0–35 U/mL) "+
						"— further evaluation warranted.", f.Num("CA125_Level"))
				},
			},
			{
				Name: "postmenopausal_bleeding",
				When: func(_ risk.Tier, f guidance.Fields) bool {
					return f.Flag("AbnormalBleeding") && f.Str("MenopauseStatus") == "Postmenopausal"
				},
				Message: func(guidance.Fields) string {
					return "Abnormal uterine bleeding in a postmenopausal patient is a clinical " +
						"red flag — gynaecologic workup recommended."
				},
			},
			{
				Name: "bleeding_over_45",
				When: func(_ risk.Tier, f guidance.Fields) bool {
					return f.Flag("AbnormalBleeding") && f.Num("Age") > 45
				},
				Message: func(guidance.Fields) string {
					return "Abnormal bleeding after age 45 — endometrial evaluation recommended."
				},
			},
			{
				Name: "comorbid_diabetes",
				When: func(_ risk.Tier, f guidance.Fields) bool { return f.Flag("Diabetes") },
				Message: func(guidance.Fields) string {
					return "Patient has comorbid diabetes — monitor for metabolic syndrome as an " +
						"independent risk factor."
				},
			},
			{
				Name: "estrogen_elevated_risk",
				When: func(tier risk.Tier, f guidance.Fields) bool {
					return f.Flag("EstrogenTherapy") && (tier == "Intermediate" || tier == "High")
				},
				Message: func(guidance.Fields) string {
					return "Unopposed estrogen therapy in an elevated-risk patient — review HRT " +
						"regimen with provider."
				},
			},
			{
				Name: "obesity",
				When: func(_ risk.Tier, f guidance.Fields) bool { return f.Num("BMI") > 30 },
				Message: func(f guidance.Fields) string {
					return fmt.Sprintf("Obesity (BMI %g) is an established risk factor for uterine cancer "+
						"— weight management counselling recommended.", f.Num("BMI"))
				},
			},
			{
				Name: "family_history_high_risk",
				When: func(tier risk.Tier, f guidance.Fields) bool {
					return f.Flag("FamilyHistoryCancer") && tier == "High"
				},
				Message: func(guidance.Fields) string {
					return "Family history of cancer combined with high estimated risk — consider " +
						"genetic counselling (Lynch syndrome screening)."
				},
			},
		},
		Closing: map[risk.Tier]string{
			"Low":          "Low estimated risk — routine screening per clinical guidelines.",
			"Intermediate": "Intermediate estimated risk — recommend clinical follow-up with gynaecologist.",
			"High":         "High estimated risk — strongly recommend gynaecologic oncology referral.",
		},
	}
}

// newUterine assembles the uterine predictor from its artifact bundle.
func newUterine(b *artifact.Bundle, topN int) (*Predictor, error) {
	task, err := b.Task("primary")
	if err != nil {
		return nil, err
	}
	pp := task.Pipeline
	if len(pp.OneHot) == 0 {
		return nil, eris.New("inference: uterine bundle has no one-hot parameters")
	}

	stages := []transform.Stage{
		&transform.Imputer{Medians: pp.ImputeMedians, Modes: pp.ImputeModes},
	}
	for i := range pp.OneHot {
		oh := pp.OneHot[i]
		stages = append(stages, &transform.OneHot{
			Column:     oh.Column,
			Categories: oh.Categories,
			Prefix:     oh.Prefix,
		})
	}
	stages = append(stages,
		&transform.RobustScale{Columns: pp.ScaleColumns, Center: pp.ScaleCenter, Scale: pp.ScaleScale},
		&transform.Select{StageName: "model_layout", Columns: pp.ModelColumns},
	)

	model, err := task.Model.Model()
	if err != nil {
		return nil, err
	}

	cuts := b.Thresholds.Cuts
	if len(cuts) != 2 {
		return nil, eris.Errorf("inference: uterine thresholds need 2 cuts, got %d", len(cuts))
	}
	echo := map[string]float64{"low_upper": cuts[0].Value, "high_lower": cuts[1].Value}

	engine := uterineGuidance()
	if err := engine.Validate(b.Thresholds.Tiers()); err != nil {
		return nil, err
	}

	modelArtifact := task.Model
	return &Predictor{
		Variant: VariantUterine,
		Schema:  uterineSchema(),
		Primary: &Task{
			Pipeline: transform.NewPipeline(stages...),
			Scorer:   &scoring.Scorer{Model: model, Columns: pp.ModelColumns, Positive: 1},
			NewExplainer: func() (explain.Explainer, error) {
				return newExplainer(modelArtifact)
			},
		},
		Thresholds:    b.Thresholds,
		ThresholdEcho: echo,
		Guidance:      engine,
		Namer:         &explain.Namer{Overrides: b.DisplayNames},
		TopN:          topN,
		RiskColors: map[risk.Tier]string{
			"Low":          "#27ae60",
			"Intermediate": "#f39c12",
			"High":         "#e74c3c",
		},
		Disclaimer:     uterineDisclaimer,
		EmitPrediction: true,
		Info: ModelInfo{
			Name:       "Uterine Cancer Risk Estimator",
			ModelType:  "Logistic Regression",
			Version:    "1.0.0",
			Features:   uterineSchema().Names(),
			Thresholds: echo,
			Limitations: []string{
				"Trained on synthetic data — not clinically validated.",
				"Intended as a clinical decision support prototype only.",
				"Feature contributions are approximate and may vary with preprocessing.",
			},
		},
	}, nil
}
