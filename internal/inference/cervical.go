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

// VariantCervical is the behavioral cervical-cancer risk model: calibrated
// gradient boosting over questionnaire features with a conditional STD
// imputation chain.
const VariantCervical = "cervical"

// cervicalSchema lists the raw request fields in the exact order the
// preprocessing chain was fit with. Everything arrives as a number (binary
// flags are 0/1); empty strings mean "not answered".
func cervicalSchema() feature.Schema {
	names := []string{
		"Age", "Number of sexual partners", "First sexual intercourse",
		"Num of pregnancies", "Smokes", "Smokes (years)", "Smokes (packs/year)",
		"Hormonal Contraceptives", "Hormonal Contraceptives (years)", "IUD",
		"IUD (years)", "STDs", "STDs (number)", "STDs:condylomatosis",
		"STDs:cervical condylomatosis", "STDs:vaginal condylomatosis",
		"STDs:vulvo-perineal condylomatosis", "STDs:syphilis",
		"STDs:pelvic inflammatory disease", "STDs:genital herpes",
		"STDs:molluscum contagiosum", "STDs:AIDS", "STDs:HIV",
		"STDs:Hepatitis B", "STDs:HPV", "STDs: Number of diagnosis",
		"STDs: Time since first diagnosis", "STDs: Time since last diagnosis",
	}
	schema := make(feature.Schema, 0, len(names))
	for _, n := range names {
		schema = append(schema, feature.FieldSpec{Name: n, Kind: feature.Numeric, Required: true})
	}
	return schema
}

// cervicalGuidance returns the tiered screening guidance. Action rules fire
// per tier; the tier summary is the closing line.
func cervicalGuidance() *guidance.Engine {
	tierIs := func(want risk.Tier) func(risk.Tier, guidance.Fields) bool {
		return func(tier risk.Tier, _ guidance.Fields) bool { return tier == want }
	}
	text := func(s string) func(guidance.Fields) string {
		return func(guidance.Fields) string { return s }
	}

	return &guidance.Engine{
		Rules: []guidance.Rule{
			{Name: "low_routine_screening", When: tierIs("Low Risk"),
				Message: text("Routine cervical screening as per national guidelines (every 3–5 years).")},
			{Name: "low_sti_counselling", When: tierIs("Low Risk"),
				Message: text("Counsel on STI prevention and safe sexual practices.")},
			{Name: "moderate_screening_12mo", When: tierIs("Moderate Risk"),
				Message: text("Schedule cervical screening within the next 12 months.")},
			{Name: "moderate_modifiable_factors", When: tierIs("Moderate Risk"),
				Message: text("Assess and address modifiable risk factors (smoking cessation, STI treatment).")},
			{Name: "moderate_hpv_cotest", When: tierIs("Moderate Risk"),
				Message: text("Consider HPV co-testing at next visit.")},
			{Name: "high_colposcopy", When: tierIs("High Risk"),
				Message: text("Refer for colposcopy evaluation at the earliest opportunity.")},
			{Name: "high_no_deferral", When: tierIs("High Risk"),
				Message: text("Do not defer based on last normal screening result.")},
			{Name: "high_document_factors", When: tierIs("High Risk"),
				Message: text("Document and address all identified risk factors.")},
			{Name: "high_followup_counselling", When: tierIs("High Risk"),
				Message: text("Ensure patient is counselled on the importance of follow-up.")},
		},
		Closing: map[risk.Tier]string{
			"Low Risk":      "Patient is at low risk for cervical cancer.",
			"Moderate Risk": "Patient has elevated risk factors that warrant closer monitoring.",
			"High Risk":     "Patient has multiple significant risk factors. Urgent clinical review recommended.",
		},
	}
}

// newCervical assembles the cervical predictor from its artifact bundle.
func newCervical(b *artifact.Bundle, topN int) (*Predictor, error) {
	task, err := b.Task("primary")
	if err != nil {
		return nil, err
	}
	pp := task.Pipeline
	if pp.Gated == nil || pp.Derived == nil {
		return nil, eris.New("inference: cervical bundle is missing gated/derived parameters")
	}

	pipeline := transform.NewPipeline(
		&transform.GatedImpute{
			Gate:        pp.Gated.Gate,
			Negative:    pp.Gated.Negative,
			BinaryDeps:  pp.Gated.BinaryDeps,
			Medians:     pp.Gated.Medians,
			MedianOrder: pp.Gated.MedianOrder,
		},
		&transform.MissingIndicator{Columns: pp.IndicatorColumns},
		&transform.DeriveAggregates{
			Group:        pp.Derived.Group,
			HighRisk:     pp.Derived.HighRisk,
			AnyName:      pp.Derived.AnyName,
			CountName:    pp.Derived.CountName,
			HighRiskName: pp.Derived.HighRiskName,
			DropExtra:    pp.Derived.DropExtra,
		},
		&transform.Imputer{Medians: pp.ImputeMedians, Modes: pp.ImputeModes},
		transform.NameSanitizer{},
		&transform.RobustScale{Columns: pp.ScaleColumns, Center: pp.ScaleCenter, Scale: pp.ScaleScale},
	)

	model, err := task.Model.Model()
	if err != nil {
		return nil, err
	}

	cuts := b.Thresholds.Cuts
	if len(cuts) != 2 {
		return nil, eris.Errorf("inference: cervical thresholds need 2 cuts, got %d", len(cuts))
	}
	echo := map[string]float64{"T1": cuts[0].Value, "T2": cuts[1].Value}

	engine := cervicalGuidance()
	if err := engine.Validate(b.Thresholds.Tiers()); err != nil {
		return nil, err
	}

	modelArtifact := task.Model
	return &Predictor{
		Variant: VariantCervical,
		Schema:  cervicalSchema(),
		Primary: &Task{
			Pipeline: pipeline,
			Scorer:   &scoring.Scorer{Model: model, Columns: pp.ModelColumns, Positive: 1},
			NewExplainer: func() (explain.Explainer, error) {
				return newExplainer(modelArtifact)
			},
		},
		Thresholds:    b.Thresholds,
		ThresholdEcho: echo,
		Guidance:      engine,
		// Cervical attribution reports sanitized pipeline names verbatim.
		Namer: &explain.Namer{Raw: true, Overrides: b.DisplayNames},
		TopN:  topN,
		Info: ModelInfo{
			Name:       "Cervical Cancer Clinical Risk Model",
			ModelType:  "Calibrated Gradient Boosting",
			Version:    "1.0.0",
			Features:   cervicalSchema().Names(),
			Thresholds: echo,
			Limitations: []string{
				"Trained on a small behavioral-risk cohort; not clinically validated.",
				"Intended as a clinical decision support prototype only.",
			},
		},
	}, nil
}

// newExplainer selects the attribution mode once, from the model's declared
// capability: exact coefficients for linear models, tree-path attribution for
// ensembles (positive class tracked).
func newExplainer(ma *artifact.ModelArtifact) (explain.Explainer, error) {
	switch ma.Type {
	case artifact.ModelLinear:
		return &explain.Coefficient{Coefficients: ma.Linear.Coefficients}, nil
	case artifact.ModelTreeEnsemble:
		return &explain.TreePath{Ensemble: ma.Ensemble, Class: 1}, nil
	default:
		return nil, eris.Errorf("inference: no explainer for model type %q", ma.Type)
	}
}
