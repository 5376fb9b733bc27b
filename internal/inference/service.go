package inference

import (
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/carebridge/oncorisk/internal/artifact"
)

// NewPredictor assembles the predictor for a loaded bundle. The variant name
// in the bundle manifest selects the stage order, schema, and rule table.
func NewPredictor(b *artifact.Bundle, topN int) (*Predictor, error) {
	switch b.Variant {
	case VariantCervical:
		return newCervical(b, topN)
	case VariantUterine:
		return newUterine(b, topN)
	case VariantTCGA:
		return newTCGA(b, topN)
	default:
		return nil, eris.Errorf("inference: unknown variant %q", b.Variant)
	}
}

// Service holds every assembled predictor. Built once at startup; read-only
// afterwards.
type Service struct {
	predictors map[string]*Predictor
}

// NewService assembles a predictor per loaded bundle. Any assembly failure is
// fatal: a half-loaded artifact set must not serve traffic.
func NewService(bundles map[string]*artifact.Bundle, topN int) (*Service, error) {
	s := &Service{predictors: make(map[string]*Predictor, len(bundles))}
	for name, b := range bundles {
		p, err := NewPredictor(b, topN)
		if err != nil {
			return nil, eris.Wrapf(err, "inference: assemble variant %q", name)
		}
		s.predictors[p.Variant] = p
		zap.L().Info("inference: variant loaded",
			zap.String("variant", p.Variant),
			zap.Int("fields", len(p.Schema)),
		)
	}
	return s, nil
}

// Predictor returns the predictor for a variant.
func (s *Service) Predictor(variant string) (*Predictor, error) {
	p, ok := s.predictors[variant]
	if !ok {
		return nil, eris.Errorf("inference: no predictor for variant %q", variant)
	}
	return p, nil
}

// Variants lists loaded variant names, sorted.
func (s *Service) Variants() []string {
	out := make([]string, 0, len(s.predictors))
	for name := range s.predictors {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
