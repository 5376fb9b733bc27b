package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	predictVariant string
	predictInput   string
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Run a single prediction from a JSON field file",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadService()
		if err != nil {
			return err
		}

		p, err := svc.Predictor(predictVariant)
		if err != nil {
			return err
		}

		var in *os.File
		if predictInput == "-" {
			in = os.Stdin
		} else {
			f, err := os.Open(predictInput)
			if err != nil {
				return eris.Wrapf(err, "open input %s", predictInput)
			}
			defer f.Close()
			in = f
		}

		dec := json.NewDecoder(in)
		dec.UseNumber()
		var raw map[string]any
		if err := dec.Decode(&raw); err != nil {
			return eris.Wrap(err, "parse input JSON")
		}

		result, err := p.Infer(raw)
		if err != nil {
			return err
		}

		zap.L().Info("prediction complete",
			zap.String("variant", predictVariant),
			zap.Float64("probability", result.Probability),
			zap.String("risk_tier", result.RiskTier),
		)

		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return eris.Wrap(err, "encode result")
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	predictCmd.Flags().StringVar(&predictVariant, "variant", "", "model variant to run (required)")
	predictCmd.Flags().StringVar(&predictInput, "input", "-", "path to JSON field file, or - for stdin")
	_ = predictCmd.MarkFlagRequired("variant")
	rootCmd.AddCommand(predictCmd)
}
