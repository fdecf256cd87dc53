package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/verdantlab/bdst/pkg/errors"
	"github.com/verdantlab/bdst/pkg/types/plant"
)

// NewEvaluateCmd creates the evaluate command: one record in, one card out.
func NewEvaluateCmd() *cobra.Command {
	var (
		record string
		output string
		demo   bool
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate one plant record into a risk card",
		Long: "Evaluate a single plant record, given as a JSON object (or read from stdin\n" +
			"with --record -), and print the resulting risk card as indented JSON.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			fields, err := recordFields(cmd, record, demo)
			if err != nil {
				return err
			}

			rec, err := plant.FromMap(fields)
			if err != nil {
				return err
			}

			evaluator, err := newEvaluator(cliCtx)
			if err != nil {
				return err
			}
			card, err := evaluator.Evaluate(rec)
			if err != nil {
				return err
			}

			if output == "" {
				return writeJSON(cmd.OutOrStdout(), card)
			}
			if err := writeCardFile(output, card); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote plant card to: %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVar(&record, "record", "", "plant record as a JSON object, or - to read it from stdin")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the card to this file instead of stdout")
	cmd.Flags().BoolVar(&demo, "demo", false, "evaluate a built-in demo record")

	return cmd
}

// recordFields resolves the record source: the demo record, inline JSON, or
// stdin.
func recordFields(cmd *cobra.Command, record string, demo bool) (map[string]any, error) {
	if demo {
		return demoRecord(), nil
	}
	if record == "" {
		return nil, errors.New(errors.CodeInvalidParam, "provide --record <json|-> or --demo")
	}

	payload := []byte(record)
	if record == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeIOFailure, "read record from stdin")
		}
		payload = data
	}

	var fields map[string]any
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, errors.Wrap(err, errors.CodeSerialization, "parse record JSON")
	}
	return fields, nil
}

// demoRecord is a small high-bioactivity record useful for smoke-testing a
// rules installation without any input data.
func demoRecord() map[string]any {
	return map[string]any{
		"scientific_name":      "Demo plantus",
		"edibility_rating":     4,
		"medicinal_rating":     2,
		"medicinal_props_text": "mydriatic, tonic",
		"known_hazards_text":   "",
		"family":               "Demoaceae",
	}
}

// writeCardFile writes the card as indented JSON, creating parent
// directories as needed.
func writeCardFile(path string, card any) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, errors.CodeIOFailure, "create output directory "+dir)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.CodeIOFailure, "create card file "+path)
	}
	if err := writeJSON(f, card); err != nil {
		f.Close()
		return errors.Wrap(err, errors.CodeSerialization, "encode card to "+path)
	}
	return errors.Wrap(f.Close(), errors.CodeIOFailure, "close card file "+path)
}
