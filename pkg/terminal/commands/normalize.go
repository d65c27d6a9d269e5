package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fortuna-labs/report-funnel/pkg/models/domain"
	"github.com/fortuna-labs/report-funnel/pkg/services/scoring"
	"github.com/fortuna-labs/report-funnel/pkg/terminal/export"
)

type NormalizeCmd struct {
	reporter *export.Reporter
}

// NewNormalizeCmd runs the score normalizer on five raw weights given on the
// command line, a quick way to check what a distribution comes out as.
func NewNormalizeCmd(reporter *export.Reporter) *cobra.Command {
	nc := &NormalizeCmd{reporter: reporter}
	cmd := &cobra.Command{
		Use:   "normalize <wood> <fire> <earth> <metal> <water>",
		Short: "Normalize five raw weights to integer percentages",
		Args:  cobra.ExactArgs(len(domain.Elements)),
		RunE:  nc.run,
	}
	return cmd
}

func (nc *NormalizeCmd) run(_ *cobra.Command, args []string) error {
	raw := make([]float64, 0, len(args))
	for _, arg := range args {
		value, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return fmt.Errorf("invalid weight %q: %w", arg, err)
		}
		raw = append(raw, value)
	}

	return nc.reporter.Scores(raw, scoring.Normalize(raw))
}
