package commands

import (
	"fmt"
	"strings"

	"github.com/de-tools/spend-watch/pkg/models/domain"
	"github.com/de-tools/spend-watch/pkg/services/config"
	"github.com/de-tools/spend-watch/pkg/services/pipeline"
	"github.com/spf13/cobra"
)

type ReportCmd struct {
	deps     Deps
	format   string
	handlers map[string]ReportHandler
}

func NewReportCmd(deps Deps, handlers map[string]ReportHandler) *cobra.Command {
	rc := &ReportCmd{deps: deps, handlers: handlers}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print month-to-date usage by service without notifying",
		Args:  cobra.NoArgs,
		RunE:  rc.run,
	}

	cmd.Flags().StringVarP(&rc.format, "format", "f", "table", "Output format (table or plain)")

	return cmd
}

func (rc *ReportCmd) run(cmd *cobra.Command, _ []string) error {
	handler, ok := rc.handlers[rc.format]
	if !ok {
		return fmt.Errorf("unsupported format %q", rc.format)
	}

	ctx := cmd.Context()
	settings := rc.deps.Settings()

	runner, err := pipeline.NewFromSettings(ctx, rc.deps.Registry, settings)
	if err != nil {
		return err
	}

	snapshot, err := runner.Collect(ctx)
	if err != nil {
		return err
	}

	return handler.Handle(BuildReport(settings, snapshot))
}

// BuildReport lays out a snapshot as a single-section report with one row per
// service.
func BuildReport(s *config.Settings, snapshot *pipeline.Snapshot) *domain.Report {
	details := make([]domain.ReportDetail, 0, snapshot.Breakdown.Len())
	for _, service := range snapshot.Breakdown.Keys() {
		t, _ := snapshot.Breakdown.Get(service)
		var share float64
		if snapshot.Totals.Amount != 0 {
			share = t.Amount / snapshot.Totals.Amount
		}
		details = append(details, domain.ReportDetail{
			Name:     service,
			Amount:   t.Amount,
			Quantity: t.Quantity,
			Share:    share,
		})
	}

	return &domain.Report{
		Title:         fmt.Sprintf("%s month-to-date usage", strings.ToUpper(s.Provider)),
		Provider:      s.Provider,
		Period:        snapshot.Period,
		TotalAmount:   snapshot.Totals.Amount,
		TotalQuantity: snapshot.Totals.Quantity,
		Threshold:     s.Threshold,
		Currency:      s.Currency,
		Sections: []domain.ReportSection{
			{
				Title: "Usage by service",
				Summary: map[string]interface{}{
					"Services":           snapshot.Breakdown.Len(),
					"Threshold exceeded": snapshot.Totals.Amount > s.Threshold,
				},
				Details: details,
			},
		},
	}
}
