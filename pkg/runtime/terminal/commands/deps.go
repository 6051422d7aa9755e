package commands

import (
	"github.com/de-tools/spend-watch/pkg/models/domain"
	"github.com/de-tools/spend-watch/pkg/services/config"
	"github.com/de-tools/spend-watch/pkg/services/usage"
)

// Deps is shared by all commands. Settings is resolved lazily because it is
// only loaded once cobra has parsed the persistent flags.
type Deps struct {
	Registry usage.Registry
	Settings func() *config.Settings
}

// ReportHandler renders a period report
type ReportHandler interface {
	Handle(report *domain.Report) error
}
