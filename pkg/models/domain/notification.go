package domain

type AlertKind string

const (
	AlertKindThreshold AlertKind = "threshold"
	AlertKindStatus    AlertKind = "status"
)

// Alert is a formatted message fanned out to notification channels.
type Alert struct {
	Kind      AlertKind
	Title     string
	Message   string
	Totals    UsageTotals
	Threshold float64
	Currency  string
	Priority  int // used by push channels, 0 means the channel default
}

// NotificationOutcome is the result of one delivery attempt.
type NotificationOutcome struct {
	Channel string `json:"channel"`
	OK      bool   `json:"ok"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
}

// RunResult summarizes one pipeline execution.
type RunResult struct {
	Period      BillingPeriod
	Totals      UsageTotals
	Breakdown   *ServiceBreakdown
	Exceeded    bool
	Status      []NotificationOutcome
	StatusOK    bool
	Alert       []NotificationOutcome
	AlertOK     bool
	HeartbeatOK bool
}
