package api

import "time"

type TimePeriod struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Duration int       `json:"duration_days"`
}

type UsageTotals struct {
	Amount   float64 `json:"total_computed_amount"`
	Quantity float64 `json:"total_computed_quantity"`
}

type ServiceUsage struct {
	Service  string  `json:"service"`
	Amount   float64 `json:"total_computed_amount"`
	Quantity float64 `json:"total_computed_quantity"`
}

type UsageReport struct {
	Provider  string         `json:"provider"`
	Currency  string         `json:"currency"`
	Period    TimePeriod     `json:"period"`
	Totals    UsageTotals    `json:"totals"`
	Services  []ServiceUsage `json:"services"`
	Threshold float64        `json:"threshold"`
	Exceeded  bool           `json:"exceeded"`
}

type NotificationOutcome struct {
	Channel string `json:"channel"`
	OK      bool   `json:"ok"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
}

type RunResult struct {
	Period      TimePeriod            `json:"period"`
	Totals      UsageTotals           `json:"totals"`
	Services    []ServiceUsage        `json:"services"`
	Exceeded    bool                  `json:"exceeded"`
	Status      []NotificationOutcome `json:"status_notifications"`
	StatusOK    bool                  `json:"status_ok"`
	Alert       []NotificationOutcome `json:"alert_notifications"`
	AlertOK     bool                  `json:"alert_ok"`
	HeartbeatOK bool                  `json:"heartbeat_ok"`
}

type Error struct {
	Error string `json:"error"`
}
