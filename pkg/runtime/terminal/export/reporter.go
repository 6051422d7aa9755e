package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/spend-watch/pkg/models/domain"
)

type TableConfig struct {
	NameWidth     int
	AmountWidth   int
	QuantityWidth int
	ShareWidth    int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		NameWidth:     40,
		AmountWidth:   16,
		QuantityWidth: 16,
		ShareWidth:    8,
	}
}

type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

func (c *Reporter) Handle(report *domain.Report) error {
	funcMap := template.FuncMap{
		"formatRow": func(name, amount, quantity, share string) string {
			return fmt.Sprintf("| %-*s | %*s | %*s | %*s |",
				c.config.NameWidth, truncate(name, c.config.NameWidth),
				c.config.AmountWidth, amount,
				c.config.QuantityWidth, quantity,
				c.config.ShareWidth, share)
		},
		"formatDetail": func(d domain.ReportDetail) string {
			return fmt.Sprintf("| %-*s | %*.2f | %*.2f | %*.1f%% |",
				c.config.NameWidth, truncate(displayName(d.Name), c.config.NameWidth),
				c.config.AmountWidth, d.Amount,
				c.config.QuantityWidth, d.Quantity,
				c.config.ShareWidth-1, d.Share*100)
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+%s+%s+",
				strings.Repeat("-", c.config.NameWidth+2),
				strings.Repeat("-", c.config.AmountWidth+2),
				strings.Repeat("-", c.config.QuantityWidth+2),
				strings.Repeat("-", c.config.ShareWidth+2))
		},
	}

	tmpl := `
{{.Title}} ({{.Period.Days}} days)

Period: {{.Period.Start.Format "2006-01-02"}} to {{.Period.End.Format "2006-01-02"}} (end exclusive)
Total Amount: {{.Currency}} {{printf "%.2f" .TotalAmount}}
Total Quantity: {{printf "%.2f" .TotalQuantity}}
Threshold: {{.Currency}} {{printf "%.2f" .Threshold}}

{{range .Sections}}
=== {{.Title}} ===
{{range $key, $value := .Summary}}{{$key}}: {{$value}}
{{end}}
{{separator}}
{{formatRow "Service" "Amount" "Quantity" "Share"}}
{{separator}}
{{range .Details}}{{formatDetail .}}
{{end}}{{separator}}
{{end}}
`

	t, err := template.New("report").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, report)
}

func displayName(name string) string {
	if name == "" {
		return "(unlabelled)"
	}
	return name
}

func truncate(s string, width int) string {
	if len(s) <= width {
		return s
	}
	return s[:width-3] + "..."
}
