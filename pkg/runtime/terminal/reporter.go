package terminal

import (
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/de-tools/spend-watch/pkg/models/domain"
)

// Reporter outputs reports to the console as plain lines, one per service
type Reporter struct {
	writer io.Writer
}

// NewReporter creates a new console reporter
func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{writer: writer}
}

func (c *Reporter) Handle(report *domain.Report) error {
	tmpl := `{{.Title}}
Period: {{.Period.Start.Format "2006-01-02"}} to {{.Period.End.Format "2006-01-02"}}
Total Amount: {{.Currency}} {{printf "%.2f" .TotalAmount}}
Total Quantity: {{printf "%.2f" .TotalQuantity}}
{{range .Sections}}{{range .Details}}- {{if .Name}}{{.Name}}{{else}}(unlabelled){{end}}: {{printf "%.2f" .Amount}} ({{printf "%.2f" .Quantity}})
{{end}}{{end}}`

	t, err := template.New("report").Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, report)
}
