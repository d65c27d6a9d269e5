package export

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"text/template"

	"golang.org/x/exp/maps"

	"github.com/fortuna-labs/report-funnel/pkg/models/domain"
)

type TableConfig struct {
	NameWidth  int
	ValueWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		NameWidth:  24,
		ValueWidth: 56,
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

func (c *Reporter) funcMap() template.FuncMap {
	return template.FuncMap{
		"formatRow": func(name string, value interface{}) string {
			return fmt.Sprintf("| %-*s | %-*v |",
				c.config.NameWidth, name,
				c.config.ValueWidth, value)
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+",
				strings.Repeat("-", c.config.NameWidth+2),
				strings.Repeat("-", c.config.ValueWidth+2))
		},
	}
}

func (c *Reporter) Sessions(sessions []*domain.Session) error {
	tmpl := `
Sessions: {{len .}}

{{separator}}
{{formatRow "Token" "Profile"}}
{{separator}}
{{range .}}{{formatRow .AccessToken (printf "%s / %s" .Profile.Name .Profile.Phone)}}
{{end}}{{separator}}
`
	t, err := template.New("sessions").Funcs(c.funcMap()).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	return t.Execute(c.writer, sessions)
}

type reportView struct {
	Token    string
	State    string
	Paid     bool
	Premium  bool
	Elements []scoreRow
	Sections []sectionRow
}

type scoreRow struct {
	Name  string
	Score int
}

type sectionRow struct {
	Key  string
	Text string
}

func (c *Reporter) Report(rep *domain.Report, decision domain.Reveal) error {
	view := reportView{
		Token:   rep.AccessToken,
		State:   string(decision.State),
		Paid:    rep.IsPaid,
		Premium: rep.IsPremiumPaid,
	}

	for _, element := range domain.Elements {
		view.Elements = append(view.Elements, scoreRow{
			Name:  string(element),
			Score: rep.Elements[element],
		})
	}

	keys := maps.Keys(rep.PremiumSections)
	slices.Sort(keys)
	for _, key := range keys {
		view.Sections = append(view.Sections, sectionRow{Key: key, Text: rep.PremiumSections[key]})
	}

	tmpl := `
Report for {{.Token}} (state: {{.State}}, paid: {{.Paid}}, premium: {{.Premium}})

{{separator}}
{{formatRow "Element" "Score"}}
{{separator}}
{{range .Elements}}{{formatRow .Name .Score}}
{{end}}{{separator}}
{{if .Sections}}
{{range .Sections}}=== {{.Key}} ===
{{.Text}}

{{end}}{{end}}`
	t, err := template.New("report").Funcs(c.funcMap()).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	return t.Execute(c.writer, view)
}

func (c *Reporter) Scores(raw []float64, normalized []int) error {
	type row struct {
		Name  string
		Value string
	}
	type view struct {
		Rows []row
		Sum  int
	}

	v := view{}
	for i, element := range domain.Elements {
		v.Rows = append(v.Rows, row{
			Name:  string(element),
			Value: fmt.Sprintf("%.2f -> %d", raw[i], normalized[i]),
		})
		v.Sum += normalized[i]
	}

	tmpl := `
{{separator}}
{{formatRow "Element" "Raw -> Normalized"}}
{{separator}}
{{range .Rows}}{{formatRow .Name .Value}}
{{end}}{{separator}}
Sum: {{.Sum}}
`
	t, err := template.New("scores").Funcs(c.funcMap()).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	return t.Execute(c.writer, v)
}
