package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rshade/arffkit/internal/arff"
	"github.com/rshade/arffkit/internal/config"
	"github.com/rshade/arffkit/internal/selection"
)

// attributeInfo is one row of the inspect report.
type attributeInfo struct {
	Index    int      `json:"index"`
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Values   int      `json:"values,omitempty"`
	Missing  int      `json:"missing"`
	Class    bool     `json:"class,omitempty"`
	InfoGain *float64 `json:"info_gain,omitempty"`
}

// inspectReport describes a single dataset.
type inspectReport struct {
	File       string          `json:"file"`
	Relation   string          `json:"relation"`
	Instances  int             `json:"instances"`
	Class      string          `json:"class"`
	Attributes []attributeInfo `json:"attributes"`
	// SubsetMerit is the CFS merit of all non-class attributes together.
	SubsetMerit *float64 `json:"subset_merit,omitempty"`
	Note        string   `json:"note,omitempty"`
}

// NewInspectCmd creates the inspect command, which prints the schema of one ARFF file
// together with the information gain of every attribute.
func NewInspectCmd() *cobra.Command {
	var (
		class  string
		output string
	)

	cmd := &cobra.Command{
		Use:     "inspect <file>",
		Short:   "Show attributes and information gain of an ARFF file",
		Example: `  arffkit inspect data/sample.arff --class label`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromContext(cmd.Context())
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			if class == "" {
				class = cfg.Selection.Class
			}
			if output == "" {
				output = cfg.Output.DefaultFormat
			}

			report, err := buildInspectReport(cmd, args[0], class)
			if err != nil {
				return err
			}
			return renderInspect(cmd.OutOrStdout(), report, output, cfg.Output.Precision)
		},
	}

	cmd.Flags().StringVar(&class, "class", "", `class attribute: "last", "first" or a name`)
	cmd.Flags().StringVar(&output, "output", "", "output format: table or json")

	return cmd
}

func buildInspectReport(cmd *cobra.Command, path, class string) (*inspectReport, error) {
	d, err := arff.Load(path)
	if err != nil {
		return nil, err
	}
	if err = d.SetClass(class); err != nil {
		return nil, err
	}

	report := &inspectReport{
		File:      path,
		Relation:  d.Relation,
		Instances: d.NumRows(),
		Class:     d.ClassAttribute().Name,
	}
	for i, a := range d.Attributes {
		missing := 0
		for _, v := range d.Column(i) {
			if arff.IsMissing(v) {
				missing++
			}
		}
		report.Attributes = append(report.Attributes, attributeInfo{
			Index:   i,
			Name:    a.Name,
			Type:    a.Type.String(),
			Values:  a.NumValues(),
			Missing: missing,
			Class:   i == d.ClassIndex,
		})
	}

	ranked, err := selection.InfoGain(cmd.Context(), d, class)
	if err != nil {
		report.Note = "information gain unavailable: " + err.Error()
		return report, nil
	}
	names := make([]string, 0, len(ranked))
	for _, r := range ranked {
		merit := r.Merit
		report.Attributes[r.Index].InfoGain = &merit
		names = append(names, r.Name)
	}
	if merit, meritErr := selection.SubsetMerit(d, class, names); meritErr == nil {
		report.SubsetMerit = &merit
	}
	return report, nil
}

func renderInspect(w io.Writer, r *inspectReport, format string, precision int) error {
	if format == config.FormatJSON {
		return writeJSON(w, r)
	}

	var b strings.Builder
	b.WriteString(printer.Sprintf("Relation: %s  |  Instances: %d  |  Attributes: %d  |  Class: %s\n",
		r.Relation, r.Instances, len(r.Attributes), r.Class))

	t := newTable(w, "#", "NAME", "TYPE", "VALUES", "MISSING", "INFO GAIN")
	for _, a := range r.Attributes {
		values := ""
		if a.Values > 0 {
			values = printer.Sprintf("%d", a.Values)
		}
		gain := ""
		switch {
		case a.Class:
			gain = "(class)"
		case a.InfoGain != nil:
			gain = formatDecimal(*a.InfoGain, precision)
		}
		t.Row(strconv.Itoa(a.Index+1), a.Name, a.Type, values, printer.Sprintf("%d", a.Missing), gain)
	}
	b.WriteString(t.Render())
	b.WriteString("\n")

	if r.SubsetMerit != nil {
		b.WriteString("CFS merit of all attributes: " + formatDecimal(*r.SubsetMerit, precision) + "\n")
	}
	if r.Note != "" {
		b.WriteString(r.Note + "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}
