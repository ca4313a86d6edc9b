package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/bytedance/sonic"
)

// Format selects a report encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown report format %q", s)
	}
}

// Batch is the JSON envelope for a run.
type Batch struct {
	Summary Summary   `json:"summary"`
	Reports []*Report `json:"reports"`
}

// Write renders reports to w.
func Write(w io.Writer, format Format, reports []*Report) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, reports)
	case FormatText, "":
		return writeText(w, reports)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

func writeJSON(w io.Writer, reports []*Report) error {
	if reports == nil {
		reports = []*Report{}
	}
	data, err := sonic.MarshalIndent(Batch{Summary: Summarize(reports), Reports: reports}, "", "  ")
	if err != nil {
		return fmt.Errorf("JSON encoding error: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// writeText prints one defect per line under its source.
func writeText(w io.Writer, reports []*Report) error {
	bw := bufio.NewWriter(w)

	for _, r := range reports {
		switch r.Status() {
		case "error":
			fmt.Fprintf(bw, "%s: error: %s\n", r.Source, r.Error)
		case "clean":
			fmt.Fprintf(bw, "%s: ok\n", r.Source)
		default:
			fmt.Fprintf(bw, "%s:\n", r.Source)
			for _, f := range r.Findings {
				fmt.Fprintf(bw, "  [%s] %s\n", f.Rule, f.Defect)
			}
		}
	}

	s := Summarize(reports)
	fmt.Fprintf(bw, "\n%d %s checked, %d %s, %d %s\n",
		s.Documents, plural(s.Documents, "document", "documents"),
		s.Defects, plural(s.Defects, "defect", "defects"),
		s.Errors, plural(s.Errors, "error", "errors"),
	)

	return bw.Flush()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
