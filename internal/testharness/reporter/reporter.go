// Package reporter formats scenario results.
package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/rdm-protocol/rdm-go/internal/testharness/runner"
)

// slowestCount is the number of scenarios listed by bus time in the text
// summary. Suites with fewer results skip the section.
const slowestCount = 3

// Reporter formats and outputs scenario results.
type Reporter interface {
	// ReportSuite reports results for a set of scenarios.
	ReportSuite(result *runner.SuiteResult)

	// ReportResult reports one scenario.
	ReportResult(result *runner.Result)
}

// New returns the reporter for format: "text", "json" or "junit".
func New(format string, w io.Writer, verbose bool) (Reporter, error) {
	switch strings.ToLower(format) {
	case "", "text":
		return NewTextReporter(w, verbose), nil
	case "json":
		return NewJSONReporter(w, verbose), nil
	case "junit":
		return NewJUnitReporter(w), nil
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
}

func status(r *runner.Result) string {
	if r.Passed {
		return "PASS"
	}
	return "FAIL"
}

// TextReporter outputs human-readable text reports.
type TextReporter struct {
	writer  io.Writer
	verbose bool
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(w io.Writer, verbose bool) *TextReporter {
	return &TextReporter{
		writer:  w,
		verbose: verbose,
	}
}

// ReportSuite reports suite results in text format.
func (r *TextReporter) ReportSuite(result *runner.SuiteResult) {
	fmt.Fprintf(r.writer, "\n=== Suite: %s ===\n", result.SuiteName)
	fmt.Fprintf(r.writer, "Duration: %s\n\n", result.Duration.Round(time.Millisecond))

	for _, res := range result.Results {
		r.ReportResult(res)
	}

	fmt.Fprintf(r.writer, "\n--- Summary ---\n")
	fmt.Fprintf(r.writer, "Total:   %d\n", len(result.Results))
	fmt.Fprintf(r.writer, "Passed:  %d\n", result.PassCount)
	fmt.Fprintf(r.writer, "Failed:  %d\n", result.FailCount)
	if total := len(result.Results); total > 0 {
		fmt.Fprintf(r.writer, "Pass Rate: %.1f%%\n", float64(result.PassCount)/float64(total)*100)
	}

	if len(result.Results) > slowestCount {
		slowest := append([]*runner.Result(nil), result.Results...)
		sort.SliceStable(slowest, func(i, j int) bool { return slowest[i].BusTime > slowest[j].BusTime })
		fmt.Fprintf(r.writer, "\nLongest on the bus:\n")
		for _, res := range slowest[:slowestCount] {
			fmt.Fprintf(r.writer, "  %-16s %s\n", res.Scenario.ID, res.BusTime.Round(time.Microsecond))
		}
	}
}

// ReportResult reports a single scenario in text format.
func (r *TextReporter) ReportResult(result *runner.Result) {
	sc := result.Scenario
	fmt.Fprintf(r.writer, "[%s] %s - %s (bus %s, %d ticks)\n",
		status(result), sc.ID, sc.Name, result.BusTime.Round(time.Microsecond), result.Ticks)

	if result.Error != nil {
		fmt.Fprintf(r.writer, "       Error: %v\n", result.Error)
	}
	for _, f := range result.Failures {
		fmt.Fprintf(r.writer, "       %s\n", f)
	}

	if r.verbose {
		st := result.Stats
		fmt.Fprintf(r.writer, "       TOD (%d): %s\n", len(result.TOD), joinUIDs(result))
		fmt.Fprintf(r.writer, "       branches=%d valid=%d collisions=%d no_response=%d late=%d mutes=%d mute_failures=%d removed=%d max_depth=%d\n",
			st.Branches, st.Valid, st.Collisions, st.NoResponses, st.LateResponses,
			st.MutesSent, st.MuteFailures, st.Removed, st.MaxStackDepth)
	}
}

func joinUIDs(result *runner.Result) string {
	parts := make([]string, len(result.TOD))
	for i, u := range result.TOD {
		parts[i] = u.String()
	}
	return strings.Join(parts, " ")
}

// JSONReporter outputs JSON-formatted reports.
type JSONReporter struct {
	writer io.Writer
	pretty bool
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(w io.Writer, pretty bool) *JSONReporter {
	return &JSONReporter{
		writer: w,
		pretty: pretty,
	}
}

// JSONSuiteResult is the JSON representation of suite results.
type JSONSuiteResult struct {
	SuiteName string       `json:"suite_name"`
	Duration  string       `json:"duration"`
	Total     int          `json:"total"`
	Passed    int          `json:"passed"`
	Failed    int          `json:"failed"`
	PassRate  float64      `json:"pass_rate"`
	Results   []JSONResult `json:"results"`
}

// JSONResult is the JSON representation of a scenario result.
type JSONResult struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Status   string        `json:"status"`
	Ticks    int           `json:"ticks"`
	BusTime  string        `json:"bus_time"`
	Error    string        `json:"error,omitempty"`
	Failures []JSONFailure `json:"failures,omitempty"`
	TOD      []string      `json:"tod"`
	Stats    JSONStats     `json:"stats"`
}

// JSONFailure is the JSON representation of an unmet expectation.
type JSONFailure struct {
	Check    string `json:"check"`
	Expected any    `json:"expected"`
	Actual   any    `json:"actual"`
}

// JSONStats mirrors discovery.Stats.
type JSONStats struct {
	Branches      int `json:"branches"`
	Valid         int `json:"valid"`
	Collisions    int `json:"collisions"`
	NoResponses   int `json:"no_responses"`
	LateResponses int `json:"late_responses"`
	MutesSent     int `json:"mutes_sent"`
	MuteFailures  int `json:"mute_failures"`
	Added         int `json:"added"`
	Removed       int `json:"removed"`
	MaxStackDepth int `json:"max_stack_depth"`
}

// ReportSuite reports suite results in JSON format.
func (r *JSONReporter) ReportSuite(result *runner.SuiteResult) {
	var passRate float64
	if total := len(result.Results); total > 0 {
		passRate = float64(result.PassCount) / float64(total) * 100
	}

	jr := JSONSuiteResult{
		SuiteName: result.SuiteName,
		Duration:  result.Duration.Round(time.Millisecond).String(),
		Total:     len(result.Results),
		Passed:    result.PassCount,
		Failed:    result.FailCount,
		PassRate:  passRate,
		Results:   make([]JSONResult, 0, len(result.Results)),
	}
	for _, res := range result.Results {
		jr.Results = append(jr.Results, toJSON(res))
	}
	r.writeJSON(jr)
}

// ReportResult reports a single scenario in JSON format.
func (r *JSONReporter) ReportResult(result *runner.Result) {
	r.writeJSON(toJSON(result))
}

func toJSON(result *runner.Result) JSONResult {
	st := result.Stats
	jr := JSONResult{
		ID:      result.Scenario.ID,
		Name:    result.Scenario.Name,
		Status:  strings.ToLower(status(result)),
		Ticks:   result.Ticks,
		BusTime: result.BusTime.String(),
		TOD:     make([]string, len(result.TOD)),
		Stats: JSONStats{
			Branches:      st.Branches,
			Valid:         st.Valid,
			Collisions:    st.Collisions,
			NoResponses:   st.NoResponses,
			LateResponses: st.LateResponses,
			MutesSent:     st.MutesSent,
			MuteFailures:  st.MuteFailures,
			Added:         st.Added,
			Removed:       st.Removed,
			MaxStackDepth: st.MaxStackDepth,
		},
	}
	for i, u := range result.TOD {
		jr.TOD[i] = u.String()
	}
	if result.Error != nil {
		jr.Error = result.Error.Error()
	}
	for _, f := range result.Failures {
		jr.Failures = append(jr.Failures, JSONFailure{Check: f.Check, Expected: f.Expected, Actual: f.Actual})
	}
	return jr
}

func (r *JSONReporter) writeJSON(v any) {
	var data []byte
	var err error

	if r.pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		fmt.Fprintf(r.writer, `{"error": "failed to marshal: %s"}`, err)
		return
	}

	fmt.Fprintln(r.writer, string(data))
}

// JUnitReporter outputs JUnit XML format for CI integration.
type JUnitReporter struct {
	writer io.Writer
}

// NewJUnitReporter creates a new JUnit reporter.
func NewJUnitReporter(w io.Writer) *JUnitReporter {
	return &JUnitReporter{writer: w}
}

// ReportSuite reports suite results in JUnit XML format.
func (r *JUnitReporter) ReportSuite(result *runner.SuiteResult) {
	var b strings.Builder

	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	b.WriteString("\n")
	fmt.Fprintf(&b, `<testsuite name="%s" tests="%d" failures="%d" time="%.3f">`,
		escapeXML(result.SuiteName),
		len(result.Results),
		result.FailCount,
		result.Duration.Seconds())
	b.WriteString("\n")

	for _, res := range result.Results {
		sc := res.Scenario
		fmt.Fprintf(&b, `  <testcase name="%s" classname="%s" time="%.3f">`,
			escapeXML(sc.Name),
			escapeXML(sc.ID),
			res.BusTime.Seconds())
		b.WriteString("\n")

		if !res.Passed {
			msg := "expectations not met"
			if res.Error != nil {
				msg = res.Error.Error()
			}
			fmt.Fprintf(&b, `    <failure message="%s">`, escapeXML(msg))
			b.WriteString("\n      <![CDATA[")
			for _, f := range res.Failures {
				b.WriteString(f.String())
				b.WriteString("\n")
			}
			b.WriteString("]]>\n")
			b.WriteString("    </failure>\n")
		}

		b.WriteString("  </testcase>\n")
	}

	b.WriteString("</testsuite>\n")
	fmt.Fprint(r.writer, b.String())
}

// ReportResult reports a single scenario in JUnit format.
func (r *JUnitReporter) ReportResult(result *runner.Result) {
	suite := &runner.SuiteResult{
		SuiteName: result.Scenario.ID,
		Results:   []*runner.Result{result},
		Duration:  result.Duration,
	}
	if result.Passed {
		suite.PassCount = 1
	} else {
		suite.FailCount = 1
	}
	r.ReportSuite(suite)
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
