package scenario

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vango-dev/sprout/pkg/host/memhost"
)

// MountStep names the first entry of every trace.
const MountStep = "mount"

// Trace is the recorded outcome of a replay.
type Trace struct {
	Scenario string      `json:"scenario"`
	Steps    []StepTrace `json:"steps"`
}

// StepTrace holds the host operations of one flush.
type StepTrace struct {
	Name     string   `json:"name"`
	Ops      []string `json:"ops"`
	HTML     string   `json:"html"`
	Moves    int      `json:"moves"`
	Inserts  int      `json:"inserts"`
	Removes  int      `json:"removes"`
	Failures []string `json:"failures,omitempty"`
}

func newStepTrace(name string, ops []memhost.Op, html string) StepTrace {
	st := StepTrace{Name: name, Ops: make([]string, len(ops)), HTML: html}
	for i, op := range ops {
		st.Ops[i] = op.String()
		switch op.Kind {
		case memhost.OpMove:
			st.Moves++
		case memhost.OpInsert:
			st.Inserts++
		case memhost.OpRemove:
			st.Removes++
		}
	}
	return st
}

func (st *StepTrace) check(e *Expect) {
	if e == nil {
		return
	}
	count := func(what string, want *int, got int) {
		if want != nil && *want != got {
			st.Failures = append(st.Failures, fmt.Sprintf("%s: want %d, got %d", what, *want, got))
		}
	}
	count("moves", e.Moves, st.Moves)
	count("inserts", e.Inserts, st.Inserts)
	count("removes", e.Removes, st.Removes)
	if e.HTML != "" && e.HTML != st.HTML {
		st.Failures = append(st.Failures, fmt.Sprintf("html: want %s, got %s", e.HTML, st.HTML))
	}
}

// Failed reports whether any step missed its expectations.
func (t *Trace) Failed() bool {
	for _, s := range t.Steps {
		if len(s.Failures) > 0 {
			return true
		}
	}
	return false
}

// Moves sums the move operations of all steps.
func (t *Trace) Moves() int {
	n := 0
	for _, s := range t.Steps {
		n += s.Moves
	}
	return n
}

// Text renders the trace one op per line, the format of golden files.
func (t *Trace) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario %s\n", t.Scenario)
	for _, s := range t.Steps {
		fmt.Fprintf(&b, "\n== %s (moves=%d inserts=%d removes=%d)\n", s.Name, s.Moves, s.Inserts, s.Removes)
		for _, op := range s.Ops {
			b.WriteString(op)
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "-> %s\n", s.HTML)
		for _, f := range s.Failures {
			fmt.Fprintf(&b, "!! %s\n", f)
		}
	}
	return b.String()
}

// JSON encodes the trace with indentation.
func (t *Trace) JSON() ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// DecodeTrace parses a trace produced by JSON.
func DecodeTrace(data []byte) (*Trace, error) {
	var t Trace
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}
