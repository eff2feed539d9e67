package optiman

import (
	"encoding/json"
	"fmt"
)

// Wire documents understood by the generated server. One self-contained
// JSON document per transaction; no length prefix, no trailing delimiter.
var (
	pingRequest = []byte(`{"Ping":1}`)
	killRequest = []byte(`{"Kill":1}`)
)

// runParams is the body of a Run request. Field order matches the server's
// expectation: parameters, guess, multipliers, penalty. Optional fields are
// omitted entirely when not supplied.
type runParams struct {
	Parameter                  []float64 `json:"parameter"`
	InitialGuess               []float64 `json:"initial_guess,omitempty"`
	InitialLagrangeMultipliers []float64 `json:"initial_lagrange_multipliers,omitempty"`
	InitialPenalty             *float64  `json:"initial_penalty,omitempty"`
}

type runRequest struct {
	Run runParams `json:"Run"`
}

func encodeRun(p runParams) ([]byte, error) {
	data, err := json.Marshal(runRequest{Run: p})
	if err != nil {
		return nil, fmt.Errorf("encoding run request: %w", err)
	}
	return data, nil
}

// decodeDocument parses a full response payload as a single JSON document.
// truncated marks payloads cut off at the read round cap; those are reported
// explicitly rather than returned partial.
func decodeDocument(data []byte, truncated bool) (map[string]any, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		if truncated {
			return nil, fmt.Errorf("%w: response truncated at the read cap (%d bytes received): %v",
				ErrProtocol, len(data), err)
		}
		return nil, fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	return doc, nil
}

// SolverResponse is the decoded reply to a Run request. Its schema belongs
// to the generated solver; the client guarantees only that the top-level
// document decoded cleanly.
type SolverResponse struct {
	raw map[string]any
}

// Raw returns the decoded top-level document.
func (r *SolverResponse) Raw() map[string]any { return r.raw }

// ExitStatus returns the solver's exit_status field, or "" when absent.
func (r *SolverResponse) ExitStatus() string {
	s, _ := r.raw["exit_status"].(string)
	return s
}

// IsOK reports whether the server produced a solver result rather than an
// error document.
func (r *SolverResponse) IsOK() bool {
	_, ok := r.raw["exit_status"]
	return ok
}

// Solution returns the solution vector, or nil when the response carries
// none.
func (r *SolverResponse) Solution() []float64 {
	vals, ok := r.raw["solution"].([]any)
	if !ok {
		return nil
	}
	sol := make([]float64, 0, len(vals))
	for _, v := range vals {
		f, ok := v.(float64)
		if !ok {
			return nil
		}
		sol = append(sol, f)
	}
	return sol
}
