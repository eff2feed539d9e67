package optiman

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestEncodeRunOnlyParameters(t *testing.T) {
	data, err := encodeRun(runParams{Parameter: []float64{1, 2.5, -3}})
	require.NoError(t, err)
	require.JSONEq(t, `{"Run":{"parameter":[1,2.5,-3]}}`, string(data))
}

func TestEncodeRunFieldOrder(t *testing.T) {
	penalty := 10.0
	data, err := encodeRun(runParams{
		Parameter:                  []float64{1, 2},
		InitialGuess:               []float64{0.5, 0.5},
		InitialLagrangeMultipliers: []float64{1},
		InitialPenalty:             &penalty,
	})
	require.NoError(t, err)

	// Optional fields appear in the fixed order the server expects.
	want := `{"Run":{"parameter":[1,2],"initial_guess":[0.5,0.5],` +
		`"initial_lagrange_multipliers":[1],"initial_penalty":10}}`
	require.Equal(t, want, string(data))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	params := []float64{1.5, -2.25, 3.125, 1e-9}
	data, err := encodeRun(runParams{Parameter: params})
	require.NoError(t, err)

	var decoded struct {
		Run struct {
			Parameter []float64 `json:"parameter"`
		} `json:"Run"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))

	if diff := cmp.Diff(params, decoded.Run.Parameter); diff != "" {
		t.Fatalf("parameters did not round-trip (-want +got):\n%s", diff)
	}
}

func TestDecodeDocument(t *testing.T) {
	doc, err := decodeDocument([]byte(`{"Ping":200}`), false)
	require.NoError(t, err)
	require.Equal(t, float64(200), doc["Ping"])
}

func TestDecodeDocumentMalformed(t *testing.T) {
	_, err := decodeDocument([]byte(`not json`), false)
	require.ErrorIs(t, err, ErrProtocol)
}

func TestDecodeDocumentTruncated(t *testing.T) {
	_, err := decodeDocument([]byte(`{"exit_status":"Conv`), true)
	require.ErrorIs(t, err, ErrProtocol)
	require.Contains(t, err.Error(), "truncated")
}

func TestSolverResponseAccessors(t *testing.T) {
	resp := &SolverResponse{raw: map[string]any{
		"exit_status": "Converged",
		"solution":    []any{1.0, 2.0, 3.0},
	}}
	require.True(t, resp.IsOK())
	require.Equal(t, "Converged", resp.ExitStatus())
	require.Equal(t, []float64{1, 2, 3}, resp.Solution())
}

func TestSolverResponseErrorDocument(t *testing.T) {
	resp := &SolverResponse{raw: map[string]any{
		"type":    "Error",
		"message": "Invalid request",
	}}
	require.False(t, resp.IsOK())
	require.Empty(t, resp.ExitStatus())
	require.Nil(t, resp.Solution())
}
