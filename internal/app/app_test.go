package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gridbridge/internal/graph"
	"github.com/vk/gridbridge/internal/testutil"
)

const modulesHCL = `
type "Real" {
  value = number
}

type "Integer" {
  value = number
}

type "Text" {
  value = string
}

converter "RealToText" {
  from = "Real"
  to   = "Text"
}

node_class "const.real" {
  output "value" {
    type = Real
  }
}

node_class "math.pass" {
  input "in" {
    type = generic(T, [Real, Integer])
  }
  output "out" {
    type = generic(T, [Real, Integer])
  }
}

node_class "print.text" {
  input "value" {
    type = Text
  }
}

node_class "print.real" {
  input "value" {
    type = Real
  }
}
`

const graphHCL = `
node "src" {
  class = "const.real"
}

node "pass" {
  class = "math.pass"
}

node "print" {
  class = "print.text"
}

node "fixed" {
  class      = "math.pass"
  specialize = { T = "Real" }
}

node "show" {
  class = "print.real"
}

cable "shown" {
  from = "fixed.out"
  to   = "show.value"
}
`

// setupApp writes the fixture files and loads them at debug level.
func setupApp(t *testing.T) (*App, *testutil.SafeBuffer) {
	t.Helper()
	root := testutil.WriteFiles(t, map[string]string{
		"modules/core.hcl": modulesHCL,
		"graph.hcl":        graphHCL,
	})
	cfg, err := NewConfig(Config{
		ModulesPath: filepath.Join(root, "modules"),
		GraphPath:   filepath.Join(root, "graph.hcl"),
		LogLevel:    "debug",
		Workers:     2,
	})
	require.NoError(t, err)

	logs := &testutil.SafeBuffer{}
	a, err := New(context.Background(), logs, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { testutil.LogTestOutput(t, logs) })
	return a, logs
}

func TestNew(t *testing.T) {
	a, logs := setupApp(t)
	assert.Equal(t, []string{"const.real", "math.pass", "print.real", "print.text"}, a.Module().ClassNames())
	assert.Equal(t, []string{"shown"}, a.Composition().CableNames())
	assert.Same(t, a.Composition().Graph, a.Engine().Graph())
	assert.Contains(t, logs.String(), "Modules loaded.")
	assert.Contains(t, logs.String(), "Graph loaded.")
}

func TestNew_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		files   map[string]string
		errText string
	}{
		{
			name:    "bad module",
			files:   map[string]string{"modules/core.hcl": `node_class "x" {`, "graph.hcl": graphHCL},
			errText: "failed to load modules",
		},
		{
			name:    "bad graph",
			files:   map[string]string{"modules/core.hcl": modulesHCL, "graph.hcl": `node "a" { class = "nope" }`},
			errText: "failed to load graph",
		},
		{
			name:    "missing graph",
			files:   map[string]string{"modules/core.hcl": modulesHCL},
			errText: "failed to resolve graph path",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			root := testutil.WriteFiles(t, tc.files)
			cfg, err := NewConfig(Config{
				ModulesPath: filepath.Join(root, "modules"),
				GraphPath:   filepath.Join(root, "graph.hcl"),
			})
			require.NoError(t, err)

			_, err = New(context.Background(), &testutil.SafeBuffer{}, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errText)
		})
	}
}

func TestApp_Analyze(t *testing.T) {
	a, _ := setupApp(t)
	ctx := context.Background()

	testCases := []struct {
		name string
		req  Request
		want *VerdictReport
	}{
		{
			name: "specialization",
			req:  Request{From: "src.value", To: "pass.in"},
			want: &VerdictReport{From: "src.value", To: "pass.in", Verdict: "needs-specialization", Port: "pass.in", Type: "Real"},
		},
		{
			name: "bridging",
			req:  Request{From: "pass.out", To: "print.value"},
			want: &VerdictReport{From: "pass.out", To: "print.value", Verdict: "needs-bridging"},
		},
		{
			name: "same type",
			req:  Request{From: "src.value", To: "show.value"},
			want: &VerdictReport{From: "src.value", To: "show.value", Verdict: "direct"},
		},
		{
			name: "forced event only",
			req:  Request{From: "src.value", To: "print.value", EventOnly: true},
			want: &VerdictReport{From: "src.value", To: "print.value", Verdict: "direct"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := a.Analyze(ctx, tc.req)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestApp_AnalyzeErrors(t *testing.T) {
	a, _ := setupApp(t)
	ctx := context.Background()

	_, err := a.Analyze(ctx, Request{From: "nope.value", To: "pass.in"})
	assert.ErrorIs(t, err, graph.ErrUnknownNode)
	_, err = a.Analyze(ctx, Request{From: "src.value", To: "pass.nope"})
	assert.ErrorIs(t, err, graph.ErrUnknownPort)
	_, err = a.Analyze(ctx, Request{From: "src.value", To: "pass.in", Replacing: "ghost"})
	assert.ErrorIs(t, err, graph.ErrUnknownCable)
}

func TestApp_Bridge(t *testing.T) {
	a, logs := setupApp(t)

	got, err := a.Bridge(context.Background(), Request{From: "pass.out", To: "print.value", DragTo: true})
	require.NoError(t, err)
	assert.Equal(t, &BridgeReport{
		From:    "pass.out",
		To:      "print.value",
		Verdict: "needs-bridging",
		Solutions: []SolutionReport{{
			Kind:            "specialize-and-convert",
			Summary:         "specialize-and-convert pass.out=Real via RealToText (Real -> Text)",
			Specializations: []SpecializationReport{{Port: "pass.out", Type: "Real"}},
			Converter:       "RealToText",
			Plan: &PlanReport{
				Replacements: []ReplacementReport{{Node: "pass", From: "math.pass", To: "math.pass.Real"}},
			},
		}},
	}, got)
	assert.Contains(t, logs.String(), "Bridging solved.")

	text := got.Text()
	assert.Contains(t, text, "1. specialize-and-convert pass.out=Real")
	assert.Contains(t, text, "pass: math.pass -> math.pass.Real")
}

func TestApp_BridgeDirect(t *testing.T) {
	a, _ := setupApp(t)

	got, err := a.Bridge(context.Background(), Request{From: "src.value", To: "show.value"})
	require.NoError(t, err)
	require.Len(t, got.Solutions, 1)
	assert.Equal(t, "direct", got.Solutions[0].Kind)
	assert.Nil(t, got.Solutions[0].Plan)
}

func TestApp_Network(t *testing.T) {
	a, _ := setupApp(t)

	got, err := a.Network(context.Background(), "pass.in")
	require.NoError(t, err)
	assert.Equal(t, &NetworkReport{
		Port:          "pass.in",
		Members:       []string{"pass.in", "pass.out"},
		Compatibility: "whitelist",
		Types:         []string{"Integer", "Real"},
	}, got)
	assert.Equal(t, "pass.in\n  members: pass.in, pass.out\n  whitelist: Integer, Real\n", got.Text())

	got, err = a.Network(context.Background(), "print.value")
	require.NoError(t, err)
	assert.Equal(t, []string{"print.value"}, got.Members)
	assert.Equal(t, []string{"Text"}, got.Types)
}

func TestApp_Revert(t *testing.T) {
	a, _ := setupApp(t)
	ctx := context.Background()

	testCases := []struct {
		name      string
		port      string
		replacing string
		want      *RevertReport
	}{
		{
			name: "breaks a cable",
			port: "fixed.out",
			want: &RevertReport{
				Port:          "fixed.out",
				Revertible:    true,
				Ports:         []string{"fixed.in", "fixed.out"},
				InvalidCables: []string{"shown"},
			},
		},
		{
			name:      "breaks only the replaced cable",
			port:      "fixed.in",
			replacing: "shown",
			want: &RevertReport{
				Port:           "fixed.in",
				Revertible:     true,
				Nondestructive: true,
				Ports:          []string{"fixed.in", "fixed.out"},
				InvalidCables:  []string{"shown"},
			},
		},
		{
			name: "generic port",
			port: "pass.in",
			want: &RevertReport{Port: "pass.in"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := a.Revert(ctx, tc.port, tc.replacing)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := a.Revert(ctx, "fixed.out", "ghost")
	assert.ErrorIs(t, err, graph.ErrUnknownCable)
}

func TestApp_Eligible(t *testing.T) {
	a, logs := setupApp(t)

	got, err := a.Eligible(context.Background(), "src.value")
	require.NoError(t, err)
	assert.Equal(t, &EligibilityReport{
		Source: "src.value",
		Candidates: []CandidateReport{
			{Port: "pass.in", Reach: "specialize", Solutions: 1},
			{Port: "print.value", Reach: "bridgeable", Solutions: 1},
			{Port: "fixed.in", Reach: "direct", Solutions: 1},
			{Port: "show.value", Reach: "direct", Solutions: 1},
		},
	}, got)
	assert.Contains(t, logs.String(), "Eligibility scan finished.")
}

func TestBundledManifests(t *testing.T) {
	cfg, err := NewConfig(Config{
		ModulesPath: filepath.Join("..", "..", "modules"),
		GraphPath:   filepath.Join("..", "..", "graphs", "demo.hcl"),
	})
	require.NoError(t, err)
	a, err := New(context.Background(), &testutil.SafeBuffer{}, cfg)
	require.NoError(t, err)

	assert.Contains(t, a.Module().ClassNames(), "list.length")
	got, err := a.Bridge(context.Background(), Request{From: "double.product", To: "show.value", DragTo: true})
	require.NoError(t, err)
	require.NotEmpty(t, got.Solutions)
	assert.Equal(t, "convert", got.Solutions[0].Kind)
	assert.Equal(t, "RealToText", got.Solutions[0].Converter)
}
