package engine_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gridbridge/internal/bridge"
	"github.com/vk/gridbridge/internal/compat"
	"github.com/vk/gridbridge/internal/ctxlog"
	"github.com/vk/gridbridge/internal/engine"
	"github.com/vk/gridbridge/internal/graph"
	"github.com/vk/gridbridge/internal/testutil"
	"github.com/vk/gridbridge/internal/typesys"
)

func setup(t *testing.T) (*testutil.Fixture, *engine.Engine, context.Context, *testutil.SafeBuffer) {
	t.Helper()
	f := testutil.NewFixture(t)
	f.Converter("RealToText", "Real", "Text")

	f.Node("real", f.Class("const.real", testutil.Out("out", testutil.Static("Real"))))
	f.Node("pr", f.Class("print.real", testutil.In("value", testutil.Static("Real")), testutil.In("refresh", typesys.NoData())))
	f.Node("pt", f.Class("print.text", testutil.In("value", testutil.Static("Text"))))
	f.Node("pb", f.Class("print.bool", testutil.In("value", testutil.Static("Boolean"))))
	f.Node("g", f.Class("generic.sink", testutil.In("value", testutil.Gen("T", "Real", "Integer", "Text"))))
	f.Node("s", f.Class("shape", testutil.Out("out", testutil.Gen("T", "Real", "Point2D"))), map[string]typesys.TypeID{"T": "Point2D"})
	f.Node("d", f.Class("draw", testutil.In("p", testutil.Static("Point2D"))))

	logs := &testutil.SafeBuffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := ctxlog.WithLogger(context.Background(), logger)
	return f, engine.New(f.Graph, f.Catalog, engine.WithWorkers(4)), ctx, logs
}

func TestEngine_Queries(t *testing.T) {
	f, e, ctx, logs := setup(t)
	defer testutil.LogTestOutput(t, logs)

	v := e.AnalyzeConnection(ctx, f.Port("real.out"), f.Port("g.value"), false)
	assert.Equal(t, compat.NeedsSpecialization, v.Kind)
	assert.Equal(t, f.Port("g.value"), v.Port)
	assert.Equal(t, typesys.TypeID("Real"), v.Type)
	assert.Contains(t, logs.String(), "Connection needs specialization.")

	v = e.AnalyzeConnection(ctx, f.Port("real.out"), f.Port("pt.value"), false)
	assert.Equal(t, compat.NeedsBridging, v.Kind)

	sols := e.SolveBridging(ctx, compat.Connect(f.Port("real.out"), f.Port("pt.value")), true)
	require.Len(t, sols, 1)
	assert.Equal(t, bridge.TypeConvert, sols[0].Kind)
	assert.Contains(t, logs.String(), "solutions=1")

	p, err := e.Plan(ctx, compat.Connect(f.Port("real.out"), f.Port("pt.value")), sols[0])
	require.NoError(t, err)
	require.NotNil(t, p.Converter)
	assert.Equal(t, typesys.ConverterID("RealToText"), p.Converter.ID)

	assert.True(t, e.IsRevertible(f.Port("s.out")))
	assert.True(t, e.CanRevertNondestructively(f.Port("s.out"), graph.NoCable))
	assert.Equal(t, []graph.PortID{f.Port("s.out")}, e.SimulateRevert(f.Port("s.out"), graph.NoCable).Ports)
	assert.Equal(t, []graph.PortID{f.Port("s.out")}, e.Network(f.Port("s.out")))

	ids, kind := e.NetworkCompatibleTypes(f.Port("s.out"))
	assert.Equal(t, []typesys.TypeID{"Point2D", "Real"}, ids)
	assert.Equal(t, typesys.CompatWhitelist, kind)

	assert.Same(t, f.Graph, e.Graph())
	assert.Same(t, f.Catalog, e.Catalog())
}

func TestEngine_Eligibility(t *testing.T) {
	f, e, ctx, logs := setup(t)
	defer testutil.LogTestOutput(t, logs)

	source := f.Port("real.out")
	candidates := e.Candidates(source)
	assert.NotContains(t, candidates, source)
	assert.Contains(t, candidates, f.Port("pr.value"))
	assert.NotContains(t, candidates, f.Port("s.out"), "outputs are not candidates for an output")

	got, err := e.Eligibility(ctx, source, candidates)
	require.NoError(t, err)
	require.Len(t, got, len(candidates))

	byPort := make(map[graph.PortID]engine.Eligibility, len(got))
	for i, el := range got {
		assert.Equal(t, candidates[i], el.Port, "results keep candidate order")
		byPort[el.Port] = el
	}

	testCases := []struct {
		port string
		want engine.Reach
	}{
		{port: "pr.value", want: engine.Direct},
		{port: "pr.refresh", want: engine.Direct},
		{port: "g.value", want: engine.Specialize},
		{port: "pt.value", want: engine.Bridgeable},
		{port: "pb.value", want: engine.Impossible},
		{port: "d.p", want: engine.Impossible},
	}
	for _, tc := range testCases {
		t.Run(tc.port, func(t *testing.T) {
			assert.Equal(t, tc.want, byPort[f.Port(tc.port)].Reach, "reach %s", byPort[f.Port(tc.port)].Reach)
		})
	}
}

func TestEngine_EligibilityFromInput(t *testing.T) {
	f, e, ctx, _ := setup(t)

	got, err := e.Eligibility(ctx, f.Port("pt.value"), []graph.PortID{f.Port("real.out"), f.Port("pr.value")})
	require.NoError(t, err)
	assert.Equal(t, engine.Bridgeable, got[0].Reach)
	assert.Equal(t, engine.Impossible, got[1].Reach, "two inputs")
}

func TestEngine_EligibilityCancelled(t *testing.T) {
	f, e, ctx, _ := setup(t)
	ctx, cancel := context.WithCancel(ctx)
	cancel()

	_, err := e.Eligibility(ctx, f.Port("real.out"), e.Candidates(f.Port("real.out")))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReach_String(t *testing.T) {
	assert.Equal(t, "bridgeable", engine.Bridgeable.String())
	assert.Equal(t, "Reach(9)", engine.Reach(9).String())
}
