package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareReusesCachedKinds(t *testing.T) {
	reg := NewRegistry()
	controller := NewSectionController(newFakeClient(), reg, nil, nil)
	plan, err := controller.Plan(SectionAnalysis)
	require.NoError(t, err)

	state := NewViewState()
	jobs, reused := controller.prepare(plan, state, PlanContext{})
	assert.Len(t, jobs, 3)
	assert.Empty(t, reused)

	state.SetCachedSnapshot(KindStockData, demoStock(110), 1, time.Now())
	jobs, reused = controller.prepare(plan, state, PlanContext{})
	assert.Len(t, jobs, 2)
	assert.Contains(t, reused, KindStockData)
	assert.Greater(t, jobs[1].Seq, jobs[0].Seq)
}

func TestFetchKeepsSuccessfulSiblings(t *testing.T) {
	client := newFakeClient()
	client.fail(KindTradingSignals, errors.New("timeout"))
	controller := NewSectionController(client, nil, nil, nil)

	plan, err := controller.Plan(SectionOverview)
	require.NoError(t, err)
	jobs, _ := controller.prepare(plan, NewViewState(), PlanContext{})

	got, err := controller.fetch(context.Background(), jobs)
	require.Error(t, err)
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, KindTradingSignals, fe.Kind)
	assert.Len(t, got, 2)
}

func TestFetchRejectsMismatchedSnapshot(t *testing.T) {
	client := DataClientFunc(func(context.Context, Request) (Snapshot, error) {
		return demoIndicators(), nil
	})
	controller := NewSectionController(client, nil, nil, nil)
	_, err := controller.fetch(context.Background(), []fetchJob{{Request: Request{Kind: KindStockData}, Seq: 1}})
	require.Error(t, err)
}

func TestPredictionRequirementCarriesDays(t *testing.T) {
	plan, ok := NewRegistry().Plan(SectionPredictions)
	require.True(t, ok)
	req := plan.Requirements[0].request(PlanContext{Days: 12})
	assert.Equal(t, 12, req.Days())
	assert.Equal(t, "predictions?days=12", req.key())
}

func TestRenderSkipsChartsWithoutData(t *testing.T) {
	backend := newFakeBackend()
	view := NewView(DefaultBindings()...)
	charts := NewChartRenderer(backend, view)
	controller := NewSectionController(newFakeClient(), nil, charts, view)

	plan, _ := controller.Plan(SectionOverview)
	results := Results{KindStockData: demoStock(110)}
	require.NoError(t, controller.Render(plan, results, PlanContext{Timeframe: 2}))

	h, ok := charts.Handle(MountMainStockChart)
	require.True(t, ok)
	assert.Len(t, h.Dataset.Labels, 2)
	_, ok = view.Read(BindingRSIValue)
	assert.False(t, ok)
	_, ok = view.Read(BindingCurrentPrice)
	assert.True(t, ok)
}

func TestParseSection(t *testing.T) {
	section, err := ParseSection("Data Tables")
	require.NoError(t, err)
	assert.Equal(t, SectionDataTables, section)
	assert.Equal(t, "Data Tables", section.Title())

	_, err = ParseSection("portfolio")
	assert.ErrorIs(t, err, ErrUnknownSection)
}

func TestRegistryAppliesSectionHooks(t *testing.T) {
	globalHookMu.Lock()
	saved := globalHooks
	globalHooks = nil
	globalHookMu.Unlock()
	t.Cleanup(func() {
		globalHookMu.Lock()
		globalHooks = saved
		globalHookMu.Unlock()
	})

	RegisterSectionHook(func(reg *Registry) error {
		plan, _ := reg.Plan(SectionInsights)
		plan.Charts = nil
		return reg.RegisterPlan(plan)
	})
	reg := NewRegistry()
	plan, ok := reg.Plan(SectionInsights)
	require.True(t, ok)
	assert.Empty(t, plan.Charts)

	owner, ok := reg.Owner(BindingCurrentPrice)
	require.True(t, ok)
	assert.Equal(t, SectionOverview, owner)
}
