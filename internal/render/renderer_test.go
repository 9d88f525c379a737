package render

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/fireplot/internal/canvas"
	"github.com/theirongolddev/fireplot/internal/form"
	"github.com/theirongolddev/fireplot/internal/plotclient"
	"github.com/theirongolddev/fireplot/internal/projection"
)

const okBody = `{"months":[0,1,2],"years":[0,0.08,0.17],"principal":[1000,1010,1020],` +
	`"contributions":[1000,1000,1000],"takeHome":[0,0,2500],` +
	`"title":"Projection","xLabel":"Months","yLabel":"Value"}`

type fixture struct {
	renderer  *Renderer
	state     *RenderState
	errs      *canvas.TextDisplay
	financial *canvas.Memory
	principal *canvas.Memory
	takeHome  *canvas.Memory
}

func newFixture(t *testing.T, fetcher Fetcher, variant projection.Variant) *fixture {
	t.Helper()
	f := &fixture{
		state:     NewRenderState(),
		errs:      &canvas.TextDisplay{},
		financial: canvas.NewMemory(SlotFinancial),
		principal: canvas.NewMemory(SlotPrincipal),
		takeHome:  canvas.NewMemory(SlotTakeHome),
	}
	page := NewPage(f.errs, f.financial, f.principal, f.takeHome)
	f.renderer = New(fetcher, page, f.state, variant, nil)
	return f
}

// serve returns a client for a server answering every request with status
// and body. The last query string seen is stored in *query.
func serve(t *testing.T, status int, body string, query *string) *plotclient.Client {
	t.Helper()
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		if query != nil {
			*query = r.URL.RawQuery
		}
		mu.Unlock()
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	c, err := plotclient.NewClient(srv.URL)
	require.NoError(t, err)
	return c
}

func calculatorInput() form.Input {
	return form.New(
		form.Field{Name: "initialCapital", Value: "1000"},
		form.Field{Name: form.AgeField, Value: "35"},
	)
}

func TestHandleSubmit_Single(t *testing.T) {
	var query string
	f := newFixture(t, serve(t, http.StatusOK, okBody, &query), projection.Single)

	require.NoError(t, f.renderer.HandleSubmit(context.Background(), calculatorInput()))

	assert.Equal(t, "initialCapital=1000&currentAge=35", query)
	assert.Empty(t, f.errs.Text())
	assert.True(t, f.financial.Visible())
	assert.Equal(t, 1, f.financial.Live())
	assert.Equal(t, 0, f.principal.Live())
	assert.Equal(t, []string{SlotFinancial}, f.state.LiveSlots())
	assert.Equal(t, Rendered, f.renderer.Phase())

	cfg, ok := f.financial.Current()
	require.True(t, ok)
	assert.Equal(t, []string{"Month 0", "Month 1", "Month 2"}, cfg.Data.Labels)
	require.Len(t, cfg.Data.Datasets, 2)
	assert.Equal(t, []float64{1000, 1010, 1020}, cfg.Data.Datasets[0].Data)
	assert.Equal(t, []float64{1000, 1000, 1000}, cfg.Data.Datasets[1].Data)
	assert.Equal(t, "Age: 35 years, 0 months", cfg.TooltipTitle(0))
	assert.Equal(t, "$1,000", cfg.FormatTick(1000))

	require.NotNil(t, f.renderer.Last())
	assert.Equal(t, 3, f.renderer.Last().Len())
}

func TestHandleSubmit_Idempotent(t *testing.T) {
	f := newFixture(t, serve(t, http.StatusOK, okBody, nil), projection.Single)

	for i := 0; i < 3; i++ {
		require.NoError(t, f.renderer.HandleSubmit(context.Background(), calculatorInput()))
	}
	assert.Equal(t, 1, f.financial.Live(), "previous instances are destroyed before redraw")
	assert.Equal(t, 3, f.financial.Draws())
	assert.Equal(t, 1, f.state.LiveCount())
}

func TestHandleSubmit_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"status with body", http.StatusInternalServerError, "invalid principal", "Error: invalid principal"},
		{"status without body", http.StatusInternalServerError, "", "Error: HTTP error! status: 500"},
		{"empty months", http.StatusOK,
			`{"months":[],"years":[],"principal":[],"contributions":[]}`,
			"Error: " + projection.MsgNoData},
		{"missing contributions", http.StatusOK,
			`{"months":[0],"years":[0],"principal":[1]}`,
			"Error: " + projection.MsgMalformed},
		{"inconsistent lengths", http.StatusOK,
			`{"months":[0,1],"years":[0,0.08],"principal":[1],"contributions":[1,1]}`,
			"Error: " + projection.MsgInconsistent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, serve(t, tt.status, tt.body, nil), projection.Single)

			err := f.renderer.HandleSubmit(context.Background(), calculatorInput())
			require.Error(t, err)
			assert.Equal(t, tt.want, f.errs.Text())
			assert.False(t, f.financial.Visible())
			assert.Equal(t, 0, f.financial.Live())
			assert.Equal(t, 0, f.state.LiveCount())
			assert.Equal(t, ErrorShown, f.renderer.Phase())
		})
	}
}

// switchFetcher answers from a body that can be swapped between cycles.
type switchFetcher struct {
	client *plotclient.Client
	fail   bool
}

func (s *switchFetcher) Fetch(ctx context.Context, query string) (*projection.Response, error) {
	if s.fail {
		return nil, errors.New("connection refused")
	}
	return s.client.Fetch(ctx, query)
}

func TestHandleSubmit_ErrorDestroysPreviousChart(t *testing.T) {
	fetcher := &switchFetcher{client: serve(t, http.StatusOK, okBody, nil)}
	f := newFixture(t, fetcher, projection.Single)

	require.NoError(t, f.renderer.HandleSubmit(context.Background(), calculatorInput()))
	require.Equal(t, 1, f.financial.Live())

	fetcher.fail = true
	require.Error(t, f.renderer.HandleSubmit(context.Background(), calculatorInput()))
	assert.Equal(t, "Error: connection refused", f.errs.Text())
	assert.Equal(t, 0, f.financial.Live())
	assert.False(t, f.financial.Visible())

	fetcher.fail = false
	require.NoError(t, f.renderer.HandleSubmit(context.Background(), calculatorInput()))
	assert.Empty(t, f.errs.Text(), "error text is cleared on the next submit")
	assert.True(t, f.financial.Visible())
	assert.Equal(t, 1, f.financial.Live())
}

func TestHandleSubmit_Dual(t *testing.T) {
	f := newFixture(t, serve(t, http.StatusOK, okBody, nil), projection.Dual)

	require.NoError(t, f.renderer.HandleSubmit(context.Background(), calculatorInput()))
	assert.Equal(t, 1, f.principal.Live())
	assert.Equal(t, 1, f.takeHome.Live())
	assert.Equal(t, 0, f.financial.Live())
	assert.False(t, f.financial.Visible())

	cfg, ok := f.takeHome.Current()
	require.True(t, ok)
	require.Len(t, cfg.Data.Datasets, 1)
	assert.Equal(t, "Monthly Withdrawals + Pensions", cfg.Data.Datasets[0].Label)
	assert.Equal(t, []float64{0, 0, 2500}, cfg.Data.Datasets[0].Data)
	assert.Equal(t, "Month 2", cfg.TooltipTitle(2))
	assert.True(t, cfg.Options.Plugins.Legend.Display)
}

func TestHandleSubmit_DualEmptyTakeHomeToFiles(t *testing.T) {
	body := `{"months":[0,1,2],"years":[0,0.08,0.17],"principal":[1000,1010,1020],` +
		`"contributions":[1000,1000,1000],"takeHome":[],"title":"Projection"}`
	dir := t.TempDir()
	principal, err := canvas.NewFile(SlotPrincipal, filepath.Join(dir, "principal.png"), 300, 150)
	require.NoError(t, err)
	takeHome, err := canvas.NewFile(SlotTakeHome, filepath.Join(dir, "takehome.png"), 300, 150)
	require.NoError(t, err)

	errs := &canvas.TextDisplay{}
	state := NewRenderState()
	r := New(serve(t, http.StatusOK, body, nil), NewPage(errs, principal, takeHome), state, projection.Dual, nil)

	require.NoError(t, r.HandleSubmit(context.Background(), calculatorInput()))
	assert.Empty(t, errs.Text())
	assert.Equal(t, []string{SlotPrincipal, SlotTakeHome}, state.LiveSlots())
	assert.Equal(t, Rendered, r.Phase())

	for _, name := range []string{"principal.png", "takehome.png"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")), "%s is a png", name)
	}
}

func TestHandleSubmit_DualRequiresTakeHome(t *testing.T) {
	body := `{"months":[0],"years":[0],"principal":[1],"contributions":[1]}`
	f := newFixture(t, serve(t, http.StatusOK, body, nil), projection.Dual)

	require.Error(t, f.renderer.HandleSubmit(context.Background(), calculatorInput()))
	assert.Equal(t, "Error: "+projection.MsgMalformed, f.errs.Text())
}

func TestHandleSubmit_DualPartialFailure(t *testing.T) {
	f := newFixture(t, serve(t, http.StatusOK, okBody, nil), projection.Dual)
	f.takeHome.FailNextDraw(errors.New("boom"))

	err := f.renderer.HandleSubmit(context.Background(), calculatorInput())
	var re *RenderError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, SlotTakeHome, re.Slot)

	assert.Equal(t, "Error: rendering takeHomeChart: boom", f.errs.Text())
	assert.Equal(t, 0, f.principal.Live(), "the chart drawn before the failure is destroyed")
	assert.Equal(t, 0, f.takeHome.Live())
	assert.False(t, f.principal.Visible())
	assert.False(t, f.takeHome.Visible())
}

func TestHandleSubmit_VariantSwitch(t *testing.T) {
	f := newFixture(t, serve(t, http.StatusOK, okBody, nil), projection.Single)

	require.NoError(t, f.renderer.HandleSubmit(context.Background(), calculatorInput()))
	require.Equal(t, 1, f.financial.Live())

	f.renderer.SetVariant(projection.Dual)
	assert.Equal(t, projection.Dual, f.renderer.Variant())
	require.NoError(t, f.renderer.HandleSubmit(context.Background(), calculatorInput()))
	assert.Equal(t, 0, f.financial.Live())
	assert.False(t, f.financial.Visible())
	assert.Equal(t, []string{SlotPrincipal, SlotTakeHome}, f.state.LiveSlots())
}

func TestHandleSubmit_MissingCanvas(t *testing.T) {
	errs := &canvas.TextDisplay{}
	page := NewPage(errs)
	r := New(serve(t, http.StatusOK, okBody, nil), page, nil, projection.Single, nil)

	err := r.HandleSubmit(context.Background(), calculatorInput())
	require.ErrorIs(t, err, ErrNoCanvas)
	assert.Equal(t, "Error: rendering financialChart: no canvas for slot: financialChart", errs.Text())
}

// blockingFetcher holds the first call until its context is canceled.
type blockingFetcher struct {
	client  *plotclient.Client
	mu      sync.Mutex
	calls   int
	entered chan struct{}
}

func (b *blockingFetcher) Fetch(ctx context.Context, query string) (*projection.Response, error) {
	b.mu.Lock()
	b.calls++
	first := b.calls == 1
	b.mu.Unlock()

	if first {
		close(b.entered)
		<-ctx.Done()
		return nil, &plotclient.NetworkError{Err: ctx.Err()}
	}
	return b.client.Fetch(ctx, query)
}

func TestHandleSubmit_Superseded(t *testing.T) {
	fetcher := &blockingFetcher{
		client:  serve(t, http.StatusOK, okBody, nil),
		entered: make(chan struct{}),
	}
	f := newFixture(t, fetcher, projection.Single)

	firstErr := make(chan error, 1)
	go func() {
		firstErr <- f.renderer.HandleSubmit(context.Background(), calculatorInput())
	}()

	select {
	case <-fetcher.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("first submit never reached the fetcher")
	}
	assert.Equal(t, InFlight, f.renderer.Phase())

	require.NoError(t, f.renderer.HandleSubmit(context.Background(), calculatorInput()))

	select {
	case err := <-firstErr:
		require.ErrorIs(t, err, ErrSuperseded)
	case <-time.After(5 * time.Second):
		t.Fatal("first submit was not canceled")
	}

	assert.Empty(t, f.errs.Text(), "superseded cycle must not show its error")
	assert.Equal(t, 1, f.financial.Live())
	assert.Equal(t, Rendered, f.renderer.Phase())
}

func TestInit(t *testing.T) {
	f := newFixture(t, serve(t, http.StatusOK, okBody, nil), projection.Single)
	assert.Equal(t, Idle, f.renderer.Phase())

	require.NoError(t, f.renderer.Init(context.Background(), form.Defaults()))
	assert.Equal(t, 1, f.financial.Live())
}

func TestStartAge(t *testing.T) {
	assert.Equal(t, 35.0, startAge(form.New(form.Field{Name: form.AgeField, Value: " 35 "})))
	assert.Equal(t, 0.0, startAge(form.New(form.Field{Name: form.AgeField, Value: "abc"})))
	assert.Equal(t, 0.0, startAge(form.New()))
}

func TestMessage(t *testing.T) {
	assert.Equal(t, projection.MsgNoData, Message(&projection.ValidationError{Msg: projection.MsgNoData}))
	assert.Equal(t, "boom", Message(errors.New("boom")))
	assert.Empty(t, Message(nil))
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "in-flight", InFlight.String())
	assert.Equal(t, "rendered", Rendered.String())
	assert.Equal(t, "error", ErrorShown.String())
}
