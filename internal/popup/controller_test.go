package popup

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"formsuggest/internal/field"
	"formsuggest/internal/store"
	"formsuggest/internal/suggest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const (
	timeout = 2 * time.Second
	tick    = 5 * time.Millisecond
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fill struct {
	ref   string
	value string
}

type fakeHost struct {
	mu         sync.Mutex
	fields     []field.Field
	values     map[string]string
	labels     map[string]string
	body       string
	refreshErr error
	fillErr    error

	renders []View
	removed []string
	fills   []fill
	watched [][]field.Field

	onTrigger func(Trigger)
	onAction  func(Action)
	onNodes   func([]field.Field)
	onNav     func()
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		values: map[string]string{},
		labels: map[string]string{"email": "Work email", "bio": "About you"},
		body:   "Acme Corp careers. Apply below.",
	}
}

func (h *fakeHost) OnTrigger(fn func(Trigger))                 { h.onTrigger = fn }
func (h *fakeHost) OnAction(fn func(Action))                   { h.onAction = fn }
func (h *fakeHost) OnDynamicNodesAdded(fn func([]field.Field)) { h.onNodes = fn }
func (h *fakeHost) OnNavigate(fn func())                       { h.onNav = fn }

func (h *fakeHost) Scan(context.Context) ([]field.Field, error) { return h.fields, nil }

func (h *fakeHost) Watch(_ context.Context, fields []field.Field) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.watched = append(h.watched, fields)
	return nil
}

func (h *fakeHost) Render(_ context.Context, v View) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.renders = append(h.renders, v)
	return nil
}

func (h *fakeHost) Remove(_ context.Context, id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removed = append(h.removed, id)
	return nil
}

func (h *fakeHost) Fill(_ context.Context, f field.Field, value string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.fillErr != nil {
		return h.fillErr
	}
	h.fills = append(h.fills, fill{f.Ref, value})
	h.values[f.Ref] = value
	return nil
}

func (h *fakeHost) Refresh(_ context.Context, f field.Field) (field.Field, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.refreshErr != nil {
		return field.Field{}, h.refreshErr
	}
	if v, ok := h.values[f.Ref]; ok {
		f.Value = v
	}
	return f, nil
}

func (h *fakeHost) TextOf(context.Context, string) (string, error) { return "", nil }
func (h *fakeHost) VisibleBodyText(context.Context) (string, error) {
	return h.body, nil
}
func (h *fakeHost) LabelFor(_ context.Context, id string) (string, error) {
	return h.labels[id], nil
}

func (h *fakeHost) lastRender() View {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.renders) == 0 {
		return View{}
	}
	return h.renders[len(h.renders)-1]
}

func (h *fakeHost) renderCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.renders)
}

type fakeSuggester struct {
	mu    sync.Mutex
	calls []suggest.InputContext
	fn    func(in suggest.InputContext) suggest.Result
}

func (s *fakeSuggester) Suggest(_ context.Context, in suggest.InputContext) suggest.Result {
	s.mu.Lock()
	s.calls = append(s.calls, in)
	fn := s.fn
	s.mu.Unlock()
	if fn == nil {
		return suggest.Result{AnswerText: "jane@acme.test", Confidence: 88, Explanation: "From main content"}
	}
	return fn(in)
}

func (s *fakeSuggester) GenerateQuestion(_ context.Context, purpose, _ string) string {
	return "What is your " + purpose + "?"
}

func (s *fakeSuggester) lastCall() suggest.InputContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[len(s.calls)-1]
}

func emailField() field.Field {
	return field.Field{
		Ref: "f1", Tag: "input", ID: "email", Name: "email", Type: "email",
		Rect: field.Rect{Left: 40, Top: 100, Width: 200, Height: 24}, Visible: true,
	}
}

func bioField() field.Field {
	return field.Field{
		Ref: "f2", Tag: "textarea", ID: "bio", Name: "bio",
		Rect: field.Rect{Left: 40, Top: 200, Width: 400, Height: 80}, Visible: true,
	}
}

type fixture struct {
	host      *fakeHost
	suggester *fakeSuggester
	settings  *store.Settings
	ctrl      *Controller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		host:      newFakeHost(),
		suggester: &fakeSuggester{},
		settings:  store.NewSettings(store.NewMemoryStore()),
	}
	require.NoError(t, f.settings.SetMainContent(context.Background(), "Jane Doe, jane@acme.test"))
	f.ctrl = NewController(f.host, f.suggester, f.settings, WithShortcutHint("Alt+Shift+S"))
	t.Cleanup(f.ctrl.Wait)
	return f
}

func TestTrigger_LoadingThenReady(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	gate := make(chan struct{})
	fx.suggester.fn = func(suggest.InputContext) suggest.Result {
		<-gate
		return suggest.Result{AnswerText: "jane@acme.test", Confidence: 88, Explanation: "From main content"}
	}

	require.True(t, fx.ctrl.HandleTrigger(ctx, Trigger{Source: SourceFocus, Field: emailField()}))

	loading := fx.host.lastRender()
	assert.Equal(t, StateLoading, loading.State)
	assert.Equal(t, "Email Field", loading.TypeLabel)
	assert.Equal(t, Position{Left: 40, Top: 129}, loading.Position)
	assert.Equal(t, "Alt+Shift+S", loading.ShortcutHint)
	assert.Equal(t, "f1", loading.FieldRef)
	assert.Nil(t, loading.Result)
	assert.False(t, loading.AcceptEnabled)

	close(gate)
	fx.ctrl.Wait()

	ready := fx.host.lastRender()
	assert.Equal(t, StateReady, ready.State)
	assert.Equal(t, loading.PopupID, ready.PopupID)
	assert.Equal(t, "Work email", ready.Question)
	require.NotNil(t, ready.Result)
	assert.Equal(t, "jane@acme.test", ready.Result.AnswerText)
	assert.True(t, ready.AcceptEnabled)

	cur, open := fx.ctrl.Current()
	assert.True(t, open)
	assert.Equal(t, ready, cur)
}

func TestTrigger_AssemblesInputContext(t *testing.T) {
	fx := newFixture(t)
	fx.host.values["f1"] = "jane@"

	require.True(t, fx.ctrl.HandleTrigger(context.Background(), Trigger{Source: SourceShortcut, Field: emailField()}))
	fx.ctrl.Wait()

	in := fx.suggester.lastCall()
	assert.Equal(t, suggest.InputContext{
		Question:     "Work email",
		Purpose:      "email address",
		Confidence:   "high",
		Type:         "email",
		CurrentValue: "jane@",
		PageExcerpt:  "Acme Corp careers. Apply below.",
		MainContent:  "Jane Doe, jane@acme.test",
	}, in)
}

func TestTrigger_GeneratedQuestion(t *testing.T) {
	fx := newFixture(t)
	f := field.Field{Ref: "f9", Tag: "input", Type: "tel", Visible: true}

	require.True(t, fx.ctrl.HandleTrigger(context.Background(), Trigger{Source: SourceFocus, Field: f}))
	fx.ctrl.Wait()
	assert.Equal(t, "What is your phone number?", fx.host.lastRender().Question)
	assert.Equal(t, "Tel Field", fx.host.lastRender().TypeLabel)
}

func TestTrigger_ClickWhileOpenIsNoop(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	require.True(t, fx.ctrl.HandleTrigger(ctx, Trigger{Source: SourceClick, Field: emailField()}))
	fx.ctrl.Wait()
	n := fx.host.renderCount()

	assert.False(t, fx.ctrl.HandleTrigger(ctx, Trigger{Source: SourceClick, Field: emailField()}))
	assert.False(t, fx.ctrl.HandleTrigger(ctx, Trigger{Source: SourceClick, Field: bioField()}))
	assert.Equal(t, n, fx.host.renderCount())
	assert.Len(t, fx.suggester.calls, 1)
}

func TestTrigger_SameFieldFocusIsNoop(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	gate := make(chan struct{})
	fx.suggester.fn = func(suggest.InputContext) suggest.Result {
		<-gate
		return suggest.Result{AnswerText: "a", Confidence: 1, Explanation: "b"}
	}

	require.True(t, fx.ctrl.HandleTrigger(ctx, Trigger{Source: SourceFocus, Field: emailField()}))
	assert.False(t, fx.ctrl.HandleTrigger(ctx, Trigger{Source: SourceFocus, Field: emailField()}))
	assert.False(t, fx.ctrl.HandleTrigger(ctx, Trigger{Source: SourceShortcut, Field: emailField()}))
	close(gate)
	fx.ctrl.Wait()
	assert.Len(t, fx.suggester.calls, 1)
}

func TestTrigger_FocusElsewhereUpdatesInPlace(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	gates := map[string]chan struct{}{
		"Work email": make(chan struct{}),
		"About you":  make(chan struct{}),
	}
	fx.suggester.fn = func(in suggest.InputContext) suggest.Result {
		<-gates[in.Question]
		return suggest.Result{AnswerText: "answer for " + in.Question, Confidence: 70, Explanation: "x"}
	}

	require.True(t, fx.ctrl.HandleTrigger(ctx, Trigger{Source: SourceFocus, Field: emailField()}))
	first := fx.host.lastRender().PopupID

	require.True(t, fx.ctrl.HandleTrigger(ctx, Trigger{Source: SourceFocus, Field: bioField()}))
	second := fx.host.lastRender()
	assert.NotEqual(t, first, second.PopupID)
	assert.Equal(t, StateLoading, second.State)
	assert.Equal(t, "Textarea Field", second.TypeLabel)
	assert.Empty(t, fx.host.removed, "node is reused, not removed")

	close(gates["About you"])
	require.Eventually(t, func() bool { return fx.host.lastRender().State == StateReady }, timeout, tick)
	n := fx.host.renderCount()

	close(gates["Work email"])
	fx.ctrl.Wait()
	assert.Equal(t, n, fx.host.renderCount(), "stale result must not render")

	cur, _ := fx.ctrl.Current()
	assert.Equal(t, second.PopupID, cur.PopupID)
	assert.Equal(t, "answer for About you", cur.Result.AnswerText)
}

func TestLateResultAfterCloseIsDiscarded(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	gate := make(chan struct{})
	fx.suggester.fn = func(suggest.InputContext) suggest.Result {
		<-gate
		return suggest.Result{AnswerText: "late", Confidence: 1, Explanation: "x"}
	}

	require.True(t, fx.ctrl.HandleTrigger(ctx, Trigger{Source: SourceFocus, Field: emailField()}))
	id := fx.host.lastRender().PopupID
	require.True(t, fx.ctrl.HandleAction(ctx, Action{Kind: ActionEscape}))
	n := fx.host.renderCount()

	close(gate)
	fx.ctrl.Wait()
	assert.Equal(t, n, fx.host.renderCount())
	assert.Equal(t, []string{id}, fx.host.removed)
	_, open := fx.ctrl.Current()
	assert.False(t, open)
}

func TestAccept_FillsAndCloses(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	require.True(t, fx.ctrl.HandleTrigger(ctx, Trigger{Source: SourceFocus, Field: emailField()}))
	fx.ctrl.Wait()
	id := fx.host.lastRender().PopupID

	assert.False(t, fx.ctrl.HandleAction(ctx, Action{Kind: ActionAccept, PopupID: "someone-else"}))
	require.True(t, fx.ctrl.HandleAction(ctx, Action{Kind: ActionAccept, PopupID: id}))

	assert.Equal(t, []fill{{"f1", "jane@acme.test"}}, fx.host.fills)
	assert.Equal(t, []string{id}, fx.host.removed)
	_, open := fx.ctrl.Current()
	assert.False(t, open)
	assert.False(t, fx.ctrl.Session().Registry.IsDisabled(emailField()))

	assert.False(t, fx.ctrl.HandleAction(ctx, Action{Kind: ActionAccept}), "nothing open")
}

func TestAccept_OnlyWhenReady(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	gate := make(chan struct{})
	fx.suggester.fn = func(suggest.InputContext) suggest.Result {
		<-gate
		return suggest.Fallback("Failed to generate a valid response: timeout")
	}

	require.True(t, fx.ctrl.HandleTrigger(ctx, Trigger{Source: SourceFocus, Field: emailField()}))
	assert.False(t, fx.ctrl.HandleAction(ctx, Action{Kind: ActionAccept}), "loading")

	close(gate)
	fx.ctrl.Wait()
	v := fx.host.lastRender()
	assert.Equal(t, StateReady, v.State)
	assert.False(t, v.AcceptEnabled)
	assert.False(t, fx.ctrl.HandleAction(ctx, Action{Kind: ActionAccept}), "failed result")
	assert.Empty(t, fx.host.fills)
}

func TestAccept_FillFailureKeepsPopup(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	fx.host.fillErr = errors.New("node detached")

	require.True(t, fx.ctrl.HandleTrigger(ctx, Trigger{Source: SourceFocus, Field: emailField()}))
	fx.ctrl.Wait()
	assert.False(t, fx.ctrl.HandleAction(ctx, Action{Kind: ActionAccept}))
	_, open := fx.ctrl.Current()
	assert.True(t, open)
}

func TestClose_DisablesFieldUntilEnabled(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	require.True(t, fx.ctrl.HandleTrigger(ctx, Trigger{Source: SourceFocus, Field: emailField()}))
	fx.ctrl.Wait()
	require.True(t, fx.ctrl.HandleAction(ctx, Action{Kind: ActionClose}))

	reg := fx.ctrl.Session().Registry
	assert.True(t, reg.IsDisabled(emailField()))
	for _, src := range []Source{SourceFocus, SourceClick, SourceShortcut} {
		assert.False(t, fx.ctrl.HandleTrigger(ctx, Trigger{Source: src, Field: emailField()}), src.String())
	}

	reg.Enable(emailField())
	assert.True(t, fx.ctrl.HandleTrigger(ctx, Trigger{Source: SourceFocus, Field: emailField()}))
}

func TestEscapeAndClickOutside_DoNotDisable(t *testing.T) {
	for _, kind := range []ActionKind{ActionEscape, ActionClickOutside} {
		t.Run(kind.String(), func(t *testing.T) {
			fx := newFixture(t)
			ctx := context.Background()

			require.True(t, fx.ctrl.HandleTrigger(ctx, Trigger{Source: SourceFocus, Field: emailField()}))
			fx.ctrl.Wait()
			require.True(t, fx.ctrl.HandleAction(ctx, Action{Kind: kind}))
			assert.False(t, fx.ctrl.Session().Registry.IsDisabled(emailField()))
			assert.False(t, fx.ctrl.HandleAction(ctx, Action{Kind: kind}), "already closed")

			assert.True(t, fx.ctrl.HandleTrigger(ctx, Trigger{Source: SourceClick, Field: emailField()}))
		})
	}
}

func TestSuggestionsDisabled_GatesFocusAndClickOnly(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	require.NoError(t, fx.settings.SetSuggestionsEnabled(ctx, false))

	assert.False(t, fx.ctrl.HandleTrigger(ctx, Trigger{Source: SourceFocus, Field: emailField()}))
	assert.False(t, fx.ctrl.HandleTrigger(ctx, Trigger{Source: SourceClick, Field: emailField()}))
	assert.Zero(t, fx.host.renderCount())

	assert.True(t, fx.ctrl.HandleTrigger(ctx, Trigger{Source: SourceShortcut, Field: emailField()}))
}

func TestTrigger_IneligibleFields(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	hidden := emailField()
	hidden.Type = "hidden"
	invisible := emailField()
	invisible.Visible = false
	disabled := emailField()
	disabled.Disabled = true
	inPopup := emailField()
	inPopup.InPopup = true
	sel := emailField()
	sel.Tag = "select"

	for _, f := range []field.Field{hidden, invisible, disabled, inPopup, sel} {
		assert.False(t, fx.ctrl.HandleTrigger(ctx, Trigger{Source: SourceShortcut, Field: f}))
	}
	assert.Zero(t, fx.host.renderCount())
}

func TestRefreshFailure_RendersError(t *testing.T) {
	fx := newFixture(t)
	fx.host.refreshErr = errors.New("node detached")

	require.True(t, fx.ctrl.HandleTrigger(context.Background(), Trigger{Source: SourceFocus, Field: emailField()}))
	fx.ctrl.Wait()

	v := fx.host.lastRender()
	assert.Equal(t, StateError, v.State)
	assert.False(t, v.AcceptEnabled)
	assert.Equal(t, "Failed to generate suggestion: refresh field: node detached", v.Message)
	assert.Empty(t, fx.suggester.calls)
}

func TestPanic_RendersError(t *testing.T) {
	fx := newFixture(t)
	fx.suggester.fn = func(suggest.InputContext) suggest.Result { panic("kaboom") }

	require.True(t, fx.ctrl.HandleTrigger(context.Background(), Trigger{Source: SourceFocus, Field: emailField()}))
	fx.ctrl.Wait()

	v := fx.host.lastRender()
	assert.Equal(t, StateError, v.State)
	assert.True(t, strings.HasSuffix(v.Message, "panic: kaboom"))
	assert.False(t, fx.ctrl.HandleAction(context.Background(), Action{Kind: ActionAccept}))
}

type brokenSettings struct{}

func (brokenSettings) MainContent(context.Context) (string, error) {
	return "", errors.New("context invalidated")
}
func (brokenSettings) SuggestionsEnabled(context.Context) (bool, error) {
	return false, errors.New("context invalidated")
}

func TestSettingsFailure_DegradesQuietly(t *testing.T) {
	host := newFakeHost()
	sug := &fakeSuggester{}
	ctrl := NewController(host, sug, brokenSettings{})

	require.True(t, ctrl.HandleTrigger(context.Background(), Trigger{Source: SourceClick, Field: emailField()}))
	ctrl.Wait()
	assert.Equal(t, "", sug.lastCall().MainContent)
	assert.Equal(t, StateReady, host.lastRender().State)
}

func TestStart_ScansWatchesAndWiresEvents(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	hidden := field.Field{Ref: "h", Tag: "input", Type: "hidden", Visible: true}
	fx.host.fields = []field.Field{emailField(), hidden, bioField()}

	require.NoError(t, fx.ctrl.Start(ctx))
	require.Len(t, fx.host.watched, 1)
	assert.Equal(t, []field.Field{emailField(), bioField()}, fx.host.watched[0])

	late := field.Field{Ref: "f3", Tag: "input", Name: "company", Visible: true}
	fx.host.onNodes([]field.Field{hidden, late})
	require.Len(t, fx.host.watched, 2)
	assert.Equal(t, []field.Field{late}, fx.host.watched[1])

	fx.host.onNodes([]field.Field{hidden})
	assert.Len(t, fx.host.watched, 2, "nothing eligible, nothing watched")

	fx.host.onTrigger(Trigger{Source: SourceFocus, Field: late})
	fx.ctrl.Wait()
	assert.Equal(t, StateReady, fx.host.lastRender().State)
	assert.Equal(t, "Text Field", fx.host.lastRender().TypeLabel)

	fx.host.onAction(Action{Kind: ActionEscape})
	_, open := fx.ctrl.Current()
	assert.False(t, open)
}

func TestReset_NewSessionDiscardsState(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	require.NoError(t, fx.ctrl.Start(ctx))

	gate := make(chan struct{})
	fx.suggester.fn = func(suggest.InputContext) suggest.Result {
		<-gate
		return suggest.Result{AnswerText: "x", Confidence: 1, Explanation: "y"}
	}

	fx.ctrl.Session().Registry.Disable(bioField())
	before := fx.ctrl.Session().ID
	require.True(t, fx.ctrl.HandleTrigger(ctx, Trigger{Source: SourceFocus, Field: emailField()}))
	id := fx.host.lastRender().PopupID

	fx.host.onNav()
	n := fx.host.renderCount()
	close(gate)
	fx.ctrl.Wait()

	assert.NotEqual(t, before, fx.ctrl.Session().ID)
	assert.Equal(t, []string{id}, fx.host.removed)
	assert.Equal(t, n, fx.host.renderCount())
	assert.False(t, fx.ctrl.Session().Registry.IsDisabled(bioField()))
	_, open := fx.ctrl.Current()
	assert.False(t, open)
}

func TestTypeLabel(t *testing.T) {
	assert.Equal(t, "Email Field", TypeLabel("email"))
	assert.Equal(t, "Text Field", TypeLabel(""))
	assert.Equal(t, "Textarea Field", TypeLabel("textarea"))
}
