// Package popup runs the suggestion popup state machine against a Host.
package popup

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"formsuggest/internal/extract"
	"formsuggest/internal/field"
	"formsuggest/internal/logging"
	"formsuggest/internal/question"
	"formsuggest/internal/suggest"
)

// DefaultOffsetPx is the gap between the field's bottom edge and the popup.
const DefaultOffsetPx = 5

// Suggester produces answers and generated questions.
type Suggester interface {
	Suggest(ctx context.Context, in suggest.InputContext) suggest.Result
	question.Generator
}

// Settings is the persisted state read on every trigger.
type Settings interface {
	MainContent(ctx context.Context) (string, error)
	SuggestionsEnabled(ctx context.Context) (bool, error)
}

// Controller owns the current Session. Safe for concurrent use.
type Controller struct {
	mu        sync.Mutex
	host      Host
	suggester Suggester
	settings  Settings
	extractor *extract.Extractor
	hint      string
	offset    float64
	session   *Session
	wg        sync.WaitGroup
}

// Option configures a Controller.
type Option func(*Controller)

// WithExtractor overrides page content extraction.
func WithExtractor(e *extract.Extractor) Option {
	return func(c *Controller) { c.extractor = e }
}

// WithShortcutHint sets the footer hint, e.g. "Alt+Shift+S".
func WithShortcutHint(hint string) Option {
	return func(c *Controller) { c.hint = hint }
}

// WithOffset sets the vertical gap below the field.
func WithOffset(px float64) Option {
	return func(c *Controller) { c.offset = px }
}

// NewController creates a controller with a fresh Session. settings may be
// nil, in which case main content is empty and suggestions are enabled.
func NewController(host Host, suggester Suggester, settings Settings, opts ...Option) *Controller {
	c := &Controller{
		host:      host,
		suggester: suggester,
		settings:  settings,
		extractor: extract.NewExtractor(extract.Options{}),
		offset:    DefaultOffsetPx,
		session:   newSession(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start wires host events to the controller, then scans the document and
// watches every eligible field.
func (c *Controller) Start(ctx context.Context) error {
	c.host.OnTrigger(func(t Trigger) { c.HandleTrigger(ctx, t) })
	c.host.OnAction(func(a Action) { c.HandleAction(ctx, a) })
	c.host.OnDynamicNodesAdded(func(fields []field.Field) { c.OnDynamicNodesAdded(ctx, fields) })
	c.host.OnNavigate(c.Reset)

	fields, err := c.host.Scan(ctx)
	if err != nil {
		return fmt.Errorf("scan fields: %w", err)
	}
	eligible := filterEligible(fields)
	logging.Popup("Session %s: %d of %d fields eligible", c.Session().ID, len(eligible), len(fields))
	if err := c.host.Watch(ctx, eligible); err != nil {
		return fmt.Errorf("watch fields: %w", err)
	}
	return nil
}

// OnDynamicNodesAdded watches fields inserted after the initial scan.
func (c *Controller) OnDynamicNodesAdded(ctx context.Context, fields []field.Field) {
	eligible := filterEligible(fields)
	if len(eligible) == 0 {
		return
	}
	logging.PopupDebug("Watching %d late fields", len(eligible))
	if err := c.host.Watch(ctx, eligible); err != nil {
		logging.PopupError("Failed to watch late fields: %v", err)
	}
}

// Session returns the current session.
func (c *Controller) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Current returns the open popup's view.
func (c *Controller) Current() (View, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session.popup == nil {
		return View{State: StateClosed}, false
	}
	return c.viewLocked(c.session.popup), true
}

// Reset discards the session, including any open popup and dismissed fields.
// Hosts call it on main-frame navigation.
func (c *Controller) Reset() {
	c.mu.Lock()
	old := c.session
	c.session = newSession()
	c.mu.Unlock()

	if old.popup != nil {
		if err := c.host.Remove(context.Background(), old.popup.id); err != nil {
			logging.PopupDebug("Remove on reset: %v", err)
		}
	}
	logging.Popup("Session %s replaced by %s", old.ID, c.Session().ID)
}

// Wait blocks until every in-flight suggestion goroutine has returned.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// HandleTrigger opens or updates the popup for t.Field. It reports whether a
// new suggestion request was started.
func (c *Controller) HandleTrigger(ctx context.Context, t Trigger) bool {
	f := t.Field
	if !f.Eligible() {
		return false
	}

	sess := c.Session()
	if sess.Registry.IsDisabled(f) {
		logging.PopupDebug("Trigger on disabled field %s ignored", f.Identifier())
		return false
	}
	if t.Source != SourceShortcut && !c.suggestionsEnabled(ctx) {
		return false
	}
	if t.Source != SourceClick {
		sess.Registry.SetActive(f)
	}

	c.mu.Lock()
	if c.session != sess {
		c.mu.Unlock()
		return false
	}
	if cur := sess.popup; cur != nil {
		if t.Source == SourceClick || cur.field.SameNode(f) {
			c.mu.Unlock()
			return false
		}
		logging.PopupDebug("Popup %s superseded by %s trigger", cur.id, t.Source)
	}
	inst := newInstance(f)
	sess.popup = inst
	err := c.host.Render(ctx, c.viewLocked(inst))
	if err != nil {
		sess.popup = nil
	}
	c.mu.Unlock()

	if err != nil {
		logging.PopupError("Failed to render loading popup: %v", err)
		return false
	}

	logging.Popup("Popup %s opened (%s) for %s", inst.id, t.Source, f.Identifier())
	c.wg.Add(1)
	go c.run(ctx, sess, inst)
	return true
}

// HandleAction applies a user action to the open popup. It reports whether
// the action had an effect.
func (c *Controller) HandleAction(ctx context.Context, a Action) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess := c.session
	inst := sess.popup
	if inst == nil || (a.PopupID != "" && a.PopupID != inst.id) {
		return false
	}

	switch a.Kind {
	case ActionAccept:
		if inst.state != StateReady || inst.result.Failed() {
			return false
		}
		if err := c.host.Fill(ctx, inst.field, inst.result.AnswerText); err != nil {
			logging.PopupError("Failed to fill %s: %v", inst.field.Identifier(), err)
			return false
		}
		logging.Popup("Popup %s accepted", inst.id)
	case ActionClose:
		sess.Registry.Disable(inst.field)
		logging.Popup("Popup %s closed, field %s disabled", inst.id, inst.field.Identifier())
	case ActionEscape, ActionClickOutside:
		logging.PopupDebug("Popup %s dismissed (%s)", inst.id, a.Kind)
	default:
		return false
	}

	sess.popup = nil
	if err := c.host.Remove(ctx, inst.id); err != nil {
		logging.PopupError("Failed to remove popup %s: %v", inst.id, err)
	}
	return true
}

func (c *Controller) run(ctx context.Context, sess *Session, inst *instance) {
	defer c.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			c.fail(ctx, sess, inst, fmt.Errorf("panic: %v", r))
		}
	}()

	in, err := c.gather(ctx, inst.field)
	if err != nil {
		c.fail(ctx, sess, inst, err)
		return
	}

	c.mu.Lock()
	if sess.popup == inst {
		inst.question = in.Question
	}
	c.mu.Unlock()

	res := c.suggester.Suggest(ctx, in)
	c.finish(ctx, sess, inst, res)
}

func (c *Controller) gather(ctx context.Context, f field.Field) (suggest.InputContext, error) {
	current, err := c.host.Refresh(ctx, f)
	if err != nil {
		return suggest.InputContext{}, fmt.Errorf("refresh field: %w", err)
	}

	in := suggest.BuildInput(ctx, current, c.host, c.extractor, c.suggester, "")
	if c.settings != nil {
		main, err := c.settings.MainContent(ctx)
		if err != nil {
			logging.PopupDebug("Main content unavailable: %v", err)
		}
		in.MainContent = main
	}
	return in, nil
}

func (c *Controller) finish(ctx context.Context, sess *Session, inst *instance, res suggest.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != sess || sess.popup != inst {
		logging.PopupDebug("Discarding late result for popup %s", inst.id)
		return
	}
	inst.state = StateReady
	inst.result = res
	if err := c.host.Render(ctx, c.viewLocked(inst)); err != nil {
		logging.PopupError("Failed to render popup %s: %v", inst.id, err)
	}
}

func (c *Controller) fail(ctx context.Context, sess *Session, inst *instance, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != sess || sess.popup != inst {
		return
	}
	logging.PopupError("Popup %s failed: %v", inst.id, err)
	inst.state = StateError
	inst.message = ErrorMessage(err)
	if rerr := c.host.Render(ctx, c.viewLocked(inst)); rerr != nil {
		logging.PopupError("Failed to render error for popup %s: %v", inst.id, errors.Join(err, rerr))
	}
}

func (c *Controller) suggestionsEnabled(ctx context.Context) bool {
	if c.settings == nil {
		return true
	}
	enabled, err := c.settings.SuggestionsEnabled(ctx)
	if err != nil {
		logging.PopupDebug("suggestionsEnabled unavailable, assuming on: %v", err)
		return true
	}
	return enabled
}

func (c *Controller) viewLocked(inst *instance) View {
	v := View{
		PopupID:      inst.id,
		State:        inst.state,
		FieldRef:     inst.field.Ref,
		TypeLabel:    TypeLabel(inst.field.EffectiveType()),
		Question:     inst.question,
		ShortcutHint: c.hint,
		Position: Position{
			Left: inst.field.Rect.Left,
			Top:  inst.field.Rect.Bottom() + c.offset,
		},
	}
	switch inst.state {
	case StateReady:
		res := inst.result
		v.Result = &res
		v.AcceptEnabled = !res.Failed()
	case StateError:
		v.Message = inst.message
	}
	return v
}

func filterEligible(fields []field.Field) []field.Field {
	out := make([]field.Field, 0, len(fields))
	for _, f := range fields {
		if f.Eligible() {
			out = append(out, f)
		}
	}
	return out
}
