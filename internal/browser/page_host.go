package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"formsuggest/internal/config"
	"formsuggest/internal/field"
	"formsuggest/internal/logging"
	"formsuggest/internal/popup"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"golang.org/x/sync/errgroup"
)

// ErrFieldGone means the element behind a field ref left the document.
var ErrFieldGone = errors.New("field no longer in document")

// PageHost adapts one Chrome page to popup.Host.
type PageHost struct {
	ID string

	page *rod.Page
	opts Options

	mu         sync.RWMutex
	onTrigger  func(popup.Trigger)
	onAction   func(popup.Action)
	onNodes    func([]field.Field)
	onNavigate func()
	removeHook func() error
}

var _ popup.Host = (*PageHost)(nil)

func newPageHost(id string, page *rod.Page, opts Options) *PageHost {
	return &PageHost{ID: id, page: page, opts: opts}
}

func hookSource(sc config.ShortcutConfig) (string, error) {
	raw, err := json.Marshal(map[string]interface{}{
		"key":   sc.Key,
		"ctrl":  sc.Ctrl,
		"alt":   sc.Alt,
		"shift": sc.Shift,
		"meta":  sc.Meta,
	})
	if err != nil {
		return "", fmt.Errorf("encode shortcut: %w", err)
	}
	return fmt.Sprintf(hookScript, raw), nil
}

// install registers the hook for future documents and runs it on the
// current one.
func (h *PageHost) install(ctx context.Context) error {
	fn, err := hookSource(h.opts.Shortcut)
	if err != nil {
		return err
	}
	remove, err := h.page.EvalOnNewDocument("(" + fn + ")();")
	if err != nil {
		return fmt.Errorf("install page hook: %w", err)
	}
	h.mu.Lock()
	h.removeHook = remove
	h.mu.Unlock()

	if err := h.eval(ctx, fn, nil); err != nil {
		return fmt.Errorf("run page hook: %w", err)
	}
	return nil
}

func (h *PageHost) close() {
	h.mu.Lock()
	remove := h.removeHook
	h.removeHook = nil
	h.mu.Unlock()
	if remove != nil {
		_ = remove()
	}
	_ = h.page.Close()
}

// Navigate loads url in the page.
func (h *PageHost) Navigate(ctx context.Context, url string) error {
	nav := h.page.Context(ctx).Timeout(h.opts.navigationTimeout())
	if err := nav.Navigate(url); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nav.WaitLoad()
}

// Run drains the page event buffer and watches main-frame navigation until
// ctx is done.
func (h *PageHost) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	waitNav := h.page.Context(gctx).EachEvent(func(ev *proto.PageFrameNavigated) {
		if ev.Frame == nil || ev.Frame.ParentID != "" {
			return
		}
		logging.Browser("Main frame navigated to %s", ev.Frame.URL)
		h.mu.RLock()
		fn := h.onNavigate
		h.mu.RUnlock()
		if fn != nil {
			fn()
		}
	})
	g.Go(func() error {
		waitNav()
		return nil
	})
	g.Go(func() error {
		return h.poll(gctx)
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (h *PageHost) poll(ctx context.Context) error {
	ticker := time.NewTicker(h.opts.pollInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			var events []pageEvent
			if err := h.eval(ctx, drainScript, &events); err != nil {
				// Expected briefly during navigation.
				logging.BrowserDebug("drain events: %v", err)
				continue
			}
			h.dispatch(events)
		}
	}
}

func (h *PageHost) dispatch(events []pageEvent) {
	h.mu.RLock()
	onTrigger, onAction, onNodes := h.onTrigger, h.onAction, h.onNodes
	h.mu.RUnlock()

	for _, ev := range events {
		switch ev.Type {
		case "trigger":
			src, ok := parseSource(ev.Source)
			if !ok || ev.Field == nil || onTrigger == nil {
				continue
			}
			onTrigger(popup.Trigger{Source: src, Field: ev.Field.toField()})
		case "action":
			kind, ok := parseAction(ev.Action)
			if !ok || onAction == nil {
				continue
			}
			onAction(popup.Action{Kind: kind, PopupID: ev.PopupID})
		case "nodes":
			if onNodes != nil && len(ev.Fields) > 0 {
				onNodes(toFields(ev.Fields))
			}
		default:
			logging.BrowserDebug("unknown page event %q", ev.Type)
		}
	}
}

func (h *PageHost) OnTrigger(fn func(popup.Trigger)) {
	h.mu.Lock()
	h.onTrigger = fn
	h.mu.Unlock()
}

func (h *PageHost) OnAction(fn func(popup.Action)) {
	h.mu.Lock()
	h.onAction = fn
	h.mu.Unlock()
}

func (h *PageHost) OnDynamicNodesAdded(fn func([]field.Field)) {
	h.mu.Lock()
	h.onNodes = fn
	h.mu.Unlock()
}

func (h *PageHost) OnNavigate(fn func()) {
	h.mu.Lock()
	h.onNavigate = fn
	h.mu.Unlock()
}

func (h *PageHost) Scan(ctx context.Context) ([]field.Field, error) {
	var raw []rawField
	if err := h.eval(ctx, scanScript, &raw); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	return toFields(raw), nil
}

func (h *PageHost) Watch(ctx context.Context, fields []field.Field) error {
	refs := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.Ref != "" {
			refs = append(refs, f.Ref)
		}
	}
	var n int
	if err := h.eval(ctx, watchScript, &n, refs); err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	logging.BrowserDebug("Watching %d of %d fields", n, len(refs))
	return nil
}

func (h *PageHost) Render(ctx context.Context, view popup.View) error {
	if err := h.eval(ctx, renderScript, nil, view); err != nil {
		return fmt.Errorf("render popup: %w", err)
	}
	return nil
}

func (h *PageHost) Remove(ctx context.Context, popupID string) error {
	if err := h.eval(ctx, removeScript, nil, popupID); err != nil {
		return fmt.Errorf("remove popup: %w", err)
	}
	return nil
}

func (h *PageHost) Fill(ctx context.Context, f field.Field, value string) error {
	var ok bool
	if err := h.eval(ctx, fillScript, &ok, f.Ref, value); err != nil {
		return fmt.Errorf("fill: %w", err)
	}
	if !ok {
		return ErrFieldGone
	}
	return nil
}

func (h *PageHost) Refresh(ctx context.Context, f field.Field) (field.Field, error) {
	var raw *rawField
	if err := h.eval(ctx, refreshScript, &raw, f.Ref); err != nil {
		return field.Field{}, fmt.Errorf("refresh: %w", err)
	}
	if raw == nil {
		return field.Field{}, ErrFieldGone
	}
	return raw.toField(), nil
}

func (h *PageHost) TextOf(ctx context.Context, selector string) (string, error) {
	var text string
	err := h.eval(ctx, textOfScript, &text, selector)
	return text, err
}

func (h *PageHost) VisibleBodyText(ctx context.Context) (string, error) {
	var text string
	err := h.eval(ctx, bodyTextScript, &text)
	return text, err
}

func (h *PageHost) LabelFor(ctx context.Context, id string) (string, error) {
	var text string
	err := h.eval(ctx, labelForScript, &text, id)
	return text, err
}

// eval runs a JS function in the page and decodes its JSON result into out.
func (h *PageHost) eval(ctx context.Context, js string, out interface{}, args ...interface{}) error {
	res, err := h.page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:           js,
		JSArgs:       args,
		ByValue:      true,
		AwaitPromise: true,
	})
	if err != nil {
		return err
	}
	if out == nil || res == nil {
		return nil
	}
	raw, err := res.Value.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	return json.Unmarshal(raw, out)
}

// Page exposes the underlying rod page.
func (h *PageHost) Page() *rod.Page {
	return h.page
}
