package browser

// All scripts address fields by the data-formsuggest-ref attribute that the
// hook assigns. Model text is only ever written through textContent.

const popupElementID = "formsuggest-popup"

// hookScript is installed on every new document. %s is the shortcut JSON.
const hookScript = `() => {
	const w = window;
	if (w.__formsuggest) return true;
	const shortcut = %s;
	const POPUP_ID = 'formsuggest-popup';
	let counter = 0;

	const fs = w.__formsuggest = { events: [], shortcut };

	const isField = (el) => !!el && (el.tagName === 'INPUT' || el.tagName === 'TEXTAREA');
	const refOf = (el) => {
		if (!el.dataset.formsuggestRef) el.dataset.formsuggestRef = 'fs-' + (++counter);
		return el.dataset.formsuggestRef;
	};
	const describe = (el) => {
		const r = el.getBoundingClientRect();
		const cs = w.getComputedStyle(el);
		const form = el.form || null;
		return {
			ref: refOf(el),
			tag: el.tagName.toLowerCase(),
			id: el.id || '',
			name: el.getAttribute('name') || '',
			className: typeof el.className === 'string' ? el.className : '',
			type: el.tagName === 'TEXTAREA' ? 'textarea' : (el.getAttribute('type') || ''),
			value: el.value || '',
			placeholder: el.getAttribute('placeholder') || '',
			ariaLabel: el.getAttribute('aria-label') || '',
			title: el.getAttribute('title') || '',
			formId: form ? (form.id || '') : '',
			formName: form ? (form.getAttribute('name') || '') : '',
			rect: { left: r.left, top: r.top, width: r.width, height: r.height },
			disabled: !!el.disabled,
			inPopup: !!el.closest('#' + POPUP_ID),
			ariaHidden: el.getAttribute('aria-hidden') === 'true',
			style: {
				display: cs.display,
				visibility: cs.visibility,
				opacity: cs.opacity,
				pointerEvents: cs.pointerEvents
			}
		};
	};
	const allFields = () => Array.from(document.querySelectorAll('input, textarea'));
	const watched = (el) => isField(el) && el.dataset.formsuggestWatched === '1';
	const popup = () => document.getElementById(POPUP_ID);
	const push = (ev) => { ev.ts = Date.now(); fs.events.push(ev); };

	fs.describe = describe;
	fs.allFields = allFields;
	fs.byRef = (ref) => document.querySelector('[data-formsuggest-ref="' + ref + '"]');

	document.addEventListener('focusin', (ev) => {
		if (watched(ev.target)) push({ type: 'trigger', source: 'focus', field: describe(ev.target) });
	}, true);

	document.addEventListener('click', (ev) => {
		const p = popup();
		const target = ev.target;
		if (p && p.contains(target)) {
			const btn = target.closest('[data-action]');
			if (btn && !btn.disabled) {
				push({ type: 'action', action: btn.dataset.action, popupId: p.dataset.popupId || '' });
			}
			return;
		}
		if (watched(target)) {
			push({ type: 'trigger', source: 'click', field: describe(target) });
			return;
		}
		if (p) push({ type: 'action', action: 'click-outside', popupId: p.dataset.popupId || '' });
	}, true);

	document.addEventListener('keydown', (ev) => {
		const p = popup();
		if (ev.key === 'Escape' && p) {
			push({ type: 'action', action: 'escape', popupId: p.dataset.popupId || '' });
			return;
		}
		const key = String(shortcut.key || '').toUpperCase();
		const codeMatch = ev.code === 'Key' + key || (ev.key || '').toUpperCase() === key;
		if (codeMatch && ev.ctrlKey === !!shortcut.ctrl && ev.altKey === !!shortcut.alt &&
			ev.shiftKey === !!shortcut.shift && ev.metaKey === !!shortcut.meta) {
			const el = document.activeElement;
			if (isField(el)) {
				ev.preventDefault();
				push({ type: 'trigger', source: 'shortcut', field: describe(el) });
			}
		}
	}, true);

	const announce = (els) => {
		const fresh = els.filter((el) => isField(el) && !el.closest('#' + POPUP_ID) && el.dataset.formsuggestWatched !== '1');
		if (fresh.length) push({ type: 'nodes', fields: fresh.map(describe) });
	};

	// document exists before <html> does on a fresh document.
	new MutationObserver((mutations) => {
		const found = [];
		for (const m of mutations) {
			m.addedNodes.forEach((n) => {
				if (n.nodeType !== 1) return;
				if (isField(n)) found.push(n);
				if (n.querySelectorAll) found.push(...n.querySelectorAll('input, textarea'));
			});
		}
		announce(found);
	}).observe(document, { childList: true, subtree: true });

	if (document.readyState === 'loading') {
		document.addEventListener('DOMContentLoaded', () => announce(allFields()));
	}
	return true;
}`

const drainScript = `() => {
	const fs = window.__formsuggest;
	if (!fs) return [];
	const buf = fs.events;
	fs.events = [];
	return buf;
}`

const scanScript = `() => {
	const fs = window.__formsuggest;
	if (!fs) return [];
	return fs.allFields().map(fs.describe);
}`

const watchScript = `(refs) => {
	const fs = window.__formsuggest;
	if (!fs) return 0;
	let n = 0;
	for (const ref of refs) {
		const el = fs.byRef(ref);
		if (el) { el.dataset.formsuggestWatched = '1'; n++; }
	}
	return n;
}`

const refreshScript = `(ref) => {
	const fs = window.__formsuggest;
	const el = fs && fs.byRef(ref);
	return el ? fs.describe(el) : null;
}`

const fillScript = `(ref, value) => {
	const fs = window.__formsuggest;
	const el = fs && fs.byRef(ref);
	if (!el) return false;
	el.value = value;
	el.dispatchEvent(new Event('input', { bubbles: true }));
	el.dispatchEvent(new Event('change', { bubbles: true }));
	return true;
}`

const renderScript = `(view) => {
	const ID = 'formsuggest-popup';
	let p = document.getElementById(ID);
	if (!p) {
		p = document.createElement('div');
		p.id = ID;
		p.setAttribute('role', 'dialog');
		p.style.cssText = 'position:absolute;z-index:2147483647;max-width:360px;padding:12px;' +
			'background:#fff;color:#222;border:1px solid #ccc;border-radius:8px;' +
			'box-shadow:0 4px 16px rgba(0,0,0,.15);font:13px/1.4 sans-serif;';
		document.body.appendChild(p);
	}
	p.dataset.popupId = view.popupId;
	p.dataset.state = view.state;
	p.style.left = (view.position.left + window.scrollX) + 'px';
	p.style.top = (view.position.top + window.scrollY) + 'px';
	p.replaceChildren();

	const add = (tag, cls, text) => {
		const el = document.createElement(tag);
		el.className = cls;
		if (text !== undefined) el.textContent = text;
		p.appendChild(el);
		return el;
	};

	const header = add('div', 'fs-header');
	const label = document.createElement('span');
	label.textContent = view.typeLabel;
	header.appendChild(label);
	const close = document.createElement('button');
	close.dataset.action = 'close';
	close.title = 'Close and stop suggesting for this field';
	close.textContent = '×';
	header.appendChild(close);

	if (view.question) add('div', 'fs-question', view.question);

	if (view.state === 'loading') {
		add('div', 'fs-loading', 'Generating suggestion…');
	} else if (view.state === 'error') {
		add('div', 'fs-error', view.message || '');
	} else if (view.result) {
		add('div', 'fs-answer', view.result.answerText);
		add('div', 'fs-confidence', 'Confidence: ' + Math.round(view.result.confidence) + '%');
		add('div', 'fs-explanation', view.result.explanation);
	}

	const accept = add('button', 'fs-accept', 'Use this answer');
	accept.dataset.action = 'accept';
	accept.disabled = !view.acceptEnabled;

	if (view.shortcutHint) add('div', 'fs-hint', 'Press ' + view.shortcutHint + ' for suggestions');
	return true;
}`

const removeScript = `(popupId) => {
	const p = document.getElementById('formsuggest-popup');
	if (p && (!popupId || p.dataset.popupId === popupId)) { p.remove(); return true; }
	return false;
}`

const textOfScript = `(sel) => {
	let el = null;
	try { el = document.querySelector(sel); } catch (e) { return ''; }
	return el ? (el.innerText || el.textContent || '') : '';
}`

const bodyTextScript = `() => document.body ? (document.body.innerText || '') : ''`

const labelForScript = `(id) => {
	const el = document.querySelector('label[for="' + CSS.escape(id) + '"]');
	return el ? (el.textContent || '') : '';
}`
