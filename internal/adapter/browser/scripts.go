package browser

// Page-side functions evaluated through Runtime.callFunctionOn. Each takes
// its inputs as arguments and returns plain JSON.
const (
	inputBinding    = "__autosacInput"
	mutationBinding = "__autosacMutation"

	hasElementJS = `(id) => !!document.getElementById(id)`

	wiredJS = `(id, attr) => {
		const el = document.getElementById(id);
		return !!el && el.getAttribute(attr) === 'true';
	}`

	markWiredJS = `(id, attr) => {
		const el = document.getElementById(id);
		if (!el) return false;
		el.setAttribute(attr, 'true');
		return true;
	}`

	attachJS = `(ids, binding, token) => {
		const els = ids.map((id) => document.getElementById(id));
		if (els.some((el) => !el)) return false;
		for (const el of els) {
			el.addEventListener('input', () => window[binding](token), false);
		}
		return true;
	}`

	readInputsJS = `(ids, hoursSel, minutesSel) => {
		const byID = (id) => { const el = document.getElementById(id); return el ? String(el.value) : ''; };
		const bySel = (sel) => { const el = document.querySelector(sel); return el ? String(el.value) : ''; };
		const out = {};
		for (const id of ids) out[id] = byID(id);
		out.hours = bySel(hoursSel);
		out.minutes = bySel(minutesSel);
		return out;
	}`

	writeValueJS = `(id, value) => {
		const el = document.getElementById(id);
		if (!el) return false;
		el.value = value;
		return true;
	}`

	tableRowsJS = `(sel) => {
		const t = document.querySelector(sel);
		if (!t) return null;
		return Array.from(t.rows).map((r) =>
			Array.from(r.cells).map((c) => (c.textContent || '').replace(/\s+/g, ' ').trim()));
	}`

	insertColumnJS = `(sel, at, cells) => {
		const t = document.querySelector(sel);
		if (!t || t.rows.length !== cells.length) return false;
		Array.from(t.rows).forEach((r, i) => {
			const first = r.cells[0];
			const cell = document.createElement(first && first.tagName === 'TH' ? 'th' : 'td');
			cell.textContent = cells[i];
			r.insertBefore(cell, at >= 0 && at < r.cells.length ? r.cells[at] : null);
		});
		return true;
	}`

	// observerScript is installed on every new document. Notifications are
	// debounced so a burst of host renders produces one nudge.
	observerScript = `(() => {
		if (window.__autosacObserver) return;
		let pending = false;
		const notify = () => {
			if (pending) return;
			pending = true;
			setTimeout(() => {
				pending = false;
				if (typeof window.__autosacMutation === 'function') window.__autosacMutation('');
			}, 50);
		};
		const start = () => {
			window.__autosacObserver = new MutationObserver(notify);
			window.__autosacObserver.observe(document.documentElement, { childList: true, subtree: true });
		};
		if (document.documentElement) start();
		else document.addEventListener('DOMContentLoaded', start);
	})()`
)
