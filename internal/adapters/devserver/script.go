package devserver

// Paths served next to the output tree.
const (
	EventsPath  = "/__sitepipe/livereload"
	ScriptPath  = "/__sitepipe/livereload.js"
	MetricsPath = "/__sitepipe/metrics"
)

// clientScript reconnects on error. A css event re-requests same-origin
// stylesheets, anything else reloads the page.
const clientScript = `(() => {
  if (window.__sitepipeReload) return;
  window.__sitepipeReload = true;
  const swapStyles = () => {
    document.querySelectorAll('link[rel="stylesheet"]').forEach((link) => {
      const url = new URL(link.href, location.href);
      if (url.origin !== location.origin) return;
      url.searchParams.set('sitepipe', Date.now().toString());
      link.href = url.toString();
    });
  };
  const connect = () => {
    const es = new EventSource('` + EventsPath + `');
    es.addEventListener('reload', (e) => {
      let ev = {};
      try { ev = JSON.parse(e.data); } catch (_) {}
      if (ev.kind === 'css') { swapStyles(); } else { location.reload(); }
    });
    es.onerror = () => { es.close(); setTimeout(connect, 2000); };
  };
  connect();
})();
`
