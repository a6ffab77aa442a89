// Package templates holds the server-rendered pages. Dynamic fragments
// inside them are patched over SSE by the datastar handlers, so the
// page ships with placeholder shells that carry the target element IDs.
package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

func Dashboard() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, dashboardHTML)
		return err
	})
}

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>MarketPulse · Seller Analytics</title>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@main/bundles/datastar.js"></script>
<style>
:root { --bg: #0f1117; --panel: #181b24; --text: #e6e8ee; --muted: #8a8fa3; --accent: #4f8cff; }
* { box-sizing: border-box; }
body { margin: 0; font-family: ui-sans-serif, system-ui, sans-serif; background: var(--bg); color: var(--text); }
header { padding: 1.25rem 2rem; border-bottom: 1px solid #262a36; display: flex; align-items: baseline; gap: 1rem; }
header h1 { margin: 0; font-size: 1.3rem; }
header .sub { color: var(--muted); font-size: 0.85rem; }
main { padding: 1.5rem 2rem; max-width: 1100px; margin: 0 auto; }
.controls { display: flex; gap: 0.75rem; margin-bottom: 1.25rem; }
.controls select, .controls button { background: var(--panel); color: var(--text); border: 1px solid #2c3140; border-radius: 6px; padding: 0.4rem 0.7rem; font-size: 0.85rem; }
.kpi-grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(200px, 1fr)); gap: 1rem; margin-bottom: 1.5rem; }
.kpi-card { background: var(--panel); border: 1px solid #262a36; border-radius: 10px; padding: 1rem; display: flex; flex-direction: column; gap: 0.3rem; }
.kpi-label { color: var(--muted); font-size: 0.75rem; text-transform: uppercase; letter-spacing: 0.06em; }
.kpi-card strong { font-size: 1.4rem; }
.kpi-delta { color: var(--accent); font-size: 0.8rem; }
.kpi-delta.muted { color: var(--muted); }
.modern-table { width: 100%; border-collapse: collapse; background: var(--panel); border-radius: 10px; overflow: hidden; }
.modern-table th, .modern-table td { padding: 0.6rem 0.9rem; text-align: left; font-size: 0.85rem; }
.modern-table thead th { color: var(--muted); border-bottom: 1px solid #2c3140; font-weight: 500; }
.modern-table tbody tr:nth-child(odd) { background: rgba(255,255,255,0.02); }
.category-badge { background: #23304a; color: var(--accent); border-radius: 999px; padding: 0.15rem 0.6rem; font-size: 0.75rem; }
section h2 { font-size: 1rem; color: var(--muted); margin: 1.5rem 0 0.75rem; }
</style>
</head>
<body data-signals='{"days": 30, "category": "all", "trendsData": [], "cohortsData": [], "categories": []}' data-on-load="@get('/sse/refresh-all')">
<header>
<h1>MarketPulse</h1>
<span class="sub">marketplace seller analytics</span>
</header>
<main>
<div class="controls">
<select data-bind-days data-on-change="@get('/sse/refresh-all?days='+$days+'&category='+$category)">
<option value="7">Last 7 days</option>
<option value="30" selected>Last 30 days</option>
<option value="90">Last 90 days</option>
</select>
<select data-bind-category data-on-change="@get('/sse/refresh-all?days='+$days+'&category='+$category)">
<option value="all" selected>All categories</option>
<option value="Home">Home</option>
<option value="Electronics">Electronics</option>
<option value="Fashion">Fashion</option>
<option value="Beauty">Beauty</option>
<option value="Sports">Sports</option>
</select>
<button data-on-click="@get('/sse/refresh-all?days='+$days+'&category='+$category)">Refresh</button>
</div>
<section>
<h2>Overview</h2>
<div id="overview-content"><div class="kpi-grid"><div class="kpi-card"><span class="kpi-label">Loading</span><strong>…</strong></div></div></div>
</section>
<section>
<h2>Category Performance</h2>
<div id="category-content"><table class="modern-table"><thead><tr><th>Category</th><th>Revenue</th><th>Listings</th><th>Avg Price</th><th>Avg Rating</th></tr></thead><tbody></tbody></table></div>
</section>
</main>
</body>
</html>
`
