package health

import (
	"bytes"
	"html/template"

	"github.com/dustin/go-humanize"
)

var dashboardTmpl = template.Must(template.New("dashboard").Funcs(template.FuncMap{
	"comma": func(n int) string { return humanize.Comma(int64(n)) },
	"ok":    func(s string) bool { return s == "connected" },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Realty API · Status</title>
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <style>
    :root { --brand: #1d4ed8; --dark: #0f172a; --bg: #f8fafc; --muted: #64748b; --bad: #dc2626; }
    body { background: var(--bg); color: var(--dark); font-family: system-ui, sans-serif; margin: 0; padding: 40px 20px; }
    .container { max-width: 960px; margin: 0 auto; }
    h1 { font-size: 40px; margin: 0 0 6px; letter-spacing: -1px; }
    h1.issue { color: var(--bad); }
    .subtext { color: var(--muted); font-weight: 600; margin-bottom: 28px; }
    .grid { display: grid; grid-template-columns: repeat(3, 1fr); gap: 16px; }
    .card { background: #fff; border-radius: 16px; padding: 24px; box-shadow: 0 10px 30px -12px rgba(15,23,42,.15); }
    .label { text-transform: uppercase; font-size: 11px; font-weight: 800; letter-spacing: 2px; color: #94a3b8; margin-bottom: 16px; }
    .big { font-size: 34px; font-weight: 800; margin-bottom: 10px; }
    .row { display: flex; justify-content: space-between; padding: 6px 0; font-size: 14px; font-weight: 600; border-bottom: 1px solid #f1f5f9; }
    .pill { padding: 2px 10px; border-radius: 8px; font-size: 12px; font-weight: 800; }
    .pill.ok { background: rgba(29,78,216,.08); color: var(--brand); }
    .pill.err { background: rgba(220,38,38,.08); color: var(--bad); }
    .footer { margin-top: 16px; font-family: monospace; font-size: 13px; color: var(--muted); }
    @media (max-width: 800px) { .grid { grid-template-columns: 1fr; } }
  </style>
</head>
<body>
  <div class="container">
    {{if eq .Status "ok"}}<h1>All Systems Operational</h1>{{else}}<h1 class="issue">System Issues Detected</h1>{{end}}
    <p class="subtext">Listings API · uptime {{.Runtime.UptimeSeconds}}s · {{.Runtime.GoVersion}}</p>
    <div class="grid">
      <div class="card">
        <div class="label">Traffic</div>
        <div class="big">{{comma .Traffic.TotalRequests}}</div>
        <div class="row"><span>Successful</span><span>{{comma .Traffic.SuccessCount}}</span></div>
        <div class="row"><span>Failed</span><span>{{comma .Traffic.FailedCount}}</span></div>
        <div class="row"><span>Success Rate</span><span>{{.Traffic.SuccessRate}}%</span></div>
        <div class="row"><span>Avg Latency</span><span>{{.Traffic.AvgResponseTime}}ms</span></div>
      </div>
      <div class="card">
        <div class="label">Runtime</div>
        <div class="big">{{.Runtime.Goroutines}} <small>goroutines</small></div>
        <div class="row"><span>Heap Used</span><span>{{.Runtime.Memory.HeapUsed}} MB</span></div>
        <div class="row"><span>Allocated</span><span>{{.Runtime.Memory.AllocMB}} MB</span></div>
        <div class="row"><span>Platform</span><span>{{.Runtime.Platform}}</span></div>
      </div>
      <div class="card">
        <div class="label">Connectivity</div>
        {{range $name, $dep := .Dependencies}}
        <div class="row"><span>{{$name}}</span><span class="pill {{if ok $dep.Status}}ok{{else}}err{{end}}">{{$dep.Status}}{{with $dep.PingMs}} · {{.}} ms{{end}}</span></div>
        {{end}}
      </div>
    </div>
    {{with .Traffic.LastRequest}}<div class="footer">LAST INBOUND {{index . "method"}} {{index . "path"}} from {{index . "ip"}}</div>{{end}}
    <div class="footer"><a href="/health/json">json</a> · <a href="/health/errors">error log</a> · <a href="/metrics">metrics</a></div>
  </div>
  <script>setTimeout(() => location.reload(), 15000);</script>
</body>
</html>`))

// RenderDashboardHTML renders the status page for GET /health.
func RenderDashboardHTML(health CollectResult) (string, error) {
	var buf bytes.Buffer
	if err := dashboardTmpl.Execute(&buf, health); err != nil {
		return "", err
	}
	return buf.String(), nil
}
