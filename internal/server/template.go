package server

const reportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{if .Label}}{{.Label}} - {{end}}Repository Health</title>
<style>
body { font-family: sans-serif; margin: 2em; color: #222; }
.panel { margin-bottom: 2em; }
.value { font-size: 3em; font-weight: bold; color: #0000ff; }
.error { color: #b00020; }
.muted { color: #777; font-style: italic; }
</style>
</head>
<body>
{{if .Skipped}}
<h1 id="repo-label">Repository Health</h1>
<p class="muted">Add <code>?owner=OWNER&amp;repo=REPO</code> to the URL to build a report.</p>
{{else}}
<h1 id="repo-label">{{.Label}}</h1>
{{with .Summary}}
<p><a href="{{.URL}}">{{.FullName}}</a>{{if .Description}}: {{.Description}}{{end}}</p>
<p>&#9733; {{.Stars}} &middot; forks {{.Forks}} &middot; open issues {{.OpenIssues}}{{if .Archived}} &middot; archived{{end}}</p>
{{end}}
{{range .Panels}}
<div class="panel" id="{{.Config.AnchorID}}">
<h2>{{.Config.Title}}</h2>
{{with index $.Failures .Config.Target}}<p class="error">{{.}}</p>
{{else}}{{if .SVG}}{{.SVG}}{{else if .Value}}<p class="value">{{.Value}}</p>{{else}}<p class="muted">No data available</p>{{end}}{{end}}
</div>
{{end}}
{{end}}
</body>
</html>
`
