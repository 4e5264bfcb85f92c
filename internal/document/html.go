package document

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}} - {{.Header.Name}}</title>
<style>
body{font-family:Arial,Helvetica,sans-serif;color:#222;margin:0;padding:24px;}
.page{max-width:800px;margin:0 auto;border:1px solid #333;padding:24px;}
.header{display:flex;align-items:center;border-bottom:2px solid #1f3a93;padding-bottom:12px;}
.header img{height:64px;margin-right:16px;}
.header h1{margin:0;font-size:22px;color:#1f3a93;}
.header p{margin:2px 0;font-size:12px;}
.title{text-align:center;font-size:18px;font-weight:bold;margin:16px 0;text-transform:uppercase;letter-spacing:1px;}
.meta{width:100%;font-size:12px;margin-bottom:12px;}
.meta td{padding:2px 4px;}
.images{display:flex;justify-content:flex-end;gap:12px;margin-bottom:12px;}
.slot{width:120px;height:140px;border:1px dashed #666;display:flex;align-items:center;justify-content:center;text-align:center;font-size:11px;color:#666;}
.slot.signature{height:60px;width:180px;}
.slot img{max-width:100%;max-height:100%;}
h2{font-size:14px;background:#eef1fa;padding:6px 8px;margin:16px 0 0;}
table.fields{width:100%;border-collapse:collapse;font-size:13px;}
table.fields td{border:1px solid #ccc;padding:6px 8px;vertical-align:top;}
table.fields td.label{width:35%;font-weight:bold;background:#fafafa;}
table.totals{width:50%;margin:16px 0 0 auto;border-collapse:collapse;font-size:13px;}
table.totals td{padding:4px 8px;border-bottom:1px solid #ddd;}
table.totals td.amount{text-align:right;}
table.totals tr.total td{font-weight:bold;border-top:2px solid #333;}
.notices{font-size:11px;margin-top:16px;}
.signatures{display:flex;justify-content:space-between;margin-top:48px;font-size:12px;}
.signatures div{border-top:1px solid #333;padding-top:4px;min-width:160px;text-align:center;}
@media print{body{padding:0;}.page{border:none;}}
</style>
</head>
<body>
<div class="page">
<div class="header">
{{- with .Logo}}<img src="{{.}}" alt="logo">{{end}}
<div>
<h1>{{.Header.Name}}</h1>
<p>{{.Header.Address}}</p>
<p>Phone: {{.Header.Phone}} | Email: {{.Header.Email}}{{with .Header.Website}} | {{.}}{{end}}</p>
<p>Center Code: {{.Header.CenterCode}}</p>
</div>
</div>
<div class="title">{{.Title}}</div>
<table class="meta"><tr>
{{- range .Meta}}<td><strong>{{.Label}}:</strong> {{.Value}}</td>{{end -}}
</tr></table>
{{- if .Images}}
<div class="images">
{{- range .Images}}
<div class="slot{{if .Signature}} signature{{end}}">{{if .Source}}<img src="{{.Source}}" alt="{{.Label}}">{{else}}{{.Placeholder}}{{end}}</div>
{{- end}}
</div>
{{- end}}
{{- range .Sections}}
<h2>{{.Heading}}</h2>
<table class="fields">
{{- range .Fields}}
<tr><td class="label">{{.Label}}</td><td>{{.Value}}</td></tr>
{{- end}}
</table>
{{- end}}
{{- with .Totals}}
<table class="totals">
{{- range .Rows}}
<tr><td>{{.Label}}</td><td class="amount">{{.Value}}</td></tr>
{{- end}}
<tr class="total"><td>{{.Label}}</td><td class="amount">{{.Value}}</td></tr>
</table>
{{- end}}
{{- if .Notices}}
<div class="notices"><strong>Important:</strong>
<ol>
{{- range .Notices}}
<li>{{.}}</li>
{{- end}}
</ol>
</div>
{{- end}}
{{- if .Signatures}}
<div class="signatures">
{{- range .Signatures}}
<div>{{.}}</div>
{{- end}}
</div>
{{- end}}
</div>
</body>
</html>
`

var page = template.Must(template.New("document").Parse(pageTemplate))

type htmlImage struct {
	Label       string
	Source      template.URL
	Placeholder string
	Signature   bool
}

type htmlView struct {
	Document
	Logo   template.URL
	Images []htmlImage
}

// RenderHTML renders a standalone HTML page with inline styles.
func RenderHTML(doc Document) ([]byte, error) {
	view := htmlView{Document: doc, Logo: safeImageURL(doc.Header.LogoURL)}
	for _, slot := range doc.Images {
		view.Images = append(view.Images, htmlImage{
			Label:       slot.Label,
			Source:      safeImageURL(slot.Source),
			Placeholder: slot.Placeholder,
			Signature:   slot.Label == SignatureLabel,
		})
	}

	buf := &bytes.Buffer{}
	if err := page.Execute(buf, view); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}

// safeImageURL admits http(s) URLs and inline image data; anything else
// renders as an empty slot.
func safeImageURL(raw string) template.URL {
	raw = strings.TrimSpace(raw)
	lower := strings.ToLower(raw)
	switch {
	case strings.HasPrefix(lower, "https://"), strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "data:image/"):
		return template.URL(raw)
	default:
		return ""
	}
}
