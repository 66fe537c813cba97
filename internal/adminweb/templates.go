package adminweb

const templatesHTML = `
{{define "head"}}<!doctype html>
<html>
<head>
  <meta charset="utf-8"/>
  <meta name="viewport" content="width=device-width, initial-scale=1"/>
  <title>marketadmin</title>
  <style>
    body { font-family: ui-sans-serif, system-ui, -apple-system, Segoe UI, Roboto, Arial; margin: 0; }
    .wrap { max-width: 1080px; margin: 0 auto; padding: 16px; }
    .row { display:flex; gap: 8px; align-items:center; flex-wrap: wrap; }
    .muted { color:#666; font-size: 12px; }
    .err { color:#b00020; font-size: 12px; }
    .flash { padding: 8px 12px; border-radius: 8px; margin-bottom: 12px; background:#eef6ff; }
    .flash.error { background:#fdecea; }
    .flash.ok { background:#e8f5e9; }
    table { width: 100%; border-collapse: collapse; }
    td, th { border-bottom: 1px solid #eee; padding: 6px; text-align: left; vertical-align: top; }
    .card { padding: 12px; border: 1px solid #eee; border-radius: 8px; margin-bottom: 12px; }
    .grid2 { display:grid; grid-template-columns: 1fr 1fr; gap: 12px; }
    label { display:block; font-size: 13px; margin-top: 6px; }
    input[type=text], input[type=number], input[type=datetime-local], select, textarea { width: 100%; box-sizing: border-box; }
    img.logo { max-width: 64px; max-height: 64px; border-radius: 6px; }
    .pager a, .pager span { margin-right: 6px; }
    .resolved { color:#2e7d32; font-weight: 600; }
  </style>
</head>
<body>
<div class="wrap">
<div class="row"><h2 style="margin:0"><a href="/">Questions</a></h2><a href="/questions/new">+ New question</a></div>
{{end}}

{{define "foot"}}</div>
</body>
</html>
{{end}}

{{define "flash"}}{{if .Flash}}<div class="flash {{.FlashLevel}}">{{.Flash}}</div>{{end}}{{end}}

{{define "error"}}{{template "head"}}
<div class="flash error">{{.Message}} ({{.Status}})</div>
{{template "foot"}}{{end}}

{{define "list"}}{{template "head"}}
{{if .Flash}}<div class="flash">{{.Flash}}</div>{{end}}
<form method="get" action="/" class="row" style="margin:12px 0">
  <input type="text" name="name" value="{{.Search}}" placeholder="Search by name" style="max-width:320px"/>
  <button type="submit">Search</button>
</form>
{{if .Err}}<div class="flash error">{{.Err}}</div>{{end}}
<table>
  <tr><th></th><th>Question</th><th>Category</th><th>Market</th><th>Ends</th><th></th></tr>
  {{range .Questions}}
  <tr>
    <td>{{if .LogoURL}}<img class="logo" src="{{.LogoURL}}"/>{{end}}</td>
    <td><a href="/questions/{{.ID}}">{{.QuestionName}}</a></td>
    <td>{{categories .Categories}}</td>
    <td>{{.MarketType}}</td>
    <td>{{timeEnd .TimeEnd}}</td>
    <td class="row">
      <a href="/questions/{{.ID}}/edit">Edit</a>
      <form method="post" action="/questions/{{.ID}}/delete" onsubmit="if (window.confirm('Delete this question?')) { this.confirmed.value = 'yes'; return true; } return false;">
        <input type="hidden" name="confirmed" value=""/>
        <button type="submit">Delete</button>
      </form>
    </td>
  </tr>
  {{else}}
  <tr><td colspan="6" class="muted">No questions</td></tr>
  {{end}}
</table>
{{with .Pagination}}{{if .Visible}}
<div class="pager" style="margin-top:12px">
  {{if .ShowPrev}}<a href="/?page={{add .Page -1}}&name={{$.Search}}">&laquo; Prev</a>{{end}}
  {{range .Pages}}{{if eq . $.Pagination.Page}}<span><b>{{.}}</b></span>{{else}}<a href="/?page={{.}}&name={{$.Search}}">{{.}}</a>{{end}}{{end}}
  {{if .NextDisabled}}<span class="muted">Next &raquo;</span>{{else}}<a href="/?page={{add .Page 1}}&name={{$.Search}}">Next &raquo;</a>{{end}}
</div>
{{end}}{{end}}
<script>
if (window.EventSource) {
  new EventSource('/events').addEventListener('refresh', function () { location.reload(); });
}
</script>
{{template "foot"}}{{end}}

{{define "form"}}{{template "head"}}
<h3>{{if .Edit}}Edit question{{else}}New question{{end}}</h3>
{{template "flash" .}}
{{with fieldErr .Errors "error"}}<div class="err">{{.}}</div>{{end}}
<form method="post" action="{{.Action}}" enctype="multipart/form-data">
  <input type="hidden" name="session" value="{{.SessionID}}"/>
  <input type="hidden" name="categoriesPresent" value="1"/>
  <div class="card">
    <label>Category</label>
    <div class="row">
      {{$cs := .Form.Categories}}
      {{range .Categories}}<label style="display:inline"><input type="checkbox" name="category" value="{{.}}" {{if hasCategory $cs .}}checked{{end}}/> {{.}}</label>{{end}}
    </div>
    {{with fieldErr .Errors "category"}}<div class="err">{{.}}</div>{{end}}

    <div class="grid2">
      <div>
        <label>Question name</label>
        <input type="text" name="questionName" value="{{.Form.Field "questionName"}}"/>
        {{with fieldErr .Errors "questionName"}}<div class="err">{{.}}</div>{{end}}
      </div>
      <div>
        <label>Sub category</label>
        <input type="text" name="subCategory" value="{{.Form.Field "subCategory"}}"/>
      </div>
      <div>
        <label>Group question</label>
        <input type="text" name="groupQuestion" value="{{.Form.Field "groupQuestion"}}"/>
      </div>
      <div>
        <label>Market type</label>
        <select name="marketType">
          {{$mt := .Form.MarketType}}
          {{range .MarketTypes}}<option value="{{.}}" {{if eq . $mt}}selected{{end}}>{{.}}</option>{{end}}
        </select>
        {{with fieldErr .Errors "marketType"}}<div class="err">{{.}}</div>{{end}}
      </div>
      <div>
        <label>Time end</label>
        <input type="datetime-local" name="timeEnd" value="{{.Form.Field "timeEnd"}}"/>
        {{with fieldErr .Errors "timeEnd"}}<div class="err">{{.}}</div>{{end}}
      </div>
      <div>
        <label>Volume</label>
        <input type="number" step="any" name="volume" value="{{.Form.Field "volume"}}"/>
        {{with fieldErr .Errors "volume"}}<div class="err">{{.}}</div>{{end}}
      </div>
      <div>
        <label>Symbol</label>
        <input type="text" name="symbol" value="{{.Form.Field "symbol"}}"/>
        {{with fieldErr .Errors "symbol"}}<div class="err">{{.}}</div>{{end}}
      </div>
      <div>
        <label>EPS</label>
        <input type="text" name="eps" value="{{.Form.Field "eps"}}"/>
        {{with fieldErr .Errors "eps"}}<div class="err">{{.}}</div>{{end}}
      </div>
      <div>
        <label>Tags (comma separated)</label>
        <input type="text" name="tags" value="{{.Form.Field "tags"}}"/>
        {{with fieldErr .Errors "tags"}}<div class="err">{{.}}</div>{{end}}
      </div>
      <div>
        <label>Logo</label>
        {{if .LogoPreview}}<img class="logo" src="{{previewURL .LogoPreview}}"/>{{end}}
        <input type="file" name="logo" accept="image/*"/>
        {{with fieldErr .Errors "logo"}}<div class="err">{{.}}</div>{{end}}
      </div>
    </div>
    <label>Rule market</label>
    <textarea name="ruleMarket" rows="4">{{.Form.Field "ruleMarket"}}</textarea>
    {{with fieldErr .Errors "ruleMarket"}}<div class="err">{{.}}</div>{{end}}
    <label>Description</label>
    <textarea name="description" rows="3">{{.Form.Field "description"}}</textarea>
  </div>

  {{with .AnswerSummary}}
  <div class="card">
    <div class="err">{{.}}</div>
    <div class="muted">Answers are edited one at a time from the question page.</div>
  </div>
  {{end}}
  {{if .ShowAnswers}}
  <h4>Answers</h4>
  {{with fieldErr .Errors "answers"}}<div class="err">{{.}}</div>{{end}}
  {{range .Answers}}
  {{$i := .Index}}
  <div class="card">
    <div class="row"><b>Answer {{add $i 1}}</b><button type="submit" name="action" value="remove_answer:{{$i}}">Remove</button></div>
    <div class="grid2">
      <div><label>Answer</label><input type="text" name="answers.{{$i}}.answer" value="{{.Entry.Answer}}"/>{{with index .Errors "answer"}}<div class="err">{{.}}</div>{{end}}</div>
      <div><label>Answer name</label><input type="text" name="answers.{{$i}}.answerName" value="{{.Entry.AnswerName}}"/>{{with index .Errors "answerName"}}<div class="err">{{.}}</div>{{end}}</div>
      <div><label>Yes</label><input type="number" step="any" name="answers.{{$i}}.yes" value="{{.Entry.Value "yes"}}"/>{{with index .Errors "yes"}}<div class="err">{{.}}</div>{{end}}</div>
      <div><label>No</label><input type="number" step="any" name="answers.{{$i}}.no" value="{{.Entry.Value "no"}}"/>{{with index .Errors "no"}}<div class="err">{{.}}</div>{{end}}</div>
      <div><label>M</label><input type="number" step="any" name="answers.{{$i}}.m" value="{{.Entry.Value "m"}}"/>{{with index .Errors "m"}}<div class="err">{{.}}</div>{{end}}</div>
      <div><label>Price check</label><input type="number" step="any" name="answers.{{$i}}.priceCheck" value="{{.Entry.Value "priceCheck"}}"/>{{with index .Errors "priceCheck"}}<div class="err">{{.}}</div>{{end}}</div>
      <div><label>Volume</label><input type="number" step="any" name="answers.{{$i}}.volume" value="{{.Entry.Value "volume"}}"/>{{with index .Errors "volume"}}<div class="err">{{.}}</div>{{end}}</div>
      <div><label>Logo</label>{{if .Preview}}<img class="logo" src="{{previewURL .Preview}}"/>{{end}}<input type="file" name="answers.{{$i}}.logo" accept="image/*"/></div>
    </div>
  </div>
  {{end}}
  <button type="submit" name="action" value="add_answer">+ Add answer</button>
  {{end}}

  <div class="row" style="margin-top:12px">
    <button type="submit" name="action" value="submit">{{if .Edit}}Save{{else}}Create{{end}}</button>
    <button type="submit" name="action" value="cancel">Cancel</button>
  </div>
</form>
{{template "foot"}}{{end}}

{{define "detail"}}{{template "head"}}
{{if .Flash}}<div class="flash">{{.Flash}}</div>{{end}}
{{with .Question}}
<div class="card">
  <div class="row">
    {{if .LogoURL}}<img class="logo" src="{{.LogoURL}}"/>{{end}}
    <h3 style="margin:0">{{.QuestionName}}</h3>
    <a href="/questions/{{.ID}}/edit">Edit</a>
  </div>
  <div class="muted">{{categories .Categories}} · {{.MarketType}} · ends {{timeEnd .TimeEnd}}{{if .Symbol}} · {{.Symbol}}{{end}}{{if .EPS}} · EPS {{.EPS}}{{end}}</div>
  {{if .Tags}}<div class="muted">tags: {{joinTags .Tags}}</div>{{end}}
  {{if .Description}}<p>{{.Description}}</p>{{end}}
  <p>{{.RuleMarket}}</p>
</div>
<h4>Answers</h4>
{{$qid := .ID}}
{{range .Answers}}
<div class="card">
  <div class="row">
    {{if .LogoURL}}<img class="logo" src="{{.LogoURL}}"/>{{end}}
    <b>{{.Answer}}</b> <span class="muted">{{.AnswerName}}</span>
    <span class="muted">yes {{.Yes}} · no {{.No}} · m {{.M}} · vol {{.Volume}}{{if not .PriceCheck.IsZero}} · price check {{.PriceCheck}}{{end}}</span>
    {{if .Resolved}}<span class="resolved">Resolved: {{.Outcome}}</span>{{end}}
  </div>
  {{if not .Resolved}}
  <form method="post" action="/answers/{{.ID}}/resolve" class="row" onsubmit="return window.confirm('Resolve this answer? This cannot be undone.');">
    <input type="hidden" name="questionId" value="{{$qid}}"/>
    <select name="outcome">{{range $.Outcomes}}<option value="{{.}}">{{.}}</option>{{end}}</select>
    <button type="submit">Resolve</button>
  </form>
  <details>
    <summary>Edit answer</summary>
    <form method="post" action="/answers/{{.ID}}" enctype="multipart/form-data" class="grid2">
      <input type="hidden" name="questionId" value="{{$qid}}"/>
      <div><label>Answer</label><input type="text" name="answer" value="{{.Answer}}"/></div>
      <div><label>Answer name</label><input type="text" name="answerName" value="{{.AnswerName}}"/></div>
      <div><label>Yes</label><input type="number" step="any" name="yes" value="{{.Yes}}"/></div>
      <div><label>No</label><input type="number" step="any" name="no" value="{{.No}}"/></div>
      <div><label>M</label><input type="number" step="any" name="m" value="{{.M}}"/></div>
      <div><label>Price check</label><input type="number" step="any" name="priceCheck" value="{{.PriceCheck}}"/></div>
      <div><label>Volume</label><input type="number" step="any" name="volume" value="{{.Volume}}"/></div>
      <div><label>Logo</label><input type="file" name="logo" accept="image/*"/></div>
      <div><button type="submit">Save answer</button></div>
    </form>
  </details>
  {{end}}
</div>
{{else}}
<div class="muted">No answers</div>
{{end}}
<form method="post" action="/questions/{{.ID}}/delete" onsubmit="if (window.confirm('Delete this question?')) { this.confirmed.value = 'yes'; return true; } return false;">
  <input type="hidden" name="confirmed" value=""/>
  <button type="submit">Delete question</button>
</form>
{{end}}
{{template "foot"}}{{end}}
`
