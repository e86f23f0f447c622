package http

import (
	"html/template"
	"net/http"

	"go.uber.org/zap"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
    <meta charset="utf-8">
    <title>{{.Title}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; max-width: 640px; }
        .flash { padding: 10px; margin: 16px 0; background: #fdecea; color: #611a15; border-radius: 4px; }
        .option { margin: 6px 0; }
        .endpoint a { text-decoration: none; color: #0066cc; }
    </style>
</head>
<body>
    <h1>{{.Title}}</h1>
    <p>{{.Subtitle}}</p>
    {{if .Message}}<div class="flash" role="alert">{{.Message}}</div>{{end}}

    <form action="/upload" method="post" enctype="multipart/form-data">
        <p><label>{{.FileLabel}} <input type="file" name="file" accept=".txt"></label></p>
        {{range .Options}}
        <div class="option">
            <input type="hidden" name="{{.Field}}" value="false">
            <label><input type="checkbox" name="{{.Field}}" value="true"{{if .Checked}} checked{{end}}> {{.Label}}</label>
        </div>
        {{end}}
        <p><button type="submit">{{.Submit}}</button></p>
    </form>

    <p class="endpoint"><a href="/metrics">Metrics</a> · <a href="/healthz">Health</a> · <a href="/readyz">Ready</a></p>
</body>
</html>`))

type indexView struct {
	Lang      string
	Title     string
	Subtitle  string
	Message   string
	FileLabel string
	Submit    string
	Options   []indexOption
}

type indexOption struct {
	Field   string
	Label   string
	Checked bool
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	defaults := s.config.App.Defaults
	l := s.localizer

	view := indexView{
		Lang:      l.Language(),
		Title:     l.T("page.title"),
		Subtitle:  l.T("page.subtitle"),
		Message:   r.URL.Query().Get("message"),
		FileLabel: l.T("page.file_label"),
		Submit:    l.T("page.submit"),
		Options: []indexOption{
			{Field: FieldExpandSpotify, Label: l.T("page.option.spotify"), Checked: defaults.EnableMusic},
			{Field: FieldExpandYouTube, Label: l.T("page.option.youtube"), Checked: defaults.EnableVideo},
			{Field: FieldExpandWeb, Label: l.T("page.option.web"), Checked: defaults.EnableWeb},
			{
				Field:   FieldUpdatePlaylist,
				Label:   l.T("page.option.playlist", s.config.Spotify.PlaylistName),
				Checked: defaults.UpdateCuratedPlaylist,
			},
		},
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, view); err != nil {
		s.logger.Error("Failed to render index page", zap.Error(err))
	}
}
