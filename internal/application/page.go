package application

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/eugenenazirov/cms-admin/internal/config"
)

// configEndpoint is where the admin UI fetches the parsed CMS config.
const configEndpoint = "/api/cms-config"

// Page holds the values injected into the admin bootstrap page.
type Page struct {
	Title           string
	BackendEndpoint string
	BackendAPIKey   string
	ConfigURL       string
	PublicURL       string
	StaticDir       string
}

// PageFromConfig derives the bootstrap page settings from cfg.
func PageFromConfig(cfg config.Config) Page {
	return Page{
		Title:           cfg.SiteTitle,
		BackendEndpoint: cfg.BackendEndpoint,
		BackendAPIKey:   cfg.BackendAPIKey,
		ConfigURL:       configEndpoint,
		PublicURL:       cfg.PublicURL,
		StaticDir:       cfg.StaticDir,
	}
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}}</title>
  <base href="{{.PublicURL}}/">
  {{- if .StaticDir}}
  <link rel="stylesheet" href="static/app.css">
  {{- end}}
</head>
<body>
  <div id="root"></div>
  <script>
    window.CMS_ADMIN = {
      title: {{.Title}},
      backendEndpoint: {{.BackendEndpoint}},
      backendApiKey: {{.BackendAPIKey}},
      configUrl: {{.ConfigURL}},
      publicUrl: {{.PublicURL}}
    };
  </script>
  {{- if .StaticDir}}
  <script src="static/app.js"></script>
  {{- end}}
</body>
</html>
`))

func renderIndex(page Page) ([]byte, error) {
	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, page); err != nil {
		return nil, fmt.Errorf("render index page: %w", err)
	}
	return buf.Bytes(), nil
}
