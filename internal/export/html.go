package export

import (
	"html/template"
	"io"

	"github.com/baxromumarov/trailscript/internal/scraper"
)

const DefaultTitle = "Trails Database Script"

var scriptPage = template.Must(template.New("script").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <style>
        body {
            font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif;
            line-height: 1.6;
            max-width: 1200px;
            margin: 0 auto;
            padding: 20px;
            background-color: #f5f5f5;
        }
        .container {
            background-color: white;
            padding: 30px;
            border-radius: 8px;
            box-shadow: 0 2px 4px rgba(0,0,0,0.1);
        }
        h1 {
            color: #333;
            border-bottom: 3px solid #4CAF50;
            padding-bottom: 10px;
        }
        .entry {
            margin: 15px 0;
            padding: 15px;
            background-color: #fafafa;
            border-left: 4px solid #4CAF50;
            border-radius: 4px;
        }
        .entry-number {
            font-weight: bold;
            color: #666;
            font-size: 0.9em;
        }
        .entry-text {
            margin: 8px 0;
            color: #333;
            font-size: 1.05em;
        }
        .entry-character {
            font-style: italic;
            color: #888;
            margin-top: 5px;
        }
    </style>
</head>
<body>
    <div class="container">
        <h1>{{.Title}}</h1>
{{- range .Entries}}
        <div class="entry">
            <div class="entry-number">Entry {{.Number}}</div>
            <div class="entry-text">"{{.Text}}"</div>
            <div class="entry-character">{{.CharacterName}}</div>
        </div>
{{- end}}
    </div>
</body>
</html>
`))

type HTMLOptions struct {
	Title string
}

// WriteHTML renders the styled script document. Text and names are HTML
// escaped, including the double quote.
func WriteHTML(w io.Writer, entries []scraper.Entry, opts HTMLOptions) error {
	title := opts.Title
	if title == "" {
		title = DefaultTitle
	}
	return scriptPage.Execute(w, struct {
		Title   string
		Entries []scraper.Entry
	}{Title: title, Entries: entries})
}
