// Package views renders the small job-status HTML dashboard this repo
// carries. Components are built directly against templ's public runtime
// API (templ.ComponentFunc) rather than through `templ generate` codegen,
// since no toolchain runs in this environment — the dependency is
// exercised the same way, just hand-assembled instead of generated.
package views

import (
	"context"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/jasperwolfe/chessimport/db"
)

const pageShell = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>chessimport</title>
  <style>
    body { font-family: system-ui, sans-serif; margin: 2rem; color: #222; }
    table { border-collapse: collapse; width: 100%%; }
    th, td { border: 1px solid #ccc; padding: 0.4rem 0.6rem; text-align: left; }
    th { background: #f5f5f5; }
    .status-PENDING, .status-PROCESSING { color: #946200; }
    .status-COMPLETED { color: #1a7a32; }
    .status-FAILED { color: #b3261e; }
  </style>
</head>
<body>
<h1>chessimport</h1>
%s
</body>
</html>`

// Home renders the empty shell page.
func Home() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		body := `<p>POST a PGN file or trigger a Chess.com/Lichess sync, then check
<code>/accounts/{id}/jobs/{job_id}</code> for progress.</p>`
		_, err := fmt.Fprintf(w, pageShell, body)
		return err
	})
}

// Jobs renders the recent-jobs table for one account.
func Jobs(account db.Account, jobs []db.Job) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, "<h2>%s (%s)</h2>\n", html.EscapeString(account.Username), html.EscapeString(string(account.Platform)))
		if len(jobs) == 0 {
			b.WriteString("<p>No import jobs yet.</p>")
		} else {
			b.WriteString("<table>\n<tr><th>Job</th><th>Status</th><th>Processed</th><th>Duplicates</th><th>Progress</th></tr>\n")
			for _, j := range jobs {
				progress := "—"
				if p := j.ProgressPercent(); p != nil {
					progress = fmt.Sprintf("%d%%", *p)
				}
				fmt.Fprintf(&b, "<tr><td>%s</td><td class=\"status-%s\">%s</td><td>%d</td><td>%d</td><td>%s</td></tr>\n",
					html.EscapeString(j.ID), html.EscapeString(string(j.Status)), html.EscapeString(string(j.Status)),
					j.ProcessedGames, j.DuplicateGames, progress)
			}
			b.WriteString("</table>\n")
		}
		_, err := fmt.Fprintf(w, pageShell, b.String())
		return err
	})
}

// JobStatus renders a single job's detail, the plain-HTML variant of
// GET /accounts/{id}/jobs/{job_id} (the JSON route is the canonical one).
func JobStatus(job db.Job) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		progress := "unknown"
		if p := job.ProgressPercent(); p != nil {
			progress = fmt.Sprintf("%d%%", *p)
		}
		body := fmt.Sprintf(`<dl>
  <dt>Status</dt><dd class="status-%s">%s</dd>
  <dt>Processed</dt><dd>%d</dd>
  <dt>Duplicates</dt><dd>%d</dd>
  <dt>Progress</dt><dd>%s</dd>
</dl>`, html.EscapeString(string(job.Status)), html.EscapeString(string(job.Status)), job.ProcessedGames, job.DuplicateGames, progress)
		_, err := fmt.Fprintf(w, pageShell, body)
		return err
	})
}
