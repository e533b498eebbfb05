package tools

import (
	"fmt"
	"io"

	"github.com/Comcast/fsmgrader/core"
	"github.com/Comcast/fsmgrader/turing"

	md "github.com/russross/blackfriday/v2"
)

// RenderTableHTML writes the table's documentation (as markdown) and
// its rows grouped by state.
func RenderTableHTML(t *core.Table, out io.Writer) error {
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	if t.Doc != "" {
		f(`<div class="tableDoc doc">%s</div>`, md.Run([]byte(t.Doc)))
	}

	f(`<div class="states"><table>`)
	for id, name := range t.States() {
		f(`<tr class="state"><td><span id="%s" class="stateName">%s</span></td><td>`, html(name), html(name))
		f(`<table class="rows">`)
		n := 0
		for i, row := range t.Rows {
			if row.State != id {
				continue
			}
			n++
			next := t.StateName(row.Next)
			f(`<tr><td class="line">%d</td><td><code>%s</code></td><td><a href="#%s"><code>%s</code></a></td><td><code>%s</code></td></tr>`,
				row.Line, row.Pattern.Spaced(), html(next), html(next), t.Outputs(i).Spaced())
		}
		if n == 0 {
			f(`<tr><td class="terminal">no rows</td></tr>`)
		}
		f(`</table>`)
		f(`</td></tr>`)
	}
	f(`</table></div>`)

	return nil
}

// RenderWalkHTML writes the strides of a Walk as a table.
func RenderWalkHTML(w *core.Walked, out io.Writer) error {
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	f(`<div class="walk">`)
	f(`<div class="stopped">stopped: <span class="reason">%s</span> after %d steps</div>`, w.StoppedBecause, len(w.Strides))
	f(`<table>`)
	for i, s := range w.Strides {
		class := "stride"
		switch {
		case s.NoMatch != nil:
			class = "stride noMatch"
		case s.Ambiguous != nil:
			class = "stride ambiguous"
		}
		f(`<tr class="%s"><td>%d</td><td>%s</td><td><code>%s</code></td><td>%s</td><td><code>%s</code></td></tr>`,
			class, i, html(s.From.Name), s.Inputs.Spaced(), html(s.To.Name), s.Outputs.Spaced())
		for _, e := range []*core.MatchError{s.NoMatch, s.Ambiguous} {
			if e != nil {
				f(`<tr class="diagnostic"><td></td><td colspan="4">%s</td></tr>`, html(e.Error()))
			}
		}
	}
	f(`</table></div>`)

	return nil
}

// RenderReportHTML writes a Turing grading report.
func RenderReportHTML(r *turing.Report, out io.Writer) error {
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	verdict := "unsolved"
	if r.AllSolved {
		verdict = "solved"
	}
	f(`<div class="report %s">`, verdict)
	f(`<div class="checksum">checksum <code>%d</code></div>`, r.Checksum)
	f(`<table>`)
	for _, tr := range r.Tapes {
		status := "failed"
		if tr.Solved {
			status = "solved"
		}
		f(`<tr class="tape %s"><td>%s</td><td>%s</td><td>%d</td><td><code>%s</code></td><td>%s</td></tr>`,
			status, html(tr.Name), tr.Outcome, tr.Steps, html(tr.Final.String()), html(tr.Msg))
	}
	f(`</table></div>`)

	return nil
}

// RenderPage wraps the output of body in a complete HTML page.
func RenderPage(title string, cssFiles []string, out io.Writer, body func(io.Writer) error) error {
	if cssFiles == nil {
		cssFiles = []string{"/static/report.css"}
	}

	fmt.Fprintf(out, `<!DOCTYPE html>
<meta charset="utf-8">
<html>
  <head>
  <title>%s</title>
`, html(title))

	for _, cssFile := range cssFiles {
		fmt.Fprintf(out, "  <link href=\"%s\" rel=\"stylesheet\">\n", cssFile)
	}

	fmt.Fprintf(out, `
  </head>
  <body>
    <h1>%s</h1>
`, html(title))

	if err := body(out); err != nil {
		return err
	}

	fmt.Fprintf(out, `
  </body>
</html>
`)

	return nil
}

// ReadAndRenderTablePage loads a table from a file and writes its
// page.
func ReadAndRenderTablePage(filename string, ninputs, noutputs int, cssFiles []string, out io.Writer) error {
	src, err := ReadFileWithInlines(filename)
	if err != nil {
		return err
	}
	t, err := core.Load(string(src), ninputs, noutputs)
	if err != nil {
		return err
	}
	return RenderPage(filename, cssFiles, out, func(out io.Writer) error {
		return RenderTableHTML(t, out)
	})
}
