package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/Comcast/fsmgrader/core"
	"github.com/Comcast/fsmgrader/tools"
	"github.com/Comcast/fsmgrader/turing"

	"github.com/jsccast/yaml"
)

var Mods = map[string]Mod{
	"analyze": &Analyzer{},
	"canon":   &Canonicalizer{},
	"check":   &Checker{},
	"dot":     &Grapher{},
	"html":    &Pager{},
	"mermaid": &Mermaider{},
}

// ModNames returns the subcommand names in order.
func ModNames() []string {
	acc := make([]string, 0, len(Mods))
	for name := range Mods {
		acc = append(acc, name)
	}
	sort.Strings(acc)
	return acc
}

var ErrTablesOnly = errors.New("only truth tables are supported")

type Mod interface {
	F(*Source, io.Writer) error
	Doc() string
	Flags() *flag.FlagSet
}

// Input says where to find the source and how to read it.
type Input struct {
	Filename string

	// Dialect is "table" or "turing".
	Dialect string

	NumInputs  int
	NumOutputs int
}

func (in *Input) AddFlags(fs *flag.FlagSet) {
	fs.StringVar(&in.Filename, "f", "-", "source filename ('-' for stdin)")
	fs.StringVar(&in.Dialect, "t", "table", "dialect: table or turing")
	fs.IntVar(&in.NumInputs, "ni", 3, "number of table inputs")
	fs.IntVar(&in.NumOutputs, "no", 5, "number of table outputs")
}

// Source is a loaded table or program.
type Source struct {
	Name    string
	Text    string
	Table   *core.Table
	Program *turing.Program

	// Diagnostics from loading a program.  Load() fails only for
	// tables.
	Diagnostics turing.Diagnostics
}

// Load reads and parses the source.
//
// '%inline("NAME")' is expanded relative to the source's directory
// (or the current directory for stdin).
func (in *Input) Load() (*Source, error) {
	var (
		bs  []byte
		err error
	)
	if in.Filename == "-" || in.Filename == "" {
		bs, err = tools.ReadAllWithInlines(os.Stdin, ".")
	} else {
		bs, err = tools.ReadFileWithInlines(in.Filename)
	}
	if err != nil {
		return nil, err
	}

	s := &Source{
		Name: in.Filename,
		Text: string(bs),
	}

	switch in.Dialect {
	case "table", "tt":
		if s.Table, err = core.Load(s.Text, in.NumInputs, in.NumOutputs); err != nil {
			return nil, err
		}
	case "turing", "tm":
		s.Program, s.Diagnostics = turing.Load(s.Text)
	default:
		return nil, fmt.Errorf("unknown dialect '%s'", in.Dialect)
	}

	return s, nil
}

// program returns the program or the diagnostics as an error.
func (s *Source) program() (*turing.Program, error) {
	if err := s.Diagnostics.Err(); err != nil {
		return nil, err
	}
	return s.Program, nil
}

type nopCloser struct {
	io.Writer
}

func (c nopCloser) Close() error {
	return nil
}

type Analyzer struct {
}

func (m *Analyzer) F(s *Source, out io.Writer) error {
	var (
		a   interface{}
		err error
	)
	if s.Table != nil {
		if a, err = tools.Analyze(s.Table); err != nil {
			return err
		}
	} else {
		p, err := s.program()
		if err != nil {
			return err
		}
		a = tools.AnalyzeProgram(p)
	}
	bs, err := yaml.Marshal(&a)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s\n", bs)

	return nil
}

func (m *Analyzer) Doc() string {
	return "Reports states, orphans, overlapping rows, and uncovered inputs."
}

func (m *Analyzer) Flags() *flag.FlagSet {
	return flag.NewFlagSet("analyze", flag.ExitOnError)
}

type Canonicalizer struct {
}

func (m *Canonicalizer) F(s *Source, out io.Writer) error {
	if s.Table == nil {
		return ErrTablesOnly
	}
	_, err := io.WriteString(out, s.Table.String())
	return err
}

func (m *Canonicalizer) Doc() string {
	return "Writes the table with one space between cells."
}

func (m *Canonicalizer) Flags() *flag.FlagSet {
	return flag.NewFlagSet("canon", flag.ExitOnError)
}

type Checker struct {
}

func (m *Checker) F(s *Source, out io.Writer) error {
	if s.Table != nil {
		fmt.Fprintf(out, "ok: %d rows, %d states\n", len(s.Table.Rows), len(s.Table.States()))
		return nil
	}
	for _, d := range s.Diagnostics {
		fmt.Fprintf(out, "%s:%s\n", s.Name, d.Error())
	}
	if err := s.Diagnostics.Err(); err != nil {
		return fmt.Errorf("%d problems", len(s.Diagnostics))
	}
	fmt.Fprintf(out, "ok: checksum %d\n", s.Program.Checksum)
	return nil
}

func (m *Checker) Doc() string {
	return "Reports every problem in the source."
}

func (m *Checker) Flags() *flag.FlagSet {
	return flag.NewFlagSet("check", flag.ExitOnError)
}

type Grapher struct {
	OutputFilename string
	From, To       string
	PNG            bool
}

func (m *Grapher) F(s *Source, out io.Writer) error {
	if m.PNG {
		if s.Table == nil {
			return ErrTablesOnly
		}
		name, err := tools.PNG(s.Table, m.OutputFilename, m.From, m.To)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s\n", name)
		return nil
	}

	f, err := os.Create(m.OutputFilename + ".dot")
	if err != nil {
		return err
	}

	// Dot will Close f.
	if s.Table != nil {
		return tools.Dot(s.Table, f, m.From, m.To)
	}
	p, err := s.program()
	if err != nil {
		f.Close()
		return err
	}
	return tools.DotProgram(p, f, m.From, m.To)
}

func (m *Grapher) Doc() string {
	return "Writes a Graphviz graph (and optionally renders it as a PNG)."
}

func (m *Grapher) Flags() *flag.FlagSet {
	fs := flag.NewFlagSet("dot", flag.ExitOnError)
	fs.StringVar(&m.OutputFilename, "o", "spec", "output basename")
	fs.StringVar(&m.From, "from", "", "highlight the transition from this state")
	fs.StringVar(&m.To, "to", "", "highlight the transition to this state")
	fs.BoolVar(&m.PNG, "png", false, "also run dot to make a PNG")
	return fs
}

type Mermaider struct {
	Current  string
	Patterns bool
}

func (m *Mermaider) F(s *Source, out io.Writer) error {
	opts := *tools.DefaultMermaidOpts
	opts.ShowPatterns = m.Patterns
	if s.Table != nil {
		return tools.Mermaid(s.Table, nopCloser{out}, &opts, m.Current)
	}
	p, err := s.program()
	if err != nil {
		return err
	}
	return tools.MermaidProgram(p, nopCloser{out}, &opts, m.Current)
}

func (m *Mermaider) Doc() string {
	return "Writes a Mermaid state diagram."
}

func (m *Mermaider) Flags() *flag.FlagSet {
	fs := flag.NewFlagSet("mermaid", flag.ExitOnError)
	fs.StringVar(&m.Current, "c", "", "state to highlight")
	fs.BoolVar(&m.Patterns, "p", true, "label edges with patterns")
	return fs
}

type Pager struct {
	CSS   string
	Limit int
}

func (m *Pager) F(s *Source, out io.Writer) error {
	var css []string
	if m.CSS != "" {
		css = []string{m.CSS}
	}
	if s.Table != nil {
		return tools.RenderPage(s.Name, css, out, func(out io.Writer) error {
			return tools.RenderTableHTML(s.Table, out)
		})
	}
	p, err := s.program()
	if err != nil {
		return err
	}
	r, err := turing.Grade(context.Background(), p, m.Limit)
	if err != nil {
		return err
	}
	return tools.RenderPage(s.Name, css, out, func(out io.Writer) error {
		return tools.RenderReportHTML(r, out)
	})
}

func (m *Pager) Doc() string {
	return "Writes an HTML page: a table's rows, or a program's grading report."
}

func (m *Pager) Flags() *flag.FlagSet {
	fs := flag.NewFlagSet("html", flag.ExitOnError)
	fs.StringVar(&m.CSS, "css", "", "stylesheet URL")
	fs.IntVar(&m.Limit, "limit", turing.DefaultLimit, "step limit per tape")
	return fs
}
