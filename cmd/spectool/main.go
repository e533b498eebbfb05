package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Comcast/fsmgrader/tools/expect"
)

func main() {

	if len(os.Args) < 2 {
		Usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "sessiontojson":
		pretty := false

		switch len(os.Args) {
		case 2:
		case 3:
			switch os.Args[2] {
			case "-p":
				pretty = true
			default:
				fmt.Fprintf(os.Stderr, "unsupported args: %v\n", os.Args[1:])
				os.Exit(1)
			}
		default:
			fmt.Fprintf(os.Stderr, "unsupported args: %v\n", os.Args[1:])
			os.Exit(1)
		}

		bs, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}

		s, err := expect.ParseSession(bs)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}

		if pretty {
			bs, err = json.MarshalIndent(&s, "", "  ")
		} else {
			bs, err = json.Marshal(&s)
		}

		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}

		if _, err = os.Stdout.Write(bs); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}

	default:

		mod, have := Mods[os.Args[1]]
		if !have {
			fmt.Printf("Unknown subcommand \"%s\"\n", os.Args[1])
			Usage()
			os.Exit(1)
		}

		fs := mod.Flags()
		in := &Input{}
		in.AddFlags(fs)
		if err := fs.Parse(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}

		src, err := in.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}

		if err := mod.F(src, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
}

func Usage() {
	fmt.Printf("Subcommands:\n\n")
	for _, name := range ModNames() {
		mod := Mods[name]
		fs := mod.Flags()
		(&Input{}).AddFlags(fs)
		fs.Usage()
		fmt.Println("  " + mod.Doc())
		fmt.Println()
	}
	fmt.Println("Usage of sessiontojson:")
	fmt.Printf("  -p    pretty-print\n\n")
}
