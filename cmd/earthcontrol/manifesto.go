package main

import (
	"flag"
	"fmt"

	"github.com/odvcencio/earthcontrol/pkg/terminal"
	"github.com/odvcencio/earthcontrol/pkg/widget"
)

func runManifestoCommand(args []string) error {
	fs := flag.NewFlagSet("manifesto", flag.ContinueOnError)
	fs.SetOutput(stderr)
	asHTML := fs.Bool("html", false, "print the rendered HTML fragment")
	raw := fs.Bool("raw", false, "print the markdown source")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch {
	case *asHTML:
		body, err := widget.FullHTML()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdout, body)
		return err
	case *raw:
		_, err := fmt.Fprintln(stdout, widget.FullText())
		return err
	}
	return terminal.NewWithOutput(stdout).Markdown(widget.FullText())
}
