package main

import (
	"encoding/json"
	"flag"
	"strconv"

	"github.com/odvcencio/earthcontrol/pkg/terminal"
	"github.com/odvcencio/earthcontrol/pkg/widget"
)

const titleWidth = 32

func runWidgetsCommand(args []string) error {
	fs := flag.NewFlagSet("widgets", flag.ContinueOnError)
	fs.SetOutput(stderr)
	asJSON := fs.Bool("json", false, "emit the registry as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	infos := widget.DefaultRegistry().Describe()
	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"widgets": infos})
	}

	out := terminal.NewWithOutput(stdout)
	out.Header("Registered widgets")
	rows := make([][]string, 0, len(infos))
	for i, info := range infos {
		key := info.StyleKey
		if key == "" {
			key = "-"
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			info.ID,
			terminal.Truncate(info.Title, titleWidth),
			string(info.Size),
			info.Position,
			key,
		})
	}
	out.Table([]string{"#", "ID", "TITLE", "SIZE", "POSITION", "STYLE"}, rows, 0)
	out.Dim("%d widgets; mount order follows the registry", len(infos))
	return nil
}
