// circlepack packs rectangles into the smallest enclosing circle.
//
// Build:
//   go build -o circlepack ./cmd/circlepack
//
// Usage:
//   circlepack solve 10,10 10,10 10,10 10,10
//   circlepack solve --json problem.json --export png,svg,dxf
//   circlepack compare 30,10 20,20 --pad-inner 1
//   circlepack gcode packing.circlepack.json --profile Grbl

package main

import (
	"os"

	"github.com/piwi3910/circlepack/internal/cli"
	"github.com/piwi3910/circlepack/internal/ui"
)

// Set via -ldflags "-X main.version=... -X main.commit=... -X main.date=...".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersion(version, commit, date)
	if err := cli.Execute(cli.WithGUI(ui.ShowResult)); err != nil {
		os.Exit(1)
	}
}
