// Command ncxlate translates a G-code program into a motion-primitive
// stream on stdout (or a file), pausing interactively for tool changes
// when asked.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"

	"github.com/tkellerer/ncxlate"
	"github.com/tkellerer/ncxlate/target"
	"github.com/tkellerer/ncxlate/viz"
)

var (
	format      = flag.String("format", "text", "output encoding: text or binary")
	output      = flag.String("output", "-", "output file, or - for stdout")
	interactive = flag.Bool("interactive", false, "block on stdin at each tool change instead of resuming immediately")
	visualize   = flag.Bool("viz", false, "open a window drawing the recorded toolpath after translation")
)

func main() {
	flag.Parse()
	defer glog.Flush()

	if flag.NArg() != 1 {
		glog.Fatalln("usage: ncxlate [flags] <file.nc>")
	}

	source, err := ncxlate.NewBlockSourceFromFile(flag.Arg(0))
	if err != nil {
		glog.Fatalf("reading %s: %v", flag.Arg(0), err)
	}

	out, closeOut, err := openOutput(*output)
	if err != nil {
		glog.Fatalln(err)
	}
	defer closeOut()

	axes := map[byte]bool{'X': true, 'Y': true, 'Z': true}
	recorder := target.NewRecorder(axes)

	var t ncxlate.Target = recorder
	if !*visualize {
		switch *format {
		case "text":
			t = target.NewTextWriter(out, axes)
		case "binary":
			t = target.NewBinaryWriter(out, axes)
		default:
			glog.Fatalf("unknown -format %q, want text or binary", *format)
		}
	}

	ip := ncxlate.NewInterpreter(source, t)
	if err := ip.Run(); err != nil {
		glog.Fatalf("translation failed: %v", err)
	}
	for ip.Modal.Pause {
		if err := handleToolChange(ip); err != nil {
			glog.Fatalln(err)
		}
		if err := ip.Resume(); err != nil {
			glog.Fatalf("translation failed: %v", err)
		}
	}

	if *visualize {
		viz.Show(recorder.Events, 1024, 768)
	}
}

func openOutput(path string) (*os.File, func(), error) {
	if path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

// handleToolChange reports the pending tool number for an M6 pause. A
// non-interactive run assumes the change happens instantly, matching the
// Interpreter's own Resume semantics; an interactive run blocks on stdin
// first, the same "operator confirms, then continues" shape as the
// teacher's debug console REPL.
func handleToolChange(ip *ncxlate.Interpreter) error {
	fmt.Printf("tool change requested: T%d\n", ip.Modal.NextTool)
	if !*interactive {
		return nil
	}
	fmt.Print("press enter once the tool change is complete... ")
	reader := bufio.NewReader(os.Stdin)
	_, err := reader.ReadString('\n')
	return err
}
