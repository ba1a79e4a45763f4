// Package cli prints status messages for the command line.
//
// The printers are safe to use from multiple goroutines.
package cli

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

// Output is where the messages are written.
var Output io.Writer = os.Stdout

var mu sync.Mutex

func writeln(s string) {
	write(s + "\n")
}

func write(s string) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprint(Output, s)
}

// Silent silences all the non-error messages
var Silent bool

// Verbose allows printing info messages.
var Verbose bool

// Warningln formats warning message
func Warningln(content ...interface{}) {
	if Silent {
		return
	}
	writeln("[" + color.YellowString("!") + "] " + fmt.Sprint(content...))
}

// Successln formats success message
func Successln(content ...interface{}) {
	if Silent {
		return
	}
	writeln("[" + color.GreenString("✓") + "] " + fmt.Sprint(content...))
}

// Infoln formats info message
func Infoln(content ...interface{}) {
	if Silent {
		return
	}
	writeln("[" + color.BlueString("•") + "] " + fmt.Sprint(content...))
}

// Verboseln formats info message
func Verboseln(content ...interface{}) {
	if Silent || !Verbose {
		return
	}
	writeln("[" + color.BlueString("•") + "] " + fmt.Sprint(content...))
}

// Failureln formats failure message
func Failureln(content ...interface{}) {
	writeln("[" + color.RedString("x") + "] " + fmt.Sprint(content...))
}

// Warningf formats warning message
func Warningf(format string, values ...interface{}) {
	if Silent {
		return
	}
	write("[" + color.YellowString("!") + "] " + fmt.Sprintf(format, values...))
}

// Successf formats success message
func Successf(format string, values ...interface{}) {
	if Silent {
		return
	}
	write("[" + color.GreenString("✓") + "] " + fmt.Sprintf(format, values...))
}

// Infof formats info message
func Infof(format string, values ...interface{}) {
	if Silent {
		return
	}
	write("[" + color.BlueString("•") + "] " + fmt.Sprintf(format, values...))
}

// Verbosef formats info message
func Verbosef(format string, values ...interface{}) {
	if Silent || !Verbose {
		return
	}
	write("[" + color.BlueString("•") + "] " + fmt.Sprintf(format, values...))
}

// Failuref formats failure message
func Failuref(format string, values ...interface{}) {
	write("[" + color.RedString("x") + "] " + fmt.Sprintf(format, values...))
}
