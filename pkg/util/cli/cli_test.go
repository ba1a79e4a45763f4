package cli

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestPrinters(t *testing.T) {
	buf := &bytes.Buffer{}
	prev := Output
	Output = buf
	color.NoColor = true
	defer func() {
		Output = prev
		Silent = false
		Verbose = false
	}()

	Successf("done %v\n", 1)
	Verboseln("hidden")
	Verbose = true
	Verboseln("shown")
	Silent = true
	Warningln("hidden")
	Failureln("failed")

	assert.Equal(t, "[✓] done 1\n[•] shown\n[x] failed\n", buf.String())
}
