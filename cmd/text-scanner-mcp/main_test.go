package main

import (
	"bytes"
	"flag"
	"strings"
	"testing"
)

func TestUsage_DescribesCameraSources(t *testing.T) {
	var buf bytes.Buffer
	flag.CommandLine.SetOutput(&buf)
	defer flag.CommandLine.SetOutput(nil)

	usage()
	out := buf.String()

	for _, want := range []string{"--config", "screen:x,y,w,h", "dir:<path>", "device:<n>", "-tags gocv"} {
		if !strings.Contains(out, want) {
			t.Errorf("usage missing %q", want)
		}
	}
}
