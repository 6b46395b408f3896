package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"notewriter/panel"
	"notewriter/shutdown"
)

func runSimple(a *app, out io.Writer) int {
	ctx, stop := shutdown.Context(context.Background())
	defer stop()
	return unattended(ctx, a.launcher, a.pipeline, a.cfg.Editor.Name, out)
}

// unattended opens the editor, starts dictation and blocks until ctx ends.
func unattended(ctx context.Context, ed panel.Editor, d panel.Dictation, editorName string, out io.Writer) int {
	rule := strings.Repeat("=", 40)
	fmt.Fprintln(out, panel.Title+" - Simple Mode")
	fmt.Fprintln(out, rule)

	fmt.Fprintf(out, "Opening %s...\n", editorName)
	if !ed.EnsureOpen(ctx) {
		fmt.Fprintf(out, "Failed to open %s!\n", editorName)
		return 1
	}
	fmt.Fprintf(out, "%s opened successfully!\n", editorName)
	fmt.Fprintln(out, "Starting voice recognition...")

	d.Start()

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Listening for your speech...")
	fmt.Fprintln(out, "Press Ctrl+C to stop")
	fmt.Fprintln(out, rule)

	<-ctx.Done()

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Stopping...")
	d.Stop()
	fmt.Fprintln(out, "Stopped listening. Goodbye!")
	return 0
}
