//go:build windows

package doctor

// The Windows console keeps its line mode; -setup restores raw mode itself.
func resetTerminal() {}
