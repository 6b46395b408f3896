//go:build linux

package main

import "os"

func onMainThread(fn func()) { fn() }

func main() {
	os.Exit(run())
}
