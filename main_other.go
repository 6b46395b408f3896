//go:build !linux

package main

import (
	"os"
	"runtime"

	"golang.design/x/hotkey/mainthread"
)

func init() {
	runtime.LockOSThread()
}

// onMainThread runs fn on the thread that called main. Cocoa and Win32
// window loops refuse to run anywhere else.
func onMainThread(fn func()) { mainthread.Call(fn) }

func main() {
	code := 0
	mainthread.Init(func() { code = run() })
	os.Exit(code)
}
