//go:build !gui

package main

func runPanel(a *app) int {
	return runTUI(a)
}
