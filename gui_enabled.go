//go:build gui

package main

import (
	"notewriter/gui"
	"notewriter/log"
)

func runPanel(a *app) int {
	var err error
	onMainThread(func() {
		err = gui.Run(gui.NewApp(a.panel, a.providerLine()))
	})
	if err != nil {
		log.Errorf("GUI error: %v", err)
		return 1
	}
	return 0
}
