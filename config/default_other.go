//go:build !linux && !windows

package config

const (
	defaultEditorName    = "TextEdit"
	defaultEditorCommand = "/System/Applications/TextEdit.app/Contents/MacOS/TextEdit"
)
