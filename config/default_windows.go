package config

const (
	defaultEditorName    = "notepad"
	defaultEditorCommand = "notepad.exe"
)
