package config

const (
	defaultEditorName    = "gedit"
	defaultEditorCommand = "gedit"
)
