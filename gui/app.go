//go:build gui

// Package gui is the windowed control panel.
package gui

import (
	"context"
	"errors"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"notewriter/panel"
)

type App struct {
	ctl    *panel.Controller
	header string

	fyneApp fyne.App
	window  fyne.Window
	status  *canvas.Text
	input   *widget.Entry
	buttons struct {
		open, start, stop, typeText *widget.Button
	}
	busy bool
}

func NewApp(ctl *panel.Controller, header string) *App {
	return &App{ctl: ctl, header: header}
}

// Run builds the window and blocks in the fyne event loop. It must be
// called on the main thread.
func Run(a *App) error {
	a.fyneApp = app.NewWithID("io.notewriter.panel")
	a.fyneApp.Settings().SetTheme(panelTheme{})
	a.window = a.fyneApp.NewWindow(panel.Title)

	title := canvas.NewText(panel.Title, statusColor(""))
	title.TextSize = 18
	title.TextStyle = fyne.TextStyle{Bold: true}
	title.Alignment = fyne.TextAlignCenter

	a.status = canvas.NewText("", statusColor(panel.Green))
	a.status.Alignment = fyne.TextAlignCenter

	ctx := context.Background()
	a.buttons.open = widget.NewButton("Open Editor", func() {
		a.act(func() panel.Outcome { return a.ctl.OpenEditor(ctx) })
	})
	a.buttons.start = widget.NewButton("Start Listening", func() { a.act(a.ctl.StartListening) })
	a.buttons.stop = widget.NewButton("Stop Listening", func() { a.act(a.ctl.StopListening) })
	a.buttons.open.Importance = widget.SuccessImportance
	a.buttons.start.Importance = widget.HighImportance
	a.buttons.stop.Importance = widget.DangerImportance

	a.input = widget.NewMultiLineEntry()
	a.input.SetMinRowsVisible(8)
	a.buttons.typeText = widget.NewButton("Type This Text", func() {
		text := a.input.Text
		a.act(func() panel.Outcome { return a.ctl.TypeText(text) })
	})
	a.buttons.typeText.Importance = widget.WarningImportance

	header := widget.NewLabel(a.header)
	header.Alignment = fyne.TextAlignCenter

	content := container.NewBorder(
		container.NewVBox(
			title,
			header,
			a.status,
			container.NewCenter(container.NewHBox(a.buttons.open, a.buttons.start, a.buttons.stop)),
			widget.NewLabelWithStyle("Manual Text Input:", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		),
		container.NewVBox(
			container.NewCenter(a.buttons.typeText),
			widget.NewLabel(panel.Instructions),
		),
		nil, nil,
		a.input,
	)
	a.window.SetContent(container.NewPadded(content))
	a.window.Resize(fyne.NewSize(500, 400))
	a.render()

	a.window.ShowAndRun()
	return nil
}

// act runs fn off the UI goroutine; OpenEditor and TypeText block for
// seconds.
func (a *App) act(fn func() panel.Outcome) {
	a.busy = true
	a.render()
	go func() {
		out := fn()
		fyne.Do(func() {
			a.busy = false
			if out.ClearInput {
				a.input.SetText("")
			}
			a.render()
			a.show(out)
		})
	}()
}

func (a *App) show(out panel.Outcome) {
	if out.Kind == panel.Error {
		d := dialog.NewError(errors.New(out.Message), a.window)
		d.Show()
		return
	}
	dialog.ShowInformation(out.Title, out.Message, a.window)
}

func setEnabled(b *widget.Button, on bool) {
	if on {
		b.Enable()
	} else {
		b.Disable()
	}
}

func (a *App) render() {
	s := a.ctl.State()
	a.status.Text = s.StatusLine()
	a.status.Color = statusColor(s.Color)
	a.status.Refresh()

	setEnabled(a.buttons.open, !a.busy)
	setEnabled(a.buttons.start, !a.busy && s.CanStart())
	setEnabled(a.buttons.stop, !a.busy && s.CanStop())
	setEnabled(a.buttons.typeText, !a.busy)
}
