package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"sbs-player/player"
)

// selectionForm is the fyne version of the selection dialog
type selectionForm struct {
	leftFolder   *widget.Entry
	rightFolder  *widget.Entry
	leftCaption  *widget.Entry
	rightCaption *widget.Entry

	leftBrowse  *widget.Button
	rightBrowse *widget.Button
	submit      *widget.Button
	cancel      *widget.Button

	content  fyne.CanvasObject
	answered bool
	onResult func(Result)
}

// newSelectionForm builds the form. onResult fires at most once.
func newSelectionForm(win fyne.Window, onResult func(Result)) *selectionForm {
	f := &selectionForm{
		leftFolder:   widget.NewEntry(),
		rightFolder:  widget.NewEntry(),
		leftCaption:  widget.NewEntry(),
		rightCaption: widget.NewEntry(),
		onResult:     onResult,
	}

	f.leftBrowse = widget.NewButton("Browse", func() {
		browseFolder(win, "Select Left Folder", f.leftFolder)
	})
	f.rightBrowse = widget.NewButton("Browse", func() {
		browseFolder(win, "Select Right Folder", f.rightFolder)
	})
	f.submit = widget.NewButton("Submit", func() {
		f.finish(Confirmed{Selection: f.selection()})
	})
	f.submit.Importance = widget.HighImportance
	f.cancel = widget.NewButton("Cancel", func() {
		f.finish(Cancelled{})
	})

	row := func(label string, entry *widget.Entry, browse *widget.Button) fyne.CanvasObject {
		if browse == nil {
			return container.NewBorder(nil, nil, widget.NewLabel(label), nil, entry)
		}
		return container.NewBorder(nil, nil, widget.NewLabel(label), browse, entry)
	}

	f.content = container.NewVBox(
		row("Left Folder:", f.leftFolder, f.leftBrowse),
		row("Right Folder:", f.rightFolder, f.rightBrowse),
		row("Left Caption:", f.leftCaption, nil),
		row("Right Caption:", f.rightCaption, nil),
		widget.NewSeparator(),
		container.NewHBox(f.submit, f.cancel),
	)
	return f
}

func (f *selectionForm) selection() player.Selection {
	return player.Selection{
		LeftFolder:   f.leftFolder.Text,
		RightFolder:  f.rightFolder.Text,
		LeftCaption:  f.leftCaption.Text,
		RightCaption: f.rightCaption.Text,
	}
}

func (f *selectionForm) finish(r Result) {
	if f.answered {
		return
	}
	f.answered = true
	f.submit.Disable()
	f.cancel.Disable()
	f.onResult(r)
}

// browseFolder opens the folder picker and fills entry with the choice.
// The picker starts at the folder already typed, if any.
func browseFolder(win fyne.Window, title string, entry *widget.Entry) {
	fd := dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			return // User cancelled
		}
		entry.SetText(localPath(uri))
	}, win)
	fd.SetTitleText(title)

	if entry.Text != "" {
		if listable, err := storage.ListerForURI(storage.NewFileURI(entry.Text)); err == nil {
			fd.SetLocation(listable)
		}
	}
	fd.Show()
}

// localPath converts a file URI into a native path
func localPath(uri fyne.URI) string {
	path := uri.Path()
	// On Windows, remove leading slash from /C:/...
	if len(path) > 2 && path[0] == '/' && path[2] == ':' {
		path = path[1:]
	}
	return path
}
