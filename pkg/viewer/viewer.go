// Package viewer shows an image in a desktop window.
package viewer

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
)

// Show opens a window with img at its natural size and blocks until the
// window is closed.
func Show(title string, img image.Image) {
	a := app.New()
	w := a.NewWindow(title)

	view := canvas.NewImageFromImage(img)
	view.FillMode = canvas.ImageFillOriginal
	view.ScaleMode = canvas.ImageScalePixels

	b := img.Bounds()
	w.SetContent(view)
	w.Resize(fyne.NewSize(float32(b.Dx()), float32(b.Dy())))
	w.ShowAndRun()
}
