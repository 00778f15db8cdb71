//go:build !linux

package render

import "github.com/hajimehoshi/ebiten/v2"

// KeepAbove uses Ebiten's floating window flag where there is no X11
// window manager to ask. The title is not needed since Ebiten owns the
// only window.
func KeepAbove(_ string, above bool) error {
	ebiten.SetWindowFloating(above)
	return nil
}

// CloseWindowHints is a no-op on non-Linux platforms.
func CloseWindowHints() {}
