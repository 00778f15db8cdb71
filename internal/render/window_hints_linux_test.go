//go:build linux

package render

import "testing"

func TestKeepAboveWithoutDisplay(t *testing.T) {
	t.Setenv("DISPLAY", ":pagesketch-none")
	h := &x11Hints{}
	if err := h.keepAbove("pagesketch", true); err != nil {
		t.Errorf("keepAbove() = %v, want nil without an X server", err)
	}
	if h.conn != nil {
		t.Error("conn set after a failed connect")
	}
	h.close()
}

func TestCloseWindowHintsTwice(t *testing.T) {
	h := &x11Hints{}
	h.close()
	h.close()
	if h.conn != nil || h.atoms != nil {
		t.Errorf("close() left %+v", h)
	}
	CloseWindowHints()
}
