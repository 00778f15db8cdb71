//go:build linux

package render

import (
	"errors"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// _NET_WM_STATE client message actions.
const (
	netWMStateRemove = 0
	netWMStateAdd    = 1
	// sourceApplication marks the request as coming from a normal
	// application.
	sourceApplication = 1
)

var errNoPreviewWindow = errors.New("preview window not found")

// x11Hints talks to an EWMH window manager on behalf of the preview
// window. The connection and interned atoms are kept between calls.
type x11Hints struct {
	mu    sync.Mutex
	conn  *xgb.Conn
	root  xproto.Window
	atoms map[string]xproto.Atom
}

var hints = &x11Hints{}

// KeepAbove asks the window manager to keep the window titled title above
// other windows, or to stop doing so. The window must be mapped. Without
// an X server, as on Wayland without XWayland, it does nothing.
func KeepAbove(title string, above bool) error {
	return hints.keepAbove(title, above)
}

func (h *x11Hints) keepAbove(title string, above bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.connect(); err != nil {
		return nil
	}
	win, err := h.findWindow(title)
	if err != nil {
		return err
	}

	state, err := h.atom("_NET_WM_STATE")
	if err != nil {
		return err
	}
	stateAbove, err := h.atom("_NET_WM_STATE_ABOVE")
	if err != nil {
		return err
	}

	action := uint32(netWMStateRemove)
	if above {
		action = netWMStateAdd
	}
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   state,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{action, uint32(stateAbove), 0, sourceApplication, 0}),
	}
	// EWMH expects state changes on mapped windows as a message to the root.
	mask := uint32(xproto.EventMaskSubstructureRedirect | xproto.EventMaskSubstructureNotify)
	return xproto.SendEventChecked(h.conn, false, h.root, mask, string(ev.Bytes())).Check()
}

func (h *x11Hints) connect() error {
	if h.conn != nil {
		return nil
	}
	conn, err := xgb.NewConn()
	if err != nil {
		return err
	}
	setup := xproto.Setup(conn)
	if len(setup.Roots) == 0 {
		conn.Close()
		return errNoPreviewWindow
	}
	h.conn = conn
	h.root = setup.Roots[0].Root
	h.atoms = make(map[string]xproto.Atom)
	return nil
}

func (h *x11Hints) atom(name string) (xproto.Atom, error) {
	if a, ok := h.atoms[name]; ok {
		return a, nil
	}
	reply, err := xproto.InternAtom(h.conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, err
	}
	h.atoms[name] = reply.Atom
	return reply.Atom, nil
}

// findWindow looks the preview up by title in _NET_CLIENT_LIST, and falls
// back to the focused window for window managers without a client list.
func (h *x11Hints) findWindow(title string) (xproto.Window, error) {
	clients, err := h.windowList(h.root, "_NET_CLIENT_LIST")
	if err == nil {
		for _, win := range clients {
			if h.windowName(win) == title {
				return win, nil
			}
		}
	}

	focus, err := xproto.GetInputFocus(h.conn).Reply()
	if err != nil {
		return xproto.WindowNone, err
	}
	if focus.Focus == xproto.WindowNone || h.windowName(focus.Focus) != title {
		return xproto.WindowNone, errNoPreviewWindow
	}
	return focus.Focus, nil
}

func (h *x11Hints) windowList(win xproto.Window, prop string) ([]xproto.Window, error) {
	a, err := h.atom(prop)
	if err != nil {
		return nil, err
	}
	reply, err := xproto.GetProperty(h.conn, false, win, a, xproto.AtomWindow, 0, 1<<16).Reply()
	if err != nil {
		return nil, err
	}
	wins := make([]xproto.Window, 0, len(reply.Value)/4)
	for i := 0; i+4 <= len(reply.Value); i += 4 {
		wins = append(wins, xproto.Window(xgb.Get32(reply.Value[i:])))
	}
	return wins, nil
}

// windowName prefers the UTF-8 _NET_WM_NAME over the legacy WM_NAME.
func (h *x11Hints) windowName(win xproto.Window) string {
	if netName, err := h.atom("_NET_WM_NAME"); err == nil {
		if utf8, err := h.atom("UTF8_STRING"); err == nil {
			reply, err := xproto.GetProperty(h.conn, false, win, netName, utf8, 0, 1024).Reply()
			if err == nil && len(reply.Value) > 0 {
				return string(reply.Value)
			}
		}
	}
	reply, err := xproto.GetProperty(h.conn, false, win, xproto.AtomWmName, xproto.AtomString, 0, 1024).Reply()
	if err != nil {
		return ""
	}
	return string(reply.Value)
}

func (h *x11Hints) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conn != nil {
		h.conn.Close()
		h.conn = nil
	}
	h.atoms = nil
}

// CloseWindowHints drops the X11 connection used by KeepAbove.
func CloseWindowHints() {
	hints.close()
}
