package lua

import (
	"fmt"
	"math"
	"strings"

	rt "github.com/arnodel/golua/runtime"

	"github.com/opd-ai/go-pagesketch/internal/document"
	"github.com/opd-ai/go-pagesketch/internal/geom"
	"github.com/opd-ai/go-pagesketch/internal/layout"
	"github.com/opd-ai/go-pagesketch/internal/sketch"
)

// DefaultFrameRate is the draw rate used by loop() without an argument.
const DefaultFrameRate = 25.0

// Bindings exposes a sketch session to Lua as global functions and
// constants. The session is driven only from Lua calls, so Bindings is
// not safe for concurrent use outside the runtime lock.
type Bindings struct {
	runtime *SketchRuntime
	session *sketch.Session

	looping   bool
	frameRate float64
	err       error
}

// NewBindings creates Bindings and registers them in runtime.
func NewBindings(runtime *SketchRuntime, session *sketch.Session) (*Bindings, error) {
	if runtime == nil {
		return nil, ErrNilRuntime
	}
	if session == nil {
		return nil, ErrNilSession
	}

	b := &Bindings{
		runtime:   runtime,
		session:   session,
		frameRate: DefaultFrameRate,
	}
	b.registerFunctions()
	b.registerConstants()

	runtime.SetGlobal("width", rt.FloatValue(session.Width()))
	runtime.SetGlobal("height", rt.FloatValue(session.Height()))
	session.OnChange(func(w, h float64) {
		runtime.setGlobal("width", rt.FloatValue(w))
		runtime.setGlobal("height", rt.FloatValue(h))
	})
	return b, nil
}

// Looping reports whether the script asked for repeated draw() calls.
func (b *Bindings) Looping() bool { return b.looping }

// FrameRate returns the requested draw rate in frames per second.
func (b *Bindings) FrameRate() float64 { return b.frameRate }

// TakeError returns the first fatal sketch error raised since the last
// call and clears it. Lua wraps errors returned from Go functions, so the
// run loop uses this to recover the typed error.
func (b *Bindings) TakeError() error {
	err := b.err
	b.err = nil
	return err
}

// fail records err as the run's fatal error and raises it in Lua.
func (b *Bindings) fail(err error) (rt.Cont, error) {
	if b.err == nil {
		b.err = err
	}
	return nil, err
}

func (b *Bindings) registerFunctions() {
	// Transform stack
	b.runtime.SetGoFunction("pushMatrix", b.pushMatrix, 0, true)
	b.runtime.SetGoFunction("popMatrix", b.popMatrix, 0, true)
	b.runtime.SetGoFunction("resetMatrix", b.resetMatrix, 0, true)
	b.runtime.SetGoFunction("printMatrix", b.printMatrix, 0, true)
	b.runtime.SetGoFunction("applyMatrix", b.applyMatrix, 1, true)
	b.runtime.SetGoFunction("translate", b.translate, 2, true)
	b.runtime.SetGoFunction("rotate", b.rotate, 1, true)
	b.runtime.SetGoFunction("scale", b.scale, 1, true)

	// Modes
	b.runtime.SetGoFunction("canvasMode", b.canvasMode, 0, true)
	b.runtime.SetGoFunction("rectMode", b.rectMode, 0, true)
	b.runtime.SetGoFunction("ellipseMode", b.ellipseMode, 0, true)
	b.runtime.SetGoFunction("imageMode", b.imageMode, 0, true)
	b.runtime.SetGoFunction("textAlign", b.textAlign, 0, true)
	b.runtime.SetGoFunction("units", b.units, 0, true)

	// Drawing
	b.runtime.SetGoFunction("rect", b.rect, 4, true)
	b.runtime.SetGoFunction("ellipse", b.ellipse, 4, true)
	b.runtime.SetGoFunction("line", b.line, 4, true)
	b.runtime.SetGoFunction("text", b.text, 5, true)
	b.runtime.SetGoFunction("image", b.image, 3, true)
	b.runtime.SetGoFunction("transformImage", b.transformImage, 5, true)

	// Item transforms
	b.runtime.SetGoFunction("itemX", b.itemX, 1, true)
	b.runtime.SetGoFunction("itemY", b.itemY, 1, true)
	b.runtime.SetGoFunction("itemWidth", b.itemWidth, 1, true)
	b.runtime.SetGoFunction("itemHeight", b.itemHeight, 1, true)
	b.runtime.SetGoFunction("itemPosition", b.itemPosition, 1, true)
	b.runtime.SetGoFunction("itemSize", b.itemSize, 1, true)
	b.runtime.SetGoFunction("bounds", b.bounds, 1, true)

	// Pages
	b.runtime.SetGoFunction("page", b.page, 0, true)
	b.runtime.SetGoFunction("addPage", b.addPage, 0, true)
	b.runtime.SetGoFunction("removePage", b.removePage, 0, true)
	b.runtime.SetGoFunction("nextPage", b.nextPage, 0, true)
	b.runtime.SetGoFunction("previousPage", b.previousPage, 0, true)
	b.runtime.SetGoFunction("pageCount", b.pageCount, 0, true)
	b.runtime.SetGoFunction("pageNumber", b.pageNumber, 0, true)

	// Environment
	b.runtime.SetGoFunction("delay", b.delay, 1, true)
	b.runtime.SetGoFunction("loop", b.loop, 0, true)
	b.runtime.SetGoFunction("noLoop", b.noLoop, 0, true)
	b.runtime.SetGoFunction("println", b.println, 0, true)
	b.runtime.SetGoFunction("radians", b.radians, 1, true)
	b.runtime.SetGoFunction("degrees", b.degrees, 1, true)
	b.runtime.SetGoFunction("nf", b.nf, 3, true)
	b.runtime.SetGoFunction("nfs", b.nfs, 3, true)
	b.runtime.SetGoFunction("nfp", b.nfp, 3, true)
}

func (b *Bindings) registerConstants() {
	for _, m := range []layout.CanvasMode{layout.Paper, layout.Margin, layout.Bleed, layout.FacingPages} {
		b.runtime.SetGlobal(constName(m.String()), rt.StringValue(m.String()))
	}
	for _, m := range []layout.ShapeMode{layout.Corner, layout.Corners, layout.Center, layout.Radius} {
		b.runtime.SetGlobal(constName(m.String()), rt.StringValue(m.String()))
	}
	for _, u := range []document.Units{document.Points, document.Pixels, document.Centimeters, document.Millimeters, document.Inches} {
		b.runtime.SetGlobal(constName(u.String()), rt.StringValue(u.String()))
	}
	for _, j := range []document.Justification{
		document.LeftAlign, document.CenterAlign, document.RightAlign,
		document.LeftJustified, document.CenterJustified, document.RightJustified, document.FullyJustified,
	} {
		b.runtime.SetGlobal(constName(j.String()), rt.StringValue(j.String()))
	}

	b.runtime.SetGlobal("AT_END", rt.StringValue("at_end"))
	b.runtime.SetGlobal("AT_BEGINNING", rt.StringValue("at_beginning"))
	b.runtime.SetGlobal("BEFORE", rt.StringValue("before"))
	b.runtime.SetGlobal("AFTER", rt.StringValue("after"))

	b.runtime.SetGlobal("TOP_ALIGN", rt.StringValue("top"))
	b.runtime.SetGlobal("CENTER_VERTICAL", rt.StringValue("center"))
	b.runtime.SetGlobal("BOTTOM_ALIGN", rt.StringValue("bottom"))
	b.runtime.SetGlobal("JUSTIFY_VERTICAL", rt.StringValue("justify"))

	b.runtime.SetGlobal("PI", rt.FloatValue(math.Pi))
	b.runtime.SetGlobal("HALF_PI", rt.FloatValue(math.Pi/2))
	b.runtime.SetGlobal("QUARTER_PI", rt.FloatValue(math.Pi/4))
	b.runtime.SetGlobal("TWO_PI", rt.FloatValue(2*math.Pi))
}

// constName turns a script name such as "facing_pages" into FACING_PAGES.
func constName(s string) string {
	return strings.ToUpper(s)
}

// --- Transform stack ---

func (b *Bindings) pushMatrix(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	b.session.PushMatrix()
	return c.Next(), nil
}

func (b *Bindings) popMatrix(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	if err := b.session.PopMatrix(); err != nil {
		return b.fail(err)
	}
	return c.Next(), nil
}

func (b *Bindings) resetMatrix(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	b.session.ResetMatrix()
	return c.Next(), nil
}

func (b *Bindings) printMatrix(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	b.session.PrintMatrix()
	return c.Next(), nil
}

// applyMatrix handles applyMatrix(a, b, c, d, e, f) and applyMatrix({a, b, c, d, e, f}).
func (b *Bindings) applyMatrix(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	args := getAllArgs(c)
	var vals [6]float64
	if len(args) > 0 {
		if tbl, ok := args[0].TryTable(); ok {
			for i := range vals {
				v := tbl.Get(rt.IntValue(int64(i + 1)))
				f, err := getFloatArg([]rt.Value{v}, 0)
				if err != nil {
					return nil, fmt.Errorf("applyMatrix: element %d: %w", i+1, err)
				}
				vals[i] = f
			}
			if err := b.session.ApplyMatrix(geom.NewMatrix(vals[0], vals[1], vals[2], vals[3], vals[4], vals[5])); err != nil {
				return b.fail(err)
			}
			return c.Next(), nil
		}
	}
	fs, err := getFloatArgs(args, 0, "a", "b", "c", "d", "e", "f")
	if err != nil {
		return nil, fmt.Errorf("applyMatrix: %w", err)
	}
	if err := b.session.ApplyMatrix(geom.NewMatrix(fs[0], fs[1], fs[2], fs[3], fs[4], fs[5])); err != nil {
		return b.fail(err)
	}
	return c.Next(), nil
}

func (b *Bindings) translate(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	args := getAllArgs(c)
	tx, err := getFloatArg(args, 0)
	if err != nil {
		return nil, fmt.Errorf("translate: tx: %w", err)
	}
	ty, err := getFloatArg(args, 1)
	if err != nil {
		return nil, fmt.Errorf("translate: ty: %w", err)
	}
	b.session.Translate(tx, ty)
	return c.Next(), nil
}

func (b *Bindings) rotate(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	angle, err := getFloatArg(getAllArgs(c), 0)
	if err != nil {
		return nil, fmt.Errorf("rotate: %w", err)
	}
	b.session.Rotate(angle)
	return c.Next(), nil
}

// scale handles scale(s) and scale(sx, sy).
func (b *Bindings) scale(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	args := getAllArgs(c)
	sx, err := getFloatArg(args, 0)
	if err != nil {
		return nil, fmt.Errorf("scale: sx: %w", err)
	}
	sy := sx
	if hasArg(args, 1) {
		if sy, err = getFloatArg(args, 1); err != nil {
			return nil, fmt.Errorf("scale: sy: %w", err)
		}
	}
	b.session.Scale(sx, sy)
	return c.Next(), nil
}

// --- Modes ---

// canvasMode handles canvasMode([mode]) and returns the current mode.
func (b *Bindings) canvasMode(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	args := getAllArgs(c)
	if hasArg(args, 0) {
		name, err := getStringArg(args, 0)
		if err != nil {
			return nil, fmt.Errorf("canvasMode: %w", err)
		}
		m, err := layout.ParseCanvasMode(name)
		if err != nil {
			return b.fail(&sketch.FatalError{Op: "canvasMode", Err: err})
		}
		if err := b.session.SetCanvasMode(m); err != nil {
			return b.fail(err)
		}
	}
	return c.PushingNext1(t.Runtime, rt.StringValue(b.session.CanvasMode().String())), nil
}

func (b *Bindings) shapeMode(t *rt.Thread, c *rt.GoCont, op string, get func() layout.ShapeMode, set func(layout.ShapeMode) error) (rt.Cont, error) {
	args := getAllArgs(c)
	if hasArg(args, 0) {
		name, err := getStringArg(args, 0)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		m, err := layout.ParseShapeMode(name)
		if err != nil {
			return b.fail(&sketch.FatalError{Op: op, Err: err})
		}
		if err := set(m); err != nil {
			return b.fail(err)
		}
	}
	return c.PushingNext1(t.Runtime, rt.StringValue(get().String())), nil
}

func (b *Bindings) rectMode(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	return b.shapeMode(t, c, "rectMode", b.session.RectMode, b.session.SetRectMode)
}

func (b *Bindings) ellipseMode(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	return b.shapeMode(t, c, "ellipseMode", b.session.EllipseMode, b.session.SetEllipseMode)
}

func (b *Bindings) imageMode(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	return b.shapeMode(t, c, "imageMode", b.session.ImageMode, b.session.SetImageMode)
}

// textAlign handles textAlign([align [, valign]]) and returns both.
func (b *Bindings) textAlign(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	args := getAllArgs(c)
	j, v := b.session.TextAlign()
	if hasArg(args, 0) {
		name, err := getStringArg(args, 0)
		if err != nil {
			return nil, fmt.Errorf("textAlign: align: %w", err)
		}
		if j, err = document.ParseJustification(name); err != nil {
			return b.fail(&sketch.FatalError{Op: "textAlign", Err: err})
		}
	}
	if hasArg(args, 1) {
		name, err := getStringArg(args, 1)
		if err != nil {
			return nil, fmt.Errorf("textAlign: valign: %w", err)
		}
		if v, err = document.ParseVerticalJustification(name); err != nil {
			return b.fail(&sketch.FatalError{Op: "textAlign", Err: err})
		}
	}
	b.session.SetTextAlign(j, v)
	return c.PushingNext(t.Runtime, rt.StringValue(j.String()), rt.StringValue(v.String())), nil
}

// units handles units([unit]) and returns the current unit name.
func (b *Bindings) units(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	args := getAllArgs(c)
	if hasArg(args, 0) {
		name, err := getStringArg(args, 0)
		if err != nil {
			return nil, fmt.Errorf("units: %w", err)
		}
		u, err := document.ParseUnits(name)
		if err != nil {
			return b.fail(&sketch.FatalError{Op: "units", Err: err})
		}
		if err := b.session.SetUnits(u); err != nil {
			return b.fail(err)
		}
	}
	return c.PushingNext1(t.Runtime, rt.StringValue(b.session.Units().String())), nil
}

// --- Drawing ---

func (b *Bindings) shape(t *rt.Thread, c *rt.GoCont, op string, draw func(x, y, w, h float64) (*document.Item, error)) (rt.Cont, error) {
	v, err := getFloatArgs(getAllArgs(c), 0, "x", "y", "w", "h")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	it, err := draw(v[0], v[1], v[2], v[3])
	if err != nil {
		return b.fail(err)
	}
	if it == nil {
		// zero width or height draws nothing
		return c.PushingNext1(t.Runtime, rt.BoolValue(false)), nil
	}
	return c.PushingNext1(t.Runtime, itemValue(it)), nil
}

func (b *Bindings) rect(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	return b.shape(t, c, "rect", b.session.Rect)
}

func (b *Bindings) ellipse(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	return b.shape(t, c, "ellipse", b.session.Ellipse)
}

func (b *Bindings) line(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	return b.shape(t, c, "line", b.session.Line)
}

// text handles text(txt, x, y, w, h).
func (b *Bindings) text(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	args := getAllArgs(c)
	var txt string
	if len(args) > 0 {
		txt = luaString(args[0])
	}
	v, err := getFloatArgs(args, 1, "x", "y", "w", "h")
	if err != nil {
		return nil, fmt.Errorf("text: %w", err)
	}
	it, err := b.session.Text(txt, v[0], v[1], v[2], v[3])
	if err != nil {
		return b.fail(err)
	}
	return c.PushingNext1(t.Runtime, itemValue(it)), nil
}

// image handles image(src, x, y [, w, h]).
func (b *Bindings) image(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	args := getAllArgs(c)
	src, err := getStringArg(args, 0)
	if err != nil {
		return nil, fmt.Errorf("image: src: %w", err)
	}
	if hasArg(args, 1) {
		if _, ok := args[1].TryUserData(); ok {
			frame, err := getItemArg(args, 1)
			if err != nil {
				return nil, fmt.Errorf("image: frame: %w", err)
			}
			it, err := b.session.ImageFrame(src, frame)
			if err != nil {
				return b.fail(err)
			}
			return c.PushingNext1(t.Runtime, itemValue(it)), nil
		}
	}
	v, err := getFloatArgs(args, 1, "x", "y")
	if err != nil {
		return nil, fmt.Errorf("image: %w", err)
	}
	var w, h float64
	if hasArg(args, 3) || hasArg(args, 4) {
		size, err := getFloatArgs(args, 3, "w", "h")
		if err != nil {
			return nil, fmt.Errorf("image: %w", err)
		}
		w, h = size[0], size[1]
	}
	it, err := b.session.Image(src, v[0], v[1], w, h)
	if err != nil {
		return b.fail(err)
	}
	return c.PushingNext1(t.Runtime, itemValue(it)), nil
}

func (b *Bindings) transformImage(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	args := getAllArgs(c)
	it, err := getItemArg(args, 0)
	if err != nil {
		return nil, fmt.Errorf("transformImage: %w", err)
	}
	v, err := getFloatArgs(args, 1, "x", "y", "w", "h")
	if err != nil {
		return nil, fmt.Errorf("transformImage: %w", err)
	}
	if err := b.session.TransformImage(it, v[0], v[1], v[2], v[3]); err != nil {
		return b.fail(err)
	}
	return c.Next(), nil
}

// --- Item transforms ---

// itemScalar implements the getter/setter pairs itemX, itemY, itemWidth
// and itemHeight: with a second argument it sets, otherwise it returns.
func (b *Bindings) itemScalar(t *rt.Thread, c *rt.GoCont, op string, get func(sketch.Item) (float64, error), set func(sketch.Item, float64) error) (rt.Cont, error) {
	args := getAllArgs(c)
	it, err := getItemArg(args, 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if hasArg(args, 1) {
		v, err := getFloatArg(args, 1)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := set(it, v); err != nil {
			return b.fail(err)
		}
		return c.Next(), nil
	}
	v, err := get(it)
	if err != nil {
		return b.fail(err)
	}
	return c.PushingNext1(t.Runtime, rt.FloatValue(v)), nil
}

func (b *Bindings) itemX(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	return b.itemScalar(t, c, "itemX", sketch.ItemX, sketch.SetItemX)
}

func (b *Bindings) itemY(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	return b.itemScalar(t, c, "itemY", sketch.ItemY, sketch.SetItemY)
}

func (b *Bindings) itemWidth(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	return b.itemScalar(t, c, "itemWidth", sketch.ItemWidth, sketch.SetItemWidth)
}

func (b *Bindings) itemHeight(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	return b.itemScalar(t, c, "itemHeight", sketch.ItemHeight, sketch.SetItemHeight)
}

// itemPair implements itemPosition and itemSize. Getters return a table
// with the two named fields.
func (b *Bindings) itemPair(t *rt.Thread, c *rt.GoCont, op, k1, k2 string, get func(sketch.Item) (float64, float64, error), set func(sketch.Item, float64, float64) error) (rt.Cont, error) {
	args := getAllArgs(c)
	it, err := getItemArg(args, 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if hasArg(args, 1) && hasArg(args, 2) {
		v, err := getFloatArgs(args, 1, k1, k2)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := set(it, v[0], v[1]); err != nil {
			return b.fail(err)
		}
		return c.Next(), nil
	}
	a, z, err := get(it)
	if err != nil {
		return b.fail(err)
	}
	table := rt.NewTable()
	table.Set(rt.StringValue(k1), rt.FloatValue(a))
	table.Set(rt.StringValue(k2), rt.FloatValue(z))
	return c.PushingNext1(t.Runtime, rt.TableValue(table)), nil
}

func (b *Bindings) itemPosition(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	return b.itemPair(t, c, "itemPosition", "x", "y", sketch.ItemPosition, sketch.SetItemPosition)
}

func (b *Bindings) itemSize(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	return b.itemPair(t, c, "itemSize", "width", "height", sketch.ItemSize, sketch.SetItemSize)
}

// bounds handles bounds(item) and bounds(page).
func (b *Bindings) bounds(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	args := getAllArgs(c)
	var e sketch.Extent
	if p, ok := getPageArg(args, 0); ok {
		e = sketch.ExtentOf(p.Bounds())
	} else {
		it, err := getItemArg(args, 0)
		if err != nil {
			return nil, fmt.Errorf("bounds: %w", err)
		}
		if e, err = sketch.ItemBounds(it); err != nil {
			return b.fail(err)
		}
	}
	table := rt.NewTable()
	table.Set(rt.StringValue("width"), rt.FloatValue(e.Width))
	table.Set(rt.StringValue("height"), rt.FloatValue(e.Height))
	table.Set(rt.StringValue("left"), rt.FloatValue(e.Left))
	table.Set(rt.StringValue("right"), rt.FloatValue(e.Right))
	table.Set(rt.StringValue("top"), rt.FloatValue(e.Top))
	table.Set(rt.StringValue("bottom"), rt.FloatValue(e.Bottom))
	return c.PushingNext1(t.Runtime, rt.TableValue(table)), nil
}

// --- Pages ---

// page handles page([n | page]) and returns the current page.
func (b *Bindings) page(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	args := getAllArgs(c)
	if p, ok := getPageArg(args, 0); ok {
		if err := b.session.SetPageTo(p); err != nil {
			return b.fail(err)
		}
	} else if hasArg(args, 0) {
		n, err := getIntArg(args, 0)
		if err != nil {
			return nil, fmt.Errorf("page: %w", ErrInvalidPage)
		}
		if err := b.session.SetPage(int(n)); err != nil {
			return b.fail(err)
		}
	}
	return c.PushingNext1(t.Runtime, pageValue(b.session.CurrentPage())), nil
}

// addPage handles addPage([location]).
func (b *Bindings) addPage(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	args := getAllArgs(c)
	loc := document.AtEnd
	if hasArg(args, 0) {
		name, err := getStringArg(args, 0)
		if err != nil {
			return nil, fmt.Errorf("addPage: %w", err)
		}
		if loc, err = document.ParseLocation(name); err != nil {
			return b.fail(&sketch.FatalError{Op: "addPage", Err: err})
		}
	}
	p, err := b.session.AddPage(loc)
	if err != nil {
		return b.fail(err)
	}
	return c.PushingNext1(t.Runtime, pageValue(p)), nil
}

// removePage handles removePage([n | page]), defaulting to the current page.
func (b *Bindings) removePage(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	args := getAllArgs(c)
	n := b.session.PageNumber()
	if p, ok := getPageArg(args, 0); ok {
		n = p.Number()
	} else if hasArg(args, 0) {
		v, err := getIntArg(args, 0)
		if err != nil {
			return nil, fmt.Errorf("removePage: %w", ErrInvalidPage)
		}
		n = int(v)
	}
	if err := b.session.RemovePage(n); err != nil {
		return b.fail(err)
	}
	return c.Next(), nil
}

func (b *Bindings) nextPage(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	p, err := b.session.NextPage()
	if err != nil {
		return b.fail(err)
	}
	return c.PushingNext1(t.Runtime, pageValue(p)), nil
}

func (b *Bindings) previousPage(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	p, err := b.session.PreviousPage()
	if err != nil {
		return b.fail(err)
	}
	return c.PushingNext1(t.Runtime, pageValue(p)), nil
}

func (b *Bindings) pageCount(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	return c.PushingNext1(t.Runtime, rt.IntValue(int64(b.session.PageCount()))), nil
}

func (b *Bindings) pageNumber(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	return c.PushingNext1(t.Runtime, rt.IntValue(int64(b.session.PageNumber()))), nil
}

// --- Environment ---

func (b *Bindings) delay(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	ms, err := getFloatArg(getAllArgs(c), 0)
	if err != nil {
		return nil, fmt.Errorf("delay: %w", err)
	}
	b.session.Delay(ms)
	return c.Next(), nil
}

// loop handles loop([fps]).
func (b *Bindings) loop(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	args := getAllArgs(c)
	fps := DefaultFrameRate
	if hasArg(args, 0) {
		v, err := getFloatArg(args, 0)
		if err != nil {
			return nil, fmt.Errorf("loop: %w", err)
		}
		if v <= 0 {
			return b.fail(&sketch.FatalError{Op: "loop", Err: &sketch.ContractError{Op: "loop", Msg: "frame rate must be positive"}})
		}
		fps = v
	}
	b.looping = true
	b.frameRate = fps
	return c.Next(), nil
}

func (b *Bindings) noLoop(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	b.looping = false
	return c.Next(), nil
}

func (b *Bindings) println(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	args := getAllArgs(c)
	parts := make([]any, len(args))
	for i, v := range args {
		parts[i] = luaString(v)
	}
	b.session.Println(parts...)
	return c.Next(), nil
}

// numberFormat handles nf(value, left [, right]) and its variants.
func numberFormat(t *rt.Thread, c *rt.GoCont, op string, format func(float64, int, int) string) (rt.Cont, error) {
	args := getAllArgs(c)
	v, err := getFloatArg(args, 0)
	if err != nil {
		return nil, fmt.Errorf("%s: value: %w", op, err)
	}
	left, err := getIntArg(args, 1)
	if err != nil {
		return nil, fmt.Errorf("%s: left: %w", op, err)
	}
	var right int64
	if hasArg(args, 2) {
		if right, err = getIntArg(args, 2); err != nil {
			return nil, fmt.Errorf("%s: right: %w", op, err)
		}
	}
	if left < 0 || right < 0 {
		return nil, fmt.Errorf("%s: digit counts must not be negative", op)
	}
	return c.PushingNext1(t.Runtime, rt.StringValue(format(v, int(left), int(right)))), nil
}

func (b *Bindings) nf(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	return numberFormat(t, c, "nf", geom.Nf)
}

func (b *Bindings) nfs(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	return numberFormat(t, c, "nfs", geom.Nfs)
}

func (b *Bindings) nfp(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	return numberFormat(t, c, "nfp", geom.Nfp)
}

func (b *Bindings) radians(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	deg, err := getFloatArg(getAllArgs(c), 0)
	if err != nil {
		return nil, fmt.Errorf("radians: %w", err)
	}
	return c.PushingNext1(t.Runtime, rt.FloatValue(deg*math.Pi/180)), nil
}

func (b *Bindings) degrees(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	rad, err := getFloatArg(getAllArgs(c), 0)
	if err != nil {
		return nil, fmt.Errorf("degrees: %w", err)
	}
	return c.PushingNext1(t.Runtime, rt.FloatValue(rad*180/math.Pi)), nil
}
