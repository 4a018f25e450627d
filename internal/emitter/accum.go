package emitter

import "github.com/esainane/libfyaml/internal/utf8x"

// accum batches the characters of a single scalar before handing them to
// the write callback, tracking the column the output will land on so the
// writers can take width decisions before flushing. Accumulated runs
// never contain line breaks; breaks are written directly.
type accum struct {
	e     *Emitter
	wt    WriteType
	buf   []byte
	count int // code points since the last output
}

func (a *accum) init(e *Emitter) {
	a.e = e
	a.buf = a.buf[:0]
}

func (a *accum) reset() {
	a.buf = a.buf[:0]
	a.count = 0
}

func (a *accum) start(wt WriteType) {
	a.wt = wt
	a.buf = a.buf[:0]
	a.count = 0
}

func (a *accum) putUTF8(c rune) {
	a.buf = utf8x.Append(a.buf, c)
	a.count++
}

// column returns the column as if the accumulated run were flushed.
func (a *accum) column() int {
	return a.e.column + a.count
}

// size returns the number of code points accumulated since the last
// flush.
func (a *accum) size() int {
	return a.count
}

// output flushes the accumulated run through the emitter.
func (a *accum) output() {
	if len(a.buf) > 0 {
		a.e.write(a.wt, a.buf)
	}
	a.buf = a.buf[:0]
	a.count = 0
}

func (a *accum) finish() {
	a.buf = a.buf[:0]
	a.count = 0
}
