package worker

import (
	"errors"
	"testing"
	"time"

	"github.com/tsawler/railread/layout"
	"github.com/tsawler/railread/model"
	"github.com/tsawler/railread/raster"
)

type stubDetector struct {
	outputs []layout.Tensor
	err     error
}

func (d *stubDetector) Run(imShape, image, scaleFactor layout.Tensor) ([]layout.Tensor, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.outputs, nil
}

// oneBlockDetector emits a single text block.
func oneBlockDetector() *stubDetector {
	return &stubDetector{outputs: []layout.Tensor{layout.NewTensor(
		[]int64{1, 7},
		[]float32{float32(model.ClassText), 0.9, 10, 10, 200, 100, 0},
	)}}
}

func testPixmap() *raster.Pixmap {
	w, h := 100, 100
	rgb := make([]byte, w*h*3)
	for i := range rgb {
		rgb[i] = 255
	}
	return &raster.Pixmap{RGB: rgb, Width: w, Height: h, PageWidth: 600, PageHeight: 800}
}

// pollWait spins Poll until a result arrives or the deadline passes.
func pollWait(t *testing.T, w *Worker) *Result {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if res := w.Poll(); res != nil {
			return res
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("Timed out waiting for worker result")
	return nil
}

func TestWorkerProducesResult(t *testing.T) {
	w := New(layout.NewAnalyzer(oneBlockDetector()), nil)
	defer w.Close()

	key := Key{Path: "doc.pdf", Page: 0}
	if !w.Submit(Request{Key: key, Pixmap: testPixmap()}) {
		t.Fatal("Expected submit to be accepted")
	}
	if w.IsIdle() {
		t.Error("Expected worker busy after submit")
	}

	res := pollWait(t, w)
	if res.Key != key {
		t.Errorf("Result for wrong key: %+v", res.Key)
	}
	if res.Degraded {
		t.Error("Expected a real analysis, not a fallback")
	}
	if len(res.Analysis.Blocks) != 1 {
		t.Errorf("Expected 1 block, got %d", len(res.Analysis.Blocks))
	}
	if !w.IsIdle() {
		t.Error("Expected worker idle after poll")
	}
}

func TestWorkerDedupsInFlightKey(t *testing.T) {
	w := New(layout.NewAnalyzer(oneBlockDetector()), nil)
	defer w.Close()

	key := Key{Path: "doc.pdf", Page: 3}
	if !w.Submit(Request{Key: key, Pixmap: testPixmap()}) {
		t.Fatal("Expected first submit accepted")
	}
	if w.Submit(Request{Key: key, Pixmap: testPixmap()}) {
		t.Error("Expected duplicate submit rejected while in flight")
	}
	if !w.InFlight(key) {
		t.Error("Expected key in flight")
	}

	pollWait(t, w)

	// After the result clears, the key may be submitted again.
	if !w.Submit(Request{Key: key, Pixmap: testPixmap()}) {
		t.Error("Expected resubmit accepted after completion")
	}
	pollWait(t, w)
}

func TestWorkerDistinctKeysAccepted(t *testing.T) {
	w := New(layout.NewAnalyzer(oneBlockDetector()), nil)
	defer w.Close()

	a := Key{Path: "doc.pdf", Page: 0}
	b := Key{Path: "doc.pdf", Page: 1}
	c := Key{Path: "other.pdf", Page: 0}
	for _, k := range []Key{a, b, c} {
		if !w.Submit(Request{Key: k, Pixmap: testPixmap()}) {
			t.Fatalf("Expected submit accepted for %+v", k)
		}
	}

	seen := make(map[Key]int)
	for i := 0; i < 3; i++ {
		res := pollWait(t, w)
		seen[res.Key]++
	}
	for _, k := range []Key{a, b, c} {
		if seen[k] != 1 {
			t.Errorf("Expected exactly one result for %+v, got %d", k, seen[k])
		}
	}
	if !w.IsIdle() {
		t.Error("Expected idle after all results polled")
	}
}

// Results arrive in submission order; with a single request queue this
// holds across distinct keys too.
func TestWorkerResultOrderPerKeySequence(t *testing.T) {
	w := New(layout.NewAnalyzer(oneBlockDetector()), nil)
	defer w.Close()

	keys := []Key{
		{Path: "doc.pdf", Page: 0},
		{Path: "doc.pdf", Page: 1},
		{Path: "doc.pdf", Page: 2},
	}
	for _, k := range keys {
		w.Submit(Request{Key: k, Pixmap: testPixmap()})
	}
	for _, want := range keys {
		res := pollWait(t, w)
		if res.Key != want {
			t.Fatalf("Out-of-order result: got %+v, want %+v", res.Key, want)
		}
	}
}

func TestWorkerFallbackMode(t *testing.T) {
	// Nil analyzer: detector failed to load at startup.
	w := New(nil, nil)
	defer w.Close()

	key := Key{Path: "doc.pdf", Page: 0}
	w.Submit(Request{Key: key, Pixmap: testPixmap()})

	res := pollWait(t, w)
	if !res.Degraded {
		t.Error("Expected degraded result in fallback mode")
	}
	if len(res.Analysis.Blocks) != 1 {
		t.Fatalf("Expected 1 fallback block, got %d", len(res.Analysis.Blocks))
	}
	if res.Analysis.Blocks[0].ClassID != model.ClassText {
		t.Error("Expected fallback block to be text class")
	}
	if res.Analysis.PageWidth != 600 || res.Analysis.PageHeight != 800 {
		t.Errorf("Fallback lost page size: %gx%g", res.Analysis.PageWidth, res.Analysis.PageHeight)
	}
}

func TestWorkerErrorYieldsFallback(t *testing.T) {
	det := &stubDetector{err: errors.New("inference failed")}
	w := New(layout.NewAnalyzer(det), nil)
	defer w.Close()

	key := Key{Path: "doc.pdf", Page: 0}
	w.Submit(Request{Key: key, Pixmap: testPixmap()})

	res := pollWait(t, w)
	if !res.Degraded {
		t.Error("Expected degraded result after detector error")
	}
	if !w.IsIdle() {
		t.Error("Expected in-flight cleared even on failure")
	}
}

func TestWorkerCloseDrains(t *testing.T) {
	w := New(layout.NewAnalyzer(oneBlockDetector()), nil)

	for page := 0; page < 5; page++ {
		w.Submit(Request{Key: Key{Path: "doc.pdf", Page: page}, Pixmap: testPixmap()})
	}
	w.Close()

	// Every queued request was answered before exit.
	got := 0
	for res := w.Poll(); res != nil; res = w.Poll() {
		got++
	}
	if got != 5 {
		t.Errorf("Expected 5 drained results, got %d", got)
	}
}
