package model

import (
	"math"
	"testing"
)

func TestBBoxEdges(t *testing.T) {
	b := NewBBox(10, 20, 100, 50)

	if b.Left() != 10 || b.Right() != 110 {
		t.Errorf("Expected left/right 10/110, got %g/%g", b.Left(), b.Right())
	}
	if b.Top() != 20 || b.Bottom() != 70 {
		t.Errorf("Expected top/bottom 20/70, got %g/%g", b.Top(), b.Bottom())
	}

	c := b.Center()
	if c.X != 60 || c.Y != 45 {
		t.Errorf("Expected center (60,45), got (%g,%g)", c.X, c.Y)
	}
}

func TestBBoxContains(t *testing.T) {
	b := NewBBox(0, 0, 100, 100)

	if !b.Contains(Point{X: 50, Y: 50}) {
		t.Error("Expected interior point to be contained")
	}
	if !b.Contains(Point{X: 0, Y: 100}) {
		t.Error("Expected edge point to be contained")
	}
	if b.Contains(Point{X: 101, Y: 50}) {
		t.Error("Expected exterior point not to be contained")
	}
}

func TestBBoxIoU(t *testing.T) {
	a := NewBBox(0, 0, 100, 100)
	b := NewBBox(10, 10, 100, 100)

	// Intersection 90x90, union 2*10000-8100
	want := 8100.0 / 11900.0
	got := a.IoU(b)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Expected IoU %g, got %g", want, got)
	}

	// Disjoint boxes
	c := NewBBox(500, 500, 10, 10)
	if a.IoU(c) != 0 {
		t.Errorf("Expected IoU 0 for disjoint boxes, got %g", a.IoU(c))
	}

	// Identical boxes
	if math.Abs(a.IoU(a)-1) > 1e-9 {
		t.Errorf("Expected IoU 1 for identical boxes, got %g", a.IoU(a))
	}
}

func TestBBoxIntersectionUnion(t *testing.T) {
	a := NewBBox(0, 0, 50, 50)
	b := NewBBox(25, 25, 50, 50)

	inter := a.Intersection(b)
	if inter.X != 25 || inter.Y != 25 || inter.Width != 25 || inter.Height != 25 {
		t.Errorf("Unexpected intersection: %+v", inter)
	}

	u := a.Union(b)
	if u.X != 0 || u.Y != 0 || u.Width != 75 || u.Height != 75 {
		t.Errorf("Unexpected union: %+v", u)
	}
}

func TestPointDistance(t *testing.T) {
	p := Point{X: 0, Y: 0}
	q := Point{X: 3, Y: 4}

	if d := p.Distance(q); d != 5 {
		t.Errorf("Expected distance 5, got %g", d)
	}
}

func TestClassTable(t *testing.T) {
	if ClassCount != 25 {
		t.Fatalf("Expected 25 classes, got %d", ClassCount)
	}

	if ClassName(ClassText) != "text" {
		t.Errorf("Expected class %d to be 'text', got %q", ClassText, ClassName(ClassText))
	}

	// Round-trip every entry
	for i, name := range ClassNames {
		id, ok := ClassID(name)
		if !ok || id != i {
			t.Errorf("ClassID(%q) = %d,%v, want %d,true", name, id, ok, i)
		}
	}

	if ClassName(-1) != "" || ClassName(ClassCount) != "" {
		t.Error("Expected empty name for out-of-range class ids")
	}
}

func TestClassAliases(t *testing.T) {
	id, ok := ClassID("document_title")
	if !ok {
		t.Fatal("Expected legacy alias 'document_title' to resolve")
	}
	if ClassName(id) != "doc_title" {
		t.Errorf("Expected alias to resolve to doc_title, got %q", ClassName(id))
	}

	id, ok = ClassID("references")
	if !ok || ClassName(id) != "reference" {
		t.Errorf("Expected 'references' to resolve to reference, got %q,%v", ClassName(id), ok)
	}

	if _, ok := ClassID("not_a_class"); ok {
		t.Error("Expected unknown name not to resolve")
	}
}

func TestDefaultNavigableClasses(t *testing.T) {
	set := DefaultNavigableClasses()
	if len(set) != 8 {
		t.Fatalf("Expected 8 default navigable classes, got %d", len(set))
	}
	for _, name := range []string{"text", "doc_title", "paragraph_title", "abstract"} {
		id, _ := ClassID(name)
		if !set[id] {
			t.Errorf("Expected %q to be navigable by default", name)
		}
	}
	if id, _ := ClassID("image"); set[id] {
		t.Error("Expected 'image' not to be navigable by default")
	}
}

func TestClassDisplayName(t *testing.T) {
	id, _ := ClassID("paragraph_title")
	if got := ClassDisplayName(id); got != "Paragraph Title" {
		t.Errorf("Expected 'Paragraph Title', got %q", got)
	}
	if got := ClassDisplayName(-1); got != "Unknown" {
		t.Errorf("Expected 'Unknown', got %q", got)
	}
}

func TestPageAnalysisValidate(t *testing.T) {
	good := &PageAnalysis{
		PageWidth:  600,
		PageHeight: 800,
		Blocks: []LayoutBlock{
			{BBox: NewBBox(0, 0, 100, 100), ClassID: ClassText, Order: 0, Lines: []LineInfo{{Y: 50, Height: 10}}},
			{BBox: NewBBox(0, 200, 100, 100), ClassID: ClassText, Order: 1, Lines: []LineInfo{{Y: 250, Height: 10}}},
		},
	}
	if err := good.Validate(); err != nil {
		t.Errorf("Expected valid analysis, got %v", err)
	}

	noLines := &PageAnalysis{
		PageWidth:  600,
		PageHeight: 800,
		Blocks: []LayoutBlock{
			{BBox: NewBBox(0, 0, 100, 100), ClassID: ClassText, Order: 0},
		},
	}
	if err := noLines.Validate(); err == nil {
		t.Error("Expected error for block without lines")
	}

	badOrder := &PageAnalysis{
		PageWidth:  600,
		PageHeight: 800,
		Blocks: []LayoutBlock{
			{BBox: NewBBox(0, 0, 100, 100), ClassID: ClassText, Order: 1, Lines: []LineInfo{{Y: 50, Height: 10}}},
		},
	}
	if err := badOrder.Validate(); err == nil {
		t.Error("Expected error for non-dense order")
	}

	outside := &PageAnalysis{
		PageWidth:  600,
		PageHeight: 800,
		Blocks: []LayoutBlock{
			{BBox: NewBBox(550, 0, 100, 100), ClassID: ClassText, Order: 0, Lines: []LineInfo{{Y: 50, Height: 10}}},
		},
	}
	if err := outside.Validate(); err == nil {
		t.Error("Expected error for bbox outside page")
	}
}
