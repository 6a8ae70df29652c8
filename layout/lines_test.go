package layout

import (
	"reflect"
	"testing"

	"github.com/tsawler/railread/model"
)

func TestScanBlockLinesTwoStripes(t *testing.T) {
	pix := whitePixmap(200, 200, 200, 200)
	// Two 10-row dark stripes inside the block.
	fillDark(pix, 10, 30, 180, 10)
	fillDark(pix, 10, 80, 180, 10)

	block := &model.LayoutBlock{BBox: model.NewBBox(0, 0, 200, 150)}
	lines := scanBlockLines(block, pix, 1, 1, DefaultLineConfig())

	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d: %+v", len(lines), lines)
	}
	// Smoothing widens each run by one row on each side.
	if lines[0].Y < 30 || lines[0].Y > 42 {
		t.Errorf("First line center %g out of expected band", lines[0].Y)
	}
	if lines[1].Y < 80 || lines[1].Y > 92 {
		t.Errorf("Second line center %g out of expected band", lines[1].Y)
	}
	if lines[0].Y >= lines[1].Y {
		t.Error("Expected lines sorted by ascending y")
	}
}

func TestScanBlockLinesBlankBlock(t *testing.T) {
	pix := whitePixmap(100, 100, 100, 100)
	block := &model.LayoutBlock{BBox: model.NewBBox(10, 10, 80, 60)}
	lines := scanBlockLines(block, pix, 1, 1, DefaultLineConfig())

	if len(lines) != 1 {
		t.Fatalf("Expected synthetic midline, got %d lines", len(lines))
	}
	if lines[0].Y != 40 || lines[0].Height != 60 {
		t.Errorf("Unexpected synthetic line: %+v", lines[0])
	}
}

func TestScanBlockLinesFaintSmudgeIgnored(t *testing.T) {
	pix := whitePixmap(200, 200, 200, 200)
	// A faint narrow smudge: its ink density stays below the adaptive
	// threshold set by the real line.
	fillDark(pix, 10, 50, 10, 1)
	// A real 12-row line.
	fillDark(pix, 10, 100, 180, 12)

	block := &model.LayoutBlock{BBox: model.NewBBox(0, 0, 200, 200)}
	lines := scanBlockLines(block, pix, 1, 1, DefaultLineConfig())

	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d: %+v", len(lines), lines)
	}
	if lines[0].Y < 100 || lines[0].Y > 112 {
		t.Errorf("Kept line center %g not at the tall run", lines[0].Y)
	}
}

func TestScanBlockLinesPointScaling(t *testing.T) {
	// 2 points per pixel on both axes.
	pix := whitePixmap(100, 100, 200, 200)
	fillDark(pix, 5, 20, 90, 10)

	block := &model.LayoutBlock{BBox: model.NewBBox(0, 0, 200, 200)}
	lines := scanBlockLines(block, pix, 2, 2, DefaultLineConfig())

	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(lines))
	}
	// Run rows ~19..31 in pixels, center ~25 px -> ~50 points.
	if lines[0].Y < 40 || lines[0].Y > 60 {
		t.Errorf("Line center %g points, expected near 50", lines[0].Y)
	}
	if lines[0].Height < 20 || lines[0].Height > 28 {
		t.Errorf("Line height %g points, expected near 24", lines[0].Height)
	}
}

func TestScanBlockLinesDeterministic(t *testing.T) {
	pix := whitePixmap(300, 300, 300, 300)
	fillDark(pix, 10, 40, 280, 9)
	fillDark(pix, 10, 90, 280, 9)
	fillDark(pix, 10, 140, 280, 9)

	block := &model.LayoutBlock{BBox: model.NewBBox(0, 0, 300, 300)}
	first := scanBlockLines(block, pix, 1, 1, DefaultLineConfig())
	second := scanBlockLines(block, pix, 1, 1, DefaultLineConfig())

	if !reflect.DeepEqual(first, second) {
		t.Error("Expected identical line sequences for identical input")
	}
}

func TestDetectLinesCoversEveryBlock(t *testing.T) {
	pix := whitePixmap(400, 400, 400, 400)
	fillDark(pix, 10, 20, 380, 8)

	blocks := []model.LayoutBlock{
		{BBox: model.NewBBox(0, 0, 400, 100), ClassID: model.ClassText},
		{BBox: model.NewBBox(0, 200, 400, 100), ClassID: 14}, // image: still gets a line
	}
	detectLines(blocks, pix, 1, 1, DefaultLineConfig())

	for i, b := range blocks {
		if len(b.Lines) == 0 {
			t.Errorf("Block %d has no lines after detection", i)
		}
	}
}
