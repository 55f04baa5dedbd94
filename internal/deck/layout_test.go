package deck

import "testing"

func TestSelectLayoutRequested(t *testing.T) {
	for layout := range knownLayouts {
		got := SelectLayout(0, string(layout))
		if got != layout {
			t.Errorf("SelectLayout(0, %q) = %q", layout, got)
		}
	}
}

func TestSelectLayoutRequestedRepeats(t *testing.T) {
	// 作者逐页指定同一版式时照用，不做去重
	for i := 0; i < 5; i++ {
		if got := SelectLayout(i, "quote"); got != LayoutQuote {
			t.Fatalf("SelectLayout(%d, quote) = %q", i, got)
		}
	}
}

func TestSelectLayoutCycle(t *testing.T) {
	for i := 0; i < 21; i++ {
		got := SelectLayout(i, "")
		want := layoutCycle[i%len(layoutCycle)]
		if got != want {
			t.Errorf("SelectLayout(%d, \"\") = %q, want %q", i, got, want)
		}
	}
}

func TestSelectLayoutUnknownFallsBackToCycle(t *testing.T) {
	tests := []string{"hero", "Title-Bullets", "two_column", "  "}
	for _, requested := range tests {
		got := SelectLayout(3, requested)
		if got != layoutCycle[3] {
			t.Errorf("SelectLayout(3, %q) = %q, want %q", requested, got, layoutCycle[3])
		}
	}
}

func TestSelectLayoutNoAdjacentRepeats(t *testing.T) {
	prev := SelectLayout(0, "")
	for i := 1; i < 14; i++ {
		cur := SelectLayout(i, "")
		if cur == prev {
			t.Fatalf("adjacent slides %d and %d share layout %q", i-1, i, cur)
		}
		prev = cur
	}
}
