package block

import "testing"

func TestTranslationMapLookup(t *testing.T) {
	m := TranslationMap{"p1_b0": "Bonjour"}

	if got := m.Lookup("p1_b0", "Hello"); got != "Bonjour" {
		t.Errorf("Lookup(present) = %q, want Bonjour", got)
	}
	if got := m.Lookup("p1_b1", "Hello"); got != "Hello" {
		t.Errorf("Lookup(absent) = %q, want the fallback", got)
	}

	var empty TranslationMap
	if got := empty.Lookup("p1_b0", "Hello"); got != "Hello" {
		t.Errorf("Lookup on nil map = %q, want the fallback", got)
	}
}

func TestBBoxDimensions(t *testing.T) {
	b := BBox{X0: 10, Y0: 20, X1: 110, Y1: 45}
	if b.Width() != 100 {
		t.Errorf("Width = %v, want 100", b.Width())
	}
	if b.Height() != 25 {
		t.Errorf("Height = %v, want 25", b.Height())
	}
}

func TestAudioBlockDuration(t *testing.T) {
	b := &AudioBlock{BlockID: "seg_0", Start: 1.5, End: 4.25}
	if b.Duration() != 2.75 {
		t.Errorf("Duration = %v, want 2.75", b.Duration())
	}
	if b.Header() {
		t.Error("audio blocks are never headers")
	}
}

func TestBlockInterfaceVariants(t *testing.T) {
	blocks := []Block{
		&PDFBlock{BlockID: "p1_b0", Source: "Title", IsHeader: true},
		&DocxBlock{BlockID: "para_0", Source: "Body", IsHeader: false},
		&PptxBlock{BlockID: "s1_sh0_p0", Source: "Slide", IsHeader: true},
		&AudioBlock{BlockID: "seg_0", Source: "Speech"},
	}

	wantID := []string{"p1_b0", "para_0", "s1_sh0_p0", "seg_0"}
	wantHeader := []bool{true, false, true, false}
	for i, b := range blocks {
		if b.ID() != wantID[i] {
			t.Errorf("blocks[%d].ID() = %q, want %q", i, b.ID(), wantID[i])
		}
		if b.Header() != wantHeader[i] {
			t.Errorf("blocks[%d].Header() = %v, want %v", i, b.Header(), wantHeader[i])
		}
		if b.Text() == "" {
			t.Errorf("blocks[%d].Text() is empty", i)
		}
	}
}
