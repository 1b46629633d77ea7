package extract

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"doc-translator/internal/block"
	"doc-translator/internal/types"
)

func writeArchive(t *testing.T, name string, parts map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("cannot create archive: %v", err)
	}
	zw := zip.NewWriter(f)
	for partName, content := range parts {
		w, err := zw.Create(partName)
		if err != nil {
			t.Fatalf("cannot add %s: %v", partName, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("cannot write %s: %v", partName, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("cannot close archive: %v", err)
	}
	f.Close()
	return path
}

const twoParagraphDocXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p>
      <w:pPr><w:pStyle w:val="Heading1"/></w:pPr>
      <w:r><w:t>Annual Report</w:t></w:r>
    </w:p>
    <w:p>
      <w:r><w:t>Revenue </w:t></w:r>
      <w:r><w:t>increased this year.</w:t></w:r>
    </w:p>
    <w:p>
      <w:r><w:t>   </w:t></w:r>
    </w:p>
  </w:body>
</w:document>`

func TestExtractDocxTwoParagraphs(t *testing.T) {
	path := writeArchive(t, "report.docx", map[string]string{
		"word/document.xml": twoParagraphDocXML,
	})

	doc, err := ExtractDocx(path)
	if err != nil {
		t.Fatalf("ExtractDocx failed: %v", err)
	}

	// The blank third paragraph produces no block.
	if len(doc.Blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(doc.Blocks))
	}

	first := doc.Blocks[0].(*block.DocxBlock)
	if first.BlockID != "para_0" || first.Source != "Annual Report" {
		t.Errorf("first block = %+v", first)
	}
	if !first.IsHeader || first.StyleName != "Heading1" {
		t.Errorf("Heading style should mark block as header: %+v", first)
	}

	second := doc.Blocks[1].(*block.DocxBlock)
	if second.BlockID != "para_1" || second.Source != "Revenue increased this year." {
		t.Errorf("second block = %+v", second)
	}
	if second.IsHeader {
		t.Error("Normal paragraph should not be a header")
	}
	if second.ParagraphIndex != 1 {
		t.Errorf("paragraph index = %d, want 1", second.ParagraphIndex)
	}
}

func TestExtractDocxTableCells(t *testing.T) {
	path := writeArchive(t, "table.docx", map[string]string{
		"word/document.xml": `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:tbl>
      <w:tr>
        <w:tc><w:p><w:r><w:t>Quarter</w:t></w:r></w:p></w:tc>
        <w:tc><w:p><w:r><w:t>Total</w:t></w:r></w:p></w:tc>
      </w:tr>
      <w:tr>
        <w:tc><w:p><w:r><w:t>Q1</w:t></w:r></w:p></w:tc>
        <w:tc><w:p></w:p></w:tc>
      </w:tr>
    </w:tbl>
  </w:body>
</w:document>`,
	})

	doc, err := ExtractDocx(path)
	if err != nil {
		t.Fatalf("ExtractDocx failed: %v", err)
	}
	if len(doc.Blocks) != 3 {
		t.Fatalf("expected 3 blocks (empty cell skipped), got %d", len(doc.Blocks))
	}

	cell := doc.Blocks[0].(*block.DocxBlock)
	if cell.BlockID != "tbl0_r0_c0" || !cell.TableCell {
		t.Errorf("first cell block = %+v", cell)
	}
	if cell.TableIndex != 0 || cell.RowIndex != 0 || cell.ColIndex != 0 {
		t.Errorf("cell indices = %d/%d/%d", cell.TableIndex, cell.RowIndex, cell.ColIndex)
	}

	q1 := doc.Blocks[2].(*block.DocxBlock)
	if q1.BlockID != "tbl0_r1_c0" || q1.Source != "Q1" {
		t.Errorf("Q1 cell block = %+v", q1)
	}
}

func TestExtractDocxLegacyFormatRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.doc")
	if err := os.WriteFile(path, []byte("\xd0\xcf\x11\xe0 legacy ole"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := ExtractDocx(path)
	if err == nil {
		t.Fatal("expected error for legacy .doc")
	}
	var appErr *types.AppError
	if !errors.As(err, &appErr) || appErr.Code != types.ErrExtraction {
		t.Fatalf("expected EXTRACTION_ERROR, got %v", err)
	}
	if !strings.Contains(appErr.Details, "convert") {
		t.Errorf("legacy error should carry a remediation hint, got %q", appErr.Details)
	}
}

func TestExtractDocxCorruptContainer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.docx")
	if err := os.WriteFile(path, []byte("this is not a zip file"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := ExtractDocx(path)
	if err == nil {
		t.Fatal("expected error for corrupt container")
	}
	var appErr *types.AppError
	if !errors.As(err, &appErr) || !strings.Contains(appErr.Details, "corrupt") {
		t.Errorf("corrupt container should be named as such, got %v", err)
	}
}

func TestExtractDocxMislabeledContainer(t *testing.T) {
	// A valid zip without the document part: wrong extension, not corrupt.
	path := writeArchive(t, "mislabeled.docx", map[string]string{
		"something/else.txt": "hello",
	})

	_, err := ExtractDocx(path)
	if err == nil {
		t.Fatal("expected error for missing document part")
	}
	var appErr *types.AppError
	if !errors.As(err, &appErr) || !strings.Contains(appErr.Details, "does not contain") {
		t.Errorf("mislabeled container should be distinguishable from corrupt, got %v", err)
	}
}
