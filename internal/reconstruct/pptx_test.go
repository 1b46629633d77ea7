package reconstruct

import (
	"path/filepath"
	"testing"

	"doc-translator/internal/block"
	"doc-translator/internal/types"
)

const testSlideXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sld xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"
       xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">
  <p:cSld>
    <p:spTree>
      <p:sp>
        <p:nvSpPr>
          <p:cNvPr id="1" name="Title 1"/>
          <p:nvPr><p:ph type="title"/></p:nvPr>
        </p:nvSpPr>
        <p:txBody>
          <a:p>
            <a:r><a:t>Quarterly </a:t></a:r>
            <a:r><a:t>Review</a:t></a:r>
          </a:p>
        </p:txBody>
      </p:sp>
      <p:sp>
        <p:nvSpPr><p:cNvPr id="2" name="Content 2"/><p:nvPr/></p:nvSpPr>
        <p:txBody>
          <a:p><a:r><a:t>Revenue grew.</a:t></a:r></a:p>
          <a:p><a:r><a:t>Costs fell.</a:t></a:r></a:p>
        </p:txBody>
      </p:sp>
    </p:spTree>
  </p:cSld>
</p:sld>`

func writeTestPptx(t *testing.T) string {
	return writeTestArchive(t, "source.pptx", map[string]string{
		"[Content_Types].xml":  `<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`,
		"ppt/presentation.xml": `<?xml version="1.0"?><p:presentation xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"/>`,
		"ppt/slides/slide1.xml": testSlideXML,
	})
}

func pptxDocument(src string) *block.ExtractedDocument {
	return &block.ExtractedDocument{
		SourcePath: src,
		Format:     types.FormatPptx,
		Blocks: []block.Block{
			&block.PptxBlock{BlockID: "s0_sh0_p0", Source: "Quarterly Review",
				SlideIndex: 0, ShapeIndex: 0, ParagraphIndex: 0, TitlePlaceholder: true, IsHeader: true},
			&block.PptxBlock{BlockID: "s0_sh1_p0", Source: "Revenue grew.",
				SlideIndex: 0, ShapeIndex: 1, ParagraphIndex: 0},
			&block.PptxBlock{BlockID: "s0_sh1_p1", Source: "Costs fell.",
				SlideIndex: 0, ShapeIndex: 1, ParagraphIndex: 1},
		},
	}
}

func TestRebuildPptxSubstitutesByIndices(t *testing.T) {
	src := writeTestPptx(t)
	doc := pptxDocument(src)
	translations := block.TranslationMap{
		"s0_sh0_p0": "Bilan trimestriel",
		"s0_sh1_p1": "Les coûts ont baissé.",
	}

	out := filepath.Join(t.TempDir(), "out.pptx")
	if _, err := RebuildPptx(doc, translations, out); err != nil {
		t.Fatalf("RebuildPptx failed: %v", err)
	}

	result := readOutputPart(t, out, "ppt/slides/slide1.xml")
	shapes := result.FindElement("//p:spTree").SelectElements("p:sp")
	if len(shapes) != 2 {
		t.Fatalf("expected 2 shapes, got %d", len(shapes))
	}

	titleRuns := shapes[0].FindElements(".//a:t")
	if got := titleRuns[0].Text(); got != "Bilan trimestriel" {
		t.Errorf("title first run = %q, want %q", got, "Bilan trimestriel")
	}
	if titleRuns[1].Text() != "" {
		t.Errorf("title second run should be blanked, got %q", titleRuns[1].Text())
	}

	paras := shapes[1].FindElement("p:txBody").SelectElements("a:p")
	// First content paragraph has no translation and keeps its source text.
	if got := paras[0].FindElements(".//a:t")[0].Text(); got != "Revenue grew." {
		t.Errorf("untranslated paragraph = %q, want source text", got)
	}
	if got := paras[1].FindElements(".//a:t")[0].Text(); got != "Les coûts ont baissé." {
		t.Errorf("translated paragraph = %q", got)
	}
}

func TestRebuildPptxUnresolvableIndexSkipped(t *testing.T) {
	src := writeTestPptx(t)
	doc := &block.ExtractedDocument{
		SourcePath: src,
		Format:     types.FormatPptx,
		Blocks: []block.Block{
			&block.PptxBlock{BlockID: "s3_sh0_p0", Source: "ghost", SlideIndex: 3},
		},
	}

	out := filepath.Join(t.TempDir(), "out.pptx")
	if _, err := RebuildPptx(doc, block.TranslationMap{"s3_sh0_p0": "X"}, out); err != nil {
		t.Fatalf("unresolvable index should be skipped, not fatal: %v", err)
	}
}
