package reconstruct

import (
	"github.com/beevik/etree"

	"doc-translator/internal/block"
	"doc-translator/internal/logger"
	"doc-translator/internal/types"
)

// RebuildDocx writes a copy of the source document with each extracted
// block's text replaced by its translation. Substitution is by stored
// paragraph or table indices; an index that no longer resolves is skipped
// and only loses that block's translation.
func RebuildDocx(doc *block.ExtractedDocument, translations block.TranslationMap, outputPath string) (string, error) {
	data, err := readPart(doc.SourcePath, "word/document.xml")
	if err != nil {
		return "", err
	}

	xmlDoc := etree.NewDocument()
	if err := xmlDoc.ReadFromBytes(data); err != nil {
		return "", types.NewAppError(types.ErrReconstruction,
			"cannot parse word/document.xml", err)
	}

	body := xmlDoc.FindElement("//w:body")
	if body == nil {
		return "", types.NewAppError(types.ErrReconstruction,
			"document has no body element", nil)
	}

	paraBlocks := make(map[int]*block.DocxBlock)
	cellBlocks := make(map[[3]int]*block.DocxBlock)
	for _, b := range doc.Blocks {
		db, ok := b.(*block.DocxBlock)
		if !ok {
			continue
		}
		if db.TableCell {
			cellBlocks[[3]int{db.TableIndex, db.RowIndex, db.ColIndex}] = db
		} else {
			paraBlocks[db.ParagraphIndex] = db
		}
	}

	// Walk body children with the same counters extraction used, so the
	// stored indices resolve against the same elements.
	paraIdx := -1
	tblIdx := -1
	for _, child := range body.ChildElements() {
		switch {
		case child.Space == "w" && child.Tag == "p":
			paraIdx++
			db := paraBlocks[paraIdx]
			if db == nil {
				continue
			}
			if !substituteRuns(child, "w:t", translations.Lookup(db.BlockID, db.Source)) {
				logger.Warn("paragraph no longer has runs, skipping block",
					logger.String("blockID", db.BlockID))
			}
		case child.Space == "w" && child.Tag == "tbl":
			tblIdx++
			for rowIdx, row := range child.SelectElements("w:tr") {
				for colIdx, cell := range row.SelectElements("w:tc") {
					db := cellBlocks[[3]int{tblIdx, rowIdx, colIdx}]
					if db == nil {
						continue
					}
					if !substituteRuns(cell, "w:t", translations.Lookup(db.BlockID, db.Source)) {
						logger.Warn("table cell no longer has runs, skipping block",
							logger.String("blockID", db.BlockID))
					}
				}
			}
		}
	}

	out, err := xmlDoc.WriteToBytes()
	if err != nil {
		return "", types.NewAppError(types.ErrReconstruction,
			"cannot serialize word/document.xml", err)
	}

	if err := rewriteArchive(doc.SourcePath, outputPath, map[string][]byte{
		"word/document.xml": out,
	}); err != nil {
		return "", err
	}

	logger.Info("DOCX rebuilt", logger.String("output", outputPath))
	return outputPath, nil
}

// substituteRuns puts text into the first text run under el and blanks the
// rest, preserving run properties. Reports false when el has no text runs.
func substituteRuns(el *etree.Element, textTag, text string) bool {
	ts := el.FindElements(".//" + textTag)
	if len(ts) == 0 {
		return false
	}
	ts[0].SetText(text)
	ts[0].CreateAttr("xml:space", "preserve")
	for _, t := range ts[1:] {
		t.SetText("")
	}
	return true
}
