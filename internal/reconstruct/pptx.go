package reconstruct

import (
	"archive/zip"
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/beevik/etree"

	"doc-translator/internal/block"
	"doc-translator/internal/logger"
	"doc-translator/internal/types"
)

var slideNamePattern = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// RebuildPptx writes a copy of the source presentation with each block's
// text replaced by its translation, resolved by slide/shape/paragraph
// indices. Indices that no longer resolve are skipped.
func RebuildPptx(doc *block.ExtractedDocument, translations block.TranslationMap, outputPath string) (string, error) {
	slideNames, err := sortedSlideNames(doc.SourcePath)
	if err != nil {
		return "", err
	}

	slideBlocks := make(map[[3]int]*block.PptxBlock)
	for _, b := range doc.Blocks {
		pb, ok := b.(*block.PptxBlock)
		if !ok {
			continue
		}
		slideBlocks[[3]int{pb.SlideIndex, pb.ShapeIndex, pb.ParagraphIndex}] = pb
	}

	replacements := make(map[string][]byte, len(slideNames))
	for slideIdx, name := range slideNames {
		data, err := readPart(doc.SourcePath, name)
		if err != nil {
			return "", err
		}

		xmlDoc := etree.NewDocument()
		if err := xmlDoc.ReadFromBytes(data); err != nil {
			return "", types.NewAppError(types.ErrReconstruction,
				fmt.Sprintf("cannot parse slide %d", slideIdx+1), err)
		}

		spTree := xmlDoc.FindElement("//p:spTree")
		if spTree == nil {
			continue
		}

		changed := false
		for shapeIdx, sp := range spTree.SelectElements("p:sp") {
			txBody := sp.FindElement("p:txBody")
			if txBody == nil {
				continue
			}
			for paraIdx, para := range txBody.SelectElements("a:p") {
				pb := slideBlocks[[3]int{slideIdx, shapeIdx, paraIdx}]
				if pb == nil {
					continue
				}
				if substituteRuns(para, "a:t", translations.Lookup(pb.BlockID, pb.Source)) {
					changed = true
				} else {
					logger.Warn("slide paragraph no longer has runs, skipping block",
						logger.String("blockID", pb.BlockID))
				}
			}
		}
		if !changed {
			continue
		}

		out, err := xmlDoc.WriteToBytes()
		if err != nil {
			return "", types.NewAppError(types.ErrReconstruction,
				fmt.Sprintf("cannot serialize slide %d", slideIdx+1), err)
		}
		replacements[name] = out
	}

	if err := rewriteArchive(doc.SourcePath, outputPath, replacements); err != nil {
		return "", err
	}

	logger.Info("PPTX rebuilt",
		logger.String("output", outputPath),
		logger.Int("slides", len(slideNames)))
	return outputPath, nil
}

// sortedSlideNames lists slide part names in presentation order, matching
// the slide indexing extraction used.
func sortedSlideNames(path string) ([]string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, types.NewAppError(types.ErrReconstruction,
			"cannot reopen source presentation", err)
	}
	defer zr.Close()

	var names []string
	for _, f := range zr.File {
		if slideNamePattern.MatchString(f.Name) {
			names = append(names, f.Name)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		return slideNumber(names[i]) < slideNumber(names[j])
	})
	return names, nil
}

func slideNumber(name string) int {
	m := slideNamePattern.FindStringSubmatch(name)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}
