package numbering

import (
	"fmt"
	"path/filepath"
	"regexp"

	"fjacquet/tering/internal/fileutils"
	"fjacquet/tering/internal/logging"
)

// HundredsLimit bounds the block starts searched by SplitByHundreds.
const HundredsLimit = 2000

// Block is the part of the corpus holding records Start..End.
type Block struct {
	Start   int
	End     int
	Content string
}

// Name is the block's file name for the given prefix.
func (b Block) Name(prefix string) string {
	return fmt.Sprintf("%s_%d_%d.txt", prefix, b.Start, b.End)
}

// SplitByHundreds cuts text at the lines starting records 1, 101, 201, ...
// below HundredsLimit, each optionally preceded by the marker. Block starts
// are searched in order, each after the previous one; a missing start
// extends the previous block, whose End is then the next found start minus
// one. Text before record 1 is not part of any block.
func (n *Numberer) SplitByHundreds(text string) []Block {
	type start struct{ number, pos int }
	var starts []start

	from := 0
	for number := 1; number < HundredsLimit; number += 100 {
		if number == 101 && len(starts) == 0 {
			// without record 1 there is nothing to anchor the blocks on
			break
		}
		re := regexp.MustCompile(fmt.Sprintf(`(?m)^(?:%s)?%d\.`, regexp.QuoteMeta(n.marker), number))
		loc := re.FindStringIndex(text[from:])
		if loc == nil {
			n.logger.Debug("Block start not found", logging.F(logging.FieldRecordNumber, number))
			continue
		}
		pos := from + loc[0]
		starts = append(starts, start{number: number, pos: pos})
		from = pos + 1
	}

	blocks := make([]Block, 0, len(starts))
	for i, s := range starts {
		end, last := len(text), s.number+99
		if i+1 < len(starts) {
			end = starts[i+1].pos
			last = starts[i+1].number - 1
		}
		blocks = append(blocks, Block{Start: s.number, End: last, Content: text[s.pos:end]})
	}
	return blocks
}

// WriteBlocks writes each block to <dir>/<prefix>_<start>_<end>.txt.
func (n *Numberer) WriteBlocks(blocks []Block, dir, prefix string) ([]string, error) {
	if err := fileutils.EnsureDirectoryExists(dir); err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(blocks))
	for _, b := range blocks {
		path := filepath.Join(dir, b.Name(prefix))
		if err := fileutils.WriteTextAtomic(path, b.Content); err != nil {
			return paths, err
		}
		n.logger.Info("Saved block",
			logging.F(logging.FieldOutputFile, path),
			logging.F("start", b.Start),
			logging.F("end", b.End))
		paths = append(paths, path)
	}
	return paths, nil
}
