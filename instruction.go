package ncxlate

import (
	"sort"
	"strings"
)

// Instruction is an ordered list of Words whose head (index 0) is the
// command word and whose tail is zero or more parameter words.
type Instruction []Word

// Head returns the command word of the instruction.
func (ins Instruction) Head() Word {
	return ins[0]
}

// Param returns the first tail word with the given letter, if any.
func (ins Instruction) Param(letter byte) (Word, bool) {
	for _, w := range ins[1:] {
		if w.Letter == letter {
			return w, true
		}
	}
	return Word{}, false
}

// motionGroupCodes update currentMotionCommand when seen as an instruction
// head (spec.md restricts the sticky set to the motion commands that can
// carry axes — unlike the original Python source, G80 is not sticky here).
var motionGroupCodes = map[string]bool{
	"G0": true, "G1": true, "G2": true, "G3": true,
	"G81": true, "G82": true, "G83": true,
}

// axesCommandCodes accept trailing axis words attached by splitBlock.
var axesCommandCodes = motionGroupCodes

// splitBlock scans a canonical block's whitespace-separated tokens and
// groups them into instructions, attaching any axis words to the
// axis-accepting motion instruction (or, if none was seen in the block, to
// a synthesized instruction headed by the sticky currentMotionCommand).
func splitBlock(block Block, axes map[byte]bool, currentMotionCommand string) ([]Instruction, error) {
	var instructions []Instruction
	var cur Instruction
	var axisWords []Word
	axesCommandIndex := -1

	for _, tok := range strings.Fields(string(block)) {
		w, err := parseWord(tok)
		if err != nil {
			return nil, err
		}
		switch {
		case axes[w.Letter]:
			axisWords = append(axisWords, w)
		case len(cur) > 0 && w.Letter == 'S' && (cur[0].Code() == "M3" || cur[0].Code() == "M4"):
			cur = append(cur, w)
		case w.Letter == 'F':
			// Only a motion instruction still pending in cur is pushed back
			// by the F flush; one already flushed keeps its index.
			if axesCommandIndex >= len(instructions) {
				axesCommandIndex++
			}
			instructions = append(instructions, Instruction{w})
		case w.Letter == 'G' || w.Letter == 'M' || w.Letter == 'S' || w.Letter == 'T':
			if len(cur) > 0 {
				instructions = append(instructions, cur)
			}
			if axesCommandCodes[w.Code()] {
				axesCommandIndex = len(instructions)
			}
			cur = Instruction{w}
		default:
			cur = append(cur, w)
		}
	}
	if len(cur) > 0 {
		instructions = append(instructions, cur)
	}

	if len(axisWords) > 0 {
		if axesCommandIndex < 0 {
			head, err := parseWord(currentMotionCommand)
			if err != nil {
				return nil, err
			}
			synthesized := append(Instruction{head}, axisWords...)
			instructions = append(instructions, synthesized)
		} else {
			instructions[axesCommandIndex] = append(instructions[axesCommandIndex], axisWords...)
		}
	}
	return instructions, nil
}

// reorderBlock moves any F instruction ahead of the rest of the block,
// preserving relative order otherwise (a stable sort on a two-value key).
func reorderBlock(instructions []Instruction) []Instruction {
	out := make([]Instruction, len(instructions))
	copy(out, instructions)
	sort.SliceStable(out, func(i, j int) bool {
		return priority(out[i]) < priority(out[j])
	})
	return out
}

func priority(ins Instruction) int {
	if ins.Head().Letter == 'F' {
		return 10
	}
	return 20
}
