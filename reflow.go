package termcore

// ReflowLine is one physical line of cells plus its wrapped flag, the
// common currency backends use to implement HistoryStore.Reflow.
type ReflowLine struct {
	Cells   []Cell
	Wrapped bool
}

// ReflowLines logically concatenates consecutive lines whose predecessor
// is wrapped, then re-breaks the result at newColumns, preserving the
// wrapped flag on all but the last segment of each logical line. It is
// the shared algorithm every HistoryStore backend's Reflow method calls
// after extracting its lines into this form.
func ReflowLines(lines []ReflowLine, newColumns int) []ReflowLine {
	if newColumns < 1 {
		newColumns = 1
	}
	var out []ReflowLine
	var paragraph []Cell

	flush := func() {
		if len(paragraph) == 0 {
			out = append(out, ReflowLine{})
			return
		}
		for start := 0; start < len(paragraph); start += newColumns {
			end := start + newColumns
			wrapped := end < len(paragraph)
			if end > len(paragraph) {
				end = len(paragraph)
			}
			chunk := make([]Cell, end-start)
			copy(chunk, paragraph[start:end])
			out = append(out, ReflowLine{Cells: chunk, Wrapped: wrapped})
		}
		paragraph = nil
	}

	for _, l := range lines {
		paragraph = append(paragraph, l.Cells...)
		if !l.Wrapped {
			flush()
		}
	}
	if len(paragraph) > 0 {
		flush()
	}
	return out
}
