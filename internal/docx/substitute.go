package docx

import (
	"sort"
	"strings"
)

// Rich-text editors fragment paragraph text into formatting runs at arbitrary
// points, so a placeholder like {{name}} routinely arrives split across runs
// ("{{na" in one, "me}}" in the next). Substitution therefore merges the runs
// of each paragraph into one logical stream, locates matches there, writes
// each replacement into the first run the match spans (keeping that run's
// formatting) and collapses the runs it consumed. The run count of a
// paragraph never increases.

// match is a half-open [start, end) span in a paragraph's merged text plus
// its replacement.
type match struct {
	start, end int
	repl       string
}

// Substitute replaces every {{key}} token present in vars across all text
// surfaces: body paragraphs, table cells, headers and footers. Keys absent
// from vars stay literal so callers can layer partial passes. Matching is
// case-sensitive and replacement values are never rescanned. Returns the
// number of replacements made.
func (d *Document) Substitute(vars map[string]string) int {
	if len(vars) == 0 {
		return 0
	}
	total := 0
	for _, p := range d.paragraphs() {
		total += substituteParagraph(p, func(merged string) []match {
			return tokenMatches(merged, vars)
		})
	}
	return total
}

// ReplaceAll replaces every literal occurrence of find across all text
// surfaces, on the same run-merging machinery as Substitute. Returns the
// number of replacements made.
func (d *Document) ReplaceAll(find, repl string) int {
	if find == "" {
		return 0
	}
	total := 0
	for _, p := range d.paragraphs() {
		total += substituteParagraph(p, func(merged string) []match {
			return literalMatches(merged, find, repl)
		})
	}
	return total
}

// Variables returns the sorted distinct {{key}} names found anywhere in the
// document.
func (d *Document) Variables() []string {
	seen := make(map[string]bool)
	for _, p := range d.paragraphs() {
		merged := mergedText(p)
		pos := 0
		for {
			key, _, end, ok := nextToken(merged, pos)
			if !ok {
				break
			}
			seen[key] = true
			pos = end
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// runText returns a run's substitutable text: the content of its w:t
// elements only. Other chardata inside a run, such as w:instrText field
// instructions or w:delText revision text, is not part of the visible stream
// and must never be folded into a w:t by a replacement.
func runText(r *xmlNode) string {
	var sb strings.Builder
	for _, t := range r.elements("w:t") {
		sb.WriteString(t.text())
	}
	return sb.String()
}

// mergedText is the paragraph's visible text: its runs' w:t content,
// concatenated in document order.
func mergedText(p *xmlNode) string {
	var sb strings.Builder
	for _, r := range p.elements("w:r") {
		sb.WriteString(runText(r))
	}
	return sb.String()
}

// nextToken finds the next well-formed {{key}} token at or after pos.
// Keys containing braces are not tokens.
func nextToken(s string, pos int) (key string, start, end int, ok bool) {
	for {
		open := strings.Index(s[pos:], "{{")
		if open < 0 {
			return "", 0, 0, false
		}
		start = pos + open
		close := strings.Index(s[start+2:], "}}")
		if close < 0 {
			return "", 0, 0, false
		}
		key = s[start+2 : start+2+close]
		if strings.ContainsAny(key, "{}") {
			pos = start + 2
			continue
		}
		return key, start, start + close + 4, true
	}
}

// tokenMatches locates the {{key}} tokens in merged whose key is present in
// vars. Unknown keys are skipped entirely so they survive as literal text.
func tokenMatches(merged string, vars map[string]string) []match {
	var out []match
	pos := 0
	for {
		key, start, end, ok := nextToken(merged, pos)
		if !ok {
			return out
		}
		if repl, found := vars[key]; found {
			out = append(out, match{start: start, end: end, repl: repl})
		}
		pos = end
	}
}

func literalMatches(merged, find, repl string) []match {
	var out []match
	pos := 0
	for {
		i := strings.Index(merged[pos:], find)
		if i < 0 {
			return out
		}
		start := pos + i
		out = append(out, match{start: start, end: start + len(find), repl: repl})
		pos = start + len(find)
	}
}

type runInfo struct {
	elem       *xmlNode
	text       string
	start, end int // offsets into the original merged text
	touched    bool
}

// substituteParagraph merges the paragraph's runs, asks the matcher for spans
// to replace, and writes the results back run by run. Untouched runs are left
// exactly as parsed.
func substituteParagraph(p *xmlNode, matcher func(string) []match) int {
	var (
		runs   []*runInfo
		merged strings.Builder
	)
	for _, r := range p.elements("w:r") {
		text := runText(r)
		ri := &runInfo{elem: r, text: text, start: merged.Len()}
		merged.WriteString(text)
		ri.end = merged.Len()
		runs = append(runs, ri)
	}
	if len(runs) == 0 {
		return 0
	}

	matches := matcher(merged.String())
	if len(matches) == 0 {
		return 0
	}

	// Apply right to left: edits only change text at or after a match's
	// start, so the original offsets of every earlier match stay valid.
	for mi := len(matches) - 1; mi >= 0; mi-- {
		m := matches[mi]
		i := runAt(runs, m.start)
		j := runAt(runs, m.end-1)

		if i == j {
			r := runs[i]
			r.text = r.text[:m.start-r.start] + m.repl + r.text[m.end-r.start:]
			r.touched = true
			continue
		}
		first, last := runs[i], runs[j]
		first.text = first.text[:m.start-first.start] + m.repl
		first.touched = true
		last.text = last.text[m.end-last.start:]
		last.touched = true
		for k := i + 1; k < j; k++ {
			if runs[k].end > runs[k].start {
				runs[k].text = ""
				runs[k].touched = true
			}
		}
	}

	for _, r := range runs {
		if r.touched {
			writeRunText(p, r.elem, r.text)
		}
	}
	return len(matches)
}

// runAt returns the index of the run whose original span contains offset.
// Zero-width runs (no text content, e.g. a drawing) never contain an offset
// and are never consumed.
func runAt(runs []*runInfo, offset int) int {
	for i, r := range runs {
		if r.start <= offset && offset < r.end {
			return i
		}
	}
	// Matches come from the merged text, so an offset always lands in a run.
	return len(runs) - 1
}

// writeRunText replaces the text content of a run. The run's first w:t takes
// the whole new text and keeps the run's formatting; surplus w:t elements are
// dropped. A run left without text and holding nothing but its properties is
// removed from the paragraph, which is how consumed runs collapse.
func writeRunText(p, run *xmlNode, text string) {
	ts := run.elements("w:t")
	if len(ts) == 0 {
		return
	}
	first := ts[0]
	first.setText(text)
	if text != strings.TrimSpace(text) {
		first.setAttr("xml:space", "preserve")
	}
	for _, extra := range ts[1:] {
		run.remove(extra)
	}
	if text == "" && onlyProperties(run, first) {
		run.remove(first)
		if onlyProperties(run, nil) {
			p.remove(run)
		}
	}
}

// onlyProperties reports whether the run holds nothing besides run
// properties, whitespace and the given (soon to be removed) text element.
func onlyProperties(run *xmlNode, except *xmlNode) bool {
	for _, c := range run.children {
		if c == except {
			continue
		}
		switch c.kind {
		case textNode:
			if strings.TrimSpace(c.data) != "" {
				return false
			}
		case commentNode:
			// harmless
		case elementNode:
			if c.name != "w:rPr" {
				return false
			}
		}
	}
	return true
}
