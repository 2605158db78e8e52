package pdf

import "strings"

// minSections is the count below which the word-prefix fallback runs.
const minSections = 3

// DetectStructure groups blocks into sections. It uses block types plus a
// broader heading heuristic, then falls back to word-prefix matching when too
// few sections are found.
func DetectStructure(blocks []TextBlock) Structure {
	s := detectPrimary(blocks)
	if len(s.Sections) >= minSections {
		return s
	}

	fallback := detectByPrefix(blocks)
	if len(fallback) > 0 && len(fallback) >= len(s.Sections) {
		s.Sections = fallback
		s.UsedFallback = true
		if s.ReferencesStart < 0 {
			for _, sec := range fallback {
				if sec.Category == CategoryReferences {
					s.ReferencesStart = sec.StartBlock
					break
				}
			}
		}
		if s.AbstractStart < 0 {
			for _, sec := range fallback {
				if sec.Category == CategoryAbstract {
					s.AbstractStart = sec.StartBlock
					break
				}
			}
		}
	}
	return s
}

func detectPrimary(blocks []TextBlock) Structure {
	s := Structure{AbstractStart: -1, ReferencesStart: -1}
	avg := averageFontSize(blocks)

	for i, b := range blocks {
		if s.Title == "" && (b.Type == BlockTitle || b.Type == BlockHeading) {
			s.Title = joinLines(b.Text)
		}

		var opens bool
		if s.ReferencesStart >= 0 {
			// reference entries often look like numbered headings
			opens = appendixRe.MatchString(firstLine(b.Text))
		} else {
			opens = b.Type == BlockSectionHeading || likelyHeading(b, avg)
		}
		if !opens {
			continue
		}

		title := firstLine(b.Text)
		if n := len(s.Sections); n > 0 {
			s.Sections[n-1].EndBlock = i - 1
		}
		s.Sections = append(s.Sections, Section{
			Title:      title,
			StartBlock: i,
			EndBlock:   len(blocks) - 1,
			Page:       b.Page,
			Category:   Categorize(title),
		})

		lower := strings.ToLower(title)
		if s.AbstractStart < 0 && strings.Contains(lower, "abstract") {
			s.AbstractStart = i
		}
		if s.ReferencesStart < 0 && (strings.Contains(lower, "reference") || strings.Contains(lower, "bibliography")) {
			s.ReferencesStart = i
		}
	}
	return s
}

// detectByPrefix opens a section at every block whose text starts with a
// canonical section word, optionally behind a section number.
func detectByPrefix(blocks []TextBlock) []Section {
	var sections []Section
	for i, b := range blocks {
		title, ok := prefixHeading(b.Text)
		if !ok {
			continue
		}
		if n := len(sections); n > 0 {
			sections[n-1].EndBlock = i - 1
		}
		sections = append(sections, Section{
			Title:      title,
			StartBlock: i,
			EndBlock:   len(blocks) - 1,
			Page:       b.Page,
			Category:   Categorize(title),
		})
	}
	return sections
}

func prefixHeading(text string) (string, bool) {
	l := firstLine(text)
	lower := strings.ToLower(strings.TrimLeft(l, "0123456789. "))
	for _, kw := range fallbackKeywords {
		if strings.HasPrefix(lower, kw) {
			return l, true
		}
	}
	return "", false
}

func averageFontSize(blocks []TextBlock) float64 {
	sum, n := 0.0, 0
	for _, b := range blocks {
		if b.FontSize > 0 {
			sum += b.FontSize
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func joinLines(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
