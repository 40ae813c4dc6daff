package services

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// RenderCatalog prints one control per block in catalog order, in a stable
// text form suited to line diffs.
func RenderCatalog(controls []CatalogControl) string {
	var sb strings.Builder
	for _, c := range controls {
		fmt.Fprintf(&sb, "[%s]", c.Key)
		if c.ArticleCode != "" {
			fmt.Fprintf(&sb, " %s", c.ArticleCode)
			if c.ArticleTitle != "" {
				fmt.Fprintf(&sb, " - %s", c.ArticleTitle)
			}
		}
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "  question: %s\n", oneLine(c.Question))
		if c.Recommendation != "" {
			fmt.Fprintf(&sb, "  recommendation: %s\n", oneLine(c.Recommendation))
		}
	}
	return sb.String()
}

// DiffCatalogText returns a line diff of before and after, prefixing removed
// lines with "-", added lines with "+" and unchanged lines with a space.
// changed is false when both texts are identical.
func DiffCatalogText(before, after string) (diff string, changed bool) {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
			changed = true
		case diffmatchpatch.DiffInsert:
			prefix = "+"
			changed = true
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			sb.WriteString(prefix)
			sb.WriteString(line)
			if !strings.HasSuffix(line, "\n") {
				sb.WriteString("\n")
			}
		}
	}
	return sb.String(), changed
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
