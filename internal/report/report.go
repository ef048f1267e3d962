// Package report renders a learner's progress across courses as an xlsx
// workbook for download.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ayonpaul8906/skillbite-engine/internal/course"
)

const summarySheet = "Summary"

var titleCaser = cases.Title(language.English)

// Write renders one workbook: a summary sheet with per-course totals plus a
// detail sheet per course listing every resource and its completion state.
func Write(w io.Writer, identity string, courses []course.Course) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("renaming summary sheet: %w", err)
	}

	if err := writeSummary(f, identity, courses); err != nil {
		return err
	}
	for i, c := range courses {
		if err := writeCourseSheet(f, i, c); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, identity string, courses []course.Course) error {
	rows := [][]any{
		{"Learner", identity},
		{},
		{"Course", "Resources", "Completed", "Progress"},
	}
	for _, c := range courses {
		total := len(c.Resources)
		done := c.CompletedCount()
		pct := 0.0
		if total > 0 {
			pct = float64(done) / float64(total)
		}
		rows = append(rows, []any{courseLabel(c), total, done, fmt.Sprintf("%.0f%%", pct*100)})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("addressing summary row %d: %w", i+1, err)
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("writing summary row %d: %w", i+1, err)
		}
	}
	return nil
}

func writeCourseSheet(f *excelize.File, idx int, c course.Course) error {
	name := sheetName(idx, courseLabel(c))
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("creating sheet for course %q: %w", c.ID, err)
	}

	rows := [][]any{
		{"Title", "Kind", "Link", "Duration", "Completed"},
	}
	for _, r := range c.Resources {
		completed := "no"
		if r.Completed {
			completed = "yes"
		}
		rows = append(rows, []any{r.Title, titleCaser.String(r.Kind().String()), r.Link, r.Duration, completed})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("addressing row %d of %q: %w", i+1, name, err)
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("writing row %d of %q: %w", i+1, name, err)
		}
	}
	return nil
}

// Excel forbids these in sheet names.
var sheetCharReplacer = strings.NewReplacer(
	":", " ", "\\", " ", "/", " ", "?", " ", "*", " ", "[", " ", "]", " ",
)

// sheetName builds a valid, unique sheet name for a course: the numeric
// prefix keeps same-named courses apart, forbidden characters are replaced,
// and the 31-character cap is applied per rune so multi-byte names are not
// split mid-rune.
func sheetName(idx int, label string) string {
	name := fmt.Sprintf("%d %s", idx+1, sheetCharReplacer.Replace(label))
	if runes := []rune(name); len(runes) > 31 {
		name = string(runes[:31])
	}
	return name
}

func courseLabel(c course.Course) string {
	if c.Name != "" {
		return titleCaser.String(c.Name)
	}
	return c.ID
}
