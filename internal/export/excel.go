package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"recruitflow/internal/model"
)

const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type column struct {
	title string
	width float64
}

var candidateColumns = []column{
	{"Full Name", 25},
	{"Email", 30},
	{"Phone", 16},
	{"Location", 20},
	{"Skills", 40},
	{"Experience (years)", 12},
	{"Status", 14},
	{"Assigned Recruiter", 25},
	{"Subscription Plan", 18},
	{"Payment Status", 14},
	{"Subscription Expires", 20},
	{"Created", 20},
}

var applicationColumns = []column{
	{"Candidate", 25},
	{"Job Title", 30},
	{"Company", 25},
	{"Location", 20},
	{"Status", 12},
	{"Resume Status", 14},
	{"Match Score", 12},
	{"Job URL", 40},
	{"Applied", 20},
	{"Created", 20},
}

// CandidatesWorkbook writes one row per candidate to a single-sheet workbook.
func CandidatesWorkbook(candidates []model.Candidate) ([]byte, error) {
	rows := make([][]any, 0, len(candidates))
	for _, c := range candidates {
		recruiter := ""
		if c.AssignedRecruiter != nil {
			recruiter = c.AssignedRecruiter.FullName
		}
		rows = append(rows, []any{
			c.FullName,
			c.Email,
			c.Phone,
			c.Location,
			strings.Join(c.Skills, ", "),
			c.ExperienceYears,
			string(c.Status),
			recruiter,
			c.SubscriptionPlan,
			string(c.PaymentStatus),
			formatTime(c.SubscriptionExpiresAt),
			c.CreatedAt.Format(time.DateTime),
		})
	}
	return buildWorkbook("Candidates", candidateColumns, rows)
}

// ApplicationsWorkbook writes one row per job application to a single-sheet workbook.
func ApplicationsWorkbook(applications []model.JobApplication) ([]byte, error) {
	rows := make([][]any, 0, len(applications))
	for _, a := range applications {
		candidate := ""
		if a.Candidate != nil {
			candidate = a.Candidate.FullName
		}
		rows = append(rows, []any{
			candidate,
			a.JobTitle,
			a.Company,
			a.Location,
			string(a.Status),
			string(a.ResumeStatus),
			a.MatchScore,
			a.JobURL,
			formatTime(a.AppliedAt),
			a.CreatedAt.Format(time.DateTime),
		})
	}
	return buildWorkbook("Applications", applicationColumns, rows)
}

func buildWorkbook(sheet string, columns []column, rows [][]any) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, col := range columns {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheet, name, name, col.width); err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, name+"1", col.title); err != nil {
			return nil, err
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(columns))
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, err
	}
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return nil, err
	}

	for r, values := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", r+2, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.DateTime)
}

// FileName returns a dated workbook name such as "candidates_2024-05-01.xlsx".
func FileName(prefix string, now time.Time) string {
	return fmt.Sprintf("%s_%s.xlsx", prefix, now.Format(time.DateOnly))
}
