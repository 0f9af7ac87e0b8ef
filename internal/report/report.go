package report

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/UnknownOlympus/chronos/internal/models"
	"github.com/xuri/excelize/v2"
)

var ErrNoBookings = errors.New("failed to generate report, 0 bookings were provided")

const (
	// maxSheetNameLength is the Excel limit for sheet names.
	maxSheetNameLength = 31
	defaultSheet       = "Sheet1"
)

// Generator holds the state for the Excel report generation process.
type Generator struct {
	file             *excelize.File
	ownsDefaultSheet bool
}

// NewGenerator creates a new report generator.
func NewGenerator() *Generator {
	return &Generator{
		file: excelize.NewFile(),
	}
}

// GenerateExcelReport builds a workbook with one sheet per staff member. Sheets are ordered by
// staff identifier and rows keep the order of the given bookings. The first sheet is active.
//
// It returns ErrNoBookings when bookings is empty.
func GenerateExcelReport(bookings []models.Booking) (*bytes.Buffer, error) {
	var err error

	if len(bookings) == 0 {
		return nil, ErrNoBookings
	}

	byStaff := make(map[string][]models.Booking)
	for _, booking := range bookings {
		byStaff[booking.StaffID] = append(byStaff[booking.StaffID], booking)
	}

	gen := NewGenerator()
	defer gen.file.Close()

	if err = gen.addSheets(byStaff); err != nil {
		return nil, fmt.Errorf("failed to add sheets: %w", err)
	}

	gen.file.SetActiveSheet(0)

	// delete default sheet unless a staff member owns that name
	if !gen.ownsDefaultSheet {
		if err = gen.file.DeleteSheet(defaultSheet); err != nil {
			return nil, fmt.Errorf("failed to delete default sheet '%s': %w", defaultSheet, err)
		}
	}

	buffer, err := gen.file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook to buffer: %w", err)
	}

	return buffer, nil
}

// addSheets creates a sheet per staff member, sets up its header and fills in the bookings.
func (g *Generator) addSheets(byStaff map[string][]models.Booking) error {
	var err error
	headerIndex := 2

	staffIDs := make([]string, 0, len(byStaff))
	for staffID := range byStaff {
		staffIDs = append(staffIDs, staffID)
	}
	sort.Strings(staffIDs)

	names := uniqueSheetNames(staffIDs)
	for tableIndex, staffID := range staffIDs {
		bookings := byStaff[staffID]
		sheetName := names[tableIndex]

		if strings.EqualFold(sheetName, defaultSheet) {
			g.ownsDefaultSheet = true
		}
		if _, err = g.file.NewSheet(sheetName); err != nil {
			return fmt.Errorf("failed to generate new sheet '%s': %w", sheetName, err)
		}

		if err = g.setupSheet(sheetName, tableIndex, len(bookings)); err != nil {
			return fmt.Errorf("failed to setup sheet '%s': %w", sheetName, err)
		}

		for i, booking := range bookings {
			if err = g.addRow(sheetName, i+headerIndex, booking); err != nil { // i+2, because the first row is the header
				return fmt.Errorf("failed to add row '%d': %w", i+headerIndex, err)
			}
		}
	}
	return nil
}

// setupSheet writes the styled header row, sets column widths and adds a table over the data range.
func (g *Generator) setupSheet(sheetName string, tableIndex, rowCount int) error {
	var err error

	headerStyle, err := g.file.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Vertical: "center", Horizontal: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create new style: %w", err)
	}

	rowHeight := 20
	headers := []string{"Booking ID", "Start", "End", "Minutes", "Customer", "Phone", "Email"}
	if err = g.file.SetRowHeight(sheetName, 1, float64(rowHeight)); err != nil {
		return fmt.Errorf("failed to set row height for headers: %w", err)
	}
	if err = g.file.SetSheetRow(sheetName, "A1", &headers); err != nil {
		return fmt.Errorf("failed to set sheet row for headers: %w", err)
	}
	if err = g.file.SetCellStyle(sheetName, "A1", "G1", headerStyle); err != nil {
		return fmt.Errorf("failed to set cell style for headers: %w", err)
	}

	widths := map[string]float64{
		"A": 36, "B": 22, "C": 22, "D": 10, "E": 30, "F": 18, "G": 32, //nolint:mnd // const values for column width
	}
	for col, width := range widths {
		if err = g.file.SetColWidth(sheetName, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	// Table names must be unique per workbook and may not contain spaces.
	if err = g.file.AddTable(sheetName, &excelize.Table{
		Range:     fmt.Sprintf("A1:G%d", rowCount+1),
		Name:      fmt.Sprintf("bookings_%d", tableIndex+1),
		StyleName: "TableStyleMedium9",
	}); err != nil {
		return fmt.Errorf("failed to add table: %w", err)
	}

	return nil
}

// addRow writes the booking details into the given row of the sheet.
func (g *Generator) addRow(sheetName string, rowNum int, booking models.Booking) error {
	rowData := []interface{}{
		booking.ID,
		formatTimestamp(booking.Start()),
		formatTimestamp(booking.End()),
		int(booking.Interval.Duration().Minutes()),
		booking.Customer.Name,
		booking.Customer.Phone,
		booking.Customer.Email,
	}
	cell, _ := excelize.CoordinatesToCellName(1, rowNum)

	if err := g.file.SetSheetRow(sheetName, cell, &rowData); err != nil {
		return fmt.Errorf("failed to set sheet row: %w", err)
	}

	return nil
}

// uniqueSheetNames maps staff identifiers to sheet names that stay distinct after normalisation.
// Excel compares sheet names case-insensitively, so a clash gets a "~N" suffix.
func uniqueSheetNames(staffIDs []string) []string {
	used := make(map[string]struct{}, len(staffIDs))
	names := make([]string, 0, len(staffIDs))

	for _, staffID := range staffIDs {
		base := truncateSheetName(staffID)
		name := base
		for n := 2; ; n++ {
			if _, taken := used[strings.ToLower(name)]; !taken {
				break
			}
			suffix := fmt.Sprintf("~%d", n)
			runes := []rune(base)
			if keep := maxSheetNameLength - len(suffix); len(runes) > keep {
				runes = runes[:keep]
			}
			name = string(runes) + suffix
		}
		used[strings.ToLower(name)] = struct{}{}
		names = append(names, name)
	}

	return names
}

// truncateSheetName strips characters Excel rejects in sheet names and truncates to 31 runes.
func truncateSheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '_'
		}
		return r
	}, name)
	if utf8.RuneCountInString(name) > maxSheetNameLength {
		runes := []rune(name)
		return string(runes[:maxSheetNameLength])
	}
	return name
}
