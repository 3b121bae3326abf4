// Package catalogimport reads catalog spreadsheets into category writes.
//
// The first sheet is read. Row 1 holds headers, matched case-insensitively:
//
//	category_key, category_title, title, description, price, status,
//	inventory, image_url, featured
//
// Rows sharing a category_key become one category, in first-seen order.
// Products keep their row order within the category.
package catalogimport

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jerseylab/jerseylab-backend/internal/app/model"
	"github.com/jerseylab/jerseylab-backend/internal/app/service"
	"github.com/xuri/excelize/v2"
)

var requiredColumns = []string{"category_key", "title", "price"}

// Result is a parsed workbook.
type Result struct {
	Categories []service.CategoryInput
	Rows       int
	Skipped    []string // one reason per rejected row
}

// ReadXLSX parses a workbook from r.
func ReadXLSX(r io.Reader) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	columns := make(map[string]int, len(rows[0]))
	for i, header := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("missing required column %q", name)
		}
	}

	cell := func(row []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	result := &Result{}
	index := make(map[string]int)

	for i, row := range rows[1:] {
		line := i + 2
		if isBlank(row) {
			continue
		}
		result.Rows++

		key := cell(row, "category_key")
		title := cell(row, "title")
		if key == "" || title == "" {
			result.Skipped = append(result.Skipped, fmt.Sprintf("row %d: category_key and title are required", line))
			continue
		}

		inventory := 0
		if raw := cell(row, "inventory"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				result.Skipped = append(result.Skipped, fmt.Sprintf("row %d: invalid inventory %q", line, raw))
				continue
			}
			inventory = n
		}

		status := model.ProductStatus(strings.ToLower(cell(row, "status")))
		if status == "" {
			status = model.ProductStatusActive
		}
		if !status.IsValid() {
			result.Skipped = append(result.Skipped, fmt.Sprintf("row %d: invalid status %q", line, status))
			continue
		}

		product := service.ProductInput{
			Title:       title,
			Description: cell(row, "description"),
			Price:       cell(row, "price"),
			Currency:    "USD",
			Status:      status,
			Inventory:   inventory,
			ImageURL:    cell(row, "image_url"),
			Featured:    parseBool(cell(row, "featured")),
		}

		pos, ok := index[key]
		if !ok {
			categoryTitle := cell(row, "category_title")
			if categoryTitle == "" {
				categoryTitle = key
			}
			result.Categories = append(result.Categories, service.CategoryInput{
				Key:    key,
				Title:  categoryTitle,
				Status: model.CategoryStatusActive,
			})
			pos = len(result.Categories) - 1
			index[key] = pos
		}
		result.Categories[pos].Products = append(result.Categories[pos].Products, product)
	}

	return result, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "y", "x":
		return true
	}
	return false
}
