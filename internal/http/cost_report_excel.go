package httpapi

import (
	"bytes"
	"fmt"

	"homesketch-data/internal/service"

	"github.com/xuri/excelize/v2"
)

// CostReportHeader 成本报表行表头
var CostReportHeader = []string{
	"Room",
	"Item",
	"Material Cost",
	"Labor Cost",
	"Total Cost",
}

// GenerateCostReport 生成草图成本报表 Excel 文件
// 每个房间一组：房间行在前，其下固定装置逐行列出，最后是汇总区。
func GenerateCostReport(b *service.CostBreakdown) ([]byte, error) {
	f := excelize.NewFile()
	// Note: Don't defer Close() here, because WriteTo needs the file to be open

	sheetName := "Cost Breakdown"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range CostReportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(sheetName, cell, header)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	row := 2
	setRow := func(values ...any) {
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheetName, cell, v)
		}
		row++
	}

	for _, room := range b.Rooms {
		setRow(room.Name, "room", room.MaterialCost, room.LaborCost, room.TotalCost)
		for _, fixture := range room.Fixtures {
			setRow(room.Name, fixture.Name, fixture.UnitCost, fixture.LaborCost, fixture.TotalCost)
		}
	}

	// 汇总区
	row++
	setRow("", "Materials", b.TotalMaterials, "", "")
	setRow("", "Labor", "", b.TotalLabor, "")
	setRow("", "Subtotal", "", "", b.Subtotal)
	setRow("", fmt.Sprintf("Markup (%.1f%%)", b.MarkupPercentage), "", "", b.MarkupAmount)
	setRow("", "Total", "", "", b.TotalCost)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close workbook: %w", err)
	}
	return buf.Bytes(), nil
}
