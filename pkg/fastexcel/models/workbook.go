package models

// WorkbookData is the result of extracting every sheet of a workbook.
type WorkbookData struct {
	// BookName is the workbook file name (no path).
	BookName string
	// SheetNames lists the sheets in workbook order.
	SheetNames []string
	// Tables maps sheet name to its materialized table.
	Tables map[string]*Table
}
