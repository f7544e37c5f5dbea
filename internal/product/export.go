package product

import (
	"io"

	"github.com/antonminaichev/storefront/internal/types/product"
	"github.com/tealeg/xlsx"
)

var exportHeaders = []string{
	"ID", "Name", "Description", "Category", "Price", "Stock",
	"Rating", "Reviews", "Image", "CreatedAt", "UpdatedAt",
}

// WriteWorkbook writes the catalog as a single-sheet xlsx workbook.
func WriteWorkbook(w io.Writer, products []product.Product) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return err
	}

	header := sheet.AddRow()
	for _, h := range exportHeaders {
		header.AddCell().SetValue(h)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetValue(p.ID)
		row.AddCell().SetValue(p.Name)
		row.AddCell().SetValue(p.Description)
		row.AddCell().SetValue(p.Category)
		row.AddCell().SetValue(p.Price)
		row.AddCell().SetValue(p.Stock)
		row.AddCell().SetValue(p.Rating)
		row.AddCell().SetValue(p.Reviews)
		row.AddCell().SetValue(p.Image)
		row.AddCell().SetValue(p.CreatedAt.Format("2006-01-02 15:04:05"))
		row.AddCell().SetValue(p.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	return file.Write(w)
}
