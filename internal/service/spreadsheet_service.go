package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go-inventory-stock/internal/model"
	"go-inventory-stock/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const productSheet = "Products"

var productColumns = []string{
	"SKU", "Name", "Variant", "Parent SKU", "Quantity", "Minimum", "Purchase Price", "Sale Price", "Location", "Stock Level",
}

var ErrEmptySheet = errors.New("spreadsheet has no rows")

// ImportSummary reports what an import created and which rows were skipped.
type ImportSummary struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors"`
}

type SpreadsheetService interface {
	ExportProducts(ctx context.Context, branchID model.ID) (*bytes.Buffer, error)
	ImportProducts(ctx context.Context, r io.Reader, actor Actor) (*ImportSummary, error)
}

type spreadsheetService struct {
	productRepo repository.ProductRepository
	inventory   InventoryService
	log         *zap.Logger
}

func NewSpreadsheetService(pRepo repository.ProductRepository, inventory InventoryService, log *zap.Logger) SpreadsheetService {
	return &spreadsheetService{productRepo: pRepo, inventory: inventory, log: log}
}

func (s *spreadsheetService) ExportProducts(ctx context.Context, branchID model.ID) (*bytes.Buffer, error) {
	products, err := allProducts(ctx, s.productRepo, branchID)
	if err != nil {
		return nil, err
	}
	skuByID := make(map[model.ID]string, len(products))
	for _, p := range products {
		skuByID[p.ID] = p.SKU
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", productSheet); err != nil {
		return nil, err
	}
	header := make([]interface{}, len(productColumns))
	for i, c := range productColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(productSheet, "A1", &header); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetRowStyle(productSheet, 1, 1, bold); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(productSheet, "A", "B", 24); err != nil {
		return nil, err
	}

	for i, p := range products {
		parentSKU := ""
		if p.ParentProductID != nil {
			parentSKU = skuByID[*p.ParentProductID]
		}
		variantName := ""
		if p.VariantName != nil {
			variantName = *p.VariantName
		}
		location := ""
		if p.Location != nil {
			location = *p.Location
		}
		row := []interface{}{
			p.SKU, p.Name, variantName, parentSKU,
			p.QuantityInStock, p.MinimumStockLevel,
			p.PurchasePrice.StringFixed(2), p.SalePrice.StringFixed(2),
			location, string(p.StockLevel()),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(productSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	s.log.Info("products exported", zap.String("branch_id", branchID.String()), zap.Int("rows", len(products)))
	return buf, nil
}

type importRow struct {
	line      int
	parentSKU string
	input     ProductInput
}

// ImportProducts creates one product per row. Parents are created before variants
// so a variant may reference a parent defined further down the sheet.
func (s *spreadsheetService) ImportProducts(ctx context.Context, r io.Reader, actor Actor) (*ImportSummary, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptySheet
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmptySheet
	}

	start := 0
	if len(rows[0]) > 0 && strings.EqualFold(strings.TrimSpace(rows[0][0]), "SKU") {
		start = 1
	}

	summary := &ImportSummary{Errors: []string{}}
	var parents, variants []importRow
	for i := start; i < len(rows); i++ {
		row, err := parseImportRow(i+1, rows[i])
		if err != nil {
			summary.skip(i+1, err)
			continue
		}
		if row == nil {
			continue
		}
		if row.parentSKU == "" {
			parents = append(parents, *row)
		} else {
			variants = append(variants, *row)
		}
	}

	for _, row := range parents {
		s.createRow(ctx, row, actor, summary)
	}
	for _, row := range variants {
		parent, err := s.productRepo.FindBySKU(ctx, actor.BranchID, row.parentSKU)
		if err != nil {
			summary.skip(row.line, fmt.Errorf("parent SKU %q: %w", row.parentSKU, ErrInvalidParent))
			continue
		}
		parentID := parent.ID.String()
		row.input.ParentProductID = &parentID
		s.createRow(ctx, row, actor, summary)
	}

	s.log.Info("products imported",
		zap.String("branch_id", actor.BranchID.String()),
		zap.Int("created", summary.Created),
		zap.Int("skipped", summary.Skipped))
	return summary, nil
}

func (s *spreadsheetService) createRow(ctx context.Context, row importRow, actor Actor, summary *ImportSummary) {
	if _, err := s.inventory.CreateProduct(ctx, &row.input, actor); err != nil {
		summary.skip(row.line, err)
		return
	}
	summary.Created++
}

func (s *ImportSummary) skip(line int, err error) {
	s.Skipped++
	s.Errors = append(s.Errors, fmt.Sprintf("row %d: %v", line, err))
}

// parseImportRow returns nil for blank rows.
func parseImportRow(line int, cells []string) (*importRow, error) {
	col := func(i int) string {
		if i < len(cells) {
			return strings.TrimSpace(cells[i])
		}
		return ""
	}
	if strings.Join(cells, "") == "" {
		return nil, nil
	}

	row := &importRow{
		line:      line,
		parentSKU: col(3),
		input: ProductInput{
			SKU:  col(0),
			Name: col(1),
		},
	}
	if v := col(2); v != "" {
		row.input.VariantName = &v
	}

	var err error
	if row.input.QuantityInStock, err = intCell(col(4)); err != nil {
		return nil, fmt.Errorf("quantity: %w", err)
	}
	if row.input.MinimumStockLevel, err = intCell(col(5)); err != nil {
		return nil, fmt.Errorf("minimum: %w", err)
	}
	if row.input.PurchasePrice, err = decimalCell(col(6)); err != nil {
		return nil, fmt.Errorf("purchase price: %w", err)
	}
	if row.input.SalePrice, err = decimalCell(col(7)); err != nil {
		return nil, fmt.Errorf("sale price: %w", err)
	}
	if v := col(8); v != "" {
		row.input.Location = &v
	}
	return row, nil
}

func intCell(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

func decimalCell(v string) (decimal.Decimal, error) {
	if v == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(v)
}
