package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"ahu-backend/internal/domain"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrNoData aborts the import before any inserts: unreadable file or a sheet
// without at least a header row and one data row.
var ErrNoData = errors.New("File is empty or has no data rows")

type Service struct {
	DB *gorm.DB
}

// Debug carries operator-facing diagnostics; not part of the import contract.
type Debug struct {
	Headers   []string       `json:"headers"`
	ColumnMap map[string]int `json:"column_map"`
	Sample    [][]string     `json:"sample,omitempty"`
}

// Result aggregates the batch outcome. The import never fails atomically:
// rows succeed or fail independently and prior inserts stay committed.
type Result struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
	Debug   *Debug   `json:"debug,omitempty"`
}

// Import parses the first worksheet and inserts one opportunity per valid
// row. Rows with a blank title (or entirely empty rows) are skipped silently,
// counting as neither success nor failure.
func (s *Service) Import(ctx context.Context, filename string, r io.Reader) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("Unreadable spreadsheet: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoData
	}
	// Raw values so date cells arrive as serials, not locale-formatted text.
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("Unreadable spreadsheet: %v", err)
	}
	if len(rows) < 2 {
		return nil, ErrNoData
	}

	headers := rows[0]
	cm := MapColumns(headers)
	res := &Result{Errors: []string{}}

	for i, row := range rows[1:] {
		rowNum := i + 2 // 1-indexed display row, header skipped
		title := CoerceString(cell(row, cm, "title"))
		if title == nil {
			continue
		}
		opp, err := buildRow(cm, row, *title)
		if err == nil {
			err = s.DB.WithContext(ctx).Create(opp).Error
		}
		if err != nil {
			res.Failed++
			res.Errors = append(res.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			log.Warn().Int("row", rowNum).Err(err).Msg("import: row failed")
			continue
		}
		res.Success++
	}

	res.Debug = &Debug{Headers: headers, ColumnMap: cm, Sample: sampleRows(rows[1:], 3)}
	s.recordRun(ctx, filename, res)
	log.Info().Str("file", filename).Int("success", res.Success).Int("failed", res.Failed).Msg("import: batch done")
	return res, nil
}

// buildRow coerces one data row into a record. Status and priority default
// when absent but never accept values outside their enumerations.
func buildRow(cm map[string]int, row []string, title string) (*domain.Opportunity, error) {
	status := domain.StatusNew
	if v := CoerceString(cell(row, cm, "status")); v != nil {
		status = *v
	}
	if !domain.IsValidStatus(status) {
		return nil, fmt.Errorf("invalid status %q", status)
	}
	priority := domain.PriorityMedium
	if v := CoerceString(cell(row, cm, "priority")); v != nil {
		priority = *v
	}
	if !domain.IsValidPriority(priority) {
		return nil, fmt.Errorf("invalid priority %q", priority)
	}

	site := ""
	if v := CoerceString(cell(row, cm, "site")); v != nil {
		site = *v
	}

	opp := &domain.Opportunity{
		Title:                            title,
		Site:                             site,
		BU:                               CoerceString(cell(row, cm, "bu")),
		OwnerName:                        CoerceString(cell(row, cm, "owner_name")),
		Status:                           status,
		Priority:                         priority,
		TargetCloseDate:                  CoerceDate(cell(row, cm, "target_close_date")),
		Description:                      CoerceString(cell(row, cm, "description")),
		AirFlowM3H:                       CoerceCurrency(cell(row, cm, "air_flow_m3h")),
		NumberOfUnits:                    CoerceInteger(cell(row, cm, "number_of_units")),
		DSSDSPDesign:                     CoerceString(cell(row, cm, "dss_dsp_design")),
		TransferCostWithoutOHProfit8PerU: CoerceCurrency(cell(row, cm, "transfer_cost_without_oh_profit_8_per_u")),
		TransferCostCompletePerU:         CoerceCurrency(cell(row, cm, "transfer_cost_complete_per_u")),
		VorticePrice:                     CoerceCurrency(cell(row, cm, "vortice_price")),
		SellingPrice:                     CoerceCurrency(cell(row, cm, "selling_price")),
		Comments:                         CoerceString(cell(row, cm, "comments")),
	}
	// One-way derivation at import time; the fields are independent afterwards.
	opp.PriceEUR = opp.SellingPrice
	return opp, nil
}

// cell returns the raw value for a mapped field, "" when the field is unmapped
// or the row is too short (trailing empty cells are trimmed by excelize).
func cell(row []string, cm map[string]int, field string) string {
	idx, ok := cm[field]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func sampleRows(rows [][]string, n int) [][]string {
	if len(rows) < n {
		n = len(rows)
	}
	return rows[:n]
}

// recordRun writes the audit row for this batch. Best effort: a failed audit
// write never fails the import itself.
func (s *Service) recordRun(ctx context.Context, filename string, res *Result) {
	errsJSON, _ := json.Marshal(res.Errors)
	headersJSON, _ := json.Marshal(res.Debug.Headers)
	cmJSON, _ := json.Marshal(res.Debug.ColumnMap)
	run := &domain.ImportRun{
		Filename:  filename,
		Success:   res.Success,
		Failed:    res.Failed,
		Errors:    datatypes.JSON(errsJSON),
		Headers:   datatypes.JSON(headersJSON),
		ColumnMap: datatypes.JSON(cmJSON),
	}
	if err := s.DB.WithContext(ctx).Create(run).Error; err != nil {
		log.Error().Err(err).Msg("import: failed to record import run")
	}
}

// RecentRuns returns the newest import audit rows.
func (s *Service) RecentRuns(ctx context.Context, limit int) ([]domain.ImportRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []domain.ImportRun
	if err := s.DB.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}
