package report_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/demo-data-assistant/internal/application/dto"
	"github.com/jhoicas/demo-data-assistant/internal/domain/entity"
	"github.com/jhoicas/demo-data-assistant/internal/infrastructure/report"
)

func sampleRun() *dto.RunResponse {
	started := time.Date(2026, 3, 16, 9, 0, 0, 0, time.UTC)
	finished := started.Add(90 * time.Second)
	modules := entity.NewModuleReport()
	modules.Add("sale.order", 5, 6)
	modules.Add("crm.lead", 1, 2, 3)
	modules.Skip("bank", "módulo account no instalado")
	return &dto.RunResponse{
		ID:         "run-1",
		Industry:   "Bäckerei",
		Status:     entity.RunFailed,
		Failure:    "fallo de transporte con el ERP",
		Result:     entity.RunResult{ProductIDs: []int{1, 2, 3}, CompanyIDs: []int{9}},
		Modules:    modules,
		StartedAt:  started,
		FinishedAt: &finished,
		Errors: []entity.ErrorRecord{{
			URL: "https://erp.example/json/2/crm.lead/create", Method: "POST", StatusCode: 422,
			ErrorMessage: "campo inválido", ErrorBody: `{"error":"x"}`, PayloadKeys: []string{"name", "stage_id"},
		}},
	}
}

func TestWriteXLSX_Hojas(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteXLSX(&buf, sampleRun()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{report.SheetSummary, report.SheetModules, report.SheetErrors}, f.GetSheetList())

	status, err := f.GetCellValue(report.SheetSummary, "B3")
	require.NoError(t, err)
	assert.Equal(t, "failed", status)
	products, _ := f.GetCellValue(report.SheetSummary, "B7")
	assert.Equal(t, "3", products)

	rows, err := f.GetRows(report.SheetModules)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"crm.lead", "3", "1,2,3"}, rows[1])
	assert.Equal(t, []string{"sale.order", "2", "5,6"}, rows[2])
	assert.Equal(t, "bank: módulo account no instalado", rows[3][2])

	errs, err := f.GetRows(report.SheetErrors)
	require.NoError(t, err)
	require.Len(t, errs, 2)
	assert.Equal(t, "422", errs[1][2])
	assert.Equal(t, "name, stage_id", errs[1][5])
}

func TestWriteXLSX_SinModulos(t *testing.T) {
	run := sampleRun()
	run.Modules = nil
	run.Errors = nil

	var buf bytes.Buffer
	require.NoError(t, report.WriteXLSX(&buf, run))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(report.SheetModules)
	require.NoError(t, err)
	assert.Len(t, rows, 1, "solo la cabecera")
}
