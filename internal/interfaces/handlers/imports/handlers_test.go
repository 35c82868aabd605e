package imports

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	impsvc "ahu-backend/internal/application/importer"
	"ahu-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

func setupImportTest(t *testing.T) (*fiber.App, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Opportunity{}, &domain.ImportRun{}))
	h := &Handlers{Service: &impsvc.Service{DB: db}}

	app := fiber.New()
	app.Post("/import", h.Upload)
	app.Get("/import/runs", h.Runs)
	return app, db
}

func workbookBytes(t *testing.T, rows ...[]interface{}) []byte {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func multipartUpload(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestUploadMissingFile(t *testing.T) {
	app, _ := setupImportTest(t)
	req := httptest.NewRequest("POST", "/import", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "No file uploaded", body["error"])
}

func TestUploadHeaderOnlySheet(t *testing.T) {
	app, _ := setupImportTest(t)
	content := workbookBytes(t, []interface{}{"Project Name", "Site"})
	body, contentType := multipartUpload(t, "empty.xlsx", content)

	req := httptest.NewRequest("POST", "/import", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestUploadImportsRows(t *testing.T) {
	app, db := setupImportTest(t)
	content := workbookBytes(t,
		[]interface{}{"Project Name", "Site", "Selling Price (EUR)"},
		[]interface{}{"AHU for plant 7", "Milan", "1.500,00"},
		[]interface{}{"", "", ""}, // blank row is skipped, not failed
	)
	body, contentType := multipartUpload(t, "leads.xlsx", content)

	req := httptest.NewRequest("POST", "/import", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var res impsvc.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.Equal(t, 1, res.Success)
	assert.Equal(t, 0, res.Failed)
	assert.Empty(t, res.Errors)
	require.NotNil(t, res.Debug)
	assert.Contains(t, res.Debug.ColumnMap, "title")

	var count int64
	require.NoError(t, db.Model(&domain.Opportunity{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRunsListsAuditTrail(t *testing.T) {
	app, _ := setupImportTest(t)
	content := workbookBytes(t,
		[]interface{}{"Project Name", "Site"},
		[]interface{}{"Lead", "Milan"},
	)
	body, contentType := multipartUpload(t, "leads.xlsx", content)
	req := httptest.NewRequest("POST", "/import", body)
	req.Header.Set("Content-Type", contentType)
	_, err := app.Test(req)
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("GET", "/import/runs", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var out struct {
		Data []domain.ImportRun `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Data, 1)
	assert.Equal(t, "leads.xlsx", out.Data[0].Filename)
}
