package ingest

import (
	"bytes"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/invoice-auditor/constants"
	"github.com/joseph-ayodele/invoice-auditor/internal/common"
)

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()
	loader := NewLoader(common.ImageConfig{MaxMB: 1, MaxDimension: 64}, nil)

	t.Run("pdf", func(t *testing.T) {
		p := filepath.Join(dir, "inv.pdf")
		touch(t, p, "%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<<>>\nendobj\n")

		doc, err := loader.Load(p)
		require.NoError(t, err)
		assert.Equal(t, "inv.pdf", doc.Name)
		assert.Equal(t, constants.PDF, doc.Format)
		assert.Equal(t, "application/pdf", doc.MIMEType)
		assert.Len(t, doc.ContentHash, 64)
	})

	t.Run("csv", func(t *testing.T) {
		p := filepath.Join(dir, "inv.csv")
		touch(t, p, "item,total\nwidget,10\n")

		doc, err := loader.Load(p)
		require.NoError(t, err)
		assert.Equal(t, constants.CSV, doc.Format)
		assert.Equal(t, "text/csv", doc.MIMEType)
		assert.Equal(t, "item,total\nwidget,10\n", string(doc.Data))
	})

	t.Run("xlsx becomes csv", func(t *testing.T) {
		p := filepath.Join(dir, "inv.xlsx")
		f := excelize.NewFile()
		require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Description", "Total"}))
		require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"Consulting, May", "$1,200.00"}))
		require.NoError(t, f.SetCellValue("Sheet1", "A3", "Tax"))
		require.NoError(t, f.SaveAs(p))
		require.NoError(t, f.Close())

		doc, err := loader.Load(p)
		require.NoError(t, err)
		assert.Equal(t, constants.CSV, doc.Format)
		assert.Equal(t, "text/csv", doc.MIMEType)
		assert.Equal(t, "Description,Total\n\"Consulting, May\",\"$1,200.00\"\nTax,\n", string(doc.Data))
	})

	t.Run("large image is downscaled", func(t *testing.T) {
		p := filepath.Join(dir, "scan.png")
		img := imaging.New(200, 100, color.White)
		require.NoError(t, imaging.Save(img, p))

		doc, err := loader.Load(p)
		require.NoError(t, err)
		assert.Equal(t, constants.IMAGE, doc.Format)
		assert.Equal(t, "image/png", doc.MIMEType)

		cfg, _, err := image.DecodeConfig(bytes.NewReader(doc.Data))
		require.NoError(t, err)
		assert.Equal(t, 64, cfg.Width)
		assert.Equal(t, 32, cfg.Height)
	})

	t.Run("small image untouched", func(t *testing.T) {
		p := filepath.Join(dir, "small.jpg")
		require.NoError(t, imaging.Save(imaging.New(10, 10, color.Black), p))

		doc, err := loader.Load(p)
		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", doc.MIMEType)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loader.Load(filepath.Join(dir, "absent.pdf"))
		require.Error(t, err)
		assert.Equal(t, constants.KindLoad, common.KindOf(err))
	})

	t.Run("corrupt workbook", func(t *testing.T) {
		p := filepath.Join(dir, "broken.xlsx")
		touch(t, p, "not a zip")
		_, err := loader.Load(p)
		assert.Equal(t, constants.KindLoad, common.KindOf(err))
	})
}
