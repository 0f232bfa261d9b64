package ingest

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/invoice-auditor/constants"
	"github.com/joseph-ayodele/invoice-auditor/internal/common"
	"github.com/joseph-ayodele/invoice-auditor/internal/entity"
)

// Loader reads invoice files into documents ready for a model call.
type Loader struct {
	maxImageBytes int64
	maxDimension  int
	logger        *slog.Logger
}

func NewLoader(cfg common.ImageConfig, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxMB <= 0 {
		cfg.MaxMB = constants.DefaultMaxImageMB
	}
	if cfg.MaxDimension <= 0 {
		cfg.MaxDimension = constants.DefaultMaxImageDimension
	}
	return &Loader{
		maxImageBytes: int64(cfg.MaxMB) * 1024 * 1024,
		maxDimension:  cfg.MaxDimension,
		logger:        logger,
	}
}

// Load reads path. Spreadsheets come back as CSV text with MIME text/csv and the CSV format;
// images above the size or dimension limit are downscaled.
// Failures carry the load failure kind.
func (l *Loader) Load(path string) (entity.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return entity.Document{}, loadError("read file", err)
	}
	sum := sha256.Sum256(data)
	doc := entity.Document{
		Path:        path,
		Name:        filepath.Base(path),
		ContentHash: hex.EncodeToString(sum[:]),
		Format:      constants.MapExtToFormat(filepath.Ext(path)),
	}

	switch doc.Format {
	case constants.SPREADSHEET:
		text, err := SpreadsheetToCSV(data)
		if err != nil {
			return entity.Document{}, loadError("convert spreadsheet", err)
		}
		doc.Data = text
		doc.MIMEType = "text/csv"
		doc.Format = constants.CSV
	case constants.CSV:
		doc.Data = data
		doc.MIMEType = "text/csv"
	case constants.IMAGE:
		img, mt, err := l.fitImage(path, data)
		if err != nil {
			return entity.Document{}, loadError("prepare image", err)
		}
		doc.Data = img
		doc.MIMEType = mt
	default:
		doc.Data = data
		doc.MIMEType = detectMIME(data)
	}

	if len(doc.Data) == 0 {
		return entity.Document{}, loadError("read file", fmt.Errorf("%s is empty", doc.Name))
	}
	l.logger.Debug("ingest.load.ok",
		"file", doc.Name,
		"format", doc.Format,
		"mime", doc.MIMEType,
		"bytes", len(doc.Data),
	)
	return doc, nil
}

// SpreadsheetToCSV renders the first sheet of an xlsx workbook as CSV, header row included.
// Ragged rows are padded so every record has the same number of fields.
func SpreadsheetToCSV(data []byte) ([]byte, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, r := range rows {
		rec := make([]string, width)
		copy(rec, r)
		if err := w.Write(rec); err != nil {
			return nil, fmt.Errorf("write csv: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

func (l *Loader) fitImage(path string, data []byte) ([]byte, string, error) {
	mt := detectMIME(data)
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image header: %w", err)
	}
	if max(cfg.Width, cfg.Height) <= l.maxDimension && int64(len(data)) <= l.maxImageBytes {
		return data, mt, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	img = imaging.Fit(img, l.maxDimension, l.maxDimension, imaging.Lanczos)

	format, err := imaging.FormatFromFilename(path)
	if err != nil {
		format = imaging.JPEG
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(90)); err != nil {
		return nil, "", fmt.Errorf("encode image: %w", err)
	}
	if int64(buf.Len()) > l.maxImageBytes {
		return nil, "", fmt.Errorf("image is %d bytes after downscale, limit %d", buf.Len(), l.maxImageBytes)
	}
	l.logger.Info("ingest.image.downscaled",
		"file", filepath.Base(path),
		"from_width", cfg.Width,
		"from_height", cfg.Height,
		"bytes_before", len(data),
		"bytes_after", buf.Len(),
	)
	return buf.Bytes(), detectMIME(buf.Bytes()), nil
}

func detectMIME(data []byte) string {
	mt, _, _ := strings.Cut(mimetype.Detect(data).String(), ";")
	return strings.TrimSpace(mt)
}

func loadError(op string, err error) error {
	return common.NewAppError(string(constants.KindLoad), op, err)
}
