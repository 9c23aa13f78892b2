package cataloghttp

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goliatone/go-catalog/catalog"
)

const uploadField = "file"

type uploadFormat string

const (
	formatCSV  uploadFormat = "csv"
	formatXLSX uploadFormat = "xlsx"
)

var zipMagic = []byte("PK\x03\x04")

// uploadRequest is a decoded multipart catalog upload.
type uploadRequest struct {
	Name     string
	Data     []byte
	Format   uploadFormat
	Sheet    string
	Title    string
	Filename string
	Store    bool
}

func decodeUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) (uploadRequest, error) {
	if r.Body == nil {
		return uploadRequest{}, catalog.NewError(catalog.KindValidation, "request body is required", nil)
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return uploadRequest{}, catalog.NewError(catalog.KindValidation, "upload exceeds size limit", err)
		}
		return uploadRequest{}, catalog.NewError(catalog.KindValidation, "invalid multipart upload", err)
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		return uploadRequest{}, catalog.NewError(catalog.KindValidation, "file field is required", err)
	}
	defer func() {
		_ = file.Close()
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		return uploadRequest{}, catalog.NewError(catalog.KindValidation, "read upload", err)
	}
	if len(data) == 0 {
		return uploadRequest{}, catalog.NewError(catalog.KindValidation, "uploaded file is empty", nil)
	}

	format, err := detectFormat(r.FormValue("format"), header.Filename, data)
	if err != nil {
		return uploadRequest{}, err
	}

	store := false
	if raw := strings.TrimSpace(r.FormValue("store")); raw != "" {
		store, err = strconv.ParseBool(raw)
		if err != nil {
			return uploadRequest{}, catalog.NewError(catalog.KindValidation, "store must be a boolean", err)
		}
	}

	return uploadRequest{
		Name:     header.Filename,
		Data:     data,
		Format:   format,
		Sheet:    strings.TrimSpace(r.FormValue("sheet")),
		Title:    strings.TrimSpace(r.FormValue("title")),
		Filename: strings.TrimSpace(r.FormValue("filename")),
		Store:    store,
	}, nil
}

// detectFormat prefers an explicit format, then the file extension, then
// the zip signature of xlsx workbooks.
func detectFormat(explicit, name string, data []byte) (uploadFormat, error) {
	switch strings.ToLower(strings.TrimSpace(explicit)) {
	case "":
	case "csv":
		return formatCSV, nil
	case "xlsx":
		return formatXLSX, nil
	default:
		return "", catalog.NewError(catalog.KindValidation, "unsupported format "+strconv.Quote(explicit), nil)
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return formatCSV, nil
	case ".xlsx", ".xlsm":
		return formatXLSX, nil
	case ".xls":
		return "", catalog.NewError(catalog.KindValidation, "legacy .xls workbooks are not supported", nil)
	}

	if bytes.HasPrefix(data, zipMagic) {
		return formatXLSX, nil
	}
	return formatCSV, nil
}
