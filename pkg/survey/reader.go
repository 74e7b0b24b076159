package survey

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	mmerrors "github.com/otherjamesbrown/matchmaker/pkg/errors"
)

// Options controls how an export is read.
type Options struct {
	// Encoding names the character set of CSV exports. Empty means latin1,
	// which is what spreadsheet tools emit for "CSV (Windows)".
	Encoding string

	// Sheet names the worksheet of an XLSX export. Empty means the first sheet.
	Sheet string
}

// utf8BOM is stripped from the start of CSV exports.
var utf8BOM = []byte("\xef\xbb\xbf")

// ReadFile reads a .csv or .xlsx export.
func ReadFile(path string, opts Options) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt", "":
		f, err := os.Open(path)
		if err != nil {
			return nil, openError(path, err)
		}
		defer f.Close()
		return ReadCSV(f, path, opts)
	case ".xlsx", ".xlsm":
		f, err := os.Open(path)
		if err != nil {
			return nil, openError(path, err)
		}
		defer f.Close()
		return ReadXLSX(f, path, opts)
	default:
		return nil, &mmerrors.ConfigError{
			Code:    mmerrors.CodeUnsupportedFormat,
			Key:     "csv_path",
			Message: fmt.Sprintf("cannot read %s exports", filepath.Ext(path)),
			Cause:   mmerrors.ErrUnsupportedFormat,
		}
	}
}

func openError(path string, err error) error {
	cause := err
	if os.IsNotExist(err) {
		cause = fmt.Errorf("%w: %w", mmerrors.ErrNotFound, err)
	}
	return &mmerrors.ConfigError{
		Code:    mmerrors.CodeUnreadableInput,
		Key:     "csv_path",
		Message: fmt.Sprintf("opening %s: %v", path, err),
		Cause:   cause,
	}
}

// LookupEncoding maps a configured character-set name to a decoder.
func LookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "latin1", "latin-1", "iso-8859-1", "iso8859-1":
		return charmap.ISO8859_1, nil
	case "utf-8", "utf8":
		return unicode.UTF8, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	case "iso-8859-15", "latin9":
		return charmap.ISO8859_15, nil
	default:
		return nil, &mmerrors.ConfigError{
			Code:    mmerrors.CodeInvalidValue,
			Key:     "encoding",
			Message: fmt.Sprintf("unknown encoding %q (must be latin1, utf-8, windows-1252 or iso-8859-15)", name),
			Cause:   mmerrors.ErrValidation,
		}
	}
}

// ReadCSV decodes r with the configured character set and parses it as a
// comma-separated export whose first record is the header row.
func ReadCSV(r io.Reader, source string, opts Options) (*Table, error) {
	enc, err := LookupEncoding(opts.Encoding)
	if err != nil {
		return nil, err
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", source, err)
	}
	// A BOM means the file is UTF-8 whatever the config says.
	if bytes.HasPrefix(raw, utf8BOM) {
		raw = raw[len(utf8BOM):]
		enc = unicode.UTF8
	}

	cr := csv.NewReader(transform.NewReader(bytes.NewReader(raw), enc.NewDecoder()))
	cr.Comma = ','
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	headers, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, &mmerrors.ConfigError{
				Code:    mmerrors.CodeUnreadableInput,
				Key:     "csv_path",
				Message: fmt.Sprintf("%s is empty", source),
				Cause:   mmerrors.ErrValidation,
			}
		}
		return nil, fmt.Errorf("reading headers from %s: %w", source, err)
	}

	var records [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d of %s: %w", len(records)+2, source, err)
		}
		if isBlankRecord(rec) {
			continue
		}
		records = append(records, rec)
	}

	return NewTable(source, headers, records), nil
}

// isBlankRecord reports whether every cell of rec is empty.
func isBlankRecord(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
