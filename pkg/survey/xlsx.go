package survey

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	mmerrors "github.com/otherjamesbrown/matchmaker/pkg/errors"
)

// ReadXLSX reads the configured (or first) worksheet of an XLSX export.
// Cell values are taken as displayed text, so phone numbers keep their punctuation.
func ReadXLSX(r io.Reader, source string, opts Options) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &mmerrors.ConfigError{
			Code:    mmerrors.CodeUnreadableInput,
			Key:     "csv_path",
			Message: fmt.Sprintf("opening workbook %s: %v", source, err),
			Cause:   err,
		}
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, &mmerrors.ConfigError{
				Code:    mmerrors.CodeUnreadableInput,
				Key:     "csv_path",
				Message: fmt.Sprintf("workbook %s has no sheets", source),
				Cause:   mmerrors.ErrNotFound,
			}
		}
		sheet = sheets[0]
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, &mmerrors.ConfigError{
			Code:    mmerrors.CodeUnreadableInput,
			Key:     "sheet",
			Message: fmt.Sprintf("workbook %s has no sheet named %q", source, sheet),
			Cause:   mmerrors.ErrNotFound,
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q of %s: %w", sheet, source, err)
	}
	if len(rows) == 0 {
		return nil, &mmerrors.ConfigError{
			Code:    mmerrors.CodeUnreadableInput,
			Key:     "sheet",
			Message: fmt.Sprintf("sheet %q of %s is empty", sheet, source),
			Cause:   mmerrors.ErrValidation,
		}
	}

	var records [][]string
	for _, rec := range rows[1:] {
		if isBlankRecord(rec) {
			continue
		}
		records = append(records, rec)
	}
	return NewTable(source, rows[0], records), nil
}
