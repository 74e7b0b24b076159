package errors

// ErrorCodeInfo contains metadata about an error code.
type ErrorCodeInfo struct {
	Code            ErrorCode
	Description     string
	SuggestedAction string
}

// ErrorCodeRegistry maps error codes to their metadata.
var ErrorCodeRegistry = map[ErrorCode]ErrorCodeInfo{
	CodeMissingKey: {
		Code:            CodeMissingKey,
		Description:     "A required configuration key is missing",
		SuggestedAction: "Add the named key to the config file; see `matchmaker match --help` for the layout",
	},
	CodeMissingSection: {
		Code:            CodeMissingSection,
		Description:     "A required configuration section is missing",
		SuggestedAction: "Add the named section (regex, messages) to the config file",
	},
	CodeMissingColumn: {
		Code:            CodeMissingColumn,
		Description:     "A configured column header does not exist in the survey export",
		SuggestedAction: "Check name_column_header against the export: matchmaker columns <config>",
	},
	CodeEmptyCategory: {
		Code:            CodeEmptyCategory,
		Description:     "A required column pattern matched no headers",
		SuggestedAction: "Compare the regex with the raw headers: matchmaker columns <config>",
	},
	CodeInvalidPattern: {
		Code:            CodeInvalidPattern,
		Description:     "A configured regular expression does not compile or has the wrong number of capture groups",
		SuggestedAction: "Column patterns need exactly one capture group; phone_number needs three",
	},
	CodeInvalidValue: {
		Code:            CodeInvalidValue,
		Description:     "A configuration value is outside the accepted set",
		SuggestedAction: "Check encoding, duplicates and output_format values in the config file",
	},
	CodeUnreadableInput: {
		Code:            CodeUnreadableInput,
		Description:     "The survey export could not be read",
		SuggestedAction: "Verify csv_path and encoding, and that the file is a CSV or XLSX export",
	},
	CodeUnsupportedFormat: {
		Code:            CodeUnsupportedFormat,
		Description:     "The survey export has an unsupported file type",
		SuggestedAction: "Export the responses as .csv or .xlsx",
	},
}

// GetSuggestedAction returns the suggested action for the given error code.
func GetSuggestedAction(code ErrorCode) string {
	if info, ok := ErrorCodeRegistry[code]; ok {
		return info.SuggestedAction
	}
	return "Re-run with --debug for more details"
}

// GetDescription returns the human-readable description for the given error code.
func GetDescription(code ErrorCode) string {
	if info, ok := ErrorCodeRegistry[code]; ok {
		return info.Description
	}
	return "Unknown error"
}
