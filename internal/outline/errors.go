package outline

// ExtractionError reports that the extraction service returned an
// unusable or unparseable structure, or failed entirely.
type ExtractionError struct {
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return "outline extraction failed: " + e.Reason + ": " + e.Err.Error()
	}
	return "outline extraction failed: " + e.Reason
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
