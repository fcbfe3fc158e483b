package analyses

// Result is the outcome of one analysis. It is computed per request and
// never stored.
type Result struct {
	Analysis      string `json:"analysis"`
	FileID        string `json:"fileId"`
	ExtractedText string `json:"extractedText"`
	ATSScore      *int   `json:"atsScore"`
}
