package dto

// StreamDataScanRequest is the payload published to the scan-request stream.
type StreamDataScanRequest struct {
	ScanType string `json:"scan_type"`
	Limit    int    `json:"limit,omitempty"`
	Notify   bool   `json:"notify"`
}
