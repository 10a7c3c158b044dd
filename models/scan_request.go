package models

type ScanFrameRequest struct {
	SessionId string `json:"session_id" validate:"required,hexadecimal,len=32"`
	// OCR text of one camera frame, lines separated by newlines
	Text string `json:"text" validate:"required,max=4096"`
}

type ParseMrzRequest struct {
	Text string `json:"text" validate:"required,max=4096"`
}

type EndScanRequest struct {
	SessionId string `json:"session_id" validate:"required,hexadecimal,len=32"`
}

type VerifyChipRequest struct {
	SessionId string `json:"session_id" validate:"required,hexadecimal,len=32"`
	// hex encoded DG1 as read from the chip
	DG1 string `json:"dg1" validate:"required,hexadecimal,max=1024"`
}
