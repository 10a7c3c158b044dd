package models

import (
	"go-mrz-scanner/document/chip"
	"go-mrz-scanner/document/mrz"
)

type StartScanResponse struct {
	SessionId string `json:"session_id"`
}

type ScanFrameResponse struct {
	State    mrz.State   `json:"state"`
	Accepted bool        `json:"accepted"`
	Error    string      `json:"error,omitempty"` // error kind, e.g. invalid_line_count
	Record   *mrz.Record `json:"record,omitempty"`
	Receipt  string      `json:"receipt,omitempty"` // signed access seed, only once accepted
}

type ParseMrzResponse struct {
	Acceptable bool        `json:"acceptable"`
	Error      string      `json:"error,omitempty"`
	Record     *mrz.Record `json:"record,omitempty"`
}

type VerifyChipResponse struct {
	Match      bool            `json:"match"`
	Mismatches []chip.Mismatch `json:"mismatches,omitempty"`
}
