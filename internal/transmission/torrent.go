// Copyright (c) 2025, the torview contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package transmission

// Status mirrors Transmission's torrent status codes
type Status int

const (
	StatusStopped Status = iota
	StatusQueuedToVerify
	StatusVerifying
	StatusQueuedToDownload
	StatusDownloading
	StatusQueuedToSeed
	StatusSeeding
)

// String returns the status name as used in filter IDs and the API
func (s Status) String() string {
	switch s {
	case StatusStopped:
		return "stopped"
	case StatusQueuedToVerify:
		return "queuedToVerify"
	case StatusVerifying:
		return "verifying"
	case StatusQueuedToDownload:
		return "queuedToDownload"
	case StatusDownloading:
		return "downloading"
	case StatusQueuedToSeed:
		return "queuedToSeed"
	case StatusSeeding:
		return "seeding"
	default:
		return "unknown"
	}
}

// Torrent is the in-memory snapshot of a Transmission torrent that the rest
// of the application operates on. It is populated once per RPC fetch and
// never mutated by consumers.
type Torrent struct {
	ID           int64    `json:"id"`
	Hash         string   `json:"hash"`
	Name         string   `json:"name"`
	Status       Status   `json:"status"`
	RateDownload int64    `json:"rateDownload"`
	RateUpload   int64    `json:"rateUpload"`
	SizeWhenDone int64    `json:"sizeWhenDone"`
	HaveValid    int64    `json:"haveValid"`
	TotalSize    int64    `json:"totalSize"`
	Error        int64    `json:"error"`
	ErrorString  string   `json:"errorString"`
	Labels       []string `json:"labels"`
	Tracker      string   `json:"tracker"` // primary tracker hostname, cached at fetch time
	DownloadDir  string   `json:"downloadDir"`
	PieceCount   int64    `json:"pieceCount"`
	UploadRatio  float64  `json:"uploadRatio"`
	ETA          int64    `json:"eta"`
	AddedOn      int64    `json:"addedOn"`
}

// LeftUntilDone returns how many verified bytes are still missing, clamped
// at zero so over-reporting clients cannot produce a negative value.
func (t Torrent) LeftUntilDone() int64 {
	left := t.SizeWhenDone - t.HaveValid
	if left < 0 {
		return 0
	}
	return left
}
