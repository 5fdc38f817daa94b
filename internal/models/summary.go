package models

// SyncSummary is the outcome of a full synchronization pass.
type SyncSummary struct {
	// LocalCount is the number of records in the local cache before the pass.
	LocalCount int `json:"localCount"`

	// CloudCount is the number of records the remote store returned.
	CloudCount int `json:"cloudCount"`

	// TotalCount is the number of records persisted after the merge.
	TotalCount int `json:"totalCount"`
}

// PushResult classifies the outcome of a single push to a remote store.
type PushResult int

const (
	// PushFailed means the remote store rejected the write or was unreachable.
	PushFailed PushResult = iota
	// PushSucceeded means the remote store confirmed the write.
	PushSucceeded
	// PushUnconfirmed means the request was sent but no confirmation came
	// back; the write may or may not have landed.
	PushUnconfirmed
)

func (r PushResult) String() string {
	switch r {
	case PushSucceeded:
		return "success"
	case PushUnconfirmed:
		return "success-unconfirmed"
	default:
		return "failure"
	}
}

// BatchResult reports the outcome of pushing or shortening a list of items.
type BatchResult struct {
	Total        int         `json:"total"`
	SuccessCount int         `json:"successCount"`
	ErrorCount   int         `json:"errorCount"`
	Results      []BatchItem `json:"results"`

	// UnconfirmedCount is the part of SuccessCount sent without a
	// confirmation from the remote.
	UnconfirmedCount int `json:"unconfirmedCount,omitempty"`
}

// BatchItem is one entry of a BatchResult.
type BatchItem struct {
	Index  int    `json:"index"`
	Result string `json:"result"`
	Error  string `json:"error,omitempty"`
}
