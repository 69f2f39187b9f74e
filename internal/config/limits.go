package config

const (
	// MaxBulkApproveBatch caps how many documents one bulk approval
	// request may carry to the QC pipeline. Larger batches should be
	// split by the caller; the pipeline rejects oversized requests.
	MaxBulkApproveBatch = 500
)
