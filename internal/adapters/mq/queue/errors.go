package queue

// Enqueue rejection reasons, used as metric labels.
const (
	reasonClosed    = "closed"
	reasonFull      = "full"
	reasonCancelled = "context_cancelled"
)
