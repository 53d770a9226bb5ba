package worker

// Task represents one discovered input image
type Task struct {
	Path string `json:"path"`
	Size int64  `json:"size"` // captured at discovery time
}

// Config contains worker configuration
type Config struct {
	SourceDir string
	ResultDir string
	Suffix    string
	Options   []string
	Purge     bool
	CheckSize bool
}

// Result is the outcome of processing one file
type Result int

const (
	ResultSuccess Result = iota
	ResultRejected
	ResultSkipped
	ResultFailed
)

func (r Result) String() string {
	switch r {
	case ResultSuccess:
		return "success"
	case ResultRejected:
		return "rejected"
	case ResultSkipped:
		return "skipped"
	case ResultFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Marker is the symbol printed on a file's progress line.
func (r Result) Marker() string {
	switch r {
	case ResultSuccess:
		return "✓"
	case ResultRejected:
		return "×"
	case ResultSkipped:
		return "="
	default:
		return "!"
	}
}

// Report is sent by each worker once its chunk is exhausted or it observed
// cancellation.
type Report struct {
	WorkerID  int
	ChunkSize int
	Processed int
	Failed    int
	Cancelled bool
}
