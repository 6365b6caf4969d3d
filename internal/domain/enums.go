package domain

// FileType identifies the source format of an estimate document.
type FileType string

const (
	FileTypeBMS FileType = "bms"
	FileTypeEMS FileType = "ems"
)

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"xml": FileTypeBMS,
	"bms": FileTypeBMS,
	"ems": FileTypeEMS,
	"txt": FileTypeEMS,
	"csv": FileTypeEMS,
}

// Valid reports whether t is one of the supported formats.
func (t FileType) Valid() bool {
	return t == FileTypeBMS || t == FileTypeEMS
}

// ImportStatus represents the lifecycle of a single ingestion attempt.
type ImportStatus string

const (
	ImportStatusProcessing ImportStatus = "processing"
	ImportStatusCompleted  ImportStatus = "completed"
	ImportStatusFailed     ImportStatus = "failed"
)

// Terminal reports whether no further status transition is allowed.
func (s ImportStatus) Terminal() bool {
	return s == ImportStatusCompleted || s == ImportStatusFailed
}

// JobStatus represents the lifecycle of a repair job.
type JobStatus string

const (
	JobStatusEstimate JobStatus = "estimate"
)

// JobPriority ranks jobs on the shop board.
type JobPriority string

const (
	JobPriorityNormal JobPriority = "normal"
)
