package service

// Signal is the machine-readable outcome reported to clients.
type Signal string

const (
	SignalFileUploadSuccess    Signal = "FILE_UPLOAD_SUCCESS"
	SignalFileTypeNotSupported Signal = "FILE_TYPE_NOT_SUPPORTED"
	SignalFileSizeExceeded     Signal = "FILE_SIZE_EXCEEDED"
	SignalFileUploadFailed     Signal = "FILE_UPLOAD_FAILED"
	SignalFileProcessSuccess   Signal = "FILE_PROCESS_SUCCESS"
	SignalFileProcessFailed    Signal = "FILE_PROCESS_FAILED"
	SignalProjectIDInvalid     Signal = "PROJECT_ID_INVALID"
	SignalChunkConfigInvalid   Signal = "CHUNK_CONFIG_INVALID"
	SignalProjectBusy          Signal = "PROJECT_BUSY"
)
