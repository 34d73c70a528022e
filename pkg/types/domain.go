package types

// Model is a model artifact that has already been downloaded to disk.
type Model struct {
	// File name of the artifact; doubles as its identifier.
	// example: qwen2.5-coder-7b-instruct-q4_k_m.gguf
	ID string `json:"id" example:"qwen2.5-coder-7b-instruct-q4_k_m.gguf"`
	// Absolute path to the model file on disk.
	// example: /home/user/.config/astro/models/qwen2.5-coder-7b-instruct-q4_k_m.gguf
	Path string `json:"path" example:"/home/user/.config/astro/models/qwen2.5-coder-7b-instruct-q4_k_m.gguf"`
	// Size of the file in bytes.
	// example: 4683073536
	SizeBytes int64 `json:"size_bytes" example:"4683073536"`
}

// DownloadProgress is the payload of the download-progress event.
type DownloadProgress struct {
	// Bytes written to disk so far.
	// example: 400
	Downloaded int64 `json:"downloaded" example:"400"`
	// Size declared by the server's Content-Length.
	// example: 1000
	Total int64 `json:"total" example:"1000"`
}

// EngineError is the payload of the engine-error event.
type EngineError struct {
	// Human-readable failure description.
	// example: engine exited with code 1; a required library or GPU driver may be missing
	Message string `json:"message" example:"engine exited with code 1; a required library or GPU driver may be missing"`
	// Process ID of the worker that failed.
	// example: 12345
	PID int `json:"pid,omitempty" example:"12345"`
}
