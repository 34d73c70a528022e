package types

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// ModelsResponse wraps the list of models returned by GET /models.
type ModelsResponse struct {
	Models []Model `json:"models"`
}

// DownloadRequest is the body of POST /models/download.
type DownloadRequest struct {
	// Remote location of the artifact.
	// example: https://huggingface.co/Qwen/Qwen2.5-Coder-7B-Instruct-GGUF/resolve/main/qwen2.5-coder-7b-instruct-q4_k_m.gguf
	URL string `json:"url" example:"https://huggingface.co/Qwen/Qwen2.5-Coder-7B-Instruct-GGUF/resolve/main/qwen2.5-coder-7b-instruct-q4_k_m.gguf"`
	// Bare file name to store the artifact under inside the models directory.
	// example: qwen2.5-coder-7b-instruct-q4_k_m.gguf
	Filename string `json:"filename" example:"qwen2.5-coder-7b-instruct-q4_k_m.gguf"`
}

// DownloadResponse is returned once the artifact is on disk.
type DownloadResponse struct {
	// Local path of the artifact.
	Path string `json:"path"`
}

// StartEngineRequest is the body of POST /engine/start.
type StartEngineRequest struct {
	// Path of a model file on disk.
	// example: /home/user/.config/astro/models/m.gguf
	ModelPath string `json:"model_path" example:"/home/user/.config/astro/models/m.gguf"`
	// Offload all layers to the GPU when true.
	// example: true
	UseGPU bool `json:"use_gpu" example:"true"`
	// Worker thread count.
	// example: 8
	Threads int `json:"threads" example:"8"`
	// Context window size in tokens.
	// example: 4096
	ContextSize int `json:"context_size" example:"4096"`
}

// EngineHealthResponse wraps the worker's /health body verbatim.
type EngineHealthResponse struct {
	// example: {"status":"ok"}
	Status string `json:"status" example:"{\"status\":\"ok\"}"`
}

// EngineStatus describes the worker process currently owned by the supervisor.
type EngineStatus struct {
	// True while a process occupies the slot and has not been reaped.
	Running bool `json:"running"`
	// example: 12345
	PID int `json:"pid,omitempty" example:"12345"`
	// Launch time in unix seconds.
	// example: 1700000000
	StartedUnix int64 `json:"started_unix,omitempty" example:"1700000000"`
	// Exit code once the process has been reaped (-1 when killed by a signal).
	ExitCode *int `json:"exit_code,omitempty"`
	// Launch configuration of the process.
	Config *StartEngineRequest `json:"config,omitempty"`
}

// HardwareResponse is returned by GET /hardware.
type HardwareResponse struct {
	// Total physical memory in whole megabytes.
	// example: 32768
	TotalMemoryMB uint64 `json:"total_memory_mb" example:"32768"`
	// Logical CPU count.
	// example: 16
	CPUs int `json:"cpus" example:"16"`
	// example: linux
	OS string `json:"platform" example:"linux"`
	// example: amd64
	Arch string `json:"arch" example:"amd64"`
	// Hardware tier used to pick default models.
	// example: pro
	Tier string `json:"tier" example:"pro"`
	// example: Codestral-22B-v0.1-q4_K_M
	RecommendedModel string `json:"recommended_model" example:"Codestral-22B-v0.1-q4_K_M"`
	// example: 13.4 GB
	RecommendedModelSize string `json:"recommended_model_size" example:"13.4 GB"`
	// example: Qwen2.5-Coder-7B-Instruct-q4_K_M
	SecondaryModel string `json:"secondary_model" example:"Qwen2.5-Coder-7B-Instruct-q4_K_M"`
}
