// Package docs registers the astrod OpenAPI document with swag. It is
// imported only by builds tagged swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "license": {"name": "MIT", "url": "https://opensource.org/licenses/MIT"},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/hardware": {
            "get": {
                "tags": ["system"],
                "summary": "Host hardware",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "boolean", "description": "only a software GPU adapter is available", "name": "gpu_fallback", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.HardwareResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "501": {"description": "Not Implemented", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/models": {
            "get": {
                "tags": ["models"],
                "summary": "Downloaded models",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ModelsResponse"}}
                }
            }
        },
        "/models/download": {
            "post": {
                "tags": ["models"],
                "summary": "Download a model",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.DownloadRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.DownloadResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/engine/start": {
            "post": {
                "tags": ["engine"],
                "summary": "Start the engine",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.StartEngineRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/types.EngineStatus"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/engine/stop": {
            "post": {
                "tags": ["engine"],
                "summary": "Stop the engine",
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/engine/health": {
            "get": {
                "tags": ["engine"],
                "summary": "Worker health",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.EngineHealthResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/engine/status": {
            "get": {
                "tags": ["engine"],
                "summary": "Worker process status",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.EngineStatus"}}
                }
            }
        },
        "/events": {
            "get": {
                "tags": ["system"],
                "summary": "Event stream",
                "produces": ["text/event-stream"],
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "definitions": {
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "invalid JSON body"},
                "code": {"type": "integer", "example": 400}
            }
        },
        "types.Model": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "path": {"type": "string"},
                "size_bytes": {"type": "integer"}
            }
        },
        "types.ModelsResponse": {
            "type": "object",
            "properties": {
                "models": {"type": "array", "items": {"$ref": "#/definitions/types.Model"}}
            }
        },
        "types.DownloadRequest": {
            "type": "object",
            "properties": {
                "url": {"type": "string"},
                "filename": {"type": "string"}
            }
        },
        "types.DownloadResponse": {
            "type": "object",
            "properties": {"path": {"type": "string"}}
        },
        "types.StartEngineRequest": {
            "type": "object",
            "properties": {
                "model_path": {"type": "string"},
                "use_gpu": {"type": "boolean"},
                "threads": {"type": "integer", "example": 8},
                "context_size": {"type": "integer", "example": 4096}
            }
        },
        "types.EngineHealthResponse": {
            "type": "object",
            "properties": {"status": {"type": "string", "example": "{\"status\":\"ok\"}"}}
        },
        "types.EngineStatus": {
            "type": "object",
            "properties": {
                "running": {"type": "boolean"},
                "pid": {"type": "integer"},
                "started_unix": {"type": "integer"},
                "exit_code": {"type": "integer"},
                "config": {"$ref": "#/definitions/types.StartEngineRequest"}
            }
        },
        "types.HardwareResponse": {
            "type": "object",
            "properties": {
                "total_memory_mb": {"type": "integer", "example": 32768},
                "cpus": {"type": "integer", "example": 16},
                "platform": {"type": "string", "example": "linux"},
                "arch": {"type": "string", "example": "amd64"},
                "tier": {"type": "string", "example": "pro"},
                "recommended_model": {"type": "string"},
                "recommended_model_size": {"type": "string"},
                "secondary_model": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "astrod API",
	Description:      "Local control API for model downloads and the inference engine.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
