// Package docs registers the storevoice OpenAPI document with swag so the
// HTTP transport can serve it at /swagger/doc.json.
//
// Regenerate from the handler annotations with:
//
//	swag init -g cmd/storevoice/main.go -o internal/docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/classify": {
            "post": {
                "description": "Runs the shared intent rule table against the utterance and the view state sent with it, and resolves product references against the products in the request.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["classify"],
                "summary": "Classify an utterance",
                "parameters": [
                    {"description": "Utterance and view state", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/message.ClassifyRequest"}}
                ],
                "responses": {
                    "200": {"description": "Classified intent", "schema": {"$ref": "#/definitions/message.ClassifyResponse"}},
                    "400": {"description": "Invalid request body", "schema": {"$ref": "#/definitions/message.ClassifyResponse"}}
                }
            }
        },
        "/speech": {
            "post": {
                "description": "Returns base64 audio for the text, or a null audio field when no voice is configured.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["speech"],
                "summary": "Synthesize speech",
                "parameters": [
                    {"description": "Synthesis request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/message.SpeechRequest"}}
                ],
                "responses": {
                    "200": {"description": "Synthesized audio", "schema": {"$ref": "#/definitions/message.SpeechResponse"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/message.ErrorResponse"}},
                    "500": {"description": "Voice backend failed", "schema": {"$ref": "#/definitions/message.ErrorResponse"}}
                }
            }
        },
        "/sessions": {
            "post": {
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Open a session",
                "responses": {
                    "201": {"description": "Session id", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/sessions/{id}": {
            "delete": {
                "tags": ["sessions"],
                "summary": "Close a session",
                "parameters": [
                    {"type": "string", "description": "Session id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Unknown session", "schema": {"$ref": "#/definitions/message.ErrorResponse"}}
                }
            }
        },
        "/sessions/{id}/context": {
            "put": {
                "description": "Fields left out of the body keep their current value. The session is opened if needed.",
                "consumes": ["application/json"],
                "tags": ["sessions"],
                "summary": "Update session context",
                "parameters": [
                    {"type": "string", "description": "Session id", "name": "id", "in": "path", "required": true},
                    {"description": "View state", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/message.ContextUpdate"}}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Invalid request body", "schema": {"$ref": "#/definitions/message.ErrorResponse"}}
                }
            }
        },
        "/sessions/{id}/commands": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Run a text command",
                "parameters": [
                    {"type": "string", "description": "Session id", "name": "id", "in": "path", "required": true},
                    {"description": "Utterance", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/message.CommandRequest"}}
                ],
                "responses": {
                    "200": {"description": "Command outcome", "schema": {"$ref": "#/definitions/message.CommandResult"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/message.ErrorResponse"}}
                }
            }
        },
        "/sessions/{id}/audio": {
            "post": {
                "description": "POST the raw audio bytes with their Content-Type (audio/wav, audio/webm, ...).",
                "consumes": ["audio/wav", "audio/webm"],
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Run a spoken command",
                "parameters": [
                    {"type": "string", "description": "Session id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Command outcome", "schema": {"$ref": "#/definitions/message.CommandResult"}},
                    "409": {"description": "Already listening", "schema": {"$ref": "#/definitions/message.ErrorResponse"}},
                    "422": {"description": "No speech recognized", "schema": {"$ref": "#/definitions/message.ErrorResponse"}},
                    "503": {"description": "Speech recognition not configured", "schema": {"$ref": "#/definitions/message.ErrorResponse"}}
                }
            }
        },
        "/sessions/{id}/history": {
            "get": {
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Command history",
                "parameters": [
                    {"type": "string", "description": "Session id", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "description": "Maximum entries (default all)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Most recent first", "schema": {"type": "array", "items": {"$ref": "#/definitions/history.Entry"}}},
                    "404": {"description": "Unknown session", "schema": {"$ref": "#/definitions/message.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "history.Entry": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "sessionId": {"type": "string"},
                "utterance": {"type": "string"},
                "intent": {"type": "string"},
                "response": {"type": "string"},
                "timestamp": {"type": "string"}
            }
        },
        "intent.Params": {
            "type": "object",
            "properties": {
                "position": {"type": "integer"},
                "productId": {"type": "string"},
                "productName": {"type": "string"},
                "category": {"type": "string"},
                "size": {"type": "string"},
                "color": {"type": "string"},
                "query": {"type": "string"},
                "cardIdentifier": {"type": "string"},
                "addressIdentifier": {"type": "string"}
            }
        },
        "session.Product": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "price": {"type": "number"},
                "rating": {"type": "number"},
                "category": {"type": "string"},
                "sizes": {"type": "array", "items": {"type": "string"}},
                "colors": {"type": "array", "items": {"type": "string"}},
                "keywords": {"type": "array", "items": {"type": "string"}}
            }
        },
        "message.ClassifyContext": {
            "type": "object",
            "properties": {
                "currentPage": {"type": "string"},
                "productsAvailable": {"type": "integer"},
                "onCheckout": {"type": "boolean"},
                "currentProducts": {"type": "array", "items": {"$ref": "#/definitions/session.Product"}}
            }
        },
        "message.ClassifyRequest": {
            "type": "object",
            "properties": {
                "text": {"type": "string"},
                "userId": {"type": "string"},
                "context": {"$ref": "#/definitions/message.ClassifyContext"}
            }
        },
        "message.ClassifyResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "intent": {"type": "string"},
                "response": {"type": "string"},
                "data": {"$ref": "#/definitions/intent.Params"},
                "error": {"type": "string"}
            }
        },
        "message.SpeechRequest": {
            "type": "object",
            "properties": {
                "action": {"type": "string", "example": "text-to-speech"},
                "text": {"type": "string"}
            }
        },
        "message.SpeechResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "audio": {"type": "string", "x-nullable": true},
                "contentType": {"type": "string"},
                "error": {"type": "string"}
            }
        },
        "message.ContextUpdate": {
            "type": "object",
            "properties": {
                "products": {"type": "array", "items": {"$ref": "#/definitions/session.Product"}},
                "category": {"type": "string"},
                "searchQuery": {"type": "string"},
                "page": {"type": "string"},
                "onCheckout": {"type": "boolean"},
                "userId": {"type": "string"}
            }
        },
        "message.CommandRequest": {
            "type": "object",
            "properties": {
                "text": {"type": "string"}
            }
        },
        "message.CommandResult": {
            "type": "object",
            "properties": {
                "sessionId": {"type": "string"},
                "entryId": {"type": "string"},
                "transcript": {"type": "string"},
                "intent": {"type": "string"},
                "params": {"$ref": "#/definitions/intent.Params"},
                "response": {"type": "string"},
                "capability": {"type": "string"},
                "dispatch": {"type": "string"},
                "responseAudio": {"type": "string"},
                "responseContentType": {"type": "string"},
                "timestamp": {"type": "string"}
            }
        },
        "message.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "storevoice API",
	Description:      "Voice command engine for storefronts: intent classification, speech synthesis and server-side command sessions.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
