// Package docs holds the OpenAPI definition served at /swagger/*.
// Regenerate with: swag init
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support",
            "email": "anderson.cassiani@chatsuite.dev"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/api/v1/conversations": {
            "get": {
                "produces": ["application/json"],
                "tags": ["conversations"],
                "summary": "List conversations",
                "parameters": [
                    {"type": "string", "name": "x-cs-auth-key", "in": "header", "required": true},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "pageSize", "in": "query"},
                    {"type": "string", "name": "search", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/api/v1/conversations/{contact}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["conversations"],
                "summary": "Get a conversation thread",
                "parameters": [
                    {"type": "string", "name": "x-cs-auth-key", "in": "header", "required": true},
                    {"type": "string", "name": "contact", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/api/v1/conversations/{contact}/reply": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["conversations"],
                "summary": "Send a manual reply",
                "parameters": [
                    {"type": "string", "name": "x-cs-auth-key", "in": "header", "required": true},
                    {"type": "string", "name": "contact", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request"},
                    "422": {"description": "Unprocessable Entity"}
                }
            }
        },
        "/api/v1/notifications": {
            "get": {
                "produces": ["application/json"],
                "tags": ["notifications"],
                "summary": "Get task notifications",
                "parameters": [
                    {"type": "string", "name": "x-cs-auth-key", "in": "header", "required": true},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "pageSize", "in": "query"},
                    {"type": "string", "name": "status", "in": "query"},
                    {"type": "string", "name": "asignado", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized"}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["notifications"],
                "summary": "Send a manual task notification",
                "parameters": [
                    {"type": "string", "name": "x-cs-auth-key", "in": "header", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request"},
                    "422": {"description": "Unprocessable Entity"}
                }
            }
        },
        "/api/v1/notifications/stats": {
            "get": {
                "produces": ["application/json"],
                "tags": ["notifications"],
                "summary": "Get notification statistics",
                "parameters": [
                    {"type": "string", "name": "x-cs-auth-key", "in": "header", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/api/v1/notifications/peek": {
            "get": {
                "produces": ["application/json"],
                "tags": ["notifications"],
                "summary": "Peek at pending tasks",
                "parameters": [
                    {"type": "string", "name": "x-cs-auth-key", "in": "header", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/api/v1/notifications/cached": {
            "get": {
                "produces": ["application/json"],
                "tags": ["notifications"],
                "summary": "Get cached notifications from Redis",
                "parameters": [
                    {"type": "string", "name": "x-cs-auth-key", "in": "header", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/api/v1/notifications/run": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["notifications"],
                "summary": "Run a notification batch",
                "parameters": [
                    {"type": "string", "name": "x-cs-auth-key", "in": "header", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/api/v1/notifications/{id}/resend": {
            "post": {
                "produces": ["application/json"],
                "tags": ["notifications"],
                "summary": "Resend a notification",
                "parameters": [
                    {"type": "string", "name": "x-cs-auth-key", "in": "header", "required": true},
                    {"type": "integer", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/api/v1/notifications/{id}": {
            "delete": {
                "produces": ["application/json"],
                "tags": ["notifications"],
                "summary": "Delete a notification",
                "parameters": [
                    {"type": "string", "name": "x-cs-auth-key", "in": "header", "required": true},
                    {"type": "integer", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/api/v1/broadcast": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["broadcast"],
                "summary": "Broadcast a template",
                "parameters": [
                    {"type": "string", "name": "x-cs-auth-key", "in": "header", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "422": {"description": "Unprocessable Entity"}
                }
            }
        },
        "/api/v1/scheduler/start": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["scheduler"],
                "summary": "Start the task-check scheduler",
                "parameters": [
                    {"type": "string", "name": "x-cs-auth-key", "in": "header", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/api/v1/scheduler/stop": {
            "post": {
                "produces": ["application/json"],
                "tags": ["scheduler"],
                "summary": "Stop the task-check scheduler",
                "parameters": [
                    {"type": "string", "name": "x-cs-auth-key", "in": "header", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/api/v1/scheduler/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["scheduler"],
                "summary": "Get scheduler status",
                "parameters": [
                    {"type": "string", "name": "x-cs-auth-key", "in": "header", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "ChatSuite Admin API",
	Description:      "WhatsApp bot administration dashboard and task notification relay",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
