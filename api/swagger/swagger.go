package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "EDUManager Timetable API",
        "description": "Conflict-free weekly timetable generation from course sheets",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Timetables", "description": "Timetable generation, lookup and exports"},
        {"name": "Observability", "description": "Health and metrics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Observability"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/metrics/summary": {
            "get": {
                "tags": ["Observability"],
                "summary": "Aggregated service metrics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/timetables": {
            "post": {
                "tags": ["Timetables"],
                "summary": "Generate a timetable from a course sheet",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "type": "file", "required": true},
                    {"name": "seed", "in": "formData", "type": "integer"},
                    {"name": "formats", "in": "formData", "type": "array", "items": {"type": "string", "enum": ["csv", "xlsx", "pdf"]}, "collectionFormat": "multi"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/TimetableRunEnvelope"}},
                    "400": {"description": "Invalid course sheet", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "413": {"description": "Upload too large", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "415": {"description": "Unsupported file type", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/timetables/template": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Download the sample course sheet",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "xlsx"], "default": "csv"}
                ],
                "responses": {
                    "200": {"description": "Template file", "schema": {"type": "file"}}
                }
            }
        },
        "/api/v1/timetables/{id}": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Get a timetable run summary",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/TimetableRunEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/timetables/{id}/faculty": {
            "get": {
                "tags": ["Timetables"],
                "summary": "List one instructor's sessions",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "name", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SessionListEnvelope"}}
                }
            }
        },
        "/api/v1/timetables/{id}/classes": {
            "get": {
                "tags": ["Timetables"],
                "summary": "List one class-section's sessions",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "branch", "in": "query", "type": "string", "required": true},
                    {"name": "semester", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SessionListEnvelope"}}
                }
            }
        },
        "/api/v1/timetables/download/{token}": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Download a rendered timetable file",
                "parameters": [
                    {"name": "token", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Rendered file", "schema": {"type": "file"}},
                    "403": {"description": "Invalid token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Export not ready", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "410": {"description": "Link expired", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        },
        "Tally": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "sessions": {"type": "integer"}
            }
        },
        "ExportLink": {
            "type": "object",
            "properties": {
                "kind": {"type": "string", "enum": ["faculty_timetable", "class_timetable", "department_summary"]},
                "format": {"type": "string", "enum": ["csv", "xlsx", "pdf"]},
                "url": {"type": "string"},
                "expires_at": {"type": "string", "format": "date-time"}
            }
        },
        "TimetableRun": {
            "type": "object",
            "properties": {
                "run_id": {"type": "string"},
                "seed": {"type": "integer"},
                "courses": {"type": "integer"},
                "courses_scheduled": {"type": "integer"},
                "sessions_required": {"type": "integer"},
                "sessions_scheduled": {"type": "integer"},
                "success_rate": {"type": "number"},
                "session_success_rate": {"type": "number"},
                "conflicts": {"type": "integer"},
                "rows_read": {"type": "integer"},
                "faculty_summary": {"type": "array", "items": {"$ref": "#/definitions/Tally"}},
                "branch_summary": {"type": "array", "items": {"$ref": "#/definitions/Tally"}},
                "daily_summary": {"type": "array", "items": {"$ref": "#/definitions/Tally"}},
                "exports": {"type": "array", "items": {"$ref": "#/definitions/ExportLink"}},
                "created_at": {"type": "string", "format": "date-time"}
            }
        },
        "TimetableSession": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "run_id": {"type": "string"},
                "branch": {"type": "string"},
                "semester": {"type": "string"},
                "day": {"type": "string"},
                "period": {"type": "string"},
                "course_code": {"type": "string"},
                "course_name": {"type": "string"},
                "session_type": {"type": "string", "enum": ["Lecture", "Tutorial", "Practical"]},
                "main_faculty": {"type": "string"},
                "co_faculty": {"type": "string"}
            }
        },
        "TimetableRunEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/TimetableRun"},
                "meta": {"type": "object"}
            }
        },
        "SessionListEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/TimetableSession"}},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
