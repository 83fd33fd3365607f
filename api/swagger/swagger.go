package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Revision Planner API",
        "description": "Weekly revision session planning for students",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Planner", "description": "Regenerate, adjust and inspect weekly revision plans"}
    ],
    "paths": {
        "/planner/regenerate": {
            "post": {
                "tags": ["Planner"],
                "summary": "Regenerate a week of revision sessions",
                "description": "Purges the week's planned sessions that carry no invite and recomputes the week. dryRun previews without persisting.",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PlanWeekRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/PlanResultEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Run already in progress", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/planner/adjust": {
            "post": {
                "tags": ["Planner"],
                "summary": "Top up a week for subjects short of their target",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PlanWeekRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/PlanResultEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Run already in progress", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/planner/subjects/{id}/top-up": {
            "post": {
                "tags": ["Planner"],
                "summary": "Reinforce a single subject within a week",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PlanWeekRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/PlanResultEnvelope"}},
                    "404": {"description": "Subject not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/planner/weeks/{weekStart}/sessions": {
            "get": {
                "tags": ["Planner"],
                "summary": "List the sessions of a week",
                "parameters": [
                    {"name": "weekStart", "in": "path", "required": true, "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/planner/weeks/{weekStart}/export": {
            "get": {
                "tags": ["Planner"],
                "summary": "Download a week's plan",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "weekStart", "in": "path", "required": true, "type": "string", "format": "date"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}}
                }
            }
        }
    },
    "definitions": {
        "PlanWeekRequest": {
            "type": "object",
            "required": ["weekStart"],
            "properties": {
                "weekStart": {"type": "string", "format": "date", "example": "2025-01-06"},
                "dryRun": {"type": "boolean"}
            }
        },
        "PlannedSession": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "subjectId": {"type": "string"},
                "subjectName": {"type": "string"},
                "date": {"type": "string", "format": "date"},
                "startTime": {"type": "string", "example": "08:00"},
                "endTime": {"type": "string", "example": "09:30"},
                "status": {"type": "string", "enum": ["planned", "done", "skipped"]}
            }
        },
        "PlanResult": {
            "type": "object",
            "properties": {
                "runId": {"type": "string"},
                "mode": {"type": "string", "enum": ["regenerate", "adjust"]},
                "weekStart": {"type": "string", "format": "date"},
                "status": {"type": "string", "enum": ["success", "no_eligible_subjects", "no_free_slots"]},
                "dryRun": {"type": "boolean"},
                "sessionsCreated": {"type": "integer"},
                "sessions": {"type": "array", "items": {"$ref": "#/definitions/PlannedSession"}},
                "deletedSessionIds": {"type": "array", "items": {"type": "string"}},
                "protectedSessionIds": {"type": "array", "items": {"type": "string"}}
            }
        },
        "PlanResultEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/PlanResult"},
                "meta": {"type": "object"}
            }
        },
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
