package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Cronograma Planner API",
        "description": "Feasibility checks and weighted topic distribution for exam study plans.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Planner", "description": "Request-driven feasibility, distribution and preview"},
        {"name": "Plans", "description": "Operations on stored study plans"},
        {"name": "Observability", "description": "Health, readiness and metrics"}
    ],
    "paths": {
        "/planner/feasibility": {
            "post": {
                "tags": ["Planner"],
                "summary": "Check whether pending topics fit before the exam",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PlanInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/planner/distribution": {
            "post": {
                "tags": ["Planner"],
                "summary": "Order pending topics by subject weight",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DistributionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/planner/preview": {
            "post": {
                "tags": ["Planner"],
                "summary": "Check feasibility, distribute topics and place them on the calendar",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PreviewRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Infeasible plan, feasibility in meta", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/plans/{id}/feasibility": {
            "get": {
                "tags": ["Plans"],
                "summary": "Check feasibility of a stored plan from today",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Plan not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/plans/{id}/preview": {
            "get": {
                "tags": ["Plans"],
                "summary": "Preview the generated calendar of a stored plan",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "seed", "in": "query", "type": "integer", "format": "int64"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Infeasible plan", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/plans/{id}/preview/export": {
            "get": {
                "tags": ["Plans"],
                "summary": "Download the generated calendar of a stored plan",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "seed", "in": "query", "type": "integer", "format": "int64"}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "422": {"description": "Infeasible plan", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/metrics/summary": {
            "get": {
                "tags": ["Observability"],
                "summary": "Planner and HTTP counters as JSON",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "PendingTopic": {
            "type": "object",
            "required": ["id", "subjectName"],
            "properties": {
                "id": {"type": "string"},
                "subjectName": {"type": "string"},
                "subjectWeight": {"type": "integer"},
                "topicPriority": {"type": "integer", "description": "Orders topics of equally weighted subjects in final stretch mode"},
                "status": {"type": "string", "enum": ["pending", "completed"]}
            }
        },
        "PlanInput": {
            "type": "object",
            "required": ["examDate", "studyHoursPerWeekday"],
            "properties": {
                "planId": {"type": "string"},
                "startDate": {"type": "string", "format": "date"},
                "examDate": {"type": "string", "format": "date"},
                "studyHoursPerWeekday": {"type": "object", "description": "Keys 0 (Sunday) to 6 (Saturday)", "additionalProperties": {"type": "number"}},
                "sessionDurationMinutes": {"type": "integer"},
                "hasEssay": {"type": "boolean"},
                "finalStretch": {"type": "boolean", "description": "Preview keeps only the highest-priority topics that fit"},
                "pendingTopics": {"type": "array", "items": {"$ref": "#/definitions/PendingTopic"}}
            }
        },
        "DistributionRequest": {
            "type": "object",
            "required": ["pendingTopics"],
            "properties": {
                "pendingTopics": {"type": "array", "items": {"$ref": "#/definitions/PendingTopic"}},
                "seed": {"type": "integer", "format": "int64"}
            }
        },
        "PreviewRequest": {
            "allOf": [
                {"$ref": "#/definitions/PlanInput"},
                {"type": "object", "properties": {"seed": {"type": "integer", "format": "int64"}}}
            ]
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
