package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Entraide VTN API",
        "description": "Recurring schedule management for the vocational training network",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Schedule Templates", "description": "Weekly recurring slot definitions"},
        {"name": "Session Instances", "description": "Date-specific occurrences and overrides"},
        {"name": "Timetables", "description": "Trainer/group timetables and weekly summaries"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/schedule-templates": {
            "get": {
                "tags": ["Schedule Templates"],
                "summary": "List schedule templates",
                "parameters": [
                    {"name": "trainerId", "in": "query", "type": "string"},
                    {"name": "groupId", "in": "query", "type": "string"},
                    {"name": "roomId", "in": "query", "type": "string"},
                    {"name": "courseId", "in": "query", "type": "string"},
                    {"name": "academicYear", "in": "query", "type": "string"},
                    {"name": "dayOfWeek", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"}
                }
            },
            "post": {
                "tags": ["Schedule Templates"],
                "summary": "Create a schedule template",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateTemplateRequest"}}
                ],
                "responses": {
                    "201": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "Created"},
                    "400": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "Validation failure"},
                    "409": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "Scheduling conflict"}
                }
            }
        },
        "/schedule-templates/{id}": {
            "get": {
                "tags": ["Schedule Templates"],
                "summary": "Fetch a schedule template",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"},
                    "404": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "Not found"}
                }
            },
            "delete": {
                "tags": ["Schedule Templates"],
                "summary": "Deactivate a schedule template",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deactivated"},
                    "404": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "Not found"}
                }
            }
        },
        "/schedule-templates/check-conflicts": {
            "post": {
                "tags": ["Schedule Templates"],
                "summary": "Check a candidate slot for conflicts",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CheckConflictsRequest"}}
                ],
                "responses": {
                    "200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "Conflict report"}
                }
            }
        },
        "/trainers/{id}/schedule-templates": {
            "get": {
                "tags": ["Schedule Templates"],
                "summary": "Active templates of a trainer",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"},
                    "404": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "Not found"}
                }
            }
        },
        "/groups/{id}/schedule-templates": {
            "get": {
                "tags": ["Schedule Templates"],
                "summary": "Active templates of a group",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"},
                    "404": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "Not found"}
                }
            }
        },
        "/session-instances": {
            "get": {
                "tags": ["Session Instances"],
                "summary": "List session instances",
                "parameters": [
                    {"name": "templateId", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "dateFrom", "in": "query", "type": "string"},
                    {"name": "dateTo", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"}
                }
            }
        },
        "/session-instances/generate": {
            "post": {
                "tags": ["Session Instances"],
                "summary": "Materialise one week of session instances",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateWeekRequest"}}
                ],
                "responses": {
                    "200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "Generation report"},
                    "400": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "Validation failure"}
                }
            }
        },
        "/session-instances/{id}/effective": {
            "get": {
                "tags": ["Session Instances"],
                "summary": "Resolved values of one occurrence",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"},
                    "404": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "Not found"}
                }
            }
        },
        "/session-instances/{id}/cancel": {
            "post": {
                "tags": ["Session Instances"],
                "summary": "Cancel one occurrence",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/CancelSessionRequest"}}
                ],
                "responses": {
                    "200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"},
                    "404": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "Not found"}
                }
            }
        },
        "/session-instances/{id}/reschedule": {
            "post": {
                "tags": ["Session Instances"],
                "summary": "Move one occurrence to a new slot",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RescheduleSessionRequest"}}
                ],
                "responses": {
                    "200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"},
                    "404": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "Not found"},
                    "409": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "Scheduling conflict"}
                }
            }
        },
        "/timetables/trainers/{id}": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Trainer timetable over a date window",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "start_date", "in": "query", "required": true, "type": "string"},
                    {"name": "end_date", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"},
                    "404": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "Not found"}
                }
            }
        },
        "/timetables/groups/{id}": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Group timetable over a date window",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "start_date", "in": "query", "required": true, "type": "string"},
                    {"name": "end_date", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK"},
                    "404": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "Not found"}
                }
            }
        },
        "/timetables/weekly-summary": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Network-wide summary of one week",
                "parameters": [
                    {"name": "academic_year", "in": "query", "required": true, "type": "string"},
                    {"name": "week_start", "in": "query", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"schema": {"$ref": "#/definitions/ResponseEnvelope"}, "description": "OK, or a CSV/PDF attachment when format is given"}
                }
            }
        }
    },
    "definitions": {
        "CreateTemplateRequest": {
            "type": "object",
            "required": ["training_course_id", "trainer_id", "day_of_week", "start_time", "end_time", "academic_year"],
            "properties": {
                "training_course_id": {"type": "string"},
                "trainer_id": {"type": "string"},
                "room_id": {"type": "string"},
                "group_id": {"type": "string"},
                "day_of_week": {"type": "string"},
                "start_time": {"type": "string", "example": "09:00"},
                "end_time": {"type": "string", "example": "11:00"},
                "academic_year": {"type": "string", "example": "2025-2026"}
            }
        },
        "CheckConflictsRequest": {
            "type": "object",
            "required": ["day_of_week", "start_time", "end_time", "academic_year"],
            "properties": {
                "trainer_id": {"type": "string"},
                "room_id": {"type": "string"},
                "day_of_week": {"type": "string"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"},
                "academic_year": {"type": "string"}
            }
        },
        "GenerateWeekRequest": {
            "type": "object",
            "required": ["week_start", "academic_year"],
            "properties": {
                "week_start": {"type": "string", "example": "2026-01-05"},
                "academic_year": {"type": "string"}
            }
        },
        "CancelSessionRequest": {
            "type": "object",
            "properties": {
                "reason": {"type": "string"}
            }
        },
        "RescheduleSessionRequest": {
            "type": "object",
            "required": ["new_date"],
            "properties": {
                "new_date": {"type": "string", "example": "2026-01-07"},
                "new_start_time": {"type": "string", "example": "14:00"},
                "new_room_id": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
                "pagination": {"$ref": "#/definitions/Pagination"},
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
