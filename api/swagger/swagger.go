package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "PERM Tracker API",
        "description": "Deadline and ranking engine for PERM labor certification cases",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Auth", "description": "Login and current user"},
        {"name": "Cases", "description": "PERM case records, search and ordering"},
        {"name": "Deadlines", "description": "Upcoming deadlines and calendar feed"},
        {"name": "Exports", "description": "CSV and PDF case exports"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Login",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Current user",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/cases": {
            "get": {
                "tags": ["Cases"],
                "summary": "List cases",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "q", "in": "query", "type": "string"},
                    {"name": "sort", "in": "query", "type": "string", "enum": ["deadline", "updated", "employer", "status", "pwdFiled", "etaFiled", "i140Filed"]},
                    {"name": "dir", "in": "query", "type": "string", "enum": ["asc", "desc"]},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "favorites", "in": "query", "type": "boolean"},
                    {"name": "includeClosed", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "today", "in": "query", "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Cases"],
                "summary": "Create case",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CasePayload"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/cases/{id}": {
            "get": {
                "tags": ["Cases"],
                "summary": "Get case with resolved deadlines",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "today", "in": "query", "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Cases"],
                "summary": "Update case",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CasePayload"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "410": {"description": "Case deleted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Cases"],
                "summary": "Soft delete case",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/cases/{id}/restore": {
            "post": {
                "tags": ["Cases"],
                "summary": "Restore a deleted case",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/cases/{id}/favorite": {
            "put": {
                "tags": ["Cases"],
                "summary": "Toggle favorite",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object", "properties": {"is_favorite": {"type": "boolean"}}}}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/cases/{id}/requests": {
            "post": {
                "tags": ["Cases"],
                "summary": "Record an RFI or RFE",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RequestEntry"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/cases/{id}/requests/{requestId}/response": {
            "put": {
                "tags": ["Cases"],
                "summary": "Record an RFI or RFE response",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "requestId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object", "properties": {"response_submitted_date": {"type": "string", "format": "date"}}}}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/deadlines/upcoming": {
            "get": {
                "tags": ["Deadlines"],
                "summary": "Upcoming and overdue deadlines",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "today", "in": "query", "type": "string", "format": "date"},
                    {"name": "within", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/deadlines/calendar.ics": {
            "get": {
                "tags": ["Deadlines"],
                "summary": "iCalendar feed of open deadlines",
                "security": [{"BearerAuth": []}],
                "produces": ["text/calendar"],
                "parameters": [
                    {"name": "today", "in": "query", "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "Calendar file"}
                }
            }
        },
        "/exports/cases": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export cases",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "q", "in": "query", "type": "string"},
                    {"name": "sort", "in": "query", "type": "string"},
                    {"name": "dir", "in": "query", "type": "string"},
                    {"name": "today", "in": "query", "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "Export file"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "CasePayload": {
            "type": "object",
            "required": ["case_status", "progress_status", "employer_name"],
            "properties": {
                "case_status": {"type": "string", "enum": ["pwd", "recruitment", "eta9089", "i140", "closed"]},
                "progress_status": {"type": "string", "enum": ["working", "waiting_intake", "filed", "under_review", "rfi_rfe", "approved"]},
                "employer_name": {"type": "string"},
                "beneficiary_identifier": {"type": "string"},
                "position_title": {"type": "string"},
                "is_favorite": {"type": "boolean"},
                "is_professional_occupation": {"type": "boolean"},
                "pwd_filing_date": {"type": "string", "format": "date"},
                "pwd_determination_date": {"type": "string", "format": "date"},
                "pwd_expiration_date": {"type": "string", "format": "date"},
                "recruitment_start_date": {"type": "string", "format": "date"},
                "recruitment_end_date": {"type": "string", "format": "date"},
                "notice_of_filing_start_date": {"type": "string", "format": "date"},
                "notice_of_filing_end_date": {"type": "string", "format": "date"},
                "job_order_start_date": {"type": "string", "format": "date"},
                "job_order_end_date": {"type": "string", "format": "date"},
                "sunday_ad_first_date": {"type": "string", "format": "date"},
                "sunday_ad_second_date": {"type": "string", "format": "date"},
                "additional_recruitment_end_date": {"type": "string", "format": "date"},
                "eta9089_filing_date": {"type": "string", "format": "date"},
                "eta9089_certification_date": {"type": "string", "format": "date"},
                "eta9089_expiration_date": {"type": "string", "format": "date"},
                "i140_filing_date": {"type": "string", "format": "date"},
                "i140_approval_date": {"type": "string", "format": "date"}
            }
        },
        "RequestEntry": {
            "type": "object",
            "required": ["kind", "received_date"],
            "properties": {
                "kind": {"type": "string", "enum": ["rfi", "rfe"]},
                "received_date": {"type": "string", "format": "date"},
                "response_due_date": {"type": "string", "format": "date"}
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
