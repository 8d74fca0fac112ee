package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Edu CRM Metrics API",
        "description": "Dashboard aggregation, one-shot metrics and report exports for the education-consulting CRM.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http", "https"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Authentication", "description": "Login and token refresh"},
        {"name": "Dashboard", "description": "Aggregated CRM dashboards"},
        {"name": "Metrics", "description": "Stateless aggregation and instrumentation"},
        {"name": "Reports", "description": "Asynchronous CSV/PDF exports"}
    ],
    "parameters": {
        "from": {"name": "from", "in": "query", "type": "string", "format": "date", "description": "Created from (YYYY-MM-DD)"},
        "to": {"name": "to", "in": "query", "type": "string", "format": "date", "description": "Created to, inclusive (YYYY-MM-DD)"},
        "status": {"name": "status", "in": "query", "type": "string", "description": "Comma separated statuses"},
        "search": {"name": "search", "in": "query", "type": "string"},
        "asOf": {"name": "asOf", "in": "query", "type": "string", "format": "date", "description": "Reference date, defaults to today in the configured timezone"}
    },
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshTokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current user and dashboard scope",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dashboard/overview": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Admin overview dashboard",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"$ref": "#/parameters/from"}, {"$ref": "#/parameters/to"},
                    {"$ref": "#/parameters/search"}, {"$ref": "#/parameters/asOf"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/dashboard/applications": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Application pipeline analytics",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"$ref": "#/parameters/from"}, {"$ref": "#/parameters/to"}, {"$ref": "#/parameters/status"},
                    {"$ref": "#/parameters/search"}, {"$ref": "#/parameters/asOf"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/dashboard/leads": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Lead funnel analytics",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"$ref": "#/parameters/from"}, {"$ref": "#/parameters/to"}, {"$ref": "#/parameters/status"},
                    {"$ref": "#/parameters/search"}, {"$ref": "#/parameters/asOf"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/dashboard/financials": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Commission analytics",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"$ref": "#/parameters/from"}, {"$ref": "#/parameters/to"}, {"$ref": "#/parameters/status"},
                    {"$ref": "#/parameters/search"}, {"$ref": "#/parameters/asOf"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/dashboard/leaderboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Counselor leaderboard",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"$ref": "#/parameters/from"}, {"$ref": "#/parameters/to"}, {"$ref": "#/parameters/asOf"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/dashboard/counselor": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Counselor dashboard",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "counselorId", "in": "query", "type": "string", "description": "Required for admins"},
                    {"$ref": "#/parameters/from"}, {"$ref": "#/parameters/to"}, {"$ref": "#/parameters/asOf"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/dashboard/partner": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Partner university dashboard",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "partnerId", "in": "query", "type": "string", "description": "Required for admins"},
                    {"$ref": "#/parameters/from"}, {"$ref": "#/parameters/to"}, {"$ref": "#/parameters/asOf"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/metrics/compute": {
            "post": {
                "tags": ["Metrics"],
                "summary": "Aggregate a supplied record set",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ComputeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "413": {"description": "Too many records", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "429": {"description": "Rate limited", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/metrics/system": {
            "get": {
                "tags": ["Metrics"],
                "summary": "Instrumentation snapshot",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/reports/generate": {
            "post": {
                "tags": ["Reports"],
                "summary": "Queue a dashboard export",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReportRequest"}}
                ],
                "responses": {"202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/reports/status/{id}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Report job status",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/export/{token}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download a rendered report",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "403": {"description": "Invalid or expired token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "RefreshTokenRequest": {
            "type": "object",
            "properties": {
                "refresh_token": {"type": "string"}
            },
            "required": ["refresh_token"]
        },
        "ComputeRequest": {
            "type": "object",
            "properties": {
                "asOf": {"type": "string", "format": "date"},
                "from": {"type": "string", "format": "date"},
                "to": {"type": "string", "format": "date"},
                "statuses": {"type": "array", "items": {"type": "string"}},
                "search": {"type": "string"},
                "trendMonths": {"type": "integer"},
                "topLimit": {"type": "integer"},
                "applications": {"type": "array", "items": {"type": "object"}},
                "leads": {"type": "array", "items": {"type": "object"}},
                "commissions": {"type": "array", "items": {"type": "object"}},
                "students": {"type": "array", "items": {"type": "object"}},
                "counselors": {"type": "array", "items": {"type": "object"}},
                "partners": {"type": "array", "items": {"type": "object"}}
            },
            "required": ["asOf"]
        },
        "ReportRequest": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "enum": ["overview", "applications", "leads", "financials", "leaderboard"]},
                "format": {"type": "string", "enum": ["csv", "pdf"]},
                "asOf": {"type": "string", "format": "date"},
                "from": {"type": "string", "format": "date"},
                "to": {"type": "string", "format": "date"},
                "statuses": {"type": "array", "items": {"type": "string"}},
                "search": {"type": "string"}
            },
            "required": ["type", "format"]
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
