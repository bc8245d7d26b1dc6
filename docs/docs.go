// Package docs registers the OpenAPI description served under /swagger/.
// Update it alongside the swag annotations on the handlers.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness and summary",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.RootResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "description": "Runs the self-check battery without sending an alert. Returns 503 when any check fails.",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.HealthResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handlers.HealthResponse"}}
                }
            }
        },
        "/status": {
            "get": {
                "description": "Schedule, scheduler state, last run, latest health result and non-secret configuration.",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Detailed status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.StatusResponse"}}
                }
            }
        },
        "/check-sender": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Verify the sender address",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.SenderCheck"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/monitor": {
            "post": {
                "description": "Runs the self-check battery and emails the alert address if any issue is found.",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Manual health check",
                "parameters": [
                    {"type": "string", "description": "Trigger API key", "name": "x-mailer-auth-key", "in": "header", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.MonitorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/get-schedule": {
            "get": {
                "produces": ["application/json"],
                "tags": ["schedule"],
                "summary": "Current daily trigger time",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ScheduleResponse"}}
                }
            }
        },
        "/update-schedule": {
            "post": {
                "description": "Validates, persists and activates a new hour/minute in the reference time zone. Invalid input leaves the current schedule untouched.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["schedule"],
                "summary": "Change the daily trigger time",
                "parameters": [
                    {"description": "New trigger time", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.UpdateScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.UpdateScheduleResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/validator.ValidationErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/send-emails": {
            "post": {
                "description": "Fetches contacts and sends the rendered template to each of them. An optional subject overrides the configured prefix.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["campaign"],
                "summary": "Run the daily campaign now",
                "parameters": [
                    {"description": "Optional subject prefix", "name": "request", "in": "body", "schema": {"$ref": "#/definitions/handlers.SendCampaignRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.CampaignResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/validator.ValidationErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/domain.CampaignResult"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/domain.CampaignResult"}}
                }
            }
        },
        "/send-custom-emails": {
            "post": {
                "description": "Same as /send-emails; the subject from the body is used as the subject prefix.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["campaign"],
                "summary": "Run the campaign with a custom subject",
                "parameters": [
                    {"description": "Subject prefix", "name": "request", "in": "body", "schema": {"$ref": "#/definitions/handlers.SendCampaignRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.CampaignResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/validator.ValidationErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/domain.CampaignResult"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/domain.CampaignResult"}}
                }
            }
        },
        "/trigger-test": {
            "post": {
                "description": "Runs the campaign with the test subject prefix. Requires the trigger key.",
                "produces": ["application/json"],
                "tags": ["campaign"],
                "summary": "Guarded test run",
                "parameters": [
                    {"type": "string", "description": "Trigger API key", "name": "x-mailer-auth-key", "in": "header", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.CampaignResult"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/domain.CampaignResult"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/domain.CampaignResult"}}
                }
            }
        },
        "/daily-template": {
            "get": {
                "description": "Renders the template for today's date in the reference time zone.",
                "produces": ["text/html"],
                "tags": ["campaign"],
                "summary": "Preview today's email",
                "parameters": [
                    {"type": "string", "description": "Display name substituted into the template", "name": "name", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "rendered HTML", "schema": {"type": "string"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/api/v1/runs": {
            "get": {
                "description": "Paginated runs from the delivery log, newest first.",
                "produces": ["application/json"],
                "tags": ["runs"],
                "summary": "List campaign runs",
                "parameters": [
                    {"type": "string", "description": "Trigger API key", "name": "x-mailer-auth-key", "in": "header", "required": true},
                    {"type": "integer", "default": 1, "description": "Page number", "name": "page", "in": "query"},
                    {"type": "integer", "default": 20, "description": "Page size", "name": "pageSize", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.PaginatedResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/api/v1/runs/{id}/deliveries": {
            "get": {
                "produces": ["application/json"],
                "tags": ["runs"],
                "summary": "Per-recipient outcomes of a run",
                "parameters": [
                    {"type": "string", "description": "Trigger API key", "name": "x-mailer-auth-key", "in": "header", "required": true},
                    {"type": "string", "description": "Run ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.SuccessResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.CampaignResult": {
            "type": "object",
            "properties": {
                "runId": {"type": "string"},
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "count": {"type": "integer"},
                "total": {"type": "integer"},
                "notAttempted": {"type": "integer"},
                "failures": {"type": "array", "items": {"$ref": "#/definitions/domain.SendOutcome"}}
            }
        },
        "domain.SendOutcome": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "status": {"type": "string"},
                "statusCode": {"type": "integer"},
                "error": {"type": "string"}
            }
        },
        "domain.RunRecord": {
            "type": "object",
            "properties": {
                "run_id": {"type": "string"},
                "trigger": {"type": "string"},
                "timestamp": {"type": "string"},
                "started_at": {"type": "string"},
                "finished_at": {"type": "string"},
                "status": {"type": "string"},
                "message": {"type": "string"},
                "sent_count": {"type": "integer"},
                "failed_count": {"type": "integer"},
                "error": {"type": "string"},
                "last_success_at": {"type": "string"}
            }
        },
        "domain.ScheduleConfig": {
            "type": "object",
            "properties": {
                "hour": {"type": "integer"},
                "minute": {"type": "integer"},
                "last_updated": {"type": "string"},
                "updated_by": {"type": "string"}
            }
        },
        "domain.VerifiedSender": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "nickname": {"type": "string"},
                "from_email": {"type": "string"},
                "from_name": {"type": "string"},
                "verified": {"type": "object"},
                "locked": {"type": "boolean"}
            }
        },
        "domain.SenderCheck": {
            "type": "object",
            "properties": {
                "is_verified": {"type": "boolean"},
                "sender_info": {"$ref": "#/definitions/domain.VerifiedSender"}
            }
        },
        "domain.HealthStatus": {
            "type": "object",
            "properties": {
                "last_check": {"type": "string"},
                "issues": {"type": "array", "items": {"type": "string"}},
                "checks": {"type": "object", "additionalProperties": {"type": "string"}},
                "checks_passed": {"type": "integer"},
                "checks_failed": {"type": "integer"}
            }
        },
        "handlers.RootResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "status": {"type": "string"},
                "schedule": {"type": "string"},
                "last_execution": {"$ref": "#/definitions/domain.RunRecord"}
            }
        },
        "handlers.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "timestamp": {"type": "string"},
                "checks": {"type": "object", "additionalProperties": {"type": "string"}},
                "issues": {"type": "array", "items": {"type": "string"}},
                "scheduler": {"$ref": "#/definitions/scheduler.SchedulerStatus"},
                "components": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "handlers.StatusResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "campaign_in_progress": {"type": "boolean"},
                "schedule_config": {"$ref": "#/definitions/domain.ScheduleConfig"},
                "scheduler": {"$ref": "#/definitions/scheduler.SchedulerStatus"},
                "last_execution": {"$ref": "#/definitions/domain.RunRecord"},
                "last_health_check": {"$ref": "#/definitions/domain.HealthStatus"},
                "configuration": {"$ref": "#/definitions/service.ConfigurationSummary"}
            }
        },
        "handlers.MonitorResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "issues": {"type": "array", "items": {"type": "string"}},
                "checks": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "handlers.ScheduleResponse": {
            "type": "object",
            "properties": {
                "hour": {"type": "integer"},
                "minute": {"type": "integer"},
                "last_updated": {"type": "string"},
                "updated_by": {"type": "string"}
            }
        },
        "handlers.UpdateScheduleRequest": {
            "type": "object",
            "required": ["hour", "minute"],
            "properties": {
                "hour": {"type": "integer", "maximum": 23, "minimum": 0},
                "minute": {"type": "integer", "maximum": 59, "minimum": 0},
                "updated_by": {"type": "string", "maxLength": 64}
            }
        },
        "handlers.UpdateScheduleResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "old_schedule": {"$ref": "#/definitions/domain.ScheduleConfig"},
                "new_schedule": {"$ref": "#/definitions/domain.ScheduleConfig"}
            }
        },
        "handlers.SendCampaignRequest": {
            "type": "object",
            "properties": {
                "subject": {"type": "string", "maxLength": 200}
            }
        },
        "response.ErrorResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "error": {"type": "string"}
            }
        },
        "response.SuccessResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "data": {}
            }
        },
        "response.PaginatedResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {},
                "page": {"type": "integer"},
                "pageSize": {"type": "integer"},
                "totalCount": {"type": "integer"},
                "totalPages": {"type": "integer"}
            }
        },
        "scheduler.SchedulerStatus": {
            "type": "object",
            "properties": {
                "running": {"type": "boolean"},
                "schedule": {"$ref": "#/definitions/domain.ScheduleConfig"},
                "timezone": {"type": "string"},
                "next_run": {"type": "string"},
                "last_fire": {"type": "string"},
                "fire_count": {"type": "integer"},
                "last_run_status": {"type": "string"},
                "health_check_interval": {"type": "string"},
                "next_health_check": {"type": "string"},
                "last_health_check": {"type": "string"},
                "health_checks_run": {"type": "integer"},
                "reconfigure_count": {"type": "integer"},
                "registered_jobs": {"type": "integer"}
            }
        },
        "service.ConfigurationSummary": {
            "type": "object",
            "properties": {
                "sendgrid_configured": {"type": "boolean"},
                "sender_email": {"type": "string"},
                "sender_name": {"type": "string"},
                "template_path": {"type": "string"},
                "template_exists": {"type": "boolean"},
                "subject_prefix": {"type": "string"},
                "timezone": {"type": "string"},
                "concurrency": {"type": "integer"},
                "run_timeout": {"type": "string"}
            }
        },
        "validator.ValidationErrorResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "error": {"type": "string"},
                "details": {"type": "object", "additionalProperties": {"type": "string"}}
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
	Title:            "Daily Campaign Mailer API",
	Description:      "Fetches the contact list, renders the daily template and sends one personalised email per contact on a schedule or on demand.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
