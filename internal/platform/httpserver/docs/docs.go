// Package docs registers the OpenAPI document served under /swagger/.
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
        "/meetings": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["meetings"],
                "summary": "Create a draft meeting and snapshot the site population",
                "parameters": [
                    {"type": "string", "name": "X-User-Id", "in": "header", "required": true},
                    {"type": "string", "name": "Idempotency-Key", "in": "header"},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.CreateMeetingRequest"}}
                ],
                "responses": {
                    "200": {"description": "replayed", "schema": {"$ref": "#/definitions/http.MeetingResponse"}},
                    "201": {"description": "created", "schema": {"$ref": "#/definitions/http.MeetingResponse"}},
                    "400": {"description": "invalid input", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "site not found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/meetings/{meeting_id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["meetings"],
                "summary": "Read the meeting snapshot with a read-only quorum evaluation",
                "parameters": [{"type": "string", "name": "meeting_id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.MeetingDetailResponse"}},
                    "404": {"description": "meeting not found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/meetings/{meeting_id}/gates": {
            "get": {
                "produces": ["application/json"],
                "tags": ["meetings"],
                "summary": "List the lifecycle gate of every operation",
                "parameters": [{"type": "string", "name": "meeting_id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/http.GatesResponse"}}}
            }
        },
        "/meetings/{meeting_id}/attendances": {
            "post": {
                "tags": ["attendance"],
                "summary": "Record attending units",
                "parameters": [
                    {"type": "string", "name": "meeting_id", "in": "path", "required": true},
                    {"type": "string", "name": "X-User-Id", "in": "header", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.AddAttendanceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.AddAttendanceResponse"}},
                    "409": {"description": "operation not permitted", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/meetings/{meeting_id}/quorum": {
            "post": {
                "tags": ["attendance"],
                "summary": "Evaluate quorum, persisting counters while the meeting is a draft",
                "parameters": [
                    {"type": "string", "name": "meeting_id", "in": "path", "required": true},
                    {"type": "string", "name": "X-User-Id", "in": "header", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/http.QuorumResponse"}}}
            }
        },
        "/meetings/{meeting_id}/proxies": {
            "post": {
                "tags": ["proxies"],
                "summary": "Grant proxies to one receiver within the statutory caps",
                "parameters": [
                    {"type": "string", "name": "meeting_id", "in": "path", "required": true},
                    {"type": "string", "name": "X-User-Id", "in": "header", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.GrantProxiesRequest"}}
                ],
                "responses": {
                    "201": {"description": "created", "schema": {"$ref": "#/definitions/http.GrantProxiesResponse"}},
                    "422": {"description": "proxy limit exceeded or self delegation", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/meetings/{meeting_id}/proxies/preview": {
            "post": {
                "tags": ["proxies"],
                "summary": "Validate a proxy request without writing",
                "parameters": [
                    {"type": "string", "name": "meeting_id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.GrantProxiesRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/http.GrantProxiesResponse"}}}
            }
        },
        "/meetings/{meeting_id}/proxy-caps": {
            "get": {
                "tags": ["proxies"],
                "summary": "Statutory caps fixed by the meeting snapshot",
                "parameters": [{"type": "string", "name": "meeting_id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/http.ProxyCapsResponse"}}}
            }
        },
        "/meetings/{meeting_id}/agenda-items": {
            "post": {
                "tags": ["meetings"],
                "summary": "Add an agenda item",
                "parameters": [
                    {"type": "string", "name": "meeting_id", "in": "path", "required": true},
                    {"type": "string", "name": "X-User-Id", "in": "header", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.AddAgendaItemRequest"}}
                ],
                "responses": {"201": {"description": "created", "schema": {"$ref": "#/definitions/http.AgendaItemResponse"}}}
            }
        },
        "/meetings/{meeting_id}/documents": {
            "post": {
                "tags": ["meetings"],
                "summary": "Attach a document",
                "parameters": [
                    {"type": "string", "name": "meeting_id", "in": "path", "required": true},
                    {"type": "string", "name": "X-User-Id", "in": "header", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.AddDocumentRequest"}}
                ],
                "responses": {"201": {"description": "created", "schema": {"$ref": "#/definitions/http.DocumentResponse"}}}
            }
        },
        "/meetings/{meeting_id}/decisions": {
            "post": {
                "tags": ["decisions"],
                "summary": "Create a decision",
                "parameters": [
                    {"type": "string", "name": "meeting_id", "in": "path", "required": true},
                    {"type": "string", "name": "X-User-Id", "in": "header", "required": true},
                    {"type": "string", "name": "Idempotency-Key", "in": "header"},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.CreateDecisionRequest"}}
                ],
                "responses": {"201": {"description": "created", "schema": {"$ref": "#/definitions/http.DecisionResponse"}}}
            }
        },
        "/meetings/{meeting_id}/complete": {
            "post": {
                "tags": ["meetings"],
                "summary": "Complete the meeting; requires at least one decision",
                "parameters": [
                    {"type": "string", "name": "meeting_id", "in": "path", "required": true},
                    {"type": "string", "name": "X-User-Id", "in": "header", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.MeetingResponse"}},
                    "409": {"description": "operation not permitted", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/meetings/{meeting_id}/minutes": {
            "post": {
                "tags": ["meetings"],
                "summary": "Compile the minutes of a completed meeting",
                "parameters": [
                    {"type": "string", "name": "meeting_id", "in": "path", "required": true},
                    {"type": "string", "name": "X-User-Id", "in": "header", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/http.MinutesResponse"}}}
            }
        },
        "/decisions/{decision_id}/votes": {
            "post": {
                "tags": ["decisions"],
                "summary": "Cast or replace votes of attending units",
                "parameters": [
                    {"type": "string", "name": "decision_id", "in": "path", "required": true},
                    {"type": "string", "name": "X-User-Id", "in": "header", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.CastVotesRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/http.DecisionResponse"}}}
            }
        },
        "/decisions/{decision_id}/text": {
            "put": {
                "tags": ["decisions"],
                "summary": "Set the official decision text",
                "parameters": [
                    {"type": "string", "name": "decision_id", "in": "path", "required": true},
                    {"type": "string", "name": "X-User-Id", "in": "header", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.SetDecisionTextRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/http.DecisionResponse"}}}
            }
        },
        "/proxy-caps": {
            "get": {
                "tags": ["proxies"],
                "summary": "Statutory caps for an arbitrary population",
                "parameters": [
                    {"type": "integer", "name": "units", "in": "query", "required": true},
                    {"type": "string", "name": "land_share", "in": "query", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/http.ProxyCapsResponse"}}}
            }
        }
    },
    "definitions": {
        "http.ErrorResponse": {"type": "object", "properties": {"code": {"type": "string"}, "message": {"type": "string"}, "details": {"type": "object"}}},
        "http.CreateMeetingRequest": {"type": "object", "properties": {"site_id": {"type": "string"}, "title": {"type": "string"}, "description": {"type": "string"}, "meeting_date": {"type": "string"}}},
        "http.MeetingResponse": {"type": "object", "properties": {"meeting_id": {"type": "string"}, "site_id": {"type": "string"}, "title": {"type": "string"}, "meeting_date": {"type": "string"}, "state": {"type": "string"}, "total_unit_count": {"type": "integer"}, "total_site_land_share": {"type": "string"}, "attended_unit_count": {"type": "integer"}, "attended_land_share": {"type": "string"}, "quorum_achieved": {"type": "boolean"}, "completed_at": {"type": "string"}, "minutes_compiled_at": {"type": "string"}, "replayed": {"type": "boolean"}}},
        "http.MeetingDetailResponse": {"type": "object", "properties": {"meeting": {"$ref": "#/definitions/http.MeetingResponse"}, "quorum": {"$ref": "#/definitions/http.QuorumResponse"}}},
        "http.GatesResponse": {"type": "object", "properties": {"meeting_id": {"type": "string"}, "items": {"type": "array", "items": {"type": "object", "properties": {"operation": {"type": "string"}, "permitted": {"type": "boolean"}, "reason": {"type": "string"}}}}}},
        "http.AddAttendanceRequest": {"type": "object", "properties": {"unit_ids": {"type": "array", "items": {"type": "string"}}}},
        "http.AddAttendanceResponse": {"type": "object", "properties": {"added": {"type": "array", "items": {"type": "string"}}, "skipped": {"type": "array", "items": {"type": "string"}}}},
        "http.QuorumResponse": {"type": "object", "properties": {"achieved": {"type": "boolean"}, "units_achieved": {"type": "boolean"}, "land_share_achieved": {"type": "boolean"}, "unit_percent": {"type": "string"}, "land_share_percent": {"type": "string"}, "message": {"type": "string"}, "persisted": {"type": "boolean"}}},
        "http.GrantProxiesRequest": {"type": "object", "properties": {"giver_unit_ids": {"type": "array", "items": {"type": "string"}}, "receiver_unit_id": {"type": "string"}, "receiver_name": {"type": "string"}, "receiver_phone": {"type": "string"}}},
        "http.GrantProxiesResponse": {"type": "object", "properties": {"accepted": {"type": "array", "items": {"type": "string"}}, "skipped": {"type": "array", "items": {"type": "string"}}, "limits": {"type": "object"}}},
        "http.ProxyCapsResponse": {"type": "object", "properties": {"total_unit_count": {"type": "integer"}, "total_land_share": {"type": "string"}, "max_count": {"type": "integer"}, "max_land_share": {"type": "string"}}},
        "http.AddAgendaItemRequest": {"type": "object", "properties": {"title": {"type": "string"}, "description": {"type": "string"}, "order": {"type": "integer"}}},
        "http.AgendaItemResponse": {"type": "object", "properties": {"agenda_item_id": {"type": "string"}, "title": {"type": "string"}, "order": {"type": "integer"}}},
        "http.AddDocumentRequest": {"type": "object", "properties": {"title": {"type": "string"}, "type": {"type": "string", "enum": ["activity_report", "auditor_report", "other"]}, "content": {"type": "string"}}},
        "http.DocumentResponse": {"type": "object", "properties": {"document_id": {"type": "string"}, "title": {"type": "string"}, "type": {"type": "string"}, "type_label": {"type": "string"}}},
        "http.CreateDecisionRequest": {"type": "object", "properties": {"title": {"type": "string"}, "description": {"type": "string"}}},
        "http.DecisionResponse": {"type": "object", "properties": {"decision_id": {"type": "string"}, "meeting_id": {"type": "string"}, "title": {"type": "string"}, "description": {"type": "string"}, "decision_text": {"type": "string"}, "tally": {"type": "object"}, "is_approved": {"type": "boolean"}, "replayed": {"type": "boolean"}}},
        "http.CastVotesRequest": {"type": "object", "properties": {"votes": {"type": "array", "items": {"type": "object", "properties": {"unit_id": {"type": "string"}, "choice": {"type": "string", "enum": ["yes", "no", "abstain"]}}}}}},
        "http.SetDecisionTextRequest": {"type": "object", "properties": {"text": {"type": "string"}}},
        "http.MinutesResponse": {"type": "object", "properties": {"meeting_id": {"type": "string"}, "text": {"type": "string"}, "compiled_at": {"type": "string"}, "replayed": {"type": "boolean"}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/governance/v1",
	Schemes:          []string{},
	Title:            "Condominium Governance API",
	Description:      "Meetings, attendance, proxies, decisions and minutes of condominium assemblies.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
