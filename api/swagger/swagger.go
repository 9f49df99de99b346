package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "MAKERS Team HQ API",
        "description": "Team roster, project lifecycle, priority scoring and passwordless access",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Leader token and session lifecycle"},
        {"name": "Invites", "description": "Single-use member invite links"},
        {"name": "Members", "description": "Roster management"},
        {"name": "Projects", "description": "Project lifecycle, comments, subtasks and attachments"},
        {"name": "Scoring", "description": "Priority ranking and workload distribution"},
        {"name": "Activity", "description": "Audit trail"},
        {"name": "Notifications", "description": "Recent notification feed"},
        {"name": "Dashboard", "description": "Aggregate landing view"},
        {"name": "Reports", "description": "PDF and CSV exports"},
        {"name": "AI", "description": "Assistant helpers with deterministic fallback"}
    ],
    "paths": {
        "/auth/leader-login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Log in with the leader token",
                "responses": {
                    "200": {"description": "Leader session issued"},
                    "401": {"description": "Unknown or unconfigured token"}
                }
            }
        },
        "/auth/leader-token/bootstrap": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Bootstrap the leader token",
                "responses": {
                    "200": {"description": "A token already exists"},
                    "201": {"description": "Fresh token minted, raw value disclosed once"}
                }
            }
        },
        "/auth/leader-token/rotate": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Rotate the leader token",
                "responses": {
                    "201": {"description": "New token minted, old one dead"},
                    "403": {"description": "Leader only"}
                }
            }
        },
        "/invites": {
            "post": {
                "tags": ["Invites"],
                "summary": "Create a single-use invite",
                "responses": {
                    "201": {"description": "Invite created"},
                    "403": {"description": "Leader only"}
                }
            },
            "get": {
                "tags": ["Invites"],
                "summary": "List invites newest first",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/invites/consume": {
            "post": {
                "tags": ["Invites"],
                "summary": "Redeem an invite for a member session",
                "responses": {
                    "200": {"description": "Member session issued"},
                    "422": {"description": "Rejected with a per-reason message"}
                }
            }
        },
        "/members": {
            "get": {
                "tags": ["Members"],
                "summary": "List the roster",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/projects": {
            "get": {
                "tags": ["Projects"],
                "summary": "List projects",
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "tags": ["Projects"],
                "summary": "Create a project",
                "responses": {
                    "201": {"description": "Created, team assigned"}
                }
            }
        },
        "/scoring/suggest": {
            "get": {
                "tags": ["Scoring"],
                "summary": "Suggest a team for a subject",
                "responses": {
                    "200": {"description": "Ranked roster, top entries flagged"}
                }
            }
        },
        "/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Aggregate team view",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
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
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "limit": {"type": "integer"},
                "total": {"type": "integer"}
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
