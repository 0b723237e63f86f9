// Package swagger registers the static OpenAPI document served under
// /docs in non-production environments.
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Meeting Scheduler API",
        "description": "Resource availability and booking mutation engine",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login and actor context"},
        {"name": "Availability", "description": "Per-resource day availability"},
        {"name": "Team", "description": "Multi-resource shared slots"},
        {"name": "Bookings", "description": "Booking reads and mutations"},
        {"name": "BlockedIntervals", "description": "Manually blocked time"},
        {"name": "Calendar", "description": "Render records and gestures"},
        {"name": "Exports", "description": "Day sheets as CSV or PDF"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/me/context": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Resolve actor context",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/availability/{resourceId}": {
            "get": {
                "tags": ["Availability"],
                "summary": "Day availability for one resource",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            }
        },
        "/team/slots": {
            "get": {
                "tags": ["Team"],
                "summary": "Shared bookable slots",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/team/available-dates": {
            "get": {
                "tags": ["Team"],
                "summary": "Dates with at least one shared slot",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/bookings": {
            "post": {
                "tags": ["Bookings"],
                "summary": "Book a slot on one resource",
                "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}
            }
        },
        "/bookings/team": {
            "post": {
                "tags": ["Bookings"],
                "summary": "Book an internal team meeting",
                "responses": {"201": {"description": "Created"}, "403": {"description": "Forbidden"}, "409": {"description": "Conflict"}}
            }
        },
        "/bookings/{id}/reschedule": {
            "patch": {
                "tags": ["Bookings"],
                "summary": "Move a booking to a new time window",
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "409": {"description": "Conflict"}}
            }
        },
        "/bookings/{id}/cancel": {
            "post": {
                "tags": ["Bookings"],
                "summary": "Cancel a booking",
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}
            }
        },
        "/blocked-intervals": {
            "post": {
                "tags": ["BlockedIntervals"],
                "summary": "Block time on a resource",
                "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}
            }
        },
        "/calendar/gestures": {
            "post": {
                "tags": ["Calendar"],
                "summary": "Apply a calendar gesture",
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}
            }
        },
        "/exports/day-sheet": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export one resource day",
                "responses": {"200": {"description": "OK"}}
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
                "pagination": {"type": "object"},
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
