// Package docs registers the OpenAPI document served at /swagger/*.
// Regenerate with: swag init -g cmd/server/main.go
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
        "/api/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a new user",
                "parameters": [{"description": "User registration details", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.registerRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.authResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorBody"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.errorBody"}}
                }
            }
        },
        "/api/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login",
                "parameters": [{"description": "Login credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.loginRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.authResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorBody"}}
                }
            }
        },
        "/api/auth/refresh-token": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Refresh tokens",
                "parameters": [{"description": "Current refresh token", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.refreshTokenRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.authResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorBody"}}
                }
            }
        },
        "/api/auth/revoke-token": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Revoke a refresh token",
                "parameters": [{"description": "Refresh token to revoke", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.refreshTokenRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.messageResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorBody"}}
                }
            }
        },
        "/api/auth/logout": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Logout",
                "parameters": [{"description": "Refresh token to revoke", "name": "body", "in": "body", "schema": {"$ref": "#/definitions/handler.refreshTokenRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.messageResponse"}}}
            }
        },
        "/api/invoices": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["invoices"],
                "summary": "List invoices",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.invoiceResponse"}}}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["invoices"],
                "summary": "Create invoice",
                "parameters": [{"description": "Invoice details", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.createInvoiceRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.invoiceResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorBody"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorBody"}}
                }
            }
        },
        "/api/invoices/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["invoices"],
                "summary": "Get invoice",
                "parameters": [{"type": "string", "description": "Invoice ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.invoiceResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorBody"}}
                }
            }
        },
        "/api/invoices/{id}/status": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["invoices"],
                "summary": "Update invoice status",
                "parameters": [
                    {"type": "string", "description": "Invoice ID", "name": "id", "in": "path", "required": true},
                    {"description": "Target status", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.updateStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.statusUpdateResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.errorBody"}}
                }
            }
        },
        "/api/invoices/{id}/accept": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["invoices"],
                "summary": "Accept invoice",
                "parameters": [{"type": "string", "description": "Invoice ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.invoiceResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.errorBody"}}
                }
            }
        },
        "/api/invoices/{id}/reject": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["invoices"],
                "summary": "Reject invoice",
                "parameters": [
                    {"type": "string", "description": "Invoice ID", "name": "id", "in": "path", "required": true},
                    {"description": "Rejection reason", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.rejectInvoiceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.invoiceResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.errorBody"}}
                }
            }
        },
        "/api/invoices/{id}/download": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/pdf"],
                "tags": ["invoices"],
                "summary": "Download invoice PDF",
                "parameters": [{"type": "string", "description": "Invoice ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"type": "file"}}}
            }
        },
        "/api/users": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "List assignable users",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.userResponse"}}}}
            }
        },
        "/api/notifications": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["notifications"],
                "summary": "List notifications",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.notificationResponse"}}}}
            }
        },
        "/api/notifications/{id}/read": {
            "put": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["notifications"],
                "summary": "Mark notification read",
                "parameters": [{"type": "string", "description": "Notification ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.markReadResponse"}}}
            }
        },
        "/api/notifications/read-all": {
            "put": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["notifications"],
                "summary": "Mark all notifications read",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.markAllReadResponse"}}}
            }
        },
        "/api/notifications/{id}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["notifications"],
                "summary": "Delete notification",
                "parameters": [{"type": "string", "description": "Notification ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.deleteNotificationResponse"}}}
            }
        },
        "/api/notifications/unread-count": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["notifications"],
                "summary": "Unread notification count",
                "responses": {"200": {"description": "OK", "schema": {"type": "integer"}}}
            }
        },
        "/ws": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["push"],
                "summary": "Open the push channel",
                "parameters": [{"type": "string", "description": "Access token for browser clients", "name": "access_token", "in": "query"}],
                "responses": {"101": {"description": "Switching Protocols"}}
            }
        },
        "/health": {
            "get": {"produces": ["application/json"], "tags": ["health"], "summary": "Liveness probe", "responses": {"200": {"description": "OK"}}}
        },
        "/health/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.readinessResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.readinessResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.FieldError": {"type": "object", "properties": {"field": {"type": "string"}, "message": {"type": "string"}}},
        "handler.errorBody": {"type": "object", "properties": {"error": {"type": "string"}, "details": {"type": "array", "items": {"$ref": "#/definitions/domain.FieldError"}}}},
        "handler.messageResponse": {"type": "object", "properties": {"message": {"type": "string"}}},
        "handler.registerRequest": {
            "type": "object",
            "required": ["email", "password", "username"],
            "properties": {"username": {"type": "string", "maxLength": 100}, "email": {"type": "string"}, "password": {"type": "string", "minLength": 6}, "role": {"type": "string", "enum": ["User", "Admin"]}}
        },
        "handler.loginRequest": {
            "type": "object",
            "required": ["password", "username"],
            "properties": {"username": {"type": "string"}, "password": {"type": "string"}, "role": {"type": "string", "enum": ["User", "Admin"]}}
        },
        "handler.refreshTokenRequest": {"type": "object", "required": ["refreshToken"], "properties": {"refreshToken": {"type": "string"}}},
        "handler.authResponse": {
            "type": "object",
            "properties": {
                "accessToken": {"type": "string"}, "refreshToken": {"type": "string"},
                "username": {"type": "string"}, "role": {"type": "string"},
                "accessTokenExpiry": {"type": "string"}, "refreshTokenExpiry": {"type": "string"}
            }
        },
        "handler.invoiceItemRequest": {"type": "object", "properties": {"description": {"type": "string"}, "quantity": {"type": "integer"}, "unitPrice": {"type": "number"}}},
        "handler.createInvoiceRequest": {
            "type": "object",
            "properties": {
                "customerName": {"type": "string"}, "dueDate": {"type": "string", "example": "2026-12-31"},
                "assignedUserId": {"type": "string"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/handler.invoiceItemRequest"}}
            }
        },
        "handler.updateStatusRequest": {"type": "object", "properties": {"status": {"type": "string", "example": "Paid"}}},
        "handler.rejectInvoiceRequest": {"type": "object", "properties": {"reason": {"type": "string"}}},
        "handler.invoiceItemResponse": {"type": "object", "properties": {"description": {"type": "string"}, "quantity": {"type": "integer"}, "unitPrice": {"type": "number"}, "totalPrice": {"type": "number"}}},
        "handler.invoiceResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"}, "invoiceNumber": {"type": "string"}, "customerName": {"type": "string"},
                "issueDate": {"type": "string"}, "dueDate": {"type": "string"}, "totalAmount": {"type": "number"},
                "status": {"type": "string"}, "acceptedDate": {"type": "string"},
                "assignedUserId": {"type": "string"}, "createdByAdminId": {"type": "string"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/handler.invoiceItemResponse"}}
            }
        },
        "handler.statusUpdateResponse": {"type": "object", "properties": {"message": {"type": "string"}, "invoice": {"$ref": "#/definitions/handler.invoiceResponse"}}},
        "handler.userResponse": {"type": "object", "properties": {"id": {"type": "string"}, "username": {"type": "string"}, "email": {"type": "string"}, "role": {"type": "string"}}},
        "handler.notificationResponse": {
            "type": "object",
            "properties": {"id": {"type": "string"}, "userId": {"type": "string"}, "message": {"type": "string"}, "createdAt": {"type": "string"}, "isRead": {"type": "boolean"}}
        },
        "handler.markReadResponse": {"type": "object", "properties": {"message": {"type": "string"}, "notificationId": {"type": "string"}, "isRead": {"type": "boolean"}}},
        "handler.markAllReadResponse": {"type": "object", "properties": {"message": {"type": "string"}, "markedCount": {"type": "integer"}}},
        "handler.deleteNotificationResponse": {"type": "object", "properties": {"message": {"type": "string"}, "notificationId": {"type": "string"}}},
        "handler.dependencyStatus": {"type": "object", "properties": {"status": {"type": "string"}, "error": {"type": "string"}}},
        "handler.readinessResponse": {
            "type": "object",
            "properties": {"status": {"type": "string"}, "dependencies": {"type": "object", "additionalProperties": {"$ref": "#/definitions/handler.dependencyStatus"}}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"description": "Type \"Bearer\" followed by a space and the access token.", "type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Invoice System API",
	Description:      "Invoice workflow with role-based access, refresh-token sessions and real-time notifications.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
