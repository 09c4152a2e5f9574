// Package docs holds the OpenAPI description served under /swagger.
// Regenerate it with `swag init` after changing handler annotations.
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
		"/auth/register": {
			"post": {
				"tags": [
					"auth"
				],
				"summary": "Register a new user",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Register Input",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					}
				},
				"consumes": [
					"application/json"
				]
			}
		},
		"/auth/login": {
			"post": {
				"tags": [
					"auth"
				],
				"summary": "Log in a user",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Login Input",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					}
				},
				"consumes": [
					"application/json"
				]
			}
		},
		"/auth/logout": {
			"post": {
				"tags": [
					"auth"
				],
				"summary": "Log out a user",
				"produces": [
					"application/json"
				],
				"parameters": [],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					}
				},
				"security": [
					{
						"ApiKeyAuth": []
					}
				]
			}
		},
		"/templates": {
			"get": {
				"tags": [
					"templates"
				],
				"summary": "List prompt templates",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "integer",
						"description": "page",
						"name": "page",
						"in": "query",
						"required": false
					},
					{
						"type": "integer",
						"description": "size",
						"name": "size",
						"in": "query",
						"required": false
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					}
				}
			},
			"post": {
				"tags": [
					"templates"
				],
				"summary": "Create a prompt template",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Template",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					}
				},
				"consumes": [
					"application/json"
				]
			}
		},
		"/templates/search": {
			"post": {
				"tags": [
					"templates"
				],
				"summary": "Search prompt templates",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "integer",
						"description": "page",
						"name": "page",
						"in": "query",
						"required": false
					},
					{
						"type": "integer",
						"description": "size",
						"name": "size",
						"in": "query",
						"required": false
					},
					{
						"description": "Search criteria",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					}
				},
				"consumes": [
					"application/json"
				]
			}
		},
		"/templates/categories": {
			"get": {
				"tags": [
					"templates"
				],
				"summary": "List template categories",
				"produces": [
					"application/json"
				],
				"parameters": [],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					}
				}
			}
		},
		"/templates/check-name": {
			"get": {
				"tags": [
					"templates"
				],
				"summary": "Check template name",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "name",
						"name": "name",
						"in": "query",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					}
				}
			}
		},
		"/templates/{id}": {
			"get": {
				"tags": [
					"templates"
				],
				"summary": "Get a prompt template",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					}
				}
			},
			"put": {
				"tags": [
					"templates"
				],
				"summary": "Update a prompt template",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Template",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					}
				},
				"consumes": [
					"application/json"
				]
			},
			"delete": {
				"tags": [
					"templates"
				],
				"summary": "Delete a prompt template",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					}
				}
			}
		},
		"/templates/{id}/versions": {
			"get": {
				"tags": [
					"templates"
				],
				"summary": "List versions of a template",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "integer",
						"description": "page",
						"name": "page",
						"in": "query",
						"required": false
					},
					{
						"type": "integer",
						"description": "size",
						"name": "size",
						"in": "query",
						"required": false
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					}
				}
			}
		},
		"/templates/{id}/history": {
			"get": {
				"tags": [
					"templates"
				],
				"summary": "Get template version history",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					}
				}
			}
		},
		"/versions": {
			"get": {
				"tags": [
					"versions"
				],
				"summary": "List all versions",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "integer",
						"description": "page",
						"name": "page",
						"in": "query",
						"required": false
					},
					{
						"type": "integer",
						"description": "size",
						"name": "size",
						"in": "query",
						"required": false
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					}
				}
			},
			"post": {
				"tags": [
					"versions"
				],
				"summary": "Create a version",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Version",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					}
				},
				"consumes": [
					"application/json"
				]
			}
		},
		"/versions/compare": {
			"get": {
				"tags": [
					"versions"
				],
				"summary": "Compare two versions",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "sourceId",
						"name": "sourceId",
						"in": "query",
						"required": true
					},
					{
						"type": "string",
						"description": "targetId",
						"name": "targetId",
						"in": "query",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					}
				}
			}
		},
		"/versions/{id}": {
			"get": {
				"tags": [
					"versions"
				],
				"summary": "Get a version",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					}
				}
			},
			"put": {
				"tags": [
					"versions"
				],
				"summary": "Update a draft version",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Changed fields",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					}
				},
				"consumes": [
					"application/json"
				]
			}
		},
		"/versions/{id}/branch": {
			"post": {
				"tags": [
					"versions"
				],
				"summary": "Branch a version",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					}
				}
			}
		},
		"/versions/{id}/status": {
			"post": {
				"tags": [
					"versions"
				],
				"summary": "Change version status",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Target status",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"422": {
						"description": "Unprocessable Entity",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					}
				},
				"consumes": [
					"application/json"
				]
			}
		},
		"/versions/{id}/rollback": {
			"post": {
				"tags": [
					"versions"
				],
				"summary": "Roll back to a version",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					}
				}
			}
		},
		"/versions/{id}/lineage": {
			"get": {
				"tags": [
					"versions"
				],
				"summary": "Get version lineage",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					}
				}
			}
		},
		"/versions/{id}/audit-trail": {
			"get": {
				"tags": [
					"versions"
				],
				"summary": "Get version audit trail",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					}
				}
			}
		},
		"/versions/{id}/status-transitions": {
			"get": {
				"tags": [
					"versions"
				],
				"summary": "Get allowed status transitions",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					}
				}
			}
		},
		"/versions/{id}/can-transition": {
			"get": {
				"tags": [
					"versions"
				],
				"summary": "Check a status transition",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "string",
						"description": "status",
						"name": "status",
						"in": "query",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					},
					"500": {
						"description": "Internal Server Error",
						"schema": {
							"$ref": "#/definitions/utils.Response"
						}
					}
				}
			}
		}
	},
	"definitions": {
		"utils.Response": {
			"type": "object",
			"properties": {
				"data": {},
				"message": {
					"type": "string"
				},
				"status": {
					"type": "integer"
				}
			}
		}
	},
	"securityDefinitions": {
		"ApiKeyAuth": {
			"type": "apiKey",
			"name": "Authorization",
			"in": "header"
		}
	}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "promptops-backend API",
	Description:      "Prompt template and version management service.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
