package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the recipe service.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg gin.IRouter) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>recipe-service - Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "recipe-service", "version": "v1.0.0" },
  "components": {
    "schemas": {
      "Recipe": {
        "type": "object",
        "properties": {
          "id": {"type":"string"},
          "title": {"type":"string"},
          "making_time": {"type":"string"},
          "serves": {"type":"string"},
          "ingredients": {"type":"string"},
          "cost": {"type":"string"},
          "created_at": {"type":"string","format":"date-time"},
          "updated_at": {"type":"string","format":"date-time"}
        }
      },
      "NewRecipe": {
        "type": "object",
        "required": ["title","making_time","serves","ingredients","cost"],
        "properties": {
          "title": {"type":"string"},
          "making_time": {"type":"string"},
          "serves": {"type":"string"},
          "ingredients": {"type":"string"},
          "cost": {"oneOf":[{"type":"string"},{"type":"number"}]}
        }
      },
      "RecipePatch": {
        "type": "object",
        "additionalProperties": false,
        "properties": {
          "title": {"type":"string","minLength":1},
          "making_time": {"type":"string","minLength":1},
          "serves": {"type":"string","minLength":1},
          "ingredients": {"type":"string","minLength":1},
          "cost": {"oneOf":[{"type":"string","minLength":1},{"type":"number"}]}
        }
      },
      "Message": {
        "type": "object",
        "properties": { "message": {"type":"string"}, "error": {"type":"string"} }
      }
    },
    "securitySchemes": { "bearer": { "type": "http", "scheme": "bearer", "bearerFormat": "JWT" } }
  },
  "paths": {
    "/recipes": {
      "get": {
        "summary": "List all recipes",
        "responses": {
          "200": { "description": "Successful!", "content": { "application/json": { "schema": {"type":"object","properties":{"message":{"type":"string"},"response":{"type":"array","items":{"$ref":"#/components/schemas/Recipe"}}}}}}},
          "400": { "description": "No recipes found!" },
          "500": { "description": "Error fetching recipes" }
        }
      },
      "post": {
        "summary": "Create a recipe",
        "security": [ { "bearer": [] } ],
        "requestBody": { "required": true, "content": { "application/json": { "schema": {"$ref":"#/components/schemas/NewRecipe"}}}},
        "responses": {
          "200": { "description": "Recipe successfully created!", "content": { "application/json": { "schema": {"type":"object","properties":{"message":{"type":"string"},"recipe":{"type":"array","items":{"$ref":"#/components/schemas/Recipe"}}}}}}},
          "400": { "description": "Recipe creation failed!" },
          "500": { "description": "Error creating recipe" }
        }
      }
    },
    "/recipes/{id}": {
      "parameters": [ { "name": "id", "in": "path", "required": true, "schema": {"type":"string"} } ],
      "get": {
        "summary": "Get a recipe by id",
        "responses": {
          "200": { "description": "Recipe details by id" },
          "404": { "description": "No recipe found" },
          "500": { "description": "Error fetching recipe" }
        }
      },
      "patch": {
        "summary": "Update some fields of a recipe",
        "security": [ { "bearer": [] } ],
        "requestBody": { "required": true, "content": { "application/json": { "schema": {"$ref":"#/components/schemas/RecipePatch"}}}},
        "responses": {
          "200": { "description": "Recipe successfully updated!" },
          "400": { "description": "Recipe update failed!" },
          "404": { "description": "No recipe found" },
          "500": { "description": "Error updating recipe" }
        }
      },
      "delete": {
        "summary": "Delete a recipe",
        "security": [ { "bearer": [] } ],
        "responses": {
          "200": { "description": "Recipe successfully removed!" },
          "404": { "description": "No recipe found" },
          "500": { "description": "Error deleting recipe" }
        }
      }
    },
    "/admin/backup": {
      "post": {
        "summary": "Write a JSON snapshot of all recipes to the backup bucket",
        "security": [ { "bearer": [] } ],
        "responses": { "200": { "description": "Backup written" }, "503": { "description": "Backup storage is not configured" } }
      }
    },
    "/health": { "get": { "summary": "Liveness", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness with dependency checks", "responses": { "200": { "description": "ready" }, "503": { "description": "a dependency is down" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "text exposition" } } } }
  }
}`
