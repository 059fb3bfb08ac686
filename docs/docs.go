// Package docs holds the OpenAPI description served at /swagger.
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
        "/itinerary/": {
            "post": {
                "description": "Looks up the weather at the destination, asks the model for a day plan and stores the result",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["itineraries"],
                "summary": "Create a weather-aware itinerary",
                "parameters": [
                    {
                        "description": "Destination and date",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/types.CreateItineraryRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Generated itinerary", "schema": {"$ref": "#/definitions/types.Itinerary"}},
                    "400": {"description": "Invalid input data or past date", "schema": {"$ref": "#/definitions/docs.ValidationErrorDoc"}},
                    "429": {"description": "Too many requests", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}},
                    "500": {"description": "Weather or generation failure", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/itinerary/{id}/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["itineraries"],
                "summary": "Get an itinerary",
                "parameters": [
                    {"type": "integer", "description": "Itinerary ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.Itinerary"}},
                    "404": {"description": "Itinerary not found", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/itineraries/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["itineraries"],
                "summary": "List itineraries, newest first",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/types.Itinerary"}}}
                }
            }
        }
    },
    "definitions": {
        "docs.DaySegmentDoc": {
            "type": "object",
            "properties": {
                "activities": {"type": "array", "items": {"type": "string"}, "example": ["Visit the Louvre", "Walk along the Seine"]},
                "food": {"type": "string", "example": "Croissants at a local bakery"},
                "transportation": {"type": "string", "example": "Metro"},
                "estimated_cost": {"type": "string", "example": "$20-40"}
            }
        },
        "docs.ItineraryDataDoc": {
            "type": "object",
            "properties": {
                "morning": {"$ref": "#/definitions/docs.DaySegmentDoc"},
                "afternoon": {"$ref": "#/definitions/docs.DaySegmentDoc"},
                "evening": {"$ref": "#/definitions/docs.DaySegmentDoc"},
                "weather_notes": {"type": "string", "example": "Pack an umbrella for the afternoon"},
                "total_estimated_cost": {"type": "string", "example": "$60-120"},
                "ai_response": {"type": "string"}
            }
        },
        "docs.ValidationErrorDoc": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "Invalid input data"},
                "details": {"type": "object", "additionalProperties": {"type": "array", "items": {"type": "string"}}}
            }
        },
        "middleware.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "details": {"type": "object", "additionalProperties": {"type": "array", "items": {"type": "string"}}}
            }
        },
        "types.CreateItineraryRequest": {
            "type": "object",
            "required": ["date", "destination"],
            "properties": {
                "date": {"type": "string", "example": "2025-06-15"},
                "destination": {"type": "string", "maxLength": 100, "example": "Lisbon"}
            }
        },
        "types.WeatherData": {
            "type": "object",
            "properties": {
                "temperature": {"type": "number"},
                "description": {"type": "string"},
                "main": {"type": "string"},
                "humidity": {"type": "number"},
                "wind_speed": {"type": "number"}
            }
        },
        "types.Itinerary": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "destination": {"type": "string"},
                "date": {"type": "string"},
                "weather_data": {"$ref": "#/definitions/types.WeatherData"},
                "itinerary_data": {"$ref": "#/definitions/docs.ItineraryDataDoc"},
                "created_at": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Itinerary Builder API",
	Description:      "Weather-aware travel itineraries generated by an LLM.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
