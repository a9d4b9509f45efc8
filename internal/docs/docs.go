// Package docs registra la especificación OpenAPI servida en /swagger/*.
// Mantener alineado con las anotaciones de los handlers (swag init).
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
        "/draft": {
            "get": {
                "produces": ["application/json"],
                "tags": ["draft"],
                "summary": "Borrador actual",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/capture.draftResponse"}}}
            },
            "patch": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["draft"],
                "summary": "Editar campos del borrador",
                "parameters": [{"in": "body", "name": "edits", "required": true, "schema": {"type": "object", "additionalProperties": true}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/capture.draftResponse"}},
                    "400": {"description": "Bad Request"},
                    "409": {"description": "No intervention"}
                }
            }
        },
        "/draft/reset": {
            "post": {
                "tags": ["draft"],
                "summary": "Descartar el borrador",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/capture.draftResponse"}}}
            }
        },
        "/draft/flags/{flag}/toggle": {
            "post": {
                "tags": ["draft"],
                "summary": "Invertir un flag de la intervención",
                "parameters": [{"type": "string", "name": "flag", "in": "path", "required": true, "enum": ["isArthroscopic", "isLCA", "isKneeRelated"]}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/capture.draftResponse"}}, "400": {"description": "Bad Request"}}
            }
        },
        "/draft/image": {
            "get": {
                "produces": ["image/jpeg", "image/png", "application/pdf"],
                "tags": ["capture"],
                "summary": "Imagen fuente del borrador",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Sin imagen"}}
            },
            "post": {
                "consumes": ["image/jpeg", "image/png", "application/pdf", "multipart/form-data"],
                "tags": ["capture"],
                "summary": "Extraer datos del paciente desde una imagen",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/capture.draftResponse"}},
                    "400": {"description": "Bad Request"},
                    "409": {"description": "Channel busy"},
                    "502": {"description": "Extraction failed"},
                    "503": {"description": "Extraction not configured"}
                }
            }
        },
        "/draft/audio": {
            "post": {
                "consumes": ["audio/webm", "audio/mp4", "audio/mpeg", "multipart/form-data"],
                "tags": ["capture"],
                "summary": "Extraer la intervención desde un dictado",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/capture.draftResponse"}},
                    "400": {"description": "Bad Request"},
                    "409": {"description": "Channel busy"},
                    "502": {"description": "Extraction failed"},
                    "503": {"description": "Extraction not configured"}
                }
            }
        },
        "/draft/commit": {
            "post": {
                "produces": ["application/json"],
                "tags": ["draft"],
                "summary": "Confirmar el borrador como registro",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/records.PatientRecord"}},
                    "400": {"description": "Missing field"}
                }
            }
        },
        "/capture/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["capture"],
                "summary": "Estado de los canales de extracción",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/records": {
            "get": {
                "produces": ["application/json"],
                "tags": ["records"],
                "summary": "Listar registros (más reciente primero)",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/records.PatientRecord"}}}}
            }
        },
        "/records/{recordID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["records"],
                "summary": "Obtener un registro",
                "parameters": [{"type": "string", "name": "recordID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/records.PatientRecord"}}, "404": {"description": "Not Found"}}
            },
            "delete": {
                "tags": ["records"],
                "summary": "Eliminar un registro",
                "parameters": [{"type": "string", "name": "recordID", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/records/export.csv": {
            "get": {
                "produces": ["text/csv"],
                "tags": ["export"],
                "summary": "Exportar registros a CSV",
                "responses": {"200": {"description": "OK"}, "204": {"description": "Sin registros"}}
            }
        },
        "/records/export.xlsx": {
            "get": {
                "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "tags": ["export"],
                "summary": "Exportar registros a Excel",
                "responses": {"200": {"description": "OK"}, "204": {"description": "Sin registros"}}
            }
        }
    },
    "definitions": {
        "records.SurgicalIntervention": {
            "type": "object",
            "properties": {
                "description": {"type": "string"},
                "region": {"type": "string", "enum": ["shoulder", "knee", "elbow", "wrist", "foot_ankle", "hip", "other"]},
                "isArthroscopic": {"type": "boolean"},
                "isLCA": {"type": "boolean"},
                "isKneeRelated": {"type": "boolean"}
            }
        },
        "records.PatientRecord": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "patientName": {"type": "string"},
                "clinicalHistoryId": {"type": "string"},
                "phoneNumber": {"type": "string"},
                "date": {"type": "string", "example": "2024-05-01"},
                "intervention": {"$ref": "#/definitions/records.SurgicalIntervention"},
                "createdAt": {"type": "string", "format": "date-time"}
            }
        },
        "capture.draftResponse": {
            "type": "object",
            "properties": {
                "patientName": {"type": "string"},
                "clinicalHistoryId": {"type": "string"},
                "phoneNumber": {"type": "string"},
                "date": {"type": "string"},
                "intervention": {"$ref": "#/definitions/records.SurgicalIntervention"},
                "imagePreviewUrl": {"type": "string", "example": "/draft/image"},
                "readyToCommit": {"type": "boolean"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Surgical Records API",
	Description:      "Captura de intervenciones quirúrgicas: borrador, registros y exportación.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
