// Package http implements the HTTP handlers of the DataCleanr API.
//
// Handlers stay thin: they bind and validate request contracts, call a
// service, map service errors to RFC 7807 problems and render the result.
//
//	HTTP Request → Chi Router → Middleware → Handler → Service → Session Store
//
// Request bodies may be JSON, urlencoded or multipart form fields; the same
// contract structs in pkg/contracts/api/v1 serve all three. Errors are
// rendered by the shared ErrorHandler:
//
//	{
//	    "type": "/errors/session/not-found",
//	    "title": "Not Found",
//	    "status": 404,
//	    "detail": "File not found",
//	    "instance": "/api/suggest",
//	    "error_code": "SESSION_NOT_FOUND",
//	    "trace_id": "..."
//	}
//
// Handlers are tested with httptest against their chi routes and a
// testify mock of the service interface.
package http
