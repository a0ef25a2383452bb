// Package services implements the business logic behind the HTTP API.
//
// CleaningService turns each API call into operations on a session: it
// loads uploads into tables, runs the suggestion engine, the industry
// classifier, the cleaning engine and the quality analyzer, stores the
// results in the session store and exports cleaned tables for download.
// Errors callers need to tell apart are returned as the sentinels in
// errors.go or as the table package's format errors.
//
// HealthService reports liveness, readiness and session statistics.
//
// Session changes are announced through an EventPublisher; the WebSocket
// hub implements it in production and NoopPublisher drops events.
package services
