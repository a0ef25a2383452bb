// Package websocket pushes session events to browser clients.
//
// A Hub owns the connected clients and fans out events published by the
// cleaning service (session:uploaded, session:cleaned, session:analyzed,
// session:deleted and session:expired). Publishing never blocks a request:
// a full queue drops the event and a slow client is disconnected.
package websocket
