// Package search shapes and bounds queries to the external search service.
//
// The gateway owns only the request window: page sizes are clamped to 300 and
// non-positive page numbers to 1 before forwarding. Free text, filters, and
// sort parameters pass through opaquely; ranking and index freshness belong
// to the collaborator behind the Service interface.
package search
