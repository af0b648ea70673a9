// Package webhooks notifies registered endpoints of new package releases.
//
// # Overview
//
// A repository owner registers an Endpoint URL; when a version is published
// the registry builds an immutable "new_version" event document and POSTs it
// to the URL with a hard 1500 ms timeout. The outcome of every attempt
// (success, HTTP error, timeout, or connection failure) is recorded on the
// endpoint record as last_sent_at and last_response; that record, not an
// error return, is the durable failure signal for operators.
//
// Delivery is fire-and-record, not guaranteed messaging: one independent
// attempt per call, no retry, no backoff, no dead-letter queue. Two
// concurrent deliveries to one endpoint race last-writer-wins on the outcome
// fields, which is accepted to keep delivery cheap and stateless.
//
// # Payloads
//
//	payload := webhooks.NewVersionPayload(repo, project, project.Platform, version, nil)
//	dispatcher.Deliver(ctx, endpoint, &payload)
//
// NewVersionPayload is pure; the dispatcher owns all I/O.
//
// # Endpoint State
//
// last_sent_at and last_response describe the current URL only. The store
// clears both whenever the URL changes, in the same statement that writes the
// new URL.
package webhooks
