// Package metering records per-credential API usage for later billing and
// analysis. Counters live in Redis, one hash per year-month period, one field
// per API key, incremented with HINCRBY so concurrent requests across worker
// processes never lose updates.
//
// The meter observes, it does not throttle: no upper bound is enforced here,
// and a failure to count never fails the request being counted.
package metering
