// Package kme implements the HTTP client for a Key Management Entity,
// the external service supplying quantum key material.
//
// The wire surface is two endpoints: a liveness probe (GET /api/v1/health)
// and a key request (POST /api/v1/keys). Transport failures and server
// errors are retried with exponential backoff and jitter inside the
// configured budget; client errors surface immediately as [APIError].
// The probe is never retried — heartbeat scheduling belongs to the
// caller's reconnection logic.
package kme
