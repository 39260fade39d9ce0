// Package rest is the request dispatch engine: a route registry keyed by
// regular-expression path patterns and HTTP methods, a dispatcher that runs
// authentication, permission checks and argument validation before invoking a
// handler, and the response shaping (error envelopes, pagination and Link
// headers, embedding, OPTIONS and index documents) around it.
//
// Routes are registered during startup through Registrars and the registry is
// frozen before the Server starts serving, so dispatch only ever reads it.
package rest
