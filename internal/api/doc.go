// Package api provides HTTP handlers for the review endpoints. The surface
// is deliberately thin: identity comes from request parameters because
// authentication is handled outside this service.
package api
