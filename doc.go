// Package users implements account signup with e-mail activation,
// credential authentication with persisted session tokens, and the
// owner-scoped user CRUD surface over HTTP.
//
// The package is storage backed through bun repositories and exposes
// its workflows as command handlers; the fiber controller on top is a
// thin decode/validate/delegate layer. Error messages are localized at
// the HTTP boundary only, everything below trades in message keys.
package users
