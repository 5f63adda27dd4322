// Package storefront implements a small authenticated product catalog.
//
// Users sign up with a bcrypt-hashed password and log in for an HS256 JWT
// delivered as an http-only cookie. Guarded routes resolve the cookie back to
// a persisted user before running, and product mutations are limited to the
// record's creator.
//
// Persistence goes through Bun over SQLite; see RepositoryManager for the
// database surface and Controller for the HTTP one.
package storefront
