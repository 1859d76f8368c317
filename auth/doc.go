// Package auth keeps the users of a storage root and what they may do.
//
// Users live in a single JSON file beside the databases (users.json by
// default). Each user has a salted SHA-256 password digest, an admin flag
// and a set of grants: database -> table -> permissions. "*" in place of a
// database or table name matches any name. A fresh store is seeded with the
// admin account "admin" holding every permission on "*"/"*".
//
// The store only answers questions; callers decide when to ask. The CLI
// checks Check before each mutating command when a user is given.
package auth
