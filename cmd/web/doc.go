// Package web exposes a database session over HTTP.
//
// The API is deliberately thin: POST /query runs one statement through the
// executor and returns its Output as JSON, and two GET routes read tables
// without writing any SQL. All requests share one session and one mutex,
// so the storage engine only ever sees one operation at a time.
//
// Errors come back as {"error": "..."} with a status derived from the
// dberror kind: 403 for permissions, 404 for missing tables and databases,
// 409 for constraint violations and name clashes, 400 for anything the
// caller can fix, 500 otherwise.
//
// Usage Example:
//
//	sess := database.NewSession("./DB")
//	app := web.New(sess, executor.New(sess), log)
//	if err := web.RunServer(app, ":8080"); err != nil {
//		log.Fatal(err)
//	}
package web
