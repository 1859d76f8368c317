// Package executor runs parsed statements against a database session.
//
// The executor sits between the parser package and the database package:
// it takes a parser.Statement, picks the database operation it stands for,
// and wraps the outcome in an Output that the CLI can print. Database
// statements (CREATE/DROP/USE/SHOW DATABASES) work on the session itself;
// everything else needs a database selected with USE first.
//
// When built WithAuth, every statement is first checked against the user's
// grants in the auth store:
//
//	CREATE DATABASE, CREATE TABLE              create
//	DROP DATABASE, DROP/TRUNCATE TABLE, DELETE delete
//	ALTER TABLE, RENAME TABLE                  alter
//	INSERT                                     insert
//	UPDATE                                     update
//	SELECT, JOIN, aggregates, DESCRIBE         select
//
// Usage Example:
//
//	exec := executor.New(database.NewSession("./DB"))
//
//	out, err := exec.Run("USE TestDB")
//	out, err = exec.Run("SELECT Name, Age FROM Users WHERE Age > 21")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(out)
package executor
