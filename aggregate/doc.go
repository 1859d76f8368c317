// Package aggregate reduces the values of one column to a single number.
//
// Column values arrive as the strings the database package decodes them to,
// usually from Database.ReadColumn. Empty strings stand for missing values
// and are skipped by every function except Count with all set. Values that
// do not parse as integers fail with dberror.ErrEncoding.
//
//	ages, _ := db.ReadColumn("Users", "Age")
//	total, err := aggregate.Sum(ages)
package aggregate
