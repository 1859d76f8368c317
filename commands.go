package main

import (
	"fmt"
	"strings"

	"flatdb/auth"
	"flatdb/dberror"
	"flatdb/parser"

	"github.com/spf13/cobra"
)

var createDatabaseCmd = &cobra.Command{
	Use:   "create-database NAME",
	Short: "Create an empty database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return execute(&parser.Statement{Type: parser.CreateDatabase, Name: args[0]})
	},
}

var dropDatabaseCmd = &cobra.Command{
	Use:   "drop-database NAME",
	Short: "Delete a database and every table in it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return execute(&parser.Statement{Type: parser.DropDatabase, Name: args[0]})
	},
}

var databasesCmd = &cobra.Command{
	Use:   "databases",
	Short: "List databases",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return execute(&parser.Statement{Type: parser.ShowDatabases})
	},
}

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List the tables of a database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return execute(&parser.Statement{Type: parser.ShowTables})
	},
}

var describeCmd = &cobra.Command{
	Use:   "describe TABLE",
	Short: "Show the columns and foreign keys of a table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return execute(&parser.Statement{Type: parser.Describe, Name: args[0]})
	},
}

var truncateCmd = &cobra.Command{
	Use:   "truncate TABLE",
	Short: "Remove every row of a table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return execute(&parser.Statement{Type: parser.TruncateTable, Name: args[0]})
	},
}

var dropTableCmd = &cobra.Command{
	Use:   "drop-table TABLE",
	Short: "Delete a table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return execute(&parser.Statement{Type: parser.DropTable, Name: args[0]})
	},
}

var renameTableCmd = &cobra.Command{
	Use:   "rename-table OLD NEW",
	Short: "Rename a table",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return execute(&parser.Statement{Type: parser.RenameTable, Name: args[0], NewName: args[1]})
	},
}

var (
	fields []string
	where  string
	order  string
	joinOn string
)

var selectCmd = &cobra.Command{
	Use:   "select TABLE",
	Short: "Print the rows of a table matching --where",
	Args:  cobra.ExactArgs(1),
	RunE:  runSelect,
}

var joinCmd = &cobra.Command{
	Use:   "join LEFT RIGHT",
	Short: "Inner join two tables on --on LEFTCOL=RIGHTCOL",
	Args:  cobra.ExactArgs(2),
	RunE:  runJoin,
}

var aggregateCmd = &cobra.Command{
	Use:   "aggregate count|sum|avg|min|max TABLE COLUMN",
	Short: "Reduce a column to one value",
	Args:  cobra.ExactArgs(3),
	RunE:  runAggregate,
}

var scanCmd = &cobra.Command{
	Use:   "scan TABLE",
	Short: "Stream every row of a table",
	Args:  cobra.ExactArgs(1),
	RunE:  runScan,
}

func init() {
	selectCmd.Flags().StringSliceVar(&fields, "fields", nil, "Columns to print (default all)")
	selectCmd.Flags().StringVar(&where, "where", "", `Filter, e.g. "Age >= 21 AND Name != 'Bob'"`)
	selectCmd.Flags().StringVar(&order, "order", "", `Sort keys, e.g. "Age DESC, Name"`)

	joinCmd.Flags().StringVar(&joinOn, "on", "", "Join columns as LEFTCOL=RIGHTCOL")
	joinCmd.Flags().StringSliceVar(&fields, "fields", nil, "Columns to print (default all)")
	joinCmd.MarkFlagRequired("on")

	aggregateCmd.Flags().StringVar(&where, "where", "", "Filter applied before reducing")

	rootCmd.AddCommand(createDatabaseCmd)
	rootCmd.AddCommand(dropDatabaseCmd)
	rootCmd.AddCommand(databasesCmd)
	rootCmd.AddCommand(tablesCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(truncateCmd)
	rootCmd.AddCommand(dropTableCmd)
	rootCmd.AddCommand(renameTableCmd)
	rootCmd.AddCommand(joinCmd)
	rootCmd.AddCommand(aggregateCmd)
}

func runSelect(cmd *cobra.Command, args []string) error {
	stmt := &parser.Statement{Type: parser.Select, Name: args[0], Fields: fields}
	var err error
	if where != "" {
		if stmt.Where, err = parser.ParseWhere(where); err != nil {
			return err
		}
	}
	if order != "" {
		if stmt.OrderBy, err = parser.ParseOrderBy(order); err != nil {
			return err
		}
	}
	return execute(stmt)
}

func runJoin(cmd *cobra.Command, args []string) error {
	left, right, ok := strings.Cut(joinOn, "=")
	if !ok {
		return dberror.New("join", dberror.ErrSyntax, "--on must look like LEFTCOL=RIGHTCOL")
	}
	return execute(&parser.Statement{
		Type:   parser.Join,
		Name:   args[0],
		Fields: fields,
		Join: &parser.JoinCondition{
			LeftTable:   args[0],
			LeftColumn:  strings.TrimSpace(left),
			RightTable:  args[1],
			RightColumn: strings.TrimSpace(right),
		},
	})
}

func runAggregate(cmd *cobra.Command, args []string) error {
	fn := strings.ToUpper(args[0])
	switch fn {
	case "COUNT", "SUM", "AVG", "MIN", "MAX":
	default:
		return dberror.New("aggregate", dberror.ErrSyntax, "unknown function %q", args[0])
	}
	stmt := &parser.Statement{Type: parser.Aggregate, Name: args[1], Func: fn, Column: args[2]}
	if where != "" {
		var err error
		if stmt.Where, err = parser.ParseWhere(where); err != nil {
			return err
		}
	}
	return execute(stmt)
}

func runScan(cmd *cobra.Command, args []string) error {
	db, err := useDatabase()
	if err != nil {
		return err
	}
	if err := authorize(args[0], auth.Select); err != nil {
		return err
	}
	rows, err := db.Scan(args[0])
	if err != nil {
		return err
	}
	for row, err := range rows {
		if err != nil {
			return err
		}
		if jsonOutput {
			if err := printJSONLine(row.Map()); err != nil {
				return err
			}
			continue
		}
		fmt.Fprintln(stdout, strings.Join(row.Values, "\t"))
	}
	return nil
}
