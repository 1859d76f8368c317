package main

import (
	"fmt"
	"io"
	"os"

	"flatdb/executor"
	"flatdb/parser"

	json "github.com/goccy/go-json"
)

var stdout io.Writer = os.Stdout

func printOutput(out *executor.Output) error {
	if jsonOutput {
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdout, string(data))
		return err
	}
	_, err := fmt.Fprintln(stdout, out)
	return err
}

// execute runs a statement built by a command against the configured database.
func execute(stmt *parser.Statement) error {
	switch stmt.Type {
	case parser.CreateDatabase, parser.DropDatabase, parser.ShowDatabases:
	default:
		if _, err := useDatabase(); err != nil {
			return err
		}
	}
	out, err := newExecutor().Execute(stmt)
	if err != nil {
		return err
	}
	return printOutput(out)
}

func printJSONLine(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, string(data))
	return err
}
