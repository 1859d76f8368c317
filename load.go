package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"flatdb/auth"
	"flatdb/progress"

	"github.com/spf13/cobra"
)

var (
	csvHeader    bool
	skipBadRows  bool
	showProgress bool
)

var loadCmd = &cobra.Command{
	Use:   "load TABLE FILE.csv",
	Short: "Insert the rows of a CSV file",
	Long: `Insert every record of a CSV file into a table. Records hold one value per
column in schema order, or, with --header, follow the column names given in
the first line. Every row goes through the same checks as a single insert.`,
	Args: cobra.ExactArgs(2),
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().BoolVar(&csvHeader, "header", false, "First line names the columns")
	loadCmd.Flags().BoolVar(&skipBadRows, "skip-errors", false, "Skip rows that fail instead of stopping")
	loadCmd.Flags().BoolVar(&showProgress, "progress", true, "Show a progress bar")

	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	table, path := args[0], args[1]
	db, err := useDatabase()
	if err != nil {
		return err
	}
	if err := authorize(table, auth.Insert); err != nil {
		return err
	}

	records, err := readCSV(path)
	if err != nil {
		return err
	}
	var header []string
	if csvHeader && len(records) > 0 {
		header, records = records[0], records[1:]
	}

	out := io.Discard
	if showProgress {
		out = os.Stderr
	}
	bar := progress.NewBar(out, int64(len(records)), "loading "+table)

	for i, rec := range records {
		if header != nil {
			if len(rec) != len(header) {
				err = fmt.Errorf("line %d: %d values for %d columns", i+2, len(rec), len(header))
			} else {
				named := make(map[string]string, len(header))
				for j, h := range header {
					named[h] = rec[j]
				}
				err = db.InsertNamed(table, named)
			}
		} else {
			err = db.Insert(table, rec)
		}
		if err == nil {
			bar.Increment()
			continue
		}
		if !skipBadRows {
			return fmt.Errorf("record %d: %w", i+1, err)
		}
		log.WithError(err).Warnf("skipping record %d", i+1)
		bar.Fail()
	}

	bar.Finish()
	log.WithField("table", table).Infof("loaded %d of %d rows", len(records)-bar.Failed(), len(records))
	return nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return records, nil
}
