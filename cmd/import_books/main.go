package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"library-records/config"
	"library-records/library"
	"library-records/logging"
)

// Expected CSV header. Columns after title are optional.
var columns = []string{"isbn", "title", "author", "publisher", "year", "category", "copies", "location"}

func main() {
	cfgPath := flag.String("config", "library.yaml", "Path to the YAML config file")
	dbPath := flag.String("db", "", "Path to the library database (overrides config)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: import_books [-config file] [-db file] books.csv\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	store, err := library.Open(cfg.Database.Path, library.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %s\n", library.Describe(err).Message)
		os.Exit(1)
	}
	defer store.Close()

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	res, err := importBooks(store, f, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading CSV: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nImport complete!\n")
	fmt.Printf("Successfully imported: %d books\n", res.added)
	fmt.Printf("Skipped duplicates: %d\n", res.duplicates)
	fmt.Printf("Errors: %d\n", res.failed)
}

type importResult struct {
	added, duplicates, failed int
}

// importBooks reads CSV rows into the catalog. Rows whose ISBN already
// exists are skipped; other bad rows are counted and logged.
func importBooks(store *library.Store, r io.Reader, logger *zap.Logger) (importResult, error) {
	var res importResult
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return res, fmt.Errorf("read header: %w", err)
	}
	index := map[string]int{}
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range columns[:2] {
		if _, ok := index[col]; !ok {
			return res, fmt.Errorf("missing %q column", col)
		}
	}

	line := 1
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return res, err
		}
		in, err := bookFromRecord(record, index)
		if err != nil {
			logger.Warn("skipping row", zap.Int("line", line), zap.Error(err))
			res.failed++
			continue
		}
		b, err := store.AddBook(in)
		switch {
		case errors.Is(err, library.ErrUniqueViolation):
			res.duplicates++
			continue
		case err != nil:
			logger.Warn("skipping row", zap.Int("line", line), zap.String("isbn", in.ISBN), zap.Error(err))
			res.failed++
			continue
		}
		fmt.Printf("Imported: %-50s (ID: %d)\n", truncateString(b.Title, 50), b.ID)
		res.added++
	}
	return res, nil
}

func bookFromRecord(record []string, index map[string]int) (library.BookInput, error) {
	field := func(name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}
	in := library.BookInput{
		ISBN:      field("isbn"),
		Title:     field("title"),
		Author:    field("author"),
		Publisher: field("publisher"),
		Category:  field("category"),
		Location:  field("location"),
	}
	if v := field("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return in, fmt.Errorf("year %q: %w", v, err)
		}
		in.Year = year
	}
	if v := field("copies"); v != "" {
		copies, err := strconv.Atoi(v)
		if err != nil {
			return in, fmt.Errorf("copies %q: %w", v, err)
		}
		in.TotalCopies = copies
	}
	return in, nil
}

func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
