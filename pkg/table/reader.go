package table

import (
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/matzehuels/netdiag/pkg/errors"
)

// DefaultDelimiter is the field delimiter used when none is configured.
const DefaultDelimiter = ','

const utf8BOM = "\ufeff"

// Record is one data row of a table. Index is 1-based and counts data rows
// only (the header is not a record). Fields maps header names to trimmed
// cell text; every header column is present, missing cells read as "".
type Record struct {
	Index  int
	Fields map[string]string
}

// Get returns the trimmed cell for key, or "" if the column does not exist.
func (r Record) Get(key string) string {
	return r.Fields[key]
}

// Reader yields the records of a table in file order.
type Reader struct {
	closer io.Closer
	csv    *csv.Reader
	header []string
	index  int
}

// Open opens the file at path and reads its header row.
//
// It returns an INPUT error if the file cannot be opened or has no header.
// The caller must Close the reader.
func Open(path string, delimiter rune) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInput, err, "open %s", path)
	}
	r, err := NewReader(f, delimiter)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// NewReader reads the header row from src and returns a Reader positioned at
// the first data row. NewReader does not close src.
func NewReader(src io.Reader, delimiter rune) (*Reader, error) {
	if delimiter == 0 {
		delimiter = DefaultDelimiter
	}
	cr := csv.NewReader(src)
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	header, err := cr.Read()
	if stderrors.Is(err, io.EOF) {
		return nil, errors.New(errors.ErrCodeInput, "table is empty or has no header row")
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInput, err, "read header")
	}

	named := false
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		header[i] = strings.TrimSpace(h)
		if header[i] != "" {
			named = true
		}
	}
	if !named {
		return nil, errors.New(errors.ErrCodeInput, "table has no header row")
	}

	return &Reader{csv: cr, header: header}, nil
}

// Header returns the trimmed header names in column order.
func (r *Reader) Header() []string {
	return append([]string(nil), r.header...)
}

// Next returns the next record, or io.EOF when the table is exhausted.
// Malformed rows are reported as INPUT errors carrying the row index.
func (r *Reader) Next() (Record, error) {
	row, err := r.csv.Read()
	if err != nil {
		if stderrors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}
		e := errors.Wrap(errors.ErrCodeInput, err, "malformed row")
		e.Row = r.index + 1
		return Record{}, e
	}
	r.index++

	fields := make(map[string]string, len(r.header))
	for i, name := range r.header {
		if name == "" {
			continue
		}
		var cell string
		if i < len(row) {
			cell = strings.TrimSpace(row[i])
		}
		fields[name] = cell
	}
	return Record{Index: r.index, Fields: fields}, nil
}

// Close releases the underlying file, if the reader owns one.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}

// ReadAll reads every record from src.
func ReadAll(src io.Reader, delimiter rune) ([]Record, error) {
	r, err := NewReader(src, delimiter)
	if err != nil {
		return nil, err
	}
	return collect(r)
}

// ReadFile opens path, reads every record and closes the file before
// returning.
func ReadFile(path string, delimiter rune) ([]Record, error) {
	r, err := Open(path, delimiter)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	records, err := collect(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

func collect(r *Reader) ([]Record, error) {
	var records []Record
	for {
		rec, err := r.Next()
		if stderrors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
}
