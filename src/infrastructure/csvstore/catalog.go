package csvstore

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"cafeteria-orders/src/services/catalog"

	"github.com/shopspring/decimal"
)

// CatalogFiles names the four catalog sources.
type CatalogFiles struct {
	Menu        string
	Students    string
	Instructors string
	Staff       string
}

// LoadCatalog reads every catalog file and assembles the in-memory catalog.
func LoadCatalog(files CatalogFiles) (*catalog.Catalog, error) {
	var (
		menu        []catalog.MenuItem
		students    []*catalog.Student
		instructors []*catalog.Instructor
		staff       []*catalog.Staff
	)

	err := errors.Join(
		loadFile(files.Menu, func(r io.Reader) (err error) { menu, err = ReadMenu(r); return }),
		loadFile(files.Students, func(r io.Reader) (err error) { students, err = ReadStudents(r); return }),
		loadFile(files.Instructors, func(r io.Reader) (err error) { instructors, err = ReadInstructors(r); return }),
		loadFile(files.Staff, func(r io.Reader) (err error) { staff, err = ReadStaff(r); return }),
	)
	if err != nil {
		return nil, err
	}
	return catalog.New(menu, students, instructors, staff), nil
}

func loadFile(path string, read func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer f.Close()

	if err := read(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// ReadMenu parses key,name,price rows.
func ReadMenu(r io.Reader) ([]catalog.MenuItem, error) {
	var items []catalog.MenuItem
	err := readRows(r, []string{"key", "name", "price"}, func(row record) error {
		price, err := row.decimal("price")
		if err != nil {
			return err
		}
		if price.IsNegative() {
			return fmt.Errorf("price must not be negative: %s", price)
		}
		items = append(items, catalog.MenuItem{Key: row.get("key"), Name: row.get("name"), UnitPrice: price})
		return nil
	})
	return items, err
}

// ReadStudents parses id,name,program,birthDate,availableCredit rows.
func ReadStudents(r io.Reader) ([]*catalog.Student, error) {
	var students []*catalog.Student
	err := readRows(r, []string{"id", "name", "program", "birthDate", "availableCredit"}, func(row record) error {
		credit, err := row.decimal("availableCredit")
		if err != nil {
			return err
		}
		students = append(students, catalog.NewStudent(row.get("id"), row.get("name"), row.get("program"), row.get("birthDate"), credit))
		return nil
	})
	return students, err
}

// ReadInstructors parses id,name,shift,degree rows.
func ReadInstructors(r io.Reader) ([]*catalog.Instructor, error) {
	var instructors []*catalog.Instructor
	err := readRows(r, []string{"id", "name", "shift", "degree"}, func(row record) error {
		instructors = append(instructors, &catalog.Instructor{
			ID:       row.get("id"),
			FullName: row.get("name"),
			Shift:    row.get("shift"),
			Degree:   row.get("degree"),
		})
		return nil
	})
	return instructors, err
}

// ReadStaff parses id,name,title rows.
func ReadStaff(r io.Reader) ([]*catalog.Staff, error) {
	var staff []*catalog.Staff
	err := readRows(r, []string{"id", "name", "title"}, func(row record) error {
		staff = append(staff, &catalog.Staff{ID: row.get("id"), FullName: row.get("name"), Title: row.get("title")})
		return nil
	})
	return staff, err
}

type record struct {
	columns map[string]int
	values  []string
}

func (r record) get(column string) string {
	idx := r.columns[column]
	if idx >= len(r.values) {
		return ""
	}
	return strings.TrimSpace(r.values[idx])
}

func (r record) decimal(column string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(r.get(column))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", column, r.get(column), err)
	}
	return value, nil
}

// readRows locates required columns by header name and calls fn per data row.
func readRows(r io.Reader, required []string, fn func(record) error) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("missing header row")
		}
		return fmt.Errorf("failed to read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, name := range required {
		if _, ok := columns[name]; !ok {
			return fmt.Errorf("missing column %q", name)
		}
	}

	for line := 2; ; line++ {
		values, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("row %d: %w", line, err)
		}
		if err := fn(record{columns: columns, values: values}); err != nil {
			return fmt.Errorf("row %d: %w", line, err)
		}
	}
}
