package csvstore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cafeteria-orders/src/services/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadMenu_TrimsAndPreservesOrder(t *testing.T) {
	items, err := ReadMenu(strings.NewReader("key,name,price\n A01 , Sandwich ,10.00\nB01,Coffee, 25.5\n"))

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "A01", items[0].Key)
	assert.Equal(t, "Sandwich", items[0].Name)
	assert.Equal(t, "10.00", items[0].UnitPrice.StringFixed(2))
	assert.Equal(t, "25.50", items[1].UnitPrice.StringFixed(2))
}

func TestReadMenu_ColumnsLocatedByHeader(t *testing.T) {
	items, err := ReadMenu(strings.NewReader("\ufeffprice,key,name\n3.25,T01,Tea\n"))

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "T01", items[0].Key)
	assert.Equal(t, "3.25", items[0].UnitPrice.StringFixed(2))
}

func TestReadMenu_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "empty file", content: "", wantErr: "missing header row"},
		{name: "missing column", content: "key,name\nA01,Sandwich\n", wantErr: `missing column "price"`},
		{name: "bad price", content: "key,name,price\nA01,Sandwich,ten\n", wantErr: "row 2: invalid price"},
		{name: "negative price", content: "key,name,price\nA01,Sandwich,1\nB01,Coffee,-2\n", wantErr: "row 3: price must not be negative"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadMenu(strings.NewReader(tc.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestReadCustomers(t *testing.T) {
	students, err := ReadStudents(strings.NewReader("id,name,program,birthDate,availableCredit\n2023001, Ana Ruiz ,Systems,2004-05-12,100.00\n"))
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "Ana Ruiz", students[0].FullName)
	assert.Equal(t, "100.00", students[0].AvailableCredit().StringFixed(2))

	instructors, err := ReadInstructors(strings.NewReader("id,name,shift,degree\nE100,Luis Mora,morning,MSc\n"))
	require.NoError(t, err)
	require.Len(t, instructors, 1)
	assert.Equal(t, "MSc", instructors[0].Degree)

	staff, err := ReadStaff(strings.NewReader("id,name,title\nS200,Rosa Diaz, Registrar\n"))
	require.NoError(t, err)
	require.Len(t, staff, 1)
	assert.Equal(t, "Registrar", staff[0].Title)
}

func TestReadStudents_BadCredit(t *testing.T) {
	_, err := ReadStudents(strings.NewReader("id,name,program,birthDate,availableCredit\n1,A,P,2000-01-01,lots\n"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid availableCredit")
}

func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()
	files := CatalogFiles{
		Menu:        writeFile(t, dir, "menu.csv", "key,name,price\nA01,Sandwich,10.00\nB01,Coffee,25.00\n"),
		Students:    writeFile(t, dir, "students.csv", "id,name,program,birthDate,availableCredit\n2023001,Ana,Systems,2004-05-12,100.00\n"),
		Instructors: writeFile(t, dir, "instructors.csv", "id,name,shift,degree\nE100,Luis,morning,MSc\n"),
		Staff:       writeFile(t, dir, "staff.csv", "id,name,title\nS200,Rosa,Registrar\n"),
	}

	cat, err := LoadCatalog(files)

	require.NoError(t, err)
	assert.Len(t, cat.ListMenu(), 2)
	_, ok := cat.FindCustomer(catalog.CategoryStudent, "2023001")
	assert.True(t, ok)
	_, ok = cat.FindCustomer(catalog.CategoryInstructor, "E100")
	assert.True(t, ok)
	_, ok = cat.FindCustomer(catalog.CategoryStaff, "S200")
	assert.True(t, ok)
}

func TestLoadCatalog_ReportsEveryBrokenFile(t *testing.T) {
	dir := t.TempDir()
	files := CatalogFiles{
		Menu:        writeFile(t, dir, "menu.csv", "key,name\n"),
		Students:    filepath.Join(dir, "missing.csv"),
		Instructors: writeFile(t, dir, "instructors.csv", "id,name,shift,degree\n"),
		Staff:       writeFile(t, dir, "staff.csv", "id,name,title\n"),
	}

	_, err := LoadCatalog(files)

	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing column "price"`)
	assert.Contains(t, err.Error(), "failed to open catalog file")
}
