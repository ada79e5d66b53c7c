package catalog

import "github.com/shopspring/decimal"

// MenuItem is a dish or drink offered by the cafeteria.
type MenuItem struct {
	Key       string
	Name      string
	UnitPrice decimal.Decimal
}

// Catalog owns the menu and the three customer mappings for the lifetime of
// the process. Everything is read-only after New except student credit,
// which is guarded by each Student.
type Catalog struct {
	menu        []MenuItem
	menuIndex   map[string]int
	students    map[string]*Student
	instructors map[string]*Instructor
	staff       map[string]*Staff
}

// New builds a catalog. A repeated menu key keeps its first position and the
// last definition; repeated customer ids keep the last entry.
func New(menu []MenuItem, students []*Student, instructors []*Instructor, staff []*Staff) *Catalog {
	c := &Catalog{
		menu:        make([]MenuItem, 0, len(menu)),
		menuIndex:   make(map[string]int, len(menu)),
		students:    make(map[string]*Student, len(students)),
		instructors: make(map[string]*Instructor, len(instructors)),
		staff:       make(map[string]*Staff, len(staff)),
	}

	for _, item := range menu {
		if idx, ok := c.menuIndex[item.Key]; ok {
			c.menu[idx] = item
			continue
		}
		c.menuIndex[item.Key] = len(c.menu)
		c.menu = append(c.menu, item)
	}
	for _, s := range students {
		c.students[s.ID] = s
	}
	for _, i := range instructors {
		c.instructors[i.ID] = i
	}
	for _, s := range staff {
		c.staff[s.ID] = s
	}
	return c
}

// ListMenu returns the menu in load order.
func (c *Catalog) ListMenu() []MenuItem {
	items := make([]MenuItem, len(c.menu))
	copy(items, c.menu)
	return items
}

func (c *Catalog) MenuItem(key string) (MenuItem, bool) {
	idx, ok := c.menuIndex[key]
	if !ok {
		return MenuItem{}, false
	}
	return c.menu[idx], true
}

// FindCustomer looks the id up in the mapping for category. Unknown ids and
// unknown categories both report absent.
func (c *Catalog) FindCustomer(category Category, publicID string) (Customer, bool) {
	switch category {
	case CategoryStudent:
		if s, ok := c.students[publicID]; ok {
			return s, true
		}
	case CategoryInstructor:
		if i, ok := c.instructors[publicID]; ok {
			return i, true
		}
	case CategoryStaff:
		if s, ok := c.staff[publicID]; ok {
			return s, true
		}
	}
	return nil, false
}
