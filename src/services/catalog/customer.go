package catalog

import (
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryStudent    Category = "student"
	CategoryInstructor Category = "instructor"
	CategoryStaff      Category = "staff"
)

// ParseCategory maps a case-insensitive category name to its Category.
func ParseCategory(value string) (Category, bool) {
	switch c := Category(strings.ToLower(strings.TrimSpace(value))); c {
	case CategoryStudent, CategoryInstructor, CategoryStaff:
		return c, true
	default:
		return "", false
	}
}

// Customer is the identity shared by every customer category.
// Callers dispatch on Category() and assert to the concrete variant when
// they need category-specific fields.
type Customer interface {
	PublicID() string
	Name() string
	Category() Category
}

// Student is the only customer variant with a prepaid credit balance.
type Student struct {
	ID        string
	FullName  string
	Program   string
	BirthDate string

	mu     sync.RWMutex
	credit decimal.Decimal
}

func NewStudent(id, name, program, birthDate string, credit decimal.Decimal) *Student {
	return &Student{
		ID:        id,
		FullName:  name,
		Program:   program,
		BirthDate: birthDate,
		credit:    credit,
	}
}

func (s *Student) PublicID() string   { return s.ID }
func (s *Student) Name() string       { return s.FullName }
func (s *Student) Category() Category { return CategoryStudent }

// AvailableCredit returns a snapshot of the current balance.
func (s *Student) AvailableCredit() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credit
}

// Debit subtracts amount from the balance and returns the new balance,
// rounded half-to-even to cents. It does not check for sufficient funds.
func (s *Student) Debit(amount decimal.Decimal) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credit = s.credit.Sub(amount).RoundBank(2)
	return s.credit
}

// Refund returns amount to the balance, undoing a previous Debit.
func (s *Student) Refund(amount decimal.Decimal) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credit = s.credit.Add(amount).RoundBank(2)
	return s.credit
}

type Instructor struct {
	ID       string
	FullName string
	Shift    string
	Degree   string
}

func (i *Instructor) PublicID() string   { return i.ID }
func (i *Instructor) Name() string       { return i.FullName }
func (i *Instructor) Category() Category { return CategoryInstructor }

type Staff struct {
	ID       string
	FullName string
	Title    string
}

func (s *Staff) PublicID() string   { return s.ID }
func (s *Staff) Name() string       { return s.FullName }
func (s *Staff) Category() Category { return CategoryStaff }
