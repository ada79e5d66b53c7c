package models

import "cafeteria-orders/src/services/catalog"

type MenuItemResponse struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	UnitPrice string `json:"unitPrice"`
}

func NewMenuResponse(items []catalog.MenuItem) []MenuItemResponse {
	menu := make([]MenuItemResponse, 0, len(items))
	for _, item := range items {
		menu = append(menu, MenuItemResponse{
			Key:       item.Key,
			Name:      item.Name,
			UnitPrice: item.UnitPrice.StringFixed(2),
		})
	}
	return menu
}

// CustomerResponse flattens the three customer kinds; only the fields of
// the matching kind are set.
type CustomerResponse struct {
	Category  string `json:"category"`
	ID        string `json:"id"`
	Name      string `json:"name"`
	Program   string `json:"program,omitempty"`
	BirthDate string `json:"birthDate,omitempty"`
	Credit    string `json:"availableCredit,omitempty"`
	Shift     string `json:"shift,omitempty"`
	Degree    string `json:"degree,omitempty"`
	Title     string `json:"title,omitempty"`
}

func NewCustomerResponse(customer catalog.Customer) CustomerResponse {
	response := CustomerResponse{
		Category: string(customer.Category()),
		ID:       customer.PublicID(),
		Name:     customer.Name(),
	}
	switch c := customer.(type) {
	case *catalog.Student:
		response.Program = c.Program
		response.BirthDate = c.BirthDate
		response.Credit = c.AvailableCredit().StringFixed(2)
	case *catalog.Instructor:
		response.Shift = c.Shift
		response.Degree = c.Degree
	case *catalog.Staff:
		response.Title = c.Title
	}
	return response
}

type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}
