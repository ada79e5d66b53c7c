package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"cafeteria-orders/src/services/catalog"
	"cafeteria-orders/src/services/order/domain"
)

var (
	ErrInvalidCategoryOption = errors.New("invalid customer type")
	ErrInvalidPaymentOption  = errors.New("invalid payment method")
	ErrInvalidDeliveryOption = errors.New("invalid delivery option")
)

// Menu is what the prompt shows before collecting items.
type Menu interface {
	ListMenu() []catalog.MenuItem
}

// Placer places a collected order.
type Placer interface {
	PlaceOrder(ctx context.Context, request domain.OrderRequest) (domain.Order, error)
}

// Prompt runs the line-based order entry sequence on a terminal.
type Prompt struct {
	in     *bufio.Reader
	out    io.Writer
	menu   Menu
	placer Placer
}

func NewPrompt(in io.Reader, out io.Writer, menu Menu, placer Placer) *Prompt {
	return &Prompt{
		in:     bufio.NewReader(in),
		out:    out,
		menu:   menu,
		placer: placer,
	}
}

// Run collects and places one order. Failures are printed as "ERROR: ..."
// and also returned; nothing is recorded for a failed attempt.
func (p *Prompt) Run(ctx context.Context) (domain.Order, error) {
	p.println("=== Cafeteria Orders ===")

	order, err := p.run(ctx)
	if err != nil {
		p.println("")
		p.printf("ERROR: %v\n", err)
		return domain.Order{}, err
	}

	p.printSummary(order)
	return order, nil
}

func (p *Prompt) run(ctx context.Context) (domain.Order, error) {
	category, customerID, err := p.selectCustomer()
	if err != nil {
		return domain.Order{}, err
	}
	items, err := p.selectItems()
	if err != nil {
		return domain.Order{}, err
	}
	payment, err := p.selectPayment()
	if err != nil {
		return domain.Order{}, err
	}
	delivery, classroom, err := p.selectDelivery()
	if err != nil {
		return domain.Order{}, err
	}

	return p.placer.PlaceOrder(ctx, domain.OrderRequest{
		Category:   category,
		CustomerID: customerID,
		Items:      items,
		Payment:    payment,
		Delivery:   delivery,
		Classroom:  classroom,
	})
}

func (p *Prompt) selectCustomer() (catalog.Category, string, error) {
	p.println("")
	p.println("Select customer type:")
	p.println("1) Student")
	p.println("2) Instructor")
	p.println("3) Staff")
	option, err := p.ask("Option: ")
	if err != nil {
		return "", "", err
	}

	categories := map[string]catalog.Category{
		"1": catalog.CategoryStudent,
		"2": catalog.CategoryInstructor,
		"3": catalog.CategoryStaff,
	}
	category, ok := categories[option]
	if !ok {
		return "", "", ErrInvalidCategoryOption
	}

	customerID, err := p.ask("Enter student id or employee number: ")
	if err != nil {
		return "", "", err
	}
	return category, customerID, nil
}

func (p *Prompt) selectItems() ([]domain.RawItem, error) {
	p.println("")
	p.println("--- Menu ---")
	for _, item := range p.menu.ListMenu() {
		p.printf("%s - %s : $%s\n", item.Key, item.Name, item.UnitPrice.StringFixed(2))
	}
	p.println("Enter items (e.g. A01 2). Leave empty to finish.")

	var items []domain.RawItem
	for {
		line, err := p.ask("> ")
		if errors.Is(err, io.EOF) {
			return items, nil
		}
		if err != nil {
			return nil, err
		}
		if line == "" {
			return items, nil
		}

		parts := strings.Fields(line)
		if len(parts) != 2 {
			p.println("Format: <key> <quantity>")
			continue
		}
		quantity, err := strconv.Atoi(parts[1])
		if err != nil {
			p.println("Invalid quantity.")
			continue
		}
		if quantity <= 0 {
			p.println("Quantity must be positive.")
			continue
		}
		items = append(items, domain.RawItem{Key: strings.ToUpper(parts[0]), Quantity: quantity})
	}
}

func (p *Prompt) selectPayment() (domain.PaymentMethod, error) {
	p.println("")
	p.println("Payment method:")
	p.println("1) Cash")
	p.println("2) Card")
	p.println("3) Credit (students only)")
	option, err := p.ask("Option: ")
	if err != nil {
		return "", err
	}

	methods := map[string]domain.PaymentMethod{
		"1": domain.PaymentCash,
		"2": domain.PaymentCard,
		"3": domain.PaymentCredit,
	}
	method, ok := methods[option]
	if !ok {
		return "", ErrInvalidPaymentOption
	}
	return method, nil
}

func (p *Prompt) selectDelivery() (domain.DeliveryMode, string, error) {
	p.println("")
	p.println("Delivery:")
	p.println("1) To classroom")
	p.println("2) Pick up at counter")
	option, err := p.ask("Option: ")
	if err != nil {
		return "", "", err
	}

	switch option {
	case "1":
		classroom, err := p.ask("Classroom (e.g. B-203): ")
		if err != nil && !errors.Is(err, io.EOF) {
			return "", "", err
		}
		return domain.DeliveryClassroom, classroom, nil
	case "2":
		return domain.DeliveryCounter, "", nil
	default:
		return "", "", ErrInvalidDeliveryOption
	}
}

func (p *Prompt) printSummary(order domain.Order) {
	classroom := order.Classroom
	if classroom == "" {
		classroom = "-"
	}

	p.println("")
	p.println("Order placed successfully:")
	p.printf("ID: %s\n", order.ID)
	p.printf("Customer: %s - %s\n", order.CustomerCategory, order.CustomerID)
	p.println("Items:")
	for _, line := range order.Lines {
		p.printf(" - %s x %d\n", line.ItemKey, line.Quantity)
	}
	p.printf("Total: $%s\n", order.TotalString())
	p.printf("Delivery: %s | Classroom: %s\n", order.Delivery, classroom)
	p.printf("Estimated time: %d min (about %s)\n", order.EstimatedMinutes, order.EstimatedReadyTime())
	p.printf("Payment method: %s\n", order.Payment)
}

// ask prints label and reads one trimmed line. A final line without a
// newline is returned normally; io.EOF only when nothing was read.
func (p *Prompt) ask(label string) (string, error) {
	p.printf("%s", label)
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("unexpected end of input: %w", io.EOF)
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *Prompt) println(line string) {
	fmt.Fprintln(p.out, line)
}

func (p *Prompt) printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}
