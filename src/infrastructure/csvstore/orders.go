package csvstore

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"

	"cafeteria-orders/src/services/order/domain"
)

// OrderColumns is the fixed column order of the orders file.
var OrderColumns = []string{
	"orderId", "customerCategory", "customerId", "items",
	"requestDate", "requestTime", "paymentMethod",
	"total", "estimatedMinutes", "deliveryMode", "classroom", "estimatedReadyTime",
}

// OrderWriter appends orders to a CSV file, creating it on first use.
type OrderWriter struct {
	path     string
	mu       sync.Mutex
	syncFile func(f *os.File) error
}

func NewOrderWriter(path string) *OrderWriter {
	return &OrderWriter{path: path, syncFile: (*os.File).Sync}
}

// Append writes one data row, preceded by the header when the file is
// new or empty. A row that cannot be flushed and synced is cut off again,
// so a failed Append never leaves the order in the file.
func (w *OrderWriter) Append(_ context.Context, order domain.Order) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open orders file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat orders file: %w", err)
	}

	writer := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := writer.Write(OrderColumns); err != nil {
			return fmt.Errorf("failed to write orders header: %w", err)
		}
	}
	if err := writer.Write(OrderRow(order)); err != nil {
		return fmt.Errorf("failed to write order %s: %w", order.ID, err)
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return rollback(f, info.Size(), fmt.Errorf("failed to flush order %s: %w", order.ID, err))
	}
	if err := w.syncFile(f); err != nil {
		return rollback(f, info.Size(), fmt.Errorf("failed to sync order %s: %w", order.ID, err))
	}
	return nil
}

func rollback(f *os.File, size int64, cause error) error {
	if err := f.Truncate(size); err != nil {
		return errors.Join(cause, fmt.Errorf("failed to truncate orders file: %w", err))
	}
	return cause
}

// OrderRow renders order in OrderColumns order.
func OrderRow(order domain.Order) []string {
	return []string{
		order.ID,
		string(order.CustomerCategory),
		order.CustomerID,
		domain.FormatLines(order.Lines),
		order.RequestDate(),
		order.RequestTime(),
		string(order.Payment),
		order.TotalString(),
		strconv.Itoa(order.EstimatedMinutes),
		string(order.Delivery),
		order.Classroom,
		order.EstimatedReadyTime(),
	}
}
