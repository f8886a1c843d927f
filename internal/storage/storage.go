package storage

import "swapPool/internal/model"

// Storage defines a sink for pool events.
type Storage interface {
	PutEventBatch(events []model.Event) error
}
