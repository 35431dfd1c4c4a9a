package order

import "time"

// Bucket groups orders for display.
type Bucket string

const (
	BucketActive   Bucket = "active"
	BucketPrevious Bucket = "previous"
)

// Classify places o in the previous bucket once it is delivered or cancelled,
// or once its last delivery day lies strictly before now. The result is
// derived on every read and never stored, so it moves with the clock.
func Classify(o *Order, now time.Time) Bucket {
	if o.Status.IsTerminal() || o.Schedule.End.Before(now) {
		return BucketPrevious
	}
	return BucketActive
}

// Buckets is a list of orders split by Classify.
type Buckets struct {
	Active   []Order
	Previous []Order
}

// Partition splits orders into active and previous, preserving their order.
func Partition(orders []Order, now time.Time) Buckets {
	b := Buckets{
		Active:   make([]Order, 0, len(orders)),
		Previous: make([]Order, 0),
	}
	for i := range orders {
		if Classify(&orders[i], now) == BucketPrevious {
			b.Previous = append(b.Previous, orders[i])
		} else {
			b.Active = append(b.Active, orders[i])
		}
	}
	return b
}
