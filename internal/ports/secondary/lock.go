package secondary

import "context"

// Locker defines the secondary port for keyed mutual exclusion. Engine
// operations hold the order key across their read-modify-write sequence and
// the status synchronizer holds the thread key across scan/edit/send/pin.
type Locker interface {
	// Lock blocks until key is held or ctx is done. The returned function
	// releases the lock and is safe to call more than once.
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// ProductCatalog defines the secondary port for the static product-name
// dictionary used by add-product suggestions.
type ProductCatalog interface {
	// Names returns the dictionary in file order.
	Names() []string
}
