package handlers

// HandlerBundle groups all endpoint handlers into one struct so route
// registration takes a single dependency.
type HandlerBundle struct {
	Booking *BookingHandler
	Payment *PaymentHandler
	Fundi   *FundiHandler
	Storage *StorageHandler
}
