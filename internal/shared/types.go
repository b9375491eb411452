package shared

// Asynq task types.
const (
	TypeSweepExpiredBookings = "booking:sweep_expired"
	TypeCloseGracedBookings  = "booking:close_graced"
)

// Asynq queues.
const (
	QueueBooking = "booking"
)

// Gin context keys set by the auth middleware.
const (
	CtxKeyUID  = "authUID"
	CtxKeyRole = "authRole"
)

// Principal roles.
const (
	RoleUser     = "user"
	RoleProvider = "provider"
	RoleAdmin    = "admin"
)
