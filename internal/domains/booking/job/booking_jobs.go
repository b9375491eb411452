package job

import (
	"context"

	"github.com/hibiken/asynq"

	"github.com/AfroSamurai-hub/OzzServe/internal/domains/booking/service"
	"github.com/AfroSamurai-hub/OzzServe/internal/shared"
	"github.com/AfroSamurai-hub/OzzServe/pkg/logger"
)

// =====================================================
// BACKGROUND JOBS
// =====================================================

// BookingJobs are the scheduled maintenance tasks: the unpaid-booking
// sweeper and the grace-window closer.
type BookingJobs struct {
	bookingService service.BookingService
}

func NewBookingJobs(bookingService service.BookingService) *BookingJobs {
	return &BookingJobs{bookingService: bookingService}
}

// Register wires the task handlers onto the worker mux.
func (j *BookingJobs) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeSweepExpiredBookings, j.HandleSweepExpired)
	mux.HandleFunc(shared.TypeCloseGracedBookings, j.HandleCloseGraced)
}

// HandleSweepExpired expires stale PENDING_PAYMENT bookings.
func (j *BookingJobs) HandleSweepExpired(ctx context.Context, _ *asynq.Task) error {
	swept, err := j.bookingService.SweepExpired(ctx)
	if err != nil {
		logger.Error("sweep job failed", err)
		return err
	}
	logger.Info("sweep job finished", map[string]interface{}{
		"swept": swept,
	})
	return nil
}

// HandleCloseGraced closes COMPLETE_PENDING bookings whose grace window
// has lapsed.
func (j *BookingJobs) HandleCloseGraced(ctx context.Context, _ *asynq.Task) error {
	closed, err := j.bookingService.CloseGraced(ctx)
	if err != nil {
		logger.Error("grace close job failed", err)
		return err
	}
	if closed > 0 {
		logger.Info("grace close job finished", map[string]interface{}{
			"closed": closed,
		})
	}
	return nil
}
