package email

import (
	"context"
	"fmt"

	"github.com/Domenick1991/carpool/internal/kafka"
)

// Sender is a stub mail gateway; address resolution and delivery live
// behind it.
type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	fmt.Printf("notify passenger %d: %s for ride %d (%d seat(s), booking %s)\n",
		event.PassengerID, event.Type, event.RideID, event.Seats, event.Reference)
	return nil
}
