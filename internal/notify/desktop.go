package notify

import (
	"context"
	"fmt"

	"github.com/gen2brain/beeep"
)

// Desktop raises a system notification.
type Desktop struct {
	Icon string
	send func(title, message, icon string) error
}

func NewDesktop(icon string) *Desktop {
	return &Desktop{Icon: icon, send: beeep.Notify}
}

func (d *Desktop) Notify(_ context.Context, alert Alert) error {
	if err := d.send(Title, Message(alert), d.Icon); err != nil {
		return fmt.Errorf("desktop notification: %w", err)
	}
	return nil
}
