package wifi

import (
	"context"

	"plantcode-go/services/wifi/internal/console"
)

// ConsolePort and ConsoleHandlers re-export the provisioning console
// surface so the boot code can wire a port without reaching into
// internal packages.
type (
	ConsolePort     = console.Port
	ConsoleHandlers = console.Handlers
)

// StartConsole runs the provisioning console over port until ctx is
// cancelled. Handlers run on the console goroutine, so they must only
// touch the machine through its thread-safe surface (Offer) or go via
// the bus.
func StartConsole(ctx context.Context, port ConsolePort, h ConsoleHandlers) {
	go console.New(port, h).Run(ctx)
}
