// webdesk serves a desktop-style portfolio: draggable windows, a Finder over
// a content tree and icon positions that survive restarts.
package main

import (
	"log"

	"webdesk/internal/commands"
)

func main() {
	if err := commands.New().Execute(); err != nil {
		log.Fatalf("webdesk: %v", err)
	}
}
