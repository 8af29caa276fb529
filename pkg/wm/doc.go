/*
Package wm provides the window registry of a webdesk session.

The registry tracks, for every window of a simulated desktop:
  - Lifecycle state (open, minimized, maximized)
  - Stacking order through monotonically assigned z-indexes
  - The content payload and last saved geometry
  - Multi-instance windows, each with its own slot and cascade index

Singleton kinds own one slot for the life of the registry and are reset in
place when closed. Multi-instance kinds get a fresh slot on every Open and
lose it on Close. Operations naming an unknown window are ignored so a stale
reference from the rendering layer can never break the session.

Example usage:

	reg := wm.NewRegistry(wm.DefaultConfig())
	reg.Open(wm.KindFinder, wm.FinderContent{LocationID: "work"})
	id, _ := reg.Open(wm.KindTextFile, wm.TextContent{Name: "About.txt"})
	reg.Focus(wm.Singleton(wm.KindFinder))
	reg.Close(id)
*/
package wm
