package graph

// ViewMode says whether the graph tracks new data.
type ViewMode uint8

const (
	// Following keeps the newest data at the right edge.
	Following ViewMode = iota
	// Scrolled pins the graph to a window chosen by the user.
	Scrolled
)

func (m ViewMode) String() string {
	switch m {
	case Following:
		return "following"
	case Scrolled:
		return "scrolled"
	default:
		return "?"
	}
}

// View is the visible window of a graph and how far it has been drawn.
type View struct {
	// ZoomX is the current zoom in time units per pixel.
	ZoomX float64
	// LastDrawnT is the exclusive end of the time range drawn so far.
	LastDrawnT uint32
	// LastDrawnX is the exclusive right edge, in pixels, of what has been
	// drawn.
	LastDrawnX int
	// MinT and MaxT are the oldest retained and newest ingested times.
	MinT, MaxT uint32
	Mode       ViewMode
}
