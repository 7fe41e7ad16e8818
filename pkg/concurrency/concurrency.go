package concurrency

const (
	// DefaultMax default max
	DefaultMax = 256
)

// DefaultGoLimit default go limit, max:256
var DefaultGoLimit = NewGoLimit(DefaultMax)

// GoLimit bounded goroutine fan-out
type GoLimit struct {
	ch chan int
}

// NewGoLimit new go limit
func NewGoLimit(max int) *GoLimit {
	return &GoLimit{
		ch: make(chan int, max),
	}
}

// Add take a slot, blocking while max slots are out
func (g *GoLimit) Add() {
	g.ch <- 1
}

// Done return a slot
func (g *GoLimit) Done() {
	<-g.ch
}

// Close close chan
func (g *GoLimit) Close() {
	close(g.ch)
}
