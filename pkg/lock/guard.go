package lock

import "sync"

// Guard is returned by a successful acquire. Its Release releases that
// acquisition exactly once; it never touches a later acquisition of the same
// handle.
//
//	g, err := l.Acquire(ctx)
//	if err != nil {
//	    return err
//	}
//	defer g.Release()
type Guard struct {
	lock       *Lock
	generation uint64

	once sync.Once
	err  error
}

// Release releases the lock if it is still held by this acquisition.
// Later calls return the first call's result.
func (g *Guard) Release() error {
	if g == nil {
		return nil
	}
	g.once.Do(func() {
		l := g.lock
		if l.held.Load() && l.generation.Load() == g.generation {
			g.err = l.Release()
		}
	})
	return g.err
}

// Lock returns the handle this guard belongs to.
func (g *Guard) Lock() *Lock {
	return g.lock
}
