package async

// Errable runs fn in its own goroutine. The returned channel yields fn's error and is closed.
func Errable(fn func() error) <-chan error {
	ch := make(chan error, 1)
	go func() {
		ch <- fn()
		close(ch)
	}()
	return ch
}
