package main

import (
	"bufio"
	"io"
	"os"
	"sync"
)

// enterSignal turns lines read from a reader into events. One reader goroutine
// serves both the live stop signal and the error acknowledgement.
type enterSignal struct {
	r     io.Reader
	once  sync.Once
	lines chan struct{}
	eof   chan struct{}
}

var stdin = newEnterSignal(os.Stdin)

func newEnterSignal(r io.Reader) *enterSignal {
	return &enterSignal{
		r:     r,
		lines: make(chan struct{}),
		eof:   make(chan struct{}),
	}
}

func (e *enterSignal) start() {
	e.once.Do(func() {
		go func() {
			defer close(e.eof)
			sc := bufio.NewScanner(e.r)
			for sc.Scan() {
				select {
				case e.lines <- struct{}{}:
				default:
				}
			}
		}()
	})
}

// Pressed delivers one value per line read while someone is waiting.
func (e *enterSignal) Pressed() <-chan struct{} {
	e.start()
	return e.lines
}

// Closed is closed once the reader hits EOF or fails.
func (e *enterSignal) Closed() <-chan struct{} {
	e.start()
	return e.eof
}

// Wait blocks until a line is read or the reader is exhausted.
func (e *enterSignal) Wait() {
	select {
	case <-e.Pressed():
	case <-e.Closed():
	}
}
