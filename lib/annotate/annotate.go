// Package annotate prefixes every line of a byte stream with a timestamp and
// a stream tag and writes the result to a shared Sink.
package annotate

import (
	"bufio"
	"errors"
	"io"
	"sync"
)

// Annotate copies source to sink one line at a time. Each line, including a
// final line without a newline, becomes one record stamped with now(). It
// returns nil once source reports EOF, or the first read or write error.
func Annotate(tag Tag, source io.Reader, sink *Sink, now Clock) error {
	reader := bufio.NewReader(source)
	for {
		line, err := reader.ReadBytes('\n')
		if len(line) > 0 {
			if werr := sink.Record(now(), tag, line); werr != nil {
				return werr
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return err
		}
	}
}

// SuperviseBoth annotates the child's stdout and stderr concurrently and
// returns once both streams hit EOF (or failed) and were closed. When both
// readers fail the stdout error wins.
func SuperviseBoth(stdout, stderr io.ReadCloser, sink *Sink, now Clock) error {
	streams := []struct {
		tag    Tag
		source io.ReadCloser
	}{
		{tag: Stdout, source: stdout},
		{tag: Stderr, source: stderr},
	}

	errs := make([]error, len(streams))
	var wg sync.WaitGroup
	for i, stream := range streams {
		wg.Add(1)
		go func(i int, tag Tag, source io.ReadCloser) {
			defer wg.Done()
			// closing on failure lets a child blocked on a full pipe see EPIPE
			defer source.Close()
			errs[i] = Annotate(tag, source, sink, now)
		}(i, stream.tag, stream.source)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
