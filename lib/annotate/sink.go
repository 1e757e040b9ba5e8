package annotate

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
)

// Tag identifies where an annotated record came from
type Tag string

const (
	// Info tags the start and finish banners written by the wrapper itself
	Info Tag = "I"
	// Stdout tags lines the child wrote to its standard output
	Stdout Tag = "O"
	// Stderr tags lines the child wrote to its standard error
	Stderr Tag = "E"
)

var tagColors = map[Tag]color.Attribute{
	Info:   color.FgHiCyan,
	Stdout: color.FgGreen,
	Stderr: color.FgHiRed,
}

// Clock returns the current time already formatted for a record prefix
type Clock func() string

// Sink is the single output shared by the banners and both stream readers.
// Every record is assembled in memory and handed to the underlying writer in
// one Write call while the lock is held, so records never interleave.
type Sink struct {
	mut    sync.Mutex
	writer io.Writer
	labels map[Tag]string
}

// NewSink wraps a writer. When colors is set the tag letter is styled.
func NewSink(w io.Writer, colors bool) *Sink {
	labels := map[Tag]string{}
	for tag, attr := range tagColors {
		labels[tag] = string(tag)
		if colors {
			c := color.New(attr)
			c.EnableColor()
			labels[tag] = c.Sprint(string(tag))
		}
	}
	return &Sink{writer: w, labels: labels}
}

// Record writes `stamp tag: body`, appending a newline when the body does not
// already end with one.
func (s *Sink) Record(stamp string, tag Tag, body []byte) error {
	record := make([]byte, 0, len(stamp)+len(body)+16)
	record = append(record, stamp...)
	record = append(record, ' ')
	record = append(record, s.label(tag)...)
	record = append(record, ':', ' ')
	record = append(record, body...)
	if len(body) == 0 || body[len(body)-1] != '\n' {
		record = append(record, '\n')
	}

	s.mut.Lock()
	defer s.mut.Unlock()
	_, err := s.writer.Write(record)
	return err
}

// Infof writes a formatted record tagged with Info
func (s *Sink) Infof(stamp, msg string, args ...any) error {
	return s.Record(stamp, Info, []byte(fmt.Sprintf(msg, args...)))
}

func (s *Sink) label(tag Tag) string {
	if label, ok := s.labels[tag]; ok {
		return label
	}
	return string(tag)
}
