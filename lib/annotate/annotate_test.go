package annotate

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() string { return "12:00:00" }

type failingWriter struct{ err error }

func (w failingWriter) Write(p []byte) (int, error) { return 0, w.err }

type failingReader struct{ err error }

func (r failingReader) Read(p []byte) (int, error) { return 0, r.err }

type trackedReader struct {
	io.Reader
	mut    sync.Mutex
	closed bool
}

func (r *trackedReader) Close() error {
	r.mut.Lock()
	defer r.mut.Unlock()
	r.closed = true
	return nil
}

func TestAnnotateSplitsLines(t *testing.T) {
	var buf bytes.Buffer
	err := Annotate(Stdout, strings.NewReader("hello\nworld"), NewSink(&buf, false), fixedClock)
	assert.Nil(t, err)
	assert.Equal(t, "12:00:00 O: hello\n12:00:00 O: world\n", buf.String())
}

func TestAnnotateKeepsEmptyLines(t *testing.T) {
	var buf bytes.Buffer
	err := Annotate(Stderr, strings.NewReader("a\n\nb\n"), NewSink(&buf, false), fixedClock)
	assert.Nil(t, err)
	assert.Equal(t, "12:00:00 E: a\n12:00:00 E: \n12:00:00 E: b\n", buf.String())
}

func TestAnnotateEmptySource(t *testing.T) {
	var buf bytes.Buffer
	assert.Nil(t, Annotate(Stdout, strings.NewReader(""), NewSink(&buf, false), fixedClock))
	assert.Empty(t, buf.String())
}

func TestAnnotateReconstructsSource(t *testing.T) {
	source := "first line\nsecond\x00binary\n\nno newline at end"
	var buf bytes.Buffer
	require.Nil(t, Annotate(Stdout, strings.NewReader(source), NewSink(&buf, false), fixedClock))

	lines := strings.SplitAfter(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Len(t, lines, strings.Count(source, "\n")+1)

	var rebuilt strings.Builder
	for _, line := range lines {
		require.True(t, strings.HasPrefix(line, "12:00:00 O: "), line)
		rebuilt.WriteString(strings.TrimPrefix(line, "12:00:00 O: "))
	}
	assert.Equal(t, source, rebuilt.String())
}

func TestAnnotateReadError(t *testing.T) {
	boom := errors.New("boom")
	var buf bytes.Buffer
	err := Annotate(Stdout, failingReader{err: boom}, NewSink(&buf, false), fixedClock)
	assert.ErrorIs(t, err, boom)
}

func TestAnnotateWriteError(t *testing.T) {
	boom := errors.New("closed")
	err := Annotate(Stdout, strings.NewReader("line\n"), NewSink(failingWriter{err: boom}, false), fixedClock)
	assert.ErrorIs(t, err, boom)
}

func TestSinkInfof(t *testing.T) {
	var buf bytes.Buffer
	sink := NewSink(&buf, false)
	assert.Nil(t, sink.Infof("10:00:00", "Finished with exitcode %d", 3))
	assert.Equal(t, "10:00:00 I: Finished with exitcode 3\n", buf.String())
}

func TestSinkColors(t *testing.T) {
	var buf bytes.Buffer
	sink := NewSink(&buf, true)
	assert.Nil(t, sink.Record("10:00:00", Stderr, []byte("oops\n")))
	assert.Equal(t, "10:00:00 \x1b[91mE\x1b[0m: oops\n", buf.String())
}

func TestSuperviseBoth(t *testing.T) {
	stdout := &trackedReader{Reader: strings.NewReader("out1\nout2\n")}
	stderr := &trackedReader{Reader: strings.NewReader("err1")}

	var buf bytes.Buffer
	require.Nil(t, SuperviseBoth(stdout, stderr, NewSink(&buf, false), fixedClock))

	assert.True(t, stdout.closed)
	assert.True(t, stderr.closed)
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.ElementsMatch(t, []string{
		"12:00:00 O: out1",
		"12:00:00 O: out2",
		"12:00:00 E: err1",
	}, lines)
}

func TestSuperviseBothWaitsForBothOnError(t *testing.T) {
	boom := errors.New("boom")
	stdout := &trackedReader{Reader: failingReader{err: boom}}
	stderr := &trackedReader{Reader: strings.NewReader("still drained\n")}

	var buf bytes.Buffer
	err := SuperviseBoth(stdout, stderr, NewSink(&buf, false), fixedClock)
	assert.ErrorIs(t, err, boom)
	assert.True(t, stderr.closed)
	assert.Equal(t, "12:00:00 E: still drained\n", buf.String())
}

func TestSuperviseBothNeverSplitsRecords(t *testing.T) {
	var outSrc, errSrc strings.Builder
	for i := 0; i < 2000; i++ {
		fmt.Fprintf(&outSrc, "stdout line %d %s\n", i, strings.Repeat("o", i%97))
		fmt.Fprintf(&errSrc, "stderr line %d %s\n", i, strings.Repeat("e", i%97))
	}

	var buf bytes.Buffer
	err := SuperviseBoth(
		io.NopCloser(strings.NewReader(outSrc.String())),
		io.NopCloser(strings.NewReader(errSrc.String())),
		NewSink(&buf, false),
		fixedClock,
	)
	require.Nil(t, err)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 4000)
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "12:00:00 O: stdout line "):
		case strings.HasPrefix(line, "12:00:00 E: stderr line "):
		default:
			t.Fatalf("corrupted record %q", line)
		}
		assert.Equal(t, 1, strings.Count(line, "12:00:00"), line)
	}
}
