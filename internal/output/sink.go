package output

import (
	"bufio"
	"io"
	"os"

	"github.com/hashicorp/go-multierror"

	"github.com/temirov/dirsnap/internal/snapshot"
)

// StandardOutputPath selects the process standard output as the sink.
const StandardOutputPath = "-"

const standardOutputName = "stdout"

// Sink is a buffered destination for rendered output. It is either a created file
// or the provided standard output writer, which is flushed but never closed.
type Sink struct {
	name         string
	file         *os.File
	writer       *bufio.Writer
	bytesWritten int64
}

// OpenSink creates or truncates outputPath, or wraps stdout when outputPath is "-".
func OpenSink(outputPath string, stdout io.Writer) (*Sink, error) {
	if outputPath == StandardOutputPath {
		return &Sink{name: standardOutputName, writer: bufio.NewWriter(stdout)}, nil
	}
	outputFile, createError := os.Create(outputPath)
	if createError != nil {
		return nil, snapshot.NewError(snapshot.ErrWrite, outputPath, createError)
	}
	return &Sink{name: outputPath, file: outputFile, writer: bufio.NewWriter(outputFile)}, nil
}

// Name returns the sink destination for reporting.
func (sink *Sink) Name() string {
	return sink.name
}

// BytesWritten reports how many bytes were accepted by the sink.
func (sink *Sink) BytesWritten() int64 {
	return sink.bytesWritten
}

func (sink *Sink) Write(data []byte) (int, error) {
	written, writeError := sink.writer.Write(data)
	sink.bytesWritten += int64(written)
	if writeError != nil {
		return written, snapshot.NewError(snapshot.ErrWrite, sink.name, writeError)
	}
	return written, nil
}

// Close flushes buffered data and releases the file. Flush and close failures are combined.
func (sink *Sink) Close() error {
	var result *multierror.Error
	if flushError := sink.writer.Flush(); flushError != nil {
		result = multierror.Append(result, snapshot.NewError(snapshot.ErrWrite, sink.name, flushError))
	}
	if sink.file != nil {
		if closeError := sink.file.Close(); closeError != nil {
			result = multierror.Append(result, snapshot.NewError(snapshot.ErrWrite, sink.name, closeError))
		}
	}
	return result.ErrorOrNil()
}
