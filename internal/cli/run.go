package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/temirov/dirsnap/internal/output"
	"github.com/temirov/dirsnap/internal/snapshot"
	"github.com/temirov/dirsnap/internal/tokenizer"
	"github.com/temirov/dirsnap/internal/types"
	"github.com/temirov/dirsnap/internal/utils"
)

const (
	skippedEntryMessage       = "skipped entry"
	clipboardFailedMessage    = "copy to clipboard failed"
	clipboardCopiedMessage    = "copied snapshot to clipboard"
	tokenCountFailedMessage   = "token count failed"
	snapshotCompletedMessage  = "snapshot written"
	errorWorkingDirectoryText = "determine working directory: %w"
)

// runSnapshot builds the tree, renders it fully in memory, and only then writes the destination.
func runSnapshot(dependencies Dependencies, options snapshotOptions) error {
	logger := dependencies.Logger
	if options.verbose && dependencies.LogLevel != nil {
		dependencies.LogLevel.SetLevel(zapcore.DebugLevel)
	}

	rootPath := options.rootPath
	if rootPath == "" {
		rootPath = dependencies.WorkingDirectory
	}
	if rootPath == "" {
		currentDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return fmt.Errorf(errorWorkingDirectoryText, workingDirectoryError)
		}
		rootPath = currentDirectory
	}

	renderer, rendererError := output.NewRenderer(options.format)
	if rendererError != nil {
		return rendererError
	}

	builder := snapshot.Builder{
		MaxDepth:      options.maxDepth,
		ReadDirectory: dependencies.ReadDirectory,
		Warn: func(message string) {
			logger.Debug(skippedEntryMessage, zap.String("reason", message))
		},
	}
	rootSnapshot, buildError := builder.Build(rootPath)
	if buildError != nil {
		return buildError
	}

	var rendered bytes.Buffer
	if renderError := renderer.Render(&rendered, rootSnapshot); renderError != nil {
		return renderError
	}

	bytesWritten, destination, writeError := writeRendered(options.outputPath, dependencies, rendered.Bytes())
	if writeError != nil {
		return writeError
	}

	stats := rootSnapshot.Stats()
	summary := types.RunSummary{
		Directories:  stats.Directories,
		Files:        stats.Files,
		Truncated:    stats.Truncated,
		BytesWritten: bytesWritten,
		Destination:  destination,
	}

	if options.copyToClipboard {
		if copyError := dependencies.Clipboard.Copy(rendered.String()); copyError != nil {
			logger.Warn(clipboardFailedMessage, zap.Error(copyError))
		} else {
			logger.Debug(clipboardCopiedMessage)
		}
	}

	if options.tokensEnabled {
		tokens, model, countError := countTokens(dependencies, options.tokenModel, rendered.String())
		if countError != nil {
			logger.Warn(tokenCountFailedMessage, zap.String("model", options.tokenModel), zap.Error(countError))
		} else {
			summary.Tokens = tokens
			summary.Model = model
		}
	}

	logSummary(logger, summary)
	return nil
}

// writeRendered opens the destination and writes data to it, combining write and close failures.
func writeRendered(outputPath string, dependencies Dependencies, data []byte) (written int64, destination string, err error) {
	sink, openError := output.OpenSink(outputPath, dependencies.Stdout)
	if openError != nil {
		return 0, outputPath, openError
	}
	defer func() {
		if closeError := sink.Close(); closeError != nil {
			err = multierror.Append(err, closeError).ErrorOrNil()
		}
		written = sink.BytesWritten()
	}()
	if _, writeError := sink.Write(data); writeError != nil {
		return 0, sink.Name(), writeError
	}
	return 0, sink.Name(), nil
}

func countTokens(dependencies Dependencies, model string, text string) (int, string, error) {
	counter, resolvedModel, counterError := dependencies.NewCounter(tokenizer.Config{Model: model})
	if counterError != nil {
		return 0, "", counterError
	}
	tokens, countError := tokenizer.CountText(counter, text)
	if countError != nil {
		return 0, "", countError
	}
	return tokens, resolvedModel, nil
}

func logSummary(logger *zap.Logger, summary types.RunSummary) {
	fields := []zap.Field{
		zap.String("destination", summary.Destination),
		zap.Int("directories", summary.Directories),
		zap.Int("files", summary.Files),
		zap.Int("truncated", summary.Truncated),
		zap.String("size", utils.FormatFileSize(summary.BytesWritten)),
	}
	if summary.Model != "" {
		fields = append(fields, zap.Int("tokens", summary.Tokens), zap.String("model", summary.Model))
	}
	logger.Info(snapshotCompletedMessage, fields...)
}
