package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/dirsnap/internal/snapshot"
	"github.com/temirov/dirsnap/internal/tokenizer"
	"github.com/temirov/dirsnap/internal/types"
	"github.com/temirov/dirsnap/internal/utils"
)

type recordingCopier struct {
	copied []string
	err    error
}

func (copier *recordingCopier) Copy(text string) error {
	copier.copied = append(copier.copied, text)
	return copier.err
}

type fixedCounter struct {
	tokens int
}

func (counter fixedCounter) Name() string {
	return "fixed"
}

func (counter fixedCounter) CountString(string) (int, error) {
	return counter.tokens, nil
}

type commandHarness struct {
	dependencies Dependencies
	stdout       *bytes.Buffer
	logs         *observer.ObservedLogs
	level        zap.AtomicLevel
	copier       *recordingCopier
}

func newCommandHarness(t *testing.T) *commandHarness {
	t.Helper()
	homeDirectory := t.TempDir()
	t.Setenv("HOME", homeDirectory)
	t.Setenv("USERPROFILE", homeDirectory)

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	core, logs := observer.New(level)
	stdout := &bytes.Buffer{}
	copier := &recordingCopier{}
	return &commandHarness{
		dependencies: Dependencies{
			Logger:    zap.New(core),
			LogLevel:  &level,
			Stdout:    stdout,
			Clipboard: copier,
			NewCounter: func(cfg tokenizer.Config) (tokenizer.Counter, string, error) {
				return fixedCounter{tokens: 42}, cfg.Model, nil
			},
			WorkingDirectory: t.TempDir(),
		},
		stdout: stdout,
		logs:   logs,
		level:  level,
		copier: copier,
	}
}

func (harness *commandHarness) run(arguments ...string) error {
	rootCommand := createRootCommand(harness.dependencies)
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, arguments))
	return rootCommand.Execute()
}

func createTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, directory := range []string{"b/deep", "a"} {
		if err := os.MkdirAll(filepath.Join(root, directory), 0o755); err != nil {
			t.Fatalf("create %s: %v", directory, err)
		}
	}
	for _, file := range []string{"z.txt", "b/inner.txt", "b/deep/leaf.txt"} {
		if err := os.WriteFile(filepath.Join(root, file), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", file, err)
		}
	}
	return root
}

func expectedListing(root string) string {
	return strings.Join([]string{
		root,
		"\t" + filepath.Join(root, "a"),
		"\t" + filepath.Join(root, "b"),
		"\t\t" + filepath.Join(root, "b", "deep"),
		"\t\t\t" + filepath.Join(root, "b", "deep", "leaf.txt"),
		"\t\t" + filepath.Join(root, "b", "inner.txt"),
		"\t" + filepath.Join(root, "z.txt"),
	}, "\n") + "\n"
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(content)
}

func TestRootCommandWritesSnapshotFile(t *testing.T) {
	harness := newCommandHarness(t)
	root := createTree(t)
	outputPath := filepath.Join(t.TempDir(), "tree.txt")

	if err := harness.run(root, "--output", outputPath); err != nil {
		t.Fatalf("run error: %v", err)
	}
	if got := readFile(t, outputPath); got != expectedListing(root) {
		t.Fatalf("unexpected listing:\n%q\nwant:\n%q", got, expectedListing(root))
	}
	summaries := harness.logs.FilterMessage(snapshotCompletedMessage).All()
	if len(summaries) != 1 {
		t.Fatalf("expected one summary log, got %d", len(summaries))
	}
	fields := summaries[0].ContextMap()
	if fields["directories"] != int64(4) || fields["files"] != int64(3) {
		t.Fatalf("unexpected summary fields: %v", fields)
	}
}

func TestRootCommandDefaultsToWorkingDirectoryAndOutputFile(t *testing.T) {
	harness := newCommandHarness(t)
	root := createTree(t)
	harness.dependencies.WorkingDirectory = root
	outputDirectory := t.TempDir()
	changeDirectory(t, outputDirectory)

	if err := harness.run(); err != nil {
		t.Fatalf("run error: %v", err)
	}
	got := readFile(t, filepath.Join(outputDirectory, utils.DefaultOutputPath))
	if got != expectedListing(root) {
		t.Fatalf("unexpected listing:\n%q", got)
	}
}

func TestRootCommandPathFlag(t *testing.T) {
	harness := newCommandHarness(t)
	root := createTree(t)

	if err := harness.run("--path", root, "--max-depth", "0", "-o", "-"); err != nil {
		t.Fatalf("run error: %v", err)
	}
	expected := strings.Join([]string{
		root,
		"\t" + filepath.Join(root, "a"),
		"\t" + filepath.Join(root, "b"),
		"\t" + filepath.Join(root, "z.txt"),
	}, "\n") + "\n"
	if harness.stdout.String() != expected {
		t.Fatalf("unexpected stdout %q", harness.stdout.String())
	}

	if err := harness.run("--path", root, t.TempDir()); err == nil {
		t.Fatalf("expected conflicting root paths to fail")
	}
}

func TestRootCommandInvalidRootCreatesNoOutput(t *testing.T) {
	harness := newCommandHarness(t)
	outputPath := filepath.Join(t.TempDir(), "output.txt")
	missingRoot := filepath.Join(t.TempDir(), "absent")

	err := harness.run(missingRoot, "-o", outputPath)
	if !errors.Is(err, snapshot.ErrPath) {
		t.Fatalf("expected ErrPath, got %v", err)
	}
	if _, statError := os.Stat(outputPath); !os.IsNotExist(statError) {
		t.Fatalf("output file must not exist after a failed build: %v", statError)
	}
}

func TestRootCommandReadFailureCreatesNoOutput(t *testing.T) {
	harness := newCommandHarness(t)
	root := createTree(t)
	failingDirectory := filepath.Join(root, "b", "deep")
	harness.dependencies.ReadDirectory = func(directoryPath string) ([]fs.DirEntry, error) {
		if directoryPath == failingDirectory {
			return nil, fs.ErrPermission
		}
		return os.ReadDir(directoryPath)
	}
	outputDirectory := t.TempDir()
	changeDirectory(t, outputDirectory)

	err := harness.run(root)
	if !errors.Is(err, snapshot.ErrRead) {
		t.Fatalf("expected ErrRead, got %v", err)
	}
	if _, statError := os.Stat(filepath.Join(outputDirectory, utils.DefaultOutputPath)); !os.IsNotExist(statError) {
		t.Fatalf("output file must not exist after a failed build: %v", statError)
	}
	if harness.logs.FilterMessage(snapshotCompletedMessage).Len() != 0 {
		t.Fatalf("no summary should be logged for a failed build")
	}
}

func TestRootCommandPathFlagReachesSubcommandNames(t *testing.T) {
	harness := newCommandHarness(t)
	workingDirectory := t.TempDir()
	initFilePath := filepath.Join(workingDirectory, "init", "inner.txt")
	if err := os.MkdirAll(filepath.Dir(initFilePath), 0o755); err != nil {
		t.Fatalf("create init directory: %v", err)
	}
	if err := os.WriteFile(initFilePath, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	changeDirectory(t, workingDirectory)

	if err := harness.run("--path", "init", "-o", "-"); err != nil {
		t.Fatalf("run error: %v", err)
	}
	expected := "init\n\t" + filepath.Join("init", "inner.txt") + "\n"
	if harness.stdout.String() != expected {
		t.Fatalf("expected %q, got %q", expected, harness.stdout.String())
	}
	if _, err := os.Stat(filepath.Join(harness.dependencies.WorkingDirectory, utils.ConfigFileName)); !os.IsNotExist(err) {
		t.Fatalf("--path init must not run the init subcommand: %v", err)
	}
}

func TestRootCommandValidatesOptions(t *testing.T) {
	root := t.TempDir()
	testCases := []struct {
		name      string
		arguments []string
	}{
		{name: "depth_above_limit", arguments: []string{root, "--max-depth", "256"}},
		{name: "negative_depth", arguments: []string{root, "--max-depth=-1"}},
		{name: "unknown_format", arguments: []string{root, "--format", "toml"}},
		{name: "too_many_arguments", arguments: []string{root, root}},
		{name: "empty_output", arguments: []string{root, "--output", ""}},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			harness := newCommandHarness(t)
			if err := harness.run(testCase.arguments...); err == nil {
				t.Fatalf("expected error for %v", testCase.arguments)
			}
		})
	}
}

func TestRootCommandStructuredFormatToStdout(t *testing.T) {
	harness := newCommandHarness(t)
	root := createTree(t)

	if err := harness.run(root, "--format", "JSON", "--output", "-", "--max-depth", "1"); err != nil {
		t.Fatalf("run error: %v", err)
	}
	var node types.TreeOutputNode
	if err := json.Unmarshal(harness.stdout.Bytes(), &node); err != nil {
		t.Fatalf("decode json: %v\n%s", err, harness.stdout.String())
	}
	if node.Path != root || len(node.Children) != 3 {
		t.Fatalf("unexpected root node %+v", node)
	}
	deep := node.Children[1].Children[0]
	if deep.Path != filepath.Join(root, "b", "deep") || !deep.Truncated {
		t.Fatalf("expected truncated deep directory, got %+v", deep)
	}
}

func TestRootCommandAppliesConfiguration(t *testing.T) {
	harness := newCommandHarness(t)
	root := createTree(t)
	configuredOutput := filepath.Join(t.TempDir(), "configured.txt")
	configuration := "output: " + configuredOutput + "\nmax_depth: 0\ncopy: true\n"
	configPath := filepath.Join(harness.dependencies.WorkingDirectory, utils.ConfigFileName)
	if err := os.WriteFile(configPath, []byte(configuration), 0o600); err != nil {
		t.Fatalf("write configuration: %v", err)
	}

	if err := harness.run(root); err != nil {
		t.Fatalf("run error: %v", err)
	}
	got := readFile(t, configuredOutput)
	if strings.Contains(got, "leaf.txt") {
		t.Fatalf("configured depth was not applied:\n%s", got)
	}
	if len(harness.copier.copied) != 1 || harness.copier.copied[0] != got {
		t.Fatalf("configured copy was not applied: %v", harness.copier.copied)
	}

	flagOutput := filepath.Join(t.TempDir(), "flag.txt")
	harness.copier.copied = nil
	if err := harness.run(root, "-o", flagOutput, "-d", "10", "--copy", "false"); err != nil {
		t.Fatalf("run error: %v", err)
	}
	if readFile(t, flagOutput) != expectedListing(root) {
		t.Fatalf("flags did not override configuration")
	}
	if len(harness.copier.copied) != 0 {
		t.Fatalf("--copy false should disable copying")
	}
}

func TestRootCommandExplicitConfiguration(t *testing.T) {
	harness := newCommandHarness(t)
	root := createTree(t)
	explicitPath := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(explicitPath, []byte("output: \"-\"\nformat: yaml\n"), 0o600); err != nil {
		t.Fatalf("write configuration: %v", err)
	}
	if err := harness.run(root, "--config", explicitPath); err != nil {
		t.Fatalf("run error: %v", err)
	}
	if !strings.HasPrefix(harness.stdout.String(), "path: "+root) {
		t.Fatalf("expected yaml on stdout, got %q", harness.stdout.String())
	}

	if err := harness.run(root, "--config", filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected missing explicit configuration to fail")
	}
}

func TestRootCommandClipboardFailureIsWarning(t *testing.T) {
	harness := newCommandHarness(t)
	harness.copier.err = errors.New("no display")
	root := createTree(t)

	if err := harness.run(root, "-o", "-", "--copy"); err != nil {
		t.Fatalf("clipboard failure must not fail the run: %v", err)
	}
	if harness.logs.FilterMessage(clipboardFailedMessage).Len() != 1 {
		t.Fatalf("expected clipboard warning")
	}
	if harness.stdout.String() != expectedListing(root) {
		t.Fatalf("unexpected stdout %q", harness.stdout.String())
	}
}

func TestRootCommandCountsTokens(t *testing.T) {
	harness := newCommandHarness(t)
	root := createTree(t)

	if err := harness.run(root, "-o", "-", "--tokens", "--model", "gpt-4"); err != nil {
		t.Fatalf("run error: %v", err)
	}
	summaries := harness.logs.FilterMessage(snapshotCompletedMessage).All()
	if len(summaries) != 1 {
		t.Fatalf("expected one summary log, got %d", len(summaries))
	}
	fields := summaries[0].ContextMap()
	if fields["tokens"] != int64(42) || fields["model"] != "gpt-4" {
		t.Fatalf("unexpected token fields: %v", fields)
	}

	harness.dependencies.NewCounter = func(tokenizer.Config) (tokenizer.Counter, string, error) {
		return nil, "", errors.New("unavailable")
	}
	if err := harness.run(root, "-o", "-", "--tokens"); err != nil {
		t.Fatalf("token failure must not fail the run: %v", err)
	}
	if harness.logs.FilterMessage(tokenCountFailedMessage).Len() != 1 {
		t.Fatalf("expected token warning")
	}
}

func TestRootCommandVerboseLogsSkippedEntries(t *testing.T) {
	harness := newCommandHarness(t)
	root := t.TempDir()
	if err := os.Symlink(filepath.Join(root, "missing"), filepath.Join(root, "dangling")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	if err := harness.run(root, "-o", "-"); err != nil {
		t.Fatalf("run error: %v", err)
	}
	if harness.logs.FilterMessage(skippedEntryMessage).Len() != 0 {
		t.Fatalf("skipped entries must be hidden without --verbose")
	}

	if err := harness.run(root, "-o", "-", "--verbose"); err != nil {
		t.Fatalf("run error: %v", err)
	}
	if harness.level.Level() != zapcore.DebugLevel {
		t.Fatalf("expected --verbose to raise the log level")
	}
	if harness.logs.FilterMessage(skippedEntryMessage).Len() != 1 {
		t.Fatalf("expected one skipped entry log")
	}
}

func TestRootCommandVersion(t *testing.T) {
	harness := newCommandHarness(t)
	previous := utils.Version
	utils.Version = "v1.2.3"
	t.Cleanup(func() { utils.Version = previous })

	if err := harness.run("--version"); err != nil {
		t.Fatalf("run error: %v", err)
	}
	if harness.stdout.String() != "dirsnap version: v1.2.3\n" {
		t.Fatalf("unexpected version output %q", harness.stdout.String())
	}
}

func TestInitCommandWritesConfiguration(t *testing.T) {
	harness := newCommandHarness(t)
	expectedPath := filepath.Join(harness.dependencies.WorkingDirectory, utils.ConfigFileName)

	if err := harness.run("init"); err != nil {
		t.Fatalf("init error: %v", err)
	}
	if !strings.Contains(harness.stdout.String(), expectedPath) {
		t.Fatalf("expected created path in output, got %q", harness.stdout.String())
	}
	if err := harness.run("init"); err == nil {
		t.Fatalf("expected existing configuration to be preserved without --force")
	}
	if err := harness.run("init", "--force"); err != nil {
		t.Fatalf("init --force error: %v", err)
	}
	if err := harness.run("init", "--global"); err != nil {
		t.Fatalf("init --global error: %v", err)
	}
	globalPath := filepath.Join(os.Getenv("HOME"), utils.GlobalConfigDirectoryName, utils.GlobalConfigFileName)
	if _, err := os.Stat(globalPath); err != nil {
		t.Fatalf("expected global configuration: %v", err)
	}
}

// changeDirectory switches the working directory for the duration of the test,
// mirroring testing.T.Chdir for toolchains that predate it.
func changeDirectory(testingHandle *testing.T, directory string) {
	testingHandle.Helper()
	originalDirectory, getwdError := os.Getwd()
	if getwdError != nil {
		testingHandle.Fatalf("getwd: %v", getwdError)
	}
	if chdirError := os.Chdir(directory); chdirError != nil {
		testingHandle.Fatalf("chdir %s: %v", directory, chdirError)
	}
	testingHandle.Cleanup(func() {
		if chdirError := os.Chdir(originalDirectory); chdirError != nil {
			testingHandle.Fatalf("restore chdir %s: %v", originalDirectory, chdirError)
		}
	})
}
