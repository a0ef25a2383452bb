// build.go - DataCleanr Build System
// Usage: go run build.go [-target=TARGET]
// Targets: all, build, test, clean, release

//go:build ignore

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const (
	module     = "datacleanr"
	executable = "datacleanr"
)

// BuildContext holds configuration for the build process
type BuildContext struct {
	Verbose bool
	GOOS    string
	GOARCH  string
}

var (
	rootDir string
	distDir string

	// release matrix, GOOS/GOARCH
	releaseTargets = []string{
		"linux/amd64",
		"linux/arm64",
		"darwin/arm64",
		"windows/amd64",
	}

	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

func init() {
	cwd, err := os.Getwd()
	if err != nil {
		panic(fmt.Sprintf("Failed to get current directory: %v", err))
	}
	rootDir = cwd
	distDir = filepath.Join(rootDir, "dist")

	if _, err := os.Stat(filepath.Join(rootDir, "go.mod")); os.IsNotExist(err) {
		panic(fmt.Sprintf("go.mod not found in %s. Run the build from the repository root.", rootDir))
	}
}

func main() {
	target := flag.String("target", "all", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	printHeader()
	startTime := time.Now()

	ctx := &BuildContext{
		Verbose: *verbose,
		GOOS:    runtime.GOOS,
		GOARCH:  runtime.GOARCH,
	}

	var err error
	switch *target {
	case "all":
		if err = runTests(ctx); err == nil {
			err = buildBinary(ctx)
		}
	case "build":
		err = buildBinary(ctx)
	case "test":
		err = runTests(ctx)
	case "clean":
		err = clean(ctx)
	case "release":
		err = buildRelease(ctx)
	default:
		showHelp()
		os.Exit(1)
	}

	if err != nil {
		printError(err.Error())
		os.Exit(1)
	}

	printSuccess(fmt.Sprintf("Build completed in %s", time.Since(startTime).Round(time.Millisecond)))
}

func printHeader() {
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println(colorCyan + "        DataCleanr - Build System          " + colorReset)
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println()
}

func printInfo(msg string) {
	fmt.Printf("%s[INFO]%s %s\n", colorBlue, colorReset, msg)
}

func printSuccess(msg string) {
	fmt.Printf("%s[SUCCESS]%s %s\n", colorGreen, colorReset, msg)
}

func printError(msg string) {
	fmt.Printf("%s[ERROR]%s %s\n", colorRed, colorReset, msg)
}

func printWarning(msg string) {
	fmt.Printf("%s[WARNING]%s %s\n", colorYellow, colorReset, msg)
}

// gitCommit returns the short HEAD hash, or "unknown" outside a checkout
func gitCommit() string {
	out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}

func ldflags() string {
	buildTime := time.Now().UTC().Format(time.RFC3339)
	return strings.Join([]string{
		"-s -w",
		fmt.Sprintf("-X %s/pkg/contracts.BuildTime=%s", module, buildTime),
		fmt.Sprintf("-X %s/pkg/contracts.GitCommit=%s", module, gitCommit()),
		fmt.Sprintf("-X %s/internal/app.BuildTime=%s", module, buildTime),
	}, " ")
}

func outputName(goos, goarch string, suffixed bool) string {
	name := executable
	if suffixed {
		name = fmt.Sprintf("%s-%s-%s", executable, goos, goarch)
	}
	if goos == "windows" {
		name += ".exe"
	}
	return name
}

func goCommand(ctx *BuildContext, args ...string) *exec.Cmd {
	if ctx.Verbose {
		fmt.Printf("Running: go %s\n", strings.Join(args, " "))
	}
	cmd := exec.Command("go", args...)
	cmd.Dir = rootDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), "GOOS="+ctx.GOOS, "GOARCH="+ctx.GOARCH)
	return cmd
}

func compile(ctx *BuildContext, output string) error {
	args := []string{"build"}
	if ctx.Verbose {
		args = append(args, "-v")
	}
	args = append(args, "-trimpath", "-ldflags", ldflags(), "-o", output, "./cmd/"+executable)

	if err := goCommand(ctx, args...).Run(); err != nil {
		return fmt.Errorf("go build %s/%s failed: %w", ctx.GOOS, ctx.GOARCH, err)
	}
	return nil
}

// buildBinary builds the server for the host platform into dist/
func buildBinary(ctx *BuildContext) error {
	printInfo(fmt.Sprintf("Building %s for %s/%s...", executable, ctx.GOOS, ctx.GOARCH))
	if err := os.MkdirAll(distDir, 0o755); err != nil {
		return fmt.Errorf("create dist directory: %w", err)
	}
	return compile(ctx, filepath.Join(distDir, outputName(ctx.GOOS, ctx.GOARCH, false)))
}

func runTests(ctx *BuildContext) error {
	printInfo("Running Go tests...")
	args := []string{"test", "-race"}
	if ctx.Verbose {
		args = append(args, "-v")
	}
	args = append(args, "./...")

	if err := goCommand(ctx, args...).Run(); err != nil {
		return fmt.Errorf("go tests failed: %w", err)
	}
	printSuccess("All tests passed")
	return nil
}

func clean(ctx *BuildContext) error {
	printInfo("Cleaning build artifacts...")
	if err := os.RemoveAll(distDir); err != nil {
		return fmt.Errorf("remove %s: %w", distDir, err)
	}
	if ctx.Verbose {
		printInfo("Removed " + distDir)
	}
	return nil
}

// buildRelease cross-compiles static binaries for every release target
func buildRelease(ctx *BuildContext) error {
	printInfo("Building release binaries...")
	if err := clean(ctx); err != nil {
		return err
	}
	if err := os.MkdirAll(distDir, 0o755); err != nil {
		return fmt.Errorf("create dist directory: %w", err)
	}
	os.Setenv("CGO_ENABLED", "0")

	for _, target := range releaseTargets {
		goos, goarch, _ := strings.Cut(target, "/")
		release := &BuildContext{Verbose: ctx.Verbose, GOOS: goos, GOARCH: goarch}
		printInfo("Building " + target)
		if err := compile(release, filepath.Join(distDir, outputName(goos, goarch, true))); err != nil {
			return err
		}
	}

	content := fmt.Sprintf("DataCleanr\nBuilt: %s\nCommit: %s\n",
		time.Now().Format("2006-01-02 15:04:05"), gitCommit())
	if err := os.WriteFile(filepath.Join(distDir, "VERSION.txt"), []byte(content), 0o644); err != nil {
		printWarning(fmt.Sprintf("Failed to write VERSION.txt: %v", err))
	}

	printSuccess("Release build completed")
	return nil
}

func showHelp() {
	fmt.Println("Usage: go run build.go [-target=TARGET] [-v]")
	fmt.Println()
	fmt.Println("Targets:")
	fmt.Println("  all      Run tests, then build for the host platform (default)")
	fmt.Println("  build    Build dist/" + executable)
	fmt.Println("  test     Run go test -race ./...")
	fmt.Println("  clean    Remove dist/")
	fmt.Println("  release  Cross-compile " + strings.Join(releaseTargets, ", "))
}
