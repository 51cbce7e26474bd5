package bottles

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bottlesmith/internal/config"
	"bottlesmith/internal/paths"
)

type Logger interface {
	Printf(format string, v ...any)
}

type noopLogger struct{}

func (noopLogger) Printf(string, ...any) {}

// Components that must be installed through bottles-cli instead of
// winetricks (GPU translation layers).
var bottlesCLIComponents = map[string]bool{
	"dxvk":       true,
	"vkd3d":      true,
	"dxvk-nvapi": true,
}

// Candidate names for the primary installer inside an extracted disk image.
var setupCandidates = []string{"setup.exe", "install.exe", "autorun.exe", "start.exe"}

// NativeShortcut is a program entry the environment manager itself tracks.
type NativeShortcut struct {
	Name string
	Path string
}

// Gateway is the typed boundary over the external environment manager. Every
// method is a blocking call with a bounded timeout, and every failure is a
// *CommandError rather than raw process output.
type Gateway struct {
	Commands Commands
	Runner   Runner
	Logger   Logger

	prefixBase  string
	environment string
	runnerName  string
	tempDir     string
	cfg         config.Config
}

func NewGateway(cfg config.Config, pp paths.DataPaths, cmds Commands, runner Runner, logger Logger) *Gateway {
	if runner == nil {
		runner = CmdRunner{}
	}
	if logger == nil {
		logger = noopLogger{}
	}
	return &Gateway{
		Commands:    cmds,
		Runner:      runner,
		Logger:      logger,
		prefixBase:  cfg.Bottles.PrefixBase,
		environment: cfg.Bottles.Environment,
		runnerName:  cfg.Bottles.Runner,
		tempDir:     pp.TempDir,
		cfg:         cfg,
	}
}

// PrefixPath returns the wine prefix directory for a bottle name.
func (g *Gateway) PrefixPath(bottle string) string {
	return filepath.Join(g.prefixBase, bottle)
}

// BottleExists reports whether a prefix directory already exists for the name.
func (g *Gateway) BottleExists(bottle string) bool {
	ok, _ := paths.DirExists(g.PrefixPath(bottle))
	return ok
}

// EnsureBottle creates the named bottle unless its prefix already exists.
// Reusing an existing bottle is expected for repeat installs, so an existing
// prefix is success, not an error.
func (g *Gateway) EnsureBottle(ctx context.Context, bottle string) error {
	if g.BottleExists(bottle) {
		g.Logger.Printf("bottle %s: reusing existing prefix", bottle)
		return nil
	}

	g.Logger.Printf("bottle %s: creating (environment=%s)", bottle, g.environment)
	args := append(append([]string{}, g.Commands.BottlesCLI[1:]...),
		"new", "--bottle-name", bottle, "--environment", g.environment)
	_, err := g.run(ctx, "create bottle", g.cfg.CreateTimeout(), g.Commands.BottlesCLI[0], args, RunOptions{})
	if err != nil {
		return err
	}

	if g.Commands.Flavor == FlavorFlatpak {
		if regErr := g.registerBottle(bottle); regErr != nil {
			g.Logger.Printf("bottle %s: registry record not written: %v", bottle, regErr)
		}
	}
	return nil
}

// registerBottle writes the manager's per-bottle registry record so the GUI
// lists bottles created from the CLI.
func (g *Gateway) registerBottle(bottle string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	dir := filepath.Join(home, ".var/app", flatpakAppID, "data/bottles/bottles")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	payload := map[string]any{
		"name":        bottle,
		"path":        g.PrefixPath(bottle),
		"environment": g.environment,
		"runner":      g.runnerName,
		"dxvk":        true,
		"vkd3d":       false,
		"dxvk_nvapi":  false,
		"arch":        "win64",
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, bottle+".json"), data, 0o644)
}

// ExtractImage unpacks a disk image into the temp directory and returns the
// path of the primary installer binary inside it.
func (g *Gateway) ExtractImage(ctx context.Context, imagePath string) (string, error) {
	stem := strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath))
	target := filepath.Join(g.tempDir, stem)
	if err := os.RemoveAll(target); err != nil {
		return "", fmt.Errorf("clear extraction dir: %w", err)
	}
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", fmt.Errorf("create extraction dir: %w", err)
	}

	g.Logger.Printf("extracting %s -> %s", imagePath, target)
	args := append(append([]string{}, g.Commands.Extractor[1:]...), "x", imagePath, "-o"+target, "-y")
	if _, err := g.run(ctx, "extract image", g.cfg.ExtractTimeout(), g.Commands.Extractor[0], args, RunOptions{}); err != nil {
		return "", err
	}

	staged, err := findSetupBinary(target)
	if err != nil {
		return "", &CommandError{Op: "extract image", ExitCode: -1, Err: err}
	}
	return staged, nil
}

// findSetupBinary looks for a well-known installer name near the image root.
func findSetupBinary(root string) (string, error) {
	entries, err := collectShallowFiles(root, 1)
	if err != nil {
		return "", err
	}
	for _, candidate := range setupCandidates {
		for _, path := range entries {
			if strings.EqualFold(filepath.Base(path), candidate) {
				return path, nil
			}
		}
	}
	if len(entries) == 0 {
		return "", fmt.Errorf("empty extraction: %s", root)
	}
	return "", fmt.Errorf("no installer binary found in %s", root)
}

func collectShallowFiles(root string, maxDepth int) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		depth := strings.Count(rel, string(filepath.Separator))
		if d.IsDir() {
			if depth > maxDepth {
				return filepath.SkipDir
			}
			return nil
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

// CopyTree copies a source directory into the bottle's drive_c under subdir
// and returns the destination root. A mid-copy failure leaves the partial
// tree in place; the caller owns that policy. The copy runs to completion
// even when the request is cancelled, for the same reason external calls do:
// a half-copied tree the workflow then abandons at the next stage boundary
// beats an ambiguous one.
func (g *Gateway) CopyTree(_ context.Context, src, bottle, subdir string) (string, error) {
	dest := filepath.Join(g.PrefixPath(bottle), "drive_c", subdir)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("create copy destination: %w", err)
	}

	g.Logger.Printf("bottle %s: copying %s -> %s", bottle, src, dest)
	err := filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(src, path)
		if relErr != nil {
			return relErr
		}
		target := filepath.Join(dest, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if d.Type()&os.ModeSymlink != 0 {
			linked, linkErr := os.Readlink(path)
			if linkErr != nil {
				return linkErr
			}
			return os.Symlink(linked, target)
		}
		return copyFile(path, target)
	})
	if err != nil {
		return "", fmt.Errorf("copy tree: %w", err)
	}
	return dest, nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// InstallComponent installs a runtime component into the bottle. GPU
// translation components go through bottles-cli; everything else is a
// winetricks verb run with WINEPREFIX pointed at the bottle.
func (g *Gateway) InstallComponent(ctx context.Context, bottle, componentID string) error {
	g.Logger.Printf("bottle %s: installing component %s", bottle, componentID)

	if bottlesCLIComponents[componentID] {
		args := append(append([]string{}, g.Commands.BottlesCLI[1:]...),
			"add", "-b", bottle, "-n", componentID, "-p", "dummy")
		_, err := g.run(ctx, "install component "+componentID, g.cfg.InstallTimeout(), g.Commands.BottlesCLI[0], args, RunOptions{})
		return err
	}

	args := append(append([]string{}, g.Commands.Winetricks[1:]...), componentID)
	opts := RunOptions{Env: []string{"WINEPREFIX=" + g.PrefixPath(bottle)}}
	res, err := g.run(ctx, "install component "+componentID, g.cfg.InstallTimeout(), g.Commands.Winetricks[0], args, opts)
	if err != nil {
		// winetricks exits non-zero when a verb was installed earlier; that
		// still satisfies the idempotence contract.
		if strings.Contains(string(res.Stdout), "already installed") {
			g.Logger.Printf("bottle %s: component %s already installed", bottle, componentID)
			return nil
		}
		return err
	}
	return nil
}

// RunBinary executes a Windows binary inside the bottle and waits for
// completion or the run timeout.
func (g *Gateway) RunBinary(ctx context.Context, bottle, binaryPath string) error {
	g.Logger.Printf("bottle %s: running %s", bottle, binaryPath)
	args := append(append([]string{}, g.Commands.BottlesCLI[1:]...),
		"run", "--bottle", bottle, binaryPath)
	_, err := g.run(ctx, "run binary", g.cfg.RunTimeout(), g.Commands.BottlesCLI[0], args, RunOptions{})
	return err
}

// ListShortcuts returns the program entries the environment manager tracks
// for the bottle.
func (g *Gateway) ListShortcuts(ctx context.Context, bottle string) ([]NativeShortcut, error) {
	args := append(append([]string{}, g.Commands.BottlesCLI[1:]...), "programs", "-b", bottle)
	res, err := g.run(ctx, "list shortcuts", g.cfg.ShortcutTimeout(), g.Commands.BottlesCLI[0], args, RunOptions{})
	if err != nil {
		return nil, err
	}

	var shortcuts []NativeShortcut
	for _, line := range strings.Split(string(res.Stdout), "\n") {
		name := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "-"))
		if name == "" || strings.HasPrefix(name, "Could not") {
			continue
		}
		shortcuts = append(shortcuts, NativeShortcut{Name: name})
	}
	return shortcuts, nil
}

// CreateShortcut registers a program entry for a binary that lives inside the
// bottle. The manager expects the path relative to drive_c.
func (g *Gateway) CreateShortcut(ctx context.Context, bottle, name, binaryPath string) error {
	prefix := g.PrefixPath(bottle)
	rel, err := filepath.Rel(prefix, binaryPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return &CommandError{
			Op:       "create shortcut",
			ExitCode: -1,
			Err:      fmt.Errorf("binary %s is not inside bottle prefix %s", binaryPath, prefix),
		}
	}
	rel = strings.TrimPrefix(filepath.ToSlash(rel), "drive_c/")

	args := append(append([]string{}, g.Commands.BottlesCLI[1:]...),
		"add", "-b", bottle, "-n", name, "-p", rel)
	opts := RunOptions{
		Dir: filepath.Join(prefix, "drive_c"),
		Env: []string{"WINEPREFIX=" + prefix},
	}
	_, err = g.run(ctx, "create shortcut", g.cfg.ShortcutTimeout(), g.Commands.BottlesCLI[0], args, opts)
	return err
}

// run invokes an external command with a bounded timeout and translates
// failures into typed errors. Cancelling the request never kills an in-flight
// call: killing a half-run installer or winetricks verb leaves the prefix in
// a worse state than letting the call finish, so the call runs to completion
// or its own timeout and the workflow aborts at the next stage boundary.
func (g *Gateway) run(ctx context.Context, op string, timeout time.Duration, command string, args []string, opts RunOptions) (RunResult, error) {
	callCtx := context.WithoutCancel(ctx)
	if timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(callCtx, timeout)
		defer cancel()
	}
	res, err := g.Runner.Run(callCtx, command, args, opts)
	return res, translate(op, res, err, callCtx)
}
