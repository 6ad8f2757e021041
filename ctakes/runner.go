package ctakes

import (
	"github.com/barcastaff/cTAKES-mCODE/logger"
	"github.com/barcastaff/cTAKES-mCODE/types"
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

var runnerLogger = logger.NewLogger("Pipeline runner")

// Runner invokes the external cTAKES piper pipeline on plain text notes
// and collects the XMI annotation files it produces.
type Runner struct {
	installationPath string
	pipeline         string
	umlsKey          string
	xmiOutputDir     string
}

func NewRunner(config *types.Config) *Runner {
	return &Runner{
		installationPath: config.CTakes.InstallationPath,
		pipeline:         config.Pipeline.Name,
		umlsKey:          config.CTakes.UMLSAPIKey,
		xmiOutputDir:     config.Paths.XMIOutputDir,
	}
}

// Run annotates the note file or directory of .txt notes at inputPath and
// returns the XMI file paths the pipeline wrote, one per note in name
// order. Notes the pipeline skipped are logged and left out, a run that
// produces no XMI files at all is an error.
func (r *Runner) Run(inputPath string) ([]string, error) {
	xmiDir, err := filepath.Abs(r.xmiOutputDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(xmiDir, 0700); err != nil {
		return nil, err
	}

	inputDir, names, err := collectInputs(inputPath)
	if err != nil {
		return nil, err
	}

	script := filepath.Join(r.installationPath, "bin", "runPiperFile.sh")
	cmd := exec.Command(script,
		"-p", r.pipeline,
		"-i", inputDir,
		"-o", xmiDir,
		"--xmiOut", xmiDir,
		"--key", r.umlsKey,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runnerLogger.Info().
		Str("pipeline", r.pipeline).
		Str("input", inputDir).
		Str("output", xmiDir).
		Int("notes", len(names)).
		Msg("Running annotation pipeline")

	if err := cmd.Run(); err != nil {
		runnerLogger.Err(err).
			Str("stderr", strings.TrimSpace(stderr.String())).
			Msg("Annotation pipeline failed")
		return nil, fmt.Errorf("run %s: %w", script, err)
	}

	runnerLogger.Info().Msg("Annotation pipeline completed")
	if out := strings.TrimSpace(stdout.String()); out != "" {
		runnerLogger.Debug().Msg(out)
	}
	if errOut := strings.TrimSpace(stderr.String()); errOut != "" {
		runnerLogger.Debug().Str("stream", "stderr").Msg(errOut)
	}

	xmiFiles := make([]string, 0, len(names))
	for _, name := range names {
		xmiFile := filepath.Join(xmiDir, name+".xmi")
		if _, err := os.Stat(xmiFile); err != nil {
			runnerLogger.Warn().Str("file", xmiFile).Msg("Expected XMI output not found")
			continue
		}
		xmiFiles = append(xmiFiles, xmiFile)
	}
	if len(xmiFiles) == 0 {
		return nil, fmt.Errorf("no XMI files generated in %s", xmiDir)
	}
	return xmiFiles, nil
}

// collectInputs resolves inputPath to the directory handed to the pipeline
// and the note file names whose XMI outputs to expect.
func collectInputs(inputPath string) (string, []string, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return "", nil, err
	}

	if !info.IsDir() {
		dir, err := filepath.Abs(filepath.Dir(inputPath))
		if err != nil {
			return "", nil, err
		}
		return dir, []string{filepath.Base(inputPath)}, nil
	}

	dir, err := filepath.Abs(inputPath)
	if err != nil {
		return "", nil, err
	}
	matches, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return "", nil, err
	}
	names := make([]string, 0, len(matches))
	for _, match := range matches {
		names = append(names, filepath.Base(match))
	}
	return dir, names, nil
}
