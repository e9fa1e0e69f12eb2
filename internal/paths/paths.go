package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type Paths struct {
	ConfigDir string
	DataDir   string
	StateDir  string
}

// Names of the files a run directory accumulates over the submit and
// release phases. Response files hold the archive's receipt verbatim.
const (
	VirtualSampleFile   = "virtual_sample.xml"
	SubmissionFile      = "submission.xml"
	ResponseFile        = "submission_response.xml"
	ReleaseFile         = "release.xml"
	ReleaseResponseFile = "release_response.xml"
)

// GetPaths returns all base paths respecting environment variables
func GetPaths() Paths {
	return Paths{
		ConfigDir: getDir("VIRSAM_CONFIG_HOME", "XDG_CONFIG_HOME", ".config", "virsam"),
		DataDir:   getDir("VIRSAM_DATA_HOME", "XDG_DATA_HOME", ".local/share", "virsam"),
		StateDir:  getDir("VIRSAM_STATE_HOME", "XDG_STATE_HOME", ".local/state", "virsam"),
	}
}

func getDir(virsamEnv, xdgEnv, defaultBase, appName string) string {
	// 1. Check VIRSAM-specific env
	if dir := os.Getenv(virsamEnv); dir != "" {
		return dir
	}

	// 2. Check XDG env
	if xdgBase := os.Getenv(xdgEnv); xdgBase != "" {
		return filepath.Join(xdgBase, appName)
	}

	// 3. Use default
	home, _ := os.UserHomeDir()
	return filepath.Join(home, defaultBase, appName)
}

// GetConfigFilePath returns the path to the configuration file.
func GetConfigFilePath() string {
	if path := os.Getenv("VIRSAM_CONFIG"); path != "" {
		return path
	}
	return filepath.Join(GetPaths().ConfigDir, "config.yaml")
}

// GetJournalPath returns the path to the submission journal database.
func GetJournalPath() string {
	if path := os.Getenv("VIRSAM_JOURNAL_PATH"); path != "" {
		return path
	}
	return filepath.Join(GetPaths().DataDir, "journal.db")
}

// VirtualSamplePath returns the composed sample document path in a run directory.
func VirtualSamplePath(runDir string) string {
	return filepath.Join(runDir, VirtualSampleFile)
}

// SubmissionPath returns the submission envelope path in a run directory.
func SubmissionPath(runDir string) string {
	return filepath.Join(runDir, SubmissionFile)
}

// ResponsePath returns the persisted submit receipt path in a run directory.
func ResponsePath(runDir string) string {
	return filepath.Join(runDir, ResponseFile)
}

// ReleasePath returns the release envelope path in a run directory.
func ReleasePath(runDir string) string {
	return filepath.Join(runDir, ReleaseFile)
}

// ReleaseResponsePath returns the persisted release receipt path in a run directory.
func ReleaseResponsePath(runDir string) string {
	return filepath.Join(runDir, ReleaseResponseFile)
}

// SourceSamplePath returns where a fetched source sample document is
// cached verbatim inside a run directory.
func SourceSamplePath(runDir, accession string) string {
	return filepath.Join(runDir, accession+".xml")
}

// StudyFilePath returns where a study project document is written. File
// names derive from the species name with spaces flattened.
func StudyFilePath(dir, species, studyType string) string {
	return filepath.Join(dir, speciesFileName(species)+".study."+studyType+".xml")
}

// UmbrellaFilePath returns where an umbrella project document is written.
func UmbrellaFilePath(dir, species string) string {
	return filepath.Join(dir, speciesFileName(species)+".umbrella.xml")
}

// ReceiptPathFor returns where the archive's receipt for a document is
// persisted, next to the document itself.
func ReceiptPathFor(xmlPath string) string {
	return strings.TrimSuffix(xmlPath, ".xml") + ".receipt.xml"
}

func speciesFileName(species string) string {
	return strings.ReplaceAll(species, " ", "_")
}

// EnsureDirectories creates all necessary directories
func EnsureDirectories() error {
	paths := GetPaths()
	dirs := []string{
		paths.ConfigDir,
		paths.DataDir,
		paths.StateDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
