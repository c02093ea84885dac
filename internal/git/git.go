package git

import (
	"fmt"
	"os/exec"
	"strings"
)

// StoreStatus contains git status information for a lockbox file
type StoreStatus struct {
	IsRepo  bool
	Tracked bool
	Ignored bool
}

// IsGitRepo checks if the working directory is inside a git repository
func IsGitRepo(workDir string) bool {
	cmd := exec.Command("git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = workDir
	return cmd.Run() == nil
}

// IsTracked checks if a file is tracked by git
func IsTracked(workDir, path string) bool {
	cmd := exec.Command("git", "ls-files", "--", path)
	cmd.Dir = workDir
	output, err := cmd.Output()
	if err != nil {
		return false
	}

	return len(strings.TrimSpace(string(output))) > 0
}

// IsIgnored checks if a file is ignored by git (handles all .gitignore files)
func IsIgnored(workDir, path string) bool {
	cmd := exec.Command("git", "check-ignore", "-q", "--", path)
	cmd.Dir = workDir

	// git check-ignore returns exit code 0 if file is ignored
	return cmd.Run() == nil
}

// CheckStore reports the git status of the lockbox file
func CheckStore(workDir, storePath string) *StoreStatus {
	status := &StoreStatus{}
	if !IsGitRepo(workDir) {
		return status
	}

	status.IsRepo = true
	status.Tracked = IsTracked(workDir, storePath)
	status.Ignored = IsIgnored(workDir, storePath)
	return status
}

// FormatStoreStatus formats lockbox git status for display
func FormatStoreStatus(storePath string, status *StoreStatus) string {
	if !status.IsRepo {
		return ""
	}

	var result strings.Builder
	result.WriteString("\nGit:\n")
	switch {
	case status.Tracked:
		result.WriteString(fmt.Sprintf("   ok: %s is tracked by git\n", storePath))
	case status.Ignored:
		result.WriteString(fmt.Sprintf("   info: %s is ignored by git\n", storePath))
	default:
		result.WriteString(fmt.Sprintf("   info: %s not tracked (it holds only locked values, safe to commit)\n", storePath))
	}
	return result.String()
}

// PlaintextWarning returns a warning when a plaintext output file could end
// up in git, or an empty string when it is safe
func PlaintextWarning(workDir, path string) string {
	if !IsGitRepo(workDir) {
		return ""
	}
	if IsTracked(workDir, path) {
		return fmt.Sprintf("warning: %s is tracked by git (run: git rm --cached %s)", path, path)
	}
	if !IsIgnored(workDir, path) {
		return fmt.Sprintf("warning: %s not in .gitignore", path)
	}
	return ""
}
