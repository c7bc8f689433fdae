package vpn

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/yllada/wireguard-gui/common"
)

// ImportResult lists the profile names created and the files rejected, in
// input order.
type ImportResult struct {
	Success []string        `json:"success"`
	Failed  []ImportFailure `json:"failed"`
}

// ImportFailure explains why one input file was not imported.
type ImportFailure struct {
	FileName string `json:"file_name"`
	Error    string `json:"error"`
}

// ExportResult lists the profiles copied and the ones that failed.
type ExportResult struct {
	Success []string        `json:"success"`
	Failed  []ExportFailure `json:"failed"`
}

// ExportFailure explains why one profile was not exported.
type ExportFailure struct {
	ProfileName string `json:"profile_name"`
	Error       string `json:"error"`
}

// maxCollisionSuffix bounds the _N search when resolving name collisions.
const maxCollisionSuffix = 10000

// Import copies each file into the store. The profile name is the file
// name without its extension, stripped to letters and digits; collisions
// get _1, _2, ... appended. A bad file is recorded and the batch continues.
func (s *ProfileStore) Import(paths []string) *ImportResult {
	result := &ImportResult{Success: []string{}, Failed: []ImportFailure{}}

	for _, path := range paths {
		name, err := s.importOne(path)
		if err != nil {
			fileName := filepath.Base(path)
			if fileName == "." || fileName == string(filepath.Separator) {
				fileName = path
			}
			common.LogWarn("Import of %s failed: %v", path, err)
			result.Failed = append(result.Failed, ImportFailure{FileName: fileName, Error: err.Error()})
			continue
		}
		common.LogInfo("Imported %s as %s", path, name)
		result.Success = append(result.Success, name)
	}
	return result
}

func (s *ProfileStore) importOne(path string) (string, error) {
	fileName := filepath.Base(path)
	if path == "" || fileName == "." || fileName == string(filepath.Separator) {
		return "", &common.ValidationError{Reason: "Invalid file name"}
	}
	if !strings.HasSuffix(fileName, common.ProfileExt) {
		return "", &common.ValidationError{Reason: fmt.Sprintf("File must have %s extension", common.ProfileExt)}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("Failed to read file: %w", err)
	}
	if len(data) < common.MinProfileContentLength {
		return "", &common.ValidationError{
			Reason: fmt.Sprintf("File content must be at least %d characters", common.MinProfileContentLength),
		}
	}

	base := SanitizeName(strings.TrimSuffix(fileName, common.ProfileExt))
	if base == "" {
		return "", &common.ValidationError{Reason: "Profile name must contain at least one alphanumeric character"}
	}

	return s.createUnique(base, string(data))
}

// createUnique writes content under base, or base_N for the first free N.
func (s *ProfileStore) createUnique(base, content string) (string, error) {
	name := base
	for i := 1; i <= maxCollisionSuffix; i++ {
		err := s.createExclusive(name, content)
		if err == nil {
			return name, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("Failed to write profile: %w", err)
		}
		name = fmt.Sprintf("%s_%d", base, i)
	}
	return "", fmt.Errorf("Failed to write profile: no free name for %s", base)
}

// Export copies every profile file into dir unchanged. Failing to read the
// profiles directory fails the whole batch, as does a dir that is the
// profiles directory itself; a failed copy only fails that profile.
func (s *ProfileStore) Export(dir string) (*ExportResult, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, common.WrapError(common.NewIoError("read dir", s.dir, err), "Failed to read profiles directory")
	}
	if sameDir(s.dir, dir) {
		return nil, common.NewIoError("export", dir, errors.New("target is the profiles directory"))
	}

	result := &ExportResult{Success: []string{}, Failed: []ExportFailure{}}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name, ok := profileName(entry.Name())
		if !ok {
			continue
		}

		dst := filepath.Join(dir, entry.Name())
		if err := copyFile(filepath.Join(s.dir, entry.Name()), dst); err != nil {
			common.LogWarn("Export of %s failed: %v", name, err)
			result.Failed = append(result.Failed, ExportFailure{ProfileName: name, Error: fmt.Sprintf("Failed to export: %v", err)})
			continue
		}
		result.Success = append(result.Success, name)
	}
	common.LogInfo("Exported %d profiles to %s (%d failed)", len(result.Success), dir, len(result.Failed))
	return result, nil
}

func sameDir(a, b string) bool {
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}

// copyFile copies src to dst with owner-only permissions, replacing dst.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
