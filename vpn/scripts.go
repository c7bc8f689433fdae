package vpn

import (
	_ "embed"
	"os"
	"path/filepath"

	"github.com/yllada/wireguard-gui/common"
)

//go:embed scripts/wg.sh
var toggleScript []byte

//go:embed scripts/askpass.sh
var askpassScript []byte

// InstallScripts writes the toggle and askpass helpers into configDir with
// mode 0700 and makes sure the profiles directory exists. Existing copies
// are overwritten so upgrades ship the current scripts.
func InstallScripts(configDir string) error {
	if err := common.EnsureDir(filepath.Join(configDir, common.ProfilesDirName)); err != nil {
		return common.NewIoError("mkdir", configDir, err)
	}

	scripts := map[string][]byte{
		common.ToggleScriptName: toggleScript,
		common.AskpassName:      askpassScript,
	}
	for name, body := range scripts {
		path := filepath.Join(configDir, name)
		if err := os.WriteFile(path, body, 0700); err != nil {
			return common.NewIoError("write", path, err)
		}
		// WriteFile keeps the mode of an existing file.
		if err := os.Chmod(path, 0700); err != nil {
			return common.NewIoError("chmod", path, err)
		}
	}
	return nil
}
