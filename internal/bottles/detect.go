package bottles

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

const flatpakAppID = "com.usebottles.bottles"

// Flavor identifies how the Bottles installation is reached.
type Flavor string

const (
	FlavorFlatpak Flavor = "flatpak"
	FlavorNative  Flavor = "native"
)

// Commands holds the argv prefixes for every external tool the gateway
// invokes. For a flatpak installation each prefix routes through
// `flatpak run --command=...` so the tools execute inside the sandbox.
type Commands struct {
	Flavor     Flavor
	BottlesCLI []string
	Winetricks []string
	Extractor  []string
}

// Detect probes for a usable Bottles installation. flavor is "auto",
// "flatpak" or "native"; auto prefers flatpak, matching how Bottles is most
// commonly distributed.
func Detect(ctx context.Context, runner Runner, flavor string) (Commands, error) {
	if runner == nil {
		runner = CmdRunner{}
	}

	if flavor == "auto" || flavor == string(FlavorFlatpak) {
		ok, err := flatpakInstalled(ctx, runner)
		if err == nil && ok {
			return flatpakCommands(), nil
		}
		if flavor == string(FlavorFlatpak) {
			if err != nil {
				return Commands{}, fmt.Errorf("probe flatpak: %w", err)
			}
			return Commands{}, fmt.Errorf("flatpak app %s is not installed", flatpakAppID)
		}
	}

	if cmds, ok := nativeCommands(); ok {
		return cmds, nil
	}
	return Commands{}, errors.New("no Bottles installation (flatpak or native) found")
}

func flatpakInstalled(ctx context.Context, runner Runner) (bool, error) {
	res, err := runner.Run(ctx, "flatpak", []string{"list", "--app", "--columns=application"}, RunOptions{})
	if err != nil {
		return false, err
	}
	return strings.Contains(string(res.Stdout), flatpakAppID), nil
}

func flatpakCommands() Commands {
	wrap := func(command string) []string {
		return []string{"flatpak", "run", "--command=" + command, flatpakAppID}
	}
	return Commands{
		Flavor:     FlavorFlatpak,
		BottlesCLI: wrap("bottles-cli"),
		Winetricks: wrap("winetricks"),
		Extractor:  []string{"7z"},
	}
}

func nativeCommands() (Commands, bool) {
	for _, tool := range []string{"bottles-cli", "winetricks"} {
		if _, err := exec.LookPath(tool); err != nil {
			return Commands{}, false
		}
	}
	return Commands{
		Flavor:     FlavorNative,
		BottlesCLI: []string{"bottles-cli"},
		Winetricks: []string{"winetricks"},
		Extractor:  []string{"7z"},
	}, true
}
