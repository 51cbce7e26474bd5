package deps

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Provided tells whether a component needs installation or ships with the
// base runtime.
type Provided string

const (
	// ProvidedBase marks components the stock Wine build already covers;
	// they are reported but never installed.
	ProvidedBase Provided = "base-runtime"
	// ProvidedInstall marks components that must be installed into the
	// bottle before the target runs.
	ProvidedInstall Provided = "must-install"
)

// Component is one installable dependency family from the catalog.
type Component struct {
	ID       string
	Provided Provided
}

// Catalog maps import-table library names to runtime components. The mapping
// is append-only: overlays may add libraries but never redefine existing ones,
// so resolution stays stable across versions.
type Catalog struct {
	byLibrary map[string]Component
}

// Wine ships working builtins for these families; installing them is wasted
// work at best and breaks prefixes at worst.
var baseRuntimeComponents = map[string]bool{
	"winhttp":  true,
	"wininet":  true,
	"wsock32":  true,
	"iphlpapi": true,
	"riched20": true,
	"quartz":   true,
	"msxml3":   true,
}

// builtinMap is the shipped library-to-component table. Only component IDs
// that exist as winetricks verbs or bottles-cli components appear here.
var builtinMap = map[string]string{
	// DirectX / graphics: DXVK translates d3d11/d3d12 to Vulkan.
	"d3d9.dll":           "d3dx9",
	"d3d10.dll":          "d3dx10",
	"d3d11.dll":          "dxvk",
	"d3d11_1.dll":        "dxvk",
	"d3d11_2.dll":        "dxvk",
	"d3d11_3.dll":        "dxvk",
	"d3d11_4.dll":        "dxvk",
	"d3d12.dll":          "vkd3d",
	"d3dcompiler_43.dll": "d3dcompiler_43",
	"d3dcompiler_47.dll": "d3dcompiler_47",
	"dxgi.dll":           "dxvk",

	// Input and audio.
	"xinput1_3.dll": "xinput",
	"xinput1_4.dll": "xinput",
	"dinput8.dll":   "dinput",
	"openal32.dll":  "openal",
	"fmod.dll":      "fmod",
	"fmodex.dll":    "fmod",

	// Video codecs.
	"binkw32.dll":  "bink",
	"binkw64.dll":  "bink",
	"bink2w32.dll": "bink2",
	"bink2w64.dll": "bink2",

	// Physics.
	"physxloader.dll": "physx",
	"physx3_x86.dll":  "physx",
	"physx3_x64.dll":  "physx",

	// GPU / VR.
	"openvr_api.dll": "openvr",
	"nvapi.dll":      "dxvk-nvapi",

	// Platform loaders.
	"ubiorbitapi_r2.dll":  "ubisoftconnect",
	"uplay_r1.dll":        "ubisoftconnect",
	"uplay_r1_loader.dll": "ubisoftconnect",

	// .NET runtime.
	"mscoree.dll": "dotnet40",
	"clr.dll":     "dotnet40",
	"system.dll":  "dotnet40",

	// Visual C++ runtimes.
	"msvcp140.dll":       "vcrun2019",
	"vcruntime140.dll":   "vcrun2019",
	"msvcp140_1.dll":     "vcrun2019",
	"msvcp140_2.dll":     "vcrun2019",
	"vcomp140.dll":       "vcrun2019",
	"vcruntime140_1.dll": "vcrun2019",
	"vcruntime150.dll":   "vcrun2022",
	"msvcp150.dll":       "vcrun2022",
	"vcomp150.dll":       "vcrun2022",
	"msvcp60.dll":        "vcrun6",
	"msvcrt.dll":         "vcrun6",
	"msvcp71.dll":        "vcrun2003",
	"msvcp80.dll":        "vcrun2005",
	"msvcp90.dll":        "vcrun2008",
	"msvcp100.dll":       "vcrun2010",
	"msvcp110.dll":       "vcrun2012",
	"msvcp120.dll":       "vcrun2013",

	// System libraries and fonts.
	"mfc42.dll":    "mfc42",
	"msxml3.dll":   "msxml3",
	"msxml6.dll":   "msxml6",
	"quartz.dll":   "quartz",
	"riched20.dll": "riched20",
	"tahoma.ttf":   "tahoma",
	"arial.ttf":    "corefonts",
	"winhttp.dll":  "winhttp",
	"wininet.dll":  "wininet",
	"wsock32.dll":  "wsock32",
	"iphlpapi.dll": "iphlpapi",
}

// Builtin returns the shipped catalog.
func Builtin() *Catalog {
	c := &Catalog{byLibrary: make(map[string]Component, len(builtinMap))}
	for lib, id := range builtinMap {
		c.byLibrary[lib] = newComponent(id)
	}
	return c
}

func newComponent(id string) Component {
	provided := ProvidedInstall
	if baseRuntimeComponents[id] {
		provided = ProvidedBase
	}
	return Component{ID: id, Provided: provided}
}

// overlayFile is the on-disk shape of a catalog overlay: a flat
// library-name -> component-id map.
type overlayFile struct {
	Version   int               `yaml:"version"`
	Libraries map[string]string `yaml:"libraries"`
}

// LoadOverlay merges an append-only YAML overlay into the catalog. Entries
// for libraries the builtin table already covers are skipped so an overlay
// can never change established resolutions.
func (c *Catalog) LoadOverlay(path string) error {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read catalog overlay: %w", err)
	}

	var overlay overlayFile
	if err := yaml.Unmarshal(contents, &overlay); err != nil {
		return fmt.Errorf("unmarshal catalog overlay: %w", err)
	}

	for lib, id := range overlay.Libraries {
		lib = strings.ToLower(strings.TrimSpace(lib))
		id = strings.TrimSpace(id)
		if lib == "" || id == "" {
			continue
		}
		if _, exists := c.byLibrary[lib]; exists {
			continue
		}
		c.byLibrary[lib] = newComponent(id)
	}
	return nil
}

// LibraryMapping pairs one import-table library name with the component it
// resolves to.
type LibraryMapping struct {
	Library   string
	Component Component
}

// Entries returns every mapping in the catalog, sorted by library name.
func (c *Catalog) Entries() []LibraryMapping {
	out := make([]LibraryMapping, 0, len(c.byLibrary))
	for lib, comp := range c.byLibrary {
		out = append(out, LibraryMapping{Library: lib, Component: comp})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Library < out[j].Library
	})
	return out
}

// Resolve looks up a library name, case-insensitively.
func (c *Catalog) Resolve(library string) (Component, bool) {
	comp, ok := c.byLibrary[strings.ToLower(strings.TrimSpace(library))]
	return comp, ok
}

// Len returns the number of mapped libraries.
func (c *Catalog) Len() int {
	return len(c.byLibrary)
}
