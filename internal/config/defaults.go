package config

// DefaultConfig returns a Config matching the upstream cultionet recipe:
// CUDA 11.3 base on Ubuntu 20.04, ubuntugis natives, torch 1.12.1 from the
// cu113 wheel index, the PyG extension family, a derived GDAL binding, and
// the git-sourced first-party dependencies.
func DefaultConfig() *Config {
	return &Config{
		Version: "1",
		Project: "cultionet",
		Base: BaseConfig{
			Toolkit: "cu113",
			OS:      "ubuntu20.04",
		},
		Native: NativeConfig{
			PPA: "ppa:ubuntugis/ppa",
			Packages: []string{
				"libgeos-dev",
				"libspatialindex-dev",
				"libgdal-dev",
				"gdal-bin",
				"libproj-dev",
			},
		},
		Bindings: []Binding{
			{Key: "CPLUS_INCLUDE_PATH", Value: "/usr/include/gdal"},
			{Key: "C_INCLUDE_PATH", Value: "/usr/include/gdal"},
			{Key: "LD_LIBRARY_PATH", Value: "/usr/local/lib"},
			{Key: "PATH", Value: "$HOME/.local/bin:$PATH"},
		},
		Framework: FrameworkConfig{
			Package: "torch",
			Version: "1.12.1",
		},
		Extensions: ExtensionsConfig{
			Packages: []string{
				"torch-scatter",
				"torch-sparse",
				"torch-cluster",
				"torch-spline-conv",
				"torch-geometric",
			},
		},
		Geospatial: GeospatialConfig{
			Binding: "GDAL",
			Derive:  true,
		},
		Sources: []SourceConfig{
			{Name: "geowombat", Repo: "https://github.com/jgrss/geowombat.git"},
			{Name: "tsaug", Repo: "https://github.com/jgrss/tsaug.git"},
			{Name: "cultionet", Repo: "https://github.com/jgrss/cultionet.git"},
		},
		Manifest: "setup.cfg",
	}
}

// DefaultConfigYAML returns the default configuration as YAML for scaffolding
const DefaultConfigYAML = `# cultienv configuration
version: "1"
project: "cultionet"

base:
  # Accelerator toolkit tag; fixes the framework index and extension index
  toolkit: "cu113"
  os: "ubuntu20.04"
  # Optional: override the full base image reference
  # image: "nvidia/cuda:11.3.1-cudnn8-devel-ubuntu20.04"

native:
  ppa: "ppa:ubuntugis/ppa"
  packages:
    - libgeos-dev
    - libspatialindex-dev
    - libgdal-dev
    - gdal-bin
    - libproj-dev

# Toolchain path bindings; applied before any step that compiles against
# the native headers
bindings:
  - key: CPLUS_INCLUDE_PATH
    value: /usr/include/gdal
  - key: C_INCLUDE_PATH
    value: /usr/include/gdal
  - key: LD_LIBRARY_PATH
    value: /usr/local/lib
  - key: PATH
    value: $HOME/.local/bin:$PATH

framework:
  package: "torch"
  version: "1.12.1"
  # index derived from base.toolkit when omitted

extensions:
  packages:
    - torch-scatter
    - torch-sparse
    - torch-cluster
    - torch-spline-conv
    - torch-geometric
  # index derived from framework.version + base.toolkit when omitted

geospatial:
  binding: "GDAL"
  # query gdal-config for the version at build time instead of pinning
  derive: true

sources:
  - name: geowombat
    repo: https://github.com/jgrss/geowombat.git
  - name: tsaug
    repo: https://github.com/jgrss/tsaug.git
  - name: cultionet
    repo: https://github.com/jgrss/cultionet.git

manifest: setup.cfg
`
