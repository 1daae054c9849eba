package resolver

import (
	"fmt"
	"sort"
)

// toolkitEntry is one row of the compatibility matrix: an accelerator
// toolkit tag, its dotted release, the base images that ship it, and the
// framework versions with published builds for it.
type toolkitEntry struct {
	release    string   // dotted toolkit release, e.g. "11.3"
	baseImage  string   // default base image for this toolkit
	frameworks []string // framework versions with builds tagged for this toolkit
}

// matrix is the explicit framework/toolkit/extension compatibility table.
// Rows cover the toolkits the PyG wheel archive publishes extension builds
// for; the extension index for any supported pair is derived by
// extensionIndexURL, never declared by hand.
var matrix = map[string]toolkitEntry{
	"cpu": {
		release:    "",
		baseImage:  "ubuntu:20.04",
		frameworks: []string{"1.11.0", "1.12.1", "1.13.1", "2.0.1"},
	},
	"cu102": {
		release:    "10.2",
		baseImage:  "nvidia/cuda:10.2-cudnn8-devel-ubuntu18.04",
		frameworks: []string{"1.11.0", "1.12.1"},
	},
	"cu111": {
		release:    "11.1",
		baseImage:  "nvidia/cuda:11.1.1-cudnn8-devel-ubuntu20.04",
		frameworks: []string{"1.9.1", "1.10.2"},
	},
	"cu113": {
		release:    "11.3",
		baseImage:  "nvidia/cuda:11.3.1-cudnn8-devel-ubuntu20.04",
		frameworks: []string{"1.11.0", "1.12.1"},
	},
	"cu116": {
		release:    "11.6",
		baseImage:  "nvidia/cuda:11.6.2-cudnn8-devel-ubuntu20.04",
		frameworks: []string{"1.12.1", "1.13.1"},
	},
	"cu117": {
		release:    "11.7",
		baseImage:  "nvidia/cuda:11.7.1-cudnn8-devel-ubuntu20.04",
		frameworks: []string{"1.13.1", "2.0.1"},
	},
}

// SupportedToolkits returns the toolkit tags present in the matrix, sorted.
func SupportedToolkits() []string {
	tags := make([]string, 0, len(matrix))
	for tag := range matrix {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// SupportedFrameworks returns the framework versions with builds for the
// given toolkit tag, or nil if the toolkit is unknown.
func SupportedFrameworks(toolkit string) []string {
	entry, ok := matrix[toolkit]
	if !ok {
		return nil
	}
	out := make([]string, len(entry.frameworks))
	copy(out, entry.frameworks)
	return out
}

// frameworkIndexURL derives the framework package index for a toolkit tag.
func frameworkIndexURL(toolkit string) string {
	if toolkit == "cpu" {
		return "https://download.pytorch.org/whl/cpu"
	}
	return fmt.Sprintf("https://download.pytorch.org/whl/%s", toolkit)
}

// extensionIndexURL derives the extension wheel index from the exact
// framework version and toolkit tag. Both parameters appear verbatim in
// the URL; any disagreement with the installed framework means the wheels
// silently link against the wrong build.
func extensionIndexURL(frameworkVersion, toolkit string) string {
	return fmt.Sprintf("https://data.pyg.org/whl/torch-%s+%s.html", frameworkVersion, toolkit)
}
