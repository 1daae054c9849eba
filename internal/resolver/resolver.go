// Package resolver guarantees that the accelerator toolkit, the
// deep-learning framework build, and the framework-extension wheel index
// agree on one compatible version triple before any installation runs.
package resolver

import (
	"strings"

	"github.com/MatthewPierson90/cultionet/internal/config"
	"github.com/MatthewPierson90/cultionet/internal/logger"
)

// Resolve checks cfg against the compatibility matrix and returns the
// agreed Resolution. It fails fast on any disagreement that the build
// procedure itself would otherwise defer to first runtime use:
//
//   - unknown toolkit tag or framework version with no build for it;
//   - a base image that does not embed the toolkit release;
//   - a declared framework index that differs from the derived one;
//   - a declared extension index that differs byte-for-byte from the one
//     derived from the resolved framework version and toolkit.
func Resolve(cfg *config.Config) (*Resolution, error) {
	toolkit := cfg.Base.Toolkit

	entry, ok := matrix[toolkit]
	if !ok {
		return nil, &UnsupportedError{Toolkit: toolkit, Supported: SupportedToolkits()}
	}

	fwVersion := cfg.Framework.Version
	if !supportsFramework(entry, fwVersion) {
		return nil, &UnsupportedError{
			Toolkit:   toolkit,
			Framework: fwVersion,
			Supported: entry.frameworks,
		}
	}

	baseImage := cfg.Base.Image
	if baseImage == "" {
		baseImage = entry.baseImage
	} else if entry.release != "" && !strings.Contains(baseImage, entry.release) {
		return nil, &MismatchError{
			Field:    "base.image",
			Declared: baseImage,
			Derived:  entry.baseImage,
			Reason:   "image reference does not embed toolkit release " + entry.release,
		}
	}

	fwIndex := frameworkIndexURL(toolkit)
	if cfg.Framework.Index != "" && cfg.Framework.Index != fwIndex {
		return nil, &MismatchError{
			Field:    "framework.index",
			Declared: cfg.Framework.Index,
			Derived:  fwIndex,
			Reason:   "framework index must match toolkit " + toolkit,
		}
	}

	// The extension index embeds both the framework version and the
	// toolkit tag. Derive it and require byte equality with any declared
	// value; trusting a hand-written URL here is how binary-incompatible
	// extension builds slip through to first use.
	extIndex := extensionIndexURL(fwVersion, toolkit)
	if cfg.Extensions.Index != "" && cfg.Extensions.Index != extIndex {
		return nil, &MismatchError{
			Field:    "extensions.index",
			Declared: cfg.Extensions.Index,
			Derived:  extIndex,
			Reason:   "extension index must embed the exact framework version and toolkit",
		}
	}

	res := &Resolution{
		Toolkit:          toolkit,
		ToolkitRelease:   entry.release,
		BaseImage:        baseImage,
		Framework:        cfg.Framework.Package,
		FrameworkVersion: fwVersion,
		FrameworkIndex:   fwIndex,
		ExtensionIndex:   extIndex,
	}

	logger.Debug().
		Str("toolkit", res.Toolkit).
		Str("framework", res.Framework+"=="+res.FrameworkVersion).
		Str("extension_index", res.ExtensionIndex).
		Msg("resolved version triple")

	return res, nil
}

func supportsFramework(entry toolkitEntry, version string) bool {
	for _, v := range entry.frameworks {
		if v == version {
			return true
		}
	}
	return false
}
