package resolver

import (
	"errors"
	"testing"

	"github.com/MatthewPierson90/cultionet/internal/config"
	"github.com/MatthewPierson90/cultionet/internal/logger"
)

func init() {
	logger.Init(false)
}

func TestResolveDefaultConfig(t *testing.T) {
	res, err := Resolve(config.DefaultConfig())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if res.Toolkit != "cu113" {
		t.Errorf("Toolkit = %q, want cu113", res.Toolkit)
	}
	if res.ToolkitRelease != "11.3" {
		t.Errorf("ToolkitRelease = %q, want 11.3", res.ToolkitRelease)
	}
	if res.BaseImage != "nvidia/cuda:11.3.1-cudnn8-devel-ubuntu20.04" {
		t.Errorf("BaseImage = %q", res.BaseImage)
	}
	if res.FrameworkIndex != "https://download.pytorch.org/whl/cu113" {
		t.Errorf("FrameworkIndex = %q", res.FrameworkIndex)
	}
	if res.ExtensionIndex != "https://data.pyg.org/whl/torch-1.12.1+cu113.html" {
		t.Errorf("ExtensionIndex = %q", res.ExtensionIndex)
	}
	if res.Triple() != "torch-1.12.1+cu113" {
		t.Errorf("Triple() = %q", res.Triple())
	}
}

func TestResolveUnknownToolkit(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Base.Toolkit = "cu999"

	_, err := Resolve(cfg)
	var unsupported *UnsupportedError
	if !errors.As(err, &unsupported) {
		t.Fatalf("Resolve() error = %v, want *UnsupportedError", err)
	}
	if unsupported.Framework != "" {
		t.Error("unknown toolkit error should not name a framework version")
	}
	if len(unsupported.Supported) == 0 {
		t.Error("error should list known toolkits")
	}
}

func TestResolveFrameworkWithoutBuild(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Base.Toolkit = "cu113"
	cfg.Framework.Version = "2.0.1" // no cu113 build published

	_, err := Resolve(cfg)
	var unsupported *UnsupportedError
	if !errors.As(err, &unsupported) {
		t.Fatalf("Resolve() error = %v, want *UnsupportedError", err)
	}
	if unsupported.Framework != "2.0.1" {
		t.Errorf("Framework = %q, want 2.0.1", unsupported.Framework)
	}
}

func TestResolveBaseImageMustEmbedRelease(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Base.Image = "nvidia/cuda:11.6.2-cudnn8-devel-ubuntu20.04" // wrong release for cu113

	_, err := Resolve(cfg)
	var mismatch *MismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("Resolve() error = %v, want *MismatchError", err)
	}
	if mismatch.Field != "base.image" {
		t.Errorf("Field = %q, want base.image", mismatch.Field)
	}
}

func TestResolveCustomBaseImageAccepted(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Base.Image = "nvidia/cuda:11.3.1-devel-ubuntu18.04"

	res, err := Resolve(cfg)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if res.BaseImage != cfg.Base.Image {
		t.Errorf("BaseImage = %q, want declared image kept", res.BaseImage)
	}
}

func TestResolveDeclaredExtensionIndexByteEquality(t *testing.T) {
	cfg := config.DefaultConfig()

	// Exact derived URL passes
	cfg.Extensions.Index = "https://data.pyg.org/whl/torch-1.12.1+cu113.html"
	if _, err := Resolve(cfg); err != nil {
		t.Fatalf("Resolve() with matching index error = %v", err)
	}

	// One character of drift fails fast
	cfg.Extensions.Index = "https://data.pyg.org/whl/torch-1.12.0+cu113.html"
	_, err := Resolve(cfg)
	var mismatch *MismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("Resolve() error = %v, want *MismatchError", err)
	}
	if mismatch.Field != "extensions.index" {
		t.Errorf("Field = %q, want extensions.index", mismatch.Field)
	}
}

func TestResolveDeclaredFrameworkIndexChecked(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Framework.Index = "https://download.pytorch.org/whl/cu116"

	_, err := Resolve(cfg)
	var mismatch *MismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("Resolve() error = %v, want *MismatchError", err)
	}
}

func TestResolveCPUToolkit(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Base.Toolkit = "cpu"
	cfg.Base.Image = ""

	res, err := Resolve(cfg)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if res.FrameworkIndex != "https://download.pytorch.org/whl/cpu" {
		t.Errorf("FrameworkIndex = %q", res.FrameworkIndex)
	}
	if res.ExtensionIndex != "https://data.pyg.org/whl/torch-1.12.1+cpu.html" {
		t.Errorf("ExtensionIndex = %q", res.ExtensionIndex)
	}
}

func TestSupportedToolkitsSorted(t *testing.T) {
	tags := SupportedToolkits()
	if len(tags) == 0 {
		t.Fatal("SupportedToolkits() should not be empty")
	}
	for i := 1; i < len(tags); i++ {
		if tags[i-1] > tags[i] {
			t.Errorf("SupportedToolkits() not sorted: %v", tags)
		}
	}
}

func TestSupportedFrameworksCopies(t *testing.T) {
	a := SupportedFrameworks("cu113")
	if len(a) == 0 {
		t.Fatal("cu113 should have supported frameworks")
	}
	a[0] = "mutated"
	b := SupportedFrameworks("cu113")
	if b[0] == "mutated" {
		t.Error("SupportedFrameworks() should return a copy")
	}
	if SupportedFrameworks("cu999") != nil {
		t.Error("unknown toolkit should return nil")
	}
}
