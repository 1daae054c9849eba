package manifest

import (
	"bufio"
	"fmt"
	"strings"
)

// Parse resolves setup.cfg-shaped manifest text into a Manifest.
//
// The format is INI-shaped: [section] headers, key = value pairs, and
// indented continuation lines forming value lists. Only the sections the
// packaging toolchain consumes are interpreted; unknown sections pass
// through unparsed.
func Parse(content string) (*Manifest, error) {
	m := &Manifest{
		EntryPoints: map[string][]EntryPoint{},
		PackageData: map[string][]string{},
	}

	var section, key string
	var lineNo int

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		line := strings.TrimRight(raw, " \t")

		if line == "" || strings.HasPrefix(strings.TrimSpace(line), "#") ||
			strings.HasPrefix(strings.TrimSpace(line), ";") {
			continue
		}

		// Section header
		if strings.HasPrefix(line, "[") {
			trimmed := strings.TrimSpace(line)
			if !strings.HasSuffix(trimmed, "]") {
				return nil, fmt.Errorf("line %d: malformed section header %q", lineNo, trimmed)
			}
			section = strings.TrimSuffix(strings.TrimPrefix(trimmed, "["), "]")
			key = ""
			continue
		}

		// Continuation line: indented value belonging to the current key
		if raw != strings.TrimLeft(raw, " \t") {
			value := strings.TrimSpace(line)
			if value == "" {
				continue
			}
			if key == "" {
				return nil, fmt.Errorf("line %d: continuation value %q without a key", lineNo, value)
			}
			if err := m.addValue(section, key, value); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			continue
		}

		// key = value
		eq := strings.Index(line, "=")
		if eq < 0 {
			return nil, fmt.Errorf("line %d: expected key = value, got %q", lineNo, line)
		}
		key = strings.TrimSpace(line[:eq])
		value := strings.TrimSpace(line[eq+1:])
		if value != "" {
			if err := m.addValue(section, key, value); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if m.Name == "" {
		return nil, fmt.Errorf("manifest declares no package name")
	}

	return m, nil
}

// addValue routes one value to its normalized field. Multi-line keys call
// this once per continuation line, preserving declaration order.
func (m *Manifest) addValue(section, key, value string) error {
	switch section {
	case "metadata":
		switch key {
		case "name":
			m.Name = value
		case "version":
			if attr, ok := strings.CutPrefix(value, "attr:"); ok {
				m.VersionAttr = strings.TrimSpace(attr)
			} else {
				m.Version = value
			}
		case "license_files", "license_file":
			m.LicenseFiles = append(m.LicenseFiles, value)
		case "classifiers":
			m.Classifiers = append(m.Classifiers, value)
		}
	case "options":
		switch key {
		case "install_requires":
			req, err := parseRequirement(value)
			if err != nil {
				return err
			}
			m.Requires = append(m.Requires, req)
		case "python_requires":
			m.PythonRequires = value
		case "packages":
			if value == "find:" {
				m.Packages.Find = true
			}
		}
	case "options.packages.find":
		switch key {
		case "where":
			m.Packages.Where = value
		case "exclude":
			m.Packages.Exclude = append(m.Packages.Exclude, value)
		}
	case "options.entry_points":
		ep, err := parseEntryPoint(value)
		if err != nil {
			return err
		}
		m.EntryPoints[key] = append(m.EntryPoints[key], ep)
	case "options.package_data":
		m.PackageData[key] = append(m.PackageData[key], value)
	}
	return nil
}

// parseRequirement splits "name>=1.0,<2" into name and constraint.
func parseRequirement(spec string) (Requirement, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Requirement{}, fmt.Errorf("empty requirement")
	}

	idx := strings.IndexAny(spec, "><=!~ ")
	if idx < 0 {
		return Requirement{Name: spec}, nil
	}
	name := strings.TrimSpace(spec[:idx])
	if name == "" {
		return Requirement{}, fmt.Errorf("requirement %q has no name", spec)
	}
	constraint := strings.ReplaceAll(spec[idx:], " ", "")
	return Requirement{Name: name, Constraint: constraint}, nil
}

// parseEntryPoint splits "name = module.path:callable".
func parseEntryPoint(spec string) (EntryPoint, error) {
	eq := strings.Index(spec, "=")
	if eq < 0 {
		return EntryPoint{}, fmt.Errorf("entry point %q is not name = target", spec)
	}
	ep := EntryPoint{
		Name:   strings.TrimSpace(spec[:eq]),
		Target: strings.TrimSpace(spec[eq+1:]),
	}
	if ep.Name == "" || ep.Target == "" {
		return EntryPoint{}, fmt.Errorf("entry point %q is missing a name or target", spec)
	}
	if !strings.Contains(ep.Target, ":") {
		return EntryPoint{}, fmt.Errorf("entry point target %q must be module.path:callable", ep.Target)
	}
	return ep, nil
}
