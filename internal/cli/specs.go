package cli

import (
	"strings"

	"github.com/ravelin-dev/depotctl/pkg/specvalidate"
)

// parseSpecArg parses one positional package argument into a
// specvalidate.Spec. Supported forms:
//
//	Foo             bare name, version left to the resolver
//	Foo@1.2.3       exact version
//	Foo@1.2.3-2.0.0 half-open version range (Lower-Upper)
func parseSpecArg(arg string) specvalidate.Spec {
	name, versionPart, hasVersion := strings.Cut(arg, "@")
	spec := specvalidate.Spec{Name: name, HasName: true}
	if !hasVersion || versionPart == "" {
		return spec
	}
	lower, upper, isRange := strings.Cut(versionPart, "-")
	if !isRange {
		upper = lower
	}
	spec.HasVersion = true
	spec.Version = specvalidate.VersionConstraint{Lower: lower, Upper: upper}
	return spec
}

// parseSpecArgs applies parseSpecArg over every positional argument.
func parseSpecArgs(args []string) []specvalidate.Spec {
	specs := make([]specvalidate.Spec, 0, len(args))
	for _, a := range args {
		specs = append(specs, parseSpecArg(a))
	}
	return specs
}
