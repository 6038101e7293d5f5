package specvalidate

import (
	"testing"

	"github.com/google/uuid"
	deperrors "github.com/ravelin-dev/depotctl/pkg/errors"
)

func TestValidateAddRejectsReservedName(t *testing.T) {
	_, err := Validate(OpAdd, []Spec{{Name: "julia", HasName: true}}, Options{})
	if !deperrors.Is(err, deperrors.CodeInvalidSpec) {
		t.Fatalf("expected CodeInvalidSpec, got %v", err)
	}
}

func TestValidateAddRequiresIdentifyingField(t *testing.T) {
	_, err := Validate(OpAdd, []Spec{{}}, Options{})
	if err == nil {
		t.Fatal("expected error for spec with no name/uuid/repo")
	}
}

func TestValidateAddAcceptsRepoSourceOnly(t *testing.T) {
	specs := []Spec{{Tracking: RepoTracking{Repo: Repo{Source: "https://example.com/foo.git"}}}}
	out, err := Validate(OpAdd, specs, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 spec, got %d", len(out))
	}
}

func TestValidateAddRejectsRepoWithVersion(t *testing.T) {
	specs := []Spec{{
		Name: "Foo", HasName: true,
		Version: VersionConstraint{Lower: "1.0", Upper: "2.0"}, HasVersion: true,
		Tracking: RepoTracking{Repo: Repo{Source: "https://example.com/foo.git"}},
	}}
	_, err := Validate(OpAdd, specs, Options{})
	if err == nil {
		t.Fatal("expected error for repo-tracked spec with version")
	}
}

func TestValidateDevelopRejectsRev(t *testing.T) {
	specs := []Spec{{
		Name: "Foo", HasName: true,
		Tracking: RepoTracking{Repo: Repo{Rev: "main"}},
	}}
	_, err := Validate(OpDevelop, specs, Options{})
	if err == nil {
		t.Fatal("expected error: rev not supported by develop")
	}
}

func TestValidateAddRejectsDuplicateNames(t *testing.T) {
	specs := []Spec{
		{Name: "Foo", HasName: true},
		{Name: "Foo", HasName: true},
	}
	_, err := Validate(OpAdd, specs, Options{})
	if err == nil {
		t.Fatal("expected error for duplicate names")
	}
}

func TestValidateAddRejectsProjectSelf(t *testing.T) {
	specs := []Spec{{Name: "MyProject", HasName: true}}
	_, err := Validate(OpAdd, specs, Options{ProjectSelfName: "MyProject"})
	if err == nil {
		t.Fatal("expected error: package cannot depend on itself")
	}
}

func TestValidateRmRequiresNameOrUUID(t *testing.T) {
	_, err := Validate(OpRm, []Spec{{}}, Options{})
	if err == nil {
		t.Fatal("expected error: rm requires name or uuid")
	}
}

func TestValidateRmRejectsExtraFields(t *testing.T) {
	specs := []Spec{{
		Name: "Foo", HasName: true,
		Version: VersionConstraint{Lower: "1.0", Upper: "1.0"}, HasVersion: true,
	}}
	_, err := Validate(OpRm, specs, Options{})
	if err == nil {
		t.Fatal("expected error: rm rejects version field")
	}
}

func TestValidatePinRejectsRange(t *testing.T) {
	specs := []Spec{{
		Name: "Foo", HasName: true, UUID: uuid.New(), HasUUID: true,
		Version: VersionConstraint{Lower: "1.0", Upper: "2.0"}, HasVersion: true,
	}}
	_, err := Validate(OpPin, specs, Options{})
	if err == nil {
		t.Fatal("expected error: pin requires exact version")
	}
}

func TestValidatePinAcceptsExactVersion(t *testing.T) {
	specs := []Spec{{
		Name: "Foo", HasName: true,
		Version: VersionConstraint{Lower: "1.0", Upper: "1.0"}, HasVersion: true,
	}}
	if _, err := Validate(OpPin, specs, Options{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateDoesNotMutateCallerSlice(t *testing.T) {
	specs := []Spec{{Name: "Foo", HasName: true}}
	out, err := Validate(OpAdd, specs, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out[0].Name = "Mutated"
	if specs[0].Name != "Foo" {
		t.Fatal("Validate must deep-copy the spec list")
	}
}
